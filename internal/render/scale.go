package render

import (
	"math"
)

var (
	e10 = math.Sqrt(50)
	e5  = math.Sqrt(10)
	e2  = math.Sqrt(2)
)

// tickIncrement returns the tick step for [start, stop] split into roughly
// count ticks. Negative values are inverse steps (-5 means 1/5).
func tickIncrement(start, stop float64, count int) float64 {
	step := (stop - start) / math.Max(0, float64(count))
	power := math.Floor(math.Log10(step))
	errRatio := step / math.Pow(10, power)
	factor := 1.0
	switch {
	case errRatio >= e10:
		factor = 10
	case errRatio >= e5:
		factor = 5
	case errRatio >= e2:
		factor = 2
	}
	if power >= 0 {
		return factor * math.Pow(10, power)
	}
	return -math.Pow(10, -power) / factor
}

// linearScale maps a domain onto a pixel range
type linearScale struct {
	d0, d1 float64
	r0, r1 float64
}

// newNiceLinear builds a 0..max scale with the upper bound extended to a
// round tick value
func newNiceLinear(max float64, r0, r1 float64) linearScale {
	s := linearScale{d0: 0, d1: max, r0: r0, r1: r1}
	s.nice(10)
	return s
}

func (s *linearScale) nice(count int) {
	start, stop := s.d0, s.d1
	if start == stop {
		return
	}
	var prestep float64
	for i := 0; i < 10; i++ {
		step := tickIncrement(start, stop, count)
		if step == prestep {
			break
		}
		switch {
		case step > 0:
			start = math.Floor(start/step) * step
			stop = math.Ceil(stop/step) * step
		case step < 0:
			start = math.Ceil(start*step) / step
			stop = math.Floor(stop*step) / step
		default:
			return
		}
		prestep = step
	}
	s.d0, s.d1 = start, stop
}

func (s linearScale) at(v float64) float64 {
	if s.d1 == s.d0 {
		return (s.r0 + s.r1) / 2
	}
	return s.r0 + (v-s.d0)/(s.d1-s.d0)*(s.r1-s.r0)
}

// ticks lists the round values between the domain bounds
func (s linearScale) ticks(count int) []float64 {
	if s.d0 == s.d1 {
		return []float64{s.d0}
	}
	step := tickIncrement(s.d0, s.d1, count)
	if step == 0 || math.IsInf(step, 0) || math.IsNaN(step) {
		return nil
	}
	var out []float64
	if step > 0 {
		lo, hi := math.Ceil(s.d0/step), math.Floor(s.d1/step)
		for i := lo; i <= hi; i++ {
			out = append(out, i*step)
		}
		return out
	}
	inv := -step
	lo, hi := math.Ceil(s.d0*inv), math.Floor(s.d1*inv)
	for i := lo; i <= hi; i++ {
		out = append(out, i/inv)
	}
	return out
}

// bandScale splits a range into equal bands with inner and outer padding
type bandScale struct {
	start     float64
	step      float64
	bandwidth float64
}

func newBandScale(n int, r0, r1, padding float64) bandScale {
	span := r1 - r0
	step := span / math.Max(1, float64(n)-padding+padding*2)
	start := r0 + (span-step*(float64(n)-padding))*0.5
	return bandScale{start: start, step: step, bandwidth: step * (1 - padding)}
}

func (b bandScale) at(i int) float64 {
	return b.start + b.step*float64(i)
}
