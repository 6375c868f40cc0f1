package aggregator

import (
	"sort"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/kurihiro0119/repo-analyzer/internal/domain"
)

// WeeklyActivity buckets commit timestamps into Monday-first weeks, ordered by week key
func WeeklyActivity(timestamps []time.Time) []domain.ActivityPoint {
	counts := make(map[string]int)
	for _, ts := range timestamps {
		counts[WeekKey(ts)]++
	}

	weeks := make([]string, 0, len(counts))
	for week := range counts {
		weeks = append(weeks, week)
	}
	sort.Strings(weeks)

	activity := make([]domain.ActivityPoint, 0, len(weeks))
	for _, week := range weeks {
		activity = append(activity, domain.ActivityPoint{Week: week, Count: counts[week]})
	}
	return activity
}

// AverageDays returns the mean of the given durations in days, rounded to one decimal.
// Nil is returned when there is nothing to average.
func AverageDays(durations []time.Duration) *float64 {
	if len(durations) == 0 {
		return nil
	}

	days := make(stats.Float64Data, 0, len(durations))
	for _, d := range durations {
		days = append(days, d.Hours()/24)
	}

	mean, err := stats.Mean(days)
	if err != nil {
		return nil
	}
	rounded, err := stats.Round(mean, 1)
	if err != nil {
		return nil
	}
	return &rounded
}

// Elapsed collects end-start for every pair whose end is set
func Elapsed(pairs [][2]*time.Time) []time.Duration {
	var out []time.Duration
	for _, p := range pairs {
		start, end := p[0], p[1]
		if start == nil || end == nil || end.Before(*start) {
			continue
		}
		out = append(out, end.Sub(*start))
	}
	return out
}
