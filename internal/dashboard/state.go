// Package dashboard runs repository analyses and serves the dashboard UI.
package dashboard

import (
	"strings"
)

// Phase is the stage of the current analysis
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseSuccess
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseSuccess:
		return "success"
	case PhaseError:
		return "error"
	default:
		return "idle"
	}
}

// Step is a cosmetic progress marker
type Step struct {
	Label  string
	Active bool
}

// State is the single source of truth for what the dashboard shows.
// Transitions return a new value and never modify the receiver.
type State struct {
	Phase  Phase
	Input  string
	Steps  []Step
	Report *Report
	Error  string
}

// Submit starts a new analysis. Blank input leaves the state untouched and
// reports false.
func (s State) Submit(input string, steps []string) (State, bool) {
	repo := strings.TrimSpace(input)
	if repo == "" {
		return s, false
	}
	next := State{Phase: PhaseLoading, Input: repo, Steps: make([]Step, len(steps))}
	for i, label := range steps {
		next.Steps[i] = Step{Label: label}
	}
	return next, true
}

// ActivateSteps marks the first n steps active
func (s State) ActivateSteps(n int) State {
	steps := make([]Step, len(s.Steps))
	copy(steps, s.Steps)
	for i := 0; i < n && i < len(steps); i++ {
		steps[i].Active = true
	}
	s.Steps = steps
	return s
}

// Succeed ends the run with results
func (s State) Succeed(r *Report) State {
	s.Phase = PhaseSuccess
	s.Report = r
	s.Error = ""
	return s
}

// Fail ends the run with a message and no results
func (s State) Fail(msg string) State {
	s.Phase = PhaseError
	s.Report = nil
	s.Error = msg
	return s
}

// Loading reports whether the progress indicator is shown
func (s State) Loading() bool {
	return s.Phase == PhaseLoading
}

// ShowResults reports whether the results panel is shown
func (s State) ShowResults() bool {
	return s.Phase == PhaseSuccess && s.Report != nil
}
