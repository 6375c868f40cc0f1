package dashboard

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/kurihiro0119/repo-analyzer/internal/errors"
	"github.com/kurihiro0119/repo-analyzer/internal/logging"
	"github.com/kurihiro0119/repo-analyzer/internal/render"
	"github.com/kurihiro0119/repo-analyzer/internal/source"
)

// Defaults for a run
const (
	DefaultTimeout      = 30 * time.Second
	DefaultStepInterval = 800 * time.Millisecond
)

// DefaultSteps are the progress markers revealed while loading
var DefaultSteps = []string{
	"Fetching repository data",
	"Analyzing languages",
	"Processing contributors",
	"Generating visualizations",
}

// Observer is notified as a run progresses. Methods may be called from
// several goroutines at once.
type Observer interface {
	// OnState receives the loading state and the final state
	OnState(s State)
	// OnStep receives the index of each progress marker as it activates
	OnStep(index int)
	// OnRegion is called once a region's data is in the report. Only the
	// data backing that region may be read.
	OnRegion(region render.Region, report *Report)
}

type nopObserver struct{}

func (nopObserver) OnState(State)                    {}
func (nopObserver) OnStep(int)                       {}
func (nopObserver) OnRegion(render.Region, *Report) {}

// Orchestrator runs the primary and auxiliary fetches for a submission
type Orchestrator struct {
	source       source.Source
	timeout      time.Duration
	stepInterval time.Duration
	steps        []string
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithTimeout bounds the primary fetch
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.timeout = d
	}
}

// WithStepInterval sets the delay between progress markers. Zero disables them.
func WithStepInterval(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.stepInterval = d
	}
}

// WithSteps replaces the progress marker labels
func WithSteps(labels []string) Option {
	return func(o *Orchestrator) {
		o.steps = labels
	}
}

// NewOrchestrator creates an orchestrator reading from src
func NewOrchestrator(src source.Source, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		source:       src,
		timeout:      DefaultTimeout,
		stepInterval: DefaultStepInterval,
		steps:        DefaultSteps,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Steps returns the progress marker labels
func (o *Orchestrator) Steps() []string {
	return o.steps
}

// Run submits input on top of current and blocks until the run settles.
// Blank input is ignored: current is returned unchanged with false.
func (o *Orchestrator) Run(ctx context.Context, current State, input string, obs Observer) (State, bool) {
	state, ok := current.Submit(input, o.steps)
	if !ok {
		return current, false
	}
	if obs == nil {
		obs = nopObserver{}
	}
	logger := logging.From(ctx).With("repo", state.Input)
	logger.Info("analysis started", "source", o.source.Name())
	obs.OnState(state)

	repo := state.Input
	report := &Report{Repo: repo}

	var activated atomic.Int32
	stepCtx, stopSteps := context.WithCancel(ctx)
	stepsDone := make(chan struct{})
	go func() {
		defer close(stepsDone)
		o.tick(stepCtx, len(state.Steps), func(i int) {
			activated.Store(int32(i + 1))
			obs.OnStep(i)
		})
	}()

	auxCtx, cancelAux := context.WithCancel(ctx)
	defer cancelAux()

	// every task returns nil so one failure never cancels the others
	var g errgroup.Group
	var primaryErr error
	g.Go(func() error {
		primaryErr = o.primary(ctx, repo, report)
		if primaryErr != nil {
			cancelAux()
			return nil
		}
		obs.OnRegion(render.RegionOverview, report)
		obs.OnRegion(render.RegionLanguages, report)
		obs.OnRegion(render.RegionContributors, report)
		return nil
	})

	notify := func(region render.Region) func(error) {
		return func(err error) {
			if err != nil && auxCtx.Err() == nil {
				logger.Warn("auxiliary fetch failed", "region", region, "error", err)
			}
			obs.OnRegion(region, report)
		}
	}
	src := o.source
	settle(&g, auxCtx, repo, &report.Tree, src.Tree, notify(render.RegionTree))
	settle(&g, auxCtx, repo, &report.Activity, src.Activity, notify(render.RegionActivity))
	settle(&g, auxCtx, repo, &report.Coverage, src.Coverage, notify(render.RegionCoverage))
	settle(&g, auxCtx, repo, &report.Stats, src.Stats, notify(render.RegionStats))
	settle(&g, auxCtx, repo, &report.Issues, src.Issues, notify(render.RegionIssues))
	settle(&g, auxCtx, repo, &report.PullRequests, src.PullRequests, notify(render.RegionPullRequests))
	settle(&g, auxCtx, repo, &report.Releases, src.Releases, notify(render.RegionReleases))
	settle(&g, auxCtx, repo, &report.Dependencies, src.Dependencies, notify(render.RegionDependencies))
	settle(&g, auxCtx, repo, &report.Topics, src.Topics, notify(render.RegionTopics))

	_ = g.Wait()
	stopSteps()
	<-stepsDone

	state = state.ActivateSteps(int(activated.Load()))
	if primaryErr != nil {
		logger.Warn("analysis failed", "error", primaryErr)
		state = state.Fail(ErrorMessage(primaryErr))
	} else {
		logger.Info("analysis finished")
		state = state.Succeed(report)
	}
	obs.OnState(state)
	return state, true
}

func (o *Orchestrator) primary(ctx context.Context, repo string, report *Report) error {
	pctx, cancel := ctx, context.CancelFunc(func() {})
	if o.timeout > 0 {
		pctx, cancel = context.WithTimeout(ctx, o.timeout)
	}
	defer cancel()

	analysis, err := o.source.Analyze(pctx, repo)
	if err != nil {
		if errors.Is(pctx.Err(), context.DeadlineExceeded) {
			return apperrors.NewTimeoutError(err)
		}
		return err
	}
	report.Analysis = analysis
	return nil
}

// settle runs one auxiliary fetch and records its outcome in slot
func settle[T any](g *errgroup.Group, ctx context.Context, repo string, slot *Panel[T], fetch func(context.Context, string) (T, error), done func(error)) {
	g.Go(func() error {
		v, err := fetch(ctx, repo)
		*slot = Panel[T]{Value: v, Err: err}
		done(err)
		return nil
	})
}

func (o *Orchestrator) tick(ctx context.Context, n int, activate func(int)) {
	if o.stepInterval <= 0 || n == 0 {
		return
	}
	ticker := time.NewTicker(o.stepInterval)
	defer ticker.Stop()
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			activate(i)
		}
	}
}

// ErrorMessage is the banner text for a failed primary fetch
func ErrorMessage(err error) string {
	if apperrors.IsTimeout(err) {
		return apperrors.TimeoutMessage
	}
	return "Error: " + apperrors.MessageOf(err)
}
