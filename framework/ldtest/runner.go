package ldtest

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/launchdarkly/api-contract-tests/framework"
	"github.com/launchdarkly/api-contract-tests/framework/assertion"
	"github.com/launchdarkly/api-contract-tests/framework/harness"

	"golang.org/x/sync/errgroup"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldlog"
)

const maxBodyInDebugOutput = 2000

// RequestExecutor sends a request. *harness.Executor is the standard implementation.
type RequestExecutor interface {
	Execute(spec harness.RequestSpec, timeout time.Duration) (harness.ResponseRecord, error)
}

// RunnerConfig contains the settings for a Runner.
type RunnerConfig struct {
	// Executor sends the requests. If nil, a harness.Executor with default settings is used.
	Executor RequestExecutor

	// Concurrency is the maximum number of scenarios that run at the same time. Zero or one
	// means scenarios run sequentially.
	Concurrency int

	// Filter, if set, selects which scenarios run; the others are Skipped.
	Filter framework.Filter

	// TestLogger receives progress notifications.
	TestLogger TestLogger

	// Loggers receives debug-level diagnostics about scheduling.
	Loggers ldlog.Loggers

	// DefaultTimeout is the request timeout for scenarios that do not set their own. Zero means
	// the executor's default.
	DefaultTimeout time.Duration
}

// Runner executes scenarios and collects their outcomes. A failure or panic in one scenario
// never stops the run.
type Runner struct {
	config      RunnerConfig
	testLogger  TestLogger
	loggerLock  sync.Mutex
	concurrency int
}

func NewRunner(config RunnerConfig) *Runner {
	if config.Executor == nil {
		config.Executor = harness.NewExecutor(harness.ExecutorConfig{Loggers: config.Loggers})
	}
	r := &Runner{
		config:      config,
		testLogger:  config.TestLogger,
		concurrency: config.Concurrency,
	}
	if r.testLogger == nil {
		r.testLogger = nullTestLogger{}
	}
	if r.concurrency < 1 {
		r.concurrency = 1
	}
	return r
}

// Run executes the scenarios and returns one Outcome per scenario, in the order given.
//
// Cancelling ctx stops the runner from starting any more scenarios; those are reported as
// Skipped. Requests that are already in flight are not interrupted, and finish or time out
// normally.
func (r *Runner) Run(ctx context.Context, scenarios []Scenario) Results {
	outcomes := make([]Outcome, len(scenarios))
	queue := newOutcomeSortingQueue(r.reportOutcome)

	r.config.Loggers.Debugf("Running %d scenarios with concurrency %d", len(scenarios), r.concurrency)

	if r.concurrency == 1 {
		for i, s := range scenarios {
			outcomes[i] = r.runScenario(ctx, s)
			queue.Accept(i+1, outcomes[i])
		}
		return Results{Outcomes: outcomes}
	}

	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for i, s := range scenarios {
		i, s := i, s
		if ctx.Err() != nil {
			outcomes[i] = cancelledOutcome(s)
			queue.Accept(i+1, outcomes[i])
			continue
		}
		g.Go(func() error {
			outcomes[i] = r.runScenario(ctx, s)
			queue.Accept(i+1, outcomes[i])
			return nil
		})
	}
	_ = g.Wait()
	return Results{Outcomes: outcomes}
}

func (r *Runner) reportOutcome(o Outcome) {
	r.loggerLock.Lock()
	defer r.loggerLock.Unlock()
	if o.State == Skipped {
		r.testLogger.TestSkipped(o.ScenarioName, o.SkipReason)
	} else {
		r.testLogger.TestFinished(o)
	}
}

func cancelledOutcome(s Scenario) Outcome {
	return Outcome{ScenarioName: s.Name, State: Skipped, SkipReason: "run was cancelled"}
}

func (r *Runner) runScenario(ctx context.Context, s Scenario) Outcome {
	if ctx.Err() != nil {
		return cancelledOutcome(s)
	}
	if r.config.Filter != nil && !r.config.Filter(s.Name) {
		return Outcome{ScenarioName: s.Name, State: Skipped, SkipReason: "excluded by filter parameters"}
	}

	r.loggerLock.Lock()
	r.testLogger.TestStarted(s.Name)
	r.loggerLock.Unlock()
	r.config.Loggers.Debugf("Starting scenario %q", s.Name)

	var debugLogger framework.CapturingLogger
	outcome := Outcome{ScenarioName: s.Name, State: Running}
	r.execute(s, &outcome, &debugLogger)
	outcome.DebugOutput = debugLogger.Output()

	r.config.Loggers.Debugf("Scenario %q %s", s.Name, outcome.State)
	return outcome
}

func (r *Runner) execute(s Scenario, outcome *Outcome, debugLogger framework.Logger) {
	defer func() {
		if p := recover(); p != nil {
			outcome.State = Errored
			outcome.Err = fmt.Errorf("unexpected panic in scenario: %+v\n%s", p, string(debug.Stack()))
			debugLogger.Printf("Panic: %+v", p)
		}
	}()

	if s.Setup != nil {
		if err := s.Setup(); err != nil {
			outcome.State = Errored
			outcome.Err = fmt.Errorf("setup failed: %w", err)
			return
		}
	}
	if s.Teardown != nil {
		defer s.Teardown()
	}

	if s.Build == nil {
		outcome.State = Errored
		outcome.Err = errors.New("scenario has no request")
		return
	}
	spec, err := s.Build()
	if err != nil {
		outcome.State = Errored
		outcome.Err = err
		debugLogger.Printf("Could not build request: %s", err)
		return
	}
	outcome.Warnings = spec.Warnings()
	for _, w := range outcome.Warnings {
		debugLogger.Printf("Warning: %s", w)
		r.config.Loggers.Debugf("Scenario %q: %s", s.Name, w)
	}

	if auth := spec.Auth(); auth != nil {
		spec = auth.Apply(spec)
		debugLogger.Printf("Applied %s", auth)
	}
	debugLogger.Printf("Request: %s", spec.CurlCommand())

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = r.config.DefaultTimeout
	}
	resp, err := r.config.Executor.Execute(spec, timeout)
	if err != nil {
		outcome.State = Errored
		outcome.Err = err
		debugLogger.Printf("Request failed: %s", err)
		return
	}
	outcome.StatusCode = resp.StatusCode()
	outcome.Elapsed = resp.Elapsed()
	contentType, _ := resp.Header("Content-Type")
	debugLogger.Printf("Response: status %d, Content-Type %q, time %s", resp.StatusCode(), contentType, resp.Elapsed())
	debugLogger.Printf("Response body: %s", abbreviateBody(resp.BodyString()))

	outcome.Failures = assertion.EvaluateAll(resp, s.Assertions)
	if len(outcome.Failures) > 0 {
		outcome.State = Failed
	} else {
		outcome.State = Passed
	}
}

func abbreviateBody(s string) string {
	if len(s) <= maxBodyInDebugOutput {
		return s
	}
	return fmt.Sprintf("%s... (%d more bytes)", s[:maxBodyInDebugOutput], len(s)-maxBodyInDebugOutput)
}
