package ldtest

import (
	"fmt"
	"time"

	"github.com/launchdarkly/api-contract-tests/framework"
)

// State is the lifecycle state of a scenario. A scenario starts Pending, becomes Running, and
// ends in exactly one of Passed, Failed, Errored or Skipped.
type State int

const (
	Pending State = iota
	Running
	// Passed means the request completed and every assertion passed.
	Passed
	// Failed means the request completed but at least one assertion did not pass; the API does
	// not meet its contract.
	Failed
	// Errored means the scenario could not be evaluated: the request could not be built or
	// sent, setup failed, or scenario code panicked. It says nothing about the contract.
	Errored
	// Skipped means the scenario was not started, because of the filter or because the run was
	// cancelled.
	Skipped
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Passed:
		return "passed"
	case Failed:
		return "failed"
	case Errored:
		return "errored"
	case Skipped:
		return "skipped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Outcome is the result of running one Scenario.
type Outcome struct {
	ScenarioName string
	State        State

	// Failures has one message per failed assertion, in assertion order.
	Failures []string

	// Err is set for Errored outcomes. It is a *harness.BuildError, a *harness.TransportError, or
	// an error describing a setup failure or panic.
	Err error

	SkipReason string

	// StatusCode and Elapsed describe the response, if one was received.
	StatusCode int
	Elapsed    time.Duration

	// Warnings are non-fatal problems with the request, such as a body on a GET request.
	Warnings []string

	DebugOutput framework.CapturedOutput
}

func (o Outcome) Passed() bool {
	return o.State == Passed
}

// Messages returns every diagnostic message of the outcome: the error, if any, followed by the
// assertion failures.
func (o Outcome) Messages() []string {
	var ret []string
	if o.Err != nil {
		ret = append(ret, o.Err.Error())
	}
	return append(ret, o.Failures...)
}

// Results contains the outcomes of a run, in the order the scenarios were given.
type Results struct {
	Outcomes []Outcome
}

// OK returns true if no scenario failed or errored.
func (r Results) OK() bool {
	for _, o := range r.Outcomes {
		if o.State == Failed || o.State == Errored {
			return false
		}
	}
	return true
}

func (r Results) Count(state State) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.State == state {
			n++
		}
	}
	return n
}

// Problems returns the Failed and Errored outcomes.
func (r Results) Problems() []Outcome {
	var ret []Outcome
	for _, o := range r.Outcomes {
		if o.State == Failed || o.State == Errored {
			ret = append(ret, o)
		}
	}
	return ret
}
