package ldtest

import (
	"time"

	"github.com/launchdarkly/api-contract-tests/framework/assertion"
	"github.com/launchdarkly/api-contract-tests/framework/harness"
)

// Scenario is one named contract check: a request and the assertions about its response.
//
// A Scenario is run at most once per call to Runner.Run and is never modified by the runner.
// Scenarios do not share state with each other, so they can be run in any order or in parallel.
type Scenario struct {
	// Name identifies the scenario in results and is what the run/skip filters match against.
	Name string

	// Build produces the request. It is called only when the scenario runs. An error, or a panic,
	// makes the scenario Errored.
	Build func() (harness.RequestSpec, error)

	// Assertions are all evaluated, in order, even after one of them fails.
	Assertions []assertion.Assertion

	// Setup, if set, runs before Build. An error makes the scenario Errored and skips the request.
	Setup func() error

	// Teardown, if set, runs after the scenario if Setup did not fail.
	Teardown func()

	// Timeout overrides the runner's request timeout for this scenario.
	Timeout time.Duration
}

// NewScenario creates a Scenario whose request comes from a RequestBuilder.
func NewScenario(name string, request *harness.RequestBuilder, assertions ...assertion.Assertion) Scenario {
	return Scenario{
		Name:       name,
		Build:      request.Build,
		Assertions: assertions,
	}
}
