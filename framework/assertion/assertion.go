package assertion

import (
	"fmt"
	"strings"
	"time"

	"github.com/launchdarkly/api-contract-tests/framework/harness"
)

const maxBodyInMessage = 500

// Result is the outcome of evaluating one Assertion.
type Result struct {
	Passed        bool
	FailureReason string
}

func passed() Result { return Result{Passed: true} }

func failed(format string, args ...interface{}) Result {
	return Result{FailureReason: fmt.Sprintf(format, args...)}
}

// Assertion is a predicate over a response. Implementations must not modify anything and must
// not depend on other assertions, so that every assertion of a scenario can be evaluated
// independently.
type Assertion interface {
	Evaluate(resp harness.ResponseRecord) Result
	String() string
}

type funcAssertion struct {
	description string
	fn          func(harness.ResponseRecord) Result
}

func (f funcAssertion) Evaluate(resp harness.ResponseRecord) Result { return f.fn(resp) }

func (f funcAssertion) String() string { return f.description }

// Func creates an Assertion from a function.
func Func(description string, fn func(harness.ResponseRecord) Result) Assertion {
	return funcAssertion{description: description, fn: fn}
}

// StatusEquals passes if the response status is exactly the expected status.
func StatusEquals(expected int) Assertion {
	return Func(fmt.Sprintf("status is %d", expected), func(resp harness.ResponseRecord) Result {
		if resp.StatusCode() != expected {
			return failed("expected status %d but got %d", expected, resp.StatusCode())
		}
		return passed()
	})
}

// HeaderEquals passes if the response has the named header, compared without regard to case,
// with exactly the expected value.
func HeaderEquals(name, expected string) Assertion {
	return Func(fmt.Sprintf("header %q is %q", name, expected), func(resp harness.ResponseRecord) Result {
		actual, ok := resp.Header(name)
		if !ok {
			return failed("expected header %q to be %q but it was absent", name, expected)
		}
		if actual != expected {
			return failed("expected header %q to be %q but got %q", name, expected, actual)
		}
		return passed()
	})
}

// BodyContains passes if the response body contains the substring.
func BodyContains(substring string) Assertion {
	return Func(fmt.Sprintf("body contains %q", substring), func(resp harness.ResponseRecord) Result {
		if !strings.Contains(resp.BodyString(), substring) {
			return failed("expected body to contain %q but it did not; body was: %s",
				substring, abbreviate(resp.BodyString()))
		}
		return passed()
	})
}

// ResponseTimeBelow passes if the response headers arrived in less than max.
func ResponseTimeBelow(max time.Duration) Assertion {
	return Func(fmt.Sprintf("response time below %s", max), func(resp harness.ResponseRecord) Result {
		if resp.Elapsed() >= max {
			return failed("expected response time below %s but it took %s", max, resp.Elapsed())
		}
		return passed()
	})
}

// AllOf passes if every one of the assertions passes. All of them are evaluated, and the
// failure reason lists every failure.
func AllOf(assertions ...Assertion) Assertion {
	var descriptions []string
	for _, a := range assertions {
		descriptions = append(descriptions, a.String())
	}
	return Func("all of ("+strings.Join(descriptions, ", ")+")", func(resp harness.ResponseRecord) Result {
		failures := EvaluateAll(resp, assertions)
		if len(failures) > 0 {
			return failed("%s", strings.Join(failures, "; "))
		}
		return passed()
	})
}

// Not passes if the wrapped assertion fails.
func Not(a Assertion) Assertion {
	return Func("not "+a.String(), func(resp harness.ResponseRecord) Result {
		if evaluateOne(resp, a).Passed {
			return failed("expected %s to be false, but it was true", a)
		}
		return passed()
	})
}

// EvaluateAll evaluates every assertion against the response and returns the failure reasons,
// in the order of the assertions. An assertion that panics counts as failed.
func EvaluateAll(resp harness.ResponseRecord, assertions []Assertion) []string {
	var failures []string
	for _, a := range assertions {
		if result := evaluateOne(resp, a); !result.Passed {
			failures = append(failures, result.FailureReason)
		}
	}
	return failures
}

func evaluateOne(resp harness.ResponseRecord, a Assertion) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = failed("assertion %q panicked: %v", a, r)
		}
	}()
	result = a.Evaluate(resp)
	if !result.Passed && result.FailureReason == "" {
		result.FailureReason = fmt.Sprintf("assertion failed: %s", a)
	}
	return result
}

func abbreviate(s string) string {
	if len(s) <= maxBodyInMessage {
		return s
	}
	return s[:maxBodyInMessage] + fmt.Sprintf("... (%d more bytes)", len(s)-maxBodyInMessage)
}
