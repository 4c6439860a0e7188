package assertion

import (
	"strings"
	"testing"
	"time"

	"github.com/launchdarkly/api-contract-tests/framework/harness"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func response(status int, body string) harness.ResponseRecord {
	return harness.NewResponseRecord(status, map[string]string{"content-type": "application/json"},
		[]byte(body), time.Millisecond*20)
}

func TestStatusEquals(t *testing.T) {
	assert.True(t, StatusEquals(200).Evaluate(response(200, "")).Passed)

	result := StatusEquals(200).Evaluate(response(404, ""))
	assert.False(t, result.Passed)
	assert.Equal(t, "expected status 200 but got 404", result.FailureReason)
	assert.Equal(t, "status is 200", StatusEquals(200).String())
}

func TestHeaderEquals(t *testing.T) {
	resp := response(200, "")
	assert.True(t, HeaderEquals("Content-Type", "application/json").Evaluate(resp).Passed)

	result := HeaderEquals("Content-Type", "text/plain").Evaluate(resp)
	assert.Equal(t, `expected header "Content-Type" to be "text/plain" but got "application/json"`, result.FailureReason)

	result = HeaderEquals("WWW-Authenticate", "Basic").Evaluate(resp)
	assert.Equal(t, `expected header "WWW-Authenticate" to be "Basic" but it was absent`, result.FailureReason)
}

func TestBodyContains(t *testing.T) {
	resp := response(200, `{"title":"A Family History"}`)
	assert.True(t, BodyContains("Family").Evaluate(resp).Passed)

	result := BodyContains("Zoo").Evaluate(resp)
	assert.False(t, result.Passed)
	assert.Contains(t, result.FailureReason, `expected body to contain "Zoo"`)
}

func TestBodyIsAbbreviatedInFailureReason(t *testing.T) {
	resp := response(200, strings.Repeat("x", maxBodyInMessage+100))
	result := BodyContains("y").Evaluate(resp)
	assert.Contains(t, result.FailureReason, "... (100 more bytes)")
}

func TestResponseTimeBelow(t *testing.T) {
	assert.True(t, ResponseTimeBelow(time.Second).Evaluate(response(200, "")).Passed)
	result := ResponseTimeBelow(time.Millisecond * 10).Evaluate(response(200, ""))
	assert.Equal(t, "expected response time below 10ms but it took 20ms", result.FailureReason)
}

func TestAllOfReportsEveryFailure(t *testing.T) {
	a := AllOf(StatusEquals(201), BodyContains("id"), HeaderEquals("X-A", "1"))
	result := a.Evaluate(response(200, `{"id":1}`))
	assert.False(t, result.Passed)
	assert.Equal(t, `expected status 201 but got 200; expected header "X-A" to be "1" but it was absent`,
		result.FailureReason)
}

func TestNot(t *testing.T) {
	assert.True(t, Not(StatusEquals(500)).Evaluate(response(200, "")).Passed)
	result := Not(StatusEquals(200)).Evaluate(response(200, ""))
	assert.Equal(t, "expected status is 200 to be false, but it was true", result.FailureReason)
}

func TestEvaluateAllKeepsGoingAfterFailure(t *testing.T) {
	failures := EvaluateAll(response(404, "not found"), []Assertion{
		StatusEquals(200),
		BodyContains("not found"),
		BodyContains("title"),
	})
	require.Len(t, failures, 2)
	assert.Equal(t, "expected status 200 but got 404", failures[0])
	assert.Contains(t, failures[1], `expected body to contain "title"`)
}

func TestEvaluateAllTreatsPanicAsFailure(t *testing.T) {
	panicky := Func("panics", func(harness.ResponseRecord) Result { panic("boom") })
	failures := EvaluateAll(response(200, ""), []Assertion{panicky, StatusEquals(200)})
	assert.Equal(t, []string{`assertion "panics" panicked: boom`}, failures)
}

func TestFailureWithoutReasonGetsDefaultReason(t *testing.T) {
	silent := Func("always fails", func(harness.ResponseRecord) Result { return Result{} })
	assert.Equal(t, []string{"assertion failed: always fails"}, EvaluateAll(response(200, ""), []Assertion{silent}))
}
