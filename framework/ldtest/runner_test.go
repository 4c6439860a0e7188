package ldtest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/launchdarkly/api-contract-tests/framework"
	"github.com/launchdarkly/api-contract-tests/framework/assertion"
	"github.com/launchdarkly/api-contract-tests/framework/harness"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldlog"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldlogtest"
)

type recordingTestLogger struct {
	events []string
	lock   sync.Mutex
}

func (r *recordingTestLogger) add(event string) {
	r.lock.Lock()
	r.events = append(r.events, event)
	r.lock.Unlock()
}

func (r *recordingTestLogger) TestStarted(name string) { r.add("started " + name) }

func (r *recordingTestLogger) TestFinished(o Outcome) { r.add(o.State.String() + " " + o.ScenarioName) }

func (r *recordingTestLogger) TestSkipped(name, reason string) { r.add("skipped " + name) }

func (r *recordingTestLogger) finished() []string {
	r.lock.Lock()
	defer r.lock.Unlock()
	var ret []string
	for _, e := range r.events {
		if len(e) < 8 || e[:8] != "started " {
			ret = append(ret, e)
		}
	}
	return ret
}

type fakeExecutor struct {
	responses map[string]harness.ResponseRecord
	err       error
	delay     func(url string) time.Duration
}

func (f fakeExecutor) Execute(spec harness.RequestSpec, timeout time.Duration) (harness.ResponseRecord, error) {
	if f.delay != nil {
		time.Sleep(f.delay(spec.URL()))
	}
	if f.err != nil {
		return harness.ResponseRecord{}, f.err
	}
	return f.responses[spec.URL()], nil
}

func staticScenario(name, url string, assertions ...assertion.Assertion) Scenario {
	return NewScenario(name, harness.Get(url), assertions...)
}

func TestSinglePassingScenario(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(200))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		r := NewRunner(RunnerConfig{})
		s := NewScenario("update book",
			harness.Put(server.URL+"/api/books/1").PreemptiveBasicAuth("admin", "password").JSONBody(`{"id":1}`),
			assertion.StatusEquals(200))

		results := r.Run(context.Background(), []Scenario{s})

		require.Len(t, results.Outcomes, 1)
		o := results.Outcomes[0]
		assert.Equal(t, Passed, o.State)
		assert.True(t, o.Passed())
		assert.Len(t, o.Failures, 0)
		assert.Equal(t, 200, o.StatusCode)
		assert.True(t, results.OK())

		req := <-requestsCh
		user, _, ok := req.Request.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "admin", user)
	})
}

func TestFailedStatusAssertion(t *testing.T) {
	httphelpers.WithServer(httphelpers.HandlerWithStatus(401), func(server *httptest.Server) {
		s := staticScenario("list books", server.URL, assertion.StatusEquals(200))

		results := NewRunner(RunnerConfig{}).Run(context.Background(), []Scenario{s})

		o := results.Outcomes[0]
		assert.Equal(t, Failed, o.State)
		assert.Equal(t, []string{"expected status 200 but got 401"}, o.Failures)
		assert.Nil(t, o.Err)
		assert.False(t, results.OK())
	})
}

func TestAllAssertionsAreEvaluated(t *testing.T) {
	exec := fakeExecutor{responses: map[string]harness.ResponseRecord{
		"http://test/": harness.NewResponseRecord(200, nil, []byte("hello"), 0),
	}}
	s := staticScenario("s", "http://test/",
		assertion.StatusEquals(200),
		assertion.BodyContains("goodbye"))

	results := NewRunner(RunnerConfig{Executor: exec}).Run(context.Background(), []Scenario{s})

	o := results.Outcomes[0]
	assert.Equal(t, Failed, o.State)
	require.Len(t, o.Failures, 1)
	assert.Contains(t, o.Failures[0], "goodbye")
}

func TestTransportFailureMakesScenarioErrored(t *testing.T) {
	transportErr := &harness.TransportError{Kind: harness.ConnectionRefused, Method: harness.MethodGet,
		URL: "http://test/", Err: errors.New("refused")}
	s := staticScenario("s", "http://test/", assertion.StatusEquals(200))

	results := NewRunner(RunnerConfig{Executor: fakeExecutor{err: transportErr}}).
		Run(context.Background(), []Scenario{s})

	o := results.Outcomes[0]
	assert.Equal(t, Errored, o.State)
	assert.Len(t, o.Failures, 0)
	var te *harness.TransportError
	require.True(t, errors.As(o.Err, &te))
	assert.Equal(t, harness.ConnectionRefused, te.Kind)
	assert.False(t, results.OK())
}

func TestBuildErrorOnlyAffectsItsOwnScenario(t *testing.T) {
	exec := fakeExecutor{responses: map[string]harness.ResponseRecord{
		"http://test/": harness.NewResponseRecord(200, nil, nil, 0),
	}}
	scenarios := []Scenario{
		staticScenario("a", "http://test/", assertion.StatusEquals(200)),
		staticScenario("b", "not a url", assertion.StatusEquals(200)),
		staticScenario("c", "http://test/", assertion.StatusEquals(200)),
	}

	results := NewRunner(RunnerConfig{Executor: exec}).Run(context.Background(), scenarios)

	require.Len(t, results.Outcomes, 3)
	assert.Equal(t, Passed, results.Outcomes[0].State)
	assert.Equal(t, Errored, results.Outcomes[1].State)
	var be *harness.BuildError
	assert.True(t, errors.As(results.Outcomes[1].Err, &be))
	assert.Equal(t, Passed, results.Outcomes[2].State)
	assert.Equal(t, 2, results.Count(Passed))
	assert.Equal(t, 1, results.Count(Errored))
	assert.Len(t, results.Problems(), 1)
}

func TestPanicInScenarioIsCaught(t *testing.T) {
	scenarios := []Scenario{
		{Name: "panics", Build: func() (harness.RequestSpec, error) { panic("bad scenario") }},
		staticScenario("ok", "http://test/"),
	}
	exec := fakeExecutor{responses: map[string]harness.ResponseRecord{}}

	results := NewRunner(RunnerConfig{Executor: exec}).Run(context.Background(), scenarios)

	assert.Equal(t, Errored, results.Outcomes[0].State)
	assert.Contains(t, results.Outcomes[0].Err.Error(), "bad scenario")
	assert.Equal(t, Passed, results.Outcomes[1].State)
}

func TestSetupAndTeardown(t *testing.T) {
	exec := fakeExecutor{responses: map[string]harness.ResponseRecord{}}
	var calls []string

	ok := staticScenario("ok", "http://test/")
	ok.Setup = func() error { calls = append(calls, "setup ok"); return nil }
	ok.Teardown = func() { calls = append(calls, "teardown ok") }

	broken := staticScenario("broken", "http://test/")
	broken.Setup = func() error { return errors.New("no database") }
	broken.Teardown = func() { calls = append(calls, "teardown broken") }

	results := NewRunner(RunnerConfig{Executor: exec}).Run(context.Background(), []Scenario{ok, broken})

	assert.Equal(t, Passed, results.Outcomes[0].State)
	assert.Equal(t, Errored, results.Outcomes[1].State)
	assert.Equal(t, "setup failed: no database", results.Outcomes[1].Err.Error())
	assert.Equal(t, []string{"setup ok", "teardown ok"}, calls)
}

func TestWarningsAreRecorded(t *testing.T) {
	exec := fakeExecutor{responses: map[string]harness.ResponseRecord{}}
	mockLog := ldlogtest.NewMockLog()
	mockLog.Loggers.SetMinLevel(ldlog.Debug)
	s := NewScenario("get with body", harness.Get("http://test/").Body([]byte("x")))

	results := NewRunner(RunnerConfig{Executor: exec, Loggers: mockLog.Loggers}).
		Run(context.Background(), []Scenario{s})

	o := results.Outcomes[0]
	assert.Equal(t, Passed, o.State)
	assert.Equal(t, []string{"request body is ignored for GET requests"}, o.Warnings)
	mockLog.AssertMessageMatch(t, true, ldlog.Debug, "request body is ignored")
	assert.Len(t, mockLog.GetOutput(ldlog.Info), 0)
}

func TestDebugOutputIsCapturedPerScenario(t *testing.T) {
	exec := fakeExecutor{responses: map[string]harness.ResponseRecord{
		"http://test/": harness.NewResponseRecord(404, nil, []byte("missing"), 0),
	}}
	s := NewScenario("s", harness.Get("http://test/").PreemptiveBasicAuth("admin", "password"))

	results := NewRunner(RunnerConfig{Executor: exec}).Run(context.Background(), []Scenario{s})

	var messages []string
	for _, m := range results.Outcomes[0].DebugOutput {
		messages = append(messages, m.Message)
	}
	assert.Contains(t, messages, `Applied preemptive basic auth as "admin"`)
	assert.Contains(t, messages, "Request: curl -sS -X GET -H 'Authorization: Basic <redacted>' http://test/")
	assert.Contains(t, messages, "Response body: missing")
}

func TestFilterSkipsScenarios(t *testing.T) {
	var filters framework.RegexFilters
	require.NoError(t, filters.MustMatch.Set("^books/"))
	exec := fakeExecutor{responses: map[string]harness.ResponseRecord{}}
	testLogger := &recordingTestLogger{}
	scenarios := []Scenario{
		staticScenario("books/list", "http://test/"),
		staticScenario("users/list", "http://test/"),
	}

	results := NewRunner(RunnerConfig{Executor: exec, Filter: filters.AsFilter, TestLogger: testLogger}).
		Run(context.Background(), scenarios)

	assert.Equal(t, Passed, results.Outcomes[0].State)
	assert.Equal(t, Skipped, results.Outcomes[1].State)
	assert.Equal(t, "excluded by filter parameters", results.Outcomes[1].SkipReason)
	assert.True(t, results.OK())
	assert.Equal(t, []string{"started books/list", "passed books/list", "skipped users/list"}, testLogger.events)
}

func TestConcurrentRunReportsInDeclarationOrder(t *testing.T) {
	const count = 10
	var scenarios []Scenario
	responses := make(map[string]harness.ResponseRecord)
	for i := 0; i < count; i++ {
		url := fmt.Sprintf("http://test/%d", i)
		responses[url] = harness.NewResponseRecord(200+i, nil, nil, 0)
		scenarios = append(scenarios, staticScenario(fmt.Sprintf("s%d", i), url, assertion.StatusEquals(200)))
	}
	exec := fakeExecutor{
		responses: responses,
		delay: func(url string) time.Duration {
			var i int
			_, _ = fmt.Sscanf(url, "http://test/%d", &i)
			return time.Duration(count-i) * time.Millisecond * 5
		},
	}
	testLogger := &recordingTestLogger{}

	results := NewRunner(RunnerConfig{Executor: exec, Concurrency: 4, TestLogger: testLogger}).
		Run(context.Background(), scenarios)

	require.Len(t, results.Outcomes, count)
	var expected []string
	for i, o := range results.Outcomes {
		assert.Equal(t, fmt.Sprintf("s%d", i), o.ScenarioName)
		assert.Equal(t, 200+i, o.StatusCode)
		expected = append(expected, fmt.Sprintf("%s s%d", o.State, i))
	}
	assert.Equal(t, Passed, results.Outcomes[0].State)
	assert.Equal(t, count-1, results.Count(Failed))
	assert.Equal(t, expected, testLogger.finished())
}

func TestConcurrencyIsBounded(t *testing.T) {
	var lock sync.Mutex
	active, maxActive := 0, 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lock.Lock()
		active++
		if active > maxActive {
			maxActive = active
		}
		lock.Unlock()
		time.Sleep(time.Millisecond * 20)
		lock.Lock()
		active--
		lock.Unlock()
		w.WriteHeader(200)
	})
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		var scenarios []Scenario
		for i := 0; i < 12; i++ {
			scenarios = append(scenarios, staticScenario(fmt.Sprintf("s%d", i), server.URL, assertion.StatusEquals(200)))
		}

		results := NewRunner(RunnerConfig{Concurrency: 3}).Run(context.Background(), scenarios)

		assert.Equal(t, 12, results.Count(Passed))
		assert.LessOrEqual(t, maxActive, 3)
	})
}

func TestCancelledRunSkipsRemainingScenarios(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	exec := fakeExecutor{responses: map[string]harness.ResponseRecord{}}
	first := staticScenario("first", "http://test/")
	first.Teardown = cancel
	scenarios := []Scenario{first, staticScenario("second", "http://test/"), staticScenario("third", "http://test/")}

	results := NewRunner(RunnerConfig{Executor: exec}).Run(ctx, scenarios)

	require.Len(t, results.Outcomes, 3)
	assert.Equal(t, Passed, results.Outcomes[0].State)
	for _, o := range results.Outcomes[1:] {
		assert.Equal(t, Skipped, o.State)
		assert.Equal(t, "run was cancelled", o.SkipReason)
	}
}

func TestCancelledConcurrentRunSkipsRemainingScenarios(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	exec := fakeExecutor{responses: map[string]harness.ResponseRecord{}}
	entered := make(chan struct{}, 2)
	release := make(chan struct{})
	blocking := func(name string) Scenario {
		s := staticScenario(name, "http://test/")
		s.Setup = func() error {
			entered <- struct{}{}
			<-release
			return nil
		}
		return s
	}
	scenarios := []Scenario{blocking("a"), blocking("b"), staticScenario("c", "http://test/"),
		staticScenario("d", "http://test/"), staticScenario("e", "http://test/")}
	go func() {
		<-entered
		<-entered
		cancel()
		close(release)
	}()
	testLogger := &recordingTestLogger{}

	results := NewRunner(RunnerConfig{Executor: exec, Concurrency: 2, TestLogger: testLogger}).Run(ctx, scenarios)

	require.Len(t, results.Outcomes, 5)
	assert.Equal(t, Passed, results.Outcomes[0].State)
	assert.Equal(t, Passed, results.Outcomes[1].State)
	for _, o := range results.Outcomes[2:] {
		assert.Equal(t, Skipped, o.State)
		assert.Equal(t, "run was cancelled", o.SkipReason)
	}
	assert.Equal(t, []string{"passed a", "passed b", "skipped c", "skipped d", "skipped e"}, testLogger.finished())
}

func TestEmptyRun(t *testing.T) {
	results := NewRunner(RunnerConfig{}).Run(context.Background(), nil)
	assert.Len(t, results.Outcomes, 0)
	assert.True(t, results.OK())
}
