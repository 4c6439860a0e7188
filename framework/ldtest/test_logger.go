package ldtest

// TestLogger receives progress notifications from a Runner. Calls are never concurrent.
// TestFinished and TestSkipped are called in scenario declaration order, even when scenarios
// complete out of order; TestStarted is called when a scenario actually starts.
type TestLogger interface {
	TestStarted(name string)
	TestFinished(outcome Outcome)
	TestSkipped(name string, reason string)
}

type nullTestLogger struct{}

func (n nullTestLogger) TestStarted(string)         {}
func (n nullTestLogger) TestFinished(Outcome)       {}
func (n nullTestLogger) TestSkipped(string, string) {}
