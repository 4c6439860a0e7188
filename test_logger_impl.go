package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/launchdarkly/api-contract-tests/framework/ldtest"

	"github.com/fatih/color"
)

var (
	failColor = color.New(color.FgRed, color.Bold)
	passColor = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	dimColor  = color.New(color.FgHiBlack)
)

type ConsoleTestLogger struct {
	Out                  io.Writer
	DebugOutputOnFailure bool
	DebugOutputOnSuccess bool
}

func (c *ConsoleTestLogger) TestStarted(name string) {
	fmt.Fprintf(c.Out, "[%s]\n", name)
}

func (c *ConsoleTestLogger) TestFinished(o ldtest.Outcome) {
	for _, w := range o.Warnings {
		warnColor.Fprintf(c.Out, "  WARNING: %s\n", w)
	}
	switch o.State {
	case ldtest.Passed:
		passColor.Fprintf(c.Out, "  passed: %s", o.ScenarioName)
		dimColor.Fprintf(c.Out, " (%d in %s)\n", o.StatusCode, o.Elapsed.Round(time.Millisecond))
	case ldtest.Failed:
		failColor.Fprintf(c.Out, "  FAILED: %s\n", o.ScenarioName)
		for _, f := range o.Failures {
			fmt.Fprintf(c.Out, "    - %s\n", f)
		}
	case ldtest.Errored:
		failColor.Fprintf(c.Out, "  ERROR: %s\n", o.ScenarioName)
		if o.Err != nil {
			for _, line := range strings.Split(o.Err.Error(), "\n") {
				fmt.Fprintf(c.Out, "    %s\n", line)
			}
		}
	}
	failed := o.State == ldtest.Failed || o.State == ldtest.Errored
	if len(o.DebugOutput) > 0 &&
		((failed && c.DebugOutputOnFailure) || (!failed && c.DebugOutputOnSuccess)) {
		o.DebugOutput.Dump(c.Out, "    DEBUG ")
	}
}

func (c *ConsoleTestLogger) TestSkipped(name string, reason string) {
	if reason == "" {
		warnColor.Fprintf(c.Out, "  SKIPPED: %s\n", name)
	} else {
		warnColor.Fprintf(c.Out, "  SKIPPED: %s (%s)\n", name, reason)
	}
}

// PrintResults writes a summary of the run, listing every scenario that failed or errored.
func PrintResults(out io.Writer, results ldtest.Results, elapsed time.Duration) {
	fmt.Fprintf(out, "Ran %d scenarios in %s: %d passed, %d failed, %d errored, %d skipped\n",
		len(results.Outcomes), elapsed.Round(time.Millisecond),
		results.Count(ldtest.Passed), results.Count(ldtest.Failed),
		results.Count(ldtest.Errored), results.Count(ldtest.Skipped))
	problems := results.Problems()
	if len(problems) == 0 {
		passColor.Fprintln(out, "All scenarios passed")
		return
	}
	failColor.Fprintf(out, "%d scenario(s) did not pass:\n", len(problems))
	for _, o := range problems {
		fmt.Fprintf(out, "  %s [%s]\n", o.ScenarioName, o.State)
		for _, m := range o.Messages() {
			fmt.Fprintf(out, "    %s\n", strings.SplitN(m, "\n", 2)[0])
		}
	}
}
