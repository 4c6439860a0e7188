package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/launchdarkly/api-contract-tests/booktests"
	"github.com/launchdarkly/api-contract-tests/framework"
	"github.com/launchdarkly/api-contract-tests/framework/harness"
	"github.com/launchdarkly/api-contract-tests/framework/ldtest"
	"github.com/launchdarkly/api-contract-tests/suitedef"

	"github.com/fatih/color"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldlog"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	code := run(ctx, os.Args, color.Output, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, out, errOut io.Writer) int {
	var params commandParams
	if !params.Read(args, errOut) {
		return 2
	}
	if params.noColor {
		color.NoColor = true
	}

	loggers := ldlog.NewDefaultLoggers()
	loggers.SetBaseLogger(log.New(errOut, "", log.LstdFlags))
	loggers.SetMinLevel(ldlog.Info)
	if params.debugAll {
		loggers.SetMinLevel(ldlog.Debug)
	}

	scenarios, concurrency, err := loadScenarios(params)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	if params.concurrency > 0 {
		concurrency = params.concurrency
	}

	executor := harness.NewExecutor(harness.ExecutorConfig{
		DefaultTimeout:     params.timeout,
		InsecureSkipVerify: params.insecure,
		FollowRedirects:    params.followRedirect,
		Loggers:            loggers,
	})
	defer executor.Close()

	if params.awaitService > 0 {
		target := params.baseURL
		if target == "" && params.builtin {
			target = booktests.DefaultBaseURL
		}
		if target == "" {
			fmt.Fprintln(errOut, "-await-service requires -url")
			return 2
		}
		if err := executor.AwaitService(target, params.awaitService, out); err != nil {
			fmt.Fprintf(errOut, "Service error: %s\n", err)
			return 1
		}
	}

	fmt.Fprintln(out)
	framework.PrintFilterDescription(out, params.filters)
	fmt.Fprintf(out, "Running %d scenarios\n", len(scenarios))

	runner := ldtest.NewRunner(ldtest.RunnerConfig{
		Executor:    executor,
		Concurrency: concurrency,
		Filter:      params.filters.AsFilter,
		TestLogger: &ConsoleTestLogger{
			Out:                  out,
			DebugOutputOnFailure: params.debug || params.debugAll,
			DebugOutputOnSuccess: params.debugAll,
		},
		Loggers: loggers,
	})
	startedAt := time.Now()
	results := runner.Run(ctx, scenarios)
	elapsed := time.Since(startedAt)

	fmt.Fprintln(out)
	PrintResults(out, results, elapsed)

	if params.jsonReport != "" {
		if err := writeJSONReport(params.jsonReport, newJSONReport(results, startedAt, elapsed)); err != nil {
			loggers.Errorf("%s", err)
		}
	}

	if !results.OK() {
		var names []string
		for _, o := range results.Problems() {
			names = append(names, o.ScenarioName)
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, "To run only the scenarios that did not pass:")
		fmt.Fprintf(out, "  %s\n", rerunCommand(args, names))
		return 1
	}
	return 0
}

// loadScenarios collects the built-in scenarios and those of every suite file. The returned
// concurrency is the largest that any suite asks for.
func loadScenarios(params commandParams) ([]ldtest.Scenario, int, error) {
	var scenarios []ldtest.Scenario
	concurrency := 1
	if params.builtin {
		baseURL := params.baseURL
		if baseURL == "" {
			baseURL = booktests.DefaultBaseURL
		}
		scenarios = append(scenarios, booktests.AllScenarios(baseURL)...)
	}
	for _, path := range params.suites {
		suite, err := suitedef.LoadSuite(path)
		if err != nil {
			return nil, 0, err
		}
		if _, c := suite.RunnerDefaults(); c > concurrency {
			concurrency = c
		}
		scenarios = append(scenarios, suite.Scenarios(params.baseURL)...)
	}
	return scenarios, concurrency, nil
}
