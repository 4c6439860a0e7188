package main

import (
	"flag"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/launchdarkly/api-contract-tests/framework"
	"github.com/launchdarkly/api-contract-tests/framework/harness"

	"github.com/alessio/shellescape"
)

type commandParams struct {
	baseURL        string
	suites         stringList
	builtin        bool
	concurrency    int
	timeout        time.Duration
	jsonReport     string
	insecure       bool
	awaitService   time.Duration
	followRedirect bool
	filters        framework.RegexFilters
	debug          bool
	debugAll       bool
	noColor        bool
}

func (c *commandParams) Read(args []string, errOut io.Writer) bool {
	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.StringVar(&c.baseURL, "url", "", "base URL of the service under test (overrides the baseURL of suite files)")
	fs.Var(&c.suites, "suite", "YAML suite file to run (can be repeated)")
	fs.BoolVar(&c.builtin, "builtin", false, "run the built-in bookstore scenarios (the default if no -suite is given)")
	fs.IntVar(&c.concurrency, "concurrency", 0, "maximum number of scenarios to run at once (default: from suite files, or 1)")
	fs.DurationVar(&c.timeout, "timeout", harness.DefaultRequestTimeout, "timeout for each request")
	fs.StringVar(&c.jsonReport, "json-report", "", "file to write a JSON report to")
	fs.BoolVar(&c.insecure, "insecure", false, "do not verify TLS certificates")
	fs.DurationVar(&c.awaitService, "await-service", 0, "wait up to this long for the service to respond before running")
	fs.BoolVar(&c.followRedirect, "follow-redirects", false, "follow 3xx responses instead of asserting on them")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select scenarios to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select scenarios not to run")
	fs.BoolVar(&c.debug, "debug", false, "show debug output for failed scenarios")
	fs.BoolVar(&c.debugAll, "debug-all", false, "show debug output for all scenarios, and harness diagnostics")
	fs.BoolVar(&c.noColor, "no-color", false, "disable colored output")

	if err := fs.Parse(args[1:]); err != nil {
		return false
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(errOut, "unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
		fs.Usage()
		return false
	}
	if c.concurrency < 0 {
		fmt.Fprintln(errOut, "-concurrency cannot be negative")
		return false
	}
	if len(c.suites) == 0 {
		c.builtin = true
	}
	return true
}

type stringList []string

func (s stringList) String() string {
	return strings.Join(s, ",")
}

func (s *stringList) Set(value string) error {
	*s = append(*s, value)
	return nil
}

// rerunCommand returns a command line that runs only the named scenarios again, with the same
// settings otherwise.
func rerunCommand(args []string, names []string) string {
	var cmd commandBuilder
	cmd.add(args[0])
	for i := 1; i < len(args); i++ {
		a := strings.TrimLeft(args[i], "-")
		if a == "run" || a == "skip" {
			i++
			continue
		}
		if strings.HasPrefix(a, "run=") || strings.HasPrefix(a, "skip=") {
			continue
		}
		cmd.add(args[i])
	}
	patterns := make([]string, 0, len(names))
	for _, n := range names {
		patterns = append(patterns, regexp.QuoteMeta(n))
	}
	cmd.add("-run", "^("+strings.Join(patterns, "|")+")$")
	return cmd.String()
}

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}
