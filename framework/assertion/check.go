package assertion

import (
	"fmt"
	"strings"

	"github.com/launchdarkly/api-contract-tests/framework/harness"

	"github.com/stretchr/testify/require"
)

// Check creates an Assertion from a function that uses the testify assert and require packages,
// passing the TestingT it receives as if it were a *testing.T:
//
//     assertion.Check("book has an ID", func(t require.TestingT, resp harness.ResponseRecord) {
//         var book map[string]interface{}
//         require.NoError(t, json.Unmarshal(resp.Body(), &book))
//         assert.Contains(t, book, "id")
//     })
//
// Every failure reported through Errorf becomes part of the failure reason. A require failure
// stops the function, as it would in a Go test.
func Check(description string, fn func(t require.TestingT, resp harness.ResponseRecord)) Assertion {
	return Func(description, func(resp harness.ResponseRecord) Result {
		c := &checkCollector{}
		c.run(func() { fn(c, resp) })
		if len(c.errors) > 0 {
			return failed("%s", strings.Join(c.errors, "; "))
		}
		return passed()
	})
}

type checkCollector struct {
	errors []string
}

func (c *checkCollector) Errorf(format string, args ...interface{}) {
	c.errors = append(c.errors, reformatTestifyMessage(fmt.Sprintf(format, args...)))
}

func (c *checkCollector) FailNow() {
	panic(c)
}

func (c *checkCollector) run(action func()) {
	defer func() {
		if r := recover(); r != nil {
			if r != c {
				panic(r)
			}
			if len(c.errors) == 0 {
				c.errors = append(c.errors, "check failed with no failure message")
			}
		}
	}()
	action()
}

// reformatTestifyMessage drops the "Error Trace" section of a testify message, which only
// points into this package, and joins the rest into one line.
func reformatTestifyMessage(message string) string {
	if idx := strings.Index(message, "Error:"); idx >= 0 {
		message = message[idx+len("Error:"):]
	}
	var lines []string
	for _, line := range strings.Split(message, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, " ")
}
