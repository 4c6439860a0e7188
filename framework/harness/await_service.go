package harness

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	awaitServicePollInterval = time.Millisecond * 100
	awaitServiceQueryTimeout = time.Second
)

// AwaitService polls the service at the given URL until it returns any HTTP response, so that a
// test run does not start before the service under test is listening. Queries go through the
// executor's client, so its TLS and redirect settings apply. Progress is written to output. It
// returns an error if the timeout elapses first.
//
// The status code is not checked: a service that requires authentication for its root URL
// still counts as available.
func (e *Executor) AwaitService(url string, timeout time.Duration, output io.Writer) error {
	if output == nil {
		output = io.Discard
	}
	fmt.Fprintf(output, "Connecting to service at %s", url)

	deadline := time.Now().Add(timeout)
	for {
		fmt.Fprintf(output, ".")
		status, err := e.queryService(url)
		if err == nil {
			fmt.Fprintln(output)
			fmt.Fprintf(output, "Service responded with status %d\n", status)
			return nil
		}
		e.config.Loggers.Debugf("Service at %s is not available yet: %s", url, err)
		if !time.Now().Before(deadline) {
			fmt.Fprintln(output)
			return fmt.Errorf("timed out waiting for service, result of last query was: %w", err)
		}
		time.Sleep(awaitServicePollInterval)
	}
}

func (e *Executor) queryService(url string) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), awaitServiceQueryTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return 0, err
	}
	_ = resp.Body.Close()
	return resp.StatusCode, nil
}
