package harness

import (
	"bytes"
	"net"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAwaitServiceAcceptsAnyStatus(t *testing.T) {
	httphelpers.WithServer(httphelpers.HandlerWithStatus(401), func(server *httptest.Server) {
		var out bytes.Buffer
		e := NewExecutor(ExecutorConfig{})
		defer e.Close()
		require.NoError(t, e.AwaitService(server.URL, time.Second, &out))
		assert.Contains(t, out.String(), "Service responded with status 401")
	})
}

func TestAwaitServiceTimesOut(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	err = NewExecutor(ExecutorConfig{}).AwaitService("http://"+addr, time.Millisecond*250, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out waiting for service")
}

func TestAwaitServiceUsesExecutorTLSSettings(t *testing.T) {
	server := httptest.NewTLSServer(httphelpers.HandlerWithStatus(200))
	defer server.Close()

	err := NewExecutor(ExecutorConfig{}).AwaitService(server.URL, time.Millisecond*300, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "certificate")

	var out bytes.Buffer
	insecure := NewExecutor(ExecutorConfig{InsecureSkipVerify: true})
	defer insecure.Close()
	require.NoError(t, insecure.AwaitService(server.URL, time.Second, &out))
	assert.Contains(t, out.String(), "Service responded with status 200")
}
