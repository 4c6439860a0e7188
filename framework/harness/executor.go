package harness

import (
	"bytes"
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"strings"
	"time"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldlog"
)

// DefaultRequestTimeout is used when neither the ExecutorConfig nor the caller of Execute
// specifies a timeout.
const DefaultRequestTimeout = time.Second * 10

const defaultMaxIdleConnsPerHost = 10

// ExecutorConfig contains every setting of the HTTP client used by an Executor. Nothing is taken
// from process-wide defaults such as http.DefaultClient.
type ExecutorConfig struct {
	// DefaultTimeout applies when Execute is called with a zero timeout.
	DefaultTimeout time.Duration

	// MaxIdleConnsPerHost bounds the connection pool that is shared by all scenarios.
	MaxIdleConnsPerHost int

	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool

	// FollowRedirects makes the client follow 3xx responses. By default the redirect response
	// itself is returned, so that its status can be asserted on.
	FollowRedirects bool

	// Loggers receives debug-level diagnostics only.
	Loggers ldlog.Loggers
}

// Executor sends RequestSpecs over the network. It is safe for concurrent use; all calls share
// one connection pool. It never retries a request.
type Executor struct {
	client    *http.Client
	transport *http.Transport
	config    ExecutorConfig
}

func NewExecutor(config ExecutorConfig) *Executor {
	if config.DefaultTimeout <= 0 {
		config.DefaultTimeout = DefaultRequestTimeout
	}
	if config.MaxIdleConnsPerHost <= 0 {
		config.MaxIdleConnsPerHost = defaultMaxIdleConnsPerHost
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DisableCompression = true
	transport.MaxIdleConnsPerHost = config.MaxIdleConnsPerHost
	if config.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	client := &http.Client{Transport: transport}
	if !config.FollowRedirects {
		client.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	config.Loggers.Debugf("HTTP executor created: default timeout %s, max idle connections per host %d, follow redirects %t",
		config.DefaultTimeout, config.MaxIdleConnsPerHost, config.FollowRedirects)

	return &Executor{client: client, transport: transport, config: config}
}

// DefaultTimeout returns the timeout used when Execute is called with a zero timeout.
func (e *Executor) DefaultTimeout() time.Duration { return e.config.DefaultTimeout }

// Execute sends the request and reads the whole response. The timeout bounds the entire
// exchange; if it is zero or negative, the configured default is used.
//
// Content-Type and any other headers are sent exactly as they appear in the spec. The body is
// sent only for methods that allow one. An AuthStrategy attached to the spec is not applied
// here; that is the caller's responsibility, so the request that was sent is the spec that was
// passed in.
//
// Any failure is returned as a *TransportError.
func (e *Executor) Execute(spec RequestSpec, timeout time.Duration) (ResponseRecord, error) {
	if timeout <= 0 {
		timeout = e.config.DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var body io.Reader
	if spec.hasBody && spec.method.AllowsBody() {
		body = bytes.NewReader(spec.body)
	}
	req, err := http.NewRequestWithContext(ctx, string(spec.method), spec.url, body)
	if err != nil {
		return ResponseRecord{}, &BuildError{Method: string(spec.method), URL: spec.url, Problems: []string{err.Error()}}
	}
	for k, v := range spec.headers {
		if k == "Host" {
			req.Host = v
			continue
		}
		req.Header.Set(k, v)
	}

	e.config.Loggers.Debugf("Sending %s (timeout %s)", spec, timeout)
	start := time.Now()
	resp, err := e.client.Do(req)
	if err != nil {
		te := newTransportError(spec, err)
		e.config.Loggers.Debugf("%s failed after %s: %s", spec, time.Since(start), te)
		return ResponseRecord{}, te
	}
	elapsed := time.Since(start)
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		te := newTransportError(spec, err)
		e.config.Loggers.Debugf("%s: error reading response body: %s", spec, te)
		return ResponseRecord{}, te
	}

	headers := make(map[string]string, len(resp.Header))
	for k, values := range resp.Header {
		headers[k] = strings.Join(values, ", ")
	}
	e.config.Loggers.Debugf("%s returned status %d with %d body bytes in %s", spec, resp.StatusCode, len(data), elapsed)
	return NewResponseRecord(resp.StatusCode, headers, data, elapsed), nil
}

// Close releases idle connections in the pool. In-flight requests are not affected.
func (e *Executor) Close() {
	e.transport.CloseIdleConnections()
}
