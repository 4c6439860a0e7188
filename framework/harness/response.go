package harness

import (
	"net/http"
	"time"
)

// ResponseRecord is the captured result of one HTTP exchange. It cannot be modified after it is
// created; accessors return copies.
type ResponseRecord struct {
	statusCode int
	headers    map[string]string
	body       []byte
	elapsed    time.Duration
}

// NewResponseRecord creates a ResponseRecord. Header names are stored in canonical form. This is
// used by the Executor, and by tests that evaluate assertions without a server.
func NewResponseRecord(statusCode int, headers map[string]string, body []byte, elapsed time.Duration) ResponseRecord {
	r := ResponseRecord{
		statusCode: statusCode,
		headers:    make(map[string]string, len(headers)),
		body:       append([]byte{}, body...),
		elapsed:    elapsed,
	}
	for k, v := range headers {
		r.headers[http.CanonicalHeaderKey(k)] = v
	}
	return r
}

func (r ResponseRecord) StatusCode() int { return r.statusCode }

// Headers returns a copy of the response headers. A header that appeared more than once has
// its values joined with ", ".
func (r ResponseRecord) Headers() map[string]string {
	ret := make(map[string]string, len(r.headers))
	for k, v := range r.headers {
		ret[k] = v
	}
	return ret
}

// Header looks up a header value by name, ignoring case.
func (r ResponseRecord) Header(name string) (string, bool) {
	v, ok := r.headers[http.CanonicalHeaderKey(name)]
	return v, ok
}

func (r ResponseRecord) Body() []byte { return append([]byte{}, r.body...) }

// BodyString returns the body as a string.
func (r ResponseRecord) BodyString() string { return string(r.body) }

// Elapsed is the time from sending the request to receiving the response headers.
func (r ResponseRecord) Elapsed() time.Duration { return r.elapsed }
