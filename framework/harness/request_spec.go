package harness

import (
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/alessio/shellescape"
)

// Method is one of the HTTP methods a contract scenario can use.
type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodDelete Method = "DELETE"
	MethodPatch  Method = "PATCH"
)

var allMethods = []Method{MethodGet, MethodPost, MethodPut, MethodDelete, MethodPatch}

// ParseMethod converts a method name, in any case, to a Method.
func ParseMethod(s string) (Method, error) {
	upper := Method(strings.ToUpper(strings.TrimSpace(s)))
	for _, m := range allMethods {
		if m == upper {
			return m, nil
		}
	}
	return "", fmt.Errorf("unsupported HTTP method %q", s)
}

// AllowsBody returns true for the methods whose request body is transmitted (POST, PUT, PATCH).
func (m Method) AllowsBody() bool {
	return m == MethodPost || m == MethodPut || m == MethodPatch
}

// RequestSpec is an immutable description of one HTTP call. It is created by RequestBuilder.Build;
// methods that change it, such as WithHeader, return a modified copy.
type RequestSpec struct {
	method   Method
	url      string
	headers  map[string]string
	body     []byte
	hasBody  bool
	auth     AuthStrategy
	warnings []string
}

func (s RequestSpec) Method() Method { return s.method }

func (s RequestSpec) URL() string { return s.url }

// Headers returns a copy of the request headers. Keys are in canonical form.
func (s RequestSpec) Headers() map[string]string {
	ret := make(map[string]string, len(s.headers))
	for k, v := range s.headers {
		ret[k] = v
	}
	return ret
}

// Header looks up a header value by name, ignoring case.
func (s RequestSpec) Header(name string) (string, bool) {
	v, ok := s.headers[http.CanonicalHeaderKey(name)]
	return v, ok
}

// Body returns a copy of the request body, or nil if none was set.
func (s RequestSpec) Body() []byte {
	if !s.hasBody {
		return nil
	}
	return append([]byte{}, s.body...)
}

// HasBody returns true if a body was set, even an empty one.
func (s RequestSpec) HasBody() bool { return s.hasBody }

// Auth returns the authentication strategy attached to the request, or nil.
func (s RequestSpec) Auth() AuthStrategy { return s.auth }

// Warnings returns non-fatal problems noticed while building the request, such as a body
// attached to a GET request.
func (s RequestSpec) Warnings() []string {
	return append([]string(nil), s.warnings...)
}

// WithHeader returns a copy of the spec with the header set, replacing any existing value for
// the same name regardless of case.
func (s RequestSpec) WithHeader(name, value string) RequestSpec {
	headers := s.Headers()
	headers[http.CanonicalHeaderKey(name)] = value
	s.headers = headers
	return s
}

// WithoutAuth returns a copy of the spec with no authentication strategy attached. Headers that
// a strategy has already added are not removed.
func (s RequestSpec) WithoutAuth() RequestSpec {
	s.auth = nil
	return s
}

func (s RequestSpec) String() string {
	return fmt.Sprintf("%s %s", s.method, s.url)
}

// CurlCommand renders the request as a curl command line, for debug output. The value of an
// Authorization header is redacted.
func (s RequestSpec) CurlCommand() string {
	var cmd commandBuilder
	cmd.addRaw("curl", "-sS", "-X")
	cmd.add(string(s.method))

	names := make([]string, 0, len(s.headers))
	for k := range s.headers {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		v := s.headers[k]
		if k == "Authorization" {
			if sp := strings.IndexByte(v, ' '); sp > 0 {
				v = v[:sp] + " <redacted>"
			} else {
				v = "<redacted>"
			}
		}
		cmd.addRaw("-H")
		cmd.add(k + ": " + v)
	}
	if s.hasBody && s.method.AllowsBody() {
		cmd.addRaw("--data-raw")
		cmd.add(string(s.body))
	}
	cmd.add(s.url)
	return cmd.String()
}

// commandBuilder only renders curl lines; the CLI has its own copy for rerun commands, so it
// is not part of this package's API.
type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b *commandBuilder) addRaw(args ...string) {
	*b = append(*b, args...)
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}

func validateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("URL %q is not an absolute URL", rawURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL %q has unsupported scheme %q", rawURL, u.Scheme)
	}
	return nil
}
