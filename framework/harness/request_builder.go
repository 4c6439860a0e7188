package harness

import (
	"fmt"
	"net/http"
	"sort"

	"golang.org/x/net/http/httpguts"
)

// RequestBuilder accumulates the parts of a request and produces a RequestSpec. Problems such as
// an unsupported method or an invalid URL are not reported until Build is called.
//
//     spec, err := harness.NewRequest("PUT", baseURL+"/api/books/1").
//         PreemptiveBasicAuth("admin", "password").
//         JSONBody(`{"id": 1, "title": "A Family History"}`).
//         Build()
type RequestBuilder struct {
	method   string
	url      string
	headers  map[string]string
	body     []byte
	hasBody  bool
	auth     AuthStrategy
	problems []string
}

// NewRequest starts building a request with the given method and absolute URL.
func NewRequest(method, url string) *RequestBuilder {
	return &RequestBuilder{
		method:  method,
		url:     url,
		headers: make(map[string]string),
	}
}

func Get(url string) *RequestBuilder    { return NewRequest(string(MethodGet), url) }
func Post(url string) *RequestBuilder   { return NewRequest(string(MethodPost), url) }
func Put(url string) *RequestBuilder    { return NewRequest(string(MethodPut), url) }
func Delete(url string) *RequestBuilder { return NewRequest(string(MethodDelete), url) }
func Patch(url string) *RequestBuilder  { return NewRequest(string(MethodPatch), url) }

// Header sets a request header. The name is stored in canonical form, so setting the same
// header twice with different case keeps only the last value.
func (b *RequestBuilder) Header(name, value string) *RequestBuilder {
	b.headers[http.CanonicalHeaderKey(name)] = value
	return b
}

// Headers sets several request headers at once.
func (b *RequestBuilder) Headers(headers map[string]string) *RequestBuilder {
	for k, v := range headers {
		b.Header(k, v)
	}
	return b
}

// Body sets the request body. Content-Type is not inferred; set it with Header or use JSONBody.
func (b *RequestBuilder) Body(data []byte) *RequestBuilder {
	b.body = append([]byte{}, data...)
	b.hasBody = true
	return b
}

// JSONBody sets the request body and a Content-Type of application/json.
func (b *RequestBuilder) JSONBody(json string) *RequestBuilder {
	return b.Body([]byte(json)).Header("Content-Type", "application/json")
}

// Auth attaches an authentication strategy, which is applied after the spec is built.
func (b *RequestBuilder) Auth(strategy AuthStrategy) *RequestBuilder {
	b.auth = strategy
	return b
}

// PreemptiveBasicAuth is shorthand for Auth(NewBasicPreemptive(username, password)). Empty
// credentials cause Build to fail.
func (b *RequestBuilder) PreemptiveBasicAuth(username, password string) *RequestBuilder {
	strategy, err := NewBasicPreemptive(username, password)
	if err != nil {
		b.problems = append(b.problems, err.Error())
		return b
	}
	return b.Auth(strategy)
}

// Build validates the accumulated values and returns the RequestSpec. The builder can be
// reused afterward; the returned spec does not share state with it.
func (b *RequestBuilder) Build() (RequestSpec, error) {
	problems := append([]string(nil), b.problems...)

	method, err := ParseMethod(b.method)
	if err != nil {
		problems = append(problems, err.Error())
	}
	if err := validateURL(b.url); err != nil {
		problems = append(problems, err.Error())
	}
	problems = append(problems, b.headerProblems()...)
	if basic, ok := b.auth.(BasicPreemptive); ok && basic.username == "" {
		problems = append(problems, "preemptive basic auth requires a non-empty username and password")
	}
	if len(problems) > 0 {
		return RequestSpec{}, &BuildError{Method: b.method, URL: b.url, Problems: problems}
	}

	spec := RequestSpec{
		method:  method,
		url:     b.url,
		headers: make(map[string]string, len(b.headers)),
		auth:    b.auth,
	}
	for k, v := range b.headers {
		spec.headers[k] = v
	}
	if b.hasBody {
		spec.body = append([]byte{}, b.body...)
		spec.hasBody = true
		if !method.AllowsBody() {
			spec.warnings = append(spec.warnings,
				fmt.Sprintf("request body is ignored for %s requests", method))
		}
	}
	return spec, nil
}

func (b *RequestBuilder) headerProblems() []string {
	names := make([]string, 0, len(b.headers))
	for k := range b.headers {
		names = append(names, k)
	}
	sort.Strings(names)

	var problems []string
	for _, name := range names {
		if !httpguts.ValidHeaderFieldName(name) {
			problems = append(problems, fmt.Sprintf("invalid header name %q", name))
			continue
		}
		if !httpguts.ValidHeaderFieldValue(b.headers[name]) {
			problems = append(problems, fmt.Sprintf("invalid value for header %q", name))
		}
	}
	return problems
}
