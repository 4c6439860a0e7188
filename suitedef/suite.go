package suitedef

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/launchdarkly/api-contract-tests/framework/assertion"
	"github.com/launchdarkly/api-contract-tests/framework/harness"
	"github.com/launchdarkly/api-contract-tests/framework/ldtest"

	"gopkg.in/yaml.v3"
)

const (
	AuthTypeNone  = "none"
	AuthTypeBasic = "basic"
)

// Suite is a set of contract scenarios loaded from a YAML file.
type Suite struct {
	Name        string        `yaml:"name"`
	BaseURL     string        `yaml:"baseURL"`
	Timeout     time.Duration `yaml:"timeout"`
	Concurrency int           `yaml:"concurrency"`
	// Auth is the default for scenarios that do not have their own.
	Auth      *AuthDef      `yaml:"auth"`
	Scenarios []ScenarioDef `yaml:"scenarios"`
}

type AuthDef struct {
	Type     string `yaml:"type"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// ScenarioDef describes one request and its expectations. Either Path, which is appended to the
// suite's base URL, or an absolute URL must be set.
type ScenarioDef struct {
	Name    string            `yaml:"name"`
	Method  string            `yaml:"method"`
	Path    string            `yaml:"path"`
	URL     string            `yaml:"url"`
	Headers map[string]string `yaml:"headers"`
	// Body is sent as is. JSON is encoded as JSON and sent with a JSON content type; it can be
	// written as a YAML mapping.
	Body    *string       `yaml:"body"`
	JSON    interface{}   `yaml:"json"`
	Auth    *AuthDef      `yaml:"auth"`
	Timeout time.Duration `yaml:"timeout"`
	Expect  Expectation   `yaml:"expect"`
}

type Expectation struct {
	Status          int                    `yaml:"status"`
	Headers         map[string]string      `yaml:"headers"`
	BodyContains    []string               `yaml:"bodyContains"`
	JSONPath        map[string]interface{} `yaml:"jsonPath"`
	JSONBody        string                 `yaml:"jsonBody"`
	MaxResponseTime time.Duration          `yaml:"maxResponseTime"`
}

// LoadSuite reads and validates a suite file.
func LoadSuite(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading suite %s: %w", path, err)
	}
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("unsupported suite format %q (expected .yaml or .yml)", ext)
	}
	return ParseSuite(data, path)
}

// ParseSuite parses and validates suite YAML. The source is used in error messages.
func ParseSuite(data []byte, source string) (*Suite, error) {
	var s Suite
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing suite %s: %w", source, err)
	}
	if problems := s.validate(); len(problems) > 0 {
		return nil, fmt.Errorf("suite %s is invalid: %s", source, strings.Join(problems, "; "))
	}
	return &s, nil
}

func (s *Suite) validate() []string {
	var problems []string
	if s.Name == "" {
		problems = append(problems, "name is required")
	}
	if len(s.Scenarios) == 0 {
		problems = append(problems, "at least one scenario is required")
	}
	if s.Concurrency < 0 {
		problems = append(problems, "concurrency cannot be negative")
	}
	if p := validateAuth(s.Auth); p != "" {
		problems = append(problems, "auth: "+p)
	}
	for i, sc := range s.Scenarios {
		label := fmt.Sprintf("scenario %d", i+1)
		if sc.Name != "" {
			label = fmt.Sprintf("scenario %q", sc.Name)
		} else {
			problems = append(problems, label+": name is required")
		}
		if _, err := harness.ParseMethod(sc.Method); err != nil {
			problems = append(problems, label+": "+err.Error())
		}
		switch {
		case sc.Path == "" && sc.URL == "":
			problems = append(problems, label+": path or url is required")
		case sc.Path != "" && sc.URL != "":
			problems = append(problems, label+": path and url cannot both be set")
		}
		if sc.Body != nil && sc.JSON != nil {
			problems = append(problems, label+": body and json cannot both be set")
		}
		if p := validateAuth(sc.Auth); p != "" {
			problems = append(problems, label+": auth: "+p)
		}
	}
	return problems
}

func validateAuth(a *AuthDef) string {
	if a == nil {
		return ""
	}
	switch a.Type {
	case AuthTypeNone:
		return ""
	case AuthTypeBasic:
		if a.Username == "" || a.Password == "" {
			return "basic auth requires username and password"
		}
		return ""
	default:
		return fmt.Sprintf("unknown auth type %q (expected %q or %q)", a.Type, AuthTypeNone, AuthTypeBasic)
	}
}

// RunnerDefaults returns the suite's request timeout and concurrency. Zero values mean the
// caller's defaults apply.
func (s *Suite) RunnerDefaults() (timeout time.Duration, concurrency int) {
	return s.Timeout, s.Concurrency
}

// Scenarios converts the suite into runnable scenarios. If baseURL is not empty, it replaces the
// suite's own base URL. Scenario names are prefixed with the suite name, so "-run bookstore/"
// selects a whole suite.
func (s *Suite) Scenarios(baseURL string) []ldtest.Scenario {
	if baseURL == "" {
		baseURL = s.BaseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	ret := make([]ldtest.Scenario, 0, len(s.Scenarios))
	for _, def := range s.Scenarios {
		def := def
		url := def.URL
		if url == "" {
			url = baseURL + "/" + strings.TrimPrefix(def.Path, "/")
		}
		auth := def.Auth
		if auth == nil {
			auth = s.Auth
		}
		timeout := def.Timeout
		if timeout <= 0 {
			timeout = s.Timeout
		}
		ret = append(ret, ldtest.Scenario{
			Name:       s.Name + "/" + def.Name,
			Build:      func() (harness.RequestSpec, error) { return def.build(url, auth) },
			Assertions: def.Expect.assertions(),
			Timeout:    timeout,
		})
	}
	return ret
}

func (d ScenarioDef) build(url string, auth *AuthDef) (harness.RequestSpec, error) {
	b := harness.NewRequest(d.Method, url).Headers(d.Headers)
	switch {
	case d.Body != nil:
		b.Body([]byte(*d.Body))
	case d.JSON != nil:
		data, err := json.Marshal(d.JSON)
		if err != nil {
			return harness.RequestSpec{}, &harness.BuildError{Method: d.Method, URL: url,
				Problems: []string{fmt.Sprintf("json body cannot be encoded: %s", err)}}
		}
		b.JSONBody(string(data))
	}
	if auth != nil {
		switch auth.Type {
		case AuthTypeBasic:
			b.PreemptiveBasicAuth(auth.Username, auth.Password)
		case AuthTypeNone:
			b.Auth(harness.NoAuth)
		}
	}
	return b.Build()
}

func (e Expectation) assertions() []assertion.Assertion {
	var ret []assertion.Assertion
	if e.Status != 0 {
		ret = append(ret, assertion.StatusEquals(e.Status))
	}
	for _, name := range sortedKeys(e.Headers) {
		ret = append(ret, assertion.HeaderEquals(name, e.Headers[name]))
	}
	for _, s := range e.BodyContains {
		ret = append(ret, assertion.BodyContains(s))
	}
	paths := make([]string, 0, len(e.JSONPath))
	for p := range e.JSONPath {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		ret = append(ret, assertion.BodyJSONPathEquals(p, e.JSONPath[p]))
	}
	if e.JSONBody != "" {
		ret = append(ret, assertion.BodyJSONEquals(e.JSONBody))
	}
	if e.MaxResponseTime > 0 {
		ret = append(ret, assertion.ResponseTimeBelow(e.MaxResponseTime))
	}
	return ret
}

func sortedKeys(m map[string]string) []string {
	ret := make([]string, 0, len(m))
	for k := range m {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}
