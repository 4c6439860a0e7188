package harness

import (
	"encoding/base64"
	"errors"
	"fmt"
)

// AuthStrategy adds credentials to a request before it is sent.
type AuthStrategy interface {
	Apply(spec RequestSpec) RequestSpec
	String() string
}

type noAuth struct{}

// NoAuth sends the request exactly as it was built.
var NoAuth AuthStrategy = noAuth{}

func (noAuth) Apply(spec RequestSpec) RequestSpec { return spec }

func (noAuth) String() string { return "no auth" }

// BasicPreemptive sends HTTP Basic credentials on the first request, without waiting for a 401
// challenge from the server. It never probes the server to find out whether credentials are
// needed.
type BasicPreemptive struct {
	username string
	password string
}

// NewBasicPreemptive returns a preemptive Basic auth strategy. Both values must be non-empty.
func NewBasicPreemptive(username, password string) (BasicPreemptive, error) {
	if username == "" || password == "" {
		return BasicPreemptive{}, errors.New("preemptive basic auth requires a non-empty username and password")
	}
	return BasicPreemptive{username: username, password: password}, nil
}

func (b BasicPreemptive) Username() string { return b.username }

// Credential returns base64(username:password).
func (b BasicPreemptive) Credential() string {
	return base64.StdEncoding.EncodeToString([]byte(b.username + ":" + b.password))
}

// Apply sets the Authorization header, replacing any value it already had. The zero value of
// BasicPreemptive has no credentials and leaves the spec unchanged.
func (b BasicPreemptive) Apply(spec RequestSpec) RequestSpec {
	if b.username == "" {
		return spec
	}
	return spec.WithHeader("Authorization", "Basic "+b.Credential())
}

func (b BasicPreemptive) String() string {
	return fmt.Sprintf("preemptive basic auth as %q", b.username)
}
