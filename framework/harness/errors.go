package harness

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
)

// BuildError means a RequestSpec could not be built, for instance because the URL is not
// absolute. No request was sent.
type BuildError struct {
	Method   string
	URL      string
	Problems []string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("invalid request %s %s: %s", e.Method, e.URL, strings.Join(e.Problems, "; "))
}

type TransportErrorKind int

const (
	// Timeout means the deadline passed before the exchange completed.
	Timeout TransportErrorKind = iota + 1
	// ConnectionRefused means the target could not be reached: the connection was refused, the
	// host was unreachable, or its name could not be resolved.
	ConnectionRefused
	// MalformedResponse means the server answered with something that could not be read as a
	// status line, headers and body.
	MalformedResponse
	// TLSFailure means the TLS handshake failed, for instance on an untrusted certificate.
	TLSFailure
)

func (k TransportErrorKind) String() string {
	switch k {
	case Timeout:
		return "timeout"
	case ConnectionRefused:
		return "connection refused"
	case MalformedResponse:
		return "malformed response"
	case TLSFailure:
		return "TLS failure"
	default:
		return fmt.Sprintf("TransportErrorKind(%d)", int(k))
	}
}

// TransportError is returned by Executor.Execute for any failure that happened while sending the
// request or receiving the response.
type TransportError struct {
	Kind   TransportErrorKind
	Method Method
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s for %s %s: %s", e.Kind, e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func newTransportError(spec RequestSpec, err error) *TransportError {
	return &TransportError{
		Kind:   classifyTransportError(err),
		Method: spec.method,
		URL:    spec.url,
		Err:    err,
	}
}

func classifyTransportError(err error) TransportErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return Timeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Timeout
	}
	if isTLSError(err) {
		return TLSFailure
	}
	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH) {
		return ConnectionRefused
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ConnectionRefused
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return ConnectionRefused
	}
	return MalformedResponse
}

func isTLSError(err error) bool {
	var verifyErr *tls.CertificateVerificationError
	var unknownAuthority x509.UnknownAuthorityError
	var hostname x509.HostnameError
	var invalid x509.CertificateInvalidError
	var recordHeader tls.RecordHeaderError
	var alert tls.AlertError
	return errors.As(err, &verifyErr) ||
		errors.As(err, &unknownAuthority) ||
		errors.As(err, &hostname) ||
		errors.As(err, &invalid) ||
		errors.As(err, &recordHeader) ||
		errors.As(err, &alert)
}
