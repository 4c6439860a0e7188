// Package bookstore is a small in-memory bookstore API with HTTP Basic authentication. It is the
// service that the booktests scenarios describe, and can be used to try out or test the harness
// without any external service.
package bookstore
