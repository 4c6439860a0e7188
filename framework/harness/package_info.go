// Package harness contains the HTTP side of the contract test framework: building immutable
// request descriptions, applying authentication strategies, and sending requests with an
// Executor whose failures are classified as typed transport errors.
package harness
