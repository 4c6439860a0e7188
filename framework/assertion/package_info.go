// Package assertion contains the predicates that a contract scenario evaluates against a
// harness.ResponseRecord.
package assertion
