// Package ldtest runs contract scenarios and records their outcomes.
//
// A Scenario combines a request builder with assertions. The Runner builds the request,
// applies its authentication strategy, sends it, and evaluates every assertion, catching any
// error or panic at the scenario boundary so that one broken scenario cannot affect the others.
// Transport problems make a scenario Errored; assertion mismatches make it Failed.
package ldtest
