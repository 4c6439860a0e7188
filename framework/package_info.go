// Package framework contains the low-level implementation of contract test infrastructure
// that can be reused for testing different REST APIs. The base package contains shared
// types such as Logger and the scenario filters; other components are in the subpackages
// harness, assertion and ldtest.
//
// The general model is:
//
// 1. A scenario describes one HTTP request to the service under test. The harness package
// turns that description into an immutable RequestSpec, decorates it with an authentication
// strategy, and sends it with an Executor that reports every network problem as a typed
// TransportError.
//
// 2. The assertion package evaluates the captured ResponseRecord. Assertions are pure, and
// every assertion of a scenario is evaluated so that a failed contract check reports all of
// its mismatches at once.
//
// 3. The ldtest package runs a list of scenarios, sequentially or on a bounded worker pool,
// and produces one Outcome per scenario. A transport failure is reported as Errored, never
// as Failed, so an outage is not mistaken for a contract change.
//
// The domain-specific code that knows what is being tested is responsible for providing the
// scenarios; presentation of the results belongs to the caller.
package framework
