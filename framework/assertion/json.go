package assertion

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/launchdarkly/api-contract-tests/framework/harness"

	"github.com/tidwall/gjson"
	"github.com/wI2L/jsondiff"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// BodyJSONPathEquals passes if the response body is JSON and the value at the path is
// structurally equal to expected. The path uses gjson syntax, for instance "title",
// "books.0.author" or "data.#" for an array length.
//
// Numbers are compared by value, so an expected int 1 matches a JSON 1.0. The expected value
// can be any value that ldvalue.CopyArbitraryValue accepts, or an ldvalue.Value.
func BodyJSONPathEquals(path string, expected interface{}) Assertion {
	expectedValue, ok := expected.(ldvalue.Value)
	if !ok {
		expectedValue = ldvalue.CopyArbitraryValue(expected)
	}
	description := fmt.Sprintf("JSON path %q is %s", path, expectedValue.JSONString())
	return Func(description, func(resp harness.ResponseRecord) Result {
		body := resp.Body()
		if !gjson.ValidBytes(body) {
			return failed("expected JSON path %q to be %s but the body is not valid JSON: %s",
				path, expectedValue.JSONString(), abbreviate(string(body)))
		}
		found := gjson.GetBytes(body, path)
		if !found.Exists() {
			return failed("expected JSON path %q to be %s but it was not found", path, expectedValue.JSONString())
		}
		actual := ldvalue.Parse([]byte(found.Raw))
		if !actual.Equal(expectedValue) {
			return failed("expected JSON path %q to be %s but got %s",
				path, expectedValue.JSONString(), actual.JSONString())
		}
		return passed()
	})
}

// BodyJSONEquals passes if the response body is JSON that is structurally equal to the expected
// JSON document; key order and whitespace do not matter. On failure, the reason lists the JSON
// Patch operations that would turn the expected document into the actual one.
func BodyJSONEquals(expectedJSON string) Assertion {
	return Func("body equals "+expectedJSON, func(resp harness.ResponseRecord) Result {
		if !gjson.Valid(expectedJSON) {
			return failed("expected body is not valid JSON: %s", expectedJSON)
		}
		body := resp.Body()
		if !gjson.ValidBytes(body) {
			return failed("expected JSON body %s but the body is not valid JSON: %s",
				expectedJSON, abbreviate(string(body)))
		}
		patch, err := jsondiff.CompareJSON([]byte(expectedJSON), body)
		if err != nil {
			return failed("could not compare JSON bodies: %s", err)
		}
		if len(patch) == 0 {
			return passed()
		}
		ops := make([]string, 0, len(patch))
		for _, op := range patch {
			data, _ := json.Marshal(op)
			ops = append(ops, string(data))
		}
		return failed("JSON body differs from expected: %s", strings.Join(ops, ", "))
	})
}
