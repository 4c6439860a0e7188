package assertion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

const bookJSON = `{"id": 1, "title": "A Family History", "author": "Vivian Gornick", "tags": ["memoir", "family"]}`

func TestBodyJSONPathEquals(t *testing.T) {
	resp := response(200, bookJSON)

	assert.True(t, BodyJSONPathEquals("id", 1).Evaluate(resp).Passed)
	assert.True(t, BodyJSONPathEquals("id", 1.0).Evaluate(resp).Passed)
	assert.True(t, BodyJSONPathEquals("title", "A Family History").Evaluate(resp).Passed)
	assert.True(t, BodyJSONPathEquals("tags", []interface{}{"memoir", "family"}).Evaluate(resp).Passed)
	assert.True(t, BodyJSONPathEquals("tags.#", 2).Evaluate(resp).Passed)
	assert.True(t, BodyJSONPathEquals("author", ldvalue.String("Vivian Gornick")).Evaluate(resp).Passed)
}

func TestBodyJSONPathEqualsFailures(t *testing.T) {
	resp := response(200, bookJSON)

	result := BodyJSONPathEquals("id", 2).Evaluate(resp)
	assert.Equal(t, `expected JSON path "id" to be 2 but got 1`, result.FailureReason)

	result = BodyJSONPathEquals("id", "1").Evaluate(resp)
	assert.Equal(t, `expected JSON path "id" to be "1" but got 1`, result.FailureReason)

	result = BodyJSONPathEquals("isbn", "x").Evaluate(resp)
	assert.Equal(t, `expected JSON path "isbn" to be "x" but it was not found`, result.FailureReason)

	result = BodyJSONPathEquals("id", 1).Evaluate(response(200, "<html>"))
	assert.Contains(t, result.FailureReason, "the body is not valid JSON")
}

func TestBodyJSONEquals(t *testing.T) {
	resp := response(200, `{"b": [1, 2], "a": "x"}`)
	assert.True(t, BodyJSONEquals(`{"a":"x","b":[1,2]}`).Evaluate(resp).Passed)

	result := BodyJSONEquals(`{"a":"y","b":[1,2]}`).Evaluate(resp)
	assert.False(t, result.Passed)
	assert.Contains(t, result.FailureReason, "JSON body differs from expected")
	assert.Contains(t, result.FailureReason, `"path":"/a"`)

	result = BodyJSONEquals(`{"a":`).Evaluate(resp)
	assert.Equal(t, `expected body is not valid JSON: {"a":`, result.FailureReason)
}
