package booktests

import (
	"strings"

	"github.com/launchdarkly/api-contract-tests/framework/assertion"
	"github.com/launchdarkly/api-contract-tests/framework/harness"
	"github.com/launchdarkly/api-contract-tests/framework/ldtest"
)

// DefaultBaseURL is where the bookstore service is expected to listen.
const DefaultBaseURL = "http://127.0.0.1:7081"

const (
	adminUser     = "admin"
	readerUser    = "user"
	adminPassword = "password"
	userPassword  = "password"

	validBook = `{"id": 1, "title": "A Family History", "author": "Vivian Gornick"}`
)

// AllScenarios returns the bookstore contract, for a service at the given base URL.
func AllScenarios(baseURL string) []ldtest.Scenario {
	baseURL = strings.TrimSuffix(baseURL, "/")
	books := baseURL + "/api/books"

	return []ldtest.Scenario{
		ldtest.NewScenario("users/list page 2",
			harness.Get(baseURL+"/api/users?page=2"),
			assertion.StatusEquals(200),
			assertion.HeaderEquals("Content-Type", "application/json"),
			assertion.BodyJSONPathEquals("page", 2),
		),

		ldtest.NewScenario("books/list as admin",
			harness.Get(books).PreemptiveBasicAuth(adminUser, adminPassword),
			assertion.StatusEquals(200),
			assertion.HeaderEquals("Content-Type", "application/json"),
		),

		ldtest.NewScenario("books/update as admin",
			harness.Put(books+"/1").PreemptiveBasicAuth(adminUser, adminPassword).JSONBody(validBook),
			assertion.StatusEquals(200),
			assertion.BodyJSONPathEquals("title", "A Family History"),
			assertion.BodyJSONPathEquals("author", "Vivian Gornick"),
		),

		ldtest.NewScenario("books/update without id",
			harness.Put(books+"/1").PreemptiveBasicAuth(adminUser, adminPassword).
				JSONBody(`{"title": "A Family History", "author": "Vivian Gornick"}`),
			assertion.StatusEquals(400),
		),

		ldtest.NewScenario("books/update without credentials",
			harness.Put(books+"/1").Auth(harness.NoAuth).JSONBody(validBook),
			assertion.StatusEquals(401),
		),

		ldtest.NewScenario("books/update as non-admin",
			harness.Put(books+"/1").PreemptiveBasicAuth(readerUser, userPassword).JSONBody(validBook),
			assertion.StatusEquals(403),
		),

		ldtest.NewScenario("books/update unknown book",
			harness.Put(books+"/2").PreemptiveBasicAuth(adminUser, adminPassword).
				JSONBody(`{"id": 2, "title": "A Family History", "author": "Vivian Gornick"}`),
			assertion.StatusEquals(404),
		),

		ldtest.NewScenario("books/update with numeric title",
			harness.Put(books+"/1").PreemptiveBasicAuth(adminUser, adminPassword).
				JSONBody(`{"id": 1, "title": 12345, "author": "Vivian Gornick"}`),
			assertion.StatusEquals(400),
		),

		ldtest.NewScenario("books/update with numeric author",
			harness.Put(books+"/1").PreemptiveBasicAuth(adminUser, adminPassword).
				JSONBody(`{"id": 1, "title": "A Family History", "author": 12345}`),
			assertion.StatusEquals(400),
		),
	}
}
