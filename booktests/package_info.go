// Package booktests contains the contract scenarios for the bookstore API: listing books,
// updating a book as an administrator, and the 400, 401, 403 and 404 responses for invalid
// updates.
package booktests
