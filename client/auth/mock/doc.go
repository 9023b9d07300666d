// Package mock provides an in-memory API that facilitates testing of the authenticated session.
//
// The service issues RS256 access tokens, expires them against an injectable clock and answers
// with the same envelope codes as the real API, so tests can drive login, refresh, identity and
// logout flows without a backend.
package mock
