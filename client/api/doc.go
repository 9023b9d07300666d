// Package api implements the remote capabilities of an authenticated session: token refresh,
// identity lookup, login and logout, all speaking the {code, data, message} envelope.
package api
