// Package transport implements an http.RoundTripper that attaches the bearer token to outgoing
// API calls and transparently recovers from session-expired responses.
//
// Recovery is coordinated by a Coordinator: the first session-expired failure starts a single
// token refresh; failures arriving while it is in flight are parked and resumed with the same new
// token once it settles. Every request is retried at most once. Not-authenticated and
// credential-invalid responses are terminal: the store is cleared, the user is notified and sent
// to the login page.
package transport
