// Package auth groups the client side building blocks of an authenticated session.
//
// The store sub-package persists the bearer token. The transport sub-package attaches it to
// outgoing calls and, when the API reports an expired session, refreshes it once for all
// concurrent callers and replays the failed calls. The mock sub-package serves an in-memory API
// for tests.
package auth
