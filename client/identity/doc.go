// Package identity memoizes the current user of an authenticated session.
//
// The Cache slot starts uninitialized and settles to either the user returned by the API or a
// not-logged-in sentinel. Resolution and logout are single-flight: concurrent callers share the
// remote call and observe the same outcome.
package identity
