// Package authsession provides an authenticated HTTP client session for an API that answers with a
// {code, data, message} envelope.
//
// A Session attaches the stored bearer token to outgoing calls, recovers session-expired calls
// through a single-flight token refresh, memoizes the current user and gates navigation by role.
//
// Example:
//
//	session, _ := authsession.New(&authsession.Options{BaseURL: "http://localhost:8123/api"})
//	_, _ = session.Login(ctx, &identity.LoginRequest{LoginType: identity.LoginAccountPassword, UserAccount: "saki", UserPassword: "..."})
//	resp, _ := session.Client().Get("http://localhost:8123/api/app/my/list/page")
//
// Requests whose token expired are replayed once with the refreshed token; unrecoverable
// failures clear the token and redirect to the login page through the configured Navigator.
package authsession
