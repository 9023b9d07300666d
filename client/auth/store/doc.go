// Package store defines the bearer token store used by the authenticated transport.
//
// A Store holds exactly one authoritative token. Set overwrites unconditionally, Get degrades to
// nil when the token is absent or the backend is unavailable, and Clear removes it. Expiry is kept
// as an advisory hint only; no backend enforces it.
//
// It ships with an in-memory implementation for tests and short-lived processes, and durable
// backends built on viant/afs (any afs URL), Redis and an http.CookieJar.
package store
