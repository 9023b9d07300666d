// Package cli implements the authsession command: login, whoami, logout, get and check against
// an envelope API, keeping the access token in the configured store between runs.
package cli
