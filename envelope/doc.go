// Package envelope defines the JSON response envelope `{code, data, message}` shared by every
// endpoint of the API, the distinguished authentication codes, and the error taxonomy used by the
// transport, identity and session packages.
package envelope
