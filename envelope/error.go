package envelope

import (
	"errors"
	"fmt"
)

// Kind represents an error category of the authenticated pipeline
type Kind string

const (
	KindNotAuthenticated  Kind = "not_authenticated"
	KindCredentialInvalid Kind = "credential_invalid"
	KindSessionExpired    Kind = "session_expired"
	KindRefreshFailed     Kind = "refresh_failed"
	KindTransport         Kind = "transport"
	KindBusiness          Kind = "business"
)

// Terminal returns true for kinds that force re-authentication
func (k Kind) Terminal() bool {
	switch k {
	case KindNotAuthenticated, KindCredentialInvalid, KindRefreshFailed:
		return true
	}
	return false
}

// DefaultMessage returns the user facing message for a kind
func (k Kind) DefaultMessage() string {
	switch k {
	case KindNotAuthenticated:
		return "not logged in, please log in first"
	case KindCredentialInvalid:
		return "login credential is invalid, please log in again"
	case KindSessionExpired, KindRefreshFailed:
		return "login session has expired, please log in again"
	}
	return ""
}

// KindForCode maps an envelope code to a kind
func KindForCode(code int) Kind {
	switch code {
	case CodeNotAuthenticated:
		return KindNotAuthenticated
	case CodeCredentialInvalid:
		return KindCredentialInvalid
	case CodeSessionExpired:
		return KindSessionExpired
	}
	return KindBusiness
}

// Error represents a classified failure
type Error struct {
	Kind    Kind
	Code    int
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.DefaultMessage()
	}
	if e.Code != 0 {
		msg = fmt.Sprintf("%s (code %d)", msg, e.Code)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates an error
func NewError(kind Kind, code int, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap creates an error with a cause
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// KindOf returns the kind of the first *Error in the chain, or "" when there is none
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind returns true if err carries the given kind
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
