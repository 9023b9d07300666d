package envelope

import (
	"bytes"
	"encoding/json"
)

const (
	CodeSuccess           = 0
	CodeNotAuthenticated  = 40100
	CodeNoAuthorization   = 40101
	CodeCredentialInvalid = 40102
	CodeAccountLocked     = 40103
	CodeAccountDisabled   = 40104
	CodeSessionExpired    = 40106
)

type (
	// Envelope represents a response body of the API.
	Envelope[T any] struct {
		Code    int    `json:"code"`
		Data    T      `json:"data"`
		Message string `json:"message"`
	}

	// Raw is an envelope whose data is left undecoded.
	Raw = Envelope[json.RawMessage]

	probe struct {
		Code    *int   `json:"code"`
		Message string `json:"message"`
	}
)

// OK returns true for the success code
func (e *Envelope[T]) OK() bool {
	return e.Code == CodeSuccess
}

// Err returns nil for a success envelope, otherwise an error classified by code
func (e *Envelope[T]) Err() error {
	if e.OK() {
		return nil
	}
	return NewError(KindForCode(e.Code), e.Code, e.Message)
}

// Decode decodes data into a typed envelope
func Decode[T any](data []byte) (*Envelope[T], error) {
	ret := &Envelope[T]{}
	if err := json.Unmarshal(data, ret); err != nil {
		return nil, err
	}
	return ret, nil
}

// Peek extracts the code and message of a body, ok is false when body is not an envelope.
func Peek(body []byte) (code int, message string, ok bool) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return 0, "", false
	}
	var p probe
	if err := json.Unmarshal(body, &p); err != nil || p.Code == nil {
		return 0, "", false
	}
	return *p.Code, p.Message, true
}
