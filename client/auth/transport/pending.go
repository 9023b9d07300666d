package transport

import (
	"bytes"
	"io"
	"net/http"
	"sync/atomic"

	"github.com/google/uuid"
)

// RequestIDHeader correlates the original call with its replay
const RequestIDHeader = "X-Request-Id"

// pending captures an outgoing request so that it can be replayed after a token refresh
type pending struct {
	ID      string
	request *http.Request
	body    []byte
	retried atomic.Bool
}

func capture(req *http.Request) (*pending, error) {
	ret := &pending{request: req}
	if req.Body != nil && req.Body != http.NoBody {
		data, err := io.ReadAll(req.Body)
		_ = req.Body.Close()
		if err != nil {
			return nil, err
		}
		ret.body = data
	}
	ret.ID = req.Header.Get(RequestIDHeader)
	if ret.ID == "" {
		ret.ID = uuid.NewString()
	}
	return ret, nil
}

// markRetried flips the one-shot retry flag, it returns false if it was already set
func (p *pending) markRetried() bool {
	return p.retried.CompareAndSwap(false, true)
}

// build returns a fresh copy of the captured request, the caller owns its headers
func (p *pending) build() *http.Request {
	ret := p.request.Clone(p.request.Context())
	ret.Header.Set(RequestIDHeader, p.ID)
	if p.body != nil {
		ret.Body = io.NopCloser(bytes.NewReader(p.body))
		ret.ContentLength = int64(len(p.body))
		ret.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(p.body)), nil
		}
	}
	return ret
}
