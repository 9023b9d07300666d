package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/oauth2"
)

const (
	// DefaultTTL matches the lifetime the API assigns to an access token
	DefaultTTL = 7 * 24 * time.Hour
	// CookieName is the cookie used by CookieStore
	CookieName = "accessToken"
	tokenType  = "Bearer"
)

// Store is a pluggable persistence layer for the bearer token.
// The in-memory default is fine for tests and CLI runs; use FileStore, RedisStore or CookieStore
// when the token has to survive a restart.
type Store interface {
	// Set overwrites the stored token; ttl <= 0 derives the expiry hint from the token itself
	Set(ctx context.Context, token string, ttl time.Duration) error
	// Get returns the stored token, or nil when absent or unavailable
	Get(ctx context.Context) *oauth2.Token
	// Clear removes the stored token
	Clear(ctx context.Context) error
}

type (
	options struct {
		clock  clockwork.Clock
		logger *slog.Logger
	}

	// Option customises a store
	Option func(*options)
)

// WithClock sets the clock used to compute expiry hints
func WithClock(clock clockwork.Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithLogger sets the logger reporting swallowed backend errors
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func newOptions(opts []Option) *options {
	ret := &options{clock: clockwork.NewRealClock(), logger: slog.Default()}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

func (o *options) newToken(value string, ttl time.Duration) *oauth2.Token {
	return &oauth2.Token{
		AccessToken: value,
		TokenType:   tokenType,
		Expiry:      ExpiryHint(o.clock, value, ttl),
	}
}

type memoryStore struct {
	mu      sync.RWMutex
	current *oauth2.Token
	opts    *options
}

func (m *memoryStore) Set(_ context.Context, token string, ttl time.Duration) error {
	next := m.opts.newToken(token, ttl)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = next
	return nil
}

func (m *memoryStore) Get(_ context.Context) *oauth2.Token {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil || m.current.AccessToken == "" {
		return nil
	}
	ret := *m.current
	return &ret
}

func (m *memoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = nil
	return nil
}

// NewMemoryStore creates a process local store
func NewMemoryStore(opts ...Option) Store {
	return &memoryStore{opts: newOptions(opts)}
}
