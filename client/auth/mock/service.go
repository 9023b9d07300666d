package mock

import (
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/viant/authsession/client/identity"
	"github.com/viant/authsession/internal/collection"
)

// Account represents a registered user of the mock API
type Account struct {
	User     identity.User
	Password string
}

// Service is an in-memory API speaking the {code, data, message} envelope. Access tokens are RS256
// JWTs bound to a server side session; logout and refresh retire the session of a token.
type Service struct {
	PrivateKey *rsa.PrivateKey
	Issuer     string
	BasePath   string
	TokenTTL   time.Duration
	Clock      clockwork.Clock

	accounts *collection.SyncMap[string, *Account]
	sessions *collection.SyncMap[string, string]

	RefreshCount  atomic.Int32
	IdentityCount atomic.Int32
	LogoutCount   atomic.Int32

	// RefreshHandler overrides /user/token/refresh
	RefreshHandler func(w http.ResponseWriter, r *http.Request)
	// ResourceHandler overrides /resource
	ResourceHandler func(w http.ResponseWriter, r *http.Request)
}

// Option customises a Service
type Option func(*Service)

// WithAccount registers an account
func WithAccount(account, password string, role identity.Role) Option {
	return func(s *Service) {
		s.AddAccount(account, password, role)
	}
}

// WithTokenTTL sets access token lifetime
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.TokenTTL = ttl
	}
}

// WithClock sets the clock used to issue and verify tokens
func WithClock(clock clockwork.Clock) Option {
	return func(s *Service) {
		s.Clock = clock
	}
}

// WithBasePath sets the API base path, "/api" by default
func WithBasePath(basePath string) Option {
	return func(s *Service) {
		s.BasePath = basePath
	}
}

// AddAccount registers an account
func (s *Service) AddAccount(account, password string, role identity.Role) {
	id := int64(s.accounts.Len() + 1)
	s.accounts.Put(account, &Account{
		User:     identity.User{ID: id, UserAccount: account, UserEmail: account + "@example.com", UserRole: role},
		Password: password,
	})
}

// Sessions returns the number of live sessions
func (s *Service) Sessions() int {
	return s.sessions.Len()
}

// Revoke retires the session of token, later calls with it are answered as not authenticated
func (s *Service) Revoke(token string) {
	s.sessions.Delete(token)
}

// Register registers HTTP handlers for all mock endpoints onto the given ServeMux.
func (s *Service) Register(mux *http.ServeMux) {
	mux.Handle("/", &Handler{Service: s})
}

// Handler returns an http.Handler for all mock endpoints, suitable for any HTTP server.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	s.Register(mux)
	return mux
}

// NewService creates a mock API
func NewService(opts ...Option) (*Service, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, fmt.Errorf("failed to generate RSA key: %v", err)
	}
	service := &Service{
		PrivateKey: privateKey,
		Issuer:     "authsession-mock",
		BasePath:   "/api",
		TokenTTL:   time.Hour,
		Clock:      clockwork.NewRealClock(),
		accounts:   collection.NewSyncMap[string, *Account](),
		sessions:   collection.NewSyncMap[string, string](),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}
