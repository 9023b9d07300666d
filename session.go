package authsession

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"

	"github.com/redis/go-redis/v9"
	"github.com/viant/authsession/client/access"
	"github.com/viant/authsession/client/api"
	"github.com/viant/authsession/client/auth/store"
	"github.com/viant/authsession/client/auth/transport"
	"github.com/viant/authsession/client/identity"
	"github.com/viant/authsession/envelope"
	"github.com/viant/authsession/internal/metrics"
	"golang.org/x/oauth2"
)

// Session wires the token store, the authenticated transport, the identity cache and the access
// guard of one API client. Sessions share nothing; create one per user or per process.
type Session struct {
	options    *Options
	store      store.Store
	jar        http.CookieJar
	redis      *redis.Client
	rt         *transport.RoundTripper
	httpClient *http.Client
	api        *api.Client
	identity   *identity.Cache
	guard      *access.Guard
	metrics    *metrics.Metrics
}

// Client returns the authenticated http client
func (s *Session) Client() *http.Client {
	return s.httpClient
}

// API returns the API client issuing authenticated calls
func (s *Session) API() *api.Client {
	return s.api
}

// Store returns the token store
func (s *Session) Store() store.Store {
	return s.store
}

// Coordinator returns the refresh coordinator
func (s *Session) Coordinator() *transport.Coordinator {
	return s.rt.Coordinator()
}

// Identity returns the current-user cache
func (s *Session) Identity() *identity.Cache {
	return s.identity
}

// Guard returns the access guard
func (s *Session) Guard() *access.Guard {
	return s.guard
}

// Metrics returns session metrics
func (s *Session) Metrics() *metrics.Metrics {
	return s.metrics
}

// HasToken returns true when a token is stored
func (s *Session) HasToken(ctx context.Context) bool {
	return s.store.Get(ctx) != nil
}

// Token returns the stored token
func (s *Session) Token(ctx context.Context) (*oauth2.Token, error) {
	if token := s.store.Get(ctx); token != nil {
		return token, nil
	}
	return nil, envelope.NewError(envelope.KindNotAuthenticated, envelope.CodeNotAuthenticated, "")
}

// TokenSource returns the stored token as an oauth2.TokenSource
func (s *Session) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &tokenSource{ctx: ctx, session: s}
}

type tokenSource struct {
	ctx     context.Context
	session *Session
}

func (t *tokenSource) Token() (*oauth2.Token, error) {
	return t.session.Token(t.ctx)
}

// Login authenticates and seeds the identity cache
func (s *Session) Login(ctx context.Context, request *identity.LoginRequest) (*identity.User, error) {
	return s.identity.Login(ctx, request)
}

// Logout ends the session
func (s *Session) Logout(ctx context.Context) error {
	return s.identity.Logout(ctx)
}

// CurrentUser returns the current user, resolving it on first use
func (s *Session) CurrentUser(ctx context.Context) *identity.User {
	return s.identity.Ensure(ctx)
}

// Close releases backend connections
func (s *Session) Close() error {
	if s.redis != nil {
		return s.redis.Close()
	}
	return nil
}

func (s *Session) initStore() error {
	o := s.options
	storeOptions := []store.Option{store.WithClock(o.Clock), store.WithLogger(o.Logger)}
	s.jar = o.Jar
	switch {
	case o.Store != nil:
		s.store = o.Store
	case o.RedisURL != "":
		client, err := store.NewRedisClient(o.RedisURL)
		if err != nil {
			return err
		}
		s.redis = client
		s.store = store.NewRedisStore(client, o.RedisKey, storeOptions...)
	case o.CookieJar != "":
		jar, err := store.NewFileJar(o.CookieJar, storeOptions...)
		if err != nil {
			return fmt.Errorf("failed to open cookie jar: %w", err)
		}
		if s.jar == nil {
			s.jar = jar
		}
		if s.store, err = store.NewCookieStore(jar, o.BaseURL, storeOptions...); err != nil {
			return err
		}
	case o.StoreURL != "":
		s.store = store.NewFileStore(o.StoreURL, storeOptions...)
	default:
		s.store = store.NewMemoryStore(storeOptions...)
	}
	if s.jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return err
		}
		s.jar = jar
	}
	return nil
}

// New creates a session
func New(options *Options) (*Session, error) {
	if options == nil {
		options = &Options{}
	}
	options.Init()
	ret := &Session{options: options, metrics: metrics.New(options.Registerer)}
	if err := ret.initStore(); err != nil {
		return nil, err
	}
	logger := options.Logger

	plain := &http.Client{Transport: transport.WrapWithCookieJar(options.Transport, ret.jar), Timeout: options.Timeout}
	refresher := api.New(options.BaseURL, api.WithHTTPClient(plain), api.WithLogger(logger))

	basePath := options.BasePath
	if basePath == "" {
		base, err := url.Parse(options.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid base URL %v: %w", options.BaseURL, err)
		}
		basePath = base.Path
	}
	rt, err := transport.New(
		transport.WithStore(ret.store),
		transport.WithTransport(options.Transport),
		transport.WithCookieJar(ret.jar),
		transport.WithRefresher(refresher),
		transport.WithNotifier(options.Notifier),
		transport.WithNavigator(options.Navigator),
		transport.WithBasePath(basePath),
		transport.WithLoginPath(options.LoginPath),
		transport.WithTokenTTL(options.TokenTTL),
		transport.WithClearOnUnauthenticated(!options.RetainOnUnauthenticated),
		transport.WithMetrics(ret.metrics),
		transport.WithClock(options.Clock),
		transport.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	ret.rt = rt
	ret.httpClient = &http.Client{Transport: rt, Timeout: options.Timeout}
	ret.api = api.New(options.BaseURL, api.WithHTTPClient(ret.httpClient), api.WithLogger(logger))
	ret.identity = identity.New(ret.api, ret.store,
		identity.WithMetrics(ret.metrics),
		identity.WithNotifier(options.Notifier),
		identity.WithLogger(logger),
		identity.WithTokenTTL(options.TokenTTL))
	ret.guard = access.New(ret.identity,
		access.WithNavigator(options.Navigator),
		access.WithLoginPath(options.LoginPath),
		access.WithNoAuthPath(options.NoAuthPath),
		access.WithLogger(logger))
	return ret, nil
}
