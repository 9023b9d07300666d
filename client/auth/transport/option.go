package transport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/viant/authsession/client/auth/store"
	"github.com/viant/authsession/client/notify"
	"github.com/viant/authsession/internal/metrics"
)

type Option func(*RoundTripper)

// WithStore sets token store
func WithStore(store store.Store) Option {
	return func(t *RoundTripper) {
		t.store = store
	}
}

// WithTransport sets the inner transport
func WithTransport(transport http.RoundTripper) Option {
	return func(t *RoundTripper) {
		t.transport = transport
	}
}

// WithCookieJar sends and stores API session cookies
func WithCookieJar(jar http.CookieJar) Option {
	return func(t *RoundTripper) {
		t.jar = jar
	}
}

// WithRefresher sets the remote refresh capability
func WithRefresher(refresher Refresher) Option {
	return func(t *RoundTripper) {
		t.refresher = refresher
	}
}

// WithNotifier sets notification surface
func WithNotifier(notifier notify.Notifier) Option {
	return func(t *RoundTripper) {
		t.notifier = notifier
	}
}

// WithNavigator sets navigation surface
func WithNavigator(navigator notify.Navigator) Option {
	return func(t *RoundTripper) {
		t.navigator = navigator
	}
}

// WithBasePath sets the API base path stripped before whitelist matching
func WithBasePath(basePath string) Option {
	return func(t *RoundTripper) {
		t.basePath = basePath
	}
}

// WithWhitelist replaces the unauthenticated endpoint whitelist
func WithWhitelist(paths ...string) Option {
	return func(t *RoundTripper) {
		t.whitelist = paths
	}
}

// WithPolicy sets terminal handling policy
func WithPolicy(policy Policy) Option {
	return func(t *RoundTripper) {
		t.policy = policy
	}
}

// WithLoginPath sets the redirect target of terminal failures
func WithLoginPath(path string) Option {
	return func(t *RoundTripper) {
		t.policy.LoginPath = path
	}
}

// WithTokenTTL sets the expiry hint of refreshed tokens
func WithTokenTTL(ttl time.Duration) Option {
	return func(t *RoundTripper) {
		t.policy.TokenTTL = ttl
	}
}

// WithClearOnUnauthenticated sets whether a not-authenticated response clears the store
func WithClearOnUnauthenticated(flag bool) Option {
	return func(t *RoundTripper) {
		t.policy.ClearOnUnauthenticated = flag
	}
}

// WithMetrics sets metrics
func WithMetrics(m *metrics.Metrics) Option {
	return func(t *RoundTripper) {
		t.metrics = m
	}
}

// WithClock sets clock
func WithClock(clock clockwork.Clock) Option {
	return func(t *RoundTripper) {
		t.clock = clock
	}
}

// WithLogger sets logger
func WithLogger(logger *slog.Logger) Option {
	return func(t *RoundTripper) {
		t.logger = logger
	}
}
