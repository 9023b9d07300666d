package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/viant/authsession/client/auth/store"
	"github.com/viant/authsession/client/auth/transport"
	"github.com/viant/authsession/client/notify"
	"github.com/viant/authsession/internal/metrics"
	"golang.org/x/sync/singleflight"
)

const (
	resolveKey = "resolve"
	logoutKey  = "logout"
)

// Cache memoizes the current user. The slot is nil until resolved, then holds either a user or
// the not-logged-in sentinel. Concurrent resolutions share one fetch, and so do concurrent logouts.
// Every write bumps generation; a fetch only settles the slot when no write happened meanwhile.
type Cache struct {
	mu         sync.RWMutex
	current    *User
	generation uint64
	group      singleflight.Group
	remote     Remote
	store      store.Store
	ttl        time.Duration
	notifier   notify.Notifier
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// Option customises a Cache
type Option func(*Cache)

// WithMetrics sets metrics
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Cache) {
		c.metrics = m
	}
}

// WithLogger sets logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// WithNotifier sets the notifier told about login and logout
func WithNotifier(notifier notify.Notifier) Option {
	return func(c *Cache) {
		c.notifier = notifier
	}
}

// WithTokenTTL sets the expiry hint of a token obtained by Login
func WithTokenTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

// Current returns a copy of the slot, nil when uninitialized
func (c *Cache) Current() *User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return clone(c.current)
}

// Set replaces the slot
func (c *Cache) Set(user *User) {
	c.mu.Lock()
	c.set(user)
	c.mu.Unlock()
}

// set replaces the slot; the caller holds mu
func (c *Cache) set(user *User) {
	user = clone(user)
	if user != nil {
		user.AccessToken = ""
	}
	c.current = user
	c.generation++
}

// settle replaces the slot unless it was written after generation was observed
func (c *Cache) settle(generation uint64, user *User) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != generation {
		return false
	}
	c.set(user)
	return true
}

// SetNotLoggedIn stores the not-logged-in sentinel
func (c *Cache) SetNotLoggedIn() {
	c.Set(NotLoggedIn())
}

// Resolve fetches the identity and settles the slot. A failed or malformed fetch settles to the
// not-logged-in sentinel. A caller whose ctx ends before the shared fetch gets the sentinel
// without the slot being touched.
func (c *Cache) Resolve(ctx context.Context) *User {
	detached := context.WithoutCancel(ctx)
	result := c.group.DoChan(resolveKey, func() (interface{}, error) {
		return c.fetch(detached), nil
	})
	select {
	case r := <-result:
		return clone(r.Val.(*User))
	case <-ctx.Done():
		return NotLoggedIn()
	}
}

// Ensure returns the slot when it is resolved, otherwise it resolves it
func (c *Cache) Ensure(ctx context.Context) *User {
	if current := c.Current(); current.HasRole() {
		return current
	}
	return c.Resolve(ctx)
}

// fetch asks the remote for the identity. Its auth failures only mean not logged in, so they end
// silently; navigation decisions belong to the caller.
func (c *Cache) fetch(ctx context.Context) *User {
	c.mu.RLock()
	generation := c.generation
	c.mu.RUnlock()
	user, err := c.remote.FetchIdentity(transport.WithSilentTerminal(ctx))
	if err == nil && !user.HasRole() {
		err = errors.New("identity without role")
	}
	c.metrics.IdentityFetched(err)
	if err != nil {
		c.logger.DebugContext(ctx, "identity unresolved", "error", err)
		user = NotLoggedIn()
	}
	if !c.settle(generation, user) {
		c.logger.DebugContext(ctx, "identity discarded, slot changed during fetch")
	}
	return c.Current()
}

// Login authenticates, stores the returned token and seeds the slot
func (c *Cache) Login(ctx context.Context, request *LoginRequest) (*User, error) {
	user, err := c.remote.Login(ctx, request)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("login returned no user")
	}
	if user.AccessToken != "" {
		if err = c.store.Set(ctx, user.AccessToken, c.ttl); err != nil {
			return nil, fmt.Errorf("failed to store token: %w", err)
		}
	}
	if !user.HasRole() {
		user = clone(user)
		user.UserRole = RoleUser
	}
	c.Set(user)
	c.logger.InfoContext(ctx, "logged in", "account", user.UserAccount, "role", user.UserRole)
	c.notify(ctx, "login succeeded")
	return c.Current(), nil
}

// Logout ends the session. The remote call is skipped when there is neither a token nor a logged
// in user; the token and the slot are cleared regardless of its outcome.
func (c *Cache) Logout(ctx context.Context) error {
	_, err, _ := c.group.Do(logoutKey, func() (interface{}, error) {
		var remoteErr error
		active := c.store.Get(ctx) != nil || c.Current().LoggedIn()
		if active {
			remoteErr = c.remote.Logout(ctx)
		}
		if err := c.store.Clear(ctx); err != nil {
			c.logger.WarnContext(ctx, "failed to clear token", "error", err)
		}
		c.SetNotLoggedIn()
		if remoteErr != nil {
			return nil, fmt.Errorf("remote logout failed: %w", remoteErr)
		}
		if active {
			c.notify(ctx, "logged out")
		}
		return nil, nil
	})
	return err
}

func (c *Cache) notify(ctx context.Context, message string) {
	if c.notifier != nil {
		c.notifier.Info(ctx, message)
	}
}

func clone(user *User) *User {
	if user == nil {
		return nil
	}
	ret := *user
	return &ret
}

// New creates a cache
func New(remote Remote, tokens store.Store, options ...Option) *Cache {
	ret := &Cache{
		remote: remote,
		store:  tokens,
		ttl:    store.DefaultTTL,
		logger: slog.Default(),
	}
	for _, opt := range options {
		opt(ret)
	}
	return ret
}
