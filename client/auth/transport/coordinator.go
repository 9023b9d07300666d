package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/viant/authsession/client/auth/store"
	"github.com/viant/authsession/client/notify"
	"github.com/viant/authsession/envelope"
	"github.com/viant/authsession/internal/metrics"
	"golang.org/x/oauth2"
)

// State represents the refresh state of a Coordinator
type State int

const (
	Idle State = iota
	Refreshing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Refreshing:
		return "refreshing"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Refresher exchanges the previous token for a new one
type Refresher interface {
	Refresh(ctx context.Context, previous string) (*oauth2.Token, error)
}

// RefresherFunc adapts a function to Refresher
type RefresherFunc func(ctx context.Context, previous string) (*oauth2.Token, error)

func (f RefresherFunc) Refresh(ctx context.Context, previous string) (*oauth2.Token, error) {
	return f(ctx, previous)
}

// Policy controls terminal handling
type Policy struct {
	// LoginPath is where terminal failures redirect to
	LoginPath string
	// TokenTTL is the expiry hint of a refreshed token; 0 derives it from the token
	TokenTTL time.Duration
	// ClearOnUnauthenticated clears the store on a not-authenticated response
	ClearOnUnauthenticated bool
}

// DefaultPolicy returns the policy used when none is configured
func DefaultPolicy() Policy {
	return Policy{LoginPath: "/user/login", TokenTTL: store.DefaultTTL, ClearOnUnauthenticated: true}
}

// settled is the outcome delivered to a parked request
type settled struct {
	token string
	err   error
}

// Coordinator performs single-flight token refresh. At most one refresh call is in flight; requests
// failing while it runs are parked in FIFO order and resolved in one pass when it settles.
type Coordinator struct {
	mu        sync.Mutex
	state     State
	queue     []chan settled
	store     store.Store
	refresher Refresher
	notifier  notify.Notifier
	navigator notify.Navigator
	policy    Policy
	metrics   *metrics.Metrics
	clock     clockwork.Clock
	logger    *slog.Logger
}

// State returns the current state
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Pending returns the number of parked requests
func (c *Coordinator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// transition moves from -> to; the caller holds mu
func (c *Coordinator) transition(from, to State) error {
	if c.state != from {
		return fmt.Errorf("invalid refresh transition %v -> %v, current state: %v", from, to, c.state)
	}
	c.state = to
	return nil
}

// Recover returns a token to replay a session-expired request with. stale is the token the failed
// request carried, empty when it was sent without one; when the store holds a different token, that
// token is returned without a refresh. Otherwise it starts a refresh when idle, or waits for the one in flight.
func (c *Coordinator) Recover(ctx context.Context, stale string) (string, error) {
	c.mu.Lock()
	if c.state == Refreshing {
		wait := make(chan settled, 1)
		c.queue = append(c.queue, wait)
		queued := len(c.queue)
		c.mu.Unlock()
		c.metrics.Queued()
		c.logger.DebugContext(ctx, "request parked until refresh settles", "queued", queued)
		select {
		case result := <-wait:
			return result.token, result.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	previous := c.store.Get(ctx)
	if previous == nil {
		c.mu.Unlock()
		return "", c.Terminal(ctx, envelope.KindSessionExpired, envelope.CodeSessionExpired, "")
	}
	if previous.AccessToken != stale {
		c.mu.Unlock()
		return previous.AccessToken, nil
	}
	if err := c.transition(Idle, Refreshing); err != nil {
		c.mu.Unlock()
		return "", err
	}
	c.mu.Unlock()
	return c.refresh(ctx, previous.AccessToken)
}

func (c *Coordinator) refresh(ctx context.Context, previous string) (string, error) {
	started := c.clock.Now()
	detached := context.WithoutCancel(ctx)
	next, err := c.call(detached, previous)

	c.mu.Lock()
	if err == nil {
		if err = c.store.Set(detached, next.AccessToken, c.ttl(next)); err != nil {
			err = fmt.Errorf("failed to store refreshed token: %w", err)
		}
	}
	if err != nil {
		if clearErr := c.store.Clear(detached); clearErr != nil {
			c.logger.WarnContext(ctx, "failed to clear token", "error", clearErr)
		}
	}
	queue := c.queue
	c.queue = nil
	if terr := c.transition(Refreshing, Idle); terr != nil {
		c.logger.ErrorContext(ctx, "refresh settled out of order", "error", terr)
		c.state = Idle
	}
	c.mu.Unlock()

	c.metrics.Refreshed(err, c.clock.Since(started))
	result := settled{}
	if err != nil {
		result.err = envelope.Wrap(envelope.KindRefreshFailed, "", err)
	} else {
		result.token = next.AccessToken
	}
	for _, wait := range queue {
		wait <- result
	}
	c.logger.DebugContext(ctx, "refresh settled", "resumed", len(queue), "error", err)
	if err != nil {
		if !isSilent(ctx) || len(queue) > 0 {
			c.emit(ctx, envelope.KindRefreshFailed, "")
		}
		return "", result.err
	}
	return result.token, nil
}

func (c *Coordinator) call(ctx context.Context, previous string) (token *oauth2.Token, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("refresh panicked: %v", r)
		}
	}()
	if token, err = c.refresher.Refresh(ctx, previous); err != nil {
		return nil, err
	}
	if token == nil || token.AccessToken == "" {
		return nil, errors.New("refresh returned an empty token")
	}
	return token, nil
}

func (c *Coordinator) ttl(token *oauth2.Token) time.Duration {
	if !token.Expiry.IsZero() {
		if ttl := token.Expiry.Sub(c.clock.Now()); ttl > 0 {
			return ttl
		}
	}
	return c.policy.TokenTTL
}

// Terminal handles an unrecoverable failure: the store is cleared (a not-authenticated failure
// only when the policy says so), the user is notified and redirected to login unless ctx is
// silent. Parked requests are not affected.
func (c *Coordinator) Terminal(ctx context.Context, kind envelope.Kind, code int, message string) error {
	if kind != envelope.KindNotAuthenticated || c.policy.ClearOnUnauthenticated {
		if err := c.store.Clear(ctx); err != nil {
			c.logger.WarnContext(ctx, "failed to clear token", "error", err)
		}
	}
	if isSilent(ctx) {
		c.metrics.Terminal(string(kind))
		c.logger.DebugContext(ctx, "authentication terminated silently", "kind", kind)
	} else {
		c.emit(ctx, kind, message)
	}
	return envelope.NewError(kind, code, message)
}

func (c *Coordinator) emit(ctx context.Context, kind envelope.Kind, message string) {
	if message == "" {
		message = kind.DefaultMessage()
	}
	c.metrics.Terminal(string(kind))
	c.logger.InfoContext(ctx, "authentication terminated", "kind", kind)
	c.notifier.Warn(ctx, message)
	var query url.Values
	if destination := getDestination(ctx); destination != "" {
		query = url.Values{"redirect": {destination}}
	}
	c.navigator.Redirect(ctx, c.policy.LoginPath, query)
}

// NewCoordinator creates a coordinator
func NewCoordinator(tokens store.Store, refresher Refresher, notifier notify.Notifier, navigator notify.Navigator, policy Policy) *Coordinator {
	return &Coordinator{
		store:     tokens,
		refresher: refresher,
		notifier:  notifier,
		navigator: navigator,
		policy:    policy,
		clock:     clockwork.NewRealClock(),
		logger:    slog.Default(),
	}
}
