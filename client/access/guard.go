package access

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/viant/authsession/client/identity"
	"github.com/viant/authsession/client/notify"
)

const (
	DefaultLoginPath  = "/user/login"
	DefaultNoAuthPath = "/no-auth"
)

// Check returns true when user satisfies requirement. An empty or notLogin requirement is public;
// unknown requirements are denied.
func Check(requirement identity.Role, user *identity.User) bool {
	role := identity.RoleNotLogin
	if user != nil && user.UserRole != "" {
		role = user.UserRole
	}
	switch requirement {
	case "", identity.RoleNotLogin:
		return true
	case identity.RoleAdmin:
		return role == identity.RoleAdmin
	case identity.RoleUser:
		return role == identity.RoleUser || role == identity.RoleAdmin
	}
	return false
}

type (
	// Route represents a navigation destination with its access requirement
	Route struct {
		Path   string
		Access identity.Role
	}

	// Redirect represents a replace-navigation
	Redirect struct {
		Path  string
		Query url.Values
	}

	// Decision is the outcome of a guard evaluation
	Decision struct {
		Allow    bool
		User     *identity.User
		Redirect *Redirect
	}

	// Resolver returns the current user, resolving it when needed
	Resolver interface {
		Ensure(ctx context.Context) *identity.User
	}
)

// Location returns the redirect target with its query
func (r *Redirect) Location() string {
	if len(r.Query) == 0 {
		return r.Path
	}
	return r.Path + "?" + r.Query.Encode()
}

// Guard gates navigation by role
type Guard struct {
	resolver   Resolver
	navigator  notify.Navigator
	loginPath  string
	noAuthPath string
	logger     *slog.Logger
}

// Option customises a Guard
type Option func(*Guard)

// WithNavigator sets navigation surface used by Navigate
func WithNavigator(navigator notify.Navigator) Option {
	return func(g *Guard) {
		g.navigator = navigator
	}
}

// WithLoginPath sets login redirect path
func WithLoginPath(path string) Option {
	return func(g *Guard) {
		g.loginPath = path
	}
}

// WithNoAuthPath sets forbidden redirect path
func WithNoAuthPath(path string) Option {
	return func(g *Guard) {
		g.noAuthPath = path
	}
}

// WithLogger sets logger
func WithLogger(logger *slog.Logger) Option {
	return func(g *Guard) {
		g.logger = logger
	}
}

// Evaluate decides whether route may be entered. The user is resolved at most once per call.
func (g *Guard) Evaluate(ctx context.Context, route Route) Decision {
	user := g.resolver.Ensure(ctx)
	if Check(route.Access, user) {
		return Decision{Allow: true, User: user}
	}
	if !user.LoggedIn() {
		return Decision{User: user, Redirect: &Redirect{Path: g.loginPath, Query: url.Values{"redirect": {route.Path}}}}
	}
	return Decision{User: user, Redirect: &Redirect{Path: g.noAuthPath}}
}

// Navigate evaluates route and redirects on denial, it returns true when navigation may proceed
func (g *Guard) Navigate(ctx context.Context, route Route) bool {
	decision := g.Evaluate(ctx, route)
	if decision.Allow {
		return true
	}
	g.logger.DebugContext(ctx, "navigation denied", "path", route.Path, "access", route.Access, "redirect", decision.Redirect.Path)
	g.navigator.Redirect(ctx, decision.Redirect.Path, decision.Redirect.Query)
	return false
}

// RouteTable maps a path to its requirement; a key ending with "/" covers the subtree
type RouteTable map[string]identity.Role

// Route returns the route of path using the longest matching entry
func (t RouteTable) Route(path string) Route {
	ret := Route{Path: path}
	if access, ok := t[path]; ok {
		ret.Access = access
		return ret
	}
	matched := -1
	for prefix, access := range t {
		if strings.HasSuffix(prefix, "/") && strings.HasPrefix(path, prefix) && len(prefix) > matched {
			matched = len(prefix)
			ret.Access = access
		}
	}
	return ret
}

// Middleware guards next with table, denied requests are answered with a redirect
func (g *Guard) Middleware(table RouteTable, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := table.Route(r.URL.Path)
		route.Path = r.URL.RequestURI()
		decision := g.Evaluate(r.Context(), route)
		if !decision.Allow {
			http.Redirect(w, r, decision.Redirect.Location(), http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// New creates a guard
func New(resolver Resolver, options ...Option) *Guard {
	ret := &Guard{
		resolver:   resolver,
		navigator:  &notify.LogNavigator{},
		loginPath:  DefaultLoginPath,
		noAuthPath: DefaultNoAuthPath,
		logger:     slog.Default(),
	}
	for _, opt := range options {
		opt(ret)
	}
	return ret
}
