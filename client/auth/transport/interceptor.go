package transport

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/viant/authsession/client/auth/store"
)

// DefaultWhitelist lists endpoints called without a credential
var DefaultWhitelist = []string{
	"/user/login",
	"/user/register",
	"/user/login/send-email-code",
	"/user/token/refresh",
}

// Interceptor attaches the bearer token to calls outside the unauthenticated whitelist
type Interceptor struct {
	store     store.Store
	basePath  string
	whitelist map[string]bool
}

// NormalizePath strips scheme, host, query and the API base path from target, keeping the path
func NormalizePath(target, basePath string) string {
	path := target
	if u, err := url.Parse(target); err == nil {
		path = u.Path
	} else {
		if i := strings.Index(path, "://"); i != -1 {
			path = path[i+3:]
			if j := strings.Index(path, "/"); j != -1 {
				path = path[j:]
			} else {
				path = "/"
			}
		}
		if i := strings.IndexAny(path, "?#"); i != -1 {
			path = path[:i]
		}
	}
	basePath = strings.TrimSuffix(basePath, "/")
	if basePath != "" {
		if path == basePath {
			path = "/"
		} else if strings.HasPrefix(path, basePath+"/") {
			path = path[len(basePath):]
		}
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}

// Whitelisted returns true when target is called without a credential
func (i *Interceptor) Whitelisted(target string) bool {
	return i.whitelist[NormalizePath(target, i.basePath)]
}

// Intercept sets or strips the Authorization header of req. A non empty token takes precedence
// over the stored one.
func (i *Interceptor) Intercept(ctx context.Context, req *http.Request, token string) {
	if i.Whitelisted(req.URL.String()) {
		req.Header.Del("Authorization")
		return
	}
	if token == "" {
		if stored := i.store.Get(ctx); stored != nil {
			token = stored.AccessToken
		}
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// NewInterceptor creates an interceptor, an empty whitelist uses DefaultWhitelist
func NewInterceptor(tokens store.Store, basePath string, whitelist ...string) *Interceptor {
	if len(whitelist) == 0 {
		whitelist = DefaultWhitelist
	}
	ret := &Interceptor{store: tokens, basePath: basePath, whitelist: map[string]bool{}}
	for _, path := range whitelist {
		ret.whitelist[NormalizePath(path, "")] = true
	}
	return ret
}
