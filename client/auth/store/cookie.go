package store

import (
	"context"
	"net/http"
	neturl "net/url"
	"time"

	"golang.org/x/oauth2"
)

// CookieStore keeps the token as the accessToken cookie of the API origin, the way a browser
// client does. The cookie is written without max-age so the jar never evicts it; the expiry hint
// therefore is not retained.
type CookieStore struct {
	jar  http.CookieJar
	url  *neturl.URL
	opts *options
}

func (c *CookieStore) Set(_ context.Context, token string, _ time.Duration) error {
	c.jar.SetCookies(c.url, []*http.Cookie{{Name: CookieName, Value: neturl.QueryEscape(token), Path: "/"}})
	return nil
}

func (c *CookieStore) Get(_ context.Context) *oauth2.Token {
	for _, cookie := range c.jar.Cookies(c.url) {
		if cookie.Name != CookieName || cookie.Value == "" {
			continue
		}
		value, err := neturl.QueryUnescape(cookie.Value)
		if err != nil {
			c.opts.logger.Debug("malformed token cookie", "error", err)
			return nil
		}
		return &oauth2.Token{AccessToken: value, TokenType: tokenType, Expiry: ExpiryHint(c.opts.clock, value, 0)}
	}
	return nil
}

func (c *CookieStore) Clear(_ context.Context) error {
	c.jar.SetCookies(c.url, []*http.Cookie{{Name: CookieName, Value: "", Path: "/", MaxAge: -1}})
	return nil
}

// NewCookieStore creates a store writing the token cookie for baseURL's origin
func NewCookieStore(jar http.CookieJar, baseURL string, opts ...Option) (*CookieStore, error) {
	u, err := neturl.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	origin := &neturl.URL{Scheme: u.Scheme, Host: u.Host, Path: "/"}
	return &CookieStore{jar: jar, url: origin, opts: newOptions(opts)}, nil
}
