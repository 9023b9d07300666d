package store

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/cookiejar"
	neturl "net/url"
	"strings"
	"sync"
	"time"

	"github.com/viant/afs"
)

// FileJar is an http.CookieJar that persists its cookies to an afs URL on every update and
// rehydrates them when created. It keeps the session cookie of the API and, with CookieStore,
// the access token across restarts.
type FileJar struct {
	mu    sync.RWMutex
	inner *cookiejar.Jar
	URL   string
	fs    afs.Service
	index map[string]persistedCookie
	opts  *options
}

type persistedCookie struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Domain   string    `json:"domain"`
	Path     string    `json:"path"`
	Expires  time.Time `json:"expires,omitempty"`
	Secure   bool      `json:"secure"`
	HttpOnly bool      `json:"httpOnly"`
}

type cookieSnapshot struct {
	Cookies []persistedCookie `json:"cookies"`
}

func (c *persistedCookie) key() string {
	return c.Domain + "|" + c.Path + "|" + c.Name
}

func (c *persistedCookie) expired(now time.Time) bool {
	return !c.Expires.IsZero() && now.After(c.Expires)
}

// NewFileJar creates a cookie jar persisted at URL.
func NewFileJar(URL string, opts ...Option) (*FileJar, error) {
	inner, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	j := &FileJar{inner: inner, URL: URL, fs: afs.New(), index: map[string]persistedCookie{}, opts: newOptions(opts)}
	if err = j.load(context.Background()); err != nil {
		j.opts.logger.Debug("failed to load cookie jar", "url", URL, "error", err)
	}
	return j, nil
}

func (j *FileJar) Cookies(u *neturl.URL) []*http.Cookie {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.inner.Cookies(u)
}

func (j *FileJar) SetCookies(u *neturl.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.inner.SetCookies(u, cookies)
	now := j.opts.clock.Now()
	for _, c := range cookies {
		pc := normalizeCookie(u, c, now)
		if c.MaxAge < 0 || pc.expired(now) {
			delete(j.index, pc.key())
			continue
		}
		j.index[pc.key()] = pc
	}
	if err := j.save(context.Background()); err != nil {
		j.opts.logger.Debug("failed to persist cookie jar", "url", j.URL, "error", err)
	}
}

func normalizeCookie(u *neturl.URL, c *http.Cookie, now time.Time) persistedCookie {
	domain := strings.TrimPrefix(strings.TrimSpace(c.Domain), ".")
	if domain == "" {
		domain = u.Host
		if h, _, err := net.SplitHostPort(domain); err == nil && h != "" {
			domain = h
		}
	}
	path := c.Path
	if strings.TrimSpace(path) == "" {
		path = "/"
	}
	expires := c.Expires
	if c.MaxAge > 0 {
		expires = now.Add(time.Duration(c.MaxAge) * time.Second)
	}
	return persistedCookie{
		Name:     c.Name,
		Value:    c.Value,
		Domain:   domain,
		Path:     path,
		Expires:  expires,
		Secure:   c.Secure,
		HttpOnly: c.HttpOnly,
	}
}

func (j *FileJar) save(ctx context.Context) error {
	snap := cookieSnapshot{}
	for _, v := range j.index {
		snap.Cookies = append(snap.Cookies, v)
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	return j.fs.Upload(ctx, j.URL, 0o600, bytes.NewReader(data))
}

func (j *FileJar) load(ctx context.Context) error {
	ok, err := j.fs.Exists(ctx, j.URL)
	if err != nil || !ok {
		return err
	}
	data, err := j.fs.DownloadWithURL(ctx, j.URL)
	if err != nil {
		return err
	}
	var snap cookieSnapshot
	if err = json.Unmarshal(data, &snap); err != nil {
		return err
	}
	now := j.opts.clock.Now()
	for _, pc := range snap.Cookies {
		if pc.expired(now) || pc.Domain == "" {
			continue
		}
		scheme := "http"
		if pc.Secure {
			scheme = "https"
		}
		u := &neturl.URL{Scheme: scheme, Host: pc.Domain, Path: pc.Path}
		j.inner.SetCookies(u, []*http.Cookie{{
			Name:     pc.Name,
			Value:    pc.Value,
			Path:     pc.Path,
			Expires:  pc.Expires,
			Secure:   pc.Secure,
			HttpOnly: pc.HttpOnly,
		}})
		j.index[pc.key()] = pc
	}
	return nil
}
