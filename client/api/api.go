package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/viant/authsession/client/identity"
	"github.com/viant/authsession/envelope"
	"golang.org/x/oauth2"
)

const (
	RefreshPath  = "/user/token/refresh"
	IdentityPath = "/user/get/info"
	LoginPath    = "/user/login"
	LogoutPath   = "/user/logout"
)

// Client calls the API endpoints the session relies on
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option customises a Client
type Option func(*Client)

// WithHTTPClient sets the http client; an authenticated client makes calls recover expired sessions
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithLogger sets logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// BaseURL returns the API base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// URL returns the absolute URL of an API path
func (c *Client) URL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

type refreshRequest struct {
	AccessToken string `json:"accessToken"`
}

// Refresh exchanges previous for a new access token
func (c *Client) Refresh(ctx context.Context, previous string) (*oauth2.Token, error) {
	token, err := Invoke[string](ctx, c, http.MethodPost, RefreshPath, &refreshRequest{AccessToken: previous})
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, fmt.Errorf("%v returned an empty token", RefreshPath)
	}
	return &oauth2.Token{AccessToken: token, TokenType: "Bearer"}, nil
}

// FetchIdentity returns the current user
func (c *Client) FetchIdentity(ctx context.Context) (*identity.User, error) {
	user, err := Invoke[*identity.User](ctx, c, http.MethodGet, IdentityPath, nil)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Login authenticates request. The access token is read from the user payload, falling back to the
// Authorization response header.
func (c *Client) Login(ctx context.Context, request *identity.LoginRequest) (*identity.User, error) {
	resp, err := c.do(ctx, http.MethodPost, LoginPath, request)
	if err != nil {
		return nil, err
	}
	env, err := decode[*identity.User](resp)
	if err != nil {
		return nil, err
	}
	if err = env.Err(); err != nil {
		return nil, err
	}
	user := env.Data
	if user == nil {
		user = &identity.User{}
	}
	if user.AccessToken == "" {
		user.AccessToken = strings.TrimPrefix(resp.Header.Get("Authorization"), "Bearer ")
	}
	return user, nil
}

// Logout ends the server side session
func (c *Client) Logout(ctx context.Context) error {
	_, err := Invoke[bool](ctx, c, http.MethodPost, LogoutPath, nil)
	return err
}

// Invoke calls path and decodes the envelope data; a non success code is returned as *envelope.Error
func Invoke[T any](ctx context.Context, c *Client, method, path string, body interface{}) (T, error) {
	var zero T
	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return zero, err
	}
	env, err := decode[T](resp)
	if err != nil {
		return zero, err
	}
	if err = env.Err(); err != nil {
		return zero, err
	}
	return env.Data, nil
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %v request: %w", path, err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.URL(path), reader)
	if err != nil {
		return nil, err
	}
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	c.logger.DebugContext(ctx, "api call", "method", method, "path", path)
	return c.httpClient.Do(req)
}

func decode[T any](resp *http.Response) (*envelope.Envelope[T], error) {
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, envelope.Wrap(envelope.KindTransport, "failed to read response", err)
	}
	env, err := envelope.Decode[T](data)
	if err != nil {
		return nil, fmt.Errorf("invalid response (status %d): %w", resp.StatusCode, err)
	}
	return env, nil
}

// New creates a client for baseURL, e.g. http://localhost:8123/api
func New(baseURL string, options ...Option) *Client {
	ret := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
		logger:     slog.Default(),
	}
	for _, opt := range options {
		opt(ret)
	}
	return ret
}
