package authsession

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/viant/authsession/client/auth/store"
	"github.com/viant/authsession/client/notify"
	"github.com/viant/authsession/internal/config"
)

// Options defines options for configuring a Session.
type Options struct {
	BaseURL   string        `yaml:"baseURL" json:"baseURL" short:"u" long:"url" description:"API base URL"`
	StoreURL  string        `yaml:"storeURL,omitempty" json:"storeURL,omitempty" short:"s" long:"store" description:"token store URL (file://, mem://)"`
	RedisURL  string        `yaml:"redisURL,omitempty" json:"redisURL,omitempty" long:"redis" description:"redis URL, selects the redis token store"`
	RedisKey  string        `yaml:"redisKey,omitempty" json:"redisKey,omitempty" long:"redis-key" description:"redis hash holding the token"`
	CookieJar string        `yaml:"cookieJar,omitempty" json:"cookieJar,omitempty" long:"cookie-jar" description:"cookie jar file, selects the cookie token store"`
	BasePath  string        `yaml:"basePath,omitempty" json:"basePath,omitempty" long:"base-path" description:"API base path, the path of url by default"`
	TokenTTL  time.Duration `yaml:"tokenTTL,omitempty" json:"tokenTTL,omitempty" long:"ttl" description:"token expiry hint"`
	Timeout   time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty" long:"timeout" description:"request timeout"`

	LoginPath  string `yaml:"loginPath,omitempty" json:"loginPath,omitempty"`
	NoAuthPath string `yaml:"noAuthPath,omitempty" json:"noAuthPath,omitempty"`
	// RetainOnUnauthenticated keeps the token when the API answers not authenticated
	RetainOnUnauthenticated bool `yaml:"retainOnUnauthenticated,omitempty" json:"retainOnUnauthenticated,omitempty"`

	// Store, if set, takes precedence over StoreURL, RedisURL and CookieJar
	Store store.Store `yaml:"-" json:"-"`
	// Jar, if set, carries API session cookies
	Jar http.CookieJar `yaml:"-" json:"-"`
	// Transport is the inner transport, http.DefaultTransport by default
	Transport  http.RoundTripper     `yaml:"-" json:"-"`
	Notifier   notify.Notifier       `yaml:"-" json:"-"`
	Navigator  notify.Navigator      `yaml:"-" json:"-"`
	Registerer prometheus.Registerer `yaml:"-" json:"-"`
	Logger     *slog.Logger          `yaml:"-" json:"-"`
	Clock      clockwork.Clock       `yaml:"-" json:"-"`
}

// NewOptions returns options populated from cfg
func NewOptions(cfg *config.Config) *Options {
	return &Options{
		BaseURL:                 cfg.BaseURL,
		BasePath:                cfg.BasePath(),
		StoreURL:                cfg.StoreURL,
		RedisURL:                cfg.RedisURL,
		RedisKey:                cfg.RedisKey,
		CookieJar:               cfg.CookieJar,
		TokenTTL:                cfg.TokenTTL,
		Timeout:                 cfg.Timeout,
		LoginPath:               cfg.LoginPath,
		NoAuthPath:              cfg.NoAuthPath,
		RetainOnUnauthenticated: !cfg.ClearOnUnauthenticated,
	}
}

// Init sets defaults
func (o *Options) Init() {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
	if o.BaseURL == "" {
		o.BaseURL = "http://localhost:8123/api"
	}
	if o.RedisKey == "" {
		o.RedisKey = store.DefaultRedisKey
	}
	if o.TokenTTL == 0 {
		o.TokenTTL = store.DefaultTTL
	}
	if o.Timeout == 0 {
		o.Timeout = 60 * time.Second
	}
	if o.LoginPath == "" {
		o.LoginPath = "/user/login"
	}
	if o.NoAuthPath == "" {
		o.NoAuthPath = "/no-auth"
	}
	if o.Transport == nil {
		o.Transport = http.DefaultTransport
	}
	if o.Notifier == nil {
		o.Notifier = &notify.LogNotifier{Logger: o.Logger}
	}
	if o.Navigator == nil {
		o.Navigator = &notify.LogNavigator{Logger: o.Logger}
	}
	if o.Registerer == nil {
		o.Registerer = prometheus.NewRegistry()
	}
}
