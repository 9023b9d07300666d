package transport

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/viant/authsession/client/auth/store"
	"github.com/viant/authsession/client/notify"
	"github.com/viant/authsession/envelope"
	"github.com/viant/authsession/internal/metrics"
)

// RoundTripper attaches the bearer token and recovers session-expired calls
type RoundTripper struct {
	transport   http.RoundTripper
	jar         http.CookieJar
	store       store.Store
	interceptor *Interceptor
	coordinator *Coordinator
	refresher   Refresher
	notifier    notify.Notifier
	navigator   notify.Navigator
	policy      Policy
	basePath    string
	whitelist   []string
	metrics     *metrics.Metrics
	clock       clockwork.Clock
	logger      *slog.Logger
}

// New creates a RoundTripper; a Refresher is required
func New(options ...Option) (*RoundTripper, error) {
	ret := &RoundTripper{
		transport: http.DefaultTransport,
		store:     store.NewMemoryStore(),
		notifier:  &notify.LogNotifier{},
		navigator: &notify.LogNavigator{},
		policy:    DefaultPolicy(),
		clock:     clockwork.NewRealClock(),
		logger:    slog.Default(),
	}
	for _, opt := range options {
		opt(ret)
	}
	if ret.refresher == nil {
		return nil, errors.New("transport: refresher was empty")
	}
	ret.transport = WrapWithCookieJar(ret.transport, ret.jar)
	ret.interceptor = NewInterceptor(ret.store, ret.basePath, ret.whitelist...)
	ret.coordinator = NewCoordinator(ret.store, ret.refresher, ret.notifier, ret.navigator, ret.policy)
	ret.coordinator.metrics = ret.metrics
	ret.coordinator.clock = ret.clock
	ret.coordinator.logger = ret.logger
	return ret, nil
}

// Store returns the token store
func (r *RoundTripper) Store() store.Store {
	return r.store
}

// Coordinator returns the refresh coordinator
func (r *RoundTripper) Coordinator() *Coordinator {
	return r.coordinator
}

// Interceptor returns the request interceptor
func (r *RoundTripper) Interceptor() *Interceptor {
	return r.interceptor
}

func (r *RoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	call, err := capture(req)
	if err != nil {
		return nil, err
	}
	if r.interceptor.Whitelisted(req.URL.String()) {
		probe := call.build()
		r.interceptor.Intercept(ctx, probe, "")
		return r.transport.RoundTrip(probe)
	}
	token := ""
	for {
		resp, used, kind, code, message, err := r.send(call, token)
		if err != nil {
			return nil, err
		}
		switch kind {
		case "":
			return resp, nil
		case envelope.KindSessionExpired:
			if !call.markRetried() {
				r.logger.DebugContext(ctx, "session expired after retry", "request_id", call.ID)
				return nil, r.coordinator.Terminal(ctx, kind, code, message)
			}
			r.logger.DebugContext(ctx, "session expired, recovering", "request_id", call.ID, "method", req.Method, "path", req.URL.Path)
			if token, err = r.coordinator.Recover(ctx, used); err != nil {
				return nil, err
			}
		default:
			return nil, r.coordinator.Terminal(ctx, kind, code, message)
		}
	}
}

// send issues one attempt and classifies the response; kind is empty when no auth action is needed.
// used is the token the attempt carried.
func (r *RoundTripper) send(call *pending, token string) (resp *http.Response, used string, kind envelope.Kind, code int, message string, err error) {
	req := call.build()
	r.interceptor.Intercept(req.Context(), req, token)
	used = strings.TrimPrefix(req.Header.Get("Authorization"), "Bearer ")
	if resp, err = r.transport.RoundTrip(req); err != nil {
		return nil, "", "", 0, "", err
	}
	if kind, code, message, err = classify(resp); err != nil {
		return nil, "", "", 0, "", err
	}
	if kind != "" {
		resp.Body.Close()
	}
	return resp, used, kind, code, message, nil
}

// classify inspects the envelope code of a JSON body; a 401 without a parseable code counts as
// session expired
func classify(resp *http.Response) (envelope.Kind, int, string, error) {
	if isJSON(resp.Header.Get("Content-Type")) && resp.Body != nil {
		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return "", 0, "", err
		}
		resp.Body = io.NopCloser(bytes.NewReader(data))
		if code, message, ok := envelope.Peek(data); ok {
			switch kind := envelope.KindForCode(code); kind {
			case envelope.KindNotAuthenticated, envelope.KindCredentialInvalid, envelope.KindSessionExpired:
				return kind, code, message, nil
			}
			return "", 0, "", nil
		}
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return envelope.KindSessionExpired, 0, "", nil
	}
	return "", 0, "", nil
}

func isJSON(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
