package mock

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/authsession/client/identity"
	"github.com/viant/authsession/envelope"
)

func call(t *testing.T, handler http.Handler, method, path, token string, body interface{}) *envelope.Raw {
	t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	env, err := envelope.Decode[json.RawMessage](recorder.Body.Bytes())
	require.NoError(t, err)
	return env
}

func TestService_Lifecycle(t *testing.T) {
	clock := clockwork.NewFakeClock()
	service, err := NewService(WithClock(clock), WithTokenTTL(time.Minute), WithAccount("saki", "secret", identity.RoleUser))
	require.NoError(t, err)
	handler := service.Handler()

	env := call(t, handler, http.MethodPost, "/api/user/login", "", identity.LoginRequest{UserAccount: "saki", UserPassword: "secret"})
	require.True(t, env.OK())
	user := identity.User{}
	require.NoError(t, json.Unmarshal(env.Data, &user))
	token := user.AccessToken
	require.NotEmpty(t, token)

	assert.Equal(t, envelope.CodeSuccess, call(t, handler, http.MethodGet, "/api/user/get/info", token, nil).Code)
	assert.Equal(t, envelope.CodeNotAuthenticated, call(t, handler, http.MethodGet, "/api/user/get/info", "", nil).Code)
	assert.Equal(t, envelope.CodeCredentialInvalid, call(t, handler, http.MethodGet, "/api/user/get/info", "garbage", nil).Code)
	assert.Equal(t, envelope.CodeNoAuthorization, call(t, handler, http.MethodGet, "/api/admin/resource", token, nil).Code)

	clock.Advance(2 * time.Minute)
	assert.Equal(t, envelope.CodeSessionExpired, call(t, handler, http.MethodGet, "/api/resource", token, nil).Code)

	env = call(t, handler, http.MethodPost, "/api/user/token/refresh", "", map[string]string{"accessToken": token})
	require.True(t, env.OK())
	var refreshed string
	require.NoError(t, json.Unmarshal(env.Data, &refreshed))
	assert.NotEqual(t, token, refreshed)
	assert.Equal(t, 1, service.Sessions())

	assert.Equal(t, envelope.CodeNotAuthenticated, call(t, handler, http.MethodPost, "/api/user/token/refresh", "", map[string]string{"accessToken": token}).Code)
	assert.Equal(t, envelope.CodeSuccess, call(t, handler, http.MethodPost, "/api/user/logout", refreshed, nil).Code)
	assert.Equal(t, 0, service.Sessions())
	assert.Equal(t, envelope.CodeNotAuthenticated, call(t, handler, http.MethodGet, "/api/resource", refreshed, nil).Code)
}
