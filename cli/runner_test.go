package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/authsession/client/auth/mock"
	"github.com/viant/authsession/client/identity"
	"github.com/viant/authsession/internal/config"
)

func TestRun(t *testing.T) {
	server, err := mock.NewHTTPTestServer(mock.WithAccount("saki", "secret", identity.RoleUser))
	require.NoError(t, err)
	defer server.Close()

	cfg := &config.Config{
		BaseURL:                server.BaseURL,
		StoreURL:               "mem://localhost/cli/token.json",
		TokenTTL:               time.Hour,
		Timeout:                5 * time.Second,
		LoginPath:              "/user/login",
		NoAuthPath:             "/no-auth",
		ClearOnUnauthenticated: true,
	}
	ctx := context.Background()
	var testCases = []struct {
		description string
		args        []string
		expect      string
		expectErr   bool
	}{
		{description: "anonymous check", args: []string{"check", "--access", "user", "/app/1"}, expect: "deny /app/1 -> /user/login?redirect=%2Fapp%2F1"},
		{description: "wrong password", args: []string{"login", "-a", "saki", "-p", "wrong"}, expectErr: true},
		{description: "login", args: []string{"login", "-a", "saki", "-p", "secret"}, expect: "logged in as saki (user)"},
		{description: "whoami", args: []string{"whoami"}, expect: `"userRole": "user"`},
		{description: "get", args: []string{"get", "/resource"}, expect: `"owner": "saki"`},
		{description: "forbidden check", args: []string{"check", "--access", "admin", "/user/userManage"}, expect: "deny /user/userManage -> /no-auth"},
		{description: "logout", args: []string{"logout"}, expect: "logged out"},
		{description: "get after logout", args: []string{"get", "/resource"}, expectErr: true},
	}
	for _, testCase := range testCases {
		output := &bytes.Buffer{}
		err := run(ctx, cfg, testCase.args, output)
		if testCase.expectErr {
			assert.Error(t, err, testCase.description)
			continue
		}
		require.NoError(t, err, testCase.description)
		assert.Contains(t, strings.TrimSpace(output.String()), testCase.expect, testCase.description)
	}
}
