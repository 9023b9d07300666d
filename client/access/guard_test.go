package access

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/authsession/client/identity"
	"github.com/viant/authsession/client/notify"
)

type staticResolver struct {
	user  *identity.User
	calls atomic.Int32
}

func (s *staticResolver) Ensure(ctx context.Context) *identity.User {
	s.calls.Add(1)
	if s.user == nil {
		return identity.NotLoggedIn()
	}
	return s.user
}

func TestCheck(t *testing.T) {
	var testCases = []struct {
		requirement identity.Role
		role        identity.Role
		nilUser     bool
		expect      bool
	}{
		{requirement: "", role: identity.RoleNotLogin, expect: true},
		{requirement: identity.RoleNotLogin, nilUser: true, expect: true},
		{requirement: identity.RoleUser, role: identity.RoleUser, expect: true},
		{requirement: identity.RoleUser, role: identity.RoleAdmin, expect: true},
		{requirement: identity.RoleUser, role: identity.RoleNotLogin, expect: false},
		{requirement: identity.RoleUser, nilUser: true, expect: false},
		{requirement: identity.RoleAdmin, role: identity.RoleAdmin, expect: true},
		{requirement: identity.RoleAdmin, role: identity.RoleUser, expect: false},
		{requirement: "vip", role: identity.RoleAdmin, expect: false},
		{requirement: identity.RoleUser, role: "", expect: false},
	}
	for _, testCase := range testCases {
		var user *identity.User
		if !testCase.nilUser {
			user = &identity.User{UserRole: testCase.role}
		}
		assert.Equal(t, testCase.expect, Check(testCase.requirement, user), "%v/%v", testCase.requirement, testCase.role)
	}
}

func TestGuard_Evaluate(t *testing.T) {
	var testCases = []struct {
		description string
		role        identity.Role
		route       Route
		allow       bool
		redirect    string
		query       string
	}{
		{description: "admin route, admin user", role: identity.RoleAdmin, route: Route{Path: "/user/userManage", Access: identity.RoleAdmin}, allow: true},
		{description: "admin route, regular user", role: identity.RoleUser, route: Route{Path: "/user/userManage", Access: identity.RoleAdmin}, redirect: "/no-auth"},
		{description: "user route, anonymous", role: identity.RoleNotLogin, route: Route{Path: "/app/chat/3", Access: identity.RoleUser}, redirect: "/user/login", query: "/app/chat/3"},
		{description: "public route, anonymous", role: identity.RoleNotLogin, route: Route{Path: "/about"}, allow: true},
	}
	for _, testCase := range testCases {
		resolver := &staticResolver{user: &identity.User{UserRole: testCase.role}}
		guard := New(resolver)
		decision := guard.Evaluate(context.Background(), testCase.route)
		assert.EqualValues(t, 1, resolver.calls.Load(), testCase.description)
		assert.Equal(t, testCase.allow, decision.Allow, testCase.description)
		if testCase.allow {
			assert.Nil(t, decision.Redirect, testCase.description)
			continue
		}
		require.NotNil(t, decision.Redirect, testCase.description)
		assert.Equal(t, testCase.redirect, decision.Redirect.Path, testCase.description)
		assert.Equal(t, testCase.query, decision.Redirect.Query.Get("redirect"), testCase.description)
	}
}

func TestGuard_Navigate(t *testing.T) {
	recorder := &notify.Recorder{}
	guard := New(&staticResolver{}, WithNavigator(recorder), WithLoginPath("/signin"), WithNoAuthPath("/forbidden"))

	assert.True(t, guard.Navigate(context.Background(), Route{Path: "/"}))
	assert.False(t, guard.Navigate(context.Background(), Route{Path: "/app/1", Access: identity.RoleUser}))
	require.Len(t, recorder.Redirects(), 1)
	assert.Equal(t, "/signin", recorder.Redirects()[0].Path)
	assert.Equal(t, "/app/1", recorder.Redirects()[0].Query.Get("redirect"))
}

func TestRouteTable_Route(t *testing.T) {
	table := RouteTable{
		"/user/userManage": identity.RoleAdmin,
		"/app/":            identity.RoleUser,
		"/app/admin/":      identity.RoleAdmin,
	}
	assert.Equal(t, identity.RoleAdmin, table.Route("/user/userManage").Access)
	assert.Equal(t, identity.RoleUser, table.Route("/app/chat/1").Access)
	assert.Equal(t, identity.RoleAdmin, table.Route("/app/admin/list").Access)
	assert.Equal(t, identity.Role(""), table.Route("/about").Access)
}

func TestGuard_Middleware(t *testing.T) {
	table := RouteTable{"/app/": identity.RoleUser, "/admin/": identity.RoleAdmin}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	var testCases = []struct {
		description string
		role        identity.Role
		target      string
		status      int
		location    string
	}{
		{description: "anonymous on protected", role: identity.RoleNotLogin, target: "/app/chat?id=2", status: http.StatusFound, location: "/user/login?redirect=%2Fapp%2Fchat%3Fid%3D2"},
		{description: "user on admin", role: identity.RoleUser, target: "/admin/users", status: http.StatusFound, location: "/no-auth"},
		{description: "user on protected", role: identity.RoleUser, target: "/app/chat", status: http.StatusOK},
		{description: "anonymous on public", role: identity.RoleNotLogin, target: "/about", status: http.StatusOK},
	}
	for _, testCase := range testCases {
		guard := New(&staticResolver{user: &identity.User{UserRole: testCase.role}})
		recorder := httptest.NewRecorder()
		guard.Middleware(table, next).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, testCase.target, nil))
		assert.Equal(t, testCase.status, recorder.Code, testCase.description)
		if testCase.location != "" {
			assert.Equal(t, testCase.location, recorder.Header().Get("Location"), testCase.description)
		}
	}
}
