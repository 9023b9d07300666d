package identity

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/authsession/client/auth/store"
	"github.com/viant/authsession/client/notify"
	"github.com/viant/authsession/internal/metrics"
)

type fakeRemote struct {
	user         *User
	fetchErr     error
	logoutErr    error
	fetches      atomic.Int32
	logouts      atomic.Int32
	logins       atomic.Int32
	release      chan struct{}
	fetchEntered chan struct{}
}

func (f *fakeRemote) FetchIdentity(ctx context.Context) (*User, error) {
	f.fetches.Add(1)
	if f.fetchEntered != nil {
		close(f.fetchEntered)
	}
	if f.release != nil {
		<-f.release
	}
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return clone(f.user), nil
}

func (f *fakeRemote) Login(ctx context.Context, request *LoginRequest) (*User, error) {
	f.logins.Add(1)
	if request.UserPassword != "secret" {
		return nil, errors.New("bad credentials")
	}
	return &User{ID: 1, UserAccount: request.UserAccount, UserRole: RoleAdmin, AccessToken: "issued"}, nil
}

func (f *fakeRemote) Logout(ctx context.Context) error {
	f.logouts.Add(1)
	if f.release != nil {
		<-f.release
	}
	return f.logoutErr
}

func TestCache_ResolveSingleFlight(t *testing.T) {
	const callers = 10
	remote := &fakeRemote{
		user:         &User{ID: 7, UserAccount: "saki", UserRole: RoleUser},
		release:      make(chan struct{}),
		fetchEntered: make(chan struct{}),
	}
	m := metrics.New(prometheus.NewRegistry())
	cache := New(remote, store.NewMemoryStore(), WithMetrics(m))
	ctx := context.Background()

	var wg sync.WaitGroup
	users := make([]*User, callers)
	wg.Add(1)
	go func() {
		defer wg.Done()
		users[0] = cache.Resolve(ctx)
	}()
	<-remote.fetchEntered
	for i := 1; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			users[i] = cache.Ensure(ctx)
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(remote.release)
	wg.Wait()

	assert.EqualValues(t, 1, remote.fetches.Load())
	for _, user := range users {
		require.NotNil(t, user)
		assert.Equal(t, RoleUser, user.UserRole)
		assert.Equal(t, "saki", user.UserAccount)
	}
	assert.Equal(t, RoleUser, cache.Current().UserRole)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.IdentityFetchTotal.WithLabelValues("success")))
}

func TestCache_ResolveFailure(t *testing.T) {
	var testCases = []struct {
		description string
		remote      *fakeRemote
	}{
		{description: "remote error", remote: &fakeRemote{fetchErr: errors.New("40100")}},
		{description: "missing identity", remote: &fakeRemote{}},
		{description: "identity without role", remote: &fakeRemote{user: &User{ID: 3}}},
	}
	for _, testCase := range testCases {
		cache := New(testCase.remote, store.NewMemoryStore())
		assert.Nil(t, cache.Current(), testCase.description)
		user := cache.Resolve(context.Background())
		assert.Equal(t, RoleNotLogin, user.UserRole, testCase.description)
		assert.Equal(t, RoleNotLogin, cache.Current().UserRole, testCase.description)
		assert.False(t, cache.Current().LoggedIn(), testCase.description)
	}
}

func TestCache_EnsureUsesResolvedSlot(t *testing.T) {
	remote := &fakeRemote{user: &User{UserRole: RoleAdmin}}
	cache := New(remote, store.NewMemoryStore())
	cache.SetNotLoggedIn()
	assert.Equal(t, RoleNotLogin, cache.Ensure(context.Background()).UserRole)
	assert.EqualValues(t, 0, remote.fetches.Load())

	cache.Set(nil)
	assert.Equal(t, RoleAdmin, cache.Ensure(context.Background()).UserRole)
	assert.EqualValues(t, 1, remote.fetches.Load())
}

func TestCache_CurrentIsACopy(t *testing.T) {
	cache := New(&fakeRemote{}, store.NewMemoryStore())
	cache.Set(&User{UserRole: RoleUser, AccessToken: "secret"})
	current := cache.Current()
	assert.Empty(t, current.AccessToken)
	current.UserRole = RoleAdmin
	assert.Equal(t, RoleUser, cache.Current().UserRole)
}

func TestCache_Login(t *testing.T) {
	ctx := context.Background()
	tokens := store.NewMemoryStore()
	cache := New(&fakeRemote{}, tokens, WithTokenTTL(time.Hour))

	_, err := cache.Login(ctx, &LoginRequest{LoginType: LoginAccountPassword, UserAccount: "saki", UserPassword: "wrong"})
	require.Error(t, err)
	assert.Nil(t, tokens.Get(ctx))
	assert.Nil(t, cache.Current())

	user, err := cache.Login(ctx, &LoginRequest{LoginType: LoginAccountPassword, UserAccount: "saki", UserPassword: "secret"})
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, user.UserRole)
	assert.Empty(t, user.AccessToken)
	require.NotNil(t, tokens.Get(ctx))
	assert.Equal(t, "issued", tokens.Get(ctx).AccessToken)
}

// heldFetch blocks FetchIdentity until released, leaving Logout unblocked
type heldFetch struct {
	*fakeRemote
	entered chan struct{}
	release chan struct{}
}

func (h *heldFetch) FetchIdentity(ctx context.Context) (*User, error) {
	close(h.entered)
	<-h.release
	return h.fakeRemote.FetchIdentity(ctx)
}

func TestCache_LogoutDuringFetch(t *testing.T) {
	ctx := context.Background()
	tokens := store.NewMemoryStore()
	require.NoError(t, tokens.Set(ctx, "abc", time.Hour))
	remote := &heldFetch{
		fakeRemote: &fakeRemote{user: &User{ID: 1, UserAccount: "root", UserRole: RoleAdmin}},
		entered:    make(chan struct{}),
		release:    make(chan struct{}),
	}
	cache := New(remote, tokens)

	resolved := make(chan *User, 1)
	go func() {
		resolved <- cache.Resolve(ctx)
	}()
	<-remote.entered
	require.NoError(t, cache.Logout(ctx))
	close(remote.release)

	assert.Equal(t, RoleNotLogin, (<-resolved).UserRole)
	assert.Nil(t, tokens.Get(ctx))
	assert.Equal(t, RoleNotLogin, cache.Current().UserRole)
	assert.False(t, cache.Current().LoggedIn())
}

func TestCache_LoginDuringFetch(t *testing.T) {
	ctx := context.Background()
	remote := &heldFetch{
		fakeRemote: &fakeRemote{fetchErr: errors.New("not logged in")},
		entered:    make(chan struct{}),
		release:    make(chan struct{}),
	}
	cache := New(remote, store.NewMemoryStore())

	resolved := make(chan *User, 1)
	go func() {
		resolved <- cache.Resolve(ctx)
	}()
	<-remote.entered
	_, err := cache.Login(ctx, &LoginRequest{LoginType: LoginAccountPassword, UserAccount: "saki", UserPassword: "secret"})
	require.NoError(t, err)
	close(remote.release)

	assert.Equal(t, RoleAdmin, (<-resolved).UserRole)
	assert.Equal(t, RoleAdmin, cache.Current().UserRole)
}

func TestCache_Notifications(t *testing.T) {
	ctx := context.Background()
	recorder := &notify.Recorder{}
	cache := New(&fakeRemote{}, store.NewMemoryStore(), WithNotifier(recorder))

	_, err := cache.Login(ctx, &LoginRequest{LoginType: LoginAccountPassword, UserAccount: "saki", UserPassword: "secret"})
	require.NoError(t, err)
	require.NoError(t, cache.Logout(ctx))
	require.NoError(t, cache.Logout(ctx))
	assert.Equal(t, []string{"login succeeded", "logged out"}, recorder.Infos())
}

func TestCache_LogoutSingleFlight(t *testing.T) {
	ctx := context.Background()
	tokens := store.NewMemoryStore()
	require.NoError(t, tokens.Set(ctx, "abc", time.Hour))
	remote := &fakeRemote{release: make(chan struct{})}
	cache := New(remote, tokens)
	cache.Set(&User{UserRole: RoleUser})

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = cache.Logout(ctx)
		}(i)
	}
	require.Eventually(t, func() bool { return remote.logouts.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(remote.release)
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.EqualValues(t, 1, remote.logouts.Load())
	assert.Nil(t, tokens.Get(ctx))
	assert.Equal(t, RoleNotLogin, cache.Current().UserRole)

	require.NoError(t, cache.Logout(ctx))
	assert.EqualValues(t, 1, remote.logouts.Load())
}

func TestCache_LogoutRemoteFailure(t *testing.T) {
	ctx := context.Background()
	tokens := store.NewMemoryStore()
	require.NoError(t, tokens.Set(ctx, "abc", time.Hour))
	cache := New(&fakeRemote{logoutErr: errors.New("unreachable")}, tokens)

	err := cache.Logout(ctx)
	require.Error(t, err)
	assert.Nil(t, tokens.Get(ctx))
	assert.Equal(t, RoleNotLogin, cache.Current().UserRole)
}
