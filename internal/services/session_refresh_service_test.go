package services

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediwise/internal/testutils"
)

type fakeNavigator struct {
	mu        sync.Mutex
	location  string
	redirects []string
}

func (n *fakeNavigator) Location() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.location
}

func (n *fakeNavigator) Redirect(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.redirects = append(n.redirects, path)
	n.location = path
}

func (n *fakeNavigator) Redirects() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.redirects...)
}

const (
	testEmail    = "ann@example.com"
	testPassword = "correct-horse"
)

// newRefreshFixture returns a backend, a logged-in refresh-wrapped client and its navigator.
func newRefreshFixture(t *testing.T) (*testutils.FakeBackend, *SessionRefreshService, *fakeNavigator) {
	t.Helper()
	backend := testutils.NewFakeBackend(testEmail, testPassword)
	t.Cleanup(backend.Close)

	transport := newInitializedHTTPService(t, backend.URL())
	nav := &fakeNavigator{location: "/chat"}
	client := NewSessionRefreshService(transport, "", nav)
	require.NoError(t, client.Initialize())

	_, err := NewAuthService(client).Login(context.Background(), testEmail, testPassword)
	require.NoError(t, err)
	return backend, client, nav
}

func TestSessionRefreshService_Name(t *testing.T) {
	assert.Equal(t, "session_refresh", NewSessionRefreshService(nil, "", nil).Name())
	assert.ErrorIs(t, NewSessionRefreshService(nil, "", nil).Initialize(), ErrServiceNotInitialized)
}

func TestSessionRefreshService_RefreshesOnceAndReplays(t *testing.T) {
	backend, client, nav := newRefreshFixture(t)
	backend.ExpireAccess()

	resp, err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/conversations"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)

	assert.Equal(t, 1, backend.Hits(http.MethodPost, "/auth/refresh"))
	assert.Equal(t, 2, backend.Hits(http.MethodGet, "/conversations"), "original plus exactly one replay")
	assert.Empty(t, nav.Redirects())
}

func TestSessionRefreshService_SecondUnauthorizedPropagates(t *testing.T) {
	backend, client, _ := newRefreshFixture(t)
	backend.FailNext(http.MethodGet, "/conversations", http.StatusUnauthorized, `{"msg": "Token has expired"}`)
	backend.FailNext(http.MethodGet, "/conversations", http.StatusUnauthorized, `{"msg": "Token has been revoked"}`)

	_, err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/conversations"})

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusUnauthorized, httpErr.Status)
	assert.Equal(t, "Token has been revoked", httpErr.Message, "the replay's failure is returned")
	assert.False(t, IsAuthExpired(err))

	assert.Equal(t, 1, backend.Hits(http.MethodPost, "/auth/refresh"))
	assert.Equal(t, 2, backend.Hits(http.MethodGet, "/conversations"))
}

func TestSessionRefreshService_AuthEndpointsAreExempt(t *testing.T) {
	backend, client, nav := newRefreshFixture(t)

	_, err := client.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Body:   map[string]string{"email": testEmail, "password": "wrong"},
	})

	assert.Equal(t, http.StatusUnauthorized, StatusCode(err))
	assert.Equal(t, 0, backend.Hits(http.MethodPost, "/auth/refresh"))
	assert.Empty(t, nav.Redirects())
}

func TestSessionRefreshService_RefreshFailureRedirectsToLogin(t *testing.T) {
	backend, client, nav := newRefreshFixture(t)
	backend.ExpireAccess()
	backend.BreakRefresh()

	_, err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/conversations"})

	var expired *AuthExpiredError
	require.True(t, errors.As(err, &expired))
	assert.Equal(t, http.StatusUnauthorized, StatusCode(expired.Err), "wraps the refresh failure")

	assert.Equal(t, []string{"/login"}, nav.Redirects())
	assert.Equal(t, 1, backend.Hits(http.MethodPost, "/auth/refresh"))
	assert.Equal(t, 1, backend.Hits(http.MethodGet, "/conversations"), "no replay after a failed refresh")
}

func TestSessionRefreshService_NoRedirectWhenAlreadyOnLogin(t *testing.T) {
	backend, client, nav := newRefreshFixture(t)
	nav.location = "/login"
	backend.ExpireAccess()
	backend.BreakRefresh()

	_, err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/conversations"})

	assert.True(t, IsAuthExpired(err))
	assert.Empty(t, nav.Redirects())
}

func TestSessionRefreshService_OtherFailuresPassThrough(t *testing.T) {
	backend, client, _ := newRefreshFixture(t)
	backend.FailNext(http.MethodPost, "/prompt", http.StatusInternalServerError, `{"error": "model unavailable"}`)

	_, err := client.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/prompt",
		Body:   map[string]interface{}{"user_prompt": "hi", "conversation_id": nil},
	})

	assert.Equal(t, http.StatusInternalServerError, StatusCode(err))
	assert.Equal(t, "model unavailable", ExtractMessage(err, PromptFallbackMessage))
	assert.Equal(t, 0, backend.Hits(http.MethodPost, "/auth/refresh"))
	assert.Equal(t, 1, backend.Hits(http.MethodPost, "/prompt"))
}

func TestSessionRefreshService_ConcurrentCallsKeepOwnRetryState(t *testing.T) {
	backend, client, _ := newRefreshFixture(t)
	backend.ExpireAccess()

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/conversations"})
		}(i)
	}
	wg.Wait()

	refreshes := backend.Hits(http.MethodPost, "/auth/refresh")
	assert.GreaterOrEqual(t, refreshes, 1)
	assert.LessOrEqual(t, refreshes, len(errs), "at most one refresh per original request")
	assert.LessOrEqual(t, backend.Hits(http.MethodGet, "/conversations"), 2*len(errs))
}
