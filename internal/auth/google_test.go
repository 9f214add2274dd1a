package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/adityar/secrets-wall/internal/auth"
)

// fakeProvider stands in for Google's token and userinfo endpoints.
func fakeProvider(t *testing.T, profileID string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"test-access-token","token_type":"Bearer"}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"` + profileID + `"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestBridge(srv *httptest.Server, users auth.UserStore) *auth.GoogleOAuth {
	bridge := auth.NewGoogleOAuth("client-id", "client-secret", "http://localhost/auth/google/secrets", users)
	bridge.Config.Endpoint = oauth2.Endpoint{
		AuthURL:  srv.URL + "/auth",
		TokenURL: srv.URL + "/token",
	}
	bridge.UserinfoURL = srv.URL + "/userinfo"
	return bridge
}

func TestCompleteCreatesUserOnFirstLogin(t *testing.T) {
	users := newFakeUserStore()
	bridge := newTestBridge(fakeProvider(t, "g-123"), users)

	user, err := bridge.Complete(context.Background(), "authcode")
	require.NoError(t, err)
	assert.Equal(t, "g-123", user.GoogleID)
	assert.Equal(t, 1, users.count())
}

func TestCompleteIsIdempotentPerIdentifier(t *testing.T) {
	users := newFakeUserStore()
	bridge := newTestBridge(fakeProvider(t, "g-123"), users)

	first, err := bridge.Complete(context.Background(), "authcode")
	require.NoError(t, err)
	second, err := bridge.Complete(context.Background(), "another-code")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, users.count())
}

func TestConcurrentCompletionsCreateOneUser(t *testing.T) {
	users := newFakeUserStore()
	bridge := newTestBridge(fakeProvider(t, "g-123"), users)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := bridge.Complete(context.Background(), "authcode")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, 1, users.count(), "exactly one record per external identifier")
}

func TestCompleteProviderRejectsCode(t *testing.T) {
	users := newFakeUserStore()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}))
	t.Cleanup(srv.Close)
	bridge := newTestBridge(srv, users)

	_, err := bridge.Complete(context.Background(), "bad-code")
	assert.ErrorIs(t, err, auth.ErrProvider)
	assert.Equal(t, 0, users.count())
}

func TestBeginRedirectsToConsentPage(t *testing.T) {
	users := newFakeUserStore()
	bridge := newTestBridge(fakeProvider(t, "g-123"), users)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/auth/google", nil)
	bridge.Begin(w, r)

	require.Equal(t, http.StatusFound, w.Code)
	loc := w.Header().Get("Location")
	assert.Contains(t, loc, "client_id=client-id")
	assert.Contains(t, loc, "state=")

	var stateCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "oauthstate" {
			stateCookie = c
		}
	}
	require.NotNil(t, stateCookie, "Begin must set the state cookie")
	assert.Contains(t, loc, "state="+stateCookie.Value)
}

func TestVerifyStateMismatch(t *testing.T) {
	users := newFakeUserStore()
	bridge := newTestBridge(fakeProvider(t, "g-123"), users)

	r := httptest.NewRequest(http.MethodGet, "/auth/google/secrets?state=evil&code=x", nil)
	r.AddCookie(&http.Cookie{Name: "oauthstate", Value: "good"})
	assert.ErrorIs(t, bridge.VerifyState(r), auth.ErrProvider)

	r = httptest.NewRequest(http.MethodGet, "/auth/google/secrets?state=good&code=x", nil)
	assert.ErrorIs(t, bridge.VerifyState(r), auth.ErrProvider)

	r = httptest.NewRequest(http.MethodGet, "/auth/google/secrets?state=good&code=x", nil)
	r.AddCookie(&http.Cookie{Name: "oauthstate", Value: "good"})
	assert.NoError(t, bridge.VerifyState(r))
}
