package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aggienexus/nexus/internal/app/system/auth"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
)

const testSecret = "test-jwt-secret-must-be-32-chars-long!!"

type stubFetcher map[string]*auth.SessionUser

func (f stubFetcher) FetchUser(_ context.Context, id string) *auth.SessionUser {
	return f[id]
}

// whoami echoes the signed-in user's id, or "anonymous".
var whoami = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	if u, ok := auth.CurrentUser(r); ok {
		w.Write([]byte(u.ID))
		return
	}
	w.Write([]byte("anonymous"))
})

func newManagerWithTokens(t *testing.T, users stubFetcher) (*auth.SessionManager, *auth.TokenVerifier) {
	t.Helper()
	sm, err := auth.NewSessionManager(string(securecookie.GenerateRandomKey(32)), "test-session", "", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	tv, err := auth.NewTokenVerifier(testSecret, "aggienexus-test")
	if err != nil {
		t.Fatalf("NewTokenVerifier: %v", err)
	}
	sm.SetTokenVerifier(tv)
	sm.SetUserFetcher(users)
	return sm, tv
}

func TestNewSessionManager_EmptyKey(t *testing.T) {
	if _, err := auth.NewSessionManager("", "s", "", time.Hour, false, zap.NewNop()); err == nil {
		t.Fatal("expected error for empty session key")
	}
}

func TestNewTokenVerifier_ShortSecret(t *testing.T) {
	if _, err := auth.NewTokenVerifier("short", ""); err == nil {
		t.Fatal("expected error for short secret")
	}
}

func TestLoadSessionUser_BearerToken(t *testing.T) {
	id := "507f1f77bcf86cd799439011"
	sm, tv := newManagerWithTokens(t, stubFetcher{id: {ID: id, Role: "user"}})

	token, err := tv.Issue(id, time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	sm.LoadSessionUser(whoami).ServeHTTP(rec, req)

	if got := rec.Body.String(); got != id {
		t.Errorf("expected user %s, got %q", id, got)
	}
}

func TestLoadSessionUser_DeletedUserIsAnonymous(t *testing.T) {
	id := "507f1f77bcf86cd799439011"
	sm, tv := newManagerWithTokens(t, stubFetcher{})

	token, _ := tv.Issue(id, time.Minute)
	req := httptest.NewRequest("GET", "/api/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	sm.LoadSessionUser(whoami).ServeHTTP(rec, req)

	if got := rec.Body.String(); got != "anonymous" {
		t.Errorf("fetcher returned nil, expected anonymous, got %q", got)
	}
}

func TestLoadSessionUser_RejectsBadTokens(t *testing.T) {
	id := "507f1f77bcf86cd799439011"
	sm, tv := newManagerWithTokens(t, stubFetcher{id: {ID: id}})

	expired, _ := tv.Issue(id, -time.Minute)
	other, _ := auth.NewTokenVerifier("another-secret-that-is-32-chars-long!", "aggienexus-test")
	forged, _ := other.Issue(id, time.Minute)
	wrongIss, _ := auth.NewTokenVerifier(testSecret, "someone-else")
	foreign, _ := wrongIss.Issue(id, time.Minute)

	tests := []struct {
		name   string
		header string
	}{
		{"expired", "Bearer " + expired},
		{"wrong secret", "Bearer " + forged},
		{"wrong issuer", "Bearer " + foreign},
		{"garbage", "Bearer not-a-jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/profile", nil)
			req.Header.Set("Authorization", tt.header)
			rec := httptest.NewRecorder()
			sm.LoadSessionUser(whoami).ServeHTTP(rec, req)
			if got := rec.Body.String(); got != "anonymous" {
				t.Errorf("expected anonymous, got %q", got)
			}
		})
	}
}

func TestLoginLogout_CookieSession(t *testing.T) {
	id := "507f1f77bcf86cd799439011"
	sm, _ := newManagerWithTokens(t, stubFetcher{id: {ID: id}})

	// Login sets the cookie.
	loginRec := httptest.NewRecorder()
	if err := sm.Login(loginRec, httptest.NewRequest("POST", "/session", nil), id); err != nil {
		t.Fatalf("Login: %v", err)
	}
	cookies := loginRec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected a session cookie")
	}

	req := httptest.NewRequest("GET", "/api/profile", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	sm.LoadSessionUser(whoami).ServeHTTP(rec, req)
	if got := rec.Body.String(); got != id {
		t.Fatalf("expected cookie session to authenticate %s, got %q", id, got)
	}

	// Logout expires it.
	outRec := httptest.NewRecorder()
	if err := sm.Logout(outRec, req); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	for _, c := range outRec.Result().Cookies() {
		if c.MaxAge >= 0 {
			t.Errorf("expected expired cookie, got MaxAge=%d", c.MaxAge)
		}
	}
}

func TestAuthenticate_NoCredentials(t *testing.T) {
	sm, _ := newManagerWithTokens(t, stubFetcher{})
	_, err := sm.Authenticate(httptest.NewRequest("GET", "/", nil))
	if err != auth.ErrNoCredentials {
		t.Errorf("expected ErrNoCredentials, got %v", err)
	}
}

func TestRequireSignedIn_API_JSONBody(t *testing.T) {
	sm, _ := newManagerWithTokens(t, stubFetcher{})
	rec := httptest.NewRecorder()
	sm.RequireSignedIn(whoami).ServeHTTP(rec, httptest.NewRequest("GET", "/api/profile/status", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON content type, got %q", ct)
	}
}
