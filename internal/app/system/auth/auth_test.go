package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aggienexus/nexus/internal/app/system/auth"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRequireSignedIn(t *testing.T) {
	sm, _ := newManagerWithTokens(t, stubFetcher{})

	tests := []struct {
		name   string
		user   *auth.SessionUser
		accept string
		status int
	}{
		{"anonymous api", nil, "application/json", http.StatusUnauthorized},
		{"anonymous browser still gets json", nil, "text/html", http.StatusUnauthorized},
		{"signed in", &auth.SessionUser{ID: "507f1f77bcf86cd799439011", Role: "user"}, "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/profile", nil)
			req.Header.Set("Accept", tt.accept)
			if tt.user != nil {
				req = auth.WithTestUser(req, tt.user)
			}
			rec := httptest.NewRecorder()
			sm.RequireSignedIn(okHandler).ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	sm, _ := newManagerWithTokens(t, stubFetcher{})

	tests := []struct {
		name    string
		allowed []string
		user    *auth.SessionUser
		status  int
	}{
		{"anonymous", []string{"admin"}, nil, http.StatusUnauthorized},
		{"wrong role", []string{"admin"}, &auth.SessionUser{ID: "u", Role: "user"}, http.StatusForbidden},
		{"matching role", []string{"admin"}, &auth.SessionUser{ID: "u", Role: "admin"}, http.StatusOK},
		{"one of several", []string{"admin", "manager"}, &auth.SessionUser{ID: "u", Role: "manager"}, http.StatusOK},
		{"case insensitive", []string{" Admin "}, &auth.SessionUser{ID: "u", Role: "ADMIN"}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/admin/audit", nil)
			if tt.user != nil {
				req = auth.WithTestUser(req, tt.user)
			}
			rec := httptest.NewRecorder()
			sm.RequireRole(tt.allowed...)(okHandler).ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.status != http.StatusOK && rec.Header().Get("Content-Type") != "application/json" {
				t.Errorf("expected JSON error body, got %q", rec.Header().Get("Content-Type"))
			}
		})
	}
}

func TestCurrentUser(t *testing.T) {
	if _, found := auth.CurrentUser(httptest.NewRequest("GET", "/", nil)); found {
		t.Error("expected no user on a bare request")
	}

	want := &auth.SessionUser{ID: "507f1f77bcf86cd799439011", Name: "Ada", Role: "admin"}
	got, found := auth.CurrentUser(auth.WithTestUser(httptest.NewRequest("GET", "/", nil), want))
	if !found || got != want {
		t.Errorf("CurrentUser() = %+v, %v", got, found)
	}
}
