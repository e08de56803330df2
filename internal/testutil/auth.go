package testutil

import (
	"testing"
	"time"

	"github.com/aggienexus/nexus/internal/app/system/auth"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
)

// TestJWTSecret signs bearer tokens in handler tests.
const TestJWTSecret = "aggienexus-test-secret-at-least-32-bytes"

// TestJWTIssuer is the issuer stamped on test tokens.
const TestJWTIssuer = "aggienexus-test"

// NewSessionManager returns a cookie session manager with bearer token
// support, suitable for handler tests over plain http.
func NewSessionManager(t *testing.T) (*auth.SessionManager, *auth.TokenVerifier) {
	t.Helper()
	sm, err := auth.NewSessionManager(string(securecookie.GenerateRandomKey(32)), "test-session", "", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	tv, err := auth.NewTokenVerifier(TestJWTSecret, TestJWTIssuer)
	if err != nil {
		t.Fatalf("NewTokenVerifier: %v", err)
	}
	sm.SetTokenVerifier(tv)
	return sm, tv
}
