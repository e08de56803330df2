// internal/app/system/auth/auth.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	isAuthKey = "is_authenticated"
	userIDKey = "user_id"
)

// ErrNoCredentials is returned by Authenticate when the request carries
// neither a bearer token nor a signed-in session.
var ErrNoCredentials = errors.New("no credentials")

// SessionUser is the caller identity placed in r.Context() for each request.
type SessionUser struct {
	ID    string
	Name  string
	Email string
	Role  string
}

// UserFetcher loads the current user record for an authenticated id.
// It returns nil when the user no longer exists or was deleted, which makes
// the request anonymous.
type UserFetcher interface {
	FetchUser(ctx context.Context, userID string) *SessionUser
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// SessionManager authenticates requests from a bearer token issued by the
// identity provider or from the cookie session established by Login.
type SessionManager struct {
	store   *sessions.CookieStore
	name    string
	fetcher UserFetcher
	tokens  *TokenVerifier
	logger  *zap.Logger
}

// NewSessionManager builds a cookie-backed session manager.
//
// In production (secure=true) cookies are Secure with SameSite=None so the
// frontend can call the API cross-site over HTTPS. In local dev over http
// use secure=false so browsers accept the cookie.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if name == "" {
		name = "aggienexus-session"
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts

	logger.Info("session store initialized",
		zap.String("name", name),
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &SessionManager{store: store, name: name, logger: logger}, nil
}

// SetUserFetcher installs the loader used to refresh the user on every
// request. Role changes and deletes therefore take effect immediately.
func (sm *SessionManager) SetUserFetcher(f UserFetcher) { sm.fetcher = f }

// SetTokenVerifier enables bearer token authentication.
func (sm *SessionManager) SetTokenVerifier(v *TokenVerifier) { sm.tokens = v }

// Authenticate resolves the caller's user id from the Authorization header,
// falling back to the cookie session. An invalid bearer token is an error
// even when a session cookie is also present.
func (sm *SessionManager) Authenticate(r *http.Request) (string, error) {
	if raw, ok := bearerTokenFromHeader(r.Header.Get("Authorization")); ok {
		if sm.tokens == nil {
			return "", errors.New("bearer tokens are not accepted")
		}
		return sm.tokens.Verify(raw)
	}

	sess, err := sm.store.Get(r, sm.name)
	if err != nil {
		return "", ErrNoCredentials
	}
	if isAuth, _ := sess.Values[isAuthKey].(bool); !isAuth {
		return "", ErrNoCredentials
	}
	id, _ := sess.Values[userIDKey].(string)
	if id == "" {
		return "", ErrNoCredentials
	}
	return id, nil
}

// BearerClaims verifies the request's bearer token and returns its claims.
func (sm *SessionManager) BearerClaims(r *http.Request) (*Claims, error) {
	raw, ok := bearerTokenFromHeader(r.Header.Get("Authorization"))
	if !ok {
		return nil, ErrNoCredentials
	}
	if sm.tokens == nil {
		return nil, errors.New("bearer tokens are not accepted")
	}
	return sm.tokens.Parse(raw)
}

// LoadSessionUser injects the current user into the request context when
// the request is authenticated. It never rejects a request.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := sm.Authenticate(r)
		if err != nil {
			if !errors.Is(err, ErrNoCredentials) {
				sm.logger.Debug("rejected credentials", zap.Error(err))
			}
			next.ServeHTTP(w, r)
			return
		}

		u := &SessionUser{ID: id}
		if sm.fetcher != nil {
			u = sm.fetcher.FetchUser(r.Context(), id)
		}
		if u != nil {
			r = withUser(r, u)
		}
		next.ServeHTTP(w, r)
	})
}

// Login marks the cookie session as signed in for userID.
func (sm *SessionManager) Login(w http.ResponseWriter, r *http.Request, userID string) error {
	sess, _ := sm.store.Get(r, sm.name)
	sess.Values[isAuthKey] = true
	sess.Values[userIDKey] = userID
	return sess.Save(r, w)
}

// Logout expires the cookie session.
func (sm *SessionManager) Logout(w http.ResponseWriter, r *http.Request) error {
	sess, _ := sm.store.Get(r, sm.name)
	sess.Values = map[interface{}]interface{}{}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// CurrentUser returns the user and a found flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// WithTestUser places u in the request context the way LoadSessionUser does.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

// RequireSignedIn rejects anonymous requests with 401.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			writeJSONError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects anonymous requests with 401 and users without one of
// the allowed roles with 403. Roles compare case-insensitively.
func (sm *SessionManager) RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			if _, has := set[strings.ToLower(u.Role)]; !has {
				writeJSONError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, "{\"error\":%q}\n", msg)
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

func bearerTokenFromHeader(h string) (string, bool) {
	h = strings.TrimSpace(h)
	if h == "" {
		return "", false
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}
