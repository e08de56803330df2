// Package profilegate redirects signed-in users who still need onboarding to
// the frontend's profile setup page.
//
// Only HTML navigations are redirected; API calls pass through and ask
// /api/profile/status themselves. Routes opt out by marking the request
// exempt before Guard runs (Exempt, ExemptPaths), so the decision travels
// with the request rather than living in process state.
package profilegate

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aggienexus/nexus/internal/app/system/authz"
	"github.com/aggienexus/nexus/internal/app/system/profilestatus"
	"github.com/aggienexus/nexus/internal/app/system/timeouts"
	"github.com/aggienexus/nexus/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// UserLoader loads a live user.
type UserLoader interface {
	GetActive(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

type ctxKey struct{}

// Exempt marks every request through it as exempt from Guard.
func Exempt(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, WithExempt(r))
	})
}

// ExemptPaths marks requests whose path equals or sits under one of
// prefixes as exempt.
func ExemptPaths(prefixes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, p := range prefixes {
				if r.URL.Path == p || strings.HasPrefix(r.URL.Path, strings.TrimSuffix(p, "/")+"/") {
					r = WithExempt(r)
					break
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithExempt returns r marked exempt.
func WithExempt(r *http.Request) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), ctxKey{}, true))
}

// IsExempt reports whether r was marked exempt.
func IsExempt(r *http.Request) bool {
	v, _ := r.Context().Value(ctxKey{}).(bool)
	return v
}

// Gate decides, per navigation, whether to send the user to onboarding.
type Gate struct {
	users  UserLoader
	window time.Duration
	setup  *url.URL
	log    *zap.Logger
}

// New returns a Gate that sends users to setupURL, an absolute http(s) URL
// or a path on this host. A non-positive window uses
// profilestatus.DefaultLoginWindow.
func New(users UserLoader, window time.Duration, setupURL string, logger *zap.Logger) (*Gate, error) {
	u, err := url.Parse(strings.TrimSpace(setupURL))
	if err != nil {
		return nil, fmt.Errorf("profile gate: parse setup url: %w", err)
	}
	absolute := (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
	if !absolute && (u.Scheme != "" || u.Host != "" || !strings.HasPrefix(u.Path, "/")) {
		return nil, fmt.Errorf("profile gate: setup url %q must be an http(s) URL or an absolute path", setupURL)
	}
	if window <= 0 {
		window = profilestatus.DefaultLoginWindow
	}
	return &Gate{users: users, window: window, setup: u, log: logger}, nil
}

// SetupURL returns where the gate sends users for onboarding.
func (g *Gate) SetupURL() string { return g.setup.String() }

// Guard redirects (303) to the setup URL when the signed-in user should set
// up their profile. A failed lookup lets the request through: the redirect is
// a convenience, not an access check.
func (g *Gate) Guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !isNavigation(r) || IsExempt(r) || g.isSetupPage(r) {
			next.ServeHTTP(w, r)
			return
		}
		actor, ok := authz.ActorFrom(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		u, err := g.users.GetActive(ctx, actor.ID)
		cancel()
		if err != nil {
			g.log.Debug("profile gate lookup failed", zap.String("user_id", actor.ID.Hex()), zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}

		res := profilestatus.Evaluate(*u, profilestatus.HasJustLoggedIn(*u, g.window))
		if res.ShouldSetupProfile && !profilestatus.IsLegacyComplete(*u) {
			http.Redirect(w, r, g.redirectTarget(r), http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (g *Gate) isSetupPage(r *http.Request) bool {
	return g.setup.Host == "" && r.URL.Path == g.setup.Path
}

// redirectTarget is the setup URL with the original request in "return".
func (g *Gate) redirectTarget(r *http.Request) string {
	target := *g.setup
	q := target.Query()
	q.Set("return", r.URL.RequestURI())
	target.RawQuery = q.Encode()
	return target.String()
}

func isNavigation(r *http.Request) bool {
	if r.Method != http.MethodGet {
		return false
	}
	if r.Header.Get("HX-Request") == "true" {
		return false
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
