// Package gates provides authorization gate functions for HTTP handlers.
// Gates check authentication and role, writing the JSON error response when
// a check fails.
//
// # Three-Tier Authorization Pattern
//
//  1. Route-Level Middleware (auth.RequireSignedIn, auth.RequireRole)
//     Applied in routes.go files for coarse-grained access control.
//
//  2. Handler-Level Gates (this package)
//     Used in handlers that sit on a mixed-access route, or that need the
//     caller as an authz.Actor for a policy check.
//
//  3. Policy Layer (internal/app/policy/*)
//     Used for resource-specific authorization requiring database lookups.
//     Policies return apperr errors; callers hand them to ErrorLogger.Write.
//
// Don't use gates in handlers that are behind role-specific middleware
// purely to re-check the role; use authz.ActorFrom instead.
package gates

import (
	"net/http"

	uierrors "github.com/aggienexus/nexus/internal/app/features/errors"
	"github.com/aggienexus/nexus/internal/app/system/apperr"
	"github.com/aggienexus/nexus/internal/app/system/authz"
)

// RequireAuth ensures a user is authenticated.
// If not, it writes 401 and returns ok=false.
func RequireAuth(w http.ResponseWriter, r *http.Request, errLog *uierrors.ErrorLogger) (authz.Actor, bool) {
	a, ok := authz.ActorFrom(r)
	if !ok {
		errLog.Write(w, r, apperr.Unauthenticated("sign in required"))
		return authz.Actor{}, false
	}
	return a, true
}

// RequireAdmin ensures the user is authenticated and has the admin role.
func RequireAdmin(w http.ResponseWriter, r *http.Request, errLog *uierrors.ErrorLogger) (authz.Actor, bool) {
	return RequireAnyRole(w, r, errLog, "admin")
}

// RequireAnyRole ensures the user is authenticated and has one of the
// allowed roles. Unauthenticated callers get 401, others 403.
func RequireAnyRole(w http.ResponseWriter, r *http.Request, errLog *uierrors.ErrorLogger, allowedRoles ...string) (authz.Actor, bool) {
	a, ok := RequireAuth(w, r, errLog)
	if !ok {
		return authz.Actor{}, false
	}
	if authz.HasAnyRole(r, allowedRoles...) {
		return a, true
	}
	errLog.Write(w, r, apperr.Forbidden("insufficient role"))
	return authz.Actor{}, false
}

// Optional returns the caller as a policy actor, or nil when the request is
// anonymous. Policies treat nil as unauthenticated.
func Optional(r *http.Request) *authz.Actor {
	a, ok := authz.ActorFrom(r)
	if !ok {
		return nil
	}
	return &a
}
