// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	auditlogfeature "github.com/aggienexus/nexus/internal/app/features/auditlog"
	errorsfeature "github.com/aggienexus/nexus/internal/app/features/errors"
	eventsfeature "github.com/aggienexus/nexus/internal/app/features/events"
	healthfeature "github.com/aggienexus/nexus/internal/app/features/health"
	organizationsfeature "github.com/aggienexus/nexus/internal/app/features/organizations"
	profilefeature "github.com/aggienexus/nexus/internal/app/features/profile"
	profilestatusfeature "github.com/aggienexus/nexus/internal/app/features/profilestatus"
	projectsfeature "github.com/aggienexus/nexus/internal/app/features/projects"
	sessionfeature "github.com/aggienexus/nexus/internal/app/features/session"
	usersfeature "github.com/aggienexus/nexus/internal/app/features/users"
	"github.com/aggienexus/nexus/internal/app/store/audit"
	userstore "github.com/aggienexus/nexus/internal/app/store/users"
	"github.com/aggienexus/nexus/internal/app/system/affiliation"
	"github.com/aggienexus/nexus/internal/app/system/auditlog"
	"github.com/aggienexus/nexus/internal/app/system/auth"
	"github.com/aggienexus/nexus/internal/app/system/profilegate"
	"github.com/aggienexus/nexus/internal/app/system/ratelimit"
	"github.com/aggienexus/nexus/internal/app/system/reqlog"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: any DB or backend clients bundled in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// AggieNexus is a JSON API: it applies request logging, the session and
// bearer-token middleware, rate limiting on writes and the onboarding
// redirect guard, then mounts one router per feature.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.NexusMongoDatabase

	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// LoadSessionUser re-reads the user on each request so role changes and
	// deletes take effect immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(db))

	if appCfg.JWTSecret != "" {
		tv, err := auth.NewTokenVerifier(appCfg.JWTSecret, appCfg.JWTIssuer)
		if err != nil {
			logger.Error("token verifier init failed", zap.Error(err))
			return nil, err
		}
		sessionMgr.SetTokenVerifier(tv)
	} else {
		logger.Warn("jwt_secret is empty; bearer tokens are rejected and POST /session cannot sign in")
	}

	errLog := errorsfeature.NewErrorLogger(logger)
	audits := auditlog.New(audit.New(db), logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})
	rules := affiliation.Default()
	limiter := ratelimit.New(appCfg.APIRatePerMinute)

	r := chi.NewRouter()
	r.NotFound(errorsfeature.NotFound)
	r.MethodNotAllowed(errorsfeature.MethodNotAllowed)

	r.Use(reqlog.Middleware(logger))
	r.Use(sessionMgr.LoadSessionUser)
	if appCfg.SetupURL != "" {
		gate, err := profilegate.New(userstore.New(db), appCfg.LoginWindow, appCfg.SetupURL, logger)
		if err != nil {
			logger.Error("profile gate init failed", zap.Error(err))
			return nil, err
		}
		r.Use(profilegate.ExemptPaths("/health", "/session", "/api/profile"))
		r.Use(gate.Guard)
	} else {
		logger.Info("setup_url is empty; onboarding redirects are disabled")
	}

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.NexusMongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Token exchange and logout
	sessionHandler := sessionfeature.NewHandler(db, sessionMgr, errLog, audits, logger)
	r.With(limiter.Middleware).Mount("/session", sessionfeature.Routes(sessionHandler))

	r.Route("/api", func(api chi.Router) {
		api.Use(limiter.Middleware)

		statusHandler := profilestatusfeature.NewHandler(db, appCfg.LoginWindow, errLog, logger)
		api.Mount("/profile/status", profilestatusfeature.Routes(statusHandler, sessionMgr))

		profileHandler := profilefeature.NewHandler(db, rules, errLog, audits, logger)
		api.Mount("/profile", profilefeature.Routes(profileHandler, sessionMgr))

		usersHandler := usersfeature.NewHandler(db, errLog, audits, logger)
		api.Mount("/users", usersfeature.Routes(usersHandler, sessionMgr))

		eventsHandler := eventsfeature.NewHandler(db, errLog, audits, logger)
		api.Mount("/events", eventsfeature.Routes(eventsHandler, sessionMgr))

		orgHandler := organizationsfeature.NewHandler(db, errLog, audits, logger)
		api.Mount("/organizations", organizationsfeature.Routes(orgHandler, sessionMgr))

		projectsHandler := projectsfeature.NewHandler(db, rules, errLog, audits, logger)
		api.Mount("/projects", projectsfeature.Routes(projectsHandler, sessionMgr))

		// Admin-only surfaces
		api.Route("/admin", func(admin chi.Router) {
			admin.Mount("/projects", projectsfeature.AdminRoutes(projectsHandler, sessionMgr))

			auditHandler := auditlogfeature.NewHandler(db, errLog, logger)
			admin.Mount("/audit", auditlogfeature.Routes(auditHandler, sessionMgr))
		})
	})

	return r, nil
}
