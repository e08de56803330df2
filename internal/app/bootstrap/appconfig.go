// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - CORS settings
//   - Request body size limits
//   - Database connection timeouts
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: aggienexus-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Cookie lifetime

	// Bearer tokens issued by the identity provider
	JWTSecret string // HS256 secret shared with the provider
	JWTIssuer string // Required iss claim (blank accepts any issuer)

	// Affiliation rules file; blank uses the rules built into the binary
	AffiliationRulesPath string

	// Frontend profile setup page for onboarding redirects (blank disables them)
	SetupURL string

	// How long after a login the profile prompt still counts as "just logged in"
	LoginWindow time.Duration

	// Mutating API requests allowed per client per minute (0 disables limiting)
	APIRatePerMinute int

	// Audit logging: "all" (db+log), "db", "log", or "off"
	AuditLogAuth  string
	AuditLogAdmin string

	// Email of an existing user promoted to admin on startup
	AdminEmail string
}
