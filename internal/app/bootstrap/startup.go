// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	userstore "github.com/aggienexus/nexus/internal/app/store/users"
	"github.com/aggienexus/nexus/internal/app/system/affiliation"
	"github.com/aggienexus/nexus/internal/app/system/timeouts"
	"github.com/aggienexus/nexus/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("timeouts configured from environment", zap.Int("overrides", n))
	}

	if err := loadAffiliationRules(appCfg.AffiliationRulesPath, logger); err != nil {
		return err
	}

	if appCfg.AdminEmail != "" {
		if err := ensureAdmin(ctx, deps, appCfg.AdminEmail, logger); err != nil {
			return err
		}
	}
	return nil
}

// loadAffiliationRules replaces the built-in rules when path is set.
func loadAffiliationRules(path string, logger *zap.Logger) error {
	if path == "" {
		logger.Info("using built-in affiliation rules")
		return nil
	}
	rules, err := affiliation.Load(path)
	if err != nil {
		logger.Error("affiliation rules load failed", zap.String("path", path), zap.Error(err))
		return err
	}
	affiliation.SetDefault(rules)
	logger.Info("affiliation rules loaded",
		zap.String("path", path),
		zap.Int("programs", len(rules.ProgramRequirements)),
		zap.Int("verification_required", len(rules.VerificationRequired)))
	return nil
}

// ensureAdmin promotes the live user with email to admin. Users are created
// on first sign-in, so a missing user is logged and skipped.
func ensureAdmin(ctx context.Context, deps DBDeps, email string, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Medium())
	defer cancel()

	db := deps.NexusMongoDatabase
	users := userstore.New(db)

	u, err := users.GetActiveByEmail(ctx, email)
	if errors.Is(err, mongo.ErrNoDocuments) {
		logger.Warn("admin_email has no matching user yet; sign in once and restart",
			zap.String("email", email))
		return nil
	}
	if err != nil {
		return fmt.Errorf("look up admin user: %w", err)
	}
	if u.Role == models.RoleAdmin {
		return nil
	}

	if err := users.UpdateRole(ctx, u.ID, models.RoleAdmin); err != nil {
		return fmt.Errorf("promote admin user: %w", err)
	}
	logger.Info("promoted user to admin", zap.String("user_id", u.ID.Hex()), zap.String("email", u.Email))
	return nil
}
