// internal/app/features/profile/handler.go
package profile

import (
	uierrors "github.com/aggienexus/nexus/internal/app/features/errors"
	organizationstore "github.com/aggienexus/nexus/internal/app/store/organizations"
	userstore "github.com/aggienexus/nexus/internal/app/store/users"
	"github.com/aggienexus/nexus/internal/app/system/affiliation"
	"github.com/aggienexus/nexus/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the signed-in user's profile and organization claims.
type Handler struct {
	Users    *userstore.Store
	Orgs     *organizationstore.Store
	Rules    *affiliation.Rules
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

// NewHandler constructs a Handler bound to the given Mongo database.
// rules decides which new claims are verified on the spot.
func NewHandler(db *mongo.Database, rules *affiliation.Rules, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	if rules == nil {
		rules = affiliation.Default()
	}
	return &Handler{
		Users:    userstore.New(db),
		Orgs:     organizationstore.New(db),
		Rules:    rules,
		ErrLog:   errLog,
		AuditLog: audit,
		Log:      logger,
	}
}
