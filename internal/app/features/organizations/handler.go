// internal/app/features/organizations/handler.go
package organizations

import (
	uierrors "github.com/aggienexus/nexus/internal/app/features/errors"
	organizationstore "github.com/aggienexus/nexus/internal/app/store/organizations"
	orgmanagerstore "github.com/aggienexus/nexus/internal/app/store/orgmanagers"
	"github.com/aggienexus/nexus/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the feature-level entry point for Organizations.
type Handler struct {
	Orgs     *organizationstore.Store
	Managers *orgmanagerstore.Store
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

// NewHandler constructs a new Organizations handler bound to a DB and logger.
func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Orgs:     organizationstore.New(db),
		Managers: orgmanagerstore.New(db),
		ErrLog:   errLog,
		AuditLog: audit,
		Log:      logger,
	}
}
