// internal/app/features/users/handler.go
package users

import (
	uierrors "github.com/aggienexus/nexus/internal/app/features/errors"
	organizationstore "github.com/aggienexus/nexus/internal/app/store/organizations"
	orgmanagerstore "github.com/aggienexus/nexus/internal/app/store/orgmanagers"
	userstore "github.com/aggienexus/nexus/internal/app/store/users"
	"github.com/aggienexus/nexus/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves user records, role changes and claim review.
type Handler struct {
	DB       *mongo.Database
	Users    *userstore.Store
	Orgs     *organizationstore.Store
	Managers *orgmanagerstore.Store
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Users:    userstore.New(db),
		Orgs:     organizationstore.New(db),
		Managers: orgmanagerstore.New(db),
		ErrLog:   errLog,
		AuditLog: audit,
		Log:      logger,
	}
}
