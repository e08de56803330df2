// internal/app/features/projects/handler.go
package projects

import (
	uierrors "github.com/aggienexus/nexus/internal/app/features/errors"
	projectstore "github.com/aggienexus/nexus/internal/app/store/projects"
	userstore "github.com/aggienexus/nexus/internal/app/store/users"
	"github.com/aggienexus/nexus/internal/app/system/affiliation"
	"github.com/aggienexus/nexus/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves projects and enforces program affiliation on save.
type Handler struct {
	Projects *projectstore.Store
	Users    *userstore.Store
	Rules    *affiliation.Rules
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, rules *affiliation.Rules, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	if rules == nil {
		rules = affiliation.Default()
	}
	return &Handler{
		Projects: projectstore.New(db),
		Users:    userstore.New(db),
		Rules:    rules,
		ErrLog:   errLog,
		AuditLog: audit,
		Log:      logger,
	}
}
