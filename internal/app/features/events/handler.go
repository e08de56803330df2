// internal/app/features/events/handler.go
package events

import (
	uierrors "github.com/aggienexus/nexus/internal/app/features/errors"
	eventstore "github.com/aggienexus/nexus/internal/app/store/events"
	"github.com/aggienexus/nexus/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the event calendar and its approval workflow.
type Handler struct {
	Events   *eventstore.Store
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Events:   eventstore.New(db),
		ErrLog:   errLog,
		AuditLog: audit,
		Log:      logger,
	}
}
