// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/aggienexus/nexus/internal/app/store/audit"
	"github.com/aggienexus/nexus/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Config selects where each category goes.
// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off".
type Config struct {
	Auth  string
	Admin string
}

// Logger writes audit events to the audit store and to zap.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{store: store, zapLog: zapLog, config: config}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.OrganizationID != nil {
		fields = append(fields, zap.String("organization_id", event.OrganizationID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records event according to the category's setting.
// A nil Logger is a no-op so tests can pass nil.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	setting := "all"
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	}
	if setting == "off" {
		return
	}

	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}
	if setting == "all" || setting == "db" {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType))
		}
	}
}

func fromRequest(r *http.Request, category, eventType string) audit.Event {
	return audit.Event{
		Category:  category,
		EventType: eventType,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
	}
}

// --- Authentication Events ---

// SessionStarted logs a bearer token exchanged for a cookie session.
func (l *Logger) SessionStarted(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	e := fromRequest(r, audit.CategoryAuth, audit.EventSessionStarted)
	e.UserID = &userID
	l.Log(ctx, e)
}

// SessionEnded logs a logout. userIDStr may be empty for anonymous callers.
func (l *Logger) SessionEnded(ctx context.Context, r *http.Request, userIDStr string) {
	e := fromRequest(r, audit.CategoryAuth, audit.EventSessionEnded)
	if oid, err := primitive.ObjectIDFromHex(userIDStr); err == nil {
		e.UserID = &oid
	}
	l.Log(ctx, e)
}

// --- Admin Events ---

// ClaimAutoVerified logs a claim verified by email domain.
func (l *Logger) ClaimAutoVerified(ctx context.Context, r *http.Request, userID primitive.ObjectID, orgID *primitive.ObjectID, organization string) {
	e := fromRequest(r, audit.CategoryAdmin, audit.EventClaimAutoVerified)
	e.UserID = &userID
	e.OrganizationID = orgID
	e.Details = map[string]string{"organization": organization, "verified_by": "system"}
	l.Log(ctx, e)
}

// ClaimReviewed logs an admin decision on a pending claim.
func (l *Logger) ClaimReviewed(ctx context.Context, r *http.Request, actorID, userID primitive.ObjectID, organization, decision string) {
	e := fromRequest(r, audit.CategoryAdmin, audit.EventClaimReviewed)
	e.ActorID = &actorID
	e.UserID = &userID
	e.Details = map[string]string{"organization": organization, "decision": decision}
	l.Log(ctx, e)
}

// UserRoleChanged logs a role change and its membership cascade.
func (l *Logger) UserRoleChanged(ctx context.Context, r *http.Request, actorID, userID primitive.ObjectID, oldRole, newRole string, added, removed int64) {
	e := fromRequest(r, audit.CategoryAdmin, audit.EventUserRoleChanged)
	e.ActorID = &actorID
	e.UserID = &userID
	e.Details = map[string]string{
		"old_role":            oldRole,
		"new_role":            newRole,
		"memberships_added":   strconv.FormatInt(added, 10),
		"memberships_removed": strconv.FormatInt(removed, 10),
	}
	l.Log(ctx, e)
}

// UserDeleted logs a soft delete of a user record.
func (l *Logger) UserDeleted(ctx context.Context, r *http.Request, actorID, userID primitive.ObjectID) {
	e := fromRequest(r, audit.CategoryAdmin, audit.EventUserDeleted)
	e.ActorID = &actorID
	e.UserID = &userID
	e.Details = map[string]string{"self": strconv.FormatBool(actorID == userID)}
	l.Log(ctx, e)
}

// EventStatusChanged logs an event moderation decision.
func (l *Logger) EventStatusChanged(ctx context.Context, r *http.Request, actorID, eventID primitive.ObjectID, from, to string) {
	e := fromRequest(r, audit.CategoryAdmin, audit.EventEventStatusChanged)
	e.ActorID = &actorID
	e.Details = map[string]string{"event_id": eventID.Hex(), "from": from, "to": to}
	l.Log(ctx, e)
}

// OrgCreated logs a new organization.
func (l *Logger) OrgCreated(ctx context.Context, r *http.Request, actorID, orgID primitive.ObjectID, name string) {
	e := fromRequest(r, audit.CategoryAdmin, audit.EventOrgCreated)
	e.ActorID = &actorID
	e.OrganizationID = &orgID
	e.Details = map[string]string{"name": name}
	l.Log(ctx, e)
}

// OrgUpdated logs an organization profile or image change.
func (l *Logger) OrgUpdated(ctx context.Context, r *http.Request, actorID, orgID primitive.ObjectID, change string) {
	e := fromRequest(r, audit.CategoryAdmin, audit.EventOrgUpdated)
	e.ActorID = &actorID
	e.OrganizationID = &orgID
	e.Details = map[string]string{"change": change}
	l.Log(ctx, e)
}

// ProjectDeleted logs an owner soft delete or an admin hard delete.
func (l *Logger) ProjectDeleted(ctx context.Context, r *http.Request, actorID, projectID primitive.ObjectID, hard bool) {
	eventType := audit.EventProjectDeleted
	if hard {
		eventType = audit.EventProjectHardDeleted
	}
	e := fromRequest(r, audit.CategoryAdmin, eventType)
	e.ActorID = &actorID
	e.Details = map[string]string{"project_id": projectID.Hex()}
	l.Log(ctx, e)
}

// AuthorizationDenied logs a refused mutation. reason is the internal
// cause and never reaches the client.
func (l *Logger) AuthorizationDenied(ctx context.Context, r *http.Request, actorID primitive.ObjectID, resource, reason string) {
	e := fromRequest(r, audit.CategoryAdmin, audit.EventAuthorizationDenied)
	e.ActorID = &actorID
	e.Success = false
	e.FailureReason = reason
	e.Details = map[string]string{"resource": resource, "path": r.URL.Path}
	l.Log(ctx, e)
}
