// internal/app/features/session/handler.go
package session

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	uierrors "github.com/aggienexus/nexus/internal/app/features/errors"
	userstore "github.com/aggienexus/nexus/internal/app/store/users"
	"github.com/aggienexus/nexus/internal/app/system/apperr"
	"github.com/aggienexus/nexus/internal/app/system/auditlog"
	"github.com/aggienexus/nexus/internal/app/system/auth"
	"github.com/aggienexus/nexus/internal/app/system/httpjson"
	"github.com/aggienexus/nexus/internal/app/system/inputval"
	"github.com/aggienexus/nexus/internal/app/system/timeouts"
	"github.com/aggienexus/nexus/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler exchanges identity provider tokens for cookie sessions.
type Handler struct {
	Users      *userstore.Store
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	AuditLog   *auditlog.Logger
	Log        *zap.Logger
}

func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:      userstore.New(db),
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
		AuditLog:   audit,
		Log:        logger,
	}
}

type sessionUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// newAccount is what a first-time token must carry to create a user.
type newAccount struct {
	Email    string `validate:"required,nexusemail" label:"Token email"`
	FullName string `validate:"max=200" label:"Token name"`
}

type sessionResponse struct {
	User    sessionUser `json:"user"`
	Created bool        `json:"created"`
}

// HandleCreate handles POST /session.
//
// The bearer token's subject is the user id. A first-time user is created
// from the token's email and name claims, which must hold a bare email
// address; the claims are ignored for existing users. Every successful exchange records
// last_login_at, which drives the "just logged in" onboarding prompt.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	claims, err := h.SessionMgr.BearerClaims(r)
	if err != nil {
		h.Log.Debug("session exchange rejected", zap.Error(err))
		h.ErrLog.Write(w, r, apperr.Unauthenticated("invalid or missing token"))
		return
	}
	uid, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		h.ErrLog.Write(w, r, apperr.Unauthenticated("invalid token subject"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if _, err := h.Users.GetByID(ctx, uid); errors.Is(err, mongo.ErrNoDocuments) {
		acct := newAccount{Email: strings.TrimSpace(claims.Email), FullName: strings.TrimSpace(claims.Name)}
		if res := inputval.Validate(acct); res.HasErrors() {
			h.ErrLog.Write(w, r, apperr.Validation("token cannot create an account", res.Messages()...))
			return
		}
	}

	u, created, err := h.Users.Provision(ctx, uid, strings.TrimSpace(claims.Email), strings.TrimSpace(claims.Name))
	if err != nil {
		h.ErrLog.Write(w, r, apperr.Dependency("unable to load account", err))
		return
	}
	if u.Status == models.UserStatusDeleted {
		h.ErrLog.Write(w, r, apperr.Forbidden("account has been deleted"))
		return
	}

	if err := h.Users.RecordLogin(ctx, uid, time.Now()); err != nil {
		h.Log.Warn("record login failed", zap.String("user_id", uid.Hex()), zap.Error(err))
	}

	if err := h.SessionMgr.Login(w, r, uid.Hex()); err != nil {
		h.ErrLog.LogServerError(w, r, "save session failed", err, "Unable to create session.")
		return
	}
	h.AuditLog.SessionStarted(r.Context(), r, uid)

	role := u.Role
	if role == "" {
		role = models.RoleUser
	}
	httpjson.Write(w, http.StatusOK, sessionResponse{
		User: sessionUser{
			ID:       u.ID.Hex(),
			Email:    u.Email,
			FullName: u.FullName,
			Role:     role,
		},
		Created: created,
	})
}

// HandleLogout handles POST /session/logout. It always clears the cookie,
// signed in or not.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	userID := ""
	if u, ok := auth.CurrentUser(r); ok {
		userID = u.ID
	}

	if err := h.SessionMgr.Logout(w, r); err != nil {
		h.Log.Error("logout: save session", zap.Error(err))
	}
	if userID != "" {
		h.AuditLog.SessionEnded(r.Context(), r, userID)
	}
	w.WriteHeader(http.StatusNoContent)
}
