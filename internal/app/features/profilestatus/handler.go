// internal/app/features/profilestatus/handler.go
package profilestatus

import (
	"context"
	"net/http"
	"strconv"
	"time"

	uierrors "github.com/aggienexus/nexus/internal/app/features/errors"
	userstore "github.com/aggienexus/nexus/internal/app/store/users"
	"github.com/aggienexus/nexus/internal/app/system/apperr"
	"github.com/aggienexus/nexus/internal/app/system/gates"
	"github.com/aggienexus/nexus/internal/app/system/httpjson"
	"github.com/aggienexus/nexus/internal/app/system/profilestatus"
	"github.com/aggienexus/nexus/internal/app/system/timeouts"
	"github.com/aggienexus/nexus/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ProfileStore is the slice of the user store the status endpoint needs.
type ProfileStore interface {
	GetActive(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	MarkProfileCompleted(ctx context.Context, id primitive.ObjectID) error
}

// Handler answers the onboarding question for the signed-in user.
type Handler struct {
	Users       ProfileStore
	LoginWindow time.Duration
	ErrLog      *uierrors.ErrorLogger
	Log         *zap.Logger
}

func NewHandler(db *mongo.Database, loginWindow time.Duration, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	if loginWindow <= 0 {
		loginWindow = profilestatus.DefaultLoginWindow
	}
	return &Handler{
		Users:       userstore.New(db),
		LoginWindow: loginWindow,
		ErrLog:      errLog,
		Log:         logger,
	}
}

// ServeStatus handles GET /api/profile/status.
//
// A legacy profile (bio and skills filled in before the setup flags existed)
// is reported as not needing setup and is marked completed in passing. That
// write is best-effort: if it fails the response is unchanged.
func (h *Handler) ServeStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := gates.RequireAuth(w, r, h.ErrLog)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetActive(ctx, actor.ID)
	if err != nil {
		h.ErrLog.Write(w, r, apperr.Lookup(err, "profile not found"))
		return
	}

	justLoggedIn, explicit := parseJustLoggedIn(r)
	if !explicit {
		justLoggedIn = profilestatus.HasJustLoggedIn(*u, h.LoginWindow)
	}

	res := profilestatus.Evaluate(*u, justLoggedIn)
	if profilestatus.IsLegacyComplete(*u) {
		res.ShouldSetupProfile = false
		if err := h.Users.MarkProfileCompleted(ctx, u.ID); err != nil {
			h.Log.Warn("auto-complete legacy profile failed",
				zap.String("user_id", u.ID.Hex()), zap.Error(err))
		}
	}

	httpjson.Write(w, http.StatusOK, res)
}

// parseJustLoggedIn reads the justLoggedIn query parameter. explicit is
// false when the parameter is absent or not a boolean.
func parseJustLoggedIn(r *http.Request) (value, explicit bool) {
	s := query.Get(r, "justLoggedIn")
	if s == "" {
		return false, false
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, false
	}
	return b, true
}
