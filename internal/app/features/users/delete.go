// internal/app/features/users/delete.go
package users

import (
	"context"
	"net/http"

	"github.com/aggienexus/nexus/internal/app/policy/userpolicy"
	"github.com/aggienexus/nexus/internal/app/system/apperr"
	"github.com/aggienexus/nexus/internal/app/system/gates"
	"github.com/aggienexus/nexus/internal/app/system/inputval"
	"github.com/aggienexus/nexus/internal/app/system/timeouts"
	"github.com/aggienexus/nexus/internal/app/system/txn"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// HandleDelete handles DELETE /api/users/{id}. Users delete themselves or
// are deleted by an admin. The record is kept with status deleted; the
// user's organization-manager memberships are removed.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.ObjectIDParam(r, "id")
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	actor := gates.Optional(r)
	target, err := userpolicy.CheckDelete(ctx, h.Users, actor, id)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	err = txn.Run(ctx, h.DB, h.Log, func(ctx context.Context) error {
		deleted, err := h.Users.SoftDelete(ctx, target.ID)
		if err != nil {
			return err
		}
		if !deleted {
			return mongo.ErrNoDocuments
		}
		_, err = h.Managers.DeleteByUser(ctx, target.ID)
		return err
	})
	if err != nil {
		h.ErrLog.Write(w, r, apperr.Lookup(err, "user not found"))
		return
	}

	h.AuditLog.UserDeleted(ctx, r, actor.ID, target.ID)
	h.Log.Info("user deleted",
		zap.String("user_id", target.ID.Hex()),
		zap.String("actor_id", actor.ID.Hex()))
	w.WriteHeader(http.StatusNoContent)
}
