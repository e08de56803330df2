// internal/app/features/users/role.go
package users

import (
	"context"
	"errors"
	"net/http"

	"github.com/aggienexus/nexus/internal/app/policy/userpolicy"
	"github.com/aggienexus/nexus/internal/app/system/apperr"
	"github.com/aggienexus/nexus/internal/app/system/gates"
	"github.com/aggienexus/nexus/internal/app/system/httpjson"
	"github.com/aggienexus/nexus/internal/app/system/inputval"
	"github.com/aggienexus/nexus/internal/app/system/normalize"
	"github.com/aggienexus/nexus/internal/app/system/timeouts"
	"github.com/aggienexus/nexus/internal/app/system/txn"
	"github.com/aggienexus/nexus/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type roleInput struct {
	Role            string   `json:"role" validate:"required,role" label:"Role"`
	OrganizationIDs []string `json:"organization_ids" validate:"max=20,dive,objectid" label:"Organization IDs"`
}

type roleResponse struct {
	User               *models.User `json:"user"`
	MembershipsAdded   int64        `json:"memberships_added"`
	MembershipsRemoved int64        `json:"memberships_removed"`
}

// HandleChangeRole handles PATCH /api/users/{id}/role.
//
// Demotion to user removes every organization-manager membership the user
// holds. Promotion to manager adds a membership for each listed
// organization the user does not already manage. The role write and the
// membership writes run in one transaction where the deployment supports
// it; on a standalone server a failed membership write leaves the new role
// in place and the request fails.
func (h *Handler) HandleChangeRole(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.ObjectIDParam(r, "id")
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	var in roleInput
	if err := httpjson.Decode(w, r, &in); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	in.Role = normalize.Role(in.Role)
	if res := inputval.Validate(in); res.HasErrors() {
		h.ErrLog.WriteValidation(w, res)
		return
	}
	orgIDs, err := inputval.ObjectIDs(in.OrganizationIDs)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	actor := gates.Optional(r)
	target, err := userpolicy.CheckChangeRole(ctx, h.Users, actor, id)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	plan := userpolicy.PlanRoleCascade(in.Role, orgIDs)
	for _, orgID := range plan.AddOrgIDs {
		if _, err := h.Orgs.GetByID(ctx, orgID); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				h.ErrLog.Write(w, r, apperr.Validation("unknown organization: "+orgID.Hex()))
				return
			}
			h.ErrLog.Write(w, r, apperr.Dependency("unable to load organization", err))
			return
		}
	}

	var added, removed int64
	err = txn.Run(ctx, h.DB, h.Log, func(ctx context.Context) error {
		added, removed = 0, 0
		if err := h.Users.UpdateRole(ctx, target.ID, in.Role); err != nil {
			return err
		}
		return h.applyCascade(ctx, target.ID, plan, &added, &removed)
	})
	if err != nil {
		h.ErrLog.Write(w, r, apperr.Lookup(err, "user not found"))
		return
	}

	h.AuditLog.UserRoleChanged(ctx, r, actor.ID, target.ID, target.Role, in.Role, added, removed)
	h.Log.Info("user role changed",
		zap.String("user_id", target.ID.Hex()),
		zap.String("from", target.Role),
		zap.String("to", in.Role),
		zap.Int64("memberships_added", added),
		zap.Int64("memberships_removed", removed))

	updated, err := h.Users.GetActive(ctx, target.ID)
	if err != nil {
		h.ErrLog.Write(w, r, apperr.Lookup(err, "user not found"))
		return
	}
	httpjson.Write(w, http.StatusOK, roleResponse{User: updated, MembershipsAdded: added, MembershipsRemoved: removed})
}

func (h *Handler) applyCascade(ctx context.Context, userID primitive.ObjectID, plan userpolicy.RoleCascade, added, removed *int64) error {
	if plan.RemoveAllMemberships {
		n, err := h.Managers.DeleteByUser(ctx, userID)
		if err != nil {
			return err
		}
		*removed = n
	}
	if len(plan.AddOrgIDs) > 0 {
		n, err := h.Managers.AddMissing(ctx, userID, plan.AddOrgIDs)
		if err != nil {
			return err
		}
		*added = n
	}
	return nil
}
