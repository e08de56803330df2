// internal/app/features/organizations/edit.go
package organizations

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/aggienexus/nexus/internal/app/policy/orgpolicy"
	organizationstore "github.com/aggienexus/nexus/internal/app/store/organizations"
	"github.com/aggienexus/nexus/internal/app/system/apperr"
	"github.com/aggienexus/nexus/internal/app/system/gates"
	"github.com/aggienexus/nexus/internal/app/system/htmlsanitize"
	"github.com/aggienexus/nexus/internal/app/system/httpjson"
	"github.com/aggienexus/nexus/internal/app/system/inputval"
	"github.com/aggienexus/nexus/internal/app/system/normalize"
	"github.com/aggienexus/nexus/internal/app/system/timeouts"
	"github.com/aggienexus/nexus/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type updateInput struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200" label:"Name"`
	Description *string `json:"description" validate:"omitempty,max=10000" label:"Description"`
	Website     *string `json:"website" validate:"omitempty,httpurl" label:"Website"`
	Status      *string `json:"status" validate:"omitempty,oneof=active inactive" label:"Status"`
}

// authorize runs the organization policy, auditing refusals.
func (h *Handler) authorize(ctx context.Context, w http.ResponseWriter, r *http.Request, id primitive.ObjectID) (models.Organization, primitive.ObjectID, bool) {
	actor := gates.Optional(r)
	org, err := orgpolicy.CheckManage(ctx, h.Orgs, h.Managers, actor, id, h.Log)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindForbidden {
			h.AuditLog.AuthorizationDenied(ctx, r, actor.ID, "organization:"+id.Hex(), "manage organization")
		}
		h.ErrLog.Write(w, r, err)
		return models.Organization{}, primitive.NilObjectID, false
	}
	return org, actor.ID, true
}

// HandleUpdate handles PATCH /api/organizations/{id}. Absent fields are
// left unchanged.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.ObjectIDParam(r, "id")
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	var in updateInput
	if err := httpjson.Decode(w, r, &in); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	if in.Name != nil {
		n := normalize.Name(htmlsanitize.PlainText(*in.Name))
		if n == "" {
			h.ErrLog.Write(w, r, apperr.Validation("Name is required."))
			return
		}
		in.Name = &n
	}
	if in.Status != nil {
		s := normalize.Status(*in.Status)
		in.Status = &s
	}
	if in.Website != nil {
		s := strings.TrimSpace(*in.Website)
		in.Website = &s
	}
	if res := inputval.Validate(in); res.HasErrors() {
		h.ErrLog.WriteValidation(w, res)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	_, actorID, ok := h.authorize(ctx, w, r, id)
	if !ok {
		return
	}

	upd := organizationstore.Update{Name: in.Name, Website: in.Website, Status: in.Status}
	if in.Description != nil {
		d := htmlsanitize.Sanitize(*in.Description)
		upd.Description = &d
	}
	if err := h.Orgs.Update(ctx, id, upd); err != nil {
		if errors.Is(err, organizationstore.ErrDuplicateOrganization) {
			h.ErrLog.Write(w, r, apperr.Validation("an organization with that name already exists"))
			return
		}
		h.ErrLog.Write(w, r, apperr.Lookup(err, "organization not found"))
		return
	}
	h.AuditLog.OrgUpdated(ctx, r, actorID, id, "details")

	h.respondOrg(ctx, w, r, id)
}

func (h *Handler) respondOrg(ctx context.Context, w http.ResponseWriter, r *http.Request, id primitive.ObjectID) {
	org, err := h.Orgs.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.Write(w, r, apperr.Lookup(err, "organization not found"))
		return
	}
	httpjson.Write(w, http.StatusOK, org)
}
