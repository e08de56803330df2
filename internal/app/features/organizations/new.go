// internal/app/features/organizations/new.go
package organizations

import (
	"context"
	"errors"
	"net/http"

	organizationstore "github.com/aggienexus/nexus/internal/app/store/organizations"
	"github.com/aggienexus/nexus/internal/app/system/apperr"
	"github.com/aggienexus/nexus/internal/app/system/gates"
	"github.com/aggienexus/nexus/internal/app/system/htmlsanitize"
	"github.com/aggienexus/nexus/internal/app/system/httpjson"
	"github.com/aggienexus/nexus/internal/app/system/inputval"
	"github.com/aggienexus/nexus/internal/app/system/normalize"
	"github.com/aggienexus/nexus/internal/app/system/timeouts"
	"github.com/aggienexus/nexus/internal/domain/models"
)

const (
	statusActive   = organizationstore.StatusActive
	statusInactive = "inactive"
)

type createInput struct {
	Name        string `json:"name" validate:"required,max=200" label:"Name"`
	Description string `json:"description" validate:"max=10000" label:"Description"`
	Website     string `json:"website" validate:"omitempty,httpurl" label:"Website"`
}

// HandleCreate handles POST /api/organizations (admin only).
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := gates.RequireAdmin(w, r, h.ErrLog)
	if !ok {
		return
	}

	var in createInput
	if err := httpjson.Decode(w, r, &in); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	in.Name = normalize.Name(htmlsanitize.PlainText(in.Name))
	in.Website = normalize.QueryParam(in.Website)
	if res := inputval.Validate(in); res.HasErrors() {
		h.ErrLog.WriteValidation(w, res)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	org, err := h.Orgs.Create(ctx, models.Organization{
		Name:        in.Name,
		Description: htmlsanitize.Sanitize(in.Description),
		Website:     in.Website,
	})
	if err != nil {
		if errors.Is(err, organizationstore.ErrDuplicateOrganization) {
			h.ErrLog.Write(w, r, apperr.Validation("an organization with that name already exists"))
			return
		}
		h.ErrLog.Write(w, r, apperr.Dependency("unable to create organization", err))
		return
	}
	h.AuditLog.OrgCreated(ctx, r, actor.ID, org.ID, org.Name)
	httpjson.Write(w, http.StatusCreated, org)
}
