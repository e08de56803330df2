// internal/app/features/organizations/list.go
package organizations

import (
	"context"
	"net/http"

	"github.com/aggienexus/nexus/internal/app/system/apperr"
	"github.com/aggienexus/nexus/internal/app/system/authz"
	"github.com/aggienexus/nexus/internal/app/system/httpjson"
	"github.com/aggienexus/nexus/internal/app/system/inputval"
	"github.com/aggienexus/nexus/internal/app/system/normalize"
	"github.com/aggienexus/nexus/internal/app/system/paging"
	"github.com/aggienexus/nexus/internal/app/system/timeouts"
	"github.com/aggienexus/nexus/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
)

type listResponse struct {
	Organizations []models.Organization `json:"organizations"`
}

// ServeList handles GET /api/organizations. Active organizations are
// public; admins may pass ?status=inactive|all.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	status := normalize.Status(query.Get(r, "status"))
	switch status {
	case "", statusActive:
		status = statusActive
	case statusInactive, "all":
		if !authz.IsAdmin(r) {
			h.ErrLog.Write(w, r, apperr.Forbidden("only admins can list inactive organizations"))
			return
		}
		if status == "all" {
			status = ""
		}
	default:
		h.ErrLog.Write(w, r, apperr.Validation("status must be active, inactive, or all"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	orgs, err := h.Orgs.List(ctx, status, paging.ParseLimit(r))
	if err != nil {
		h.ErrLog.Write(w, r, apperr.Dependency("unable to list organizations", err))
		return
	}
	httpjson.Write(w, http.StatusOK, listResponse{Organizations: orgs})
}

type organizationResponse struct {
	models.Organization
	ManagerCount int `json:"manager_count"`
}

// ServeOrganization handles GET /api/organizations/{id}.
func (h *Handler) ServeOrganization(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.ObjectIDParam(r, "id")
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	org, err := h.Orgs.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.Write(w, r, apperr.Lookup(err, "organization not found"))
		return
	}
	managers, err := h.Managers.ListByOrg(ctx, id)
	if err != nil {
		h.ErrLog.Write(w, r, apperr.Dependency("unable to load organization managers", err))
		return
	}
	httpjson.Write(w, http.StatusOK, organizationResponse{Organization: org, ManagerCount: len(managers)})
}
