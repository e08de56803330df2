// internal/app/features/projects/project.go
package projects

import (
	"context"
	"net/http"

	"github.com/aggienexus/nexus/internal/app/policy/projectpolicy"
	projectstore "github.com/aggienexus/nexus/internal/app/store/projects"
	"github.com/aggienexus/nexus/internal/app/system/apperr"
	"github.com/aggienexus/nexus/internal/app/system/gates"
	"github.com/aggienexus/nexus/internal/app/system/htmlsanitize"
	"github.com/aggienexus/nexus/internal/app/system/httpjson"
	"github.com/aggienexus/nexus/internal/app/system/inputval"
	"github.com/aggienexus/nexus/internal/app/system/limits"
	"github.com/aggienexus/nexus/internal/app/system/normalize"
	"github.com/aggienexus/nexus/internal/app/system/timeouts"
	"github.com/aggienexus/nexus/internal/domain/models"
	"go.uber.org/zap"
)

type projectInput struct {
	Title                string   `json:"title" validate:"required,max=200" label:"Title"`
	Description          string   `json:"description" validate:"max=20000" label:"Description"`
	IncubatorAccelerator []string `json:"incubator_accelerator" validate:"max=20,dive,max=200" label:"Programs"`
	Organizations        []string `json:"organizations" validate:"max=20,dive,max=200" label:"Organizations"`
}

type projectResponse struct {
	Project  models.Project `json:"project"`
	Warnings []string       `json:"warnings"`
}

func (h *Handler) decodeProject(w http.ResponseWriter, r *http.Request) (projectInput, bool) {
	var in projectInput
	if err := httpjson.DecodeLimit(w, r, &in, limits.MaxProfileBody); err != nil {
		h.ErrLog.Write(w, r, err)
		return in, false
	}
	in.Title = htmlsanitize.PlainText(in.Title)
	in.Description = htmlsanitize.Sanitize(in.Description)
	in.IncubatorAccelerator = normalize.List(in.IncubatorAccelerator)
	in.Organizations = normalize.List(htmlsanitize.PlainTextList(in.Organizations))
	if res := inputval.Validate(in); res.HasErrors() {
		h.ErrLog.WriteValidation(w, res)
		return in, false
	}
	return in, true
}

// HandleCreate handles POST /api/projects. Every claimed program must be
// backed by one of the caller's organizations; warnings are advisory.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := gates.RequireAuth(w, r, h.ErrLog)
	if !ok {
		return
	}
	in, ok := h.decodeProject(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	orgs, err := h.userOrganizations(ctx, actor.ID)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	check, err := h.validatePrograms(orgs, in.IncubatorAccelerator)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	p, err := h.Projects.Create(ctx, models.Project{
		OwnerID:              actor.ID,
		Title:                in.Title,
		Description:          in.Description,
		IncubatorAccelerator: in.IncubatorAccelerator,
		Organizations:        in.Organizations,
	})
	if err != nil {
		h.ErrLog.Write(w, r, apperr.Dependency("unable to create project", err))
		return
	}
	h.Log.Info("project created", zap.String("project_id", p.ID.Hex()), zap.String("owner_id", actor.ID.Hex()))
	httpjson.Write(w, http.StatusCreated, projectResponse{Project: p, Warnings: check.Warnings})
}

// ServeProject handles GET /api/projects/{id}.
func (h *Handler) ServeProject(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.ObjectIDParam(r, "id")
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Projects.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.Write(w, r, apperr.Lookup(err, "project not found"))
		return
	}
	httpjson.Write(w, http.StatusOK, p)
}

// HandleUpdate handles PUT /api/projects/{id}. Only the owner may edit, and
// the replacement program list is validated like a new project's.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.ObjectIDParam(r, "id")
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	in, ok := h.decodeProject(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	actor := gates.Optional(r)
	if _, err := projectpolicy.CheckUpdate(ctx, h.Projects, actor, id); err != nil {
		h.deny(ctx, r, actor, id, err, "update project")
		h.ErrLog.Write(w, r, err)
		return
	}

	orgs, err := h.userOrganizations(ctx, actor.ID)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	check, err := h.validatePrograms(orgs, in.IncubatorAccelerator)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	err = h.Projects.Update(ctx, id, projectstore.Update{
		Title:                &in.Title,
		Description:          &in.Description,
		IncubatorAccelerator: in.IncubatorAccelerator,
		Organizations:        in.Organizations,
	})
	if err != nil {
		h.ErrLog.Write(w, r, apperr.Lookup(err, "project not found"))
		return
	}

	p, err := h.Projects.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.Write(w, r, apperr.Lookup(err, "project not found"))
		return
	}
	httpjson.Write(w, http.StatusOK, projectResponse{Project: p, Warnings: check.Warnings})
}
