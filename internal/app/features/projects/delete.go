// internal/app/features/projects/delete.go
package projects

import (
	"context"
	"net/http"

	"github.com/aggienexus/nexus/internal/app/policy/projectpolicy"
	"github.com/aggienexus/nexus/internal/app/system/apperr"
	"github.com/aggienexus/nexus/internal/app/system/authz"
	"github.com/aggienexus/nexus/internal/app/system/gates"
	"github.com/aggienexus/nexus/internal/app/system/inputval"
	"github.com/aggienexus/nexus/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// HandleDelete handles DELETE /api/projects/{id}: the owner hides the
// project. The document stays until an admin removes it.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.ObjectIDParam(r, "id")
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	actor := gates.Optional(r)
	if _, err := projectpolicy.CheckSoftDelete(ctx, h.Projects, actor, id); err != nil {
		h.deny(ctx, r, actor, id, err, "delete project")
		h.ErrLog.Write(w, r, err)
		return
	}

	deleted, err := h.Projects.SoftDelete(ctx, id)
	if err != nil {
		h.ErrLog.Write(w, r, apperr.Dependency("unable to delete project", err))
		return
	}
	if !deleted {
		h.ErrLog.Write(w, r, apperr.Lookup(mongo.ErrNoDocuments, "project not found"))
		return
	}
	h.AuditLog.ProjectDeleted(ctx, r, actor.ID, id, false)
	w.WriteHeader(http.StatusNoContent)
}

// HandleHardDelete handles DELETE /api/admin/projects/{id}: permanent
// removal of a live or soft-deleted project.
func (h *Handler) HandleHardDelete(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.ObjectIDParam(r, "id")
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	actor := gates.Optional(r)
	if _, err := projectpolicy.CheckHardDelete(ctx, h.Projects, actor, id); err != nil {
		h.deny(ctx, r, actor, id, err, "hard delete project")
		h.ErrLog.Write(w, r, err)
		return
	}

	n, err := h.Projects.HardDelete(ctx, id)
	if err != nil {
		h.ErrLog.Write(w, r, apperr.Dependency("unable to delete project", err))
		return
	}
	if n == 0 {
		h.ErrLog.Write(w, r, apperr.NotFound("project not found"))
		return
	}
	h.AuditLog.ProjectDeleted(ctx, r, actor.ID, id, true)
	w.WriteHeader(http.StatusNoContent)
}

// deny audits policy refusals. Not-found and unauthenticated outcomes are
// not audited.
func (h *Handler) deny(ctx context.Context, r *http.Request, actor *authz.Actor, id primitive.ObjectID, err error, action string) {
	if actor == nil || apperr.KindOf(err) != apperr.KindForbidden {
		return
	}
	h.AuditLog.AuthorizationDenied(ctx, r, actor.ID, "project:"+id.Hex(), action)
}
