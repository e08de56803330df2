// internal/app/features/events/list.go
package events

import (
	"context"
	"net/http"

	"github.com/aggienexus/nexus/internal/app/policy/eventpolicy"
	"github.com/aggienexus/nexus/internal/app/system/apperr"
	"github.com/aggienexus/nexus/internal/app/system/gates"
	"github.com/aggienexus/nexus/internal/app/system/httpjson"
	"github.com/aggienexus/nexus/internal/app/system/inputval"
	"github.com/aggienexus/nexus/internal/app/system/normalize"
	"github.com/aggienexus/nexus/internal/app/system/paging"
	"github.com/aggienexus/nexus/internal/app/system/timeouts"
	"github.com/aggienexus/nexus/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
)

type listResponse struct {
	Events []models.Event `json:"events"`
}

// ServeList handles GET /api/events.
//
// Everyone sees approved events. Managers and admins may pass
// ?status=pending|rejected|all to see the moderation queue.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	status := normalize.Status(query.Get(r, "status"))
	switch status {
	case "":
		status = models.EventApproved
	case "all":
		status = ""
	default:
		if !inputval.IsValidEventStatus(status) {
			h.ErrLog.Write(w, r, apperr.Validation("status must be pending, approved, rejected, or all"))
			return
		}
	}

	if status != models.EventApproved {
		actor := gates.Optional(r)
		if actor == nil {
			h.ErrLog.Write(w, r, apperr.Unauthenticated("sign in required"))
			return
		}
		if !eventpolicy.CanSeeUnapproved(actor) {
			h.ErrLog.Write(w, r, apperr.Forbidden("only managers and admins can list unapproved events"))
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	evs, err := h.Events.List(ctx, status, paging.ParseLimit(r))
	if err != nil {
		h.ErrLog.Write(w, r, apperr.Dependency("unable to list events", err))
		return
	}
	httpjson.Write(w, http.StatusOK, listResponse{Events: evs})
}

// ServeEvent handles GET /api/events/{id}. An unapproved event is visible
// to its creator and to managers and admins; everyone else gets 404.
func (h *Handler) ServeEvent(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.ObjectIDParam(r, "id")
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ev, err := h.Events.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.Write(w, r, apperr.Lookup(err, "event not found"))
		return
	}
	if ev.Status != models.EventApproved {
		actor := gates.Optional(r)
		if !eventpolicy.CanSeeUnapproved(actor) && (actor == nil || actor.ID != ev.CreatedBy) {
			h.ErrLog.Write(w, r, apperr.NotFound("event not found"))
			return
		}
	}
	httpjson.Write(w, http.StatusOK, ev)
}
