// internal/app/features/events/status.go
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
	"github.com/aggienexus/nexus/internal/app/system/timeouts"
)

type statusInput struct {
	Status string `json:"status" validate:"required,eventstatus" label:"Status"`
}

// HandleChangeStatus handles PATCH /api/events/{id}/status. Managers and
// admins move events between pending, approved and rejected; there is no
// version check, so the last writer wins. The caller is authorized before
// the body is read, so other users get 403 whatever they send.
func (h *Handler) HandleChangeStatus(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.ObjectIDParam(r, "id")
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	actor := gates.Optional(r)
	if _, err := eventpolicy.CheckStatusChange(ctx, h.Events, actor, id); err != nil {
		if apperr.KindOf(err) == apperr.KindForbidden {
			h.AuditLog.AuthorizationDenied(ctx, r, actor.ID, "event:"+id.Hex(), "change status")
		}
		h.ErrLog.Write(w, r, err)
		return
	}

	var in statusInput
	if err := httpjson.Decode(w, r, &in); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	in.Status = normalize.Status(in.Status)
	if res := inputval.Validate(in); res.HasErrors() {
		h.ErrLog.WriteValidation(w, res)
		return
	}

	from, err := h.Events.UpdateStatus(ctx, id, in.Status, actor.ID)
	if err != nil {
		h.ErrLog.Write(w, r, apperr.Lookup(err, "event not found"))
		return
	}
	h.AuditLog.EventStatusChanged(ctx, r, actor.ID, id, from, in.Status)

	ev, err := h.Events.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.Write(w, r, apperr.Lookup(err, "event not found"))
		return
	}
	httpjson.Write(w, http.StatusOK, ev)
}
