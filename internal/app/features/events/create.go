// internal/app/features/events/create.go
package events

import (
	"context"
	"net/http"
	"time"

	"github.com/aggienexus/nexus/internal/app/policy/eventpolicy"
	"github.com/aggienexus/nexus/internal/app/system/apperr"
	"github.com/aggienexus/nexus/internal/app/system/gates"
	"github.com/aggienexus/nexus/internal/app/system/htmlsanitize"
	"github.com/aggienexus/nexus/internal/app/system/httpjson"
	"github.com/aggienexus/nexus/internal/app/system/inputval"
	"github.com/aggienexus/nexus/internal/app/system/timeouts"
	"github.com/aggienexus/nexus/internal/domain/models"
	"go.uber.org/zap"
)

type createInput struct {
	Title       string     `json:"title" validate:"required,max=200" label:"Title"`
	Description string     `json:"description" validate:"max=5000" label:"Description"`
	Location    string     `json:"location" validate:"max=200" label:"Location"`
	StartsAt    time.Time  `json:"starts_at" validate:"required" label:"Start time"`
	EndsAt      *time.Time `json:"ends_at" label:"End time"`
	// Status is accepted for compatibility and ignored; new events are
	// always pending.
	Status string `json:"status"`
}

// HandleCreate handles POST /api/events.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor := gates.Optional(r)
	if !eventpolicy.CanCreate(actor) {
		h.ErrLog.Write(w, r, apperr.Unauthenticated("sign in required"))
		return
	}

	var in createInput
	if err := httpjson.Decode(w, r, &in); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	in.Title = htmlsanitize.PlainText(in.Title)
	in.Location = htmlsanitize.PlainText(in.Location)
	in.Description = htmlsanitize.PlainText(in.Description)
	if res := inputval.Validate(in); res.HasErrors() {
		h.ErrLog.WriteValidation(w, res)
		return
	}
	if in.EndsAt != nil && !in.EndsAt.After(in.StartsAt) {
		h.ErrLog.Write(w, r, apperr.Validation("End time must be after Start time."))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ev, err := h.Events.Create(ctx, models.Event{
		Title:       in.Title,
		Description: in.Description,
		Location:    in.Location,
		StartsAt:    in.StartsAt.UTC(),
		EndsAt:      utcPtr(in.EndsAt),
		CreatedBy:   actor.ID,
	})
	if err != nil {
		h.ErrLog.Write(w, r, apperr.Dependency("unable to create event", err))
		return
	}
	h.Log.Info("event created", zap.String("event_id", ev.ID.Hex()), zap.String("created_by", actor.ID.Hex()))
	httpjson.Write(w, http.StatusCreated, ev)
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
