// internal/app/features/users/review.go
package users

import (
	"context"
	"net/http"
	"strings"

	"github.com/aggienexus/nexus/internal/app/policy/userpolicy"
	"github.com/aggienexus/nexus/internal/app/system/affiliation"
	"github.com/aggienexus/nexus/internal/app/system/apperr"
	"github.com/aggienexus/nexus/internal/app/system/gates"
	"github.com/aggienexus/nexus/internal/app/system/httpjson"
	"github.com/aggienexus/nexus/internal/app/system/inputval"
	"github.com/aggienexus/nexus/internal/app/system/normalize"
	"github.com/aggienexus/nexus/internal/app/system/timeouts"
	"github.com/aggienexus/nexus/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

type reviewInput struct {
	Decision string `json:"decision" validate:"required,claimdecision" label:"Decision"`
}

// HandleReviewClaim handles POST /api/users/{id}/claims/{organization}/review.
// Only a pending claim can be reviewed.
func (h *Handler) HandleReviewClaim(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.ObjectIDParam(r, "id")
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	org := strings.TrimSpace(chi.URLParam(r, "organization"))
	if org == "" {
		h.ErrLog.Write(w, r, apperr.Validation("organization is required"))
		return
	}

	var in reviewInput
	if err := httpjson.Decode(w, r, &in); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	in.Decision = normalize.Status(in.Decision)
	if res := inputval.Validate(in); res.HasErrors() {
		h.ErrLog.WriteValidation(w, res)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	actor := gates.Optional(r)
	target, err := userpolicy.CheckReviewClaim(ctx, h.Users, actor, id)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	claim := affiliation.FindClaim(*target, org)
	if claim == nil {
		h.ErrLog.Write(w, r, apperr.NotFound("claim not found"))
		return
	}
	if claim.Status != models.ClaimPending {
		h.ErrLog.Write(w, r, apperr.Validation("claim has already been reviewed"))
		return
	}

	found, err := h.Users.ReviewClaim(ctx, target.ID, org, in.Decision, actor.ID.Hex())
	if err != nil {
		h.ErrLog.Write(w, r, apperr.Dependency("unable to review claim", err))
		return
	}
	if !found {
		h.ErrLog.Write(w, r, apperr.Validation("claim has already been reviewed"))
		return
	}
	h.AuditLog.ClaimReviewed(ctx, r, actor.ID, target.ID, org, in.Decision)

	updated, err := h.Users.GetActive(ctx, target.ID)
	if err != nil {
		h.ErrLog.Write(w, r, apperr.Lookup(err, "user not found"))
		return
	}
	httpjson.Write(w, http.StatusOK, affiliation.FindClaim(*updated, org))
}
