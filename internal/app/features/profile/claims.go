// internal/app/features/profile/claims.go
package profile

import (
	"context"
	"net/http"
	"strings"

	"github.com/aggienexus/nexus/internal/app/system/affiliation"
	"github.com/aggienexus/nexus/internal/app/system/apperr"
	"github.com/aggienexus/nexus/internal/app/system/gates"
	"github.com/aggienexus/nexus/internal/app/system/httpjson"
	"github.com/aggienexus/nexus/internal/app/system/timeouts"
	"github.com/aggienexus/nexus/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type claimResponse struct {
	Organization         string                    `json:"organization"`
	Status               string                    `json:"status"`
	RequiresVerification bool                      `json:"requires_verification"`
	Claim                *models.OrganizationClaim `json:"claim,omitempty"`
}

// ServeClaim handles GET /api/profile/claims/{organization}. An
// organization the user never claimed reports not_claimed.
func (h *Handler) ServeClaim(w http.ResponseWriter, r *http.Request) {
	actor, ok := gates.RequireAuth(w, r, h.ErrLog)
	if !ok {
		return
	}
	org := strings.TrimSpace(chi.URLParam(r, "organization"))
	if org == "" {
		h.ErrLog.Write(w, r, apperr.Validation("organization is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetActive(ctx, actor.ID)
	if err != nil {
		h.ErrLog.Write(w, r, apperr.Lookup(err, "profile not found"))
		return
	}

	httpjson.Write(w, http.StatusOK, claimResponse{
		Organization:         org,
		Status:               affiliation.GetVerificationStatus(*u, org),
		RequiresVerification: h.Rules.RequiresVerification(org),
		Claim:                affiliation.FindClaim(*u, org),
	})
}

// HandleWithdrawClaim handles DELETE /api/profile/claims/{organization}.
// Only pending claims can be withdrawn; a reviewed claim is part of the
// record.
func (h *Handler) HandleWithdrawClaim(w http.ResponseWriter, r *http.Request) {
	actor, ok := gates.RequireAuth(w, r, h.ErrLog)
	if !ok {
		return
	}
	org := strings.TrimSpace(chi.URLParam(r, "organization"))
	if org == "" {
		h.ErrLog.Write(w, r, apperr.Validation("organization is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetActive(ctx, actor.ID)
	if err != nil {
		h.ErrLog.Write(w, r, apperr.Lookup(err, "profile not found"))
		return
	}
	claim := affiliation.FindClaim(*u, org)
	if claim == nil {
		h.ErrLog.Write(w, r, apperr.NotFound("claim not found"))
		return
	}
	if claim.Status != models.ClaimPending {
		h.ErrLog.Write(w, r, apperr.Validation("only pending claims can be withdrawn"))
		return
	}

	removed, err := h.Users.RemovePendingClaim(ctx, u.ID, org)
	if err != nil {
		h.ErrLog.Write(w, r, apperr.Dependency("unable to withdraw claim", err))
		return
	}
	if !removed {
		// Reviewed between the read and the write.
		h.ErrLog.Write(w, r, apperr.Validation("only pending claims can be withdrawn"))
		return
	}
	h.Log.Info("claim withdrawn", zap.String("user_id", u.ID.Hex()), zap.String("organization", org))
	w.WriteHeader(http.StatusNoContent)
}
