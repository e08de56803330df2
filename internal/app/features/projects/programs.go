// internal/app/features/projects/programs.go
package projects

import (
	"context"
	"net/http"

	"github.com/aggienexus/nexus/internal/app/system/affiliation"
	"github.com/aggienexus/nexus/internal/app/system/apperr"
	"github.com/aggienexus/nexus/internal/app/system/gates"
	"github.com/aggienexus/nexus/internal/app/system/httpjson"
	"github.com/aggienexus/nexus/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type programsResponse struct {
	VerifiedOrganizations []string `json:"verified_organizations"`
	AvailablePrograms     []string `json:"available_programs"`
	AllPrograms           []string `json:"all_programs"`
}

// ServePrograms handles GET /api/projects/programs: the programs the caller
// may claim on a project.
func (h *Handler) ServePrograms(w http.ResponseWriter, r *http.Request) {
	actor, ok := gates.RequireAuth(w, r, h.ErrLog)
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
	httpjson.Write(w, http.StatusOK, programsResponse{
		VerifiedOrganizations: orgs,
		AvailablePrograms:     h.Rules.AvailablePrograms(orgs),
		AllPrograms:           h.Rules.AllPrograms(),
	})
}

// userOrganizations returns the organizations that count toward program
// eligibility for userID.
func (h *Handler) userOrganizations(ctx context.Context, userID primitive.ObjectID) ([]string, error) {
	u, err := h.Users.GetActive(ctx, userID)
	if err != nil {
		return nil, apperr.Lookup(err, "profile not found")
	}
	return h.Rules.VerifiedOrganizations(*u), nil
}

// validatePrograms fails closed: any error entry rejects the save.
func (h *Handler) validatePrograms(userOrgs, programs []string) (affiliation.ValidationResult, error) {
	res := h.Rules.ValidateProjectPrograms(userOrgs, programs)
	if !res.IsValid {
		return res, apperr.Validation("program affiliation required", res.Errors...)
	}
	return res, nil
}
