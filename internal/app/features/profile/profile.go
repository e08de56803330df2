// internal/app/features/profile/profile.go
package profile

import (
	"context"
	"errors"
	"net/http"

	"github.com/aggienexus/nexus/internal/app/system/affiliation"
	"github.com/aggienexus/nexus/internal/app/system/apperr"
	"github.com/aggienexus/nexus/internal/app/system/gates"
	"github.com/aggienexus/nexus/internal/app/system/htmlsanitize"
	"github.com/aggienexus/nexus/internal/app/system/httpjson"
	"github.com/aggienexus/nexus/internal/app/system/inputval"
	"github.com/aggienexus/nexus/internal/app/system/limits"
	"github.com/aggienexus/nexus/internal/app/system/normalize"
	"github.com/aggienexus/nexus/internal/app/system/timeouts"
	"github.com/aggienexus/nexus/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// profileResponse is the view model for the profile endpoints.
type profileResponse struct {
	Profile               *models.User `json:"profile"`
	VerifiedOrganizations []string     `json:"verified_organizations"`
	AvailablePrograms     []string     `json:"available_programs"`
}

func (h *Handler) respond(w http.ResponseWriter, status int, u *models.User) {
	verified := h.Rules.VerifiedOrganizations(*u)
	httpjson.Write(w, status, profileResponse{
		Profile:               u,
		VerifiedOrganizations: verified,
		AvailablePrograms:     h.Rules.AvailablePrograms(verified),
	})
}

// ServeProfile handles GET /api/profile.
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := gates.RequireAuth(w, r, h.ErrLog)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetActive(ctx, actor.ID)
	if err != nil {
		h.ErrLog.Write(w, r, apperr.Lookup(err, "profile not found"))
		return
	}
	h.respond(w, http.StatusOK, u)
}

// setupInput is the onboarding form.
type setupInput struct {
	Bio           string   `json:"bio" validate:"max=4000" label:"Bio"`
	Skills        []string `json:"skills" validate:"max=30,dive,max=80" label:"Skills"`
	Organizations []string `json:"organizations" validate:"max=20,dive,max=200" label:"Organizations"`
}

// HandleSetup handles PUT /api/profile/setup.
//
// Each named organization the user has not claimed yet becomes a pending
// claim; claims whose email suffix matches an auto-verify rule are verified
// immediately and audited. Existing claims are left as they are, whatever
// their status. The profile is marked completed.
func (h *Handler) HandleSetup(w http.ResponseWriter, r *http.Request) {
	actor, ok := gates.RequireAuth(w, r, h.ErrLog)
	if !ok {
		return
	}

	var in setupInput
	if err := httpjson.DecodeLimit(w, r, &in, limits.MaxProfileBody); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	if res := inputval.Validate(in); res.HasErrors() {
		h.ErrLog.WriteValidation(w, res)
		return
	}

	bio := htmlsanitize.PlainText(in.Bio)
	skills := normalize.List(htmlsanitize.PlainTextList(in.Skills))
	orgNames := normalize.List(in.Organizations)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.GetActive(ctx, actor.ID)
	if err != nil {
		h.ErrLog.Write(w, r, apperr.Lookup(err, "profile not found"))
		return
	}

	var (
		newClaims    []models.OrganizationClaim
		autoVerified []models.OrganizationClaim
	)
	for _, name := range orgNames {
		if affiliation.FindClaim(*u, name) != nil {
			continue
		}
		claim := affiliation.CreateClaim(name, nil)
		if claim.OrganizationID, err = h.resolveOrganization(ctx, name); err != nil {
			h.ErrLog.Write(w, r, apperr.Dependency("unable to resolve organization", err))
			return
		}
		claim, verified := h.Rules.AutoVerify(claim, u.Email)
		if verified {
			autoVerified = append(autoVerified, claim)
		}
		newClaims = append(newClaims, claim)
	}

	if err := h.Users.CompleteProfileSetup(ctx, u.ID, bio, skills, newClaims); err != nil {
		h.ErrLog.Write(w, r, apperr.Lookup(err, "profile not found"))
		return
	}
	for _, c := range autoVerified {
		h.AuditLog.ClaimAutoVerified(ctx, r, u.ID, c.OrganizationID, c.Organization)
	}
	h.Log.Info("profile setup completed",
		zap.String("user_id", u.ID.Hex()),
		zap.Int("new_claims", len(newClaims)),
		zap.Int("auto_verified", len(autoVerified)))

	updated, err := h.Users.GetActive(ctx, u.ID)
	if err != nil {
		h.ErrLog.Write(w, r, apperr.Lookup(err, "profile not found"))
		return
	}
	h.respond(w, http.StatusOK, updated)
}

// resolveOrganization maps a claimed name to a known organization's id.
// Unknown names stay name-only claims.
func (h *Handler) resolveOrganization(ctx context.Context, name string) (*primitive.ObjectID, error) {
	org, err := h.Orgs.GetByName(ctx, name)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &org.ID, nil
}

// HandleSkip handles POST /api/profile/setup/skip.
func (h *Handler) HandleSkip(w http.ResponseWriter, r *http.Request) {
	actor, ok := gates.RequireAuth(w, r, h.ErrLog)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Users.SkipProfileSetup(ctx, actor.ID); err != nil {
		h.ErrLog.Write(w, r, apperr.Lookup(err, "profile not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
