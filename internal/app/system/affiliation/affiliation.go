// Package affiliation decides organization claim verification status and
// which programs a project owner may claim.
//
// The rule data (Rules) is loaded from YAML and can be swapped without
// touching the logic below. Organization names are matched exactly; no
// normalization or fuzzy matching is applied.
package affiliation

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aggienexus/nexus/internal/domain/models"
)

// ValidationResult is the outcome of checking a project's claimed programs.
// Errors block the save; Warnings are advisory.
type ValidationResult struct {
	IsValid           bool     `json:"isValid"`
	Errors            []string `json:"errors"`
	Warnings          []string `json:"warnings"`
	AvailablePrograms []string `json:"availablePrograms"`
}

// CanAutoVerify reports whether email (case-insensitively) ends with one of
// the suffixes listed for organization.
func (r *Rules) CanAutoVerify(organization, email string) bool {
	suffixes, ok := r.AutoVerifyRules[organization]
	if !ok {
		return false
	}
	e := strings.ToLower(strings.TrimSpace(email))
	if e == "" {
		return false
	}
	for _, s := range suffixes {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" && strings.HasSuffix(e, s) {
			return true
		}
	}
	return false
}

// GetVerificationStatus returns the status of the user's claim for
// organization, or models.ClaimNotClaimed when there is none.
func GetVerificationStatus(u models.User, organization string) string {
	if c := FindClaim(u, organization); c != nil {
		return c.Status
	}
	return models.ClaimNotClaimed
}

// FindClaim returns the first claim for organization, or nil.
func FindClaim(u models.User, organization string) *models.OrganizationClaim {
	for i := range u.OrganizationClaims {
		if u.OrganizationClaims[i].Organization == organization {
			return &u.OrganizationClaims[i]
		}
	}
	return nil
}

// CreateClaim builds a new pending claim stamped with the current time.
// It never verifies the claim itself; see AutoVerify.
func CreateClaim(organization string, verificationMethod *string) models.OrganizationClaim {
	return createClaimAt(organization, verificationMethod, time.Now().UTC())
}

func createClaimAt(organization string, verificationMethod *string, now time.Time) models.OrganizationClaim {
	return models.OrganizationClaim{
		Organization:       organization,
		ClaimedAt:          now,
		VerificationMethod: verificationMethod,
		Status:             models.ClaimPending,
	}
}

// AutoVerify promotes claim to verified when the submitter's email matches
// the organization's auto-verify rule, recording who and how. The second
// return reports whether the claim was promoted.
func (r *Rules) AutoVerify(claim models.OrganizationClaim, email string) (models.OrganizationClaim, bool) {
	if claim.Status != models.ClaimPending || !r.CanAutoVerify(claim.Organization, email) {
		return claim, false
	}
	now := time.Now().UTC()
	method := models.VerificationEmailDomain
	claim.Status = models.ClaimVerified
	claim.VerifiedAt = &now
	claim.VerifiedBy = models.VerifiedBySystem
	claim.VerificationMethod = &method
	return claim, true
}

// VerifiedOrganizations returns the organizations a user's claims make them
// eligible under. Organizations that require review count only once
// verified; other organizations count unless the claim was rejected.
func (r *Rules) VerifiedOrganizations(u models.User) []string {
	out := []string{}
	seen := make(map[string]struct{}, len(u.OrganizationClaims))
	for _, c := range u.OrganizationClaims {
		if _, dup := seen[c.Organization]; dup {
			continue
		}
		ok := false
		switch c.Status {
		case models.ClaimVerified:
			ok = true
		case models.ClaimPending:
			ok = !r.RequiresVerification(c.Organization)
		}
		if ok {
			seen[c.Organization] = struct{}{}
			out = append(out, c.Organization)
		}
	}
	return out
}

// CanUserClaimProgram reports whether program is open (has no required
// organization) or its required organization is in userOrganizations.
func (r *Rules) CanUserClaimProgram(userOrganizations []string, program string) bool {
	required, ok := r.ProgramRequirements[program]
	if !ok {
		return true
	}
	for _, org := range userOrganizations {
		if org == required {
			return true
		}
	}
	return false
}

// AvailablePrograms returns every program the user could claim: programs
// whose required organization they hold, plus all open programs. Sorted.
func (r *Rules) AvailablePrograms(userOrganizations []string) []string {
	held := make(map[string]struct{}, len(userOrganizations))
	for _, org := range userOrganizations {
		held[org] = struct{}{}
	}
	set := make(map[string]struct{})
	for program, org := range r.ProgramRequirements {
		if _, ok := held[org]; ok {
			set[program] = struct{}{}
		}
	}
	for _, p := range r.OpenPrograms {
		set[p] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// ValidateProjectPrograms checks every claimed program against the user's
// organizations. It never touches storage.
func (r *Rules) ValidateProjectPrograms(userOrganizations, claimedPrograms []string) ValidationResult {
	res := ValidationResult{
		Errors:            []string{},
		Warnings:          []string{},
		AvailablePrograms: r.AvailablePrograms(userOrganizations),
	}
	for _, program := range claimedPrograms {
		if r.CanUserClaimProgram(userOrganizations, program) {
			continue
		}
		res.Errors = append(res.Errors, fmt.Sprintf(
			"%s requires affiliation with %s", program, r.ProgramRequirements[program]))
	}
	if len(claimedPrograms) == 0 && len(res.AvailablePrograms) > 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"You are eligible for programs you have not claimed: %s",
			strings.Join(res.AvailablePrograms, ", ")))
	}
	res.IsValid = len(res.Errors) == 0
	return res
}

// Package-level helpers over the process default rules.

// CanAutoVerify uses the default rules.
func CanAutoVerify(organization, email string) bool {
	return Default().CanAutoVerify(organization, email)
}

// CanUserClaimProgram uses the default rules.
func CanUserClaimProgram(userOrganizations []string, program string) bool {
	return Default().CanUserClaimProgram(userOrganizations, program)
}

// ValidateProjectPrograms uses the default rules.
func ValidateProjectPrograms(userOrganizations, claimedPrograms []string) ValidationResult {
	return Default().ValidateProjectPrograms(userOrganizations, claimedPrograms)
}
