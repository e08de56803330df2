package affiliation

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aggienexus/nexus/internal/domain/models"
)

func TestCanUserClaimProgram(t *testing.T) {
	r := Builtin()
	tests := []struct {
		name    string
		orgs    []string
		program string
		want    bool
	}{
		{"affiliated", []string{"AggieX"}, "AggieX Accelerator", true},
		{"no affiliation", nil, "AggieX Accelerator", false},
		{"wrong affiliation", []string{"Startup Aggieland"}, "AggieX Accelerator", false},
		{"open program", nil, "Independent", true},
		{"unknown program is open", nil, "Some Club", true},
		{"case sensitive org", []string{"aggiex"}, "AggieX Accelerator", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.CanUserClaimProgram(tt.orgs, tt.program); got != tt.want {
				t.Errorf("CanUserClaimProgram(%v, %q) = %v, want %v", tt.orgs, tt.program, got, tt.want)
			}
		})
	}
}

func TestValidateProjectPrograms_MissingAffiliation(t *testing.T) {
	res := Builtin().ValidateProjectPrograms(nil, []string{"AggieX Accelerator"})
	if res.IsValid {
		t.Fatal("expected invalid result")
	}
	if len(res.Errors) != 1 {
		t.Fatalf("expected 1 error, got %v", res.Errors)
	}
	if !strings.Contains(res.Errors[0], "AggieX Accelerator") || !strings.Contains(res.Errors[0], "AggieX") {
		t.Errorf("error should name program and organization, got %q", res.Errors[0])
	}
}

func TestValidateProjectPrograms_Valid(t *testing.T) {
	res := Builtin().ValidateProjectPrograms([]string{"AggieX"}, []string{"AggieX Accelerator", "Independent"})
	if !res.IsValid {
		t.Fatalf("expected valid, errors: %v", res.Errors)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("expected no warnings when programs are claimed, got %v", res.Warnings)
	}
}

func TestValidateProjectPrograms_WarnsOnUnusedPrograms(t *testing.T) {
	res := Builtin().ValidateProjectPrograms([]string{"AggieX"}, nil)
	if !res.IsValid {
		t.Fatalf("zero programs must be valid, errors: %v", res.Errors)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", res.Warnings)
	}
	if !strings.Contains(res.Warnings[0], "AggieX Accelerator") {
		t.Errorf("warning should suggest AggieX Accelerator, got %q", res.Warnings[0])
	}
}

func TestValidateProjectPrograms_MultipleErrors(t *testing.T) {
	res := Builtin().ValidateProjectPrograms(nil, []string{"AggieX Accelerator", "Aggies Invent", "Independent"})
	if len(res.Errors) != 2 {
		t.Errorf("expected 2 errors, got %v", res.Errors)
	}
}

func TestAvailablePrograms(t *testing.T) {
	r := Builtin()
	got := r.AvailablePrograms([]string{"McFerrin Center for Entrepreneurship"})
	want := []string{"Aggie Entrepreneurs", "Aggies Invent", "Independent", "Raymond Ideas Challenge"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("AvailablePrograms() = %v, want %v", got, want)
	}
}

func TestCanAutoVerify(t *testing.T) {
	r := Builtin()
	tests := []struct {
		org   string
		email string
		want  bool
	}{
		{"Texas A&M University", "student@tamu.edu", true},
		{"Texas A&M University", "Student@TAMU.EDU", true},
		{"Texas A&M University", "student@email.tamu.edu", true},
		{"Texas A&M University", "student@gmail.com", false},
		{"AggieX", "founder@aggiex.org", true},
		{"AggieX", "founder@tamu.edu", false},
		{"Unknown Org", "someone@tamu.edu", false},
		{"AggieX", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.org+"/"+tt.email, func(t *testing.T) {
			if got := r.CanAutoVerify(tt.org, tt.email); got != tt.want {
				t.Errorf("CanAutoVerify(%q, %q) = %v, want %v", tt.org, tt.email, got, tt.want)
			}
		})
	}
}

func TestGetVerificationStatus(t *testing.T) {
	u := models.User{OrganizationClaims: []models.OrganizationClaim{
		{Organization: "AggieX", Status: models.ClaimVerified},
		{Organization: "Startup Aggieland", Status: models.ClaimPending},
	}}
	if got := GetVerificationStatus(u, "AggieX"); got != models.ClaimVerified {
		t.Errorf("got %q, want verified", got)
	}
	if got := GetVerificationStatus(u, "Startup Aggieland"); got != models.ClaimPending {
		t.Errorf("got %q, want pending", got)
	}
	if got := GetVerificationStatus(u, "aggiex"); got != models.ClaimNotClaimed {
		t.Errorf("name match must be exact, got %q", got)
	}
}

func TestCreateClaim(t *testing.T) {
	method := "manual"
	before := time.Now().UTC()
	c := CreateClaim("AggieX", &method)
	if c.Status != models.ClaimPending {
		t.Errorf("status = %q, want pending", c.Status)
	}
	if c.ClaimedAt.Before(before) {
		t.Error("claimed_at should be stamped with the current time")
	}
	if c.VerificationMethod == nil || *c.VerificationMethod != "manual" {
		t.Error("verification method not kept")
	}
	if c.VerifiedAt != nil || c.VerifiedBy != "" {
		t.Error("a new claim must not carry verification audit fields")
	}
}

func TestAutoVerify(t *testing.T) {
	r := Builtin()

	c, ok := r.AutoVerify(CreateClaim("AggieX", nil), "me@aggiex.org")
	if !ok {
		t.Fatal("expected claim to be auto-verified")
	}
	if c.Status != models.ClaimVerified || c.VerifiedBy != models.VerifiedBySystem || c.VerifiedAt == nil {
		t.Errorf("unexpected verified claim: %+v", c)
	}
	if c.VerificationMethod == nil || *c.VerificationMethod != models.VerificationEmailDomain {
		t.Errorf("verification method = %v, want email_domain", c.VerificationMethod)
	}

	c, ok = r.AutoVerify(CreateClaim("AggieX", nil), "me@gmail.com")
	if ok || c.Status != models.ClaimPending {
		t.Errorf("non-matching email must stay pending, got %+v", c)
	}

	rejected := models.OrganizationClaim{Organization: "AggieX", Status: models.ClaimRejected}
	if _, ok := r.AutoVerify(rejected, "me@aggiex.org"); ok {
		t.Error("only pending claims can be auto-verified")
	}
}

func TestVerifiedOrganizations(t *testing.T) {
	u := models.User{OrganizationClaims: []models.OrganizationClaim{
		{Organization: "AggieX", Status: models.ClaimPending},          // needs review
		{Organization: "Startup Aggieland", Status: models.ClaimVerified},
		{Organization: "Texas A&M University", Status: models.ClaimPending}, // no review needed
		{Organization: "Chess Club", Status: models.ClaimRejected},
	}}
	got := Builtin().VerifiedOrganizations(u)
	want := "Startup Aggieland|Texas A&M University"
	if strings.Join(got, "|") != want {
		t.Errorf("VerifiedOrganizations() = %v, want %s", got, want)
	}
}

func TestParse_RejectsOpenProgramWithRequirement(t *testing.T) {
	doc := []byte(`
program_requirements:
  X Accelerator: X
open_programs:
  - X Accelerator
`)
	if _, err := Parse(doc); err == nil {
		t.Fatal("expected error for program listed as both open and gated")
	}
}

func TestParse_Custom(t *testing.T) {
	doc := []byte(`
verification_required_organizations: [X]
auto_verify_rules:
  X: ["@x.edu"]
program_requirements:
  X Accelerator: X
`)
	r, err := Parse(doc)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !r.RequiresVerification("X") || r.RequiresVerification("Y") {
		t.Error("RequiresVerification mismatch")
	}
	if !r.CanUserClaimProgram([]string{"X"}, "X Accelerator") {
		t.Error("expected X members to claim X Accelerator")
	}
	if got := r.AutoVerifyRules["X"]; len(got) != 1 || got[0] != "@x.edu" {
		t.Errorf("AutoVerifyRules[X] = %v, want [@x.edu]", got)
	}
	c, ok := r.AutoVerify(CreateClaim("X", nil), "me@x.edu")
	if !ok || c.Status != models.ClaimVerified {
		t.Errorf("expected auto-verified claim from parsed rules, got %+v", c)
	}
}

func TestRules_Literal(t *testing.T) {
	r := &Rules{
		VerificationRequired: []string{"AggieX"},
		AutoVerifyRules:      map[string][]string{"AggieX": {"@aggiex.org"}},
		ProgramRequirements:  map[string]string{"AggieX Accelerator": "AggieX"},
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !r.RequiresVerification("AggieX") || r.RequiresVerification("Independent") {
				t.Error("RequiresVerification mismatch")
			}
		}()
	}
	wg.Wait()
	if r.required != nil {
		t.Error("RequiresVerification must not build the index lazily")
	}

	if !r.CanAutoVerify("AggieX", "founder@aggiex.org") {
		t.Error("expected auto-verify from literal rules")
	}
	if !r.CanUserClaimProgram([]string{"AggieX"}, "AggieX Accelerator") {
		t.Error("AggieX members can claim AggieX Accelerator")
	}
	if r.CanUserClaimProgram(nil, "AggieX Accelerator") {
		t.Error("unaffiliated users cannot claim AggieX Accelerator")
	}
	res := r.ValidateProjectPrograms(nil, []string{"AggieX Accelerator"})
	if res.IsValid || len(res.Errors) != 1 {
		t.Errorf("ValidateProjectPrograms = %+v, want one error", res)
	}
}

func TestSetDefault(t *testing.T) {
	orig := Default()
	t.Cleanup(func() { SetDefault(orig) })

	r, err := Parse([]byte(`program_requirements: {"Y Accelerator": "Y"}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	SetDefault(r)
	if CanUserClaimProgram(nil, "Y Accelerator") {
		t.Error("package helper should use replaced default rules")
	}
	if !CanUserClaimProgram(nil, "AggieX Accelerator") {
		t.Error("programs missing from replaced rules are open")
	}
}
