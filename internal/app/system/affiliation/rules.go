// internal/app/system/affiliation/rules.go
package affiliation

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync/atomic"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// Rules is the replaceable rule data the verifier runs on.
type Rules struct {
	// VerificationRequired lists organizations whose claims go through review.
	VerificationRequired []string `yaml:"verification_required_organizations"`
	// AutoVerifyRules maps an organization to the email suffixes that verify
	// a claim immediately.
	AutoVerifyRules map[string][]string `yaml:"auto_verify_rules"`
	// ProgramRequirements maps a program to the organization a project owner
	// must be affiliated with to claim it.
	ProgramRequirements map[string]string `yaml:"program_requirements"`
	// OpenPrograms need no affiliation.
	OpenPrograms []string `yaml:"open_programs"`

	required map[string]struct{}
}

// Parse decodes and checks a YAML rule document.
func Parse(data []byte) (*Rules, error) {
	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse affiliation rules: %w", err)
	}
	if err := r.check(); err != nil {
		return nil, err
	}
	r.index()
	return &r, nil
}

// Load reads a rule document from path.
func Load(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read affiliation rules: %w", err)
	}
	return Parse(data)
}

// Builtin returns the rules embedded in the binary.
func Builtin() *Rules {
	r, err := Parse(defaultRulesYAML)
	if err != nil {
		panic(err) // embedded document is part of the build
	}
	return r
}

func (r *Rules) check() error {
	for _, p := range r.OpenPrograms {
		if org, ok := r.ProgramRequirements[p]; ok {
			return fmt.Errorf("program %q is listed as open but requires %q", p, org)
		}
	}
	for p, org := range r.ProgramRequirements {
		if strings.TrimSpace(org) == "" {
			return fmt.Errorf("program %q has an empty required organization", p)
		}
	}
	return nil
}

func (r *Rules) index() {
	r.required = make(map[string]struct{}, len(r.VerificationRequired))
	for _, org := range r.VerificationRequired {
		r.required[org] = struct{}{}
	}
}

// RequiresVerification reports whether claims for organization need review.
// Rules built without Parse fall back to a scan; r is never mutated here.
func (r *Rules) RequiresVerification(organization string) bool {
	if r.required == nil {
		for _, org := range r.VerificationRequired {
			if org == organization {
				return true
			}
		}
		return false
	}
	_, ok := r.required[organization]
	return ok
}

// AllPrograms returns every known program name, sorted.
func (r *Rules) AllPrograms() []string {
	seen := make(map[string]struct{}, len(r.ProgramRequirements)+len(r.OpenPrograms))
	for p := range r.ProgramRequirements {
		seen[p] = struct{}{}
	}
	for _, p := range r.OpenPrograms {
		seen[p] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

var current atomic.Pointer[Rules]

func init() {
	current.Store(Builtin())
}

// Default returns the process-wide rules.
func Default() *Rules {
	return current.Load()
}

// SetDefault replaces the process-wide rules. Call it once at startup.
func SetDefault(r *Rules) {
	if r != nil {
		current.Store(r)
	}
}
