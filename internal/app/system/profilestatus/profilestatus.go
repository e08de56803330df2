// Package profilestatus decides whether the onboarding flow must be shown.
//
// Everything here is a pure function of its inputs so the same answer comes
// back whether it is computed while serving a page or while answering the
// profile-status API.
package profilestatus

import (
	"strings"
	"time"

	"github.com/aggienexus/nexus/internal/domain/models"
)

// DefaultLoginWindow is how long after a login the user still counts as
// "just logged in".
const DefaultLoginWindow = 60 * time.Second

// Result is the onboarding decision for one profile.
type Result struct {
	ShouldSetupProfile bool `json:"shouldSetupProfile"`
	HasSkippedSetup    bool `json:"hasSkippedSetup"`
	HasCompletedSetup  bool `json:"hasCompletedSetup"`
}

// Evaluate decides whether onboarding should be presented.
//
// Completion dominates everything. A skipped setup is re-surfaced only on a
// fresh login. An untouched profile always needs setup.
func Evaluate(u models.User, justLoggedIn bool) Result {
	res := Result{
		HasCompletedSetup: u.ProfileSetupCompleted,
		HasSkippedSetup:   u.ProfileSetupSkipped,
	}
	switch {
	case res.HasCompletedSetup:
		res.ShouldSetupProfile = false
	case res.HasSkippedSetup:
		res.ShouldSetupProfile = justLoggedIn
	default:
		res.ShouldSetupProfile = true
	}
	return res
}

// HasJustLoggedIn reports whether the last login happened within window of
// the current wall-clock time.
func HasJustLoggedIn(u models.User, window time.Duration) bool {
	return HasJustLoggedInAt(u, window, time.Now())
}

// HasJustLoggedInDefault is HasJustLoggedIn with DefaultLoginWindow.
func HasJustLoggedInDefault(u models.User) bool {
	return HasJustLoggedIn(u, DefaultLoginWindow)
}

// HasJustLoggedInAt is HasJustLoggedIn evaluated at now.
// The boundary is inclusive, and a login timestamp in the future (clock
// skew) counts as just logged in.
func HasJustLoggedInAt(u models.User, window time.Duration, now time.Time) bool {
	if u.LastLoginAt == nil {
		return false
	}
	elapsed := now.Sub(*u.LastLoginAt)
	if elapsed < 0 {
		return true
	}
	return elapsed <= window
}

// IsLegacyComplete reports whether a profile was filled in before the setup
// flags existed: neither flag set, but a bio and at least one skill present.
func IsLegacyComplete(u models.User) bool {
	if u.ProfileSetupCompleted || u.ProfileSetupSkipped {
		return false
	}
	if strings.TrimSpace(u.Bio) == "" {
		return false
	}
	for _, s := range u.Skills {
		if strings.TrimSpace(s) != "" {
			return true
		}
	}
	return false
}
