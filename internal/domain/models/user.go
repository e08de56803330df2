// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles. Manager is scoped globally for event approval and per organization
// (via organization_managers) for organization editing.
const (
	RoleUser    = "user"
	RoleManager = "manager"
	RoleAdmin   = "admin"
)

// User statuses. Users are never hard-deleted.
const (
	UserStatusActive  = "active"
	UserStatusDeleted = "deleted"
)

// User is the onboarding-relevant view of an account plus its legacy
// organization claims.
//
// NOTE:
//   - organization_claims is keyed by organization name (legacy path).
//     Per-organization management rights live in organization_managers
//     and are keyed by organization id. Both are kept as-is.
type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName string             `bson:"full_name" json:"full_name"`
	Email    string             `bson:"email" json:"email"`
	Role     string             `bson:"role" json:"role"` // user | manager | admin
	Status   string             `bson:"status,omitempty" json:"status,omitempty"`

	Bio    string   `bson:"bio" json:"bio"`
	Skills []string `bson:"skills" json:"skills"`

	ProfileSetupSkipped   bool       `bson:"profile_setup_skipped" json:"profile_setup_skipped"`
	ProfileSetupCompleted bool       `bson:"profile_setup_completed" json:"profile_setup_completed"`
	LastLoginAt           *time.Time `bson:"last_login_at,omitempty" json:"last_login_at,omitempty"`

	OrganizationClaims []OrganizationClaim `bson:"organization_claims" json:"organization_claims"`

	DeletedAt *time.Time `bson:"deleted_at,omitempty" json:"deleted_at,omitempty"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
}

// IsValidRole reports whether role is one of the known roles.
func IsValidRole(role string) bool {
	switch role {
	case RoleUser, RoleManager, RoleAdmin:
		return true
	}
	return false
}
