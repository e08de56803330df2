// internal/app/policy/userpolicy/userpolicy.go
package userpolicy

import (
	"context"

	"github.com/aggienexus/nexus/internal/app/system/apperr"
	"github.com/aggienexus/nexus/internal/app/system/authz"
	"github.com/aggienexus/nexus/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserReader loads a live (not deleted) user.
type UserReader interface {
	GetActive(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// CanView reports whether the actor may read the target's full record.
func CanView(a authz.Actor, target primitive.ObjectID) bool {
	return a.ID == target || a.IsAdmin()
}

// CanDelete reports whether the actor may delete the target user.
func CanDelete(a authz.Actor, target primitive.ObjectID) bool {
	return a.ID == target || a.IsAdmin()
}

// CanChangeRole reports whether the actor may change another user's role.
func CanChangeRole(a authz.Actor) bool {
	return a.IsAdmin()
}

// CanReviewClaims reports whether the actor may verify or reject
// organization claims.
func CanReviewClaims(a authz.Actor) bool {
	return a.IsAdmin()
}

// User records are not publicly readable, so every check below decides
// permission before looking the target up.

// CheckView authorizes reading the target and loads it.
func CheckView(ctx context.Context, users UserReader, actor *authz.Actor, target primitive.ObjectID) (*models.User, error) {
	return check(ctx, users, actor, target, CanView(derefActor(actor), target), "cannot view this user")
}

// CheckDelete authorizes deleting the target and loads it.
func CheckDelete(ctx context.Context, users UserReader, actor *authz.Actor, target primitive.ObjectID) (*models.User, error) {
	return check(ctx, users, actor, target, CanDelete(derefActor(actor), target), "cannot delete this user")
}

// CheckChangeRole authorizes a role change and loads the target.
func CheckChangeRole(ctx context.Context, users UserReader, actor *authz.Actor, target primitive.ObjectID) (*models.User, error) {
	return check(ctx, users, actor, target, CanChangeRole(derefActor(actor)), "only admins can change roles")
}

// CheckReviewClaim authorizes a claim review and loads the claimant.
func CheckReviewClaim(ctx context.Context, users UserReader, actor *authz.Actor, target primitive.ObjectID) (*models.User, error) {
	return check(ctx, users, actor, target, CanReviewClaims(derefActor(actor)), "only admins can review claims")
}

func check(ctx context.Context, users UserReader, actor *authz.Actor, target primitive.ObjectID, allowed bool, denied string) (*models.User, error) {
	if actor == nil {
		return nil, apperr.Unauthenticated("sign in required")
	}
	if !allowed {
		return nil, apperr.Forbidden(denied)
	}
	u, err := users.GetActive(ctx, target)
	if err != nil {
		return nil, apperr.Lookup(err, "user not found")
	}
	return u, nil
}

func derefActor(a *authz.Actor) authz.Actor {
	if a == nil {
		return authz.Actor{}
	}
	return *a
}

// RoleCascade lists the organization-manager membership changes that must
// accompany a role change.
type RoleCascade struct {
	// RemoveAllMemberships is set when the user is demoted to the plain
	// user role.
	RemoveAllMemberships bool
	// AddOrgIDs are the organizations to add memberships for when the user
	// becomes a manager. Memberships the user already holds are skipped by
	// the writer.
	AddOrgIDs []primitive.ObjectID
}

// PlanRoleCascade decides the membership changes for a move to newRole.
// orgIDs are honored only when newRole is manager.
func PlanRoleCascade(newRole string, orgIDs []primitive.ObjectID) RoleCascade {
	switch newRole {
	case models.RoleUser:
		return RoleCascade{RemoveAllMemberships: true}
	case models.RoleManager:
		seen := make(map[primitive.ObjectID]struct{}, len(orgIDs))
		var add []primitive.ObjectID
		for _, id := range orgIDs {
			if id.IsZero() {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			add = append(add, id)
		}
		return RoleCascade{AddOrgIDs: add}
	default:
		return RoleCascade{}
	}
}
