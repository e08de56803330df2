// internal/app/policy/orgpolicy/orgpolicy.go
package orgpolicy

import (
	"context"

	"github.com/aggienexus/nexus/internal/app/system/apperr"
	"github.com/aggienexus/nexus/internal/app/system/authz"
	"github.com/aggienexus/nexus/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// OrgReader loads a single organization.
type OrgReader interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Organization, error)
}

// MembershipChecker answers whether a user manages an organization.
type MembershipChecker interface {
	Exists(ctx context.Context, userID, orgID primitive.ObjectID) (bool, error)
}

// CanManage reports whether the actor may update the organization or its
// images: admins always can, anyone else only with a manager membership
// for orgID. The global manager role alone is not enough.
func CanManage(ctx context.Context, members MembershipChecker, a authz.Actor, orgID primitive.ObjectID) (bool, error) {
	if a.IsAdmin() {
		return true, nil
	}
	return members.Exists(ctx, a.ID, orgID)
}

// CheckManage loads the organization and authorizes a mutation on it.
// Organizations are publicly readable, so existence is checked first.
// A failed membership lookup denies the request.
func CheckManage(ctx context.Context, orgs OrgReader, members MembershipChecker, actor *authz.Actor, orgID primitive.ObjectID, log *zap.Logger) (models.Organization, error) {
	org, err := orgs.GetByID(ctx, orgID)
	if err != nil {
		return models.Organization{}, apperr.Lookup(err, "organization not found")
	}
	if actor == nil {
		return models.Organization{}, apperr.Unauthenticated("sign in required")
	}

	ok, err := CanManage(ctx, members, *actor, orgID)
	if err != nil {
		log.Warn("organization membership lookup failed; denying",
			zap.String("user_id", actor.ID.Hex()),
			zap.String("org_id", orgID.Hex()),
			zap.Error(err))
		return models.Organization{}, apperr.ForbiddenCause("not a manager of this organization", err)
	}
	if !ok {
		return models.Organization{}, apperr.Forbidden("not a manager of this organization")
	}
	return org, nil
}
