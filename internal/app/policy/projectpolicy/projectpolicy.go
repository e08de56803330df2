// internal/app/policy/projectpolicy/projectpolicy.go
package projectpolicy

import (
	"context"

	"github.com/aggienexus/nexus/internal/app/system/apperr"
	"github.com/aggienexus/nexus/internal/app/system/authz"
	"github.com/aggienexus/nexus/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProjectReader loads projects. GetByID returns live projects only; GetAny
// includes soft-deleted ones.
type ProjectReader interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Project, error)
	GetAny(ctx context.Context, id primitive.ObjectID) (models.Project, error)
}

// IsOwner reports whether the actor owns p.
func IsOwner(a authz.Actor, p models.Project) bool {
	return !a.ID.IsZero() && a.ID == p.OwnerID
}

// CanUpdate reports whether the actor may edit p. Only the owner may;
// admins are not exempt.
func CanUpdate(a authz.Actor, p models.Project) bool { return IsOwner(a, p) }

// CanSoftDelete reports whether the actor may soft-delete p.
func CanSoftDelete(a authz.Actor, p models.Project) bool { return IsOwner(a, p) }

// CanHardDelete reports whether the actor may permanently remove projects.
func CanHardDelete(a authz.Actor) bool { return a.IsAdmin() }

// CheckUpdate loads a live project and authorizes an edit. Existence is
// checked before ownership.
func CheckUpdate(ctx context.Context, projects ProjectReader, actor *authz.Actor, id primitive.ObjectID) (models.Project, error) {
	return checkOwned(ctx, projects, actor, id, CanUpdate, "only the owner can update this project")
}

// CheckSoftDelete loads a live project and authorizes a soft delete.
func CheckSoftDelete(ctx context.Context, projects ProjectReader, actor *authz.Actor, id primitive.ObjectID) (models.Project, error) {
	return checkOwned(ctx, projects, actor, id, CanSoftDelete, "only the owner can delete this project")
}

// CheckHardDelete loads a project, including soft-deleted ones, and
// authorizes its permanent removal.
func CheckHardDelete(ctx context.Context, projects ProjectReader, actor *authz.Actor, id primitive.ObjectID) (models.Project, error) {
	p, err := projects.GetAny(ctx, id)
	if err != nil {
		return models.Project{}, apperr.Lookup(err, "project not found")
	}
	if actor == nil {
		return models.Project{}, apperr.Unauthenticated("sign in required")
	}
	if !CanHardDelete(*actor) {
		return models.Project{}, apperr.Forbidden("only admins can permanently delete projects")
	}
	return p, nil
}

func checkOwned(ctx context.Context, projects ProjectReader, actor *authz.Actor, id primitive.ObjectID,
	allowed func(authz.Actor, models.Project) bool, denied string) (models.Project, error) {
	p, err := projects.GetByID(ctx, id)
	if err != nil {
		return models.Project{}, apperr.Lookup(err, "project not found")
	}
	if actor == nil {
		return models.Project{}, apperr.Unauthenticated("sign in required")
	}
	if !allowed(*actor, p) {
		return models.Project{}, apperr.Forbidden(denied)
	}
	return p, nil
}
