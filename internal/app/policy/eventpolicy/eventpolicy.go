// internal/app/policy/eventpolicy/eventpolicy.go
package eventpolicy

import (
	"context"

	"github.com/aggienexus/nexus/internal/app/system/apperr"
	"github.com/aggienexus/nexus/internal/app/system/authz"
	"github.com/aggienexus/nexus/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventReader loads a single event.
type EventReader interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Event, error)
}

// CanChangeStatus reports whether the actor may move an event between
// pending, approved and rejected.
func CanChangeStatus(a authz.Actor) bool {
	return a.IsManagerOrAdmin()
}

// CanCreate reports whether the actor may create events. Any signed-in
// user may; the event always starts pending.
func CanCreate(a *authz.Actor) bool {
	return a != nil
}

// CanSeeUnapproved reports whether the actor may list pending or rejected
// events.
func CanSeeUnapproved(a *authz.Actor) bool {
	return a != nil && a.IsManagerOrAdmin()
}

// CheckStatusChange loads the event and authorizes a status change.
// Events are publicly readable, so a missing event is reported before the
// caller's permissions are considered.
func CheckStatusChange(ctx context.Context, events EventReader, actor *authz.Actor, id primitive.ObjectID) (models.Event, error) {
	ev, err := events.GetByID(ctx, id)
	if err != nil {
		return models.Event{}, apperr.Lookup(err, "event not found")
	}
	if actor == nil {
		return models.Event{}, apperr.Unauthenticated("sign in required")
	}
	if !CanChangeStatus(*actor) {
		return models.Event{}, apperr.Forbidden("only managers and admins can change event status")
	}
	return ev, nil
}
