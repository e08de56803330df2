// internal/domain/models/event.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event approval statuses.
const (
	EventPending  = "pending"
	EventApproved = "approved"
	EventRejected = "rejected"
)

// Event is a calendar event with an approval workflow.
// ApprovedBy and ApprovedAt are set if and only if Status is approved.
type Event struct {
	ID          primitive.ObjectID  `bson:"_id" json:"id"`
	Title       string              `bson:"title" json:"title"`
	Description string              `bson:"description" json:"description"`
	Location    string              `bson:"location" json:"location"`
	StartsAt    time.Time           `bson:"starts_at" json:"starts_at"`
	EndsAt      *time.Time          `bson:"ends_at,omitempty" json:"ends_at,omitempty"`
	Status      string              `bson:"status" json:"status"`
	CreatedBy   primitive.ObjectID  `bson:"created_by" json:"created_by"`
	ApprovedBy  *primitive.ObjectID `bson:"approved_by,omitempty" json:"approved_by,omitempty"`
	ApprovedAt  *time.Time          `bson:"approved_at,omitempty" json:"approved_at,omitempty"`
	CreatedAt   time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time           `bson:"updated_at" json:"updated_at"`
}

// IsValidEventStatus reports whether s is a known event status.
func IsValidEventStatus(s string) bool {
	switch s {
	case EventPending, EventApproved, EventRejected:
		return true
	}
	return false
}
