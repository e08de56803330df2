// internal/domain/models/organizationmanager.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrganizationManager records that a user manages a specific organization.
type OrganizationManager struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	UserID         primitive.ObjectID `bson:"user_id"`
	OrganizationID primitive.ObjectID `bson:"organization_id"`
	CreatedAt      time.Time          `bson:"created_at"`
}
