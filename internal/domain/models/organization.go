// internal/domain/models/organization.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Organization includes a case/diacritic-insensitive name for lookups.
type Organization struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"-"`
	Description string             `bson:"description" json:"description"`
	Website     string             `bson:"website" json:"website"`
	Images      []string           `bson:"images" json:"images"`
	Status      string             `bson:"status" json:"status"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// Ref returns the organization's id/name pair.
func (o Organization) Ref() OrganizationRef {
	return OrganizationRef{ID: o.ID, Name: o.Name}
}
