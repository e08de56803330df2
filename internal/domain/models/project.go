// internal/domain/models/project.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Project is a project or idea with an owner and claimed program
// affiliations.
type Project struct {
	ID                   primitive.ObjectID `bson:"_id" json:"id"`
	OwnerID              primitive.ObjectID `bson:"owner_id" json:"owner_id"`
	Title                string             `bson:"title" json:"title"`
	Description          string             `bson:"description" json:"description"`
	IncubatorAccelerator []string           `bson:"incubator_accelerator" json:"incubator_accelerator"`
	Organizations        []string           `bson:"organizations" json:"organizations"`
	Deleted              bool               `bson:"deleted" json:"-"`
	DeletedAt            *time.Time         `bson:"deleted_at,omitempty" json:"-"`
	CreatedAt            time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt            time.Time          `bson:"updated_at" json:"updated_at"`
}
