// internal/app/store/projects/projectstore.go
package projectstore

import (
	"context"
	"time"

	"github.com/aggienexus/nexus/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("projects")}
}

// Create inserts a new live project.
func (s *Store) Create(ctx context.Context, p models.Project) (models.Project, error) {
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	p.Deleted = false
	p.DeletedAt = nil
	if p.IncubatorAccelerator == nil {
		p.IncubatorAccelerator = []string{}
	}
	if p.Organizations == nil {
		p.Organizations = []string{}
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Project{}, err
	}
	return p, nil
}

// GetByID loads a live project. Soft-deleted projects yield
// mongo.ErrNoDocuments.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Project, error) {
	return s.findOne(ctx, bson.M{"_id": id, "deleted": bson.M{"$ne": true}})
}

// GetAny loads a project whether or not it was soft-deleted.
func (s *Store) GetAny(ctx context.Context, id primitive.ObjectID) (models.Project, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (models.Project, error) {
	var p models.Project
	if err := s.c.FindOne(ctx, filter).Decode(&p); err != nil {
		return models.Project{}, err
	}
	return p, nil
}

// Update holds the mutable project fields. Nil fields are left as is.
type Update struct {
	Title                *string
	Description          *string
	IncubatorAccelerator []string
	Organizations        []string
}

// Update modifies a live project. It returns mongo.ErrNoDocuments when the
// project does not exist or was deleted.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Title != nil {
		set["title"] = *upd.Title
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.IncubatorAccelerator != nil {
		set["incubator_accelerator"] = upd.IncubatorAccelerator
	}
	if upd.Organizations != nil {
		set["organizations"] = upd.Organizations
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id, "deleted": bson.M{"$ne": true}}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SoftDelete hides a project and reports whether a live project was deleted.
func (s *Store) SoftDelete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	now := time.Now().UTC()
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "deleted": bson.M{"$ne": true}},
		bson.M{"$set": bson.M{"deleted": true, "deleted_at": now, "updated_at": now}})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// HardDelete removes a project by ID, live or soft-deleted. Returns the
// number of documents deleted (0 or 1).
func (s *Store) HardDelete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
