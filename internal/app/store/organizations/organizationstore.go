// internal/app/store/organizations/organizationstore.go
package organizationstore

import (
	"context"
	"errors"
	"time"

	"github.com/aggienexus/nexus/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// StatusActive is the default organization status.
const StatusActive = "active"

type Store struct {
	c *mongo.Collection
}

var ErrDuplicateOrganization = errors.New("an organization with this name already exists")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("organizations")}
}

func (s *Store) Create(ctx context.Context, org models.Organization) (models.Organization, error) {
	now := time.Now().UTC()
	org.ID = primitive.NewObjectID()
	org.NameCI = text.Fold(org.Name)
	if org.Status == "" {
		org.Status = StatusActive
	}
	if org.Images == nil {
		org.Images = []string{}
	}
	org.CreatedAt = now
	org.UpdatedAt = now
	_, err := s.c.InsertOne(ctx, org)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Organization{}, ErrDuplicateOrganization
		}
		return models.Organization{}, err
	}
	return org, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Organization, error) {
	var org models.Organization
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&org)
	if err != nil {
		return models.Organization{}, err
	}
	return org, nil
}

// GetByName resolves an organization by its exact display name. Claims are
// keyed by this name, so no folding is applied.
func (s *Store) GetByName(ctx context.Context, name string) (models.Organization, error) {
	var org models.Organization
	err := s.c.FindOne(ctx, bson.M{"name": name}).Decode(&org)
	if err != nil {
		return models.Organization{}, err
	}
	return org, nil
}

// Update holds the mutable organization fields. Nil fields are left as is.
type Update struct {
	Name        *string
	Description *string
	Website     *string
	Status      *string
}

// Update modifies an organization's mutable fields and refreshes UpdatedAt.
// It returns mongo.ErrNoDocuments when id does not exist.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) error {
	set := bson.M{
		"updated_at": time.Now().UTC(),
	}
	if upd.Name != nil {
		set["name"] = *upd.Name
		set["name_ci"] = text.Fold(*upd.Name)
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.Website != nil {
		set["website"] = *upd.Website
	}
	if upd.Status != nil {
		set["status"] = *upd.Status
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateOrganization
		}
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// AddImage appends an image URL if it is not already present.
func (s *Store) AddImage(ctx context.Context, id primitive.ObjectID, url string) error {
	return s.updateImages(ctx, id, bson.M{"$addToSet": bson.M{"images": url}})
}

// RemoveImage removes an image URL. Removing an absent URL is not an error.
func (s *Store) RemoveImage(ctx context.Context, id primitive.ObjectID, url string) error {
	return s.updateImages(ctx, id, bson.M{"$pull": bson.M{"images": url}})
}

func (s *Store) updateImages(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	update["$set"] = bson.M{"updated_at": time.Now().UTC()}
	res, err := s.c.UpdateByID(ctx, id, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// List returns organizations ordered by folded name. An empty status lists
// every organization. A limit of zero or less applies no limit.
func (s *Store) List(ctx context.Context, status string, limit int64) ([]models.Organization, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	orgs := []models.Organization{}
	if err := cur.All(ctx, &orgs); err != nil {
		return nil, err
	}
	return orgs, nil
}
