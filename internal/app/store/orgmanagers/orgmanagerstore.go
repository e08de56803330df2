// internal/app/store/orgmanagers/orgmanagerstore.go
package orgmanagerstore

import (
	"context"
	"time"

	"github.com/aggienexus/nexus/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("organization_managers")}
}

// Create inserts a new manager-organization membership.
// If CreatedAt is zero, it will be set to now (UTC).
func (s *Store) Create(ctx context.Context, m models.OrganizationManager) (models.OrganizationManager, error) {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	res, err := s.c.InsertOne(ctx, m)
	if err != nil {
		return m, err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		m.ID = oid
	}
	return m, nil
}

// Exists checks if userID manages orgID.
func (s *Store) Exists(ctx context.Context, userID, orgID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{
		"user_id":         userID,
		"organization_id": orgID,
	}).Err()
	if err == nil {
		return true, nil
	}
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	return false, err
}

// ListByOrg returns all manager memberships for an organization.
func (s *Store) ListByOrg(ctx context.Context, orgID primitive.ObjectID) ([]models.OrganizationManager, error) {
	cur, err := s.c.Find(ctx, bson.M{"organization_id": orgID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.OrganizationManager{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// OrgIDsByUser returns just the organization IDs a user manages.
func (s *Store) OrgIDsByUser(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var orgIDs []primitive.ObjectID
	for cur.Next(ctx) {
		var m models.OrganizationManager
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		orgIDs = append(orgIDs, m.OrganizationID)
	}
	return orgIDs, cur.Err()
}

// AddMissing creates memberships for each of orgIDs the user does not
// already manage and returns how many were added. A duplicate insert from a
// concurrent writer counts as already present.
func (s *Store) AddMissing(ctx context.Context, userID primitive.ObjectID, orgIDs []primitive.ObjectID) (int64, error) {
	if len(orgIDs) == 0 {
		return 0, nil
	}
	existing, err := s.OrgIDsByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	have := make(map[primitive.ObjectID]struct{}, len(existing))
	for _, id := range existing {
		have[id] = struct{}{}
	}

	var added int64
	for _, orgID := range orgIDs {
		if _, ok := have[orgID]; ok {
			continue
		}
		have[orgID] = struct{}{}
		if _, err := s.Create(ctx, models.OrganizationManager{UserID: userID, OrganizationID: orgID}); err != nil {
			if wafflemongo.IsDup(err) {
				continue
			}
			return added, err
		}
		added++
	}
	return added, nil
}

// DeleteByUser removes all organization memberships for a user.
// Used when a manager is demoted. Returns the number of documents deleted.
func (s *Store) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
