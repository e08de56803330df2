// internal/app/store/events/eventstore.go
package eventstore

import (
	"context"
	"errors"
	"time"

	"github.com/aggienexus/nexus/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var errBadStatus = errors.New(`status must be "pending"|"approved"|"rejected"`)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("events")}
}

// Create inserts a new event. New events always start pending regardless
// of the status the caller supplied.
func (s *Store) Create(ctx context.Context, ev models.Event) (models.Event, error) {
	now := time.Now().UTC()
	ev.ID = primitive.NewObjectID()
	ev.Status = models.EventPending
	ev.ApprovedBy = nil
	ev.ApprovedAt = nil
	ev.CreatedAt = now
	ev.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, ev); err != nil {
		return models.Event{}, err
	}
	return ev, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Event, error) {
	var ev models.Event
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&ev); err != nil {
		return models.Event{}, err
	}
	return ev, nil
}

// List returns events with the given status ordered by start time. An
// empty status lists every event. A limit of zero or less applies no limit.
func (s *Store) List(ctx context.Context, status string, limit int64) ([]models.Event, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	opts := options.Find().SetSort(bson.D{{Key: "starts_at", Value: 1}, {Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Event{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateStatus moves an event to status and returns the status it had
// before. Approving records actor and the time in approved_by/approved_at;
// any other status clears both. Concurrent updates are last-writer-wins.
func (s *Store) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string, actor primitive.ObjectID) (string, error) {
	if !models.IsValidEventStatus(status) {
		return "", errBadStatus
	}

	now := time.Now().UTC()
	update := bson.M{}
	if status == models.EventApproved {
		update["$set"] = bson.M{
			"status":      status,
			"approved_by": actor,
			"approved_at": now,
			"updated_at":  now,
		}
	} else {
		update["$set"] = bson.M{"status": status, "updated_at": now}
		update["$unset"] = bson.M{"approved_by": "", "approved_at": ""}
	}

	var before models.Event
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().
			SetReturnDocument(options.Before).
			SetProjection(bson.M{"status": 1}),
	).Decode(&before)
	if err != nil {
		return "", err
	}
	return before.Status, nil
}
