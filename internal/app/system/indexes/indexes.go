// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called from EnsureSchema. Each collection set is idempotent and
errors are aggregated so every problem is visible and startup fails fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	var problems []string
	for _, set := range collectionSets() {
		if err := ensureIndexSet(ctx, db.Collection(set.collection), set.models, log); err != nil {
			problems = append(problems, set.collection+": "+err.Error())
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

type indexSet struct {
	collection string
	models     []mongo.IndexModel
}

func collectionSets() []indexSet {
	return []indexSet{
		{"users", []mongo.IndexModel{
			// Email is unique when present; provider-created users may not have one yet.
			{
				Keys: bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_users_email").
					SetPartialFilterExpression(bson.M{"email": bson.M{"$gt": ""}}),
			},
			{
				Keys:    bson.D{{Key: "role", Value: 1}, {Key: "status", Value: 1}},
				Options: options.Index().SetName("idx_users_role_status"),
			},
			// Admin review queue: users with a pending claim for an organization.
			{
				Keys: bson.D{
					{Key: "organization_claims.organization", Value: 1},
					{Key: "organization_claims.status", Value: 1},
				},
				Options: options.Index().SetName("idx_users_claims_org_status"),
			},
		}},
		{"organizations", []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "name_ci", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_orgs_nameci"),
			},
			{
				Keys:    bson.D{{Key: "status", Value: 1}, {Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}},
				Options: options.Index().SetName("idx_orgs_status_nameci__id"),
			},
		}},
		{"organization_managers", []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "organization_id", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_orgmgr_user_org"),
			},
			{
				Keys:    bson.D{{Key: "organization_id", Value: 1}},
				Options: options.Index().SetName("idx_orgmgr_org"),
			},
		}},
		{"events", []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "status", Value: 1}, {Key: "starts_at", Value: 1}, {Key: "_id", Value: 1}},
				Options: options.Index().SetName("idx_events_status_starts__id"),
			},
			{
				Keys:    bson.D{{Key: "created_by", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("idx_events_createdby_created"),
			},
		}},
		{"projects", []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "deleted", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("idx_projects_deleted_created"),
			},
			{
				Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "deleted", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("idx_projects_owner_deleted_created"),
			},
		}},
		{"audit_events", []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "timestamp", Value: -1}},
				Options: options.Index().SetName("idx_audit_timestamp"),
			},
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}},
				Options: options.Index().SetName("idx_audit_user_timestamp"),
			},
			{
				Keys: bson.D{
					{Key: "category", Value: 1},
					{Key: "event_type", Value: 1},
					{Key: "timestamp", Value: -1},
				},
				Options: options.Index().SetName("idx_audit_category_type_timestamp"),
			},
		}},
	}
}

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func isUnique(b *bool) bool { return b != nil && *b }

// ensureIndexSet reconciles the desired indexes of one collection: an index
// with the same keys is reused when its name and uniqueness match, otherwise
// it is dropped and recreated.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel, log *zap.Logger) error {
	existing := map[string]existingIndex{}
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return fmt.Errorf("list indexes: %w", err)
	}
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			log.Warn("failed to decode existing index",
				zap.String("collection", coll.Name()), zap.Error(err))
			continue
		}
		existing[keySig(idx.Key)] = idx
	}
	cur.Close(ctx)

	var errs []string
	for _, m := range models {
		name := *m.Options.Name
		unique := isUnique(m.Options.Unique)
		sig := keySig(m.Keys.(bson.D))
		start := time.Now()

		if ex, ok := existing[sig]; ok {
			if ex.Name == name && isUnique(ex.Unique) == unique {
				log.Debug("reusing existing index",
					zap.String("collection", coll.Name()),
					zap.String("name", name))
				continue
			}
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s: drop %s failed: %v", name, ex.Name, err))
				continue
			}
			log.Info("dropped mismatched index",
				zap.String("collection", coll.Name()),
				zap.String("name", ex.Name),
				zap.String("keys", sig))
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if unique && wafflemongo.IsDup(err) {
				errs = append(errs, fmt.Sprintf("%s: cannot create unique index (duplicates present)", name))
			} else {
				errs = append(errs, fmt.Sprintf("%s: %v", name, err))
			}
			continue
		}
		log.Info("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig),
			zap.Bool("unique", unique),
			zap.Duration("took", time.Since(start)))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
