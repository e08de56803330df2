// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/aggienexus/nexus/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
func EnsureAll(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll, log); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema, log); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				log.Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure("users", usersSchema())
	ensure("organizations", orgsSchema())
	ensure("organization_managers", orgManagersSchema())
	ensure("events", eventsSchema())
	ensure("projects", projectsSchema())

	// No validator; the collection is append-only.
	ensure("audit_events", nil)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists returns true when <name> already exists.
// Uses ListCollectionNames to avoid "created collection" log when it didn't.
func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string, log *zap.Logger) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		log.Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		// NamespaceExists / already exists is fine (race or prior run).
		if isNamespaceExistsErr(err) {
			log.Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		log.Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	log.Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *zap.Logger) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	log.Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

var nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}

func usersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"role"},
			"properties": bson.M{
				"full_name":               bson.M{"bsonType": "string"},
				"email":                   bson.M{"bsonType": "string"},
				"role":                    bson.M{"enum": bson.A{models.RoleUser, models.RoleManager, models.RoleAdmin}},
				"status":                  bson.M{"enum": bson.A{models.UserStatusActive, models.UserStatusDeleted}},
				"skills":                  bson.M{"bsonType": "array", "items": bson.M{"bsonType": "string"}},
				"profile_setup_skipped":   bson.M{"bsonType": "bool"},
				"profile_setup_completed": bson.M{"bsonType": "bool"},
				"organization_claims": bson.M{
					"bsonType": "array",
					"items": bson.M{
						"bsonType": "object",
						"required": bson.A{"organization", "status"},
						"properties": bson.M{
							"organization": nonBlank,
							"status":       bson.M{"enum": bson.A{models.ClaimPending, models.ClaimVerified, models.ClaimRejected}},
						},
					},
				},
			},
		},
	}
}

func orgsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "name_ci", "status"},
			"properties": bson.M{
				"name":    nonBlank,
				"name_ci": nonBlank,
				"status":  bson.M{"enum": bson.A{"active", "inactive"}},
				"images":  bson.M{"bsonType": "array", "items": bson.M{"bsonType": "string"}},
			},
		},
	}
}

func orgManagersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"user_id", "organization_id"},
			"properties": bson.M{
				"user_id":         bson.M{"bsonType": "objectId"},
				"organization_id": bson.M{"bsonType": "objectId"},
				"created_at":      bson.M{"bsonType": "date"},
			},
		},
	}
}

// eventsSchema also enforces that approved events carry their approver.
func eventsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"title", "status", "starts_at", "created_by"},
			"properties": bson.M{
				"title":      nonBlank,
				"status":     bson.M{"enum": bson.A{models.EventPending, models.EventApproved, models.EventRejected}},
				"starts_at":  bson.M{"bsonType": "date"},
				"created_by": bson.M{"bsonType": "objectId"},
			},
			"oneOf": bson.A{
				bson.M{
					"properties": bson.M{"status": bson.M{"enum": bson.A{models.EventApproved}}},
					"required":   bson.A{"approved_by", "approved_at"},
				},
				bson.M{
					"properties": bson.M{"status": bson.M{"enum": bson.A{models.EventPending, models.EventRejected}}},
					"not":        bson.M{"required": bson.A{"approved_by"}},
				},
			},
		},
	}
}

func projectsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"owner_id", "title"},
			"properties": bson.M{
				"owner_id":              bson.M{"bsonType": "objectId"},
				"title":                 nonBlank,
				"incubator_accelerator": bson.M{"bsonType": "array", "items": bson.M{"bsonType": "string"}},
				"organizations":         bson.M{"bsonType": "array", "items": bson.M{"bsonType": "string"}},
				"deleted":               bson.M{"bsonType": "bool"},
			},
		},
	}
}
