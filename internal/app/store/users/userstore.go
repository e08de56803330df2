package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/aggienexus/nexus/internal/app/system/normalize"
	"github.com/aggienexus/nexus/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// VerificationAdminReview is recorded on claims decided by an administrator.
const VerificationAdminReview = "admin_review"

var (
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	errBadRole        = errors.New(`role must be "user"|"manager"|"admin"`)
	errBadDecision    = errors.New(`decision must be "verified"|"rejected"`)
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// notDeleted matches users that have not been soft-deleted. Users created
// before the status field existed have no status and count as active.
var notDeleted = bson.M{"$ne": models.UserStatusDeleted}

// GetByID loads a user by ObjectID, including soft-deleted users.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetActive loads a user that has not been deleted. Deleted users yield
// mongo.ErrNoDocuments.
func (s *Store) GetActive(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id, "status": notDeleted}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetActiveByEmail loads a live user by email (case-insensitive).
func (s *Store) GetActiveByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email), "status": notDeleted}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user after normalizing & validating fields.
// A zero ID is replaced with a new one.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	u.FullName = normalize.Name(u.FullName)
	u.Email = normalize.Email(u.Email)
	u.Role = normalize.Role(u.Role)
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	if !models.IsValidRole(u.Role) {
		return models.User{}, errBadRole
	}
	u.Status = models.UserStatusActive
	if u.Skills == nil {
		u.Skills = []string{}
	}
	if u.OrganizationClaims == nil {
		u.OrganizationClaims = []models.OrganizationClaim{}
	}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// Provision returns the user with the given id, creating it with the
// default role when it does not exist yet. created reports whether a new
// record was written.
func (s *Store) Provision(ctx context.Context, id primitive.ObjectID, email, fullName string) (u *models.User, created bool, err error) {
	u, err = s.GetByID(ctx, id)
	if err == nil {
		return u, false, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, err
	}

	nu, err := s.Create(ctx, models.User{ID: id, Email: email, FullName: fullName})
	if err != nil {
		// Lost a race with a concurrent first login for the same id.
		if errors.Is(err, ErrDuplicateEmail) {
			if u, gerr := s.GetByID(ctx, id); gerr == nil {
				return u, false, nil
			}
		}
		return nil, false, err
	}
	return &nu, true, nil
}

// RecordLogin stamps last_login_at.
func (s *Store) RecordLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{"last_login_at": at.UTC()}})
	return err
}

// CompleteProfileSetup saves the onboarding form, appends newClaims and
// marks the profile completed.
func (s *Store) CompleteProfileSetup(ctx context.Context, id primitive.ObjectID, bio string, skills []string, newClaims []models.OrganizationClaim) error {
	if skills == nil {
		skills = []string{}
	}
	update := bson.M{
		"$set": bson.M{
			"bio":                     bio,
			"skills":                  skills,
			"profile_setup_completed": true,
			"updated_at":              time.Now().UTC(),
		},
	}
	if len(newClaims) > 0 {
		update["$push"] = bson.M{"organization_claims": bson.M{"$each": newClaims}}
	}
	return s.updateActive(ctx, id, update)
}

// MarkProfileCompleted sets profile_setup_completed without touching other
// profile fields.
func (s *Store) MarkProfileCompleted(ctx context.Context, id primitive.ObjectID) error {
	return s.updateActive(ctx, id, bson.M{"$set": bson.M{
		"profile_setup_completed": true,
		"updated_at":              time.Now().UTC(),
	}})
}

// SkipProfileSetup records that the user dismissed onboarding.
func (s *Store) SkipProfileSetup(ctx context.Context, id primitive.ObjectID) error {
	return s.updateActive(ctx, id, bson.M{"$set": bson.M{
		"profile_setup_skipped": true,
		"updated_at":            time.Now().UTC(),
	}})
}

// RemovePendingClaim deletes the user's pending claim for organization.
// It reports whether a claim was removed.
func (s *Store) RemovePendingClaim(ctx context.Context, id primitive.ObjectID, organization string) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": notDeleted},
		bson.M{
			"$pull": bson.M{"organization_claims": bson.M{
				"organization": organization,
				"status":       models.ClaimPending,
			}},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// ReviewClaim moves a pending claim for organization to decision.
// reviewer is recorded in verified_by. It reports whether a pending claim
// was found.
func (s *Store) ReviewClaim(ctx context.Context, id primitive.ObjectID, organization, decision, reviewer string) (bool, error) {
	if decision != models.ClaimVerified && decision != models.ClaimRejected {
		return false, errBadDecision
	}
	now := time.Now().UTC()
	set := bson.M{
		"organization_claims.$.status":              decision,
		"organization_claims.$.verified_by":         reviewer,
		"organization_claims.$.verification_method": VerificationAdminReview,
		"updated_at": now,
	}
	if decision == models.ClaimVerified {
		set["organization_claims.$.verified_at"] = now
	}

	res, err := s.c.UpdateOne(ctx,
		bson.M{
			"_id":    id,
			"status": notDeleted,
			"organization_claims": bson.M{"$elemMatch": bson.M{
				"organization": organization,
				"status":       models.ClaimPending,
			}},
		},
		bson.M{"$set": set})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// UpdateRole sets the user's role.
func (s *Store) UpdateRole(ctx context.Context, id primitive.ObjectID, role string) error {
	if !models.IsValidRole(role) {
		return errBadRole
	}
	return s.updateActive(ctx, id, bson.M{"$set": bson.M{
		"role":       role,
		"updated_at": time.Now().UTC(),
	}})
}

// SoftDelete marks the user deleted. Users are never removed. It reports
// whether a live user was deleted.
func (s *Store) SoftDelete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	now := time.Now().UTC()
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": notDeleted},
		bson.M{"$set": bson.M{
			"status":     models.UserStatusDeleted,
			"deleted_at": now,
			"updated_at": now,
		}})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// updateActive applies update to a live user, returning
// mongo.ErrNoDocuments when none matched.
func (s *Store) updateActive(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id, "status": notDeleted}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
