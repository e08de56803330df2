package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/aggienexus/nexus/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
// Calling it again on the same request adds to the existing params.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateOrganization creates an active organization with the given name.
func (f *Fixtures) CreateOrganization(ctx context.Context, name string) models.Organization {
	f.t.Helper()

	now := time.Now().UTC()
	org := models.Organization{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		Images:    []string{},
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("organizations").InsertOne(ctx, org); err != nil {
		f.t.Fatalf("failed to create test organization: %v", err)
	}
	return org
}

// CreateUser creates an active user with the given role.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email, role string) models.User {
	f.t.Helper()
	return f.InsertUser(ctx, models.User{FullName: fullName, Email: email, Role: role})
}

// InsertUser stores u, filling in the id, status, slices and timestamps
// when they are empty.
func (f *Fixtures) InsertUser(ctx context.Context, u models.User) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.Status == "" {
		u.Status = models.UserStatusActive
	}
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	if u.Skills == nil {
		u.Skills = []string{}
	}
	if u.OrganizationClaims == nil {
		u.OrganizationClaims = []models.OrganizationClaim{}
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now

	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateManager records userID as a manager of orgID.
func (f *Fixtures) CreateManager(ctx context.Context, userID, orgID primitive.ObjectID) {
	f.t.Helper()

	m := models.OrganizationManager{
		ID:             primitive.NewObjectID(),
		UserID:         userID,
		OrganizationID: orgID,
		CreatedAt:      time.Now().UTC(),
	}
	if _, err := f.db.Collection("organization_managers").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create organization manager: %v", err)
	}
}

// CreateEvent creates an event in the given status created by createdBy.
// Approved events get approver fields so the approval invariant holds.
func (f *Fixtures) CreateEvent(ctx context.Context, title, status string, createdBy primitive.ObjectID) models.Event {
	f.t.Helper()

	now := time.Now().UTC()
	ev := models.Event{
		ID:        primitive.NewObjectID(),
		Title:     title,
		StartsAt:  now.Add(24 * time.Hour),
		Status:    status,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if status == models.EventApproved {
		ev.ApprovedBy = &createdBy
		ev.ApprovedAt = &now
	}
	if _, err := f.db.Collection("events").InsertOne(ctx, ev); err != nil {
		f.t.Fatalf("failed to create test event: %v", err)
	}
	return ev
}

// CreateProject creates a live project owned by ownerID.
func (f *Fixtures) CreateProject(ctx context.Context, title string, ownerID primitive.ObjectID, programs ...string) models.Project {
	f.t.Helper()

	if programs == nil {
		programs = []string{}
	}
	now := time.Now().UTC()
	p := models.Project{
		ID:                   primitive.NewObjectID(),
		OwnerID:              ownerID,
		Title:                title,
		IncubatorAccelerator: programs,
		Organizations:        []string{},
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if _, err := f.db.Collection("projects").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test project: %v", err)
	}
	return p
}
