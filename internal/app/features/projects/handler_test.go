package projects_test

import (
	"net/http"
	"testing"

	uierrors "github.com/aggienexus/nexus/internal/app/features/errors"
	"github.com/aggienexus/nexus/internal/app/features/projects"
	"github.com/aggienexus/nexus/internal/app/store/audit"
	"github.com/aggienexus/nexus/internal/app/system/auditlog"
	"github.com/aggienexus/nexus/internal/domain/models"
	"github.com/aggienexus/nexus/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*projects.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	audits := auditlog.New(audit.New(db), logger, auditlog.Config{Auth: "all", Admin: "all"})
	return projects.NewHandler(db, nil, uierrors.NewErrorLogger(logger), audits, logger), testutil.NewFixtures(t, db)
}

type projectResponse struct {
	Project  models.Project `json:"project"`
	Warnings []string       `json:"warnings"`
}

type errorResponse struct {
	Error   string   `json:"error"`
	Errors []string `json:"errors"`
}

// affiliatedUser creates a user with a verified AggieX claim.
func affiliatedUser(t *testing.T, f *testutil.Fixtures) models.User {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	return f.InsertUser(ctx, models.User{
		FullName: "Founder",
		Email:    "founder@aggiex.org",
		OrganizationClaims: []models.OrganizationClaim{
			{Organization: "AggieX", Status: models.ClaimVerified},
		},
	})
}

func TestHandleCreate_ProgramValidation(t *testing.T) {
	h, fixtures := newTestHandler(t)
	owner := affiliatedUser(t, fixtures)

	tests := []struct {
		name     string
		programs []string
		status   int
		warnings int
	}{
		{"affiliated program", []string{"AggieX Accelerator"}, http.StatusCreated, 0},
		{"open program", []string{"Independent"}, http.StatusCreated, 0},
		{"unaffiliated program", []string{"Aggies Invent"}, http.StatusBadRequest, 0},
		{"no programs warns", nil, http.StatusCreated, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := map[string]any{
				"title":                 "Widget",
				"description":           "<p>ok</p><script>x</script>",
				"incubator_accelerator": tt.programs,
			}
			req := testutil.NewJSONRequest("POST", "/api/projects", body)
			req = testutil.WithUser(req, testutil.AsTestUser(owner.ID, models.RoleUser))
			rec := testutil.NewRecorder()
			h.HandleCreate(rec, req)
			rec.AssertStatus(t, tt.status)

			if tt.status == http.StatusBadRequest {
				var resp errorResponse
				rec.DecodeJSON(t, &resp)
				if len(resp.Errors) != 1 {
					t.Errorf("expected one program error, got %v", resp.Errors)
				}
				return
			}
			var resp projectResponse
			rec.DecodeJSON(t, &resp)
			if resp.Project.OwnerID != owner.ID {
				t.Errorf("owner = %s, want %s", resp.Project.OwnerID.Hex(), owner.ID.Hex())
			}
			if resp.Project.Description != "<p>ok</p>" {
				t.Errorf("description not sanitized: %q", resp.Project.Description)
			}
			if len(resp.Warnings) != tt.warnings {
				t.Errorf("got %d warnings, want %d", len(resp.Warnings), tt.warnings)
			}
		})
	}
}

func TestHandleCreate_RequiresAuth(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := testutil.NewRecorder()
	h.HandleCreate(rec, testutil.NewJSONRequest("POST", "/api/projects", map[string]any{"title": "x"}))
	rec.AssertStatus(t, http.StatusUnauthorized)
}

func TestHandleCreate_PendingReviewedClaimDoesNotCount(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.InsertUser(ctx, models.User{
		FullName: "Pending",
		Email:    "p@example.com",
		OrganizationClaims: []models.OrganizationClaim{
			{Organization: "AggieX", Status: models.ClaimPending},
		},
	})
	req := testutil.NewJSONRequest("POST", "/api/projects", map[string]any{
		"title":                 "Widget",
		"incubator_accelerator": []string{"AggieX Accelerator"},
	})
	req = testutil.WithUser(req, testutil.AsTestUser(u.ID, models.RoleUser))
	rec := testutil.NewRecorder()
	h.HandleCreate(rec, req)
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestHandleUpdate(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := affiliatedUser(t, fixtures)
	other := fixtures.CreateUser(ctx, "Other", "other@example.com", models.RoleUser)
	p := fixtures.CreateProject(ctx, "Old", owner.ID)

	tests := []struct {
		name     string
		id       string
		user     *testutil.TestUser
		programs []string
		status   int
	}{
		{"anonymous", p.ID.Hex(), nil, nil, http.StatusUnauthorized},
		{"not owner", p.ID.Hex(), ptr(testutil.AsTestUser(other.ID, models.RoleUser)), nil, http.StatusForbidden},
		{"admin is not owner", p.ID.Hex(), ptr(testutil.AdminUser()), nil, http.StatusForbidden},
		{"missing project", primitive.NewObjectID().Hex(), ptr(testutil.AsTestUser(owner.ID, models.RoleUser)), nil, http.StatusNotFound},
		{"unaffiliated program", p.ID.Hex(), ptr(testutil.AsTestUser(owner.ID, models.RoleUser)), []string{"Aggies Invent"}, http.StatusBadRequest},
		{"owner", p.ID.Hex(), ptr(testutil.AsTestUser(owner.ID, models.RoleUser)), []string{"AggieX Accelerator"}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.NewJSONRequest("PUT", "/api/projects/"+tt.id, map[string]any{
				"title":                 "New",
				"incubator_accelerator": tt.programs,
			})
			req = testutil.WithChiURLParam(req, "id", tt.id)
			if tt.user != nil {
				req = testutil.WithUser(req, *tt.user)
			}
			rec := testutil.NewRecorder()
			h.HandleUpdate(rec, req)
			rec.AssertStatus(t, tt.status)
		})
	}

	var resp models.Project
	rec := testutil.NewRecorder()
	h.ServeProject(rec, testutil.WithChiURLParam(testutil.NewRequest("GET", "/api/projects/"+p.ID.Hex()), "id", p.ID.Hex()))
	rec.AssertStatus(t, http.StatusOK)
	rec.DecodeJSON(t, &resp)
	if resp.Title != "New" || len(resp.IncubatorAccelerator) != 1 {
		t.Errorf("update not applied: %+v", resp)
	}
}

func ptr(u testutil.TestUser) *testutil.TestUser { return &u }

func TestHandleDelete_SoftThenHard(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := affiliatedUser(t, fixtures)
	p := fixtures.CreateProject(ctx, "Doomed", owner.ID)
	id := p.ID.Hex()

	// Admins cannot soft delete someone else's project.
	req := testutil.WithChiURLParam(testutil.NewRequest("DELETE", "/api/projects/"+id), "id", id)
	rec := testutil.NewRecorder()
	h.HandleDelete(rec, testutil.WithUser(req, testutil.AdminUser()))
	rec.AssertStatus(t, http.StatusForbidden)

	rec = testutil.NewRecorder()
	h.HandleDelete(rec, testutil.WithUser(req, testutil.AsTestUser(owner.ID, models.RoleUser)))
	rec.AssertStatus(t, http.StatusNoContent)

	// Hidden from public reads.
	rec = testutil.NewRecorder()
	h.ServeProject(rec, req)
	rec.AssertStatus(t, http.StatusNotFound)

	// Owners cannot hard delete.
	rec = testutil.NewRecorder()
	h.HandleHardDelete(rec, testutil.WithUser(req, testutil.AsTestUser(owner.ID, models.RoleUser)))
	rec.AssertStatus(t, http.StatusForbidden)

	rec = testutil.NewRecorder()
	h.HandleHardDelete(rec, testutil.WithUser(req, testutil.AdminUser()))
	rec.AssertStatus(t, http.StatusNoContent)

	err := fixtures.DB().Collection("projects").FindOne(ctx, bson.M{"_id": p.ID}).Err()
	if err != mongo.ErrNoDocuments {
		t.Errorf("expected project removed, got %v", err)
	}

	for _, eventType := range []string{audit.EventProjectDeleted, audit.EventProjectHardDeleted} {
		n, err := fixtures.DB().Collection("audit_events").CountDocuments(ctx, bson.M{"event_type": eventType})
		if err != nil {
			t.Fatalf("count audit: %v", err)
		}
		if n != 1 {
			t.Errorf("expected one %s event, got %d", eventType, n)
		}
	}
	n, _ := fixtures.DB().Collection("audit_events").CountDocuments(ctx, bson.M{"event_type": audit.EventAuthorizationDenied})
	if n != 2 {
		t.Errorf("expected two denials audited, got %d", n)
	}
}

func TestServePrograms(t *testing.T) {
	h, fixtures := newTestHandler(t)
	owner := affiliatedUser(t, fixtures)

	req := testutil.WithUser(testutil.NewRequest("GET", "/api/projects/programs"), testutil.AsTestUser(owner.ID, models.RoleUser))
	rec := testutil.NewRecorder()
	h.ServePrograms(rec, req)
	rec.AssertStatus(t, http.StatusOK)

	var resp struct {
		AvailablePrograms []string `json:"available_programs"`
	}
	rec.DecodeJSON(t, &resp)
	want := map[string]bool{"AggieX Accelerator": true, "Independent": true, "Aggie Entrepreneurs": true}
	if len(resp.AvailablePrograms) != len(want) {
		t.Fatalf("got %v", resp.AvailablePrograms)
	}
	for _, p := range resp.AvailablePrograms {
		if !want[p] {
			t.Errorf("unexpected program %q", p)
		}
	}
}
