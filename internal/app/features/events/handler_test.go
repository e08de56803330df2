package events_test

import (
	"net/http"
	"testing"
	"time"

	uierrors "github.com/aggienexus/nexus/internal/app/features/errors"
	"github.com/aggienexus/nexus/internal/app/features/events"
	"github.com/aggienexus/nexus/internal/app/store/audit"
	"github.com/aggienexus/nexus/internal/app/system/auditlog"
	"github.com/aggienexus/nexus/internal/domain/models"
	"github.com/aggienexus/nexus/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*events.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	audits := auditlog.New(audit.New(db), logger, auditlog.Config{Auth: "all", Admin: "all"})
	return events.NewHandler(db, uierrors.NewErrorLogger(logger), audits, logger), testutil.NewFixtures(t, db)
}

type listResponse struct {
	Events []models.Event `json:"events"`
}

func TestServeList(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := primitive.NewObjectID()
	fixtures.CreateEvent(ctx, "Approved", models.EventApproved, creator)
	fixtures.CreateEvent(ctx, "Pending", models.EventPending, creator)
	fixtures.CreateEvent(ctx, "Rejected", models.EventRejected, creator)

	tests := []struct {
		name   string
		target string
		user   *testutil.TestUser
		status int
		count  int
	}{
		{"anonymous sees approved", "/api/events", nil, http.StatusOK, 1},
		{"anonymous cannot see pending", "/api/events?status=pending", nil, http.StatusUnauthorized, 0},
		{"user cannot see pending", "/api/events?status=pending", ptr(testutil.MemberUser()), http.StatusForbidden, 0},
		{"manager sees pending", "/api/events?status=pending", ptr(testutil.ManagerUser()), http.StatusOK, 1},
		{"admin sees all", "/api/events?status=all", ptr(testutil.AdminUser()), http.StatusOK, 3},
		{"bad status", "/api/events?status=draft", ptr(testutil.AdminUser()), http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.NewRequest("GET", tt.target)
			if tt.user != nil {
				req = testutil.WithUser(req, *tt.user)
			}
			rec := testutil.NewRecorder()
			h.ServeList(rec, req)
			rec.AssertStatus(t, tt.status)
			if tt.status != http.StatusOK {
				return
			}
			var resp listResponse
			rec.DecodeJSON(t, &resp)
			if len(resp.Events) != tt.count {
				t.Errorf("got %d events, want %d", len(resp.Events), tt.count)
			}
		})
	}
}

func ptr(u testutil.TestUser) *testutil.TestUser { return &u }

func TestServeEvent_UnapprovedVisibility(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "Creator", "c@example.com", models.RoleUser)
	ev := fixtures.CreateEvent(ctx, "Pending", models.EventPending, creator.ID)

	tests := []struct {
		name string
		user *testutil.TestUser
		want int
	}{
		{"anonymous", nil, http.StatusNotFound},
		{"other user", ptr(testutil.MemberUser()), http.StatusNotFound},
		{"creator", ptr(testutil.AsTestUser(creator.ID, creator.Role)), http.StatusOK},
		{"manager", ptr(testutil.ManagerUser()), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.WithChiURLParam(testutil.NewRequest("GET", "/api/events/x"), "id", ev.ID.Hex())
			if tt.user != nil {
				req = testutil.WithUser(req, *tt.user)
			}
			rec := testutil.NewRecorder()
			h.ServeEvent(rec, req)
			rec.AssertStatus(t, tt.want)
		})
	}
}

func TestHandleCreate_ForcesPending(t *testing.T) {
	h, _ := newTestHandler(t)

	start := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
	req := testutil.NewJSONRequest("POST", "/api/events", map[string]any{
		"title":     "<i>Demo Day</i>",
		"starts_at": start,
		"status":    "approved",
	})
	rec := testutil.NewRecorder()
	h.HandleCreate(rec, testutil.WithUser(req, testutil.AdminUser()))
	rec.AssertStatus(t, http.StatusCreated)

	var ev models.Event
	rec.DecodeJSON(t, &ev)
	if ev.Status != models.EventPending || ev.ApprovedBy != nil || ev.ApprovedAt != nil {
		t.Errorf("new events must be pending without approver, got %+v", ev)
	}
	if ev.Title != "Demo Day" {
		t.Errorf("title = %q, want markup stripped", ev.Title)
	}
}

func TestHandleCreate_Rejections(t *testing.T) {
	h, _ := newTestHandler(t)
	start := time.Now().Add(time.Hour)

	tests := []struct {
		name string
		user *testutil.TestUser
		body map[string]any
		want int
	}{
		{"anonymous", nil, map[string]any{"title": "x", "starts_at": start}, http.StatusUnauthorized},
		{"missing title", ptr(testutil.MemberUser()), map[string]any{"starts_at": start}, http.StatusBadRequest},
		{"missing start", ptr(testutil.MemberUser()), map[string]any{"title": "x"}, http.StatusBadRequest},
		{"ends before start", ptr(testutil.MemberUser()), map[string]any{"title": "x", "starts_at": start, "ends_at": start.Add(-time.Minute)}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.NewJSONRequest("POST", "/api/events", tt.body)
			if tt.user != nil {
				req = testutil.WithUser(req, *tt.user)
			}
			rec := testutil.NewRecorder()
			h.HandleCreate(rec, req)
			rec.AssertStatus(t, tt.want)
		})
	}
}

func TestHandleChangeStatus(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ev := fixtures.CreateEvent(ctx, "Pitch Night", models.EventPending, primitive.NewObjectID())
	mgr := fixtures.CreateUser(ctx, "Manager", "m@example.com", models.RoleManager)

	change := func(id primitive.ObjectID, status string, u *testutil.TestUser) *testutil.ResponseRecorder {
		req := testutil.NewJSONRequest("PATCH", "/api/events/x/status", map[string]any{"status": status})
		if u != nil {
			req = testutil.WithUser(req, *u)
		}
		req = testutil.WithChiURLParam(req, "id", id.Hex())
		rec := testutil.NewRecorder()
		h.HandleChangeStatus(rec, req)
		return rec
	}

	// Existence is checked before permission for public resources.
	change(primitive.NewObjectID(), "approved", ptr(testutil.MemberUser())).AssertStatus(t, http.StatusNotFound)
	change(ev.ID, "approved", nil).AssertStatus(t, http.StatusUnauthorized)
	change(ev.ID, "approved", ptr(testutil.MemberUser())).AssertStatus(t, http.StatusForbidden)
	change(ev.ID, "draft", ptr(testutil.AsTestUser(mgr.ID, mgr.Role))).AssertStatus(t, http.StatusBadRequest)

	// Members are refused before their body is looked at.
	change(ev.ID, "draft", ptr(testutil.MemberUser())).AssertStatus(t, http.StatusForbidden)
	req := testutil.NewJSONRequest("PATCH", "/api/events/x/status", map[string]any{"status": 42})
	req = testutil.WithChiURLParam(testutil.WithUser(req, testutil.MemberUser()), "id", ev.ID.Hex())
	malformed := testutil.NewRecorder()
	h.HandleChangeStatus(malformed, req)
	malformed.AssertStatus(t, http.StatusForbidden)

	rec := change(ev.ID, "approved", ptr(testutil.AsTestUser(mgr.ID, mgr.Role)))
	rec.AssertStatus(t, http.StatusOK)
	var got models.Event
	rec.DecodeJSON(t, &got)
	if got.Status != models.EventApproved || got.ApprovedBy == nil || *got.ApprovedBy != mgr.ID || got.ApprovedAt == nil {
		t.Errorf("approved event missing approver fields: %+v", got)
	}

	rec = change(ev.ID, "rejected", ptr(testutil.AdminUser()))
	rec.AssertStatus(t, http.StatusOK)
	got = models.Event{}
	rec.DecodeJSON(t, &got)
	if got.Status != models.EventRejected || got.ApprovedBy != nil || got.ApprovedAt != nil {
		t.Errorf("rejected event must not keep approver fields: %+v", got)
	}

	db := fixtures.DB()
	n, _ := db.Collection("audit_events").CountDocuments(ctx, bson.M{"event_type": audit.EventEventStatusChanged})
	if n != 2 {
		t.Errorf("expected 2 status change audit events, got %d", n)
	}
	denied, _ := db.Collection("audit_events").CountDocuments(ctx, bson.M{"event_type": audit.EventAuthorizationDenied})
	if denied != 3 {
		t.Errorf("expected 3 authorization denied audit events, got %d", denied)
	}
}
