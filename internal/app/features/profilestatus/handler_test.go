package profilestatus_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	uierrors "github.com/aggienexus/nexus/internal/app/features/errors"
	"github.com/aggienexus/nexus/internal/app/features/profilestatus"
	statuseval "github.com/aggienexus/nexus/internal/app/system/profilestatus"
	"github.com/aggienexus/nexus/internal/domain/models"
	"github.com/aggienexus/nexus/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type statusResponse struct {
	ShouldSetupProfile bool `json:"shouldSetupProfile"`
	HasSkippedSetup    bool `json:"hasSkippedSetup"`
	HasCompletedSetup  bool `json:"hasCompletedSetup"`
}

// fakeStore serves a single user and records MarkProfileCompleted calls.
type fakeStore struct {
	user      *models.User
	markErr   error
	markCalls int
}

func (f *fakeStore) GetActive(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	if f.user == nil || f.user.ID != id {
		return nil, mongo.ErrNoDocuments
	}
	u := *f.user
	return &u, nil
}

func (f *fakeStore) MarkProfileCompleted(context.Context, primitive.ObjectID) error {
	f.markCalls++
	return f.markErr
}

func newFakeHandler(store *fakeStore, logger *zap.Logger) *profilestatus.Handler {
	return &profilestatus.Handler{
		Users:       store,
		LoginWindow: statuseval.DefaultLoginWindow,
		ErrLog:      uierrors.NewErrorLogger(logger),
		Log:         logger,
	}
}

func serve(h *profilestatus.Handler, target string, u *models.User) *testutil.ResponseRecorder {
	req := testutil.NewRequest("GET", target)
	if u != nil {
		req = testutil.WithUser(req, testutil.AsTestUser(u.ID, u.Role))
	}
	rec := testutil.NewRecorder()
	h.ServeStatus(rec, req)
	return rec
}

func TestServeStatus_Unauthenticated(t *testing.T) {
	h := newFakeHandler(&fakeStore{}, zap.NewNop())
	rec := serve(h, "/api/profile/status", nil)
	rec.AssertStatus(t, http.StatusUnauthorized)
}

func TestServeStatus_Decisions(t *testing.T) {
	recent := time.Now().Add(-10 * time.Second)
	stale := time.Now().Add(-time.Hour)

	tests := []struct {
		name   string
		user   models.User
		target string
		want   statusResponse
	}{
		{
			name:   "fresh profile",
			user:   models.User{},
			target: "/api/profile/status",
			want:   statusResponse{ShouldSetupProfile: true},
		},
		{
			name:   "completed dominates explicit justLoggedIn",
			user:   models.User{ProfileSetupCompleted: true, ProfileSetupSkipped: true},
			target: "/api/profile/status?justLoggedIn=true",
			want:   statusResponse{HasCompletedSetup: true, HasSkippedSetup: true},
		},
		{
			name:   "skipped, not a fresh login",
			user:   models.User{ProfileSetupSkipped: true, LastLoginAt: &stale},
			target: "/api/profile/status",
			want:   statusResponse{HasSkippedSetup: true},
		},
		{
			name:   "skipped, fresh login from timestamp",
			user:   models.User{ProfileSetupSkipped: true, LastLoginAt: &recent},
			target: "/api/profile/status",
			want:   statusResponse{ShouldSetupProfile: true, HasSkippedSetup: true},
		},
		{
			name:   "skipped, query parameter overrides timestamp",
			user:   models.User{ProfileSetupSkipped: true, LastLoginAt: &recent},
			target: "/api/profile/status?justLoggedIn=false",
			want:   statusResponse{HasSkippedSetup: true},
		},
		{
			name:   "skipped, query parameter true",
			user:   models.User{ProfileSetupSkipped: true},
			target: "/api/profile/status?justLoggedIn=1",
			want:   statusResponse{ShouldSetupProfile: true, HasSkippedSetup: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := tt.user
			u.ID = primitive.NewObjectID()
			u.Role = models.RoleUser
			store := &fakeStore{user: &u}

			rec := serve(newFakeHandler(store, zap.NewNop()), tt.target, &u)
			rec.AssertStatus(t, http.StatusOK)

			var got statusResponse
			rec.DecodeJSON(t, &got)
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
			if store.markCalls != 0 {
				t.Errorf("expected no auto-complete write, got %d", store.markCalls)
			}
		})
	}
}

func TestServeStatus_DefaultLoginWindow(t *testing.T) {
	tests := []struct {
		name string
		ago  time.Duration
		want bool
	}{
		{"inside window", statuseval.DefaultLoginWindow - 5*time.Second, true},
		{"outside window", statuseval.DefaultLoginWindow + 5*time.Second, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			at := time.Now().Add(-tt.ago)
			u := models.User{ID: primitive.NewObjectID(), Role: models.RoleUser, ProfileSetupSkipped: true, LastLoginAt: &at}

			rec := serve(newFakeHandler(&fakeStore{user: &u}, zap.NewNop()), "/api/profile/status", &u)
			rec.AssertStatus(t, http.StatusOK)

			var got statusResponse
			rec.DecodeJSON(t, &got)
			if got.ShouldSetupProfile != tt.want {
				t.Errorf("ShouldSetupProfile = %v, want %v", got.ShouldSetupProfile, tt.want)
			}
		})
	}
}

func TestServeStatus_LegacyCompleteIsMarked(t *testing.T) {
	u := models.User{ID: primitive.NewObjectID(), Role: models.RoleUser, Bio: "Aggie engineer", Skills: []string{"go"}}
	store := &fakeStore{user: &u}

	rec := serve(newFakeHandler(store, zap.NewNop()), "/api/profile/status", &u)
	rec.AssertStatus(t, http.StatusOK)

	var got statusResponse
	rec.DecodeJSON(t, &got)
	if got.ShouldSetupProfile {
		t.Error("legacy-complete profile should not need setup")
	}
	if store.markCalls != 1 {
		t.Errorf("expected one auto-complete write, got %d", store.markCalls)
	}
}

func TestServeStatus_LegacyWriteFailureIsFailOpen(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	u := models.User{ID: primitive.NewObjectID(), Role: models.RoleUser, Bio: "bio", Skills: []string{"rust"}}
	store := &fakeStore{user: &u, markErr: errors.New("write failed")}

	rec := serve(newFakeHandler(store, zap.New(core)), "/api/profile/status", &u)
	rec.AssertStatus(t, http.StatusOK)

	var got statusResponse
	rec.DecodeJSON(t, &got)
	if got.ShouldSetupProfile {
		t.Error("response must not change when the auto-complete write fails")
	}
	if logs.FilterMessage("auto-complete legacy profile failed").Len() != 1 {
		t.Error("expected the failed write to be logged")
	}
}

func TestServeStatus_DeletedUserIsNotFound(t *testing.T) {
	u := models.User{ID: primitive.NewObjectID(), Role: models.RoleUser}
	h := newFakeHandler(&fakeStore{}, zap.NewNop())
	rec := serve(h, "/api/profile/status", &u)
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestServeStatus_MongoBacked(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures := testutil.NewFixtures(t, db)
	u := fixtures.InsertUser(ctx, models.User{
		FullName: "Legacy Aggie",
		Email:    "legacy@tamu.edu",
		Bio:      "Filled in long ago",
		Skills:   []string{"design"},
	})

	h := profilestatus.NewHandler(db, 0, uierrors.NewErrorLogger(zap.NewNop()), zap.NewNop())
	rec := serve(h, "/api/profile/status", &u)
	rec.AssertStatus(t, http.StatusOK)

	stored, err := h.Users.GetActive(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetActive: %v", err)
	}
	if !stored.ProfileSetupCompleted {
		t.Error("expected legacy profile to be persisted as completed")
	}
}
