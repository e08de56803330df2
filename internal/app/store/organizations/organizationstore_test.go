package organizationstore_test

import (
	"testing"

	organizationstore "github.com/aggienexus/nexus/internal/app/store/organizations"
	"github.com/aggienexus/nexus/internal/app/system/indexes"
	"github.com/aggienexus/nexus/internal/domain/models"
	"github.com/aggienexus/nexus/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := organizationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Organization{Name: "McFerrin Center", Website: "https://mcferrin.tamu.edu"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.NameCI != "mcferrin center" {
		t.Errorf("expected folded name, got %q", created.NameCI)
	}
	if created.Status != "active" {
		t.Errorf("expected status 'active', got %q", created.Status)
	}
	if created.Images == nil {
		t.Error("expected non-nil images")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestStore_Create_DuplicateName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}
	store := organizationstore.New(db)

	if _, err := store.Create(ctx, models.Organization{Name: "AggieX"}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	_, err := store.Create(ctx, models.Organization{Name: "aggiex"})
	if err != organizationstore.ErrDuplicateOrganization {
		t.Errorf("expected ErrDuplicateOrganization, got %v", err)
	}
}

func TestStore_GetByName_Exact(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := organizationstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fixtures.CreateOrganization(ctx, "Startup Aggieland")

	got, err := store.GetByName(ctx, "Startup Aggieland")
	if err != nil {
		t.Fatalf("GetByName: %v", err)
	}
	if got.ID != org.ID {
		t.Errorf("expected %s, got %s", org.ID.Hex(), got.ID.Hex())
	}
	if _, err := store.GetByName(ctx, "startup aggieland"); err != mongo.ErrNoDocuments {
		t.Errorf("lookup must be exact, got %v", err)
	}
}

func TestStore_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := organizationstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fixtures.CreateOrganization(ctx, "Old Name")
	name, desc := "New Name", "Entrepreneurship hub"
	if err := store.Update(ctx, org.ID, organizationstore.Update{Name: &name, Description: &desc}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, _ := store.GetByID(ctx, org.ID)
	if got.Name != name || got.NameCI != "new name" || got.Description != desc {
		t.Errorf("update not applied: %+v", got)
	}
	if got.Status != "active" {
		t.Errorf("nil field must not change status, got %q", got.Status)
	}

	if err := store.Update(ctx, primitive.NewObjectID(), organizationstore.Update{Name: &name}); err != mongo.ErrNoDocuments {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
}

func TestStore_Images(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := organizationstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fixtures.CreateOrganization(ctx, "Image Org")
	url := "https://cdn.example.com/a.png"

	for i := 0; i < 2; i++ {
		if err := store.AddImage(ctx, org.ID, url); err != nil {
			t.Fatalf("AddImage: %v", err)
		}
	}
	got, _ := store.GetByID(ctx, org.ID)
	if len(got.Images) != 1 {
		t.Errorf("expected image added once, got %v", got.Images)
	}

	if err := store.RemoveImage(ctx, org.ID, url); err != nil {
		t.Fatalf("RemoveImage: %v", err)
	}
	got, _ = store.GetByID(ctx, org.ID)
	if len(got.Images) != 0 {
		t.Errorf("expected no images, got %v", got.Images)
	}

	if err := store.AddImage(ctx, primitive.NewObjectID(), url); err != mongo.ErrNoDocuments {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
}

func TestStore_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := organizationstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateOrganization(ctx, "Zeta")
	fixtures.CreateOrganization(ctx, "alpha")

	orgs, err := store.List(ctx, "", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(orgs) != 2 || orgs[0].Name != "alpha" {
		t.Errorf("expected folded-name order, got %+v", orgs)
	}

	orgs, _ = store.List(ctx, "", 1)
	if len(orgs) != 1 {
		t.Errorf("expected limit 1, got %d", len(orgs))
	}
}
