package userstore_test

import (
	"errors"
	"testing"

	userstore "github.com/dalemusser/minutehub/internal/app/store/users"
	"github.com/dalemusser/minutehub/internal/app/system/indexes"
	"github.com/dalemusser/minutehub/internal/domain/models"
	"github.com/dalemusser/minutehub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create_And_GetByEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{Email: "alice@example.com", DisplayName: "Alice"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.DisplayNameCI == "" {
		t.Error("expected folded display name to be set")
	}

	got, err := store.GetByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("got user %v, want %v", got.ID, created.ID)
	}
}

func TestStore_Create_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	store := userstore.New(db)

	if _, err := store.Create(ctx, models.User{Email: "alice@example.com", DisplayName: "Alice"}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	_, err := store.Create(ctx, models.User{Email: "alice@example.com", DisplayName: "Other Alice"})
	if !errors.Is(err, userstore.ErrDuplicateEmail) {
		t.Errorf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestStore_EnsureByEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// First sign-in creates the account with a local-part display name.
	u, err := store.EnsureByEmail(ctx, "carol@example.com")
	if err != nil {
		t.Fatalf("EnsureByEmail failed: %v", err)
	}
	if u.DisplayName != "carol" {
		t.Errorf("display name = %q, want local part %q", u.DisplayName, "carol")
	}

	// Second sign-in returns the same account.
	again, err := store.EnsureByEmail(ctx, "carol@example.com")
	if err != nil {
		t.Fatalf("second EnsureByEmail failed: %v", err)
	}
	if again.ID != u.ID {
		t.Errorf("got user %v, want existing %v", again.ID, u.ID)
	}
}

func TestStore_UpdateDisplayName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u, err := store.Create(ctx, models.User{Email: "alice@example.com", DisplayName: "Alice"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.UpdateDisplayName(ctx, u.ID, "Alice Cooper"); err != nil {
		t.Fatalf("UpdateDisplayName failed: %v", err)
	}

	got, err := store.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.DisplayName != "Alice Cooper" {
		t.Errorf("display name = %q, want %q", got.DisplayName, "Alice Cooper")
	}

	if err := store.UpdateDisplayName(ctx, primitive.NewObjectID(), "X"); !errors.Is(err, userstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_ListByIDs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	b, err := store.Create(ctx, models.User{Email: "bob@example.com", DisplayName: "Bob"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	a, err := store.Create(ctx, models.User{Email: "alice@example.com", DisplayName: "Alice"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	users, err := store.ListByIDs(ctx, []primitive.ObjectID{b.ID, a.ID})
	if err != nil {
		t.Fatalf("ListByIDs failed: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("got %d users, want 2", len(users))
	}
	// Sorted by folded display name.
	if users[0].DisplayName != "Alice" || users[1].DisplayName != "Bob" {
		t.Errorf("unexpected order: %q, %q", users[0].DisplayName, users[1].DisplayName)
	}

	empty, err := store.ListByIDs(ctx, nil)
	if err != nil {
		t.Fatalf("ListByIDs(nil) failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected empty result for no ids")
	}
}
