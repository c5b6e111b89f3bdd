package membershipstore_test

import (
	"errors"
	"testing"

	membershipstore "github.com/dalemusser/minutehub/internal/app/store/memberships"
	"github.com/dalemusser/minutehub/internal/app/system/indexes"
	"github.com/dalemusser/minutehub/internal/domain/models"
	"github.com/dalemusser/minutehub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Add_And_Get(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	groupID := primitive.NewObjectID()
	userID := primitive.NewObjectID()

	m, err := store.Add(ctx, groupID, userID, models.RoleOwner)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if m.Role != models.RoleOwner {
		t.Errorf("role = %q, want owner", m.Role)
	}

	got, err := store.Get(ctx, groupID, userID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.ID != m.ID {
		t.Errorf("got membership %v, want %v", got.ID, m.ID)
	}
}

func TestStore_Add_BadRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.Add(ctx, primitive.NewObjectID(), primitive.NewObjectID(), "admin")
	if err == nil {
		t.Fatal("expected error for invalid role")
	}
}

func TestStore_Add_Duplicate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	store := membershipstore.New(db)

	groupID := primitive.NewObjectID()
	userID := primitive.NewObjectID()

	if _, err := store.Add(ctx, groupID, userID, models.RoleMember); err != nil {
		t.Fatalf("first Add failed: %v", err)
	}
	_, err := store.Add(ctx, groupID, userID, models.RoleMember)
	if !errors.Is(err, membershipstore.ErrDuplicateMembership) {
		t.Errorf("expected ErrDuplicateMembership, got %v", err)
	}
}

func TestStore_Upsert_KeepsExistingRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	store := membershipstore.New(db)

	groupID := primitive.NewObjectID()
	userID := primitive.NewObjectID()

	if _, err := store.Add(ctx, groupID, userID, models.RoleOwner); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	// Upsert as member must not demote the owner.
	if err := store.Upsert(ctx, groupID, userID, models.RoleMember); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, err := store.Get(ctx, groupID, userID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Role != models.RoleOwner {
		t.Errorf("role = %q, want owner preserved", got.Role)
	}

	n, err := store.CountByGroup(ctx, groupID, "")
	if err != nil {
		t.Fatalf("CountByGroup failed: %v", err)
	}
	if n != 1 {
		t.Errorf("membership count = %d, want 1", n)
	}
}

func TestStore_Upsert_InsertsWhenMissing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	groupID := primitive.NewObjectID()
	userID := primitive.NewObjectID()

	if err := store.Upsert(ctx, groupID, userID, models.RoleMember); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, err := store.Get(ctx, groupID, userID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Role != models.RoleMember {
		t.Errorf("role = %q, want member", got.Role)
	}
}

func TestStore_Remove(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	groupID := primitive.NewObjectID()
	userID := primitive.NewObjectID()

	if _, err := store.Add(ctx, groupID, userID, models.RoleMember); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := store.Remove(ctx, groupID, userID); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	if err := store.Remove(ctx, groupID, userID); !errors.Is(err, membershipstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second remove, got %v", err)
	}
}

func TestStore_Exists_And_IsOwner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	groupID := primitive.NewObjectID()
	owner := primitive.NewObjectID()
	member := primitive.NewObjectID()

	if _, err := store.Add(ctx, groupID, owner, models.RoleOwner); err != nil {
		t.Fatalf("Add owner failed: %v", err)
	}
	if _, err := store.Add(ctx, groupID, member, models.RoleMember); err != nil {
		t.Fatalf("Add member failed: %v", err)
	}

	for _, tc := range []struct {
		name        string
		user        primitive.ObjectID
		wantExists  bool
		wantIsOwner bool
	}{
		{"owner", owner, true, true},
		{"member", member, true, false},
		{"stranger", primitive.NewObjectID(), false, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			exists, err := store.Exists(ctx, groupID, tc.user)
			if err != nil {
				t.Fatalf("Exists failed: %v", err)
			}
			if exists != tc.wantExists {
				t.Errorf("Exists = %v, want %v", exists, tc.wantExists)
			}
			isOwner, err := store.IsOwner(ctx, groupID, tc.user)
			if err != nil {
				t.Fatalf("IsOwner failed: %v", err)
			}
			if isOwner != tc.wantIsOwner {
				t.Errorf("IsOwner = %v, want %v", isOwner, tc.wantIsOwner)
			}
		})
	}
}

func TestStore_ListByGroup_JoinsUsers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fix := testutil.NewFixtures(t, db)

	owner := fix.CreateUser(ctx, "Alice", "alice@example.com")
	member := fix.CreateUser(ctx, "Bob", "bob@example.com")
	group := fix.CreateGroup(ctx, "Engineering", owner.ID)

	if _, err := store.Add(ctx, group.ID, owner.ID, models.RoleOwner); err != nil {
		t.Fatalf("Add owner failed: %v", err)
	}
	if _, err := store.Add(ctx, group.ID, member.ID, models.RoleMember); err != nil {
		t.Fatalf("Add member failed: %v", err)
	}

	members, err := store.ListByGroup(ctx, group.ID)
	if err != nil {
		t.Fatalf("ListByGroup failed: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("got %d members, want 2", len(members))
	}
	// Join order: the owner was added first.
	if members[0].UserID != owner.ID {
		t.Errorf("first member = %v, want the owner (added first)", members[0].UserID)
	}
	byEmail := map[string]string{}
	for _, m := range members {
		byEmail[m.Email] = m.DisplayName
	}
	if byEmail["alice@example.com"] != "Alice" {
		t.Errorf("expected Alice joined, got %v", byEmail)
	}
	if byEmail["bob@example.com"] != "Bob" {
		t.Errorf("expected Bob joined, got %v", byEmail)
	}
}

func TestStore_ListGroupIDsForUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	g1 := primitive.NewObjectID()
	g2 := primitive.NewObjectID()

	if _, err := store.Add(ctx, g1, userID, models.RoleOwner); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := store.Add(ctx, g2, userID, models.RoleMember); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := store.Add(ctx, primitive.NewObjectID(), primitive.NewObjectID(), models.RoleMember); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	ids, err := store.ListGroupIDsForUser(ctx, userID)
	if err != nil {
		t.Fatalf("ListGroupIDsForUser failed: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("got %d group ids, want 2", len(ids))
	}
}

func TestStore_DeleteByGroup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	groupID := primitive.NewObjectID()
	for i := 0; i < 3; i++ {
		if _, err := store.Add(ctx, groupID, primitive.NewObjectID(), models.RoleMember); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	n, err := store.DeleteByGroup(ctx, groupID)
	if err != nil {
		t.Fatalf("DeleteByGroup failed: %v", err)
	}
	if n != 3 {
		t.Errorf("deleted count = %d, want 3", n)
	}
}
