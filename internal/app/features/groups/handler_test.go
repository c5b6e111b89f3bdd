package groups_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/dalemusser/minutehub/internal/app/features/groups"
	"github.com/dalemusser/minutehub/internal/app/system/mailer"
	"github.com/dalemusser/minutehub/internal/app/system/notify"
	"github.com/dalemusser/minutehub/internal/domain/models"
	"github.com/dalemusser/minutehub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newHandler(t *testing.T) (*groups.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	mail := mailer.New(mailer.Config{}, logger)
	hub := notify.NewHub(logger)
	h := groups.NewHandler(db.Client(), db, mail, hub, "MinuteHub", "http://localhost:3000", logger)
	return h, db
}

func TestHandleCreate_ReturnsGroupWithJoinCode(t *testing.T) {
	h, db := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	owner := fx.CreateUser(ctx, "Alice Adams", "alice@example.com")

	req := testutil.NewAuthenticatedJSONRequest("POST", "/groups",
		`{"name":"  Garden Committee "}`,
		testutil.AsTestUser(owner.ID, owner.DisplayName, owner.Email))
	rec := testutil.NewRecorder()
	h.HandleCreate(rec, req)

	rec.AssertStatus(t, http.StatusCreated)

	var g models.Group
	if err := json.Unmarshal(rec.Body.Bytes(), &g); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if g.Name != "Garden Committee" {
		t.Errorf("name: got %q, want %q", g.Name, "Garden Committee")
	}
	if len(g.JoinCode) != 6 {
		t.Errorf("join code %q should be 6 characters", g.JoinCode)
	}

	// Creator must come out the other side as owner.
	n, err := db.Collection("group_memberships").CountDocuments(ctx,
		bson.M{"group_id": g.ID, "user_id": owner.ID, "role": models.RoleOwner})
	if err != nil {
		t.Fatalf("count memberships: %v", err)
	}
	if n != 1 {
		t.Errorf("owner memberships: got %d, want 1", n)
	}
}

func TestHandleCreate_EmptyNameRejected(t *testing.T) {
	h, db := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	u := fx.CreateUser(ctx, "Alice Adams", "alice@example.com")

	req := testutil.NewAuthenticatedJSONRequest("POST", "/groups", `{"name":"   "}`,
		testutil.AsTestUser(u.ID, u.DisplayName, u.Email))
	rec := testutil.NewRecorder()
	h.HandleCreate(rec, req)

	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestHandleGet_MemberSeesGroupOutsiderDenied(t *testing.T) {
	h, db := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	owner := fx.CreateUser(ctx, "Alice Adams", "alice@example.com")
	outsider := fx.CreateUser(ctx, "Oscar Ortiz", "oscar@example.com")
	g := fx.CreateGroupWithOwner(ctx, "Book Club", owner.ID)

	req := testutil.NewAuthenticatedRequest("GET", "/groups/"+g.ID.Hex(),
		testutil.AsTestUser(owner.ID, owner.DisplayName, owner.Email))
	req = testutil.WithChiURLParam(req, "groupID", g.ID.Hex())
	rec := testutil.NewRecorder()
	h.HandleGet(rec, req)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Book Club")

	req = testutil.NewAuthenticatedRequest("GET", "/groups/"+g.ID.Hex(),
		testutil.AsTestUser(outsider.ID, outsider.DisplayName, outsider.Email))
	req = testutil.WithChiURLParam(req, "groupID", g.ID.Hex())
	rec = testutil.NewRecorder()
	h.HandleGet(rec, req)
	rec.AssertStatus(t, http.StatusForbidden)
}

func TestHandleJoin_AddsMembership(t *testing.T) {
	h, db := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	owner := fx.CreateUser(ctx, "Alice Adams", "alice@example.com")
	joiner := fx.CreateUser(ctx, "Ben Brooks", "ben@example.com")
	g := fx.CreateGroupWithOwner(ctx, "Book Club", owner.ID)

	req := testutil.NewAuthenticatedJSONRequest("POST", "/groups/join",
		`{"code":"`+g.JoinCode+`"}`,
		testutil.AsTestUser(joiner.ID, joiner.DisplayName, joiner.Email))
	rec := testutil.NewRecorder()
	h.HandleJoin(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Book Club")

	n, err := db.Collection("group_memberships").CountDocuments(ctx,
		bson.M{"group_id": g.ID, "user_id": joiner.ID, "role": models.RoleMember})
	if err != nil {
		t.Fatalf("count memberships: %v", err)
	}
	if n != 1 {
		t.Errorf("joiner memberships: got %d, want 1", n)
	}
}

func TestHandleJoin_UnknownCode404(t *testing.T) {
	h, db := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	u := fx.CreateUser(ctx, "Ben Brooks", "ben@example.com")

	req := testutil.NewAuthenticatedJSONRequest("POST", "/groups/join",
		`{"code":"ZZZZZZ"}`,
		testutil.AsTestUser(u.ID, u.DisplayName, u.Email))
	rec := testutil.NewRecorder()
	h.HandleJoin(rec, req)

	rec.AssertStatus(t, http.StatusNotFound)
}

func TestHandleListMembers_RosterInJoinOrder(t *testing.T) {
	h, db := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	owner := fx.CreateUser(ctx, "Alice Adams", "alice@example.com")
	member := fx.CreateUser(ctx, "Ben Brooks", "ben@example.com")
	g := fx.CreateGroupWithOwner(ctx, "Book Club", owner.ID)
	fx.CreateMembership(ctx, g.ID, member.ID, models.RoleMember)

	req := testutil.NewAuthenticatedRequest("GET", "/groups/"+g.ID.Hex()+"/members",
		testutil.AsTestUser(member.ID, member.DisplayName, member.Email))
	req = testutil.WithChiURLParam(req, "groupID", g.ID.Hex())
	rec := testutil.NewRecorder()
	h.HandleListMembers(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Alice Adams")
	rec.AssertContains(t, "Ben Brooks")
}

func TestHandleRemoveMember_SelfLeave(t *testing.T) {
	h, db := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	owner := fx.CreateUser(ctx, "Alice Adams", "alice@example.com")
	member := fx.CreateUser(ctx, "Ben Brooks", "ben@example.com")
	g := fx.CreateGroupWithOwner(ctx, "Book Club", owner.ID)
	fx.CreateMembership(ctx, g.ID, member.ID, models.RoleMember)

	req := testutil.NewAuthenticatedRequest("DELETE",
		"/groups/"+g.ID.Hex()+"/members/"+member.ID.Hex(),
		testutil.AsTestUser(member.ID, member.DisplayName, member.Email))
	req = testutil.WithChiURLParams(req, "groupID", g.ID.Hex(), "userID", member.ID.Hex())
	rec := testutil.NewRecorder()
	h.HandleRemoveMember(rec, req)

	rec.AssertStatus(t, http.StatusNoContent)

	n, err := db.Collection("group_memberships").CountDocuments(ctx,
		bson.M{"group_id": g.ID, "user_id": member.ID})
	if err != nil {
		t.Fatalf("count memberships: %v", err)
	}
	if n != 0 {
		t.Errorf("memberships after leave: got %d, want 0", n)
	}
}

func TestHandleInvite_OwnerCreatesPendingInvitation(t *testing.T) {
	h, db := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	owner := fx.CreateUser(ctx, "Alice Adams", "alice@example.com")
	g := fx.CreateGroupWithOwner(ctx, "Book Club", owner.ID)

	req := testutil.NewAuthenticatedJSONRequest("POST",
		"/groups/"+g.ID.Hex()+"/invitations",
		`{"email":" Carol@Example.COM "}`,
		testutil.AsTestUser(owner.ID, owner.DisplayName, owner.Email))
	req = testutil.WithChiURLParam(req, "groupID", g.ID.Hex())
	rec := testutil.NewRecorder()
	h.HandleInvite(rec, req)

	rec.AssertStatus(t, http.StatusCreated)
	rec.AssertContains(t, "carol@example.com")

	// A second identical invite conflicts while the first is pending.
	req = testutil.NewAuthenticatedJSONRequest("POST",
		"/groups/"+g.ID.Hex()+"/invitations",
		`{"email":"carol@example.com"}`,
		testutil.AsTestUser(owner.ID, owner.DisplayName, owner.Email))
	req = testutil.WithChiURLParam(req, "groupID", g.ID.Hex())
	rec = testutil.NewRecorder()
	h.HandleInvite(rec, req)
	rec.AssertStatus(t, http.StatusConflict)
}

func TestHandleJoinCode_VisibleToMembers(t *testing.T) {
	h, db := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	owner := fx.CreateUser(ctx, "Alice Adams", "alice@example.com")
	g := fx.CreateGroupWithOwner(ctx, "Book Club", owner.ID)

	req := testutil.NewAuthenticatedRequest("GET",
		"/groups/"+g.ID.Hex()+"/join-code",
		testutil.AsTestUser(owner.ID, owner.DisplayName, owner.Email))
	req = testutil.WithChiURLParam(req, "groupID", g.ID.Hex())
	rec := testutil.NewRecorder()
	h.HandleJoinCode(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, g.JoinCode)
}
