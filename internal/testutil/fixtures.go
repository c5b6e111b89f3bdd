package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/minutehub/internal/app/system/joincode"
	"github.com/dalemusser/minutehub/internal/app/system/normalize"
	"github.com/dalemusser/minutehub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	return WithChiURLParams(r, key, value)
}

// WithChiURLParams adds chi URL parameters from key/value pairs. A
// request can only carry one route context, so routes with several
// params must set them in a single call.
func WithChiURLParams(r *http.Request, pairs ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(pairs); i += 2 {
		rctx.URLParams.Add(pairs[i], pairs[i+1])
	}
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

// CreateUser creates a test user with the given display name and email.
func (f *Fixtures) CreateUser(ctx context.Context, displayName, email string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:            primitive.NewObjectID(),
		Email:         normalize.Email(email),
		DisplayName:   displayName,
		DisplayNameCI: text.Fold(displayName),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateGroup creates a test group with a fresh join code, created by the
// given user. It does NOT insert the owner membership; use
// CreateGroupWithOwner for the usual pairing.
func (f *Fixtures) CreateGroup(ctx context.Context, name string, createdBy primitive.ObjectID) models.Group {
	f.t.Helper()

	now := time.Now().UTC()
	group := models.Group{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		JoinCode:  joincode.New(),
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("groups").InsertOne(ctx, group); err != nil {
		f.t.Fatalf("failed to create test group: %v", err)
	}
	return group
}

// CreateGroupWithOwner creates a group plus the creator's owner
// membership, mirroring what the group service does.
func (f *Fixtures) CreateGroupWithOwner(ctx context.Context, name string, ownerID primitive.ObjectID) models.Group {
	f.t.Helper()
	group := f.CreateGroup(ctx, name, ownerID)
	f.CreateMembership(ctx, group.ID, ownerID, models.RoleOwner)
	return group
}

// CreateMembership creates a membership record linking a user to a group.
func (f *Fixtures) CreateMembership(ctx context.Context, groupID, userID primitive.ObjectID, role string) models.GroupMembership {
	f.t.Helper()

	membership := models.GroupMembership{
		ID:        primitive.NewObjectID(),
		GroupID:   groupID,
		UserID:    userID,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}

	if _, err := f.db.Collection("group_memberships").InsertOne(ctx, membership); err != nil {
		f.t.Fatalf("failed to create test group membership: %v", err)
	}
	return membership
}

// CreateInvitation creates a pending invitation for the given email.
func (f *Fixtures) CreateInvitation(ctx context.Context, groupID primitive.ObjectID, email string, invitedBy primitive.ObjectID) models.GroupInvitation {
	f.t.Helper()

	inv := models.GroupInvitation{
		ID:        primitive.NewObjectID(),
		GroupID:   groupID,
		Email:     normalize.Email(email),
		InvitedBy: invitedBy,
		Status:    models.InvitationPending,
		CreatedAt: time.Now().UTC(),
	}

	if _, err := f.db.Collection("group_invitations").InsertOne(ctx, inv); err != nil {
		f.t.Fatalf("failed to create test invitation: %v", err)
	}
	return inv
}

// CreateMeeting creates a meeting, optionally attached to a group.
func (f *Fixtures) CreateMeeting(ctx context.Context, title string, groupID *primitive.ObjectID, createdBy primitive.ObjectID) models.Meeting {
	f.t.Helper()

	now := time.Now().UTC()
	meeting := models.Meeting{
		ID:        primitive.NewObjectID(),
		Title:     title,
		GroupID:   groupID,
		Attendees: []models.Attendee{},
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("meetings").InsertOne(ctx, meeting); err != nil {
		f.t.Fatalf("failed to create test meeting: %v", err)
	}
	return meeting
}
