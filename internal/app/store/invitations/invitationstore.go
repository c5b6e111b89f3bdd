// internal/app/store/invitations/invitationstore.go
package invitationstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/minutehub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("group_invitations")}
}

var (
	// ErrDuplicatePending means a pending invitation for this (group,
	// email) already exists; decided by the partial unique index.
	ErrDuplicatePending = errors.New("a pending invitation for this email already exists")

	ErrNotFound = errors.New("invitation not found")

	// ErrNotPending means the invitation had already left the pending
	// state when a transition was attempted. The caller re-reads the row
	// to see which terminal state won.
	ErrNotPending = errors.New("invitation is not pending")
)

// Create inserts a pending invitation. Email must already be normalized.
func (s *Store) Create(ctx context.Context, groupID primitive.ObjectID, email string, invitedBy primitive.ObjectID) (models.GroupInvitation, error) {
	inv := models.GroupInvitation{
		ID:        primitive.NewObjectID(),
		GroupID:   groupID,
		Email:     email,
		InvitedBy: invitedBy,
		Status:    models.InvitationPending,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, inv); err != nil {
		if wafflemongo.IsDup(err) {
			return models.GroupInvitation{}, ErrDuplicatePending
		}
		return models.GroupInvitation{}, err
	}
	return inv, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.GroupInvitation, error) {
	var inv models.GroupInvitation
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&inv)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.GroupInvitation{}, ErrNotFound
	}
	if err != nil {
		return models.GroupInvitation{}, err
	}
	return inv, nil
}

// markTerminal transitions a pending invitation into a terminal status.
// The filter matches on status=pending, so exactly one caller wins when
// two race: the loser gets ErrNotPending (or ErrNotFound if the id is
// unknown).
func (s *Store) markTerminal(ctx context.Context, id primitive.ObjectID, status string) (models.GroupInvitation, error) {
	now := time.Now().UTC()
	var inv models.GroupInvitation
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": models.InvitationPending},
		bson.M{"$set": bson.M{"status": status, "responded_at": now}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&inv)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// Distinguish "gone" from "already resolved".
		if exErr := s.c.FindOne(ctx, bson.M{"_id": id}).Err(); errors.Is(exErr, mongo.ErrNoDocuments) {
			return models.GroupInvitation{}, ErrNotFound
		} else if exErr != nil {
			return models.GroupInvitation{}, exErr
		}
		return models.GroupInvitation{}, ErrNotPending
	}
	if err != nil {
		return models.GroupInvitation{}, err
	}
	return inv, nil
}

// MarkAccepted transitions pending → accepted.
func (s *Store) MarkAccepted(ctx context.Context, id primitive.ObjectID) (models.GroupInvitation, error) {
	return s.markTerminal(ctx, id, models.InvitationAccepted)
}

// MarkDeclined transitions pending → declined.
func (s *Store) MarkDeclined(ctx context.Context, id primitive.ObjectID) (models.GroupInvitation, error) {
	return s.markTerminal(ctx, id, models.InvitationDeclined)
}

// MarkCancelled transitions pending → cancelled.
func (s *Store) MarkCancelled(ctx context.Context, id primitive.ObjectID) (models.GroupInvitation, error) {
	return s.markTerminal(ctx, id, models.InvitationCancelled)
}

// ListPendingByGroup returns the group's pending invitations, newest
// first.
func (s *Store) ListPendingByGroup(ctx context.Context, groupID primitive.ObjectID) ([]models.GroupInvitation, error) {
	return s.list(ctx, bson.M{"group_id": groupID, "status": models.InvitationPending})
}

// ListPendingByEmail returns the pending invitations addressed to an
// (already normalized) email, newest first. This is the invitee's inbox.
func (s *Store) ListPendingByEmail(ctx context.Context, email string) ([]models.GroupInvitation, error) {
	return s.list(ctx, bson.M{"email": email, "status": models.InvitationPending})
}

func (s *Store) list(ctx context.Context, filter bson.M) ([]models.GroupInvitation, error) {
	cur, err := s.c.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.GroupInvitation
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteByGroup removes all invitations for a group (any status).
// Returns the number of documents deleted. Used by the group delete
// cascade; terminal invitations are otherwise never purged.
func (s *Store) DeleteByGroup(ctx context.Context, groupID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"group_id": groupID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
