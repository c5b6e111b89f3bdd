// internal/app/store/memberships/membershipstore.go
package membershipstore

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
	return &Store{c: db.Collection("group_memberships")}
}

var (
	errBadRole = errors.New(`role must be "owner" or "member"`)

	ErrDuplicateMembership = errors.New("user is already a member of this group")
	ErrNotFound            = errors.New("membership not found")
)

// Add creates a membership. The unique (group_id, user_id) index decides
// duplicates, surfaced as ErrDuplicateMembership.
func (s *Store) Add(ctx context.Context, groupID, userID primitive.ObjectID, role string) (models.GroupMembership, error) {
	if role != models.RoleOwner && role != models.RoleMember {
		return models.GroupMembership{}, errBadRole
	}

	m := models.GroupMembership{
		ID:        primitive.NewObjectID(),
		GroupID:   groupID,
		UserID:    userID,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		if wafflemongo.IsDup(err) {
			return models.GroupMembership{}, ErrDuplicateMembership
		}
		return models.GroupMembership{}, err
	}
	return m, nil
}

// Upsert ensures a membership exists, keeping the existing role if the
// user is already in the group. Used by invitation accept, where a
// concurrent join must not produce a duplicate or demote anyone.
func (s *Store) Upsert(ctx context.Context, groupID, userID primitive.ObjectID, role string) error {
	if role != models.RoleOwner && role != models.RoleMember {
		return errBadRole
	}
	_, err := s.c.UpdateOne(ctx,
		bson.M{"group_id": groupID, "user_id": userID},
		bson.M{"$setOnInsert": bson.M{
			"role":       role,
			"created_at": time.Now().UTC(),
		}},
		options.Update().SetUpsert(true),
	)
	// A concurrent insert can still race the upsert into a dup error;
	// the membership exists either way, which is what we wanted.
	if err != nil && wafflemongo.IsDup(err) {
		return nil
	}
	return err
}

// Remove deletes the membership for (groupID, userID).
func (s *Store) Remove(ctx context.Context, groupID, userID primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"group_id": groupID, "user_id": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Get returns the membership for (groupID, userID).
func (s *Store) Get(ctx context.Context, groupID, userID primitive.ObjectID) (models.GroupMembership, error) {
	var m models.GroupMembership
	err := s.c.FindOne(ctx, bson.M{"group_id": groupID, "user_id": userID}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.GroupMembership{}, ErrNotFound
	}
	if err != nil {
		return models.GroupMembership{}, err
	}
	return m, nil
}

// Exists checks if a membership exists for the given group and user.
func (s *Store) Exists(ctx context.Context, groupID, userID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"group_id": groupID, "user_id": userID}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// IsOwner reports whether userID holds the owner role in groupID.
func (s *Store) IsOwner(ctx context.Context, groupID, userID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{
		"group_id": groupID,
		"user_id":  userID,
		"role":     models.RoleOwner,
	}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Member pairs a membership with the user's current profile fields, for
// member lists.
type Member struct {
	models.GroupMembership `bson:",inline"`
	Email                  string `bson:"email"`
	DisplayName            string `bson:"display_name"`
}

// ListByGroup returns the group's members joined with their user records,
// in join order.
func (s *Store) ListByGroup(ctx context.Context, groupID primitive.ObjectID) ([]Member, error) {
	cur, err := s.c.Aggregate(ctx, []bson.M{
		{"$match": bson.M{"group_id": groupID}},
		{"$lookup": bson.M{
			"from":         "users",
			"localField":   "user_id",
			"foreignField": "_id",
			"as":           "user",
		}},
		{"$unwind": "$user"},
		{"$addFields": bson.M{
			"email":        "$user.email",
			"display_name": "$user.display_name",
		}},
		{"$project": bson.M{"user": 0}},
		{"$sort": bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var members []Member
	if err := cur.All(ctx, &members); err != nil {
		return nil, err
	}
	return members, nil
}

// ListGroupIDsForUser returns the ids of every group the user belongs to.
func (s *Store) ListGroupIDsForUser(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []primitive.ObjectID
	for cur.Next(ctx) {
		var m models.GroupMembership
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		out = append(out, m.GroupID)
	}
	return out, cur.Err()
}

// DeleteByGroup removes all memberships for a group.
// Returns the number of documents deleted.
func (s *Store) DeleteByGroup(ctx context.Context, groupID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"group_id": groupID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// CountByGroup returns the count of memberships for a group, optionally
// filtered by role. If role is empty, counts all memberships.
func (s *Store) CountByGroup(ctx context.Context, groupID primitive.ObjectID, role string) (int64, error) {
	filter := bson.M{"group_id": groupID}
	if role != "" {
		filter["role"] = role
	}
	return s.c.CountDocuments(ctx, filter)
}
