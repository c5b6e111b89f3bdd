// internal/app/policy/grouppolicy.go
//
// Package grouppolicy answers per-group authorization questions against
// the authoritative group_memberships collection. There are no global
// roles; everything is decided by the caller's membership row.
//
// Rules:
//   - Owners can rename and delete the group, invite, cancel invitations,
//     and remove any member.
//   - Members can read the group and remove themselves (leave).
//   - Non-members can do nothing with the group.
package grouppolicy

import (
	"context"

	"github.com/dalemusser/minutehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// IsMember reports whether the user has any membership in the group.
func IsMember(ctx context.Context, db *mongo.Database, groupID, userID primitive.ObjectID) (bool, error) {
	n, err := db.Collection("group_memberships").CountDocuments(ctx, bson.M{
		"group_id": groupID,
		"user_id":  userID,
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// IsOwner reports whether the user holds the owner role in the group.
func IsOwner(ctx context.Context, db *mongo.Database, groupID, userID primitive.ObjectID) (bool, error) {
	n, err := db.Collection("group_memberships").CountDocuments(ctx, bson.M{
		"group_id": groupID,
		"user_id":  userID,
		"role":     models.RoleOwner,
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CanManageGroup reports whether the user can rename or delete the group
// and manage its invitations. Only owners can.
func CanManageGroup(ctx context.Context, db *mongo.Database, groupID, userID primitive.ObjectID) (bool, error) {
	return IsOwner(ctx, db, groupID, userID)
}

// CanRemoveMember reports whether actor may remove target's membership:
// anyone may remove themselves (leave), owners may remove anyone.
func CanRemoveMember(ctx context.Context, db *mongo.Database, groupID, actorID, targetID primitive.ObjectID) (bool, error) {
	if actorID == targetID {
		return true, nil
	}
	return IsOwner(ctx, db, groupID, actorID)
}
