// Package membersvc covers membership reads and removal: listing a
// group's roster and removing members under the self-or-owner rule.
package membersvc

import (
	"context"
	"errors"

	"github.com/dalemusser/minutehub/internal/app/policy/grouppolicy"
	membershipstore "github.com/dalemusser/minutehub/internal/app/store/memberships"
	"github.com/dalemusser/minutehub/internal/app/system/faults"
	"github.com/dalemusser/minutehub/internal/app/system/notify"
	"github.com/dalemusser/minutehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Service struct {
	db          *mongo.Database
	memberships *membershipstore.Store
	hub         *notify.Hub
	log         *zap.Logger
}

func New(db *mongo.Database, hub *notify.Hub, log *zap.Logger) *Service {
	return &Service{
		db:          db,
		memberships: membershipstore.New(db),
		hub:         hub,
		log:         log,
	}
}

// List returns the group's roster with user details, in join order. Any
// member may read it.
func (s *Service) List(ctx context.Context, actorID, groupID primitive.ObjectID) ([]membershipstore.Member, error) {
	ok, err := grouppolicy.IsMember(ctx, s.db, groupID, actorID)
	if err != nil {
		return nil, faults.Wrap(faults.Dependency, err)
	}
	if !ok {
		return nil, faults.New(faults.Permission, "not a member of this group")
	}
	members, err := s.memberships.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, faults.Wrap(faults.Dependency, err)
	}
	return members, nil
}

// Add inserts a membership directly. Owner only; normal entry paths are
// join-by-code and invitation accept. Adding an existing member is a
// conflict.
func (s *Service) Add(ctx context.Context, actorID, groupID, userID primitive.ObjectID, role string) (models.GroupMembership, error) {
	ok, err := grouppolicy.CanManageGroup(ctx, s.db, groupID, actorID)
	if err != nil {
		return models.GroupMembership{}, faults.Wrap(faults.Dependency, err)
	}
	if !ok {
		return models.GroupMembership{}, faults.New(faults.Permission, "only the group owner can add members")
	}

	m, err := s.memberships.Add(ctx, groupID, userID, role)
	if errors.Is(err, membershipstore.ErrDuplicateMembership) {
		return models.GroupMembership{}, faults.Wrap(faults.Conflict, err)
	}
	if err != nil {
		return models.GroupMembership{}, faults.Wrap(faults.Dependency, err)
	}

	s.hub.Publish(notify.Signal{Set: notify.SetMemberships, GroupID: groupID})
	return m, nil
}

// Remove takes userID out of the group. Allowed when the actor removes
// themself (leave) or when the actor owns the group. There is no
// minimum-owner safeguard: an owner can leave their own group, leaving
// it ownerless.
func (s *Service) Remove(ctx context.Context, actorID, groupID, userID primitive.ObjectID) error {
	allowed, err := grouppolicy.CanRemoveMember(ctx, s.db, groupID, actorID, userID)
	if err != nil {
		return faults.Wrap(faults.Dependency, err)
	}
	if !allowed {
		return faults.New(faults.Permission, "only the member themself or the group owner can remove a member")
	}

	if err := s.memberships.Remove(ctx, groupID, userID); err != nil {
		if errors.Is(err, membershipstore.ErrNotFound) {
			return faults.Wrap(faults.NotFound, err)
		}
		return faults.Wrap(faults.Dependency, err)
	}

	s.hub.Publish(notify.Signal{Set: notify.SetMemberships, GroupID: groupID})
	return nil
}
