// Package groupsvc implements group lifecycle: create with an atomically
// assigned join code and owner membership, rename, delete with cascade,
// and code-based joining.
package groupsvc

import (
	"context"
	"errors"

	groupstore "github.com/dalemusser/minutehub/internal/app/store/groups"
	invitationstore "github.com/dalemusser/minutehub/internal/app/store/invitations"
	meetingstore "github.com/dalemusser/minutehub/internal/app/store/meetings"
	membershipstore "github.com/dalemusser/minutehub/internal/app/store/memberships"
	"github.com/dalemusser/minutehub/internal/app/system/faults"
	"github.com/dalemusser/minutehub/internal/app/system/joincode"
	"github.com/dalemusser/minutehub/internal/app/system/normalize"
	"github.com/dalemusser/minutehub/internal/app/system/notify"
	"github.com/dalemusser/minutehub/internal/app/system/txn"
	"github.com/dalemusser/minutehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Service wires the group stores together under group business rules.
type Service struct {
	client      *mongo.Client
	db          *mongo.Database
	groups      *groupstore.Store
	memberships *membershipstore.Store
	invitations *invitationstore.Store
	meetings    *meetingstore.Store
	hub         *notify.Hub
	log         *zap.Logger
}

// New builds a Service over the given database.
func New(client *mongo.Client, db *mongo.Database, hub *notify.Hub, log *zap.Logger) *Service {
	return &Service{
		client:      client,
		db:          db,
		groups:      groupstore.New(db),
		memberships: membershipstore.New(db),
		invitations: invitationstore.New(db),
		meetings:    meetingstore.New(db),
		hub:         hub,
		log:         log,
	}
}

// Create makes a new group owned by actorID. The group row and the owner
// membership appear together: transactionally when the server supports
// it, otherwise with a compensating delete if the membership insert
// fails. Join-code collisions retry with a fresh code.
func (s *Service) Create(ctx context.Context, actorID primitive.ObjectID, name string) (models.Group, error) {
	name = normalize.Name(name)
	if name == "" {
		return models.Group{}, faults.New(faults.Validation, "group name is required")
	}

	var created models.Group
	var lastErr error
	for attempt := 0; attempt < joincode.MaxAttempts; attempt++ {
		g := models.Group{
			Name:      name,
			JoinCode:  joincode.New(),
			CreatedBy: actorID,
		}

		inTxn, err := txn.Run(ctx, s.client, func(ctx context.Context) error {
			var err error
			created, err = s.groups.Create(ctx, g)
			if err != nil {
				return err
			}
			_, err = s.memberships.Add(ctx, created.ID, actorID, models.RoleOwner)
			return err
		})
		if err == nil {
			s.hub.Publish(notify.Signal{Set: notify.SetGroups, GroupID: created.ID})
			s.hub.Publish(notify.Signal{Set: notify.SetMemberships, GroupID: created.ID})
			return created, nil
		}
		if errors.Is(err, groupstore.ErrDuplicateJoinCode) {
			lastErr = err
			continue
		}
		// Without a transaction the group may have landed before the
		// membership failed; take it back out.
		if !inTxn && !created.ID.IsZero() {
			if _, delErr := s.groups.Delete(ctx, created.ID); delErr != nil {
				s.log.Error("compensating group delete failed",
					zap.String("group_id", created.ID.Hex()), zap.Error(delErr))
			}
		}
		return models.Group{}, faults.Wrap(faults.Dependency, err)
	}
	s.log.Error("join code collisions exhausted retries",
		zap.Int("attempts", joincode.MaxAttempts), zap.Error(lastErr))
	return models.Group{}, faults.New(faults.Conflict, "join code space exhausted")
}

// Get returns the group; any member may read it.
func (s *Service) Get(ctx context.Context, actorID, groupID primitive.ObjectID) (models.Group, error) {
	if err := s.requireMember(ctx, groupID, actorID); err != nil {
		return models.Group{}, err
	}
	g, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return models.Group{}, wrapStore(err)
	}
	return g, nil
}

// Rename changes the group's name. Owner only; the join code never
// changes. Concurrent renames are last-write-wins.
func (s *Service) Rename(ctx context.Context, actorID, groupID primitive.ObjectID, name string) error {
	name = normalize.Name(name)
	if name == "" {
		return faults.New(faults.Validation, "group name is required")
	}
	if err := s.requireOwner(ctx, groupID, actorID); err != nil {
		return err
	}
	if err := s.groups.Rename(ctx, groupID, name); err != nil {
		return wrapStore(err)
	}
	s.hub.Publish(notify.Signal{Set: notify.SetGroups, GroupID: groupID})
	return nil
}

// Delete removes the group and cascades: memberships and invitations go
// with it, meetings are detached (never deleted). Owner only.
func (s *Service) Delete(ctx context.Context, actorID, groupID primitive.ObjectID) error {
	if err := s.requireOwner(ctx, groupID, actorID); err != nil {
		return err
	}

	_, err := txn.Run(ctx, s.client, func(ctx context.Context) error {
		if _, err := s.meetings.ClearGroup(ctx, groupID); err != nil {
			return err
		}
		if _, err := s.invitations.DeleteByGroup(ctx, groupID); err != nil {
			return err
		}
		if _, err := s.memberships.DeleteByGroup(ctx, groupID); err != nil {
			return err
		}
		// The group row goes last so a partial non-transactional cascade
		// can be retried by deleting again.
		_, err := s.groups.Delete(ctx, groupID)
		return err
	})
	if err != nil {
		return faults.Wrap(faults.Dependency, err)
	}

	s.hub.Publish(notify.Signal{Set: notify.SetGroups, GroupID: groupID})
	s.hub.Publish(notify.Signal{Set: notify.SetMemberships, GroupID: groupID})
	s.hub.Publish(notify.Signal{Set: notify.SetInvitations, GroupID: groupID})
	return nil
}

// JoinCode returns the group's join code; any member may read it.
func (s *Service) JoinCode(ctx context.Context, actorID, groupID primitive.ObjectID) (string, error) {
	g, err := s.Get(ctx, actorID, groupID)
	if err != nil {
		return "", err
	}
	return g.JoinCode, nil
}

// JoinByCode adds the actor to the group the code names, as a member.
// Joining a group you already belong to is a conflict.
func (s *Service) JoinByCode(ctx context.Context, actorID primitive.ObjectID, code string) (models.Group, error) {
	code = normalize.Code(code)
	if !joincode.Valid(code) {
		return models.Group{}, faults.New(faults.Validation, "join code must be 6 letters or digits")
	}

	g, err := s.groups.GetByJoinCode(ctx, code)
	if errors.Is(err, groupstore.ErrNotFound) {
		return models.Group{}, faults.New(faults.NotFound, "no group with that join code")
	}
	if err != nil {
		return models.Group{}, faults.Wrap(faults.Dependency, err)
	}

	if _, err := s.memberships.Add(ctx, g.ID, actorID, models.RoleMember); err != nil {
		if errors.Is(err, membershipstore.ErrDuplicateMembership) {
			return models.Group{}, faults.Wrap(faults.Conflict, err)
		}
		return models.Group{}, faults.Wrap(faults.Dependency, err)
	}

	s.hub.Publish(notify.Signal{Set: notify.SetMemberships, GroupID: g.ID})
	return g, nil
}

// ListForUser returns every group the user belongs to, sorted by name.
func (s *Service) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Group, error) {
	ids, err := s.memberships.ListGroupIDsForUser(ctx, userID)
	if err != nil {
		return nil, faults.Wrap(faults.Dependency, err)
	}
	groups, err := s.groups.ListByIDs(ctx, ids)
	if err != nil {
		return nil, faults.Wrap(faults.Dependency, err)
	}
	return groups, nil
}

func (s *Service) requireMember(ctx context.Context, groupID, userID primitive.ObjectID) error {
	ok, err := s.memberships.Exists(ctx, groupID, userID)
	if err != nil {
		return faults.Wrap(faults.Dependency, err)
	}
	if !ok {
		return faults.New(faults.Permission, "not a member of this group")
	}
	return nil
}

func (s *Service) requireOwner(ctx context.Context, groupID, userID primitive.ObjectID) error {
	ok, err := s.memberships.IsOwner(ctx, groupID, userID)
	if err != nil {
		return faults.Wrap(faults.Dependency, err)
	}
	if !ok {
		return faults.New(faults.Permission, "only the group owner can do that")
	}
	return nil
}

func wrapStore(err error) error {
	switch {
	case errors.Is(err, groupstore.ErrNotFound):
		return faults.Wrap(faults.NotFound, err)
	default:
		return faults.Wrap(faults.Dependency, err)
	}
}
