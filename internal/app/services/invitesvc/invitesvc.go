// Package invitesvc manages the invitation lifecycle: owners invite by
// email, invitees accept or decline, owners cancel. Accepting atomically
// grants membership.
package invitesvc

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/minutehub/internal/app/policy/grouppolicy"
	groupstore "github.com/dalemusser/minutehub/internal/app/store/groups"
	invitationstore "github.com/dalemusser/minutehub/internal/app/store/invitations"
	membershipstore "github.com/dalemusser/minutehub/internal/app/store/memberships"
	userstore "github.com/dalemusser/minutehub/internal/app/store/users"
	"github.com/dalemusser/minutehub/internal/app/system/faults"
	"github.com/dalemusser/minutehub/internal/app/system/mailer"
	"github.com/dalemusser/minutehub/internal/app/system/normalize"
	"github.com/dalemusser/minutehub/internal/app/system/notify"
	"github.com/dalemusser/minutehub/internal/app/system/txn"
	"github.com/dalemusser/minutehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Service carries the stores and outbound mail needed by invitation
// operations. SiteName and BaseURL feed the invitation email.
type Service struct {
	client      *mongo.Client
	db          *mongo.Database
	invitations *invitationstore.Store
	memberships *membershipstore.Store
	groups      *groupstore.Store
	users       *userstore.Store
	mail        *mailer.Mailer
	hub         *notify.Hub
	log         *zap.Logger

	SiteName string
	BaseURL  string
}

func New(client *mongo.Client, db *mongo.Database, mail *mailer.Mailer, hub *notify.Hub, log *zap.Logger) *Service {
	return &Service{
		client:      client,
		db:          db,
		invitations: invitationstore.New(db),
		memberships: membershipstore.New(db),
		groups:      groupstore.New(db),
		users:       userstore.New(db),
		mail:        mail,
		hub:         hub,
		log:         log,
		SiteName:    "MinuteHub",
	}
}

// mailSendTimeout bounds the background invitation email send.
const mailSendTimeout = 30 * time.Second

// plausibleEmail is the same loose shape check the sign-in form applies:
// an "@" with a dot somewhere after it. Real validation happens when the
// invitee signs in to that address.
func plausibleEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && strings.Contains(email[at:], ".")
}

// Create issues a pending invitation to email for the group. Owner only.
// Inviting an address that already belongs to a member, or that already
// has a pending invitation, is a conflict. The notification email is
// sent in the background; a send failure never voids the invitation.
func (s *Service) Create(ctx context.Context, actorID, groupID primitive.ObjectID, email string) (models.GroupInvitation, error) {
	email = normalize.Email(email)
	if !plausibleEmail(email) {
		return models.GroupInvitation{}, faults.New(faults.Validation, "a valid email address is required")
	}

	ok, err := grouppolicy.CanManageGroup(ctx, s.db, groupID, actorID)
	if err != nil {
		return models.GroupInvitation{}, faults.Wrap(faults.Dependency, err)
	}
	if !ok {
		return models.GroupInvitation{}, faults.New(faults.Permission, "only the group owner can invite")
	}

	g, err := s.groups.GetByID(ctx, groupID)
	if errors.Is(err, groupstore.ErrNotFound) {
		return models.GroupInvitation{}, faults.Wrap(faults.NotFound, err)
	}
	if err != nil {
		return models.GroupInvitation{}, faults.Wrap(faults.Dependency, err)
	}

	// An existing account with this email that is already in the group
	// makes the invitation pointless.
	if u, err := s.users.GetByEmail(ctx, email); err == nil {
		member, err := s.memberships.Exists(ctx, groupID, u.ID)
		if err != nil {
			return models.GroupInvitation{}, faults.Wrap(faults.Dependency, err)
		}
		if member {
			return models.GroupInvitation{}, faults.New(faults.Conflict, "that person is already a member of this group")
		}
	} else if !errors.Is(err, userstore.ErrNotFound) {
		return models.GroupInvitation{}, faults.Wrap(faults.Dependency, err)
	}

	inv, err := s.invitations.Create(ctx, groupID, email, actorID)
	if errors.Is(err, invitationstore.ErrDuplicatePending) {
		return models.GroupInvitation{}, faults.Wrap(faults.Conflict, err)
	}
	if err != nil {
		return models.GroupInvitation{}, faults.Wrap(faults.Dependency, err)
	}

	s.hub.Publish(notify.Signal{Set: notify.SetInvitations, GroupID: groupID, Email: email})
	go s.sendInvitationEmail(inv, g, actorID)
	return inv, nil
}

func (s *Service) sendInvitationEmail(inv models.GroupInvitation, g models.Group, inviterID primitive.ObjectID) {
	ctx, cancel := context.WithTimeout(context.Background(), mailSendTimeout)
	defer cancel()

	inviterName := ""
	if u, err := s.users.GetByID(ctx, inviterID); err == nil {
		inviterName = u.DisplayName
	}
	e := mailer.BuildInvitationEmail(mailer.InvitationEmailData{
		SiteName:    s.SiteName,
		GroupName:   g.Name,
		InviterName: inviterName,
		AcceptURL:   s.BaseURL + "/invitations",
		JoinCode:    g.JoinCode,
	})
	e.To = inv.Email
	if err := s.mail.Send(e); err != nil {
		s.log.Error("invitation email send failed",
			zap.String("invitation_id", inv.ID.Hex()),
			zap.String("email", inv.Email),
			zap.Error(err))
	}
}

// Accept transitions the invitation to accepted and grants the actor
// membership, atomically where transactions are available. Only the
// account whose email matches the invitation may accept. Exactly one
// accept wins the status flip; any later accept sees a terminal
// invitation and gets a conflict, whichever terminal state won.
func (s *Service) Accept(ctx context.Context, actorID primitive.ObjectID, invitationID primitive.ObjectID) (models.GroupInvitation, error) {
	if _, err := s.loadForInvitee(ctx, actorID, invitationID); err != nil {
		return models.GroupInvitation{}, err
	}

	var accepted models.GroupInvitation
	_, err := txn.Run(ctx, s.client, func(ctx context.Context) error {
		// The status flip is the gate: exactly one accept wins it.
		var err error
		accepted, err = s.invitations.MarkAccepted(ctx, invitationID)
		if err != nil {
			return err
		}
		// Upsert, not Add: the invitee may have joined by code in the
		// meantime, and an existing owner role must not be demoted.
		return s.memberships.Upsert(ctx, accepted.GroupID, actorID, models.RoleMember)
	})
	if err != nil {
		return models.GroupInvitation{}, wrapTransition(err)
	}

	s.hub.Publish(notify.Signal{Set: notify.SetInvitations, GroupID: accepted.GroupID, Email: accepted.Email})
	s.hub.Publish(notify.Signal{Set: notify.SetMemberships, GroupID: accepted.GroupID})
	return accepted, nil
}

// Decline transitions the invitation to declined. Only the matching
// invitee may decline; a fresh invitation to the same email can follow.
func (s *Service) Decline(ctx context.Context, actorID primitive.ObjectID, invitationID primitive.ObjectID) error {
	if _, err := s.loadForInvitee(ctx, actorID, invitationID); err != nil {
		return err
	}

	declined, err := s.invitations.MarkDeclined(ctx, invitationID)
	if err != nil {
		return wrapTransition(err)
	}

	s.hub.Publish(notify.Signal{Set: notify.SetInvitations, GroupID: declined.GroupID, Email: declined.Email})
	return nil
}

// Cancel withdraws a pending invitation. Owner of the group only.
func (s *Service) Cancel(ctx context.Context, actorID primitive.ObjectID, invitationID primitive.ObjectID) error {
	inv, err := s.invitations.GetByID(ctx, invitationID)
	if errors.Is(err, invitationstore.ErrNotFound) {
		return faults.Wrap(faults.NotFound, err)
	}
	if err != nil {
		return faults.Wrap(faults.Dependency, err)
	}

	ok, err := grouppolicy.CanManageGroup(ctx, s.db, inv.GroupID, actorID)
	if err != nil {
		return faults.Wrap(faults.Dependency, err)
	}
	if !ok {
		return faults.New(faults.Permission, "only the group owner can cancel an invitation")
	}

	cancelled, err := s.invitations.MarkCancelled(ctx, invitationID)
	if err != nil {
		return wrapTransition(err)
	}

	s.hub.Publish(notify.Signal{Set: notify.SetInvitations, GroupID: cancelled.GroupID, Email: cancelled.Email})
	return nil
}

// ListPendingForGroup returns the group's open invitations, newest
// first. Any member may see who has been invited.
func (s *Service) ListPendingForGroup(ctx context.Context, actorID, groupID primitive.ObjectID) ([]models.GroupInvitation, error) {
	ok, err := grouppolicy.IsMember(ctx, s.db, groupID, actorID)
	if err != nil {
		return nil, faults.Wrap(faults.Dependency, err)
	}
	if !ok {
		return nil, faults.New(faults.Permission, "not a member of this group")
	}
	out, err := s.invitations.ListPendingByGroup(ctx, groupID)
	if err != nil {
		return nil, faults.Wrap(faults.Dependency, err)
	}
	return out, nil
}

// ListPendingForUser returns the actor's own open invitations across all
// groups, matched by account email.
func (s *Service) ListPendingForUser(ctx context.Context, actorID primitive.ObjectID) ([]models.GroupInvitation, error) {
	u, err := s.users.GetByID(ctx, actorID)
	if errors.Is(err, userstore.ErrNotFound) {
		return nil, faults.Wrap(faults.NotFound, err)
	}
	if err != nil {
		return nil, faults.Wrap(faults.Dependency, err)
	}
	out, err := s.invitations.ListPendingByEmail(ctx, normalize.Email(u.Email))
	if err != nil {
		return nil, faults.Wrap(faults.Dependency, err)
	}
	return out, nil
}

// loadForInvitee fetches the invitation and verifies the actor's account
// email matches the invitee email.
func (s *Service) loadForInvitee(ctx context.Context, actorID, invitationID primitive.ObjectID) (models.GroupInvitation, error) {
	inv, err := s.invitations.GetByID(ctx, invitationID)
	if errors.Is(err, invitationstore.ErrNotFound) {
		return models.GroupInvitation{}, faults.Wrap(faults.NotFound, err)
	}
	if err != nil {
		return models.GroupInvitation{}, faults.Wrap(faults.Dependency, err)
	}

	u, err := s.users.GetByID(ctx, actorID)
	if errors.Is(err, userstore.ErrNotFound) {
		return models.GroupInvitation{}, faults.Wrap(faults.NotFound, err)
	}
	if err != nil {
		return models.GroupInvitation{}, faults.Wrap(faults.Dependency, err)
	}
	if normalize.Email(u.Email) != inv.Email {
		return models.GroupInvitation{}, faults.New(faults.Permission, "this invitation was sent to a different email address")
	}
	return inv, nil
}

func wrapTransition(err error) error {
	switch {
	case errors.Is(err, invitationstore.ErrNotFound):
		return faults.Wrap(faults.NotFound, err)
	case errors.Is(err, invitationstore.ErrNotPending):
		return faults.Wrap(faults.Conflict, err)
	default:
		return faults.Wrap(faults.Dependency, err)
	}
}
