// Package attendeesvc resolves typed attendee names and maintains a
// meeting's attendee list. Attendees are either registered users (id
// plus a name snapshot) or free-text guests.
package attendeesvc

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/minutehub/internal/app/policy/grouppolicy"
	meetingstore "github.com/dalemusser/minutehub/internal/app/store/meetings"
	membershipstore "github.com/dalemusser/minutehub/internal/app/store/memberships"
	userstore "github.com/dalemusser/minutehub/internal/app/store/users"
	"github.com/dalemusser/minutehub/internal/app/system/faults"
	"github.com/dalemusser/minutehub/internal/app/system/normalize"
	"github.com/dalemusser/minutehub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// suggestLimit caps unscoped profile searches; roster matches are small
// enough to return whole.
const suggestLimit = 20

// Suggestion is a candidate user offered for a partially typed name.
type Suggestion struct {
	UserID      primitive.ObjectID `json:"user_id"`
	DisplayName string             `json:"display_name"`
	Email       string             `json:"email"`
}

// candidate is a resolvable user regardless of where they came from
// (group roster or profile search).
type candidate struct {
	id    primitive.ObjectID
	name  string
	email string
}

type Service struct {
	db          *mongo.Database
	meetings    *meetingstore.Store
	memberships *membershipstore.Store
	users       *userstore.Store
	log         *zap.Logger
}

func New(db *mongo.Database, log *zap.Logger) *Service {
	return &Service{
		db:          db,
		meetings:    meetingstore.New(db),
		memberships: membershipstore.New(db),
		users:       userstore.New(db),
		log:         log,
	}
}

// Suggest returns users whose display name contains the typed query
// (case- and accent-insensitive), excluding those already on the
// meeting's attendee list. Grouped meetings suggest from the group
// roster; ungrouped ones from all profiles. An empty query yields no
// suggestions.
func (s *Service) Suggest(ctx context.Context, actorID, meetingID primitive.ObjectID, query string) ([]Suggestion, error) {
	q := text.Fold(strings.TrimSpace(query))
	if q == "" {
		return []Suggestion{}, nil
	}

	m, err := s.loadForActor(ctx, actorID, meetingID)
	if err != nil {
		return nil, err
	}

	cands, err := s.candidates(ctx, m, q)
	if err != nil {
		return nil, faults.Wrap(faults.Dependency, err)
	}

	present := presentUserIDs(m.Attendees)
	out := []Suggestion{}
	for _, c := range cands {
		if present[c.id] {
			continue
		}
		out = append(out, Suggestion{UserID: c.id, DisplayName: c.name, Email: c.email})
	}
	return out, nil
}

// Commit appends the typed name to the meeting's attendee list. A name
// that exactly matches one candidate (folded) becomes a registered
// attendee with a snapshot of the candidate's display name; a matched
// user who is already on the list is not added twice. Anything else
// becomes a guest, and guests are never deduplicated.
func (s *Service) Commit(ctx context.Context, actorID, meetingID primitive.ObjectID, name string) ([]models.Attendee, error) {
	name = normalize.Name(name)
	if name == "" {
		return nil, faults.New(faults.Validation, "attendee name is required")
	}

	m, err := s.loadForActor(ctx, actorID, meetingID)
	if err != nil {
		return nil, err
	}

	folded := text.Fold(name)
	cands, err := s.candidates(ctx, m, folded)
	if err != nil {
		return nil, faults.Wrap(faults.Dependency, err)
	}

	entry := models.Attendee{Name: name}
	for _, c := range cands {
		if text.Fold(c.name) != folded {
			continue
		}
		if presentUserIDs(m.Attendees)[c.id] {
			// Registered attendees dedup by user id.
			return m.Attendees, nil
		}
		id := c.id
		entry.UserID = &id
		entry.Name = c.name
		break
	}

	attendees := append(m.Attendees, entry)
	if err := s.meetings.UpdateAttendees(ctx, meetingID, attendees); err != nil {
		return nil, wrapMeeting(err)
	}
	return attendees, nil
}

// Remove deletes one attendee entry: registered attendees are matched by
// user id, guests by exact name (first occurrence).
func (s *Service) Remove(ctx context.Context, actorID, meetingID primitive.ObjectID, userID *primitive.ObjectID, name string) ([]models.Attendee, error) {
	m, err := s.loadForActor(ctx, actorID, meetingID)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, a := range m.Attendees {
		if userID != nil {
			if a.UserID != nil && *a.UserID == *userID {
				idx = i
				break
			}
			continue
		}
		if a.UserID == nil && a.Name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, faults.New(faults.NotFound, "attendee not on this meeting")
	}

	attendees := append(m.Attendees[:idx:idx], m.Attendees[idx+1:]...)
	if err := s.meetings.UpdateAttendees(ctx, meetingID, attendees); err != nil {
		return nil, wrapMeeting(err)
	}
	return attendees, nil
}

// candidates lists the users a typed name can resolve against: the group
// roster when the meeting is grouped, a profile search otherwise. The
// query is already folded.
func (s *Service) candidates(ctx context.Context, m models.Meeting, folded string) ([]candidate, error) {
	if m.GroupID != nil {
		members, err := s.memberships.ListByGroup(ctx, *m.GroupID)
		if err != nil {
			return nil, err
		}
		out := make([]candidate, 0, len(members))
		for _, mem := range members {
			if !strings.Contains(text.Fold(mem.DisplayName), folded) {
				continue
			}
			out = append(out, candidate{id: mem.UserID, name: mem.DisplayName, email: mem.Email})
		}
		return out, nil
	}

	users, err := s.users.SearchByDisplayName(ctx, folded, suggestLimit)
	if err != nil {
		return nil, err
	}
	out := make([]candidate, 0, len(users))
	for _, u := range users {
		out = append(out, candidate{id: u.ID, name: u.DisplayName, email: u.Email})
	}
	return out, nil
}

func presentUserIDs(attendees []models.Attendee) map[primitive.ObjectID]bool {
	present := make(map[primitive.ObjectID]bool, len(attendees))
	for _, a := range attendees {
		if a.UserID != nil {
			present[*a.UserID] = true
		}
	}
	return present
}

// loadForActor fetches the meeting and checks access: a grouped meeting
// is open to group members, an ungrouped one to its creator.
func (s *Service) loadForActor(ctx context.Context, actorID, meetingID primitive.ObjectID) (models.Meeting, error) {
	m, err := s.meetings.GetByID(ctx, meetingID)
	if err != nil {
		return models.Meeting{}, wrapMeeting(err)
	}
	if m.GroupID == nil {
		if m.CreatedBy != actorID {
			return models.Meeting{}, faults.New(faults.Permission, "no access to this meeting")
		}
		return m, nil
	}
	ok, err := grouppolicy.IsMember(ctx, s.db, *m.GroupID, actorID)
	if err != nil {
		return models.Meeting{}, faults.Wrap(faults.Dependency, err)
	}
	if !ok {
		return models.Meeting{}, faults.New(faults.Permission, "no access to this meeting")
	}
	return m, nil
}

func wrapMeeting(err error) error {
	if errors.Is(err, meetingstore.ErrNotFound) {
		return faults.Wrap(faults.NotFound, err)
	}
	return faults.Wrap(faults.Dependency, err)
}
