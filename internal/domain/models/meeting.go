// internal/domain/models/meeting.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Attendee is a meeting-scoped participant entry, distinct from a
// Membership. A registered attendee carries the user's id and a name
// *snapshot* taken when the entry was added — it is not a live reference
// to the member's current display name. A guest has no user id.
type Attendee struct {
	Name   string              `bson:"name" json:"name"`
	UserID *primitive.ObjectID `bson:"user_id,omitempty" json:"user_id,omitempty"`
}

// IsUser reports whether the attendee is a registered user (derived, not
// stored).
func (a Attendee) IsUser() bool {
	return a.UserID != nil
}

// Meeting carries only the fields this subsystem touches: the optional
// group reference (cleared, never cascaded, when the group is deleted)
// and the ordered attendee list. Minutes, agenda, and attachments live
// elsewhere.
type Meeting struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Title     string              `bson:"title" json:"title"`
	GroupID   *primitive.ObjectID `bson:"group_id,omitempty" json:"group_id,omitempty"`
	Attendees []Attendee          `bson:"attendees" json:"attendees"`
	CreatedBy primitive.ObjectID  `bson:"created_by" json:"created_by"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
