// internal/domain/models/groupinvitation.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Invitation statuses. "pending" is the only non-terminal state; an
// invitation transitions exactly once to accepted, declined, or cancelled
// and is kept afterwards as an audit record.
const (
	InvitationPending   = "pending"
	InvitationAccepted  = "accepted"
	InvitationDeclined  = "declined"
	InvitationCancelled = "cancelled"
)

// GroupInvitation is a durable offer of membership keyed by destination
// email. The invitee may not have an account yet; the email is stored
// normalized (trimmed, lowercased). At most one pending invitation exists
// per (group_id, email), enforced by a partial unique index.
type GroupInvitation struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GroupID     primitive.ObjectID `bson:"group_id" json:"group_id"`
	Email       string             `bson:"email" json:"email"`
	InvitedBy   primitive.ObjectID `bson:"invited_by" json:"invited_by"`
	Status      string             `bson:"status" json:"status"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	RespondedAt *time.Time         `bson:"responded_at,omitempty" json:"responded_at,omitempty"`
}

// Terminal reports whether the invitation has left the pending state.
func (i GroupInvitation) Terminal() bool {
	return i.Status != InvitationPending
}
