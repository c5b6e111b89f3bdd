package meetings

import (
	"net/http"

	"github.com/dalemusser/minutehub/internal/app/features/shared"
	"github.com/dalemusser/minutehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type commitAttendeeRequest struct {
	Name string `json:"name"`
}

type removeAttendeeRequest struct {
	UserID string `json:"user_id,omitempty"`
	Name   string `json:"name,omitempty"`
}

// HandleSuggestAttendees handles GET
// /meetings/{meetingID}/attendees/suggest?q=….
func (h *Handler) HandleSuggestAttendees(w http.ResponseWriter, r *http.Request) {
	actor, meetingID, err := h.actorAndMeeting(r)
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	got, err := h.Attendees.Suggest(r.Context(), actor, meetingID, r.URL.Query().Get("q"))
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, got)
}

// HandleCommitAttendee handles POST /meetings/{meetingID}/attendees:
// resolves the typed name against the roster and appends it.
func (h *Handler) HandleCommitAttendee(w http.ResponseWriter, r *http.Request) {
	actor, meetingID, err := h.actorAndMeeting(r)
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	var req commitAttendeeRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	attendees, err := h.Attendees.Commit(r.Context(), actor, meetingID, req.Name)
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	if attendees == nil {
		attendees = []models.Attendee{}
	}
	shared.WriteJSON(w, http.StatusOK, attendees)
}

// HandleRemoveAttendee handles POST
// /meetings/{meetingID}/attendees/remove. Registered attendees are named
// by user_id, guests by name.
func (h *Handler) HandleRemoveAttendee(w http.ResponseWriter, r *http.Request) {
	actor, meetingID, err := h.actorAndMeeting(r)
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	var req removeAttendeeRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}

	var userID *primitive.ObjectID
	if req.UserID != "" {
		id, err := shared.ParseID(req.UserID)
		if err != nil {
			shared.WriteError(w, h.Log, err)
			return
		}
		userID = &id
	}
	attendees, err := h.Attendees.Remove(r.Context(), actor, meetingID, userID, req.Name)
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	if attendees == nil {
		attendees = []models.Attendee{}
	}
	shared.WriteJSON(w, http.StatusOK, attendees)
}

func (h *Handler) actorAndMeeting(r *http.Request) (primitive.ObjectID, primitive.ObjectID, error) {
	actor, err := shared.ActorID(r)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, err
	}
	meetingID, err := shared.PathID(r, "meetingID")
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, err
	}
	return actor, meetingID, nil
}
