package meetings

import (
	"errors"
	"net/http"

	"github.com/dalemusser/minutehub/internal/app/features/shared"
	"github.com/dalemusser/minutehub/internal/app/policy/grouppolicy"
	meetingstore "github.com/dalemusser/minutehub/internal/app/store/meetings"
	"github.com/dalemusser/minutehub/internal/app/system/faults"
	"github.com/dalemusser/minutehub/internal/app/system/normalize"
	"github.com/dalemusser/minutehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type createMeetingRequest struct {
	Title   string `json:"title"`
	GroupID string `json:"group_id,omitempty"`
}

// HandleCreate handles POST /meetings. A group_id scopes the meeting to
// a group the actor must belong to; without one the meeting is personal.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, err := shared.ActorID(r)
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	var req createMeetingRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}

	title := normalize.Name(req.Title)
	if title == "" {
		shared.WriteError(w, h.Log, faults.New(faults.Validation, "meeting title is required"))
		return
	}

	m := models.Meeting{Title: title, CreatedBy: actor}
	if req.GroupID != "" {
		groupID, err := shared.ParseID(req.GroupID)
		if err != nil {
			shared.WriteError(w, h.Log, err)
			return
		}
		if err := h.requireMember(r, actor, groupID); err != nil {
			shared.WriteError(w, h.Log, err)
			return
		}
		m.GroupID = &groupID
	}

	created, err := h.Meetings.Create(r.Context(), m)
	if err != nil {
		shared.WriteError(w, h.Log, faults.Wrap(faults.Dependency, err))
		return
	}
	shared.WriteJSON(w, http.StatusCreated, created)
}

// HandleListByGroup handles GET /meetings?group_id=…, newest first.
func (h *Handler) HandleListByGroup(w http.ResponseWriter, r *http.Request) {
	actor, err := shared.ActorID(r)
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	groupID, err := shared.ParseID(r.URL.Query().Get("group_id"))
	if err != nil {
		shared.WriteError(w, h.Log, faults.New(faults.Validation, "group_id query parameter is required"))
		return
	}
	if err := h.requireMember(r, actor, groupID); err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}

	out, err := h.Meetings.ListByGroup(r.Context(), groupID)
	if err != nil {
		shared.WriteError(w, h.Log, faults.Wrap(faults.Dependency, err))
		return
	}
	if out == nil {
		out = []models.Meeting{}
	}
	shared.WriteJSON(w, http.StatusOK, out)
}

// HandleGet handles GET /meetings/{meetingID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	actor, err := shared.ActorID(r)
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	meetingID, err := shared.PathID(r, "meetingID")
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}

	m, err := h.Meetings.GetByID(r.Context(), meetingID)
	if errors.Is(err, meetingstore.ErrNotFound) {
		shared.WriteError(w, h.Log, faults.Wrap(faults.NotFound, err))
		return
	}
	if err != nil {
		shared.WriteError(w, h.Log, faults.Wrap(faults.Dependency, err))
		return
	}
	if m.GroupID != nil {
		if err := h.requireMember(r, actor, *m.GroupID); err != nil {
			shared.WriteError(w, h.Log, err)
			return
		}
	} else if m.CreatedBy != actor {
		shared.WriteError(w, h.Log, faults.New(faults.Permission, "no access to this meeting"))
		return
	}
	shared.WriteJSON(w, http.StatusOK, m)
}

func (h *Handler) requireMember(r *http.Request, actor, groupID primitive.ObjectID) error {
	ok, err := grouppolicy.IsMember(r.Context(), h.DB, groupID, actor)
	if err != nil {
		return faults.Wrap(faults.Dependency, err)
	}
	if !ok {
		return faults.New(faults.Permission, "not a member of this group")
	}
	return nil
}
