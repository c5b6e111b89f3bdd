package groups

import (
	"net/http"

	"github.com/dalemusser/minutehub/internal/app/features/shared"
	"github.com/dalemusser/minutehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type createGroupRequest struct {
	Name string `json:"name"`
}

type renameGroupRequest struct {
	Name string `json:"name"`
}

type joinCodeResponse struct {
	JoinCode string `json:"join_code"`
}

// HandleList handles GET /groups: the signed-in user's groups.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	actor, err := shared.ActorID(r)
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	groups, err := h.Groups.ListForUser(r.Context(), actor)
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	if groups == nil {
		groups = []models.Group{}
	}
	shared.WriteJSON(w, http.StatusOK, groups)
}

// HandleCreate handles POST /groups.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, err := shared.ActorID(r)
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	var req createGroupRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	g, err := h.Groups.Create(r.Context(), actor, req.Name)
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, g)
}

// HandleGet handles GET /groups/{groupID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	actor, groupID, err := h.actorAndGroup(r)
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	g, err := h.Groups.Get(r.Context(), actor, groupID)
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, g)
}

// HandleRename handles PATCH /groups/{groupID}.
func (h *Handler) HandleRename(w http.ResponseWriter, r *http.Request) {
	actor, groupID, err := h.actorAndGroup(r)
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	var req renameGroupRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	if err := h.Groups.Rename(r.Context(), actor, groupID, req.Name); err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDelete handles DELETE /groups/{groupID}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	actor, groupID, err := h.actorAndGroup(r)
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	if err := h.Groups.Delete(r.Context(), actor, groupID); err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleJoinCode handles GET /groups/{groupID}/join-code.
func (h *Handler) HandleJoinCode(w http.ResponseWriter, r *http.Request) {
	actor, groupID, err := h.actorAndGroup(r)
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	code, err := h.Groups.JoinCode(r.Context(), actor, groupID)
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, joinCodeResponse{JoinCode: code})
}

func (h *Handler) actorAndGroup(r *http.Request) (primitive.ObjectID, primitive.ObjectID, error) {
	actor, err := shared.ActorID(r)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, err
	}
	groupID, err := shared.PathID(r, "groupID")
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, err
	}
	return actor, groupID, nil
}
