package groups

import (
	"net/http"

	"github.com/dalemusser/minutehub/internal/app/features/shared"
	membershipstore "github.com/dalemusser/minutehub/internal/app/store/memberships"
	"github.com/dalemusser/minutehub/internal/domain/models"
)

type addMemberRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// HandleListMembers handles GET /groups/{groupID}/members.
func (h *Handler) HandleListMembers(w http.ResponseWriter, r *http.Request) {
	actor, groupID, err := h.actorAndGroup(r)
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	members, err := h.Members.List(r.Context(), actor, groupID)
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	if members == nil {
		members = []membershipstore.Member{}
	}
	shared.WriteJSON(w, http.StatusOK, members)
}

// HandleAddMember handles POST /groups/{groupID}/members (owner only).
func (h *Handler) HandleAddMember(w http.ResponseWriter, r *http.Request) {
	actor, groupID, err := h.actorAndGroup(r)
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	var req addMemberRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	userID, err := shared.ParseID(req.UserID)
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	role := req.Role
	if role == "" {
		role = models.RoleMember
	}
	m, err := h.Members.Add(r.Context(), actor, groupID, userID, role)
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, m)
}

// HandleRemoveMember handles DELETE /groups/{groupID}/members/{userID}:
// self-leave, or owner removing anyone.
func (h *Handler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	actor, groupID, err := h.actorAndGroup(r)
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	userID, err := shared.PathID(r, "userID")
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	if err := h.Members.Remove(r.Context(), actor, groupID, userID); err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
