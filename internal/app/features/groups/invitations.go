package groups

import (
	"net/http"

	"github.com/dalemusser/minutehub/internal/app/features/shared"
	"github.com/dalemusser/minutehub/internal/domain/models"
)

type inviteRequest struct {
	Email string `json:"email"`
}

// HandleListInvitations handles GET /groups/{groupID}/invitations: the
// group's pending invitations, newest first.
func (h *Handler) HandleListInvitations(w http.ResponseWriter, r *http.Request) {
	actor, groupID, err := h.actorAndGroup(r)
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	invs, err := h.Invitations.ListPendingForGroup(r.Context(), actor, groupID)
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	if invs == nil {
		invs = []models.GroupInvitation{}
	}
	shared.WriteJSON(w, http.StatusOK, invs)
}

// HandleInvite handles POST /groups/{groupID}/invitations (owner only).
func (h *Handler) HandleInvite(w http.ResponseWriter, r *http.Request) {
	actor, groupID, err := h.actorAndGroup(r)
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	var req inviteRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	inv, err := h.Invitations.Create(r.Context(), actor, groupID, req.Email)
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, inv)
}
