package invitations

import (
	"net/http"

	"github.com/dalemusser/minutehub/internal/app/features/shared"
	"github.com/dalemusser/minutehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HandleListMine handles GET /invitations: the signed-in user's pending
// invitations across all groups, newest first.
func (h *Handler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	actor, err := shared.ActorID(r)
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	invs, err := h.Invitations.ListPendingForUser(r.Context(), actor)
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	if invs == nil {
		invs = []models.GroupInvitation{}
	}
	shared.WriteJSON(w, http.StatusOK, invs)
}

// HandleAccept handles POST /invitations/{invitationID}/accept: flips
// the invitation to accepted and grants membership.
func (h *Handler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	actor, invID, err := h.actorAndInvitation(r)
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	inv, err := h.Invitations.Accept(r.Context(), actor, invID)
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, inv)
}

// HandleDecline handles POST /invitations/{invitationID}/decline.
func (h *Handler) HandleDecline(w http.ResponseWriter, r *http.Request) {
	actor, invID, err := h.actorAndInvitation(r)
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	if err := h.Invitations.Decline(r.Context(), actor, invID); err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleCancel handles POST /invitations/{invitationID}/cancel (group
// owner only).
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	actor, invID, err := h.actorAndInvitation(r)
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	if err := h.Invitations.Cancel(r.Context(), actor, invID); err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) actorAndInvitation(r *http.Request) (primitive.ObjectID, primitive.ObjectID, error) {
	actor, err := shared.ActorID(r)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, err
	}
	invID, err := shared.PathID(r, "invitationID")
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, err
	}
	return actor, invID, nil
}
