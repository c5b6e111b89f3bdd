package groups

import (
	"net/http"

	"github.com/dalemusser/minutehub/internal/app/features/shared"
)

type joinRequest struct {
	Code string `json:"code"`
}

// HandleJoin handles POST /groups/join: joins the signed-in user to the
// group named by the code, as a member.
func (h *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	actor, err := shared.ActorID(r)
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	var req joinRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	g, err := h.Groups.JoinByCode(r.Context(), actor, req.Code)
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, g)
}
