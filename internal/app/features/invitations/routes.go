package invitations

import (
	"github.com/dalemusser/minutehub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the subrouter mounted under /invitations.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/", h.HandleListMine)
		pr.Post("/{invitationID}/accept", h.HandleAccept)
		pr.Post("/{invitationID}/decline", h.HandleDecline)
		pr.Post("/{invitationID}/cancel", h.HandleCancel)
	})

	return r
}
