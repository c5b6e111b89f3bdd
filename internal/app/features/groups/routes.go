package groups

import (
	"github.com/dalemusser/minutehub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the subrouter mounted under /groups. Everything
// requires a signed-in user.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/", h.HandleList)
		pr.Post("/", h.HandleCreate)
		pr.Post("/join", h.HandleJoin)

		pr.Route("/{groupID}", func(gr chi.Router) {
			gr.Get("/", h.HandleGet)
			gr.Patch("/", h.HandleRename)
			gr.Delete("/", h.HandleDelete)
			gr.Get("/join-code", h.HandleJoinCode)

			gr.Get("/members", h.HandleListMembers)
			gr.Post("/members", h.HandleAddMember)
			gr.Delete("/members/{userID}", h.HandleRemoveMember)

			gr.Get("/invitations", h.HandleListInvitations)
			gr.Post("/invitations", h.HandleInvite)
		})
	})

	return r
}
