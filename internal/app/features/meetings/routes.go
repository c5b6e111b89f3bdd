package meetings

import (
	"github.com/dalemusser/minutehub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the subrouter mounted under /meetings.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/", h.HandleListByGroup)
		pr.Post("/", h.HandleCreate)

		pr.Route("/{meetingID}", func(mr chi.Router) {
			mr.Get("/", h.HandleGet)
			mr.Get("/attendees/suggest", h.HandleSuggestAttendees)
			mr.Post("/attendees", h.HandleCommitAttendee)
			mr.Post("/attendees/remove", h.HandleRemoveAttendee)
		})
	})

	return r
}
