package authemail

import (
	"github.com/dalemusser/minutehub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the subrouter mounted under /auth.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Post("/request-code", h.HandleRequestCode)
	r.Post("/verify-code", h.HandleVerifyCode)
	r.Get("/magic", h.HandleMagicLink)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/me", h.HandleMe)
		pr.Post("/signout", h.HandleSignOut)
	})

	return r
}
