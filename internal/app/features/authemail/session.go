package authemail

import (
	"net/http"

	"github.com/dalemusser/minutehub/internal/app/features/shared"
	"github.com/dalemusser/minutehub/internal/app/system/auth"
	"go.uber.org/zap"
)

// HandleMe handles GET /auth/me: the signed-in user's identity, for the
// SPA's session bootstrap. 401 when not signed in (via RequireSignedIn).
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	shared.WriteJSON(w, http.StatusOK, signedInResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
	})
}

// HandleSignOut handles POST /auth/signout.
func (h *Handler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.SignOut(w, r); err != nil {
		h.Log.Warn("sign-out failed", zap.Error(err))
	}
	w.WriteHeader(http.StatusNoContent)
}
