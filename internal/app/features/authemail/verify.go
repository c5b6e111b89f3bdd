package authemail

import (
	"errors"
	"net/http"

	"github.com/dalemusser/minutehub/internal/app/features/shared"
	"github.com/dalemusser/minutehub/internal/app/store/emailverify"
	"github.com/dalemusser/minutehub/internal/app/system/auth"
	"github.com/dalemusser/minutehub/internal/app/system/faults"
	"github.com/dalemusser/minutehub/internal/app/system/normalize"
	"go.uber.org/zap"
)

type verifyCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type signedInResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// HandleVerifyCode handles POST /auth/verify-code: checks the emailed
// code, creates the account on first sign-in, and sets the session
// cookie.
func (h *Handler) HandleVerifyCode(w http.ResponseWriter, r *http.Request) {
	var req verifyCodeRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}

	email := normalize.Email(req.Email)
	if _, err := h.Verify.VerifyCode(r.Context(), email, req.Code); err != nil {
		shared.WriteError(w, h.Log, classifyVerify(err))
		return
	}
	h.establishSession(w, r, email)
}

// HandleMagicLink handles GET /auth/magic?token=…: the emailed link
// variant of the same exchange. On success the browser is sent to the
// app root with the cookie set.
func (h *Handler) HandleMagicLink(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		shared.WriteError(w, h.Log, faults.New(faults.Validation, "token is required"))
		return
	}

	v, err := h.Verify.VerifyToken(r.Context(), token)
	if err != nil {
		shared.WriteError(w, h.Log, classifyVerify(err))
		return
	}

	u, err := h.Users.EnsureByEmail(r.Context(), v.Email)
	if err != nil {
		shared.WriteError(w, h.Log, faults.Wrap(faults.Dependency, err))
		return
	}
	if err := h.signIn(w, r, u.ID.Hex(), u.Email, u.DisplayName); err != nil {
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handler) establishSession(w http.ResponseWriter, r *http.Request, email string) {
	u, err := h.Users.EnsureByEmail(r.Context(), email)
	if err != nil {
		shared.WriteError(w, h.Log, faults.Wrap(faults.Dependency, err))
		return
	}
	if err := h.signIn(w, r, u.ID.Hex(), u.Email, u.DisplayName); err != nil {
		return
	}
	shared.WriteJSON(w, http.StatusOK, signedInResponse{
		ID:          u.ID.Hex(),
		Email:       u.Email,
		DisplayName: u.DisplayName,
	})
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request, id, email, name string) error {
	err := h.Sessions.SignIn(w, r, auth.SessionUser{ID: id, Email: email, DisplayName: name})
	if err != nil {
		h.Log.Error("session write failed", zap.Error(err))
		shared.WriteError(w, h.Log, faults.Wrap(faults.Dependency, err))
	}
	return err
}

func classifyVerify(err error) error {
	switch {
	case errors.Is(err, emailverify.ErrInvalidCode):
		return faults.Wrap(faults.Validation, err)
	case errors.Is(err, emailverify.ErrTooManyAttempts):
		return faults.Wrap(faults.Conflict, err)
	case errors.Is(err, emailverify.ErrNotFound):
		return faults.Wrap(faults.NotFound, err)
	default:
		return faults.Wrap(faults.Dependency, err)
	}
}
