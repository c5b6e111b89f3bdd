package authemail

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dalemusser/minutehub/internal/app/features/shared"
	"github.com/dalemusser/minutehub/internal/app/store/emailverify"
	"github.com/dalemusser/minutehub/internal/app/system/faults"
	"github.com/dalemusser/minutehub/internal/app/system/mailer"
	"github.com/dalemusser/minutehub/internal/app/system/normalize"
	"go.uber.org/zap"
)

type requestCodeRequest struct {
	Email  string `json:"email"`
	Resend bool   `json:"resend"`
}

// HandleRequestCode handles POST /auth/request-code. It always answers
// 200 with {"status":"sent"} for a deliverable-looking address, so the
// endpoint doesn't reveal which emails have accounts.
func (h *Handler) HandleRequestCode(w http.ResponseWriter, r *http.Request) {
	var req requestCodeRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}

	email := normalize.Email(req.Email)
	at := strings.Index(email, "@")
	if at <= 0 || !strings.Contains(email[at:], ".") {
		shared.WriteError(w, h.Log, faults.New(faults.Validation, "a valid email address is required"))
		return
	}

	res, err := h.Verify.Create(r.Context(), email, req.Resend)
	if errors.Is(err, emailverify.ErrTooManyResends) {
		shared.WriteError(w, h.Log, faults.Wrap(faults.Conflict, err))
		return
	}
	if err != nil {
		shared.WriteError(w, h.Log, faults.Wrap(faults.Dependency, err))
		return
	}

	e := mailer.BuildVerificationEmail(mailer.VerificationEmailData{
		SiteName:  h.SiteName,
		Code:      res.Code,
		MagicLink: fmt.Sprintf("%s/auth/magic?token=%s", h.BaseURL, res.Token),
		ExpiresIn: fmt.Sprintf("%d minutes", int(h.Verify.Expiry().Minutes())),
	})
	e.To = email
	go func() {
		if err := h.Mail.Send(e); err != nil {
			h.Log.Error("sign-in email send failed",
				zap.String("email", email), zap.Error(err))
		}
	}()

	shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}
