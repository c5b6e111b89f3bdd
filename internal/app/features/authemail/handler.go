// Package authemail implements passwordless sign-in: a 6-digit code (or
// magic link) emailed to the address, verified, and exchanged for a
// session cookie. Accounts are created on first successful sign-in.
package authemail

import (
	"time"

	"github.com/dalemusser/minutehub/internal/app/store/emailverify"
	userstore "github.com/dalemusser/minutehub/internal/app/store/users"
	"github.com/dalemusser/minutehub/internal/app/system/auth"
	"github.com/dalemusser/minutehub/internal/app/system/mailer"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler holds the sign-in flow's dependencies.
type Handler struct {
	Users    *userstore.Store
	Verify   *emailverify.Store
	Mail     *mailer.Mailer
	Sessions *auth.SessionManager
	Log      *zap.Logger

	SiteName string
	BaseURL  string
}

// NewHandler constructs the auth Handler. A zero verifyExpiry falls back
// to the store default.
func NewHandler(db *mongo.Database, mail *mailer.Mailer, sm *auth.SessionManager, siteName, baseURL string, verifyExpiry time.Duration, logger *zap.Logger) *Handler {
	if verifyExpiry <= 0 {
		verifyExpiry = emailverify.DefaultExpiry
	}
	return &Handler{
		Users:    userstore.New(db),
		Verify:   emailverify.New(db, verifyExpiry),
		Mail:     mail,
		Sessions: sm,
		Log:      logger,
		SiteName: siteName,
		BaseURL:  baseURL,
	}
}
