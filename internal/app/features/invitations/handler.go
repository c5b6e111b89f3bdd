// Package invitations is the invitee-facing side of invitations: the
// signed-in user's pending invitations and the accept/decline/cancel
// transitions.
package invitations

import (
	"github.com/dalemusser/minutehub/internal/app/services/invitesvc"
	"github.com/dalemusser/minutehub/internal/app/system/mailer"
	"github.com/dalemusser/minutehub/internal/app/system/notify"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Invitations *invitesvc.Service
	Log         *zap.Logger
}

func NewHandler(client *mongo.Client, db *mongo.Database, mail *mailer.Mailer, hub *notify.Hub, siteName, baseURL string, logger *zap.Logger) *Handler {
	invitations := invitesvc.New(client, db, mail, hub, logger)
	if siteName != "" {
		invitations.SiteName = siteName
	}
	invitations.BaseURL = baseURL

	return &Handler{
		Invitations: invitations,
		Log:         logger,
	}
}
