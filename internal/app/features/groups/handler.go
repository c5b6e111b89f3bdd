// Package groups exposes the group lifecycle over JSON: create, rename,
// delete, join-by-code, the member roster, and group-scoped invitations.
package groups

import (
	"github.com/dalemusser/minutehub/internal/app/services/groupsvc"
	"github.com/dalemusser/minutehub/internal/app/services/invitesvc"
	"github.com/dalemusser/minutehub/internal/app/services/membersvc"
	"github.com/dalemusser/minutehub/internal/app/system/mailer"
	"github.com/dalemusser/minutehub/internal/app/system/notify"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for the groups feature.
type Handler struct {
	Groups      *groupsvc.Service
	Members     *membersvc.Service
	Invitations *invitesvc.Service
	Log         *zap.Logger
}

// NewHandler constructs a groups Handler. It is called from the
// bootstrap BuildHandler, where the client, database, hub, and logger
// are already initialized. siteName and baseURL feed invitation emails.
func NewHandler(client *mongo.Client, db *mongo.Database, mail *mailer.Mailer, hub *notify.Hub, siteName, baseURL string, logger *zap.Logger) *Handler {
	invitations := invitesvc.New(client, db, mail, hub, logger)
	if siteName != "" {
		invitations.SiteName = siteName
	}
	invitations.BaseURL = baseURL

	return &Handler{
		Groups:      groupsvc.New(client, db, hub, logger),
		Members:     membersvc.New(db, hub, logger),
		Invitations: invitations,
		Log:         logger,
	}
}
