// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	authemailfeature "github.com/dalemusser/minutehub/internal/app/features/authemail"
	eventsfeature "github.com/dalemusser/minutehub/internal/app/features/events"
	groupsfeature "github.com/dalemusser/minutehub/internal/app/features/groups"
	healthfeature "github.com/dalemusser/minutehub/internal/app/features/health"
	invitationsfeature "github.com/dalemusser/minutehub/internal/app/features/invitations"
	meetingsfeature "github.com/dalemusser/minutehub/internal/app/features/meetings"
	userstore "github.com/dalemusser/minutehub/internal/app/store/users"
	"github.com/dalemusser/minutehub/internal/app/system/auth"
	"github.com/dalemusser/minutehub/internal/app/system/mailer"
	"github.com/dalemusser/minutehub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed. MinuteHub serves a JSON API for a
// single-page client: passwordless sign-in under /auth, group and roster
// management under /groups, the invitee's view under /invitations,
// meetings and attendees under /meetings, and the SSE change feed under
// /events.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Fetch fresh user data on each request so display-name changes and
	// deleted accounts take effect without re-login.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.MongoDatabase).FetchUser)

	mail := mailer.New(mailer.Config{
		Host:     appCfg.MailSMTPHost,
		Port:     appCfg.MailSMTPPort,
		Username: appCfg.MailSMTPUser,
		Password: appCfg.MailSMTPPass,
		From:     appCfg.MailFromName + " <" + appCfg.MailFrom + ">",
	}, logger)
	if !mail.Enabled() {
		logger.Warn("SMTP host not configured; outbound email disabled")
	}

	db := deps.MongoDatabase
	client := deps.MongoClient

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if signed in.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators.
	healthHandler := healthfeature.NewHandler(client, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Passwordless sign-in: request-code, verify-code, magic link, /me.
	authHandler := authemailfeature.NewHandler(db, mail, sessionMgr, appCfg.SiteName, appCfg.BaseURL, appCfg.EmailVerifyExpiry, logger)
	r.With(middleware.Timeout(timeouts.Medium())).Mount("/auth", authemailfeature.Routes(authHandler, sessionMgr))

	// Groups: lifecycle, join-by-code, roster, group-scoped invitations.
	// The group routes get the long budget: delete cascades across
	// memberships, invitations, and meetings.
	groupsHandler := groupsfeature.NewHandler(client, db, mail, notifyHub, appCfg.SiteName, appCfg.BaseURL, logger)
	r.With(middleware.Timeout(timeouts.Long())).Mount("/groups", groupsfeature.Routes(groupsHandler, sessionMgr))

	// Invitations: the signed-in user's pending invitations and the
	// accept/decline/cancel transitions.
	invitationsHandler := invitationsfeature.NewHandler(client, db, mail, notifyHub, appCfg.SiteName, appCfg.BaseURL, logger)
	r.With(middleware.Timeout(timeouts.Medium())).Mount("/invitations", invitationsfeature.Routes(invitationsHandler, sessionMgr))

	// Meetings and attendee resolution.
	meetingsHandler := meetingsfeature.NewHandler(db, logger)
	r.With(middleware.Timeout(timeouts.Medium())).Mount("/meetings", meetingsfeature.Routes(meetingsHandler, sessionMgr))

	// SSE change feed for the SPA.
	eventsHandler := eventsfeature.NewHandler(db, notifyHub, logger)
	r.Mount("/events", eventsfeature.Routes(eventsHandler, sessionMgr))

	return r, nil
}
