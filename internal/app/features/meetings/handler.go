// Package meetings exposes the minimal meeting surface this subsystem
// owns: creating and reading the meeting shell, and the attendee list
// (suggest, commit, remove). Minutes content is served elsewhere.
package meetings

import (
	"github.com/dalemusser/minutehub/internal/app/services/attendeesvc"
	meetingstore "github.com/dalemusser/minutehub/internal/app/store/meetings"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB        *mongo.Database
	Meetings  *meetingstore.Store
	Attendees *attendeesvc.Service
	Log       *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:        db,
		Meetings:  meetingstore.New(db),
		Attendees: attendeesvc.New(db, logger),
		Log:       logger,
	}
}
