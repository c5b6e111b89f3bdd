// Package events streams change signals to the SPA over SSE. Clients
// re-fetch on every event rather than applying payloads, so the stream
// only says which record set changed.
package events

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dalemusser/minutehub/internal/app/features/shared"
	membershipstore "github.com/dalemusser/minutehub/internal/app/store/memberships"
	"github.com/dalemusser/minutehub/internal/app/system/auth"
	"github.com/dalemusser/minutehub/internal/app/system/faults"
	"github.com/dalemusser/minutehub/internal/app/system/normalize"
	"github.com/dalemusser/minutehub/internal/app/system/notify"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Hub         *notify.Hub
	Memberships *membershipstore.Store
	Log         *zap.Logger
}

func NewHandler(db *mongo.Database, hub *notify.Hub, logger *zap.Logger) *Handler {
	return &Handler{
		Hub:         hub,
		Memberships: membershipstore.New(db),
		Log:         logger,
	}
}

// changeEvent is the SSE data payload.
type changeEvent struct {
	Set     string `json:"set"`
	GroupID string `json:"group_id,omitempty"`
	Email   string `json:"email,omitempty"`
}

// HandleStream handles GET /events. The subscription is scoped to the
// groups the user belongs to at connect time plus invitations for their
// email; after joining or leaving groups the client reconnects to pick
// up the new scope. Bursts are coalesced before they reach the wire.
func (h *Handler) HandleStream(w http.ResponseWriter, r *http.Request) {
	actor, err := shared.ActorID(r)
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	u, _ := auth.CurrentUser(r)

	flusher, ok := w.(http.Flusher)
	if !ok {
		shared.WriteError(w, h.Log, faults.New(faults.Dependency, "streaming unsupported"))
		return
	}

	groupIDs, err := h.Memberships.ListGroupIDsForUser(r.Context(), actor)
	if err != nil {
		shared.WriteError(w, h.Log, faults.Wrap(faults.Dependency, err))
		return
	}

	sub := h.Hub.Subscribe(notify.Filter{
		GroupIDs: groupIDs,
		Email:    normalize.Email(u.Email),
	})
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	// Client-side reconnect delay.
	fmt.Fprint(w, "retry: 3000\n\n")
	flusher.Flush()

	notify.Coalesce(r.Context(), sub, notify.DefaultDebounce, func(s notify.Signal) {
		ev := changeEvent{Set: s.Set, Email: s.Email}
		if !s.GroupID.IsZero() {
			ev.GroupID = s.GroupID.Hex()
		}
		data, err := json.Marshal(ev)
		if err != nil {
			return
		}
		fmt.Fprintf(w, "event: change\ndata: %s\n\n", data)
		flusher.Flush()
	})
}
