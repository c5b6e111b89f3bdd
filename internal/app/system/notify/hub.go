// Package notify distributes lightweight change signals for group,
// membership, and invitation records.
//
// Signals carry only which record set changed and the scope (group id,
// invitee email) — never payloads. Subscribers re-query through the
// stores, so a missed or coalesced signal costs freshness, not
// correctness.
//
// Services publish to the in-process hub after their own writes; the
// change-stream watcher feeds the same hub with writes made by other
// processes when the deployment supports it.
package notify

import (
	"sync"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Record sets a signal can refer to.
const (
	SetGroups      = "groups"
	SetMemberships = "group_memberships"
	SetInvitations = "group_invitations"
)

// Signal says "something in this record set changed" for a scope.
type Signal struct {
	Set     string             // SetGroups, SetMemberships, SetInvitations
	GroupID primitive.ObjectID // zero when not group-scoped
	Email   string             // normalized invitee email; "" when not invitation-scoped
}

// Filter selects which signals a subscriber receives. Zero fields match
// everything in their dimension.
type Filter struct {
	GroupIDs []primitive.ObjectID // non-empty: only these groups
	Email    string               // non-empty: only invitations for this email
}

func (f Filter) matches(s Signal) bool {
	if len(f.GroupIDs) > 0 && !s.GroupID.IsZero() {
		found := false
		for _, id := range f.GroupIDs {
			if id == s.GroupID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Email != "" && s.Email != "" && f.Email != s.Email {
		return false
	}
	return true
}

// subscriberBuffer bounds each subscriber's channel. Full buffers drop
// signals rather than block publishers; droppers are logged.
const subscriberBuffer = 16

// Subscription is a registered signal receiver. Read from C until it is
// closed by Close.
type Subscription struct {
	C      <-chan Signal
	id     string
	ch     chan Signal
	hub    *Hub
	filter Filter
}

// Close unregisters the subscription and closes C.
func (s *Subscription) Close() {
	s.hub.unsubscribe(s.id)
}

// Hub fans signals out to subscribers. Safe for concurrent use.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]*Subscription
	log  *zap.Logger
}

// NewHub returns an empty hub.
func NewHub(log *zap.Logger) *Hub {
	return &Hub{subs: make(map[string]*Subscription), log: log}
}

// Subscribe registers a receiver for signals matching the filter.
func (h *Hub) Subscribe(filter Filter) *Subscription {
	ch := make(chan Signal, subscriberBuffer)
	sub := &Subscription{
		C:      ch,
		id:     uuid.NewString(),
		ch:     ch,
		hub:    h,
		filter: filter,
	}
	h.mu.Lock()
	h.subs[sub.id] = sub
	h.mu.Unlock()
	return sub
}

func (h *Hub) unsubscribe(id string) {
	h.mu.Lock()
	sub, ok := h.subs[id]
	if ok {
		delete(h.subs, id)
	}
	h.mu.Unlock()
	if ok {
		close(sub.ch)
	}
}

// Publish delivers the signal to every matching subscriber without
// blocking. A subscriber that can't keep up loses the signal; it will
// re-sync on its next delivered one.
func (h *Hub) Publish(s Signal) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs {
		if !sub.filter.matches(s) {
			continue
		}
		select {
		case sub.ch <- s:
		default:
			h.log.Debug("dropping signal for slow subscriber",
				zap.String("set", s.Set),
				zap.String("subscriber", sub.id))
		}
	}
}

// SubscriberCount reports the number of active subscriptions.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
