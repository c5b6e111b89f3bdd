package events_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/minutehub/internal/app/features/events"
	"github.com/dalemusser/minutehub/internal/app/system/notify"
	"github.com/dalemusser/minutehub/internal/testutil"
	"go.uber.org/zap"
)

func TestHandleStream_DeliversScopedSignal(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	user := fx.CreateUser(ctx, "Alice Adams", "alice@example.com")
	g := fx.CreateGroupWithOwner(ctx, "Book Club", user.ID)

	hub := notify.NewHub(zap.NewNop())
	h := events.NewHandler(db, hub, zap.NewNop())

	streamCtx, stop := context.WithCancel(context.Background())
	req := httptest.NewRequest("GET", "/events", nil).WithContext(streamCtx)
	req = testutil.WithUser(req, testutil.AsTestUser(user.ID, user.DisplayName, user.Email))
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		h.HandleStream(rec, req)
		close(done)
	}()

	// Wait for the subscription to register before publishing.
	deadline := time.Now().Add(5 * time.Second)
	for hub.SubscriberCount() == 0 {
		if time.Now().After(deadline) {
			stop()
			t.Fatal("stream never subscribed")
		}
		time.Sleep(10 * time.Millisecond)
	}

	hub.Publish(notify.Signal{Set: notify.SetGroups, GroupID: g.ID})

	// Give the coalescer's debounce window time to flush.
	time.Sleep(3 * notify.DefaultDebounce)
	stop()
	<-done

	body := rec.Body.String()
	if !strings.Contains(body, "retry: 3000") {
		t.Error("stream should advertise a reconnect delay")
	}
	if !strings.Contains(body, "event: change") {
		t.Errorf("stream should carry a change event, got %q", body)
	}
	if !strings.Contains(body, g.ID.Hex()) {
		t.Errorf("change event should name the group, got %q", body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type: got %q, want %q", ct, "text/event-stream")
	}
}

func TestHandleStream_FiltersForeignGroups(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	user := fx.CreateUser(ctx, "Alice Adams", "alice@example.com")
	other := fx.CreateUser(ctx, "Oscar Ortiz", "oscar@example.com")
	fx.CreateGroupWithOwner(ctx, "Book Club", user.ID)
	foreign := fx.CreateGroupWithOwner(ctx, "Other Club", other.ID)

	hub := notify.NewHub(zap.NewNop())
	h := events.NewHandler(db, hub, zap.NewNop())

	streamCtx, stop := context.WithCancel(context.Background())
	req := httptest.NewRequest("GET", "/events", nil).WithContext(streamCtx)
	req = testutil.WithUser(req, testutil.AsTestUser(user.ID, user.DisplayName, user.Email))
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		h.HandleStream(rec, req)
		close(done)
	}()

	deadline := time.Now().Add(5 * time.Second)
	for hub.SubscriberCount() == 0 {
		if time.Now().After(deadline) {
			stop()
			t.Fatal("stream never subscribed")
		}
		time.Sleep(10 * time.Millisecond)
	}

	hub.Publish(notify.Signal{Set: notify.SetMemberships, GroupID: foreign.ID})

	time.Sleep(3 * notify.DefaultDebounce)
	stop()
	<-done

	if strings.Contains(rec.Body.String(), "event: change") {
		t.Errorf("signal for a foreign group should be filtered, got %q", rec.Body.String())
	}
}
