package notify

import (
	"context"
	"time"
)

// DefaultDebounce is the quiet period used by Coalesce when the caller
// passes 0.
const DefaultDebounce = 200 * time.Millisecond

// Coalesce reads signals from sub and invokes fn at most once per burst:
// the first signal starts a debounce window, further signals extend
// nothing — they fold into the pending invocation. fn receives the most
// recent signal of the burst, which is enough because handlers re-query
// rather than apply payloads.
//
// Coalesce returns when ctx is cancelled or the subscription is closed.
// Run it in its own goroutine.
func Coalesce(ctx context.Context, sub *Subscription, debounce time.Duration, fn func(Signal)) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		pending Signal
	)
	stopTimer := func() {
		if timer != nil {
			timer.Stop()
			timer = nil
			timerC = nil
		}
	}
	defer stopTimer()

	for {
		select {
		case <-ctx.Done():
			return
		case s, ok := <-sub.C:
			if !ok {
				// Flush the tail so the last burst isn't lost.
				if timerC != nil {
					fn(pending)
				}
				return
			}
			pending = s
			if timer == nil {
				timer = time.NewTimer(debounce)
				timerC = timer.C
			}
		case <-timerC:
			stopTimer()
			fn(pending)
		}
	}
}
