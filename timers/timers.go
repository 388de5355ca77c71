// Package timers holds the timer patterns shared by the session guard and the
// dashboard refresher: a resettable one-shot timer where arming again cancels
// the previous run, and a repeating task cancelled on teardown.
package timers

import (
	"context"
	"sync"
	"time"
)

// Resettable fires a callback once after a delay. Reset re-arms it, cancelling
// any pending fire, so at most one timer of a given purpose is live.
type Resettable struct {
	mu    sync.Mutex
	d     time.Duration
	fn    func()
	timer *time.Timer
}

func NewResettable(d time.Duration, fn func()) *Resettable {
	return &Resettable{d: d, fn: fn}
}

// Reset arms the timer, replacing any pending fire.
func (r *Resettable) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = time.AfterFunc(r.d, r.fn)
}

// Stop cancels the pending fire, if any.
func (r *Resettable) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

// Interval runs fn every d until ctx is cancelled. It runs fn once
// immediately, then on each tick.
func Interval(ctx context.Context, d time.Duration, fn func(context.Context)) {
	fn(ctx)
	ticker := time.NewTicker(d)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}
