package timers

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResettable_ResetCancelsPreviousFire(t *testing.T) {
	var fires atomic.Int32
	r := NewResettable(50*time.Millisecond, func() { fires.Add(1) })

	r.Reset()
	time.Sleep(30 * time.Millisecond)
	r.Reset() // re-arm before the first fire
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(0), fires.Load(), "re-armed timer must not have fired yet")

	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(1), fires.Load(), "exactly one fire after the last reset")
}

func TestResettable_Stop(t *testing.T) {
	var fires atomic.Int32
	r := NewResettable(20*time.Millisecond, func() { fires.Add(1) })

	r.Reset()
	r.Stop()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), fires.Load())
}

func TestInterval_RunsUntilCancelled(t *testing.T) {
	var runs atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		Interval(ctx, 20*time.Millisecond, func(context.Context) { runs.Add(1) })
		close(done)
	}()

	time.Sleep(70 * time.Millisecond)
	cancel()
	<-done

	got := runs.Load()
	assert.GreaterOrEqual(t, got, int32(2), "immediate run plus at least one tick")
}
