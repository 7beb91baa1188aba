package hostloop

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"framesched/internal/scheduler"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestConfigDefaults(t *testing.T) {
	t.Parallel()
	c := Config{}.withDefaults()
	if c.FrameRate != 60 || c.FixedStep != 20*time.Millisecond || c.MaxFrameDelta != 250*time.Millisecond {
		t.Fatalf("defaults: %+v", c)
	}

	c = Config{FrameRate: 144, FixedStep: time.Millisecond, MaxFrameDelta: time.Second}.withDefaults()
	if c.FrameRate != 144 || c.FixedStep != time.Millisecond || c.MaxFrameDelta != time.Second {
		t.Fatalf("explicit values overwritten: %+v", c)
	}
}

func TestLoopDrivesBothPhases(t *testing.T) {
	t.Parallel()
	sched := scheduler.New(scheduler.Config{}, discardLogger())

	var varFires, fixFires atomic.Int64
	sched.Every(func() error { varFires.Add(1); return nil }, 0)

	// Re-arming fixed-phase probe: each drain re-enqueues itself.
	var probe func() error
	probe = func() error {
		fixFires.Add(1)
		sched.EnqueueNextFixedTick(probe)
		return nil
	}
	sched.EnqueueNextFixedTick(probe)

	l := New(sched, Config{FrameRate: 200, FixedStep: 5 * time.Millisecond}, discardLogger())
	l.Start(context.Background())
	time.Sleep(150 * time.Millisecond)
	l.Stop()

	if varFires.Load() == 0 {
		t.Fatal("variable phase never ran")
	}
	if fixFires.Load() == 0 {
		t.Fatal("fixed phase never ran")
	}
}

func TestSetTimeScaleAppliesInPhase(t *testing.T) {
	t.Parallel()
	sched := scheduler.New(scheduler.Config{}, discardLogger())
	l := New(sched, Config{}, discardLogger())

	l.SetTimeScale(0.5)
	if sched.TimeScale() != 1.0 {
		t.Fatal("scale must not change before the next variable advance")
	}
	sched.AdvanceVariable(0)
	if sched.TimeScale() != 0.5 {
		t.Fatalf("scale = %v after advance, want 0.5", sched.TimeScale())
	}
}

func TestLoopStartStopIdempotent(t *testing.T) {
	t.Parallel()
	sched := scheduler.New(scheduler.Config{}, discardLogger())
	l := New(sched, Config{FrameRate: 100}, discardLogger())

	l.Stop() // stop before start is a no-op

	ctx := context.Background()
	l.Start(ctx)
	l.Start(ctx) // second start is a no-op
	l.Stop()
	l.Stop() // second stop is a no-op

	// restartable after stop
	l.Start(ctx)
	l.Stop()
}

func TestLoopStopsOnContextCancel(t *testing.T) {
	t.Parallel()
	sched := scheduler.New(scheduler.Config{}, discardLogger())
	l := New(sched, Config{FrameRate: 100}, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	l.Start(ctx)
	cancel()
	done := make(chan struct{})
	go func() {
		l.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop after context cancel")
	}
}
