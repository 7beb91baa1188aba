// Package hostloop drives a scheduler from a real-time frame loop.
//
// One goroutine runs both phases: the variable phase ticks at the target
// frame rate with the measured real delta, and the fixed phase runs off an
// accumulator at a constant step. This mirrors a game-style main loop
// (variable render tick + fixed simulation tick) and guarantees the
// scheduler's single-goroutine contract.
package hostloop

import (
	"context"
	"io"
	"log/slog"
	"runtime/debug"
	"time"

	"framesched/internal/scheduler"
)

// Config controls the frame driver.
type Config struct {
	// FrameRate is the target variable-phase rate in Hz (default 60).
	FrameRate int

	// FixedStep is the fixed-phase period (default 20ms).
	FixedStep time.Duration

	// MaxFrameDelta clamps the measured variable delta (default 250ms) so
	// a stalled host catches up gradually instead of firing everything in
	// one giant step.
	MaxFrameDelta time.Duration
}

func (c Config) withDefaults() Config {
	if c.FrameRate <= 0 {
		c.FrameRate = 60
	}
	if c.FixedStep <= 0 {
		c.FixedStep = 20 * time.Millisecond
	}
	if c.MaxFrameDelta <= 0 {
		c.MaxFrameDelta = 250 * time.Millisecond
	}
	return c
}

// Loop owns the frame goroutine. Construct with New, then Start/Stop.
type Loop struct {
	log   *slog.Logger
	sched *scheduler.Scheduler
	cfg   Config

	cancel  context.CancelFunc
	stopped chan struct{}

	frames uint64
}

func New(sched *scheduler.Scheduler, cfg Config, log *slog.Logger) *Loop {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Loop{
		log:   log,
		sched: sched,
		cfg:   cfg.withDefaults(),
	}
}

// Start launches the frame goroutine. Calling Start on a running loop is a
// no-op.
func (l *Loop) Start(ctx context.Context) {
	if l.cancel != nil {
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.stopped = make(chan struct{})

	go l.run(runCtx)
	l.log.Info("host loop started",
		slog.Int("frame_rate", l.cfg.FrameRate),
		slog.Duration("fixed_step", l.cfg.FixedStep))
}

// Stop halts the loop and waits for the frame goroutine to exit.
func (l *Loop) Stop() {
	if l.cancel == nil {
		return
	}
	l.cancel()
	<-l.stopped
	l.cancel = nil
	l.log.Info("host loop stopped", slog.Uint64("frames", l.frames))
}

// SetTimeScale forwards a new time scale to the scheduler. The change is
// marshalled through the deferred queue so it lands in-phase, never mid-pass.
func (l *Loop) SetTimeScale(scale float64) {
	l.sched.EnqueueNextVariableTick(func() error {
		l.sched.SetTimeScale(scale)
		return nil
	})
}

func (l *Loop) run(ctx context.Context) {
	defer close(l.stopped)

	frameDur := time.Second / time.Duration(l.cfg.FrameRate)
	ticker := time.NewTicker(frameDur)
	defer ticker.Stop()

	last := time.Now()
	var fixedAcc time.Duration

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			if dt > l.cfg.MaxFrameDelta {
				dt = l.cfg.MaxFrameDelta
			}

			l.step(dt, &fixedAcc)
			l.frames++
		}
	}
}

// step runs one frame: the variable phase with the measured delta, then as
// many fixed phases as the accumulator affords. Panics below the scheduler's
// own containment (i.e. bugs in the scheduler, not in callbacks) are logged
// and the loop keeps running.
func (l *Loop) step(dt time.Duration, fixedAcc *time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("panic in frame step",
				slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
		}
	}()

	l.sched.AdvanceVariable(dt.Seconds())

	*fixedAcc += dt
	for *fixedAcc >= l.cfg.FixedStep {
		l.sched.AdvanceFixed()
		*fixedAcc -= l.cfg.FixedStep
	}
}
