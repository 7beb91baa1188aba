package scheduler

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"
)

// AdvanceVariable runs one variable-rate phase: it drains the variable
// deferred queue, then counts every registered timer down by the frame
// delta and fires those that elapsed. dt is the raw (unscaled) frame delta
// in seconds; scaled timers advance by dt * TimeScale.
//
// Frame goroutine only.
func (s *Scheduler) AdvanceVariable(dt float64) {
	s.drain(&s.varQ, "variable")

	scaled := dt * s.timeScale

	// Stable membership snapshot: callbacks may Stop any timer (including
	// the firing one) or Start new ones without invalidating this pass.
	// New timers wait for the next advance; stopped ones are skipped below.
	snap := append(s.scratch[:0], s.timers...)

	for i := len(snap) - 1; i >= 0; i-- {
		t := snap[i]
		if t.stopped || t.paused || t.finished() {
			continue
		}
		d := scaled
		if t.useUnscaled {
			d = dt
		}
		t.remaining -= d
		if t.remaining > 0 {
			continue
		}
		s.fire(t)
	}

	// Drop callback refs so stopped timers don't linger until next pass.
	for i := range snap {
		snap[i] = nil
	}
	s.scratch = snap[:0]
}

// AdvanceFixed runs one fixed-rate phase: it drains the fixed deferred
// queue. Timers only live on the variable phase.
//
// Frame goroutine only.
func (s *Scheduler) AdvanceFixed() {
	s.drain(&s.fixQ, "fixed")
}

// fire invokes a timer whose countdown elapsed, then reschedules or parks
// it per its repeat count. Overshoot carries into the next period. A failed
// invocation removes the timer; the series does not survive one bad firing.
func (s *Scheduler) fire(t *Timer) {
	start := time.Now()
	err := invoke(t.callback)
	t.timesRun++
	dur := time.Since(start)

	item := HistoryItem{ID: t.id, Name: t.name, At: start, Duration: dur}

	if err != nil {
		item.Error = err.Error()
		s.history.add(item)
		s.report(timerOrigin(t), err)
		s.log.Warn("timer removed after failed firing",
			slog.Uint64("id", t.id), slog.String("name", t.name),
			slog.Int("runs", t.timesRun), slog.Any("err", err))
		if s.remove(t) {
			t.stopped = true
		}
		s.publish("timer.failed", t, item.Error)
		return
	}

	if t.repeatCount == 0 || t.timesRun < t.repeatCount {
		t.remaining += t.interval
	} else {
		// Fired its last time. Stays registered but inert.
		t.remaining = 0
	}

	s.history.add(item)
	s.log.Debug("timer fired",
		slog.Uint64("id", t.id), slog.String("name", t.name),
		slog.Int("runs", t.timesRun), slog.Duration("dur", dur))
	s.publish("timer.fired", t, "")
}

// drain swap-steals the queue backlog and invokes it in enqueue order.
// Callbacks enqueued during the drain land in the next one. Failures are
// isolated per callback; the rest of the batch still runs.
func (s *Scheduler) drain(q *deferredQueue, phase string) {
	batch := q.steal()
	if len(batch) == 0 {
		return
	}
	for _, cb := range batch {
		if err := invoke(cb); err != nil {
			s.report(phase+" queue callback", err)
		}
	}
}

// invoke runs a callback with panic containment. A panic is converted into
// an error carrying the stack so the reporting path stays uniform.
func invoke(cb Callback) (err error) {
	if cb == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("callback panic: %v\n%s", r, debug.Stack())
		}
	}()
	return cb()
}

func timerOrigin(t *Timer) string {
	if t.name != "" {
		return "timer " + t.name
	}
	return fmt.Sprintf("timer #%d", t.id)
}
