package scheduler

import (
	"io"
	"log/slog"
	"time"

	"framesched/internal/eventbus"
)

const defaultHistorySize = 200

// Scheduler owns the timer registry and the two deferred queues. Construct
// one per host loop with New and drive it from a single goroutine; there is
// no process-wide instance.
type Scheduler struct {
	log *slog.Logger
	bus eventbus.Bus
	rep ErrorReporter

	cfg       Config
	timeScale float64

	// Registry, insertion order. Frame goroutine only.
	timers  []*Timer
	scratch []*Timer // reused advance-pass snapshot
	seq     uint64

	varQ deferredQueue
	fixQ deferredQueue

	history historyRing
}

func New(cfg Config, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	scale := cfg.TimeScale
	if scale == 0 {
		scale = 1.0
	}
	size := cfg.HistorySize
	if size <= 0 {
		size = defaultHistorySize
	}
	return &Scheduler{
		log:       log,
		cfg:       cfg,
		timeScale: scale,
		history:   historyRing{cap: size},
	}
}

// SetBus installs an event bus for timer.* lifecycle events. Optional.
func (s *Scheduler) SetBus(bus eventbus.Bus) { s.bus = bus }

// SetReporter installs the callback-failure sink. Without one, failures are
// logged at Warn.
func (s *Scheduler) SetReporter(rep ErrorReporter) { s.rep = rep }

// SetTimeScale changes the delta multiplier applied to scaled timers on the
// next AdvanceVariable. Unscaled timers are unaffected.
func (s *Scheduler) SetTimeScale(scale float64) {
	if scale < 0 {
		scale = 0
	}
	s.timeScale = scale
}

func (s *Scheduler) TimeScale() float64 { return s.timeScale }

// Start registers a new timer that first fires after interval seconds and
// then repeats until it has fired repeatCount times (0 = forever). The
// interval is not validated: zero or negative fires on the next advance.
// Multiple independent timers may share one callback.
func (s *Scheduler) Start(cb Callback, interval float64, repeatCount int) *Timer {
	return s.StartOpt(cb, interval, repeatCount, TimerOptions{})
}

// StartOpt is Start with options.
func (s *Scheduler) StartOpt(cb Callback, interval float64, repeatCount int, opt TimerOptions) *Timer {
	if repeatCount < 0 {
		repeatCount = 0
	}
	s.seq++
	t := &Timer{
		id:          s.seq,
		name:        opt.Name,
		callback:    cb,
		interval:    interval,
		remaining:   interval,
		repeatCount: repeatCount,
		useUnscaled: opt.UseUnscaledTime,
	}
	s.timers = append(s.timers, t)
	s.log.Debug("timer started",
		slog.Uint64("id", t.id), slog.String("name", t.name),
		slog.Float64("interval", interval), slog.Int("repeat", repeatCount))
	s.publish("timer.started", t, "")
	return t
}

// After schedules a one-shot callback after delay seconds.
func (s *Scheduler) After(cb Callback, delay float64) *Timer {
	return s.Start(cb, delay, 1)
}

// Every schedules a callback repeating forever at the given interval.
func (s *Scheduler) Every(cb Callback, interval float64) *Timer {
	return s.Start(cb, interval, 0)
}

// Stop removes the timer from the registry. It reports whether a removal
// occurred: stopping nil or an already-stopped handle is a false no-op.
// Safe to call from inside a firing callback.
func (s *Scheduler) Stop(t *Timer) bool {
	if t == nil || t.stopped {
		return false
	}
	if !s.remove(t) {
		return false
	}
	t.stopped = true
	s.log.Debug("timer stopped", slog.Uint64("id", t.id), slog.String("name", t.name), slog.Int("runs", t.timesRun))
	s.publish("timer.stopped", t, "")
	return true
}

// Restart re-arms a stopped timer with a fresh countdown and re-adds it to
// the registry. It fails on nil or still-active handles (use Reset to rewind
// an active timer). TimesRun carries over.
func (s *Scheduler) Restart(t *Timer) bool {
	if t == nil || !t.stopped {
		return false
	}
	t.remaining = t.interval
	t.stopped = false
	t.paused = false
	s.timers = append(s.timers, t)
	s.log.Debug("timer restarted", slog.Uint64("id", t.id), slog.String("name", t.name))
	s.publish("timer.started", t, "")
	return true
}

// Reset rewinds the countdown to the full interval without touching registry
// membership. Resetting a stopped timer only rewinds the field; the timer
// stays out of the registry until Restart.
func (s *Scheduler) Reset(t *Timer) {
	if t == nil {
		return
	}
	t.remaining = t.interval
}

// Pause freezes the countdown until Resume. Membership is unchanged.
func (s *Scheduler) Pause(t *Timer) {
	if t == nil {
		return
	}
	t.paused = true
}

// Resume continues a paused countdown.
func (s *Scheduler) Resume(t *Timer) {
	if t == nil {
		return
	}
	t.paused = false
}

// remove drops t from the registry preserving insertion order. Reports
// whether t was present.
func (s *Scheduler) remove(t *Timer) bool {
	n := 0
	found := false
	for _, cur := range s.timers {
		if cur == t {
			found = true
			continue
		}
		s.timers[n] = cur
		n++
	}
	if !found {
		return false
	}
	s.timers[len(s.timers)-1] = nil
	s.timers = s.timers[:n]
	return true
}

func (s *Scheduler) publish(typ string, t *Timer, errMsg string) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(eventbus.Event{
		Type: typ,
		Time: time.Now(),
		Data: TimerEvent{ID: t.id, Name: t.name, TimesRun: t.timesRun, Error: errMsg},
	})
}

func (s *Scheduler) report(origin string, err error) {
	if s.rep != nil {
		s.rep.ReportCallbackError(origin, err)
		return
	}
	s.log.Warn("callback failed", slog.String("origin", origin), slog.Any("err", err))
}
