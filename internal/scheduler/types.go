package scheduler

import (
	"time"
)

// Callback is a unit of work run on the frame goroutine. A non-nil error is
// treated as a callback failure (see package doc); it is never returned to
// the advance caller.
type Callback func() error

// ErrorReporter receives callback failures. Implementations must be
// fire-and-forget: never block, never panic back into the scheduler.
type ErrorReporter interface {
	ReportCallbackError(origin string, err error)
}

// Config controls the scheduler.
type Config struct {
	// HistorySize bounds the firing history ring. <= 0 uses a default cap
	// to avoid unbounded retention on long-running hosts.
	HistorySize int

	// TimeScale is the initial time scale for scaled timers (default 1.0).
	TimeScale float64
}

// TimerOptions are optional knobs for StartOpt.
type TimerOptions struct {
	// Name labels the timer in logs, events and history. Optional.
	Name string

	// UseUnscaledTime advances the timer by the raw frame delta, bypassing
	// the scheduler's time scale.
	UseUnscaledTime bool
}

// Timer is a handle to a scheduled, possibly repeating callback.
//
// A Timer is either present in the registry exactly once, or absent with
// stopped == true. Fields are owned by the frame goroutine; inspect them
// only from there.
type Timer struct {
	id       uint64
	name     string
	callback Callback

	interval    float64 // seconds between firings
	remaining   float64 // seconds left until the next firing
	timesRun    int     // callback invocations so far
	repeatCount int     // 0 = repeat forever, N > 0 = stop after N firings

	useUnscaled bool
	paused      bool
	stopped     bool
}

func (t *Timer) ID() uint64       { return t.id }
func (t *Timer) Name() string     { return t.name }
func (t *Timer) Interval() float64 { return t.interval }

// Remaining reports seconds left until the next firing. Only meaningful
// while the timer is registered.
func (t *Timer) Remaining() float64 { return t.remaining }

// TimesRun reports how many times the callback has been invoked. It never
// decreases; Restart carries the prior count.
func (t *Timer) TimesRun() int { return t.timesRun }

func (t *Timer) RepeatCount() int      { return t.repeatCount }
func (t *Timer) UsesUnscaledTime() bool { return t.useUnscaled }
func (t *Timer) Paused() bool          { return t.paused }

// Stopped reports whether the timer has been removed from the registry.
func (t *Timer) Stopped() bool { return t == nil || t.stopped }

// finished reports whether a bounded timer has fired its last time.
// Finished timers stay registered but are skipped by the advance pass.
// Because Restart carries TimesRun, a finished timer stays inert even
// after Stop+Restart.
func (t *Timer) finished() bool {
	return t.repeatCount > 0 && t.timesRun >= t.repeatCount
}

// HistoryItem records one firing (or firing failure).
type HistoryItem struct {
	ID       uint64
	Name     string
	At       time.Time
	Duration time.Duration
	Error    string
}

// TimerEvent is the bus payload for timer.* events.
type TimerEvent struct {
	ID       uint64
	Name     string
	TimesRun int
	Error    string
}

// TimerInfo is a point-in-time view of one registered timer.
type TimerInfo struct {
	ID          uint64
	Name        string
	Interval    float64
	Remaining   float64
	TimesRun    int
	RepeatCount int
	Unscaled    bool
	Paused      bool
}

// Snapshot is a point-in-time view of the scheduler. Take it on the frame
// goroutine; only the history ring is safe to copy from elsewhere.
type Snapshot struct {
	TimeScale        float64
	Timers           []TimerInfo
	VariableQueueLen int
	FixedQueueLen    int
	History          []HistoryItem
}
