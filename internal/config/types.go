package config

// Config is the host configuration. Files may be JSON or YAML; both go
// through the same strict decoder (unknown keys are rejected).
type Config struct {
	Logging   LoggingConfig   `json:"logging"`
	Scheduler SchedulerConfig `json:"scheduler"`
	Loop      LoopConfig      `json:"loop"`

	Diagnostics DiagnosticsConfig `json:"diagnostics,omitempty"`

	// Journal enables the optional callback-failure journal. Omitted or
	// driver "none" disables it. Timer state itself is never persisted.
	Journal *JournalConfig `json:"journal,omitempty"`

	// Wallclock lists cron-style schedules bridged onto the frame thread.
	Wallclock []WallclockEntry `json:"wallclock,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// SchedulerConfig controls the timer registry.
type SchedulerConfig struct {
	// HistorySize bounds the firing history ring (default 200).
	HistorySize int `json:"history_size,omitempty"`

	// TimeScale is the initial delta multiplier for scaled timers
	// (default 1.0).
	TimeScale float64 `json:"time_scale,omitempty"`

	// DestroyOnReload controls what a config hot-reload does to the
	// scheduler instance: false keeps it (registered timers survive the
	// reload), true tears it down and rebuilds from scratch. Read once at
	// startup; changing it requires a restart.
	DestroyOnReload bool `json:"destroy_on_reload,omitempty"`
}

// LoopConfig controls the frame driver.
//
// Durations are Go duration strings (e.g. "20ms").
type LoopConfig struct {
	// FrameRate is the target variable-phase rate in frames per second
	// (default 60).
	FrameRate int `json:"frame_rate,omitempty"`

	// FixedStep is the fixed-phase period (default "20ms").
	FixedStep string `json:"fixed_step,omitempty"`

	// MaxFrameDelta clamps the variable delta after stalls (default
	// "250ms") so a suspended host doesn't fire every timer at once.
	MaxFrameDelta string `json:"max_frame_delta,omitempty"`
}

// DiagnosticsConfig controls callback-failure reporting policy.
type DiagnosticsConfig struct {
	// Verbose logs every failure at Error; otherwise failures log at Warn.
	Verbose bool `json:"verbose,omitempty"`

	// RatePerSec caps failure log lines per second (default 5). Failures
	// over the cap are counted, not printed.
	RatePerSec int `json:"rate_per_sec,omitempty"`
}

// JournalConfig mirrors journal.Config.
//
// Example:
//
//	"journal": { "driver": "file", "path": "./framesched_journal" }
type JournalConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string (sqlite)
}

// WallclockEntry is a cron schedule the demo host bridges onto the frame
// thread. Message is what the fired job logs; it keeps the demo
// configuration-driven without embedding code in config.
type WallclockEntry struct {
	Name    string `json:"name"`
	Spec    string `json:"spec"`
	Message string `json:"message,omitempty"`
}
