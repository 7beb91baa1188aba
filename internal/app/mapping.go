package app

import (
	"fmt"
	"strings"

	"framesched/internal/config"
	"framesched/internal/hostloop"
	"framesched/internal/journal"
	"framesched/internal/logging"
	"framesched/internal/wallclock"
)

func mapLoggingConfig(cfg *config.Config) logging.Config {
	return logging.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logging.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	}
}

func mapJournalConfig(cfg *config.Config) (journal.Config, bool, error) {
	if cfg.Journal == nil {
		return journal.Config{}, false, nil
	}
	driver := strings.ToLower(strings.TrimSpace(cfg.Journal.Driver))
	if driver == "" || driver == "none" {
		return journal.Config{}, false, nil
	}
	busy, err := config.ParseDurationField("journal.busy_timeout", cfg.Journal.BusyTimeout)
	if err != nil {
		return journal.Config{}, false, err
	}
	if strings.TrimSpace(cfg.Journal.Path) == "" {
		return journal.Config{}, false, fmt.Errorf("journal.path required for driver %q", driver)
	}
	return journal.Config{
		Driver:      driver,
		Path:        cfg.Journal.Path,
		BusyTimeout: busy,
	}, true, nil
}

func mapLoopConfig(cfg *config.Config) (hostloop.Config, error) {
	fixedStep, err := config.ParseDurationField("loop.fixed_step", cfg.Loop.FixedStep)
	if err != nil {
		return hostloop.Config{}, err
	}
	maxDelta, err := config.ParseDurationField("loop.max_frame_delta", cfg.Loop.MaxFrameDelta)
	if err != nil {
		return hostloop.Config{}, err
	}
	return hostloop.Config{
		FrameRate:     cfg.Loop.FrameRate,
		FixedStep:     fixedStep,
		MaxFrameDelta: maxDelta,
	}, nil
}

// validate is the hot-reload gate: a config that fails here is rejected
// before commit, keeping the previous one live.
func validate(cfg *config.Config) error {
	if cfg.Scheduler.HistorySize < 0 {
		return fmt.Errorf("scheduler.history_size must be >= 0")
	}
	if cfg.Scheduler.TimeScale < 0 {
		return fmt.Errorf("scheduler.time_scale must be >= 0")
	}
	if cfg.Loop.FrameRate < 0 {
		return fmt.Errorf("loop.frame_rate must be >= 0")
	}
	if _, err := mapLoopConfig(cfg); err != nil {
		return err
	}
	if _, _, err := mapJournalConfig(cfg); err != nil {
		return err
	}
	if cfg.Diagnostics.RatePerSec < 0 {
		return fmt.Errorf("diagnostics.rate_per_sec must be >= 0")
	}
	seen := make(map[string]bool, len(cfg.Wallclock))
	for i, e := range cfg.Wallclock {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return fmt.Errorf("wallclock[%d].name required", i)
		}
		if seen[name] {
			return fmt.Errorf("wallclock[%d]: duplicate name %q", i, name)
		}
		seen[name] = true
		if err := wallclock.ValidateSpec(e.Spec); err != nil {
			return fmt.Errorf("wallclock[%d] (%s): invalid spec %q: %w", i, name, e.Spec, err)
		}
	}
	return nil
}
