package app

import (
	"testing"
	"time"

	"framesched/internal/config"
)

func baseConfig() *config.Config {
	return &config.Config{}
}

func TestMapLoopConfig(t *testing.T) {
	t.Parallel()
	cfg := baseConfig()
	cfg.Loop = config.LoopConfig{FrameRate: 30, FixedStep: "10ms", MaxFrameDelta: "1s"}

	lc, err := mapLoopConfig(cfg)
	if err != nil {
		t.Fatalf("mapLoopConfig: %v", err)
	}
	if lc.FrameRate != 30 || lc.FixedStep != 10*time.Millisecond || lc.MaxFrameDelta != time.Second {
		t.Fatalf("loop config: %+v", lc)
	}

	cfg.Loop.FixedStep = "ten milliseconds"
	if _, err := mapLoopConfig(cfg); err == nil {
		t.Fatal("expected error for bad duration")
	}
}

func TestMapJournalConfig(t *testing.T) {
	t.Parallel()
	cfg := baseConfig()

	if _, enabled, err := mapJournalConfig(cfg); err != nil || enabled {
		t.Fatalf("omitted journal: enabled=%v err=%v", enabled, err)
	}

	cfg.Journal = &config.JournalConfig{Driver: "none"}
	if _, enabled, _ := mapJournalConfig(cfg); enabled {
		t.Fatal("driver none must disable the journal")
	}

	cfg.Journal = &config.JournalConfig{Driver: "file"}
	if _, _, err := mapJournalConfig(cfg); err == nil {
		t.Fatal("missing path must be rejected")
	}

	cfg.Journal = &config.JournalConfig{Driver: "SQLite", Path: "./j.db", BusyTimeout: "2s"}
	jc, enabled, err := mapJournalConfig(cfg)
	if err != nil || !enabled {
		t.Fatalf("sqlite journal: enabled=%v err=%v", enabled, err)
	}
	if jc.Driver != "sqlite" || jc.BusyTimeout != 2*time.Second {
		t.Fatalf("journal config: %+v", jc)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr bool
	}{
		{name: "empty config ok", mutate: func(*config.Config) {}},
		{name: "negative history", mutate: func(c *config.Config) { c.Scheduler.HistorySize = -1 }, wantErr: true},
		{name: "negative time scale", mutate: func(c *config.Config) { c.Scheduler.TimeScale = -0.5 }, wantErr: true},
		{name: "negative frame rate", mutate: func(c *config.Config) { c.Loop.FrameRate = -60 }, wantErr: true},
		{name: "bad fixed step", mutate: func(c *config.Config) { c.Loop.FixedStep = "soon" }, wantErr: true},
		{name: "negative diag rate", mutate: func(c *config.Config) { c.Diagnostics.RatePerSec = -1 }, wantErr: true},
		{name: "journal without path", mutate: func(c *config.Config) {
			c.Journal = &config.JournalConfig{Driver: "file"}
		}, wantErr: true},
		{name: "wallclock unnamed", mutate: func(c *config.Config) {
			c.Wallclock = []config.WallclockEntry{{Spec: "@hourly"}}
		}, wantErr: true},
		{name: "wallclock duplicate name", mutate: func(c *config.Config) {
			c.Wallclock = []config.WallclockEntry{
				{Name: "x", Spec: "@hourly"},
				{Name: "x", Spec: "@daily"},
			}
		}, wantErr: true},
		{name: "wallclock bad spec", mutate: func(c *config.Config) {
			c.Wallclock = []config.WallclockEntry{{Name: "x", Spec: "whenever"}}
		}, wantErr: true},
		{name: "wallclock ok", mutate: func(c *config.Config) {
			c.Wallclock = []config.WallclockEntry{
				{Name: "x", Spec: "*/5 * * * *"},
				{Name: "y", Spec: "@every 30s"},
			}
		}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseConfig()
			tt.mutate(cfg)
			err := validate(cfg)
			if tt.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("validate: %v", err)
			}
		})
	}
}
