package app

import (
	"context"
	"strings"

	"framesched/internal/config"
	logx "framesched/pkg/logx"
)

// reloadLoop applies validated config updates. Frame-side state is only
// mutated from the frame goroutine, so scalar changes (time scale) are
// marshalled through the scheduler's deferred queue rather than applied
// directly.
func (a *App) reloadLoop(ctx context.Context, sub chan *config.Config) {
	lastApplied := a.cfgm.Get()
	for {
		select {
		case <-ctx.Done():
			return
		case newCfg, ok := <-sub:
			if !ok {
				return
			}
			// Coalesce bursts: keep only the latest config.
			for {
				select {
				case newer := <-sub:
					if newer != nil {
						newCfg = newer
					}
				default:
					goto APPLY
				}
			}
		APPLY:
			sections, attrs := config.SummarizeChange(lastApplied, newCfg)
			if len(sections) == 0 {
				a.log.Debug("config reload received, but no effective changes detected")
				lastApplied = newCfg
				continue
			}
			fields := append([]logx.Field{logx.String("changed", strings.Join(sections, ","))}, attrs...)
			a.log.Debug("config change summary", fields...)

			a.apply(ctx, lastApplied, newCfg, sections)
			lastApplied = newCfg

			a.log.Info("config reloaded", fields...)
		}
	}
}

func (a *App) apply(ctx context.Context, oldCfg, newCfg *config.Config, sections []string) {
	changed := func(name string) bool {
		for _, s := range sections {
			if s == name {
				return true
			}
		}
		return false
	}

	if changed("logging") {
		a.logs.Apply(logx.Config{
			Level:   newCfg.Logging.Level,
			Console: newCfg.Logging.Console,
			File: logx.FileConfig{
				Enabled: newCfg.Logging.File.Enabled,
				Path:    newCfg.Logging.File.Path,
			},
		})
		a.slogs.Apply(mapLoggingConfig(newCfg))
	}

	if changed("journal") {
		a.log.Warn("journal config changed; restart required for changes to take effect")
	}

	if changed("scheduler") && a.destroyOnReload {
		// Tear the whole frame stack down and rebuild from the new config.
		// Registered timers do not survive this.
		a.log.Info("scheduler config changed; rebuilding (destroy_on_reload)")
		a.rebuild(ctx, newCfg)
		return
	}

	if changed("scheduler") {
		if oldCfg != nil && oldCfg.Scheduler.HistorySize != newCfg.Scheduler.HistorySize {
			a.log.Warn("scheduler.history_size changed; restart required for changes to take effect")
		}
		// Time scale takes effect on the next variable advance, in-phase.
		a.loop.SetTimeScale(newCfg.Scheduler.TimeScale)
	}

	if changed("diagnostics") {
		// The sink is swapped on the frame thread so in-flight advances
		// never observe a half-built reporter.
		sink := a.newSink(newCfg)
		sched := a.sched
		sched.EnqueueNextVariableTick(func() error {
			sched.SetReporter(sink)
			return nil
		})
		a.sink = sink
	}

	if changed("loop") {
		a.restartLoop(ctx, newCfg)
	}

	if changed("wallclock") {
		a.syncWallclock(newCfg)
	}
}

// rebuild replaces the frame stack wholesale. Only called from the reload
// goroutine, which owns loop and bridge lifecycles after Start.
func (a *App) rebuild(ctx context.Context, cfg *config.Config) {
	a.bridge.Stop()
	a.loop.Stop()
	if err := a.buildFrameStack(cfg); err != nil {
		a.log.Error("frame stack rebuild failed; scheduler is down until next valid reload", logx.Err(err))
		return
	}
	a.loop.Start(ctx)
	a.bridge.Start()
}

// restartLoop applies new frame-rate settings. The scheduler instance and its
// timers are kept; only the driver restarts.
func (a *App) restartLoop(ctx context.Context, cfg *config.Config) {
	loopCfg, err := mapLoopConfig(cfg)
	if err != nil {
		a.log.Warn("invalid loop config; keeping previous", logx.Err(err))
		return
	}
	a.loop.Stop()
	a.loop = a.newLoop(loopCfg)
	a.loop.Start(ctx)
}

// syncWallclock re-registers cron schedules from scratch. Entry count is
// small; diffing is not worth it.
func (a *App) syncWallclock(cfg *config.Config) {
	a.bridge.Stop()
	a.bridge = a.newBridge()
	for _, e := range cfg.Wallclock {
		if _, err := a.bridge.Add(e.Name, e.Spec, a.wallclockJob(e)); err != nil {
			a.log.Warn("wallclock schedule rejected",
				logx.String("name", e.Name), logx.String("spec", e.Spec), logx.Err(err))
		}
	}
	a.bridge.Start()
}
