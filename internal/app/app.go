// Package app wires the framesched host together: config, logging, the
// timer scheduler, its frame driver, diagnostics, the failure journal and
// the wall-clock bridge.
package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	"framesched/internal/config"
	"framesched/internal/diag"
	"framesched/internal/eventbus"
	"framesched/internal/hostloop"
	"framesched/internal/journal"
	"framesched/internal/logging"
	"framesched/internal/scheduler"
	"framesched/internal/wallclock"
	logx "framesched/pkg/logx"
)

type App struct {
	cfgPath string
	cfgm    *config.Manager

	logs *logx.Service
	log  logx.Logger

	slogs   *logging.Service
	slogger *slog.Logger

	bus   eventbus.Bus
	store journal.Store

	// Frame-side components. Rebuilt as a unit when
	// scheduler.destroy_on_reload is set and the scheduler section changes.
	sink   *diag.Sink
	sched  *scheduler.Scheduler
	bridge *wallclock.Bridge
	loop   *hostloop.Loop

	destroyOnReload bool

	sup *supervisor
}

func New(cfgPath string) (*App, error) {
	cfgm := config.NewManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}

	logSvc, xlog := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	xlog = xlog.With(logx.String("comp", "app"))

	slogSvc, slogger := logging.New(mapLoggingConfig(cfg))

	bus := eventbus.New()

	// Journal (optional). Driver "none" or an omitted section disables it.
	var store journal.Store
	if jc, enabled, err := mapJournalConfig(cfg); err != nil {
		return nil, err
	} else if enabled {
		st, err := journal.Open(jc, xlog.With(logx.String("comp", "journal")))
		if err != nil {
			return nil, err
		}
		store = st
		if store != nil {
			xlog.Info("failure journal enabled", logx.String("driver", jc.Driver))
		}
	}

	a := &App{
		cfgPath:         cfgPath,
		cfgm:            cfgm,
		logs:            logSvc,
		log:             xlog,
		slogs:           slogSvc,
		slogger:         slogger,
		bus:             bus,
		store:           store,
		destroyOnReload: cfg.Scheduler.DestroyOnReload,
	}

	if err := a.buildFrameStack(cfg); err != nil {
		return nil, err
	}
	return a, nil
}

// Scheduler exposes the timer registry (for embedding hosts and tests).
func (a *App) Scheduler() *scheduler.Scheduler { return a.sched }

// buildFrameStack constructs the sink, scheduler, wallclock bridge and frame
// loop from cfg. Called at startup and again on destroy-on-reload rebuilds.
func (a *App) buildFrameStack(cfg *config.Config) error {
	sink := a.newSink(cfg)

	sched := scheduler.New(scheduler.Config{
		HistorySize: cfg.Scheduler.HistorySize,
		TimeScale:   cfg.Scheduler.TimeScale,
	}, a.slogger.With(slog.String("comp", "scheduler")))
	sched.SetBus(a.bus)
	sched.SetReporter(sink)
	a.sink = sink
	a.sched = sched

	bridge := a.newBridge()
	for _, e := range cfg.Wallclock {
		if _, err := bridge.Add(e.Name, e.Spec, a.wallclockJob(e)); err != nil {
			return err
		}
	}
	a.bridge = bridge

	loopCfg, err := mapLoopConfig(cfg)
	if err != nil {
		return err
	}
	a.loop = a.newLoop(loopCfg)

	// Uptime heartbeat keeps a fresh host observable without any config.
	started := time.Now()
	sched.StartOpt(func() error {
		a.slogger.Debug("heartbeat",
			slog.Duration("uptime", time.Since(started).Round(time.Second)))
		return nil
	}, 60, 0, scheduler.TimerOptions{Name: "heartbeat", UseUnscaledTime: true})
	return nil
}

func (a *App) newSink(cfg *config.Config) *diag.Sink {
	sink := diag.New(diag.Config{
		Verbose:    cfg.Diagnostics.Verbose,
		RatePerSec: cfg.Diagnostics.RatePerSec,
	}, a.slogger.With(slog.String("comp", "diag")))
	if a.store != nil {
		sink.SetJournal(a.store)
	}
	return sink
}

func (a *App) newBridge() *wallclock.Bridge {
	return wallclock.New(a.sched, a.slogger.With(slog.String("comp", "wallclock")))
}

func (a *App) newLoop(loopCfg hostloop.Config) *hostloop.Loop {
	return hostloop.New(a.sched, loopCfg, a.slogger.With(slog.String("comp", "loop")))
}

// wallclockJob builds the frame-thread job for a configured schedule. It logs
// the configured message; with no message it just logs the schedule name.
func (a *App) wallclockJob(e config.WallclockEntry) scheduler.Callback {
	name, msg := e.Name, e.Message
	return func() error {
		if msg != "" {
			a.slogger.Info(msg, slog.String("schedule", name))
		} else {
			a.slogger.Info("wallclock schedule fired", slog.String("schedule", name))
		}
		return nil
	}
}

func (a *App) Start(ctx context.Context) error {
	a.sup = newSupervisor(ctx, a.log)
	runCtx := a.sup.Context()

	a.cfgm.SetLogger(a.log.With(logx.String("comp", "config")))
	a.cfgm.SetValidator(func(_ context.Context, cfg *config.Config) error {
		return validate(cfg)
	})

	a.loop.Start(runCtx)
	a.bridge.Start()

	// Debug-level event tap; components can also subscribe themselves.
	events, unsub := a.bus.Subscribe(128)
	a.sup.Go0("eventbus.log", func(c context.Context) {
		defer unsub()
		for {
			select {
			case <-c.Done():
				return
			case e, ok := <-events:
				if !ok {
					return
				}
				a.log.Debug("event", logx.String("type", e.Type), logx.Time("time", e.Time))
			}
		}
	})

	sub := a.cfgm.Subscribe(8)
	a.sup.Go0("config.reload", func(c context.Context) {
		defer a.cfgm.Unsubscribe(sub)
		a.reloadLoop(c, sub)
	})

	a.sup.Go("config.watch", func(c context.Context) error {
		return a.cfgm.Watch(c)
	})

	if _, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		a.log.Debug("sd_notify ready failed", logx.Err(err))
	}
	a.log.Info("framesched started")
	return nil
}

func (a *App) Stop(ctx context.Context) error {
	if a.sup == nil {
		return nil
	}
	a.log.Info("stopping")
	if _, err := daemon.SdNotify(false, daemon.SdNotifyStopping); err != nil {
		a.log.Debug("sd_notify stopping failed", logx.Err(err))
	}

	a.sup.Cancel()
	a.bridge.Stop()
	a.loop.Stop()

	// Bound the wait on background goroutines; a stuck watcher must not
	// stall shutdown.
	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := a.sup.Wait(waitCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		a.log.Warn("background goroutine error during shutdown", logx.Err(err))
	} else if errors.Is(err, context.DeadlineExceeded) {
		a.log.Warn("shutdown wait timed out (continuing)")
	}

	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn("journal close failed", logx.Err(err))
		}
	}
	a.log.Info("stopped")
	_ = a.slogs.Close()
	_ = a.logs.Close()
	return nil
}
