package config

import (
	"reflect"
	"sort"
	"strings"

	logx "framesched/pkg/logx"
)

// SummarizeChange returns a compact list of changed sections plus structured
// attrs safe for logging. Used on hot-reload so the log shows what actually
// moved instead of dumping the whole config.
func SummarizeChange(oldCfg, newCfg *Config) ([]string, []logx.Field) {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}

	changed := make([]string, 0, 5)
	attrs := make([]logx.Field, 0, 12)

	if oldCfg.Logging != newCfg.Logging {
		changed = append(changed, "logging")
		attrs = append(attrs,
			logx.String("logging.level", newCfg.Logging.Level),
			logx.Bool("logging.console", newCfg.Logging.Console),
			logx.Bool("logging.file_enabled", newCfg.Logging.File.Enabled),
		)
	}

	if oldCfg.Scheduler != newCfg.Scheduler {
		changed = append(changed, "scheduler")
		attrs = append(attrs,
			logx.Int("scheduler.history_size", newCfg.Scheduler.HistorySize),
			logx.Float64("scheduler.time_scale", newCfg.Scheduler.TimeScale),
			logx.Bool("scheduler.destroy_on_reload", newCfg.Scheduler.DestroyOnReload),
		)
	}

	if oldCfg.Loop != newCfg.Loop {
		changed = append(changed, "loop")
		attrs = append(attrs,
			logx.Int("loop.frame_rate", newCfg.Loop.FrameRate),
			logx.String("loop.fixed_step", strings.TrimSpace(newCfg.Loop.FixedStep)),
			logx.String("loop.max_frame_delta", strings.TrimSpace(newCfg.Loop.MaxFrameDelta)),
		)
	}

	if oldCfg.Diagnostics != newCfg.Diagnostics {
		changed = append(changed, "diagnostics")
		attrs = append(attrs,
			logx.Bool("diagnostics.verbose", newCfg.Diagnostics.Verbose),
			logx.Int("diagnostics.rate_per_sec", newCfg.Diagnostics.RatePerSec),
		)
	}

	// Journal: nil means disabled.
	var oJ, nJ JournalConfig
	if oldCfg.Journal != nil {
		oJ = *oldCfg.Journal
	}
	if newCfg.Journal != nil {
		nJ = *newCfg.Journal
	}
	if oJ != nJ {
		changed = append(changed, "journal")
		attrs = append(attrs,
			logx.String("journal.driver", strings.TrimSpace(nJ.Driver)),
			logx.Bool("journal.path_set", strings.TrimSpace(nJ.Path) != ""),
		)
	}

	if !reflect.DeepEqual(oldCfg.Wallclock, newCfg.Wallclock) {
		changed = append(changed, "wallclock")
		attrs = append(attrs, logx.Int("wallclock.count", len(newCfg.Wallclock)))
	}

	sort.Strings(changed)
	return changed, attrs
}
