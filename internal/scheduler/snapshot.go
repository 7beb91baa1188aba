package scheduler

import "sync"

// historyRing keeps the most recent firings. It has its own lock so bus
// subscribers and diagnostics can copy history without entering the
// single-goroutine registry.
type historyRing struct {
	mu    sync.Mutex
	items []HistoryItem
	cap   int
}

func (r *historyRing) add(item HistoryItem) {
	r.mu.Lock()
	r.items = append(r.items, item)
	if r.cap > 0 && len(r.items) > r.cap {
		r.items = r.items[len(r.items)-r.cap:]
	}
	r.mu.Unlock()
}

func (r *historyRing) copyOut() []HistoryItem {
	r.mu.Lock()
	out := make([]HistoryItem, len(r.items))
	copy(out, r.items)
	r.mu.Unlock()
	return out
}

// History returns a copy of the firing history, oldest first. Safe from any
// goroutine.
func (s *Scheduler) History() []HistoryItem {
	return s.history.copyOut()
}

// Snapshot captures the scheduler state for introspection. The registry
// portion must be taken on the frame goroutine; see Snapshot type docs.
func (s *Scheduler) Snapshot() Snapshot {
	infos := make([]TimerInfo, 0, len(s.timers))
	for _, t := range s.timers {
		infos = append(infos, TimerInfo{
			ID:          t.id,
			Name:        t.name,
			Interval:    t.interval,
			Remaining:   t.remaining,
			TimesRun:    t.timesRun,
			RepeatCount: t.repeatCount,
			Unscaled:    t.useUnscaled,
			Paused:      t.paused,
		})
	}
	return Snapshot{
		TimeScale:        s.timeScale,
		Timers:           infos,
		VariableQueueLen: s.varQ.len(),
		FixedQueueLen:    s.fixQ.len(),
		History:          s.history.copyOut(),
	}
}
