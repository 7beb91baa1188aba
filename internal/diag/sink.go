// Package diag implements the callback-failure sink the scheduler reports
// into. Reporting is policy, not mechanism: whether and how loudly a failure
// is logged is decided here by host configuration, never by the scheduler.
package diag

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Journal is the optional persistence hook for failures. Implemented by
// journal.Store.
type Journal interface {
	AppendFailure(ctx context.Context, origin string, at time.Time, err error) error
}

// Config controls reporting policy.
type Config struct {
	// Verbose elevates failure lines to Error; otherwise they log at Warn.
	Verbose bool

	// RatePerSec caps failure log lines per second (default 5). Failures
	// over the cap are still counted and journaled, just not printed.
	RatePerSec int
}

// Sink is a fire-and-forget ErrorReporter. It never blocks the frame
// goroutine: logging is rate-limited and the journal write is handed to a
// background goroutine.
type Sink struct {
	log     *slog.Logger
	journal Journal
	limiter *rate.Limiter
	verbose bool

	reported  atomic.Uint64
	throttled atomic.Uint64
}

func New(cfg Config, log *slog.Logger) *Sink {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	rps := cfg.RatePerSec
	if rps <= 0 {
		rps = 5
	}
	return &Sink{
		log:     log,
		limiter: rate.NewLimiter(rate.Limit(rps), rps),
		verbose: cfg.Verbose,
	}
}

// SetJournal installs a persistence hook. Optional.
func (s *Sink) SetJournal(j Journal) { s.journal = j }

// ReportCallbackError implements scheduler.ErrorReporter.
func (s *Sink) ReportCallbackError(origin string, err error) {
	if err == nil {
		return
	}
	at := time.Now()
	s.reported.Add(1)

	if s.limiter.Allow() {
		if s.verbose {
			s.log.Error("callback failed", slog.String("origin", origin), slog.Any("err", err))
		} else {
			s.log.Warn("callback failed", slog.String("origin", origin), slog.Any("err", err))
		}
	} else {
		s.throttled.Add(1)
	}

	if j := s.journal; j != nil {
		// Journal I/O must not stall the frame.
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if jerr := j.AppendFailure(ctx, origin, at, err); jerr != nil {
				s.log.Debug("journal append failed", slog.Any("err", jerr))
			}
		}()
	}
}

// Reported returns the total number of failures seen.
func (s *Sink) Reported() uint64 { return s.reported.Load() }

// Throttled returns how many failures were counted but not logged.
func (s *Sink) Throttled() uint64 { return s.throttled.Load() }
