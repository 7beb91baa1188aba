// Package wallclock bridges wall-clock cron schedules onto the frame thread.
//
// robfig/cron runs jobs on its own goroutine, but registry access and most
// host work must happen on the frame goroutine. The bridge therefore never
// runs the job directly: each cron firing enqueues the job onto the
// scheduler's variable deferred queue, and the next AdvanceVariable runs it
// in-phase.
package wallclock

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"

	"framesched/internal/scheduler"
)

// ValidateSpec reports whether spec parses under the bridge's cron dialect
// (5-field, 6-field with seconds, or @descriptors). Used by config validation.
func ValidateSpec(spec string) error {
	p := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	_, err := p.Parse(spec)
	return err
}

// Enqueuer is the slice of the scheduler the bridge needs.
type Enqueuer interface {
	EnqueueNextVariableTick(cb scheduler.Callback)
}

type entry struct {
	id   cron.EntryID
	name string
	spec string
}

// Bridge owns a cron runner whose jobs marshal onto the frame thread.
type Bridge struct {
	log *slog.Logger
	enq Enqueuer

	mu      sync.Mutex
	parser  cron.Parser
	c       *cron.Cron
	entries []entry
	started bool
}

func New(enq Enqueuer, log *slog.Logger) *Bridge {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	// SecondOptional allows both 5-field and 6-field (with seconds) specs.
	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return &Bridge{
		log:    log,
		enq:    enq,
		parser: parser,
		c:      cron.New(cron.WithParser(parser)),
	}
}

// Add registers a cron schedule. The job runs on the frame goroutine at the
// first variable advance after each cron firing.
func (b *Bridge) Add(name, spec string, job scheduler.Callback) (cron.EntryID, error) {
	if strings.TrimSpace(name) == "" {
		return 0, errors.New("name required")
	}
	if job == nil {
		return 0, errors.New("job required")
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	id, err := b.c.AddFunc(spec, func() {
		b.enq.EnqueueNextVariableTick(job)
	})
	if err != nil {
		b.log.Error("wallclock schedule register failed",
			slog.String("name", name), slog.String("spec", spec), slog.Any("err", err))
		return 0, err
	}
	b.entries = append(b.entries, entry{id: id, name: name, spec: spec})
	b.log.Debug("wallclock schedule registered",
		slog.String("name", name), slog.String("spec", spec))
	return id, nil
}

// Remove unregisters a schedule. Unknown ids are a no-op.
func (b *Bridge) Remove(id cron.EntryID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.c.Remove(id)
	n := 0
	for _, e := range b.entries {
		if e.id == id {
			continue
		}
		b.entries[n] = e
		n++
	}
	b.entries = b.entries[:n]
}

func (b *Bridge) Start() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.started {
		return
	}
	b.started = true
	b.c.Start()
	b.log.Info("wallclock bridge started", slog.Int("schedules", len(b.entries)))
}

// Stop halts cron firing. Jobs already enqueued still run on the next
// variable advance.
func (b *Bridge) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.started {
		return
	}
	b.started = false
	<-b.c.Stop().Done()
	b.log.Info("wallclock bridge stopped")
}

// Names returns the registered schedule names, in registration order.
func (b *Bridge) Names() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.entries))
	for _, e := range b.entries {
		out = append(out, e.name)
	}
	return out
}
