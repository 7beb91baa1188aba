package scheduler

import "sync"

// deferredQueue is a one-shot callback mailbox. Enqueue may race with a
// drain on the frame goroutine, so the backlog is mutex-guarded; steal swaps
// the whole slice out so in-drain enqueues defer to the next drain.
type deferredQueue struct {
	mu      sync.Mutex
	pending []Callback
}

func (q *deferredQueue) enqueue(cb Callback) {
	if cb == nil {
		return
	}
	q.mu.Lock()
	q.pending = append(q.pending, cb)
	q.mu.Unlock()
}

func (q *deferredQueue) steal() []Callback {
	q.mu.Lock()
	batch := q.pending
	q.pending = nil
	q.mu.Unlock()
	return batch
}

func (q *deferredQueue) len() int {
	q.mu.Lock()
	n := len(q.pending)
	q.mu.Unlock()
	return n
}

// EnqueueNextVariableTick schedules cb to run at the start of the next
// variable-rate advance, before any timer fires. Safe from any goroutine.
func (s *Scheduler) EnqueueNextVariableTick(cb Callback) {
	s.varQ.enqueue(cb)
}

// EnqueueNextFixedTick schedules cb to run on the next fixed-rate advance.
// Safe from any goroutine.
func (s *Scheduler) EnqueueNextFixedTick(cb Callback) {
	s.fixQ.enqueue(cb)
}
