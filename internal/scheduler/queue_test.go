package scheduler

import (
	"errors"
	"testing"
)

func TestDeferredQueueFIFO(t *testing.T) {
	t.Parallel()
	s := newTestScheduler()

	var order []int
	for i := 0; i < 5; i++ {
		i := i
		s.EnqueueNextVariableTick(func() error {
			order = append(order, i)
			return nil
		})
	}
	s.AdvanceVariable(0)

	if len(order) != 5 {
		t.Fatalf("drained %d callbacks, want 5", len(order))
	}
	for i, got := range order {
		if got != i {
			t.Fatalf("drain order %v, want FIFO", order)
		}
	}
}

func TestDeferredQueueRunsOnce(t *testing.T) {
	t.Parallel()
	s := newTestScheduler()

	runs := 0
	s.EnqueueNextVariableTick(func() error { runs++; return nil })
	s.AdvanceVariable(0)
	s.AdvanceVariable(0)
	if runs != 1 {
		t.Fatalf("queued callback ran %d times, want 1", runs)
	}
}

func TestEnqueueDuringDrainLandsNextDrain(t *testing.T) {
	t.Parallel()
	s := newTestScheduler()

	var order []string
	s.EnqueueNextVariableTick(func() error {
		order = append(order, "first")
		s.EnqueueNextVariableTick(func() error {
			order = append(order, "second")
			return nil
		})
		return nil
	})

	s.AdvanceVariable(0)
	if len(order) != 1 || order[0] != "first" {
		t.Fatalf("in-drain enqueue must wait for the next drain, order=%v", order)
	}
	s.AdvanceVariable(0)
	if len(order) != 2 || order[1] != "second" {
		t.Fatalf("order=%v", order)
	}
}

func TestQueuesAreIndependentPerPhase(t *testing.T) {
	t.Parallel()
	s := newTestScheduler()

	var ran []string
	s.EnqueueNextVariableTick(func() error { ran = append(ran, "var"); return nil })
	s.EnqueueNextFixedTick(func() error { ran = append(ran, "fix"); return nil })

	s.AdvanceFixed()
	if len(ran) != 1 || ran[0] != "fix" {
		t.Fatalf("fixed drain must not touch the variable queue, ran=%v", ran)
	}
	s.AdvanceVariable(0)
	if len(ran) != 2 || ran[1] != "var" {
		t.Fatalf("ran=%v", ran)
	}
}

func TestQueueDrainsBeforeTimersFire(t *testing.T) {
	t.Parallel()
	s := newTestScheduler()

	var order []string
	s.Every(func() error { order = append(order, "timer"); return nil }, 0)
	s.EnqueueNextVariableTick(func() error { order = append(order, "queue"); return nil })

	s.AdvanceVariable(1)
	if len(order) != 2 || order[0] != "queue" || order[1] != "timer" {
		t.Fatalf("queue must drain before timers fire, order=%v", order)
	}
}

func TestQueueCallbackFailureIsolated(t *testing.T) {
	t.Parallel()
	s := newTestScheduler()

	rep := &captureReporter{}
	s.SetReporter(rep)

	ran := 0
	s.EnqueueNextVariableTick(func() error { return errors.New("bad queue cb") })
	s.EnqueueNextVariableTick(func() error { ran++; return nil })
	s.EnqueueNextVariableTick(func() error { panic("queue panic") })
	s.EnqueueNextVariableTick(func() error { ran++; return nil })

	s.AdvanceVariable(0)

	if ran != 2 {
		t.Fatalf("failures must not abort the batch, ran=%d", ran)
	}
	if len(rep.errs) != 2 {
		t.Fatalf("expected 2 reported failures, got %d", len(rep.errs))
	}
	if rep.origins[0] != "variable queue callback" {
		t.Fatalf("origin = %q", rep.origins[0])
	}
}

func TestEnqueueNilIsNoop(t *testing.T) {
	t.Parallel()
	s := newTestScheduler()
	s.EnqueueNextVariableTick(nil)
	s.EnqueueNextFixedTick(nil)
	snap := s.Snapshot()
	if snap.VariableQueueLen != 0 || snap.FixedQueueLen != 0 {
		t.Fatalf("nil enqueues must be dropped, snapshot=%+v", snap)
	}
	s.AdvanceVariable(0)
	s.AdvanceFixed()
}
