package scheduler

import (
	"io"
	"log/slog"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestScheduler() *Scheduler {
	return New(Config{}, discardLogger())
}

func TestStartDefaults(t *testing.T) {
	t.Parallel()
	s := newTestScheduler()

	tm := s.Start(func() error { return nil }, 2.5, -7)
	if tm.RepeatCount() != 0 {
		t.Fatalf("negative repeat count should clamp to 0, got %d", tm.RepeatCount())
	}
	if tm.Interval() != 2.5 || tm.Remaining() != 2.5 {
		t.Fatalf("fresh timer countdown: interval=%v remaining=%v", tm.Interval(), tm.Remaining())
	}
	if tm.Stopped() || tm.Paused() {
		t.Fatal("fresh timer must be active")
	}

	other := s.Start(func() error { return nil }, 1, 1)
	if other.ID() == tm.ID() {
		t.Fatal("timer ids must be unique")
	}
}

func TestAfterAndEvery(t *testing.T) {
	t.Parallel()
	s := newTestScheduler()

	once := s.After(func() error { return nil }, 3)
	if once.RepeatCount() != 1 {
		t.Fatalf("After should be one-shot, repeat=%d", once.RepeatCount())
	}
	forever := s.Every(func() error { return nil }, 3)
	if forever.RepeatCount() != 0 {
		t.Fatalf("Every should repeat forever, repeat=%d", forever.RepeatCount())
	}
}

func TestStopSemantics(t *testing.T) {
	t.Parallel()
	s := newTestScheduler()

	tm := s.Every(func() error { return nil }, 1)
	if !s.Stop(tm) {
		t.Fatal("first Stop on an active timer must report true")
	}
	if !tm.Stopped() {
		t.Fatal("timer should be stopped")
	}
	if s.Stop(tm) {
		t.Fatal("second Stop must be a false no-op")
	}
	if s.Stop(nil) {
		t.Fatal("Stop(nil) must be a false no-op")
	}
}

func TestStopPreventsFiring(t *testing.T) {
	t.Parallel()
	s := newTestScheduler()

	fired := 0
	tm := s.After(func() error { fired++; return nil }, 5)
	s.AdvanceVariable(3)
	s.Stop(tm)
	s.AdvanceVariable(10)
	if fired != 0 {
		t.Fatalf("stopped timer fired %d times", fired)
	}
}

func TestRestartSemantics(t *testing.T) {
	t.Parallel()
	s := newTestScheduler()

	runs := 0
	tm := s.Start(func() error { runs++; return nil }, 2, 0)

	if s.Restart(tm) {
		t.Fatal("Restart on an active timer must fail")
	}
	if s.Restart(nil) {
		t.Fatal("Restart(nil) must fail")
	}

	s.AdvanceVariable(2) // fires once
	s.AdvanceVariable(1) // half way into the next period
	if !s.Stop(tm) {
		t.Fatal("Stop failed")
	}
	if !s.Restart(tm) {
		t.Fatal("Restart on a stopped timer must succeed")
	}
	if tm.Remaining() != tm.Interval() {
		t.Fatalf("Restart must re-arm the full countdown, remaining=%v", tm.Remaining())
	}
	if tm.TimesRun() != 1 {
		t.Fatalf("Restart must carry TimesRun, got %d", tm.TimesRun())
	}

	s.AdvanceVariable(2)
	if runs != 2 {
		t.Fatalf("restarted timer should keep firing, runs=%d", runs)
	}
}

func TestResetRewindsCountdown(t *testing.T) {
	t.Parallel()
	s := newTestScheduler()

	fired := 0
	tm := s.Every(func() error { fired++; return nil }, 3)
	s.AdvanceVariable(2)
	s.Reset(tm)
	s.AdvanceVariable(2)
	if fired != 0 {
		t.Fatal("Reset should have rewound the countdown")
	}
	s.AdvanceVariable(1)
	if fired != 1 {
		t.Fatalf("expected one firing after full interval from Reset, got %d", fired)
	}
	s.Reset(nil) // must not panic
}

func TestPauseFreezesCountdown(t *testing.T) {
	t.Parallel()
	s := newTestScheduler()

	fired := 0
	tm := s.Every(func() error { fired++; return nil }, 2)
	s.Pause(tm)
	for i := 0; i < 10; i++ {
		s.AdvanceVariable(1)
	}
	if fired != 0 {
		t.Fatalf("paused timer fired %d times", fired)
	}
	s.Resume(tm)
	s.AdvanceVariable(2)
	if fired != 1 {
		t.Fatalf("resumed timer should fire, fired=%d", fired)
	}
	s.Pause(nil)
	s.Resume(nil) // must not panic
}

func TestSharedCallbackIndependentTimers(t *testing.T) {
	t.Parallel()
	s := newTestScheduler()

	calls := 0
	cb := func() error { calls++; return nil }
	a := s.Start(cb, 1, 0)
	b := s.Start(cb, 2, 0)

	s.AdvanceVariable(1)
	if calls != 1 {
		t.Fatalf("only the elapsed timer should fire, calls=%d", calls)
	}
	s.AdvanceVariable(1)
	if calls != 3 {
		t.Fatalf("both timers elapsed, calls=%d", calls)
	}
	if a.TimesRun() != 2 || b.TimesRun() != 1 {
		t.Fatalf("per-timer counts: a=%d b=%d", a.TimesRun(), b.TimesRun())
	}
}

func TestSetTimeScaleClamp(t *testing.T) {
	t.Parallel()
	s := newTestScheduler()
	if s.TimeScale() != 1.0 {
		t.Fatalf("default time scale = %v", s.TimeScale())
	}
	s.SetTimeScale(-3)
	if s.TimeScale() != 0 {
		t.Fatalf("negative scale should clamp to 0, got %v", s.TimeScale())
	}
}
