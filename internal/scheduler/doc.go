// Package scheduler provides the frame-phase timer registry used by the
// framesched host loop.
//
// # Overview
//
// A Scheduler tracks a set of countdown timers and two deferred callback
// queues. The host drives it from its frame loop: once per variable-rate
// frame it calls AdvanceVariable with the elapsed seconds, and once per
// fixed-rate step it calls AdvanceFixed. Each advance first drains that
// phase's deferred queue, then (variable phase only) counts every active
// timer down and fires those whose delay has elapsed.
//
// # Timers
//
// Timers are created with Start (or the After/Every shorthands) and returned
// as handles. A handle stays valid across Stop/Restart: Stop removes the
// timer from the registry, Restart re-arms a stopped one with a fresh
// countdown. A repeating timer carries countdown overshoot into the next
// period instead of resetting, so long frames do not drift the cadence.
// TimesRun counts callback invocations; Restart does not reset it.
//
// # Concurrency
//
// The registry is single-goroutine by design: Start, Stop, Restart, Reset,
// Pause, Resume and both Advance methods must only be called from the frame
// goroutine. EnqueueNextVariableTick and EnqueueNextFixedTick are the one
// thread-safe entry point; callers on other goroutines marshal work onto the
// frame goroutine through them.
//
// # Failures
//
// Callbacks return an error. A non-nil error (or a recovered panic) is
// reported to the configured ErrorReporter and never propagates to the
// advance caller. A failing timer callback additionally removes that timer:
// one bad firing ends the series. Failing deferred callbacks have no further
// effect, and the rest of the drained batch still runs.
package scheduler
