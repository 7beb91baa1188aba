package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	logx "framesched/pkg/logx"
)

func TestSupervisorWaitsForGoroutines(t *testing.T) {
	t.Parallel()
	sup := newSupervisor(context.Background(), logx.Nop())

	ran := make(chan struct{})
	sup.Go0("worker", func(ctx context.Context) {
		<-ctx.Done()
		close(ran)
	})

	sup.Cancel()
	waitCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := sup.Wait(waitCtx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	select {
	case <-ran:
	default:
		t.Fatal("worker never observed cancellation")
	}
}

func TestSupervisorCapturesFirstError(t *testing.T) {
	t.Parallel()
	sup := newSupervisor(context.Background(), logx.Nop())

	boom := errors.New("boom")
	sup.Go("bad", func(context.Context) error { return boom })
	sup.Go("canceled", func(context.Context) error { return context.Canceled })

	waitCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := sup.Wait(waitCtx)
	if !errors.Is(err, boom) {
		t.Fatalf("Wait = %v, want wrapped boom", err)
	}
	if !strings.Contains(err.Error(), "bad") {
		t.Fatalf("error should name the goroutine: %v", err)
	}
}

func TestSupervisorContainsPanic(t *testing.T) {
	t.Parallel()
	sup := newSupervisor(context.Background(), logx.Nop())

	sup.Go0("panicky", func(context.Context) { panic("kapow") })

	waitCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := sup.Wait(waitCtx)
	if err == nil || !strings.Contains(err.Error(), "kapow") {
		t.Fatalf("panic not captured: %v", err)
	}
}

func TestSupervisorWaitDeadline(t *testing.T) {
	t.Parallel()
	sup := newSupervisor(context.Background(), logx.Nop())

	block := make(chan struct{})
	sup.Go0("stuck", func(context.Context) { <-block })

	waitCtx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := sup.Wait(waitCtx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Wait = %v, want deadline exceeded", err)
	}
	close(block)
}
