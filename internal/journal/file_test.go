package journal

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	logx "framesched/pkg/logx"
)

func TestOpenDisabled(t *testing.T) {
	t.Parallel()
	for _, driver := range []string{"", "none", "  NONE "} {
		st, err := Open(Config{Driver: driver}, logx.Nop())
		if err != nil {
			t.Fatalf("driver %q: %v", driver, err)
		}
		if st != nil {
			t.Fatalf("driver %q should yield a nil store", driver)
		}
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	t.Parallel()
	if _, err := Open(Config{Driver: "postgres"}, logx.Nop()); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	st, err := Open(Config{Driver: "file", Path: filepath.Join(dir, "journal")}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	base := time.Now().Add(-time.Minute)
	for i := 0; i < 5; i++ {
		err := st.AppendFailure(ctx, fmt.Sprintf("timer t%d", i), base.Add(time.Duration(i)*time.Second), errors.New("boom"))
		if err != nil {
			t.Fatalf("AppendFailure: %v", err)
		}
	}
	// nil errors are dropped, not stored
	if err := st.AppendFailure(ctx, "timer nilerr", base, nil); err != nil {
		t.Fatalf("AppendFailure(nil): %v", err)
	}

	got, err := st.RecentFailures(ctx, 3)
	if err != nil {
		t.Fatalf("RecentFailures: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d entries, want 3", len(got))
	}
	// Keeps the newest entries, oldest first.
	if got[0].Origin != "timer t2" || got[2].Origin != "timer t4" {
		t.Fatalf("unexpected window: %+v", got)
	}
	if got[0].Error != "boom" {
		t.Fatalf("unexpected error text: %q", got[0].Error)
	}
}

func TestFileStoreClosedAppend(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	st, err := Open(Config{Driver: "file", Path: filepath.Join(dir, "journal")}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if err := st.AppendFailure(context.Background(), "timer x", time.Now(), errors.New("late")); err == nil {
		t.Fatal("append after close should fail")
	}
}

func TestFileStoreEmptyRead(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	st, err := Open(Config{Driver: "file", Path: filepath.Join(dir, "journal")}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	got, err := st.RecentFailures(context.Background(), 10)
	if err != nil {
		t.Fatalf("RecentFailures: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no entries, got %d", len(got))
	}
}
