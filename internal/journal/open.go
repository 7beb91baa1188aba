package journal

import (
	"context"
	"errors"
	"strings"
	"time"

	logx "framesched/pkg/logx"
)

// Store is the persistence API used by the diagnostics sink.
type Store interface {
	AppendFailure(ctx context.Context, origin string, at time.Time, err error) error
	RecentFailures(ctx context.Context, limit int) ([]FailureEntry, error)
	Close() error
}

// Open initializes the configured store.
// It returns (nil, nil) if the journal is disabled.
func Open(cfg Config, log logx.Logger) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" || driver == "none" {
		return nil, nil
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	switch driver {
	case "file":
		return openFile(cfg, log)
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	default:
		return nil, errors.New("unknown journal driver: " + driver)
	}
}
