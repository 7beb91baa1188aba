package journal

import (
	"errors"
	"time"
)

var ErrDisabled = errors.New("journal disabled")

// Config configures the journal.
//
// If Driver is empty or "none", the journal is disabled.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// FailureEntry records one callback failure. Keep it compact and
// schema-stable.
type FailureEntry struct {
	At     time.Time `json:"at"`
	Origin string    `json:"origin"`
	Error  string    `json:"error"`
}
