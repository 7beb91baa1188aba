// Package journal provides the optional callback-failure journal.
//
// It records which callbacks failed and when, so a host can inspect flaky
// timers after the fact. It deliberately does NOT persist timer state:
// timers never survive a process restart.
//
// Drivers:
//   - "file": dependency-free JSON Lines append
//   - "sqlite": SQLite database file (build with -tags sqlite)
package journal
