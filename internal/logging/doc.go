// Package logging builds the slog logger the framesched services use.
//
// The returned *slog.Logger stays valid across Apply() calls: sinks and
// levels are swapped atomically underneath it, so components keep their
// logger reference through config hot-reloads.
package logging
