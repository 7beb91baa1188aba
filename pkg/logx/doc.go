// Package logx configures framesched's structured logging.
//
// This repo uses a small wrapper (logx.Logger) on top of zerolog to keep:
//   - Console output readable (short timestamp + short caller)
//   - File output JSON-structured
//   - Sinks/levels swappable at runtime via Service.Apply
//
// The scheduler and host loop take *slog.Logger directly; logx serves the
// bootstrap path (config loading, journal) where a zero-value-safe logger
// is convenient before full wiring exists.
package logx
