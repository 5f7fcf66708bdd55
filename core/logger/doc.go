// Package logger provides structured logging for the contest tracker.
//
// It wraps Uber's zap library and builds a logger from the application
// configuration. Two encodings are supported:
//   - console: human-readable, colored levels (CLI usage)
//   - json: machine-readable (scheduled batch runs)
//
// # Run correlation
//
// Reconciliation runs are identified by a run id. Use WithRun to derive a
// logger that stamps every line with that id:
//
//	l := logger.WithRun(base, report.RunID)
//	l.Warn("book fetch failed", zap.String("book", name))
package logger
