// Package logging provides the small logging facade used across meshbool.
//
// Logger wraps the subset of log/slog the boolean pipeline needs. Hosts
// embedding the C library, the CLI, and tests each plug in their own
// handler:
//
//	logger := logging.New(nil) // slog.Default()
//	logger = logging.NewText(os.Stderr, slog.LevelDebug)
//	logger = logging.Discard()
//
// Calls are context-aware so request-scoped attributes carried by a handler
// reach every record:
//
//	logger.With("call", n).Debug(ctx, "dispatch", "state", "running")
package logging
