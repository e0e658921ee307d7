// Package logger provides slog attribute helpers for the event bus.
//
// Helpers return an empty slog.Attr for nil or empty input, which slog drops,
// so call sites never need nil checks:
//
//	log.WarnContext(ctx, "unhandled handler failure",
//		logger.EventType("OrderPlaced"),
//		logger.Handler("*billing.Ledger.OnOrderPlaced"),
//		logger.Error(err),
//	)
//
// Discard returns a logger that drops every record; the bus uses it when no
// logger is configured.
package logger
