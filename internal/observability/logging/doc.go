// Package logging configures log/slog for the news reader processes.
//
// Loggers write JSON to stdout by default. LOG_LEVEL selects the minimum
// level (debug, info, warn, error). Request-scoped loggers carry the request
// ID and can be passed through a context.
//
//	logger := logging.NewLogger()
//	slog.SetDefault(logger)
//
//	func handle(ctx context.Context) {
//	    logging.WithRequestID(ctx, slog.Default()).Info("loading headlines")
//	}
package logging
