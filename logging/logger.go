// Package logging provides the package-level *slog.Logger used by the
// extraction pipeline.
package logging

import (
	"io"
	"log/slog"
	"sync/atomic"
)

// DiscardHandler discards all log output; slog.DiscardHandler requires
// Go 1.24+.
var DiscardHandler slog.Handler = slog.NewTextHandler(io.Discard, nil)

// logger holds the configured logger. Nil means logging is disabled and
// Logger returns a discard logger.
var logger atomic.Pointer[slog.Logger]

// SetLogger configures the package-level logger. Pass nil to disable
// output. Safe for concurrent use.
//
//	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
func SetLogger(sl *slog.Logger) {
	if sl == nil {
		sl = slog.New(DiscardHandler)
	}
	logger.Store(sl)
}

// Logger returns the package-level logger, or a discard logger when
// none has been set. Safe for concurrent use.
func Logger() *slog.Logger {
	l := logger.Load()
	if l == nil {
		l = slog.New(DiscardHandler)
		logger.Store(l)
	}
	return l
}
