// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package present

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely,
// making disabled logging effectively zero-cost.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// loggerPtr stores the active logger. Accessed atomically so SetLogger
// can race with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	l := slog.New(nopHandler{})
	loggerPtr.Store(l)
}

// SetLogger configures the logger for the presentation packages. By
// default they produce no log output. Pass nil to restore silence.
//
// Levels used:
//   - [slog.LevelDebug]: per-frame diagnostics (upload counts, batches)
//   - [slog.LevelWarn]: non-fatal issues (stale cache entries, skipped uploads)
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the active logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
