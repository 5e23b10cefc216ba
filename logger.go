package gfxrt

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/gfxrt/compiler"
	"github.com/gogpu/gfxrt/engine"
	"github.com/gogpu/gfxrt/internal/gpu"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting
// entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for gfxrt and its sub-packages: the
// engine, the script compiler and the GPU layer. By default gfxrt produces
// no log output. Pass nil to restore the silent default.
//
// Log levels used by gfxrt:
//   - [slog.LevelDebug]: lifecycle transitions, compiled scripts, resizes
//   - [slog.LevelWarn]: fallbacks (no GPU device, unresolved pragma names)
//   - [slog.LevelError]: rejected commands (bad ranges, usage, handles)
//
// Example:
//
//	gfxrt.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
	engine.SetLogger(l)
	compiler.SetLogger(l)
	gpu.SetLogger(l)
}

// Logger returns the current logger used by gfxrt.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

func slogger() *slog.Logger { return loggerPtr.Load() }
