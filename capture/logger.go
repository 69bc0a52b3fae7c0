package capture

import (
	"fmt"
	"runtime"
	"time"

	"github.com/logdeck/logdeck/level"
	"github.com/logdeck/logdeck/registry"
)

// Logger binds a target to the engine through a cached registry handle, so
// repeated logging against the same target hashes the target string exactly
// once. The capture decision is a single atomic load; message formatting
// only happens for accepted events.
type Logger struct {
	e *Engine
	h *registry.Handle
}

// Logger returns a call-site logger for target. Callers keep the returned
// value; constructing it performs the one-time hash and registry insert.
func (e *Engine) Logger(target string) *Logger {
	return &Logger{e: e, h: e.reg.LookupOrCreate(target)}
}

// Enabled reports whether an event at l would currently be captured.
func (l *Logger) Enabled(lv level.Level) bool { return l.h.Enabled(lv) }

// Logf captures a formatted message at lv.
func (l *Logger) Logf(lv level.Level, format string, args ...any) {
	l.logf(lv, format, args...)
}

// Errorf captures a formatted message at Error.
func (l *Logger) Errorf(format string, args ...any) { l.logf(level.Error, format, args...) }

// Warnf captures a formatted message at Warn.
func (l *Logger) Warnf(format string, args ...any) { l.logf(level.Warn, format, args...) }

// Infof captures a formatted message at Info.
func (l *Logger) Infof(format string, args ...any) { l.logf(level.Info, format, args...) }

// Debugf captures a formatted message at Debug.
func (l *Logger) Debugf(format string, args ...any) { l.logf(level.Debug, format, args...) }

// Tracef captures a formatted message at Trace.
func (l *Logger) Tracef(format string, args ...any) { l.logf(level.Trace, format, args...) }

func (l *Logger) logf(lv level.Level, format string, args ...any) {
	if !l.h.Enabled(lv) {
		return
	}
	ev := Event{
		Time:    time.Now(),
		Level:   lv,
		Target:  l.h.Target(),
		Message: fmt.Sprintf(format, args...),
	}
	// Skip logf and the exported wrapper.
	if _, file, line, ok := runtime.Caller(2); ok {
		ev.File = file
		ev.Line = line
	}
	l.e.Inject(ev)
}

// Logf captures a formatted message against target without a cached
// handle. Prefer Logger for hot call sites.
func (e *Engine) Logf(target string, lv level.Level, format string, args ...any) {
	if !e.reg.ShouldCapture(target, lv) {
		return
	}
	ev := Event{
		Time:    time.Now(),
		Level:   lv,
		Target:  target,
		Message: fmt.Sprintf(format, args...),
	}
	if _, file, line, ok := runtime.Caller(1); ok {
		ev.File = file
		ev.Line = line
	}
	e.Inject(ev)
}
