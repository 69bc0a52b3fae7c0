package logdeck

import (
	"context"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/logdeck/logdeck/capture"
	"github.com/logdeck/logdeck/level"
)

// LevelTrace is the slog level mapped to Trace. slog has no trace level of
// its own, so callers log with slog.Log(ctx, logdeck.LevelTrace, ...).
const LevelTrace = slog.Level(-8)

// TargetKey and LoggerKey are the attribute keys the handler reads to route
// a record to a target. When neither is present the target falls back to
// the import path of the calling package.
const (
	TargetKey = "target"
	LoggerKey = "logger"
)

// Handler bridges log/slog into the capture pipeline. Records become
// events: the slog level maps onto the capture level, the target comes
// from a "target" or "logger" attribute or from the caller's package, and
// remaining attributes are appended to the message as key=value pairs.
type Handler struct {
	// engine is resolved per record so a handler bound to the process-wide
	// pipeline follows it across Close and recreation.
	engine func() *capture.Engine
	target string
	attrs  []slog.Attr
	groups []string
}

// NewHandler returns a handler feeding e.
func NewHandler(e *capture.Engine) *Handler {
	return &Handler{engine: func() *capture.Engine { return e }}
}

// Enabled always reports true: the capture decision depends on the
// record's target attribute, which is only available in Handle.
func (h *Handler) Enabled(context.Context, slog.Level) bool { return true }

// Handle converts the record into an event and injects it. Records whose
// target's capture level excludes the mapped level are dropped.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	lv := captureLevel(r.Level)

	target := h.target
	var parts []string
	appendAttr := func(a slog.Attr) {
		if target == "" && len(h.groups) == 0 && (a.Key == TargetKey || a.Key == LoggerKey) {
			if s := a.Value.Resolve().String(); s != "" {
				target = s
				return
			}
		}
		parts = append(parts, h.formatAttr(a))
	}
	for _, a := range h.attrs {
		parts = append(parts, h.formatAttr(a))
	}
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(a)
		return true
	})

	var file string
	var line int
	if r.PC != 0 {
		frames := runtime.CallersFrames([]uintptr{r.PC})
		frame, _ := frames.Next()
		file = frame.File
		line = frame.Line
		if target == "" {
			target = packagePath(frame.Function)
		}
	}

	e := h.engine()
	if !e.Registry().ShouldCapture(target, lv) {
		return nil
	}

	msg := r.Message
	if len(parts) > 0 {
		msg = msg + " " + strings.Join(parts, " ")
	}
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	e.Inject(capture.Event{
		Time:    ts,
		Level:   lv,
		Target:  target,
		Message: msg,
		File:    file,
		Line:    line,
	})
	return nil
}

// WithAttrs returns a handler with the attributes preformatted. A "target"
// or "logger" attribute added here pins the target for all records.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := h.clone()
	for _, a := range attrs {
		if next.target == "" && len(next.groups) == 0 && (a.Key == TargetKey || a.Key == LoggerKey) {
			if s := a.Value.Resolve().String(); s != "" {
				next.target = s
				continue
			}
		}
		next.attrs = append(next.attrs, a)
	}
	return next
}

// WithGroup returns a handler qualifying subsequent attribute keys with
// name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := h.clone()
	next.groups = append(next.groups, name)
	return next
}

func (h *Handler) clone() *Handler {
	return &Handler{
		engine: h.engine,
		target: h.target,
		attrs:  append([]slog.Attr(nil), h.attrs...),
		groups: append([]string(nil), h.groups...),
	}
}

func (h *Handler) formatAttr(a slog.Attr) string {
	key := a.Key
	if len(h.groups) > 0 {
		key = strings.Join(h.groups, ".") + "." + key
	}
	return key + "=" + a.Value.Resolve().String()
}

// packagePath extracts the import path from a fully qualified function
// name like "example.com/mod/pkg.(*T).Method".
func packagePath(fn string) string {
	if fn == "" {
		return ""
	}
	slash := strings.LastIndex(fn, "/")
	dot := strings.Index(fn[slash+1:], ".")
	if dot < 0 {
		return fn
	}
	return fn[:slash+1+dot]
}

func captureLevel(l slog.Level) level.Level {
	switch {
	case l < slog.LevelDebug:
		return level.Trace
	case l < slog.LevelInfo:
		return level.Debug
	case l < slog.LevelWarn:
		return level.Info
	case l < slog.LevelError:
		return level.Warn
	default:
		return level.Error
	}
}
