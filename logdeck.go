package logdeck

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/logdeck/logdeck/capture"
	"github.com/logdeck/logdeck/level"
	"github.com/logdeck/logdeck/registry"
	"github.com/logdeck/logdeck/sink"
)

// ErrAlreadyInstalled is returned by Init when the global slog handler is
// already installed, and by Install when the process-wide engine already
// exists.
var ErrAlreadyInstalled = errors.New("logdeck: already installed")

var (
	defaultMu     sync.Mutex
	defaultEngine *capture.Engine
	defaultFile   *sink.File
	slogInstalled bool
)

// Init routes the process-wide slog default logger into the capture
// pipeline. A second call returns ErrAlreadyInstalled. The installed
// handler resolves the engine per record, so it follows Close and the
// recreation of the default engine.
func Init() error {
	defaultMu.Lock()
	if slogInstalled {
		defaultMu.Unlock()
		return ErrAlreadyInstalled
	}
	slogInstalled = true
	defaultMu.Unlock()

	slog.SetDefault(slog.New(&Handler{engine: Default}))
	return nil
}

// Default returns the process-wide engine, creating and starting it with
// default options on first use.
func Default() *capture.Engine {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultLocked()
}

func defaultLocked() *capture.Engine {
	if defaultEngine == nil {
		defaultEngine = capture.New(capture.Options{})
		defaultEngine.Start()
	}
	return defaultEngine
}

// Install makes e the process-wide engine. It fails with
// ErrAlreadyInstalled once the default engine exists, so call it before
// any capture, Logger, or Default call.
func Install(e *capture.Engine) error {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultEngine != nil {
		return ErrAlreadyInstalled
	}
	defaultEngine = e
	return nil
}

// Logger returns a logger bound to target on the default engine. The
// returned logger caches its capture-level handle, so level checks on the
// hot path stay lock free.
func Logger(target string) *capture.Logger {
	return Default().Logger(target)
}

// SetDefaultLevel sets the capture level assigned to targets that have no
// explicit directive. Already-seen targets keep their level.
func SetDefaultLevel(l level.Level) {
	Default().Registry().SetDefaultLevel(l)
}

// SetLevelForTarget sets the capture level for one target, creating it if
// it has not logged yet.
func SetLevelForTarget(target string, l level.Level) {
	Default().Registry().SetCaptureLevel(target, l)
}

// SetHotBufferDepth resizes the hot buffer. Retained events keep their
// positions; shrinking below the current count drops the oldest.
func SetHotBufferDepth(depth int) {
	Default().SetHotDepth(depth)
}

// SetBufferDepth resizes the main buffer with the same retention rules as
// SetHotBufferDepth.
func SetBufferDepth(depth int) {
	Default().SetDepth(depth)
}

// SetLogFile attaches a file dump sink to the default engine. Every
// drained event is appended; a path ending in ".gz" is gzip compressed.
// Calling it again closes the previous file and replaces it.
func SetLogFile(path string, opts sink.FileOptions) error {
	f, err := sink.NewFile(path, opts)
	if err != nil {
		return err
	}
	defaultMu.Lock()
	e := defaultLocked()
	prev := defaultFile
	defaultFile = f
	defaultMu.Unlock()

	if prev != nil {
		prev.Close()
	}
	e.AddSink(f)
	return nil
}

// SetEnvFilterFromString installs capture directives parsed from spec, a
// comma-separated list of target=level pairs. A bare level term sets the
// default level. Targets seen before the call keep their levels.
func SetEnvFilterFromString(spec string) error {
	return Default().Registry().SetFilterSpec(spec)
}

// SetEnvFilterFromEnv installs capture directives from the LOGDECK_LOG
// environment variable. An unset variable is not an error.
func SetEnvFilterFromEnv() error {
	return Default().Registry().ApplyEnvFilter("")
}

// EnvVar is the environment variable read by SetEnvFilterFromEnv.
const EnvVar = registry.EnvVar

// Logf captures a formatted message against target on the default engine.
func Logf(target string, lv level.Level, format string, args ...any) {
	logf(target, lv, format, args...)
}

// Errorf captures a formatted message against target at Error.
func Errorf(target, format string, args ...any) { logf(target, level.Error, format, args...) }

// Warnf captures a formatted message against target at Warn.
func Warnf(target, format string, args ...any) { logf(target, level.Warn, format, args...) }

// Infof captures a formatted message against target at Info.
func Infof(target, format string, args ...any) { logf(target, level.Info, format, args...) }

// Debugf captures a formatted message against target at Debug.
func Debugf(target, format string, args ...any) { logf(target, level.Debug, format, args...) }

// Tracef captures a formatted message against target at Trace.
func Tracef(target, format string, args ...any) { logf(target, level.Trace, format, args...) }

func logf(target string, lv level.Level, format string, args ...any) {
	e := Default()
	if !e.Registry().ShouldCapture(target, lv) {
		return
	}
	ev := capture.Event{
		Time:    time.Now(),
		Level:   lv,
		Target:  target,
		Message: fmt.Sprintf(format, args...),
	}
	// Skip logf and the exported wrapper.
	if _, file, line, ok := runtime.Caller(2); ok {
		ev.File = file
		ev.Line = line
	}
	e.Inject(ev)
}

// Drain moves pending hot events into the main buffer immediately instead
// of waiting for the scheduler tick.
func Drain() {
	Default().Drain()
}

// Close stops the default engine after a final drain and closes any file
// sink installed with SetLogFile. The next Default call creates a fresh
// engine.
func Close(ctx context.Context) error {
	defaultMu.Lock()
	e := defaultEngine
	f := defaultFile
	defaultEngine = nil
	defaultFile = nil
	defaultMu.Unlock()

	if e == nil {
		return nil
	}
	err := e.Close(ctx)
	if f != nil {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
