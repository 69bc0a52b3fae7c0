package logdeck

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logdeck/logdeck/capture"
	"github.com/logdeck/logdeck/level"
)

// resetDefault tears down the process-wide engine so each test starts from
// a fresh one.
func resetDefault(t *testing.T) {
	t.Helper()
	require.NoError(t, Close(context.Background()))
	t.Cleanup(func() { Close(context.Background()) })
}

func TestFacadeCapture(t *testing.T) {
	resetDefault(t)

	SetDefaultLevel(level.Trace)
	Infof("app", "hello %s", "world")
	Drain()

	events := Default().Tail(nil, 0)
	require.Len(t, events, 1)
	assert.Equal(t, "app", events[0].Target)
	assert.Equal(t, "hello world", events[0].Message)
	assert.Equal(t, level.Info, events[0].Level)
	assert.NotEmpty(t, events[0].File)
	assert.NotZero(t, events[0].Line)
}

func TestFacadeLevelForTarget(t *testing.T) {
	resetDefault(t)

	SetLevelForTarget("quiet", level.Error)
	Debugf("quiet", "dropped")
	Errorf("quiet", "kept")
	Drain()

	events := Default().Tail(nil, 0)
	require.Len(t, events, 1)
	assert.Equal(t, "kept", events[0].Message)
}

func TestInstallRejectsSecondEngine(t *testing.T) {
	resetDefault(t)

	require.NoError(t, Install(capture.New(capture.Options{})))
	assert.ErrorIs(t, Install(capture.New(capture.Options{})), ErrAlreadyInstalled)
	// The lazily created path must also refuse once an engine exists.
	assert.ErrorIs(t, Install(capture.New(capture.Options{})), ErrAlreadyInstalled)
}

func TestLoggerSharesDefaultEngine(t *testing.T) {
	resetDefault(t)

	SetDefaultLevel(level.Trace)
	lg := Logger("db")
	lg.Tracef("t%d", 1)
	Drain()

	events := Default().Tail(nil, 0)
	require.Len(t, events, 1)
	assert.Equal(t, "db", events[0].Target)
	assert.Equal(t, level.Trace, events[0].Level)
}

func TestEnvFilterFromString(t *testing.T) {
	resetDefault(t)

	require.NoError(t, SetEnvFilterFromString("debug,noisy=error"))

	assert.Equal(t, level.Debug, Default().Registry().DefaultLevel())
	Infof("noisy", "dropped")
	Errorf("noisy", "kept")
	Infof("other", "kept too")
	Drain()

	events := Default().Tail(nil, 0)
	require.Len(t, events, 2)
	assert.Equal(t, "kept", events[0].Message)
	assert.Equal(t, "kept too", events[1].Message)
}

func TestEnvFilterFromEnv(t *testing.T) {
	resetDefault(t)
	t.Setenv(EnvVar, "trace,chatty=error")

	require.NoError(t, SetEnvFilterFromEnv())

	assert.Equal(t, level.Trace, Default().Registry().DefaultLevel())
	Debugf("chatty", "dropped")
	Debugf("other", "kept")
	Drain()

	events := Default().Tail(nil, 0)
	require.Len(t, events, 1)
	assert.Equal(t, "kept", events[0].Message)
}

func TestCloseResetsDefault(t *testing.T) {
	resetDefault(t)

	SetDefaultLevel(level.Trace)
	first := Default()
	require.NoError(t, Close(context.Background()))

	second := Default()
	assert.NotSame(t, first, second)
	// Levels configured on the old engine do not leak into the new one.
	assert.Equal(t, level.Info, second.Registry().DefaultLevel())
}

func TestSlogBridgeFollowsEngineRecreation(t *testing.T) {
	resetDefault(t)
	if err := Init(); err != nil {
		require.ErrorIs(t, err, ErrAlreadyInstalled)
	}

	// Tearing the default engine down must not strand the installed
	// handler on the dead pipeline.
	require.NoError(t, Close(context.Background()))

	slog.Info("after restart", "target", "bridge")
	Drain()

	events := Default().Tail(nil, 0)
	require.Len(t, events, 1)
	assert.Equal(t, "bridge", events[0].Target)
	assert.Equal(t, "after restart", events[0].Message)
}

func TestInitInstallsSlogOnce(t *testing.T) {
	resetDefault(t)

	// The bridge is installed at most once per process, so the first call
	// may already find it in place when tests share the binary.
	if err := Init(); err != nil {
		assert.ErrorIs(t, err, ErrAlreadyInstalled)
	}
	assert.ErrorIs(t, Init(), ErrAlreadyInstalled)
}
