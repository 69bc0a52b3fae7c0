// Package logdeck captures application logs into in-process ring buffers
// for display inside terminal UIs.
//
// # Overview
//
// Terminal applications cannot log to stdout without corrupting their own
// display. Logdeck solves this by capturing log events into a two-tier
// circular buffer instead: producers append to a small hot buffer with
// minimal locking, and a background drain moves batches into a larger main
// buffer that widgets and sinks read from. When producers outrun the
// drain, the oldest hot events are dropped and a synthetic marker records
// exactly how many were lost.
//
// Events carry a target, a dot- or double-colon-separated origin name.
// Each target has an independent capture level deciding what enters the
// buffers, and widgets layer per-target display levels on top deciding
// what is shown.
//
// # Quick Start
//
//	logdeck.SetDefaultLevel(level.Debug)
//	lg := logdeck.Logger("app::db")
//	lg.Infof("connected to %s", addr)
//
// For slog users, install the bridge handler:
//
//	slog.SetDefault(slog.New(logdeck.NewSlogHandler()))
//	slog.Info("ready", "target", "app::api")
//
// Widgets in the widget package render the buffered events; the view
// package holds the scroll and filter state they share.
//
// # Package Layout
//
//   - level: severity levels and parsing
//   - buffer: the generic circular buffer
//   - registry: per-target capture levels and env filter directives
//   - capture: the engine, events, loggers, and snapshots
//   - view: display filtering, target selection, and paging state
//   - widget: bubbletea-friendly renderers and key bindings
//   - sink: file and gzip dump sinks
//   - dispatch: one-shot event routing for UI input
//   - config: optional TOML configuration
//
// The functions in this package operate on a process-wide default engine,
// created lazily on first use. Applications that need several independent
// pipelines construct capture.Engine values directly.
package logdeck
