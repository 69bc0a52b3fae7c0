// Package config handles loading and parsing logdeck configuration files.
//
// # Overview
//
// This package reads an optional TOML file describing how the capture
// pipeline should start: buffer depths, the drain interval, the default
// capture level, per-target level directives, and an optional dump sink.
// Applications embedding the pipeline can skip it entirely and configure
// the engine in code; the file exists so operators can tune capture
// without a rebuild.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/logdeck/config.toml (default)
//  3. If the config file doesn't exist, fall back to built-in defaults
//  4. If the file exists but fields are missing, keep the defaults
//
// # TOML Format
//
// Example config.toml:
//
//	default_level = "info"
//	hot_buffer_depth = 1000
//	buffer_depth = 10000
//	drain_interval = "10ms"
//
//	[targets]
//	"app::db" = "debug"
//	"app::net" = "warn"
//
//	[dump]
//	path = "~/.local/share/logdeck/dump.log.gz"
//	level = "abbrev"
//	hide_file = true
//
//	[demo]
//	rate = 40
//
// Every field is optional. Tilde expansion is performed on the config
// path and the dump path. A dump path ending in ".gz" is written gzip
// compressed.
//
// # Error Handling
//
// Load returns errors for path expansion failures, file read errors
// (except os.ErrNotExist, which triggers defaults), TOML parsing errors,
// and unparseable level or duration values. Missing config files are NOT
// an error.
package config
