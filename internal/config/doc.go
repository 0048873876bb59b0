// Package config loads, validates, and normalizes animepipe configuration.
//
// Configuration lives in a TOML file (default ~/.config/animepipe/config.toml,
// falling back to ./animepipe.toml). Load applies defaults, expands home
// directory paths, and validates the result so downstream components can
// trust every field. The embedded sample_config.toml documents all keys and
// feeds `animepipe config init`.
package config
