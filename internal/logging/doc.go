// Package logging wires structured slog output for the pipeline.
//
// It builds loggers from configuration (level, format, file tee), exposes
// typed attribute helpers plus the shared field-name constants, and provides
// component-scoped child loggers so every record carries the emitting
// subsystem. JSON output is the machine format; console output is for
// operators running the CLI interactively.
package logging
