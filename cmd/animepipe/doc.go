// Package main hosts the animepipe CLI entrypoint and command graph.
//
// The Cobra-based command tree covers manifest submission, spool watching,
// reservation-store inspection, output playlist validation, environment
// preflight, and configuration scaffolding. It centralizes configuration
// resolution and logger setup so subcommands can focus on user experience
// instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
