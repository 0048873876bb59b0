// Package services defines shared utilities consumed by the pipeline
// components and external integrations.
//
// Key responsibilities:
//   - Structured error markers plus the Wrap helper that keep failure
//     classification uniform (validation vs unsupported configuration vs
//     transient store/network faults).
//   - An explicit bounded-retry policy applied around the transient-error
//     class of reservation-store calls.
//
// Use these helpers when wiring new pipeline logic so operational behaviour
// (error handling, observability, retries) stays uniform across components.
package services
