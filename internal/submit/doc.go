// Package submit orchestrates job configuration: token derivation, the
// duplicate fast path, ladder and settings construction, and the
// authoritative slot reservation.
package submit
