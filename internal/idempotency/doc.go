// Package idempotency derives deterministic job identity tokens and persists
// reservations against them. The token is a digest of the fields that define
// what a transcoding job produces; the store's conditional insert guarantees
// at most one live reservation per token, which is what makes submission
// retries and concurrent submitters safe.
package idempotency
