// Package notifications delivers pipeline events via pluggable notifiers.
//
// The default implementation posts signed JSON payloads to the webhook
// configured in config.toml and gracefully degrades to a no-op when
// notifications are disabled. Pipeline code depends only on the Service
// interface, so alternative transports slot in without touching callers.
package notifications
