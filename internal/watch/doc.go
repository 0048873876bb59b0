// Package watch turns a spool directory into a submission source: manifest
// XML files dropped into the directory are parsed, submitted through the
// orchestrator, and filed under processed/ or failed/. A flock-held lock
// file keeps a single watcher per data directory, while cross-host
// duplicate suppression remains the reservation store's job.
package watch
