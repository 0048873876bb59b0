// Package outputcheck validates transcoded deliverables: HLS master and
// media playlists, DASH MPD manifests, and output duration against the
// source. All checks run on content strings; fetching is the caller's
// concern.
package outputcheck
