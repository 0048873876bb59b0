// Package mediaconvert renders transcoding job settings: the typed wire
// structures a MediaConvert-compatible transcoder accepts, and the builder
// that assembles them from a validated manifest and a selected bitrate
// ladder. The builder is pure; it never talks to the network.
package mediaconvert
