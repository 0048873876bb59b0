// Package ladder holds the adaptive bitrate encoding policy: the fixed
// rung tables per codec, rung selection against a source resolution, and
// the encoder settings each rung renders to.
package ladder
