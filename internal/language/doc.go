// Package language maps manifest language tags onto the transcoder's
// ISO 639-2 vocabulary.
//
// The mapping is a fixed table: translation either succeeds with the exact
// 3-letter code the transcoding service expects or fails with an
// unsupported-configuration error. There is no fallback code: a silently
// wrong language in a selector would corrupt output metadata without any
// detectable failure.
package language
