// Package manifest defines the episode manifest model and the XML decoder
// for the AnimeTranscodeManifest document. A manifest describes one mezzanine
// file together with its episode metadata, audio tracks, and subtitle tracks,
// and is the sole input to job configuration.
package manifest
