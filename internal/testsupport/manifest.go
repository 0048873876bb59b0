package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kprabhasreddy/anime-transcoding-pipeline/internal/manifest"
)

// NewManifest returns a valid 1080p episode manifest that tests can mutate.
func NewManifest() *manifest.Manifest {
	release := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	return &manifest.Manifest{
		Version:    "1.0",
		ManifestID: "test-ep-00042",
		Episode: manifest.Episode{
			SeriesID:        "test-series",
			SeriesTitle:     "Test Series",
			SeasonNumber:    1,
			EpisodeNumber:   42,
			EpisodeTitle:    "The Forty-Second Episode",
			DurationSeconds: 1420,
			ReleaseDate:     &release,
			ContentRating:   "TV-14",
		},
		Mezzanine: manifest.Mezzanine{
			FilePath:        "test-series/s01e042.mxf",
			ChecksumMD5:     "0123456789abcdef0123456789abcdef",
			FileSizeBytes:   4 << 30,
			DurationSeconds: 1421,
			VideoCodec:      "prores_422_hq",
			AudioCodec:      "pcm_s24le",
			Width:           1920,
			Height:          1080,
			FrameRate:       23.976,
			BitrateKbps:     220000,
		},
		AudioTracks: []manifest.AudioTrack{
			{Language: "ja", Label: "Japanese", IsDefault: true, Channels: 2, TrackIndex: 1},
		},
	}
}

// WriteManifestXML writes a minimal valid manifest document into dir and
// returns its path.
func WriteManifestXML(t testing.TB, dir, manifestID string) string {
	t.Helper()

	const document = `<?xml version="1.0" encoding="UTF-8"?>
<AnimeTranscodeManifest version="1.0">
  <ManifestId>%s</ManifestId>
  <Episode>
    <SeriesId>test-series</SeriesId>
    <SeriesTitle>Test Series</SeriesTitle>
    <SeasonNumber>1</SeasonNumber>
    <EpisodeNumber>42</EpisodeNumber>
    <EpisodeTitle>The Forty-Second Episode</EpisodeTitle>
    <DurationSeconds>1420</DurationSeconds>
  </Episode>
  <Mezzanine>
    <FilePath>test-series/s01e042.mxf</FilePath>
    <ChecksumMD5>0123456789abcdef0123456789abcdef</ChecksumMD5>
    <FileSizeBytes>4294967296</FileSizeBytes>
    <DurationSeconds>1421</DurationSeconds>
    <VideoCodec>prores_422_hq</VideoCodec>
    <AudioCodec>pcm_s24le</AudioCodec>
    <ResolutionWidth>1920</ResolutionWidth>
    <ResolutionHeight>1080</ResolutionHeight>
    <FrameRate>23.976</FrameRate>
    <BitrateKbps>220000</BitrateKbps>
  </Mezzanine>
  <AudioTracks>
    <AudioTrack>
      <Language>ja</Language>
      <Label>Japanese</Label>
      <IsDefault>true</IsDefault>
    </AudioTrack>
  </AudioTracks>
</AnimeTranscodeManifest>`

	path := filepath.Join(dir, manifestID+".xml")
	if err := os.WriteFile(path, []byte(fmt.Sprintf(document, manifestID)), 0o644); err != nil {
		t.Fatalf("write manifest %s: %v", path, err)
	}
	return path
}
