package outputcheck

import (
	"math"
	"strings"
	"testing"

	"github.com/kprabhasreddy/anime-transcoding-pipeline/internal/ladder"
)

const masterPlaylist = `#EXTM3U
#EXT-X-VERSION:6
#EXT-X-MEDIA:TYPE=AUDIO,GROUP-ID="audio",LANGUAGE="ja",NAME="Japanese",DEFAULT=YES,URI="index_audio_ja.m3u8"
#EXT-X-MEDIA:TYPE=AUDIO,GROUP-ID="audio",LANGUAGE="en",NAME="English",DEFAULT=NO,URI="index_audio_en.m3u8"
#EXT-X-STREAM-INF:BANDWIDTH=6600000,RESOLUTION=1920x1080,CODECS="avc1.640029,mp4a.40.2",AUDIO="audio"
index_h264_1080p.m3u8
#EXT-X-STREAM-INF:BANDWIDTH=3900000,RESOLUTION=1280x720,CODECS="avc1.640028,mp4a.40.2",AUDIO="audio"
index_h264_720p.m3u8
#EXT-X-STREAM-INF:BANDWIDTH=2000000,RESOLUTION=854x480,CODECS="avc1.4d401f,mp4a.40.2",AUDIO="audio"
index_h264_480p.m3u8
#EXT-X-STREAM-INF:BANDWIDTH=900000,RESOLUTION=640x360,CODECS="avc1.4d401e,mp4a.40.2",AUDIO="audio"
index_h264_360p.m3u8
`

const mediaPlaylist = `#EXTM3U
#EXT-X-VERSION:6
#EXT-X-TARGETDURATION:6
#EXT-X-MEDIA-SEQUENCE:0
#EXTINF:6.000,
segment_00001.ts
#EXTINF:6.000,
segment_00002.ts
#EXTINF:4.500,
segment_00003.ts
#EXT-X-ENDLIST
`

const mpdManifest = `<?xml version="1.0" encoding="UTF-8"?>
<MPD xmlns="urn:mpeg:dash:schema:mpd:2011" type="static" mediaPresentationDuration="PT23M41.8S" minBufferTime="PT2S" profiles="urn:mpeg:dash:profile:isoff-main:2011">
  <Period>
    <AdaptationSet contentType="video" mimeType="video/mp4" segmentAlignment="true">
      <Representation id="h264_1080p" bandwidth="6600000" width="1920" height="1080" codecs="avc1.640029"/>
      <Representation id="h264_720p" bandwidth="3900000" width="1280" height="720" codecs="avc1.640028"/>
      <Representation id="h265_1080p" bandwidth="4950000" width="1920" height="1080" codecs="hvc1.1.6.L120.90"/>
    </AdaptationSet>
    <AdaptationSet contentType="audio" mimeType="audio/mp4" lang="ja">
      <Representation id="audio_ja" bandwidth="128000" codecs="mp4a.40.2"/>
    </AdaptationSet>
  </Period>
</MPD>`

func h264Ladder() []ladder.Variant {
	return ladder.Build(1920, 1080, false)
}

func findCheck(t *testing.T, report *Report, name string) Check {
	t.Helper()
	for _, c := range report.Checks {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("report %s has no check %q: %+v", report.Kind, name, report.Checks)
	return Check{}
}

func TestCheckHLSMasterPasses(t *testing.T) {
	report := CheckHLSMaster(masterPlaylist, h264Ladder())
	if !report.Passed {
		t.Fatalf("report failed: %+v", report.Failures())
	}
	if c := findCheck(t, report, "variant_streams"); !c.Passed {
		t.Errorf("variant_streams: %+v", c)
	}
	if c := findCheck(t, report, "expected_variants"); !c.Passed {
		t.Errorf("expected_variants: %+v", c)
	}
}

func TestCheckHLSMasterMissingHeader(t *testing.T) {
	report := CheckHLSMaster("#EXT-X-VERSION:6\n", nil)
	if report.Passed {
		t.Fatal("report should fail without #EXTM3U")
	}
	if len(report.Checks) != 1 {
		t.Fatalf("checks = %+v, want header failure only", report.Checks)
	}
}

func TestCheckHLSMasterReportsMissingVariant(t *testing.T) {
	trimmed := strings.ReplaceAll(masterPlaylist, "RESOLUTION=640x360", "RESOLUTION=320x180")
	report := CheckHLSMaster(trimmed, h264Ladder())
	if report.Passed {
		t.Fatal("report should fail with a missing rung")
	}
	c := findCheck(t, report, "expected_variants")
	if c.Passed || !strings.Contains(c.Message, "640x360") {
		t.Fatalf("expected_variants = %+v", c)
	}
}

func TestParseStreamVariants(t *testing.T) {
	variants := ParseStreamVariants(masterPlaylist)
	if len(variants) != 4 {
		t.Fatalf("len(variants) = %d, want 4", len(variants))
	}
	top := variants[0]
	if top.Bandwidth != 6600000 || top.Resolution != "1920x1080" || top.URI != "index_h264_1080p.m3u8" {
		t.Errorf("top variant = %+v", top)
	}
	if top.Audio != "audio" {
		t.Errorf("Audio = %q", top.Audio)
	}
}

func TestParseMediaRenditions(t *testing.T) {
	renditions := ParseMediaRenditions(masterPlaylist, "AUDIO")
	if len(renditions) != 2 {
		t.Fatalf("len(renditions) = %d, want 2", len(renditions))
	}
	if !renditions[0].Default || renditions[0].Language != "ja" {
		t.Errorf("first rendition = %+v", renditions[0])
	}
	if renditions[1].Default {
		t.Errorf("second rendition should not be default: %+v", renditions[1])
	}
}

func TestCheckHLSMediaPasses(t *testing.T) {
	report := CheckHLSMedia(mediaPlaylist)
	if !report.Passed {
		t.Fatalf("report failed: %+v", report.Failures())
	}
}

func TestCheckHLSMediaWithoutEndlist(t *testing.T) {
	report := CheckHLSMedia(strings.ReplaceAll(mediaPlaylist, "#EXT-X-ENDLIST\n", ""))
	if report.Passed {
		t.Fatal("report should fail without ENDLIST")
	}
	if c := findCheck(t, report, "endlist"); c.Passed {
		t.Errorf("endlist = %+v", c)
	}
}

func TestSumSegmentDurations(t *testing.T) {
	got := SumSegmentDurations(mediaPlaylist)
	if math.Abs(got-16.5) > 1e-9 {
		t.Fatalf("SumSegmentDurations = %g, want 16.5", got)
	}
}

func TestCheckDASHPasses(t *testing.T) {
	report := CheckDASH(mpdManifest, ladder.Build(1920, 1080, true)[:2])
	if !report.Passed {
		t.Fatalf("report failed: %+v", report.Failures())
	}
	if c := findCheck(t, report, "video_representations"); !strings.Contains(c.Message, "3") {
		t.Errorf("video_representations = %+v", c)
	}
}

func TestCheckDASHInvalidXML(t *testing.T) {
	report := CheckDASH("<MPD><Period>", nil)
	if report.Passed {
		t.Fatal("report should fail on malformed XML")
	}
}

func TestCheckDASHMissingVideoSet(t *testing.T) {
	audioOnly := `<MPD mediaPresentationDuration="PT10S"><Period>
      <AdaptationSet contentType="audio"><Representation id="a" bandwidth="128000"/></AdaptationSet>
    </Period></MPD>`
	report := CheckDASH(audioOnly, nil)
	if report.Passed {
		t.Fatal("report should fail without video adaptation sets")
	}
	if c := findCheck(t, report, "video_adaptation_sets"); c.Passed {
		t.Errorf("video_adaptation_sets = %+v", c)
	}
}

func TestParseMPDDuration(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"PT1H30M45.5S", 5445.5},
		{"PT23M41.8S", 1421.8},
		{"PT6S", 6},
		{"PT0.5S", 0.5},
		{"", 0},
		{"23M", 0},
	}
	for _, tc := range cases {
		if got := ParseMPDDuration(tc.in); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("ParseMPDDuration(%q) = %g, want %g", tc.in, got, tc.want)
		}
	}
}

func TestCheckDuration(t *testing.T) {
	if report := CheckDuration(1421.3, 1421.8, 2.0); !report.Passed {
		t.Errorf("within tolerance should pass: %+v", report.Failures())
	}
	if report := CheckDuration(1400.0, 1421.8, 2.0); report.Passed {
		t.Error("outside tolerance should fail")
	}
	if report := CheckDuration(0, 1421.8, 2.0); report.Passed {
		t.Error("missing duration should fail")
	}
}
