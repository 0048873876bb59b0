package mediaconvert

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/kprabhasreddy/anime-transcoding-pipeline/internal/ladder"
	"github.com/kprabhasreddy/anime-transcoding-pipeline/internal/manifest"
	"github.com/kprabhasreddy/anime-transcoding-pipeline/internal/services"
)

func testManifest() *manifest.Manifest {
	return &manifest.Manifest{
		Version:    "1.0",
		ManifestID: "crunchy-ep-00125",
		Episode: manifest.Episode{
			SeriesID:        "frieren-beyond-journeys-end",
			SeriesTitle:     "Frieren: Beyond Journey's End",
			SeasonNumber:    1,
			EpisodeNumber:   25,
			EpisodeTitle:    "A Fatal Vulnerability",
			DurationSeconds: 1421.5,
		},
		Mezzanine: manifest.Mezzanine{
			FilePath:        "frieren/s01e025.mxf",
			ChecksumMD5:     "9e107d9d372bb6826bd81d3542a419d6",
			FileSizeBytes:   8589934592,
			DurationSeconds: 1421.8,
			VideoCodec:      "prores_422_hq",
			AudioCodec:      "pcm_s24le",
			Width:           1920,
			Height:          1080,
			FrameRate:       23.976,
			BitrateKbps:     220000,
		},
		AudioTracks: []manifest.AudioTrack{
			{Language: "ja", Label: "Japanese", IsDefault: true, Channels: 2, TrackIndex: 1},
			{Language: "en", Label: "English", Channels: 6, TrackIndex: 2},
		},
		SubtitleTracks: []manifest.SubtitleTrack{
			{Language: "en", Label: "English", FilePath: "subs/s01e025.en.vtt", Format: manifest.SubtitleWebVTT},
		},
	}
}

func testRequest() Request {
	return Request{
		Manifest:     testManifest(),
		Variants:     ladder.Build(1920, 1080, true),
		InputURI:     "s3://anime-mezzanine/frieren/s01e025.mxf",
		OutputPrefix: "s3://anime-output/frieren/s01e025",
		EnableHLS:    true,
		EnableDASH:   true,
	}
}

func findGroup(t *testing.T, settings *JobSettings, name string) *OutputGroup {
	t.Helper()
	for i := range settings.OutputGroups {
		if settings.OutputGroups[i].Name == name {
			return &settings.OutputGroups[i]
		}
	}
	return nil
}

func TestBuildProducesBothOutputGroups(t *testing.T) {
	settings, err := Build(testRequest())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if settings.TimecodeConfig == nil || settings.TimecodeConfig.Source != "ZEROBASED" {
		t.Errorf("TimecodeConfig = %+v", settings.TimecodeConfig)
	}
	if len(settings.Inputs) != 1 {
		t.Fatalf("len(Inputs) = %d, want 1", len(settings.Inputs))
	}
	if len(settings.OutputGroups) != 2 {
		t.Fatalf("len(OutputGroups) = %d, want 2", len(settings.OutputGroups))
	}

	hls := findGroup(t, settings, "HLS")
	if hls == nil {
		t.Fatal("missing HLS output group")
	}
	// 4 H.264 video + 2 audio + 1 caption.
	if len(hls.Outputs) != 7 {
		t.Fatalf("HLS outputs = %d, want 7", len(hls.Outputs))
	}
	if hls.OutputGroupSettings.HlsGroupSettings.Destination != "s3://anime-output/frieren/s01e025/hls/" {
		t.Errorf("HLS destination = %q", hls.OutputGroupSettings.HlsGroupSettings.Destination)
	}

	dash := findGroup(t, settings, "DASH")
	if dash == nil {
		t.Fatal("missing DASH output group")
	}
	// 6 video (4 H.264 + 2 H.265) + 2 audio.
	if len(dash.Outputs) != 8 {
		t.Fatalf("DASH outputs = %d, want 8", len(dash.Outputs))
	}
	if dash.OutputGroupSettings.DashIsoGroupSettings.Destination != "s3://anime-output/frieren/s01e025/dash/" {
		t.Errorf("DASH destination = %q", dash.OutputGroupSettings.DashIsoGroupSettings.Destination)
	}
}

func TestBuildKeepsH265OutOfHLS(t *testing.T) {
	settings, err := Build(testRequest())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	hls := findGroup(t, settings, "HLS")
	for _, out := range hls.Outputs {
		if out.VideoDescription == nil {
			continue
		}
		if out.VideoDescription.CodecSettings.Codec == "H_265" {
			t.Fatalf("HLS output %s carries H.265", out.NameModifier)
		}
		if strings.Contains(out.NameModifier, "h265") {
			t.Fatalf("HLS output %s named for H.265", out.NameModifier)
		}
	}
	dash := findGroup(t, settings, "DASH")
	var sawH265 bool
	for _, out := range dash.Outputs {
		if out.VideoDescription != nil && out.VideoDescription.CodecSettings.Codec == "H_265" {
			sawH265 = true
		}
	}
	if !sawH265 {
		t.Fatal("DASH group should carry the H.265 variants")
	}
}

func TestBuildDashListsH264VariantsFirst(t *testing.T) {
	settings, err := Build(testRequest())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	dash := findGroup(t, settings, "DASH")
	var names []string
	for _, out := range dash.Outputs {
		if out.VideoDescription != nil {
			names = append(names, out.NameModifier)
		}
	}
	want := []string{"_h264_1080p", "_h264_720p", "_h264_480p", "_h264_360p", "_h265_1080p", "_h265_720p"}
	if len(names) != len(want) {
		t.Fatalf("DASH video outputs = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("DASH video outputs = %v, want %v", names, want)
		}
	}
}

func TestBuildOmitsHLSWithoutH264(t *testing.T) {
	req := testRequest()
	req.Variants = []ladder.Variant{
		{Codec: ladder.CodecH265, Name: "h265_1080p", Width: 1920, Height: 1080, BitrateKbps: 4500, Profile: "main", Level: "4.0"},
	}
	settings, err := Build(req)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if findGroup(t, settings, "HLS") != nil {
		t.Fatal("HLS group should be omitted when no H.264 variant exists")
	}
	if findGroup(t, settings, "DASH") == nil {
		t.Fatal("DASH group should remain")
	}
}

func TestBuildFailsWhenNoGroupEnabled(t *testing.T) {
	req := testRequest()
	req.EnableDASH = false
	req.Variants = []ladder.Variant{
		{Codec: ladder.CodecH265, Name: "h265_1080p", Width: 1920, Height: 1080, BitrateKbps: 4500, Profile: "main", Level: "4.0"},
	}
	_, err := Build(req)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("Build = %v, want ErrValidation", err)
	}
}

func TestBuildInputSelectors(t *testing.T) {
	settings, err := Build(testRequest())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	input := settings.Inputs[0]

	if input.FileInput != "s3://anime-mezzanine/frieren/s01e025.mxf" {
		t.Errorf("FileInput = %q", input.FileInput)
	}

	ja, ok := input.AudioSelectors["Audio_ja"]
	if !ok {
		t.Fatal("missing Audio_ja selector")
	}
	if ja.DefaultSelection != "DEFAULT" || ja.SelectorType != "TRACK" || len(ja.Tracks) != 1 || ja.Tracks[0] != 1 {
		t.Errorf("Audio_ja = %+v", ja)
	}
	en := input.AudioSelectors["Audio_en"]
	if en.DefaultSelection != "NOT_DEFAULT" || en.Tracks[0] != 2 {
		t.Errorf("Audio_en = %+v", en)
	}

	caption, ok := input.CaptionSelectors["Caption_en"]
	if !ok {
		t.Fatal("missing Caption_en selector")
	}
	if caption.SourceSettings.SourceType != "WEBVTT" {
		t.Errorf("SourceType = %q", caption.SourceSettings.SourceType)
	}
	want := "s3://anime-mezzanine/frieren/subs/s01e025.en.vtt"
	if got := caption.SourceSettings.FileSourceSettings.SourceFile; got != want {
		t.Errorf("SourceFile = %q, want %q", got, want)
	}
}

func TestBuildOmitsCaptionSelectorsWithoutSubtitles(t *testing.T) {
	req := testRequest()
	req.Manifest.SubtitleTracks = nil
	settings, err := Build(req)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if settings.Inputs[0].CaptionSelectors != nil {
		t.Fatal("CaptionSelectors should be absent without subtitle tracks")
	}
	hls := findGroup(t, settings, "HLS").OutputGroupSettings.HlsGroupSettings
	if hls.CaptionLanguageSetting != "OMIT" {
		t.Errorf("CaptionLanguageSetting = %q, want OMIT", hls.CaptionLanguageSetting)
	}
	if len(hls.CaptionLanguageMappings) != 0 {
		t.Errorf("CaptionLanguageMappings = %+v, want none", hls.CaptionLanguageMappings)
	}
}

func TestBuildCaptionLanguageMappings(t *testing.T) {
	settings, err := Build(testRequest())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	hls := findGroup(t, settings, "HLS").OutputGroupSettings.HlsGroupSettings
	if hls.CaptionLanguageSetting != "INSERT" {
		t.Errorf("CaptionLanguageSetting = %q, want INSERT", hls.CaptionLanguageSetting)
	}
	if len(hls.CaptionLanguageMappings) != 1 {
		t.Fatalf("CaptionLanguageMappings = %+v", hls.CaptionLanguageMappings)
	}
	mapping := hls.CaptionLanguageMappings[0]
	if mapping.LanguageCode != "ENG" || mapping.CaptionChannel != 1 || mapping.LanguageDescription != "English" {
		t.Errorf("mapping = %+v", mapping)
	}
}

func TestBuildAudioOutputs(t *testing.T) {
	settings, err := Build(testRequest())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	hls := findGroup(t, settings, "HLS")

	var audioOut *Output
	for i := range hls.Outputs {
		if hls.Outputs[i].NameModifier == "_audio_en" {
			audioOut = &hls.Outputs[i]
		}
	}
	if audioOut == nil {
		t.Fatal("missing _audio_en output")
	}
	if audioOut.VideoDescription != nil {
		t.Error("audio-only output must not carry video")
	}
	desc := audioOut.AudioDescriptions[0]
	if desc.AudioSourceName != "Audio_en" || desc.LanguageCode != "ENG" || desc.StreamName != "English" {
		t.Errorf("audio description = %+v", desc)
	}
	// 6-channel source encodes as 5.1.
	if desc.CodecSettings.AacSettings.CodingMode != "CODING_MODE_5_1" {
		t.Errorf("CodingMode = %q", desc.CodecSettings.AacSettings.CodingMode)
	}
}

func TestBuildVideoOutputsEmbedLadderSettings(t *testing.T) {
	settings, err := Build(testRequest())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	hls := findGroup(t, settings, "HLS")

	var top *Output
	for i := range hls.Outputs {
		if hls.Outputs[i].NameModifier == "_h264_1080p" {
			top = &hls.Outputs[i]
		}
	}
	if top == nil {
		t.Fatal("missing _h264_1080p output")
	}
	vd := top.VideoDescription
	if vd.Width != 1920 || vd.Height != 1080 {
		t.Errorf("dimensions = %dx%d", vd.Width, vd.Height)
	}
	h264 := vd.CodecSettings.H264Settings
	if h264 == nil || h264.QvbrSettings.MaxAverageBitrate != 6_000_000 {
		t.Errorf("codec settings = %+v", vd.CodecSettings)
	}
	m3u8 := top.ContainerSettings.M3u8Settings
	if m3u8.VideoPid != 481 || len(m3u8.AudioPids) != 8 {
		t.Errorf("m3u8 settings = %+v", m3u8)
	}
	// Every video output carries a description per audio language.
	if len(top.AudioDescriptions) != 2 {
		t.Errorf("AudioDescriptions = %d, want 2", len(top.AudioDescriptions))
	}
}

func TestBuildRejectsEmptyLadder(t *testing.T) {
	req := testRequest()
	req.Variants = nil
	if _, err := Build(req); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("Build = %v, want ErrValidation", err)
	}
}

func TestBuildFailsOnUnknownLanguage(t *testing.T) {
	req := testRequest()
	req.Manifest.SubtitleTracks[0].Language = "xx"
	_, err := Build(req)
	if !errors.Is(err, services.ErrUnsupported) {
		t.Fatalf("Build = %v, want ErrUnsupported", err)
	}

	req = testRequest()
	req.Manifest.AudioTracks[1].Language = "zz"
	_, err = Build(req)
	if !errors.Is(err, services.ErrUnsupported) {
		t.Fatalf("Build = %v, want ErrUnsupported", err)
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	a, err := Build(testRequest())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	b, err := Build(testRequest())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	aj, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	bj, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(aj) != string(bj) {
		t.Fatal("identical requests produced different settings")
	}
}

func TestBuildSubtitlePathPassthrough(t *testing.T) {
	req := testRequest()
	req.Manifest.SubtitleTracks[0].FilePath = "s3://other-bucket/subs/ep.vtt"
	settings, err := Build(req)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	got := settings.Inputs[0].CaptionSelectors["Caption_en"].SourceSettings.FileSourceSettings.SourceFile
	if got != "s3://other-bucket/subs/ep.vtt" {
		t.Errorf("SourceFile = %q, want passthrough", got)
	}
}
