package mediaconvert

import (
	"fmt"
	"strings"

	"github.com/kprabhasreddy/anime-transcoding-pipeline/internal/ladder"
	"github.com/kprabhasreddy/anime-transcoding-pipeline/internal/language"
	"github.com/kprabhasreddy/anime-transcoding-pipeline/internal/manifest"
	"github.com/kprabhasreddy/anime-transcoding-pipeline/internal/services"
)

const audioBitrateKbps = 128

// Request carries everything the builder needs to render job settings.
type Request struct {
	Manifest     *manifest.Manifest
	Variants     []ladder.Variant
	InputURI     string // mezzanine object URI
	OutputPrefix string // destination prefix, packaging dirs appended
	EnableHLS    bool
	EnableDASH   bool
}

// Build renders complete job settings for the request. HLS receives only
// H.264 variants for playback compatibility; DASH receives every variant.
// Output groups with no renditions are omitted entirely. Any unsupported
// language tag fails the whole build; a job must never reach the transcoder
// with a partial track set.
func Build(req Request) (*JobSettings, error) {
	if req.Manifest == nil {
		return nil, services.Wrap(services.ErrValidation, "mediaconvert", "build", "manifest is required", nil)
	}
	if len(req.Variants) == 0 {
		return nil, services.Wrap(services.ErrValidation, "mediaconvert", "build", "at least one ladder variant is required", nil)
	}

	var h264, h265 []ladder.Variant
	for _, v := range req.Variants {
		if v.Codec == ladder.CodecH264 {
			h264 = append(h264, v)
		} else {
			h265 = append(h265, v)
		}
	}

	settings := &JobSettings{
		TimecodeConfig: &TimecodeConfig{Source: "ZEROBASED"},
		Inputs:         []Input{buildInput(req)},
	}

	if req.EnableHLS && len(h264) > 0 {
		group, err := buildHlsGroup(req, h264)
		if err != nil {
			return nil, err
		}
		settings.OutputGroups = append(settings.OutputGroups, *group)
	}
	if req.EnableDASH {
		// DASH lists the H.264 renditions ahead of the H.265 ones
		// regardless of the incoming ladder order.
		group, err := buildDashGroup(req, append(append([]ladder.Variant{}, h264...), h265...))
		if err != nil {
			return nil, err
		}
		settings.OutputGroups = append(settings.OutputGroups, *group)
	}

	if len(settings.OutputGroups) == 0 {
		return nil, services.Wrap(services.ErrValidation, "mediaconvert", "build", "no output groups enabled", nil)
	}
	return settings, nil
}

func audioSelectorName(lang string) string   { return "Audio_" + lang }
func captionSelectorName(lang string) string { return "Caption_" + lang }

func buildInput(req Request) Input {
	m := req.Manifest

	audioSelectors := make(map[string]AudioSelector, len(m.AudioTracks))
	for _, track := range m.AudioTracks {
		selection := "NOT_DEFAULT"
		if track.IsDefault {
			selection = "DEFAULT"
		}
		audioSelectors[audioSelectorName(track.Language)] = AudioSelector{
			DefaultSelection: selection,
			SelectorType:     "TRACK",
			Tracks:           []int{track.TrackIndex},
		}
	}

	var captionSelectors map[string]CaptionSelector
	if len(m.SubtitleTracks) > 0 {
		captionSelectors = make(map[string]CaptionSelector, len(m.SubtitleTracks))
		for _, track := range m.SubtitleTracks {
			captionSelectors[captionSelectorName(track.Language)] = CaptionSelector{
				SourceSettings: CaptionSourceSettings{
					SourceType: captionSourceType(track.Format),
					FileSourceSettings: &FileSourceSettings{
						SourceFile: resolveSubtitleURI(req.InputURI, track.FilePath),
					},
				},
			}
		}
	}

	return Input{
		FileInput:        req.InputURI,
		AudioSelectors:   audioSelectors,
		CaptionSelectors: captionSelectors,
		VideoSelector:    VideoSelector{ColorSpace: "FOLLOW", Rotate: "AUTO"},
		TimecodeSource:   "ZEROBASED",
		FilterEnable:     "AUTO",
		PsiControl:       "USE_PSI",
		FilterStrength:   0,
		DeblockFilter:    "DISABLED",
		DenoiseFilter:    "DISABLED",
	}
}

func captionSourceType(format manifest.SubtitleFormat) string {
	switch format {
	case manifest.SubtitleSCC:
		return "SCC"
	case manifest.SubtitleTTML:
		return "TTML"
	case manifest.SubtitleSRT:
		return "SRT"
	default:
		return "WEBVTT"
	}
}

// resolveSubtitleURI joins a subtitle path onto the directory holding the
// input object. Paths that are already full URIs pass through unchanged.
func resolveSubtitleURI(inputURI, subtitlePath string) string {
	if strings.Contains(subtitlePath, "://") {
		return subtitlePath
	}
	dir := inputURI
	if idx := strings.LastIndex(inputURI, "/"); idx >= 0 {
		dir = inputURI[:idx]
	}
	return dir + "/" + subtitlePath
}

func buildHlsGroup(req Request, variants []ladder.Variant) (*OutputGroup, error) {
	m := req.Manifest

	outputs := make([]Output, 0, len(variants)+len(m.AudioTracks)+len(m.SubtitleTracks))
	for _, v := range variants {
		out, err := buildHlsVideoOutput(m, v)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, *out)
	}
	for _, track := range m.AudioTracks {
		out, err := buildHlsAudioOutput(track)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, *out)
	}
	for _, track := range m.SubtitleTracks {
		out, err := buildHlsCaptionOutput(track)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, *out)
	}

	group := &HlsGroupSettings{
		SegmentLength:          6,
		MinSegmentLength:       0,
		Destination:            req.OutputPrefix + "/hls/",
		ManifestDurationFormat: "FLOATING_POINT",
		SegmentControl:         "SEGMENTED_FILES",
		OutputSelection:        "MANIFESTS_AND_SEGMENTS",
		StreamInfResolution:    "INCLUDE",
		ClientCache:            "ENABLED",
		ManifestCompression:    "NONE",
		DirectoryStructure:     "SINGLE_DIRECTORY",
		ProgramDateTime:        "INCLUDE",
		ProgramDateTimePeriod:  600,
		CodecSpecification:     "RFC_4281",
		CaptionLanguageSetting: "OMIT",
	}
	if len(m.SubtitleTracks) > 0 {
		group.CaptionLanguageSetting = "INSERT"
		for i, track := range m.SubtitleTracks {
			code, err := translate(track.Language)
			if err != nil {
				return nil, err
			}
			group.CaptionLanguageMappings = append(group.CaptionLanguageMappings, CaptionLanguageMapping{
				LanguageCode:        code,
				LanguageDescription: track.Label,
				CaptionChannel:      i + 1,
			})
		}
	}

	return &OutputGroup{
		Name: "HLS",
		OutputGroupSettings: OutputGroupSettings{
			Type:             "HLS_GROUP_SETTINGS",
			HlsGroupSettings: group,
		},
		Outputs: outputs,
	}, nil
}

func buildHlsVideoOutput(m *manifest.Manifest, v ladder.Variant) (*Output, error) {
	audio, err := audioDescriptions(m.AudioTracks, false)
	if err != nil {
		return nil, err
	}
	zero := 0
	return &Output{
		NameModifier: "_" + v.Name,
		ContainerSettings: ContainerSettings{
			Container: "M3U8",
			M3u8Settings: &M3u8Settings{
				AudioFramesPerPes:  4,
				PcrControl:         "PCR_EVERY_PES_PACKET",
				PmtPid:             480,
				PrivateMetadataPid: 503,
				ProgramNumber:      1,
				PatInterval:        &zero,
				PmtInterval:        &zero,
				VideoPid:           481,
				AudioPids:          []int{482, 483, 484, 485, 486, 487, 488, 489},
			},
		},
		VideoDescription: &VideoDescription{
			Width:             v.Width,
			Height:            v.Height,
			CodecSettings:     ladder.VideoSettings(v),
			ScalingBehavior:   "DEFAULT",
			TimecodeInsertion: "DISABLED",
			AntiAlias:         "ENABLED",
			RespondToAfd:      "NONE",
			Sharpness:         50,
			AfdSignaling:      "NONE",
			DropFrameTimecode: "ENABLED",
		},
		AudioDescriptions: audio,
	}, nil
}

func buildHlsAudioOutput(track manifest.AudioTrack) (*Output, error) {
	desc, err := audioDescription(track, true)
	if err != nil {
		return nil, err
	}
	return &Output{
		NameModifier: "_audio_" + track.Language,
		ContainerSettings: ContainerSettings{
			Container: "M3U8",
			M3u8Settings: &M3u8Settings{
				AudioFramesPerPes: 4,
				PcrControl:        "PCR_EVERY_PES_PACKET",
				PmtPid:            480,
				ProgramNumber:     1,
			},
		},
		AudioDescriptions: []AudioDescription{*desc},
	}, nil
}

func buildHlsCaptionOutput(track manifest.SubtitleTrack) (*Output, error) {
	code, err := translate(track.Language)
	if err != nil {
		return nil, err
	}
	return &Output{
		NameModifier: "_caption_" + track.Language,
		ContainerSettings: ContainerSettings{
			Container: "RAW",
		},
		CaptionDescriptions: []CaptionDescription{{
			CaptionSelectorName: captionSelectorName(track.Language),
			DestinationSettings: CaptionDestinationSettings{
				DestinationType: "WEBVTT",
				WebvttDestinationSettings: &WebvttDestinationSettings{
					StylePassthrough: "STRICT",
				},
			},
			LanguageCode:        code,
			LanguageDescription: track.Label,
		}},
	}, nil
}

func buildDashGroup(req Request, variants []ladder.Variant) (*OutputGroup, error) {
	m := req.Manifest

	outputs := make([]Output, 0, len(variants)+len(m.AudioTracks))
	for _, v := range variants {
		outputs = append(outputs, Output{
			NameModifier: "_" + v.Name,
			ContainerSettings: ContainerSettings{
				Container: "MPD",
			},
			VideoDescription: &VideoDescription{
				Width:             v.Width,
				Height:            v.Height,
				CodecSettings:     ladder.VideoSettings(v),
				ScalingBehavior:   "DEFAULT",
				AntiAlias:         "ENABLED",
				Sharpness:         50,
				TimecodeInsertion: "DISABLED",
			},
		})
	}
	for _, track := range m.AudioTracks {
		desc, err := audioDescription(track, true)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, Output{
			NameModifier: "_audio_" + track.Language,
			ContainerSettings: ContainerSettings{
				Container: "MPD",
			},
			AudioDescriptions: []AudioDescription{*desc},
		})
	}

	return &OutputGroup{
		Name: "DASH",
		OutputGroupSettings: OutputGroupSettings{
			Type: "DASH_ISO_GROUP_SETTINGS",
			DashIsoGroupSettings: &DashIsoGroupSettings{
				SegmentLength:                        6,
				Destination:                          req.OutputPrefix + "/dash/",
				FragmentLength:                       2,
				SegmentControl:                       "SEGMENTED_FILES",
				HbbtvCompliance:                      "NONE",
				MpdProfile:                           "MAIN_PROFILE",
				WriteSegmentTimelineInRepresentation: "ENABLED",
			},
		},
		Outputs: outputs,
	}, nil
}

func audioDescriptions(tracks []manifest.AudioTrack, withStreamName bool) ([]AudioDescription, error) {
	descs := make([]AudioDescription, 0, len(tracks))
	for _, track := range tracks {
		desc, err := audioDescription(track, withStreamName)
		if err != nil {
			return nil, err
		}
		descs = append(descs, *desc)
	}
	return descs, nil
}

func audioDescription(track manifest.AudioTrack, withStreamName bool) (*AudioDescription, error) {
	code, err := translate(track.Language)
	if err != nil {
		return nil, err
	}
	desc := &AudioDescription{
		AudioSourceName:     audioSelectorName(track.Language),
		AudioTypeControl:    "FOLLOW_INPUT",
		LanguageCode:        code,
		LanguageCodeControl: "USE_CONFIGURED",
		CodecSettings:       ladder.AudioSettings(track.Channels, audioBitrateKbps),
	}
	if withStreamName {
		desc.StreamName = track.Label
	}
	return desc, nil
}

func translate(tag string) (string, error) {
	code, err := language.Translate(tag)
	if err != nil {
		return "", services.Wrap(services.ErrUnsupported, "mediaconvert", "translate language",
			fmt.Sprintf("language %q has no three letter code", tag), err)
	}
	return code, nil
}
