package ladder

import (
	"fmt"
	"strings"
)

// Rate control and GOP policy shared by every rendition. Values are tuned
// for 23.976fps anime content with 6 second segments.
const (
	qvbrQualityLevel = 7
	gopSizeFrames    = 48
	numberBFrames    = 2
)

// H264Settings is the wire form of an H.264 encoder configuration.
type H264Settings struct {
	RateControlMode          string        `json:"RateControlMode"`
	QvbrSettings             *QvbrSettings `json:"QvbrSettings"`
	MaxBitrate               int           `json:"MaxBitrate"`
	QualityTuningLevel       string        `json:"QualityTuningLevel"`
	CodecProfile             string        `json:"CodecProfile"`
	CodecLevel               string        `json:"CodecLevel"`
	GopSize                  int           `json:"GopSize"`
	GopSizeUnits             string        `json:"GopSizeUnits"`
	NumberBFramesBetweenRefs int           `json:"NumberBFramesBetweenReferenceFrames"`
	GopBReference            string        `json:"GopBReference"`
	AdaptiveQuantization     string        `json:"AdaptiveQuantization"`
	SceneChangeDetect        string        `json:"SceneChangeDetect"`
	EntropyEncoding          string        `json:"EntropyEncoding"`
	Syntax                   string        `json:"Syntax"`
	Slices                   int           `json:"Slices"`
	InterlaceMode            string        `json:"InterlaceMode"`
}

// H265Settings is the wire form of an H.265 encoder configuration.
type H265Settings struct {
	RateControlMode          string        `json:"RateControlMode"`
	QvbrSettings             *QvbrSettings `json:"QvbrSettings"`
	MaxBitrate               int           `json:"MaxBitrate"`
	QualityTuningLevel       string        `json:"QualityTuningLevel"`
	CodecProfile             string        `json:"CodecProfile"`
	CodecLevel               string        `json:"CodecLevel"`
	GopSize                  int           `json:"GopSize"`
	GopSizeUnits             string        `json:"GopSizeUnits"`
	NumberBFramesBetweenRefs int           `json:"NumberBFramesBetweenReferenceFrames"`
	GopBReference            string        `json:"GopBReference"`
	AdaptiveQuantization     string        `json:"AdaptiveQuantization"`
	SceneChangeDetect        string        `json:"SceneChangeDetect"`
	Tiles                    string        `json:"Tiles"`
	InterlaceMode            string        `json:"InterlaceMode"`
	WriteMp4PackagingType    string        `json:"WriteMp4PackagingType"`
}

// QvbrSettings carries the quality target and average bitrate ceiling for
// quality-defined variable bitrate encoding.
type QvbrSettings struct {
	QvbrQualityLevel  int `json:"QvbrQualityLevel"`
	MaxAverageBitrate int `json:"MaxAverageBitrate"`
}

// VideoCodecSettings is the codec discriminator block of a video rendition.
// Exactly one of the codec-specific fields is set.
type VideoCodecSettings struct {
	Codec        string        `json:"Codec"`
	H264Settings *H264Settings `json:"H264Settings,omitempty"`
	H265Settings *H265Settings `json:"H265Settings,omitempty"`
}

// AacSettings is the wire form of the AAC audio encoder configuration.
type AacSettings struct {
	CodecProfile                   string `json:"CodecProfile"`
	CodingMode                     string `json:"CodingMode"`
	RateControlMode                string `json:"RateControlMode"`
	SampleRate                     int    `json:"SampleRate"`
	Bitrate                        int    `json:"Bitrate"`
	AudioDescriptionBroadcasterMix string `json:"AudioDescriptionBroadcasterMix"`
	RawFormat                      string `json:"RawFormat"`
	Specification                  string `json:"Specification"`
}

// AudioCodecSettings is the codec discriminator block of an audio rendition.
type AudioCodecSettings struct {
	Codec       string       `json:"Codec"`
	AacSettings *AacSettings `json:"AacSettings,omitempty"`
}

var h264Profiles = map[string]string{
	"baseline": "BASELINE",
	"main":     "MAIN",
	"high":     "HIGH",
}

var h265Profiles = map[string]string{
	"main":   "MAIN_MAIN",
	"main10": "MAIN10_MAIN",
}

// VideoSettings renders the encoder configuration for one ladder rung.
// It panics on a codec outside the rung tables; variants are built by this
// package, so an unknown codec is a programming error, not input.
func VideoSettings(v Variant) VideoCodecSettings {
	qvbr := &QvbrSettings{
		QvbrQualityLevel:  qvbrQualityLevel,
		MaxAverageBitrate: v.BitrateKbps * 1000,
	}
	switch v.Codec {
	case CodecH264:
		return VideoCodecSettings{
			Codec: "H_264",
			H264Settings: &H264Settings{
				RateControlMode: "QVBR",
				QvbrSettings:    qvbr,
				MaxBitrate:      v.MaxBitrateKbps() * 1000,
				// MaxAverageBitrate is only honored under MULTI_PASS_HQ.
				QualityTuningLevel:       "MULTI_PASS_HQ",
				CodecProfile:             h264Profile(v.Profile),
				CodecLevel:               "AUTO",
				GopSize:                  gopSizeFrames,
				GopSizeUnits:             "FRAMES",
				NumberBFramesBetweenRefs: numberBFrames,
				GopBReference:            "ENABLED",
				AdaptiveQuantization:     "HIGH",
				SceneChangeDetect:        "ENABLED",
				EntropyEncoding:          "CABAC",
				Syntax:                   "DEFAULT",
				Slices:                   1,
				InterlaceMode:            "PROGRESSIVE",
			},
		}
	case CodecH265:
		return VideoCodecSettings{
			Codec: "H_265",
			H265Settings: &H265Settings{
				RateControlMode: "QVBR",
				QvbrSettings:    qvbr,
				MaxBitrate:      v.MaxBitrateKbps() * 1000,
				// MaxAverageBitrate is only honored under MULTI_PASS_HQ.
				QualityTuningLevel:       "MULTI_PASS_HQ",
				CodecProfile:             h265Profile(v.Profile),
				CodecLevel:               "AUTO",
				GopSize:                  gopSizeFrames,
				GopSizeUnits:             "FRAMES",
				NumberBFramesBetweenRefs: numberBFrames,
				GopBReference:            "ENABLED",
				AdaptiveQuantization:     "HIGH",
				SceneChangeDetect:        "ENABLED",
				Tiles:                    "ENABLED",
				InterlaceMode:            "PROGRESSIVE",
				WriteMp4PackagingType:    "HVC1",
			},
		}
	default:
		panic(fmt.Sprintf("ladder: unknown codec %q", v.Codec))
	}
}

func h264Profile(name string) string {
	p, ok := h264Profiles[name]
	if !ok {
		panic(fmt.Sprintf("ladder: unknown h264 profile %q", name))
	}
	return p
}

func h265Profile(name string) string {
	p, ok := h265Profiles[name]
	if !ok {
		panic(fmt.Sprintf("ladder: unknown h265 profile %q", name))
	}
	return p
}

// AudioSettings renders the AAC configuration for one audio track. Stereo
// and mono sources encode as 2.0; anything wider encodes as 5.1.
func AudioSettings(channels, bitrateKbps int) AudioCodecSettings {
	codingMode := "CODING_MODE_2_0"
	if channels > 2 {
		codingMode = "CODING_MODE_5_1"
	}
	return AudioCodecSettings{
		Codec: "AAC",
		AacSettings: &AacSettings{
			CodecProfile:                   "LC",
			CodingMode:                     codingMode,
			RateControlMode:                "CBR",
			SampleRate:                     48000,
			Bitrate:                        bitrateKbps * 1000,
			AudioDescriptionBroadcasterMix: "NORMAL",
			RawFormat:                      "NONE",
			Specification:                  "MPEG4",
		},
	}
}

// FormatCodecLevel converts a dotted level like "4.1" to the enum spelling
// "LEVEL_4_1". Whole levels drop the trailing zero: "4.0" becomes "LEVEL_4".
func FormatCodecLevel(level string) string {
	level = strings.TrimSuffix(level, ".0")
	return "LEVEL_" + strings.ReplaceAll(level, ".", "_")
}
