package ladder

import (
	"fmt"
	"sort"
)

// Codec identifies a video codec family in the ladder policy.
type Codec string

const (
	CodecH264 Codec = "h264"
	CodecH265 Codec = "h265"
)

// audioBitrateKbps is the AAC rate assumed per track when estimating
// rendition storage.
const audioBitrateKbps = 128

// Variant is one rung of the adaptive bitrate ladder: a target resolution,
// bitrate, and codec profile for a single video rendition.
type Variant struct {
	Codec       Codec
	Name        string // rendition label, e.g. "h264_1080p"
	Width       int
	Height      int
	BitrateKbps int
	Profile     string // codec profile, e.g. "high", "main"
	Level       string // codec level, e.g. "4.2"
}

// MaxBitrateKbps is the QVBR ceiling, 1.5x the average target.
func (v Variant) MaxBitrateKbps() int {
	return v.BitrateKbps * 3 / 2
}

// NameModifier renders the output name suffix used by the job builder.
func (v Variant) NameModifier() string {
	return fmt.Sprintf("_%s_%dp", v.Codec, v.Height)
}

// The rung tables are fixed policy. Changing a bitrate, profile, or level
// here changes encoded output for every episode and must be paired with a
// profile_version bump so idempotency tokens do not collide across policies.
var h264Rungs = []Variant{
	{Codec: CodecH264, Name: "h264_1080p", Width: 1920, Height: 1080, BitrateKbps: 6000, Profile: "high", Level: "4.2"},
	{Codec: CodecH264, Name: "h264_720p", Width: 1280, Height: 720, BitrateKbps: 3500, Profile: "high", Level: "4.0"},
	{Codec: CodecH264, Name: "h264_480p", Width: 854, Height: 480, BitrateKbps: 1800, Profile: "main", Level: "3.1"},
	{Codec: CodecH264, Name: "h264_360p", Width: 640, Height: 360, BitrateKbps: 800, Profile: "main", Level: "3.0"},
}

var h265Rungs = []Variant{
	{Codec: CodecH265, Name: "h265_1080p", Width: 1920, Height: 1080, BitrateKbps: 4500, Profile: "main", Level: "4.0"},
	{Codec: CodecH265, Name: "h265_720p", Width: 1280, Height: 720, BitrateKbps: 2500, Profile: "main", Level: "4.0"},
}

// Build selects the ladder rungs applicable to a source of the given
// dimensions. Rungs taller than the source are dropped so no rendition
// upscales. The result is ordered tallest first, H.264 before H.265 at
// equal heights. Sources shorter than the 360p rung produce an empty
// ladder; the job builder rejects those rather than upscaling.
func Build(sourceWidth, sourceHeight int, enableH265 bool) []Variant {
	variants := selectRungs(h264Rungs, sourceHeight)
	if enableH265 {
		variants = append(variants, selectRungs(h265Rungs, sourceHeight)...)
	}
	sort.SliceStable(variants, func(i, j int) bool {
		if variants[i].Height != variants[j].Height {
			return variants[i].Height > variants[j].Height
		}
		return variants[i].Codec == CodecH264 && variants[j].Codec != CodecH264
	})
	return variants
}

func selectRungs(rungs []Variant, sourceHeight int) []Variant {
	out := make([]Variant, 0, len(rungs))
	for _, r := range rungs {
		if r.Height <= sourceHeight {
			out = append(out, r)
		}
	}
	return out
}

// EstimateOutputSizeGB approximates total rendition storage for capacity
// planning: average video bitrates plus 128 kbps per audio track over the
// episode duration, padded 10% for container overhead.
func EstimateOutputSizeGB(variants []Variant, durationSeconds float64, audioTracks int) float64 {
	totalKbps := audioTracks * audioBitrateKbps
	for _, v := range variants {
		totalKbps += v.BitrateKbps
	}
	bits := float64(totalKbps) * 1000 * durationSeconds
	return bits / 8 / (1 << 30) * 1.1
}
