package outputcheck

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/kprabhasreddy/anime-transcoding-pipeline/internal/ladder"
)

// StreamVariant is one EXT-X-STREAM-INF entry from a master playlist.
type StreamVariant struct {
	Bandwidth  int
	Resolution string
	Codecs     string
	Audio      string
	URI        string
}

// MediaRendition is one EXT-X-MEDIA entry.
type MediaRendition struct {
	Type     string
	GroupID  string
	Language string
	Name     string
	Default  bool
	URI      string
}

// CheckHLSMaster validates a master playlist: header, version tag, variant
// stream entries, and, when expected variants are given, that each ladder
// rung appears at its resolution.
func CheckHLSMaster(content string, expected []ladder.Variant) *Report {
	report := newReport("hls_master")
	lines := strings.Split(strings.TrimSpace(content), "\n")

	if len(lines) == 0 || !strings.HasPrefix(lines[0], "#EXTM3U") {
		report.add("extm3u_header", false, "missing #EXTM3U header")
		return report
	}
	report.add("extm3u_header", true, "#EXTM3U header present")

	hasVersion := false
	for _, line := range lines {
		if strings.HasPrefix(line, "#EXT-X-VERSION") {
			hasVersion = true
			break
		}
	}
	report.add("version_tag", hasVersion, versionMessage(hasVersion))

	variants := ParseStreamVariants(content)
	report.add("variant_streams", len(variants) > 0,
		fmt.Sprintf("found %d variant stream(s)", len(variants)))

	if len(expected) > 0 {
		missing := missingResolutions(variants, expected)
		if len(missing) > 0 {
			report.add("expected_variants", false,
				"missing expected variants: "+strings.Join(missing, ", "))
		} else {
			report.add("expected_variants", true, "all expected variants present")
		}
	}

	audio := ParseMediaRenditions(content, "AUDIO")
	report.note("audio_renditions", fmt.Sprintf("found %d audio rendition(s)", len(audio)))

	return report
}

func versionMessage(present bool) string {
	if present {
		return "EXT-X-VERSION present"
	}
	return "missing EXT-X-VERSION"
}

// CheckHLSMedia validates a media playlist: header, target duration,
// segment entries, and the VOD end marker.
func CheckHLSMedia(content string) *Report {
	report := newReport("hls_media")
	lines := strings.Split(strings.TrimSpace(content), "\n")

	if len(lines) == 0 || !strings.HasPrefix(lines[0], "#EXTM3U") {
		report.add("extm3u_header", false, "missing #EXTM3U header")
		return report
	}
	report.add("extm3u_header", true, "#EXTM3U header present")

	targetDuration := -1
	for _, line := range lines {
		if rest, ok := strings.CutPrefix(line, "#EXT-X-TARGETDURATION:"); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(rest)); err == nil {
				targetDuration = n
			}
			break
		}
	}
	if targetDuration >= 0 {
		report.add("target_duration", true, fmt.Sprintf("target duration %ds", targetDuration))
	} else {
		report.add("target_duration", false, "missing EXT-X-TARGETDURATION")
	}

	count, total := segmentStats(content)
	report.add("segments", count > 0,
		fmt.Sprintf("found %d segment(s), %.3fs total", count, total))

	hasEndlist := false
	for _, line := range lines {
		if strings.HasPrefix(line, "#EXT-X-ENDLIST") {
			hasEndlist = true
			break
		}
	}
	report.add("endlist", hasEndlist, endlistMessage(hasEndlist))

	return report
}

func endlistMessage(present bool) string {
	if present {
		return "VOD playlist complete"
	}
	return "missing EXT-X-ENDLIST"
}

// SumSegmentDurations totals the EXTINF values in a media playlist.
func SumSegmentDurations(content string) float64 {
	_, total := segmentStats(content)
	return total
}

func segmentStats(content string) (int, float64) {
	count := 0
	total := 0.0
	for _, line := range strings.Split(content, "\n") {
		rest, ok := strings.CutPrefix(strings.TrimSpace(line), "#EXTINF:")
		if !ok {
			continue
		}
		rest = strings.TrimSuffix(strings.TrimSpace(rest), ",")
		if idx := strings.Index(rest, ","); idx >= 0 {
			rest = rest[:idx]
		}
		d, err := strconv.ParseFloat(rest, 64)
		if err != nil {
			continue
		}
		count++
		total += d
	}
	return count, total
}

// ParseStreamVariants extracts EXT-X-STREAM-INF entries with their URIs.
func ParseStreamVariants(content string) []StreamVariant {
	lines := strings.Split(strings.TrimSpace(content), "\n")
	var variants []StreamVariant
	for i, line := range lines {
		rest, ok := strings.CutPrefix(line, "#EXT-X-STREAM-INF:")
		if !ok {
			continue
		}
		attrs := parseAttributes(rest)
		bandwidth, _ := strconv.Atoi(attrs["BANDWIDTH"])
		uri := ""
		if i+1 < len(lines) {
			uri = strings.TrimSpace(lines[i+1])
		}
		variants = append(variants, StreamVariant{
			Bandwidth:  bandwidth,
			Resolution: attrs["RESOLUTION"],
			Codecs:     attrs["CODECS"],
			Audio:      attrs["AUDIO"],
			URI:        uri,
		})
	}
	return variants
}

// ParseMediaRenditions extracts EXT-X-MEDIA entries of the given type.
func ParseMediaRenditions(content, mediaType string) []MediaRendition {
	var renditions []MediaRendition
	for _, line := range strings.Split(content, "\n") {
		rest, ok := strings.CutPrefix(strings.TrimSpace(line), "#EXT-X-MEDIA:")
		if !ok {
			continue
		}
		attrs := parseAttributes(rest)
		if attrs["TYPE"] != mediaType {
			continue
		}
		renditions = append(renditions, MediaRendition{
			Type:     attrs["TYPE"],
			GroupID:  attrs["GROUP-ID"],
			Language: attrs["LANGUAGE"],
			Name:     attrs["NAME"],
			Default:  attrs["DEFAULT"] == "YES",
			URI:      attrs["URI"],
		})
	}
	return renditions
}

var attrPattern = regexp.MustCompile(`([A-Z-]+)=("[^"]*"|[^,]*)`)

// parseAttributes splits an HLS attribute list, unquoting quoted values.
func parseAttributes(s string) map[string]string {
	attrs := make(map[string]string)
	for _, match := range attrPattern.FindAllStringSubmatch(s, -1) {
		attrs[match[1]] = strings.Trim(match[2], `"`)
	}
	return attrs
}

func missingResolutions(actual []StreamVariant, expected []ladder.Variant) []string {
	var missing []string
	for _, exp := range expected {
		resolution := fmt.Sprintf("%dx%d", exp.Width, exp.Height)
		found := false
		for _, act := range actual {
			if act.Resolution == resolution {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, fmt.Sprintf("%s@%s", exp.Codec, resolution))
		}
	}
	return missing
}
