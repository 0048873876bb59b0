package outputcheck

import (
	"encoding/xml"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/kprabhasreddy/anime-transcoding-pipeline/internal/ladder"
)

type mpdDocument struct {
	XMLName                   xml.Name    `xml:"MPD"`
	Type                      string      `xml:"type,attr"`
	MediaPresentationDuration string      `xml:"mediaPresentationDuration,attr"`
	Periods                   []mpdPeriod `xml:"Period"`
}

type mpdPeriod struct {
	AdaptationSets []mpdAdaptationSet `xml:"AdaptationSet"`
}

type mpdAdaptationSet struct {
	ContentType     string              `xml:"contentType,attr"`
	MimeType        string              `xml:"mimeType,attr"`
	Lang            string              `xml:"lang,attr"`
	Representations []mpdRepresentation `xml:"Representation"`
}

type mpdRepresentation struct {
	ID        string `xml:"id,attr"`
	Bandwidth int    `xml:"bandwidth,attr"`
	Width     int    `xml:"width,attr"`
	Height    int    `xml:"height,attr"`
	Codecs    string `xml:"codecs,attr"`
}

func (a mpdAdaptationSet) isVideo() bool {
	return strings.Contains(a.ContentType, "video") || strings.Contains(a.MimeType, "video")
}

func (a mpdAdaptationSet) isAudio() bool {
	return strings.Contains(a.ContentType, "audio") || strings.Contains(a.MimeType, "audio")
}

// CheckDASH validates an MPD manifest: XML shape, duration attribute,
// periods, video and audio adaptation sets, and, when expected variants are
// given, a representation at each rung's resolution.
func CheckDASH(content string, expected []ladder.Variant) *Report {
	report := newReport("dash_mpd")

	var doc mpdDocument
	if err := xml.Unmarshal([]byte(content), &doc); err != nil {
		report.add("xml_parse", false, "invalid XML: "+err.Error())
		return report
	}
	report.add("xml_parse", true, "valid MPD document")

	report.add("duration", doc.MediaPresentationDuration != "",
		durationMessage(doc.MediaPresentationDuration))

	mpdType := doc.Type
	if mpdType == "" {
		mpdType = "static"
	}
	report.note("type", "MPD type: "+mpdType)

	report.add("periods", len(doc.Periods) > 0,
		fmt.Sprintf("found %d period(s)", len(doc.Periods)))
	if len(doc.Periods) == 0 {
		return report
	}

	var videoSets, audioSets []mpdAdaptationSet
	for _, period := range doc.Periods {
		for _, set := range period.AdaptationSets {
			switch {
			case set.isVideo():
				videoSets = append(videoSets, set)
			case set.isAudio():
				audioSets = append(audioSets, set)
			}
		}
	}
	report.add("video_adaptation_sets", len(videoSets) > 0,
		fmt.Sprintf("found %d video adaptation set(s)", len(videoSets)))
	report.add("audio_adaptation_sets", len(audioSets) > 0,
		fmt.Sprintf("found %d audio adaptation set(s)", len(audioSets)))

	var representations []mpdRepresentation
	for _, set := range videoSets {
		representations = append(representations, set.Representations...)
	}
	report.add("video_representations", len(representations) > 0,
		fmt.Sprintf("found %d video representation(s)", len(representations)))

	if len(expected) > 0 {
		missing := missingRepresentations(representations, expected)
		if len(missing) > 0 {
			report.add("expected_variants", false,
				"missing expected variants: "+strings.Join(missing, ", "))
		} else {
			report.add("expected_variants", true, "all expected variants present")
		}
	}

	return report
}

func durationMessage(duration string) string {
	if duration == "" {
		return "missing mediaPresentationDuration"
	}
	return "duration: " + duration
}

func missingRepresentations(actual []mpdRepresentation, expected []ladder.Variant) []string {
	var missing []string
	for _, exp := range expected {
		found := false
		for _, rep := range actual {
			if rep.Width == exp.Width && rep.Height == exp.Height {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, fmt.Sprintf("%s@%dx%d", exp.Codec, exp.Width, exp.Height))
		}
	}
	return missing
}

// MPDDurationSeconds extracts mediaPresentationDuration from an MPD document
// as seconds. Unparseable documents or missing attributes report zero.
func MPDDurationSeconds(content string) float64 {
	var doc mpdDocument
	if err := xml.Unmarshal([]byte(content), &doc); err != nil {
		return 0
	}
	return ParseMPDDuration(doc.MediaPresentationDuration)
}

var mpdDurationPart = regexp.MustCompile(`(\d+(?:\.\d+)?)([HMS])`)

// ParseMPDDuration converts an ISO 8601 duration like "PT23M41.8S" to
// seconds. Malformed input parses as zero.
func ParseMPDDuration(s string) float64 {
	rest, ok := strings.CutPrefix(s, "PT")
	if !ok {
		return 0
	}
	total := 0.0
	for _, match := range mpdDurationPart.FindAllStringSubmatch(rest, -1) {
		value, err := strconv.ParseFloat(match[1], 64)
		if err != nil {
			continue
		}
		switch match[2] {
		case "H":
			total += value * 3600
		case "M":
			total += value * 60
		case "S":
			total += value
		}
	}
	return total
}
