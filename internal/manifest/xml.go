package manifest

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kprabhasreddy/anime-transcoding-pipeline/internal/services"
)

// ParseXML decodes an <AnimeTranscodeManifest> document and validates the
// result. The returned manifest is ready for job construction; no further
// schema checks happen downstream.
func ParseXML(data []byte) (*Manifest, error) {
	var doc manifestDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, services.Wrap(services.ErrValidation, "manifest", "parse xml", "invalid XML document", err)
	}
	if doc.XMLName.Local != "AnimeTranscodeManifest" {
		return nil, services.Wrap(services.ErrValidation, "manifest", "parse xml",
			fmt.Sprintf("unexpected root element %q, want AnimeTranscodeManifest", doc.XMLName.Local), nil)
	}

	m, err := doc.toManifest()
	if err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

type manifestDocument struct {
	XMLName     xml.Name     `xml:""`
	Version     string       `xml:"version,attr"`
	ManifestID  string       `xml:"ManifestId"`
	CreatedAt   string       `xml:"CreatedAt"`
	Episode     episodeXML   `xml:"Episode"`
	Mezzanine   mezzanineXML `xml:"Mezzanine"`
	AudioTracks struct {
		Tracks []audioTrackXML `xml:"AudioTrack"`
	} `xml:"AudioTracks"`
	SubtitleTracks struct {
		Tracks []subtitleTrackXML `xml:"SubtitleTrack"`
	} `xml:"SubtitleTracks"`
	Priority    string `xml:"Priority"`
	CallbackURL string `xml:"CallbackUrl"`
}

type episodeXML struct {
	SeriesID           string `xml:"SeriesId"`
	SeriesTitle        string `xml:"SeriesTitle"`
	SeriesTitleJa      string `xml:"SeriesTitleJa"`
	SeasonNumber       string `xml:"SeasonNumber"`
	EpisodeNumber      string `xml:"EpisodeNumber"`
	EpisodeTitle       string `xml:"EpisodeTitle"`
	EpisodeTitleJa     string `xml:"EpisodeTitleJa"`
	EpisodeDescription string `xml:"EpisodeDescription"`
	DurationSeconds    string `xml:"DurationSeconds"`
	ReleaseDate        string `xml:"ReleaseDate"`
	ContentRating      string `xml:"ContentRating"`
	IsSimulcast        string `xml:"IsSimulcast"`
	IsDubbed           string `xml:"IsDubbed"`
}

type mezzanineXML struct {
	FilePath        string `xml:"FilePath"`
	ChecksumMD5     string `xml:"ChecksumMD5"`
	ChecksumXXHash  string `xml:"ChecksumXXHash"`
	FileSizeBytes   string `xml:"FileSizeBytes"`
	DurationSeconds string `xml:"DurationSeconds"`
	VideoCodec      string `xml:"VideoCodec"`
	AudioCodec      string `xml:"AudioCodec"`
	ResolutionWidth string `xml:"ResolutionWidth"`
	ResolutionHght  string `xml:"ResolutionHeight"`
	FrameRate       string `xml:"FrameRate"`
	BitrateKbps     string `xml:"BitrateKbps"`
	ColorSpace      string `xml:"ColorSpace"`
	BitDepth        string `xml:"BitDepth"`
}

type audioTrackXML struct {
	Language   string `xml:"Language"`
	Label      string `xml:"Label"`
	IsDefault  string `xml:"IsDefault"`
	Channels   string `xml:"Channels"`
	TrackIndex string `xml:"TrackIndex"`
}

type subtitleTrackXML struct {
	Language  string `xml:"Language"`
	Label     string `xml:"Label"`
	FilePath  string `xml:"FilePath"`
	IsDefault string `xml:"IsDefault"`
	IsForced  string `xml:"IsForced"`
	Format    string `xml:"Format"`
}

func (d *manifestDocument) toManifest() (*Manifest, error) {
	fields := &fieldReader{}

	version := strings.TrimSpace(d.Version)
	if version == "" {
		version = "1.0"
	}

	m := &Manifest{
		Version:    version,
		ManifestID: fields.required("ManifestId", d.ManifestID),
		Episode: Episode{
			SeriesID:           fields.required("Episode.SeriesId", d.Episode.SeriesID),
			SeriesTitle:        fields.required("Episode.SeriesTitle", d.Episode.SeriesTitle),
			SeriesTitleJa:      strings.TrimSpace(d.Episode.SeriesTitleJa),
			SeasonNumber:       fields.requiredInt("Episode.SeasonNumber", d.Episode.SeasonNumber),
			EpisodeNumber:      fields.requiredInt("Episode.EpisodeNumber", d.Episode.EpisodeNumber),
			EpisodeTitle:       fields.required("Episode.EpisodeTitle", d.Episode.EpisodeTitle),
			EpisodeTitleJa:     strings.TrimSpace(d.Episode.EpisodeTitleJa),
			EpisodeDescription: strings.TrimSpace(d.Episode.EpisodeDescription),
			DurationSeconds:    fields.requiredFloat("Episode.DurationSeconds", d.Episode.DurationSeconds),
			ReleaseDate:        parseOptionalTime(d.Episode.ReleaseDate),
			ContentRating:      defaultString(d.Episode.ContentRating, "TV-14"),
			IsSimulcast:        parseBool(d.Episode.IsSimulcast),
			IsDubbed:           parseBool(d.Episode.IsDubbed),
		},
		Mezzanine: Mezzanine{
			FilePath:        fields.required("Mezzanine.FilePath", d.Mezzanine.FilePath),
			ChecksumMD5:     fields.required("Mezzanine.ChecksumMD5", d.Mezzanine.ChecksumMD5),
			ChecksumXXHash:  strings.TrimSpace(d.Mezzanine.ChecksumXXHash),
			FileSizeBytes:   fields.requiredInt64("Mezzanine.FileSizeBytes", d.Mezzanine.FileSizeBytes),
			DurationSeconds: fields.requiredFloat("Mezzanine.DurationSeconds", d.Mezzanine.DurationSeconds),
			VideoCodec:      fields.required("Mezzanine.VideoCodec", d.Mezzanine.VideoCodec),
			AudioCodec:      fields.required("Mezzanine.AudioCodec", d.Mezzanine.AudioCodec),
			Width:           fields.requiredInt("Mezzanine.ResolutionWidth", d.Mezzanine.ResolutionWidth),
			Height:          fields.requiredInt("Mezzanine.ResolutionHeight", d.Mezzanine.ResolutionHght),
			FrameRate:       fields.requiredFloat("Mezzanine.FrameRate", d.Mezzanine.FrameRate),
			BitrateKbps:     fields.requiredInt("Mezzanine.BitrateKbps", d.Mezzanine.BitrateKbps),
			ColorSpace:      strings.TrimSpace(d.Mezzanine.ColorSpace),
			BitDepth:        parseOptionalInt(d.Mezzanine.BitDepth),
		},
		CreatedAt:   parseOptionalTime(d.CreatedAt),
		Priority:    parseOptionalInt(d.Priority),
		CallbackURL: strings.TrimSpace(d.CallbackURL),
	}

	for i, t := range d.AudioTracks.Tracks {
		m.AudioTracks = append(m.AudioTracks, AudioTrack{
			Language:   fields.required(fmt.Sprintf("AudioTrack[%d].Language", i), t.Language),
			Label:      fields.required(fmt.Sprintf("AudioTrack[%d].Label", i), t.Label),
			IsDefault:  parseBool(t.IsDefault),
			Channels:   defaultInt(t.Channels, 2),
			TrackIndex: defaultInt(t.TrackIndex, 1),
		})
	}
	for i, t := range d.SubtitleTracks.Tracks {
		m.SubtitleTracks = append(m.SubtitleTracks, SubtitleTrack{
			Language:  fields.required(fmt.Sprintf("SubtitleTrack[%d].Language", i), t.Language),
			Label:     fields.required(fmt.Sprintf("SubtitleTrack[%d].Label", i), t.Label),
			FilePath:  fields.required(fmt.Sprintf("SubtitleTrack[%d].FilePath", i), t.FilePath),
			IsDefault: parseBool(t.IsDefault),
			IsForced:  parseBool(t.IsForced),
			Format:    parseSubtitleFormat(t.Format),
		})
	}

	if fields.err != nil {
		return nil, fields.err
	}
	return m, nil
}

// fieldReader accumulates the first conversion failure so toManifest can read
// every field without per-call error plumbing.
type fieldReader struct {
	err error
}

func (f *fieldReader) required(name, value string) string {
	value = strings.TrimSpace(value)
	if value == "" && f.err == nil {
		f.err = services.Wrap(services.ErrValidation, "manifest", name, "required element missing or empty", nil)
	}
	return value
}

func (f *fieldReader) requiredInt(name, value string) int {
	v := f.required(name, value)
	if f.err != nil {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		f.err = services.Wrap(services.ErrValidation, "manifest", name, fmt.Sprintf("not an integer: %q", v), nil)
		return 0
	}
	return n
}

func (f *fieldReader) requiredInt64(name, value string) int64 {
	v := f.required(name, value)
	if f.err != nil {
		return 0
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		f.err = services.Wrap(services.ErrValidation, "manifest", name, fmt.Sprintf("not an integer: %q", v), nil)
		return 0
	}
	return n
}

func (f *fieldReader) requiredFloat(name, value string) float64 {
	v := f.required(name, value)
	if f.err != nil {
		return 0
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		f.err = services.Wrap(services.ErrValidation, "manifest", name, fmt.Sprintf("not a number: %q", v), nil)
		return 0
	}
	return n
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "yes", "1":
		return true
	default:
		return false
	}
}

func parseOptionalInt(value string) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return n
}

func parseOptionalTime(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}

func defaultString(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	return value
}

func defaultInt(value string, fallback int) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

func parseSubtitleFormat(value string) SubtitleFormat {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "srt":
		return SubtitleSRT
	case "ttml":
		return SubtitleTTML
	case "scc":
		return SubtitleSCC
	default:
		return SubtitleWebVTT
	}
}
