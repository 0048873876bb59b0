package manifest

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/kprabhasreddy/anime-transcoding-pipeline/internal/services"
)

// DurationToleranceSeconds is the allowed disagreement between the episode
// metadata duration and the measured mezzanine duration.
const DurationToleranceSeconds = 1.0

// SubtitleFormat identifies the container format of a subtitle file.
type SubtitleFormat string

const (
	SubtitleWebVTT SubtitleFormat = "WebVTT"
	SubtitleSRT    SubtitleFormat = "SRT"
	SubtitleTTML   SubtitleFormat = "TTML"
	SubtitleSCC    SubtitleFormat = "SCC"
)

// AudioTrack is one language version of the episode audio.
type AudioTrack struct {
	Language   string
	Label      string
	IsDefault  bool
	Channels   int
	TrackIndex int // 1-based track index in the source file
}

// SubtitleTrack is one subtitle file shipped alongside the mezzanine.
type SubtitleTrack struct {
	Language  string
	Label     string
	FilePath  string // relative to the manifest location
	IsDefault bool
	IsForced  bool
	Format    SubtitleFormat
}

// Episode carries the series/episode metadata for a transcode request.
type Episode struct {
	SeriesID           string
	SeriesTitle        string
	SeriesTitleJa      string
	SeasonNumber       int
	EpisodeNumber      int
	EpisodeTitle       string
	EpisodeTitleJa     string
	EpisodeDescription string
	DurationSeconds    float64
	ReleaseDate        *time.Time
	ContentRating      string
	IsSimulcast        bool
	IsDubbed           bool
}

// Code renders the episode code, e.g. "S01E001".
func (e Episode) Code() string {
	return fmt.Sprintf("S%02dE%03d", e.SeasonNumber, e.EpisodeNumber)
}

// Mezzanine describes the high-quality source file used as transcoding input.
type Mezzanine struct {
	FilePath        string // relative to the input bucket
	ChecksumMD5     string
	ChecksumXXHash  string
	FileSizeBytes   int64
	DurationSeconds float64
	VideoCodec      string
	AudioCodec      string
	Width           int
	Height          int
	FrameRate       float64
	BitrateKbps     int
	ColorSpace      string
	BitDepth        int
}

// Resolution renders the source resolution, e.g. "1920x1080".
func (m Mezzanine) Resolution() string {
	return fmt.Sprintf("%dx%d", m.Width, m.Height)
}

// IsHD reports whether the source is 720p or higher.
func (m Mezzanine) IsHD() bool { return m.Height >= 720 }

// Is4K reports whether the source is 2160p or higher.
func (m Mezzanine) Is4K() bool { return m.Height >= 2160 }

// Manifest is the validated transcode request for a single episode. It is
// produced once by the XML parser and treated as immutable afterwards.
type Manifest struct {
	Version     string
	ManifestID  string
	CreatedAt   *time.Time
	Episode     Episode
	Mezzanine   Mezzanine
	AudioTracks []AudioTrack
	// SubtitleTracks may be empty; simulcasts frequently ship without subs.
	SubtitleTracks []SubtitleTrack
	Priority       int
	CallbackURL    string
}

// AudioLanguages returns the distinct audio language tags in sorted order.
func (m *Manifest) AudioLanguages() []string {
	seen := make(map[string]bool, len(m.AudioTracks))
	langs := make([]string, 0, len(m.AudioTracks))
	for _, t := range m.AudioTracks {
		if seen[t.Language] {
			continue
		}
		seen[t.Language] = true
		langs = append(langs, t.Language)
	}
	sort.Strings(langs)
	return langs
}

// DefaultAudioTrack returns the track flagged as default. Validate guarantees
// exactly one exists.
func (m *Manifest) DefaultAudioTrack() AudioTrack {
	for _, t := range m.AudioTracks {
		if t.IsDefault {
			return t
		}
	}
	return AudioTrack{}
}

var (
	manifestIDPattern = regexp.MustCompile(`^[a-zA-Z0-9-_]+$`)
	seriesIDPattern   = regexp.MustCompile(`^[a-z0-9-]+$`)
	md5Pattern        = regexp.MustCompile(`^[a-fA-F0-9]{32}$`)
)

// Validate enforces the structural invariants the rest of the pipeline
// relies on. It never mutates the manifest.
func (m *Manifest) Validate() error {
	if m.ManifestID == "" || !manifestIDPattern.MatchString(m.ManifestID) {
		return invalid("manifest_id", fmt.Sprintf("must match %s, got %q", manifestIDPattern, m.ManifestID))
	}
	if err := m.validateEpisode(); err != nil {
		return err
	}
	if err := m.validateMezzanine(); err != nil {
		return err
	}
	if err := m.validateTracks(); err != nil {
		return err
	}
	if m.Priority < 0 || m.Priority > 10 {
		return invalid("priority", fmt.Sprintf("must be within 0..10, got %d", m.Priority))
	}
	if math.Abs(m.Episode.DurationSeconds-m.Mezzanine.DurationSeconds) > DurationToleranceSeconds {
		return invalid("duration", fmt.Sprintf(
			"episode duration %.2fs does not match mezzanine duration %.2fs",
			m.Episode.DurationSeconds, m.Mezzanine.DurationSeconds))
	}
	return nil
}

func (m *Manifest) validateEpisode() error {
	e := m.Episode
	if e.SeriesID == "" || !seriesIDPattern.MatchString(e.SeriesID) {
		return invalid("episode.series_id", fmt.Sprintf("must be a url-safe slug, got %q", e.SeriesID))
	}
	if strings.TrimSpace(e.SeriesTitle) == "" {
		return invalid("episode.series_title", "required")
	}
	if e.SeasonNumber < 1 || e.SeasonNumber > 100 {
		return invalid("episode.season_number", fmt.Sprintf("must be within 1..100, got %d", e.SeasonNumber))
	}
	if e.EpisodeNumber < 1 || e.EpisodeNumber > 9999 {
		return invalid("episode.episode_number", fmt.Sprintf("must be within 1..9999, got %d", e.EpisodeNumber))
	}
	if strings.TrimSpace(e.EpisodeTitle) == "" {
		return invalid("episode.episode_title", "required")
	}
	if e.DurationSeconds <= 0 {
		return invalid("episode.duration_seconds", "must be positive")
	}
	return nil
}

func (m *Manifest) validateMezzanine() error {
	mz := m.Mezzanine
	if strings.TrimSpace(mz.FilePath) == "" {
		return invalid("mezzanine.file_path", "required")
	}
	if !md5Pattern.MatchString(mz.ChecksumMD5) {
		return invalid("mezzanine.checksum_md5", fmt.Sprintf("must be a 32-char hex digest, got %q", mz.ChecksumMD5))
	}
	if mz.FileSizeBytes <= 0 {
		return invalid("mezzanine.file_size_bytes", "must be positive")
	}
	if mz.DurationSeconds <= 0 {
		return invalid("mezzanine.duration_seconds", "must be positive")
	}
	if mz.Width < 320 || mz.Width > 7680 {
		return invalid("mezzanine.resolution_width", fmt.Sprintf("must be within 320..7680, got %d", mz.Width))
	}
	if mz.Height < 240 || mz.Height > 4320 {
		return invalid("mezzanine.resolution_height", fmt.Sprintf("must be within 240..4320, got %d", mz.Height))
	}
	if mz.FrameRate <= 0 || mz.FrameRate > 120 {
		return invalid("mezzanine.frame_rate", fmt.Sprintf("must be within (0, 120], got %g", mz.FrameRate))
	}
	if mz.BitrateKbps <= 0 {
		return invalid("mezzanine.bitrate_kbps", "must be positive")
	}
	return nil
}

func (m *Manifest) validateTracks() error {
	if len(m.AudioTracks) == 0 {
		return invalid("audio_tracks", "at least one audio track is required")
	}
	defaults := 0
	for i, t := range m.AudioTracks {
		if strings.TrimSpace(t.Language) == "" {
			return invalid(fmt.Sprintf("audio_tracks[%d].language", i), "required")
		}
		if t.Channels < 1 || t.Channels > 8 {
			return invalid(fmt.Sprintf("audio_tracks[%d].channels", i), fmt.Sprintf("must be within 1..8, got %d", t.Channels))
		}
		if t.TrackIndex < 1 {
			return invalid(fmt.Sprintf("audio_tracks[%d].track_index", i), "must be 1-based")
		}
		if t.IsDefault {
			defaults++
		}
	}
	if defaults != 1 {
		return invalid("audio_tracks", fmt.Sprintf("exactly one default track required, got %d", defaults))
	}
	for i, t := range m.SubtitleTracks {
		if strings.TrimSpace(t.Language) == "" {
			return invalid(fmt.Sprintf("subtitle_tracks[%d].language", i), "required")
		}
		if strings.TrimSpace(t.FilePath) == "" {
			return invalid(fmt.Sprintf("subtitle_tracks[%d].file_path", i), "required")
		}
	}
	return nil
}

func invalid(field, message string) error {
	return services.Wrap(services.ErrValidation, "manifest", field, message, nil)
}
