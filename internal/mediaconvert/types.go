package mediaconvert

import "github.com/kprabhasreddy/anime-transcoding-pipeline/internal/ladder"

// Job is the full submission payload: the encode settings plus the queue,
// role, and metadata the transcoding service needs to run them.
type Job struct {
	Queue        string            `json:"Queue,omitempty"`
	Role         string            `json:"Role,omitempty"`
	Settings     *JobSettings      `json:"Settings"`
	UserMetadata map[string]string `json:"UserMetadata,omitempty"`
	Priority     int               `json:"Priority,omitempty"`
}

// JobSettings describes one transcoding job: a single input fanned out to
// packaging-specific output groups.
type JobSettings struct {
	TimecodeConfig *TimecodeConfig `json:"TimecodeConfig"`
	Inputs         []Input         `json:"Inputs"`
	OutputGroups   []OutputGroup   `json:"OutputGroups"`
}

type TimecodeConfig struct {
	Source string `json:"Source"`
}

// Input points at the mezzanine file and names the audio and caption
// selectors the outputs reference.
type Input struct {
	FileInput        string                     `json:"FileInput"`
	AudioSelectors   map[string]AudioSelector   `json:"AudioSelectors"`
	CaptionSelectors map[string]CaptionSelector `json:"CaptionSelectors,omitempty"`
	VideoSelector    VideoSelector              `json:"VideoSelector"`
	TimecodeSource   string                     `json:"TimecodeSource"`
	FilterEnable     string                     `json:"FilterEnable"`
	PsiControl       string                     `json:"PsiControl"`
	FilterStrength   int                        `json:"FilterStrength"`
	DeblockFilter    string                     `json:"DeblockFilter"`
	DenoiseFilter    string                     `json:"DenoiseFilter"`
}

type AudioSelector struct {
	DefaultSelection string `json:"DefaultSelection"`
	SelectorType     string `json:"SelectorType"`
	Tracks           []int  `json:"Tracks"`
}

type CaptionSelector struct {
	SourceSettings CaptionSourceSettings `json:"SourceSettings"`
}

type CaptionSourceSettings struct {
	SourceType         string              `json:"SourceType"`
	FileSourceSettings *FileSourceSettings `json:"FileSourceSettings,omitempty"`
}

type FileSourceSettings struct {
	SourceFile string `json:"SourceFile"`
}

type VideoSelector struct {
	ColorSpace string `json:"ColorSpace"`
	Rotate     string `json:"Rotate"`
}

// OutputGroup bundles the outputs that share one packaging format.
type OutputGroup struct {
	Name                string              `json:"Name"`
	OutputGroupSettings OutputGroupSettings `json:"OutputGroupSettings"`
	Outputs             []Output            `json:"Outputs"`
}

type OutputGroupSettings struct {
	Type                 string                `json:"Type"`
	HlsGroupSettings     *HlsGroupSettings     `json:"HlsGroupSettings,omitempty"`
	DashIsoGroupSettings *DashIsoGroupSettings `json:"DashIsoGroupSettings,omitempty"`
}

type HlsGroupSettings struct {
	SegmentLength           int                      `json:"SegmentLength"`
	MinSegmentLength        int                      `json:"MinSegmentLength"`
	Destination             string                   `json:"Destination"`
	ManifestDurationFormat  string                   `json:"ManifestDurationFormat"`
	SegmentControl          string                   `json:"SegmentControl"`
	OutputSelection         string                   `json:"OutputSelection"`
	StreamInfResolution     string                   `json:"StreamInfResolution"`
	ClientCache             string                   `json:"ClientCache"`
	ManifestCompression     string                   `json:"ManifestCompression"`
	DirectoryStructure      string                   `json:"DirectoryStructure"`
	ProgramDateTime         string                   `json:"ProgramDateTime"`
	ProgramDateTimePeriod   int                      `json:"ProgramDateTimePeriod"`
	CodecSpecification      string                   `json:"CodecSpecification"`
	CaptionLanguageSetting  string                   `json:"CaptionLanguageSetting"`
	CaptionLanguageMappings []CaptionLanguageMapping `json:"CaptionLanguageMappings,omitempty"`
}

type CaptionLanguageMapping struct {
	LanguageCode        string `json:"LanguageCode"`
	LanguageDescription string `json:"LanguageDescription"`
	CaptionChannel      int    `json:"CaptionChannel"`
}

type DashIsoGroupSettings struct {
	SegmentLength                        int    `json:"SegmentLength"`
	Destination                          string `json:"Destination"`
	FragmentLength                       int    `json:"FragmentLength"`
	SegmentControl                       string `json:"SegmentControl"`
	HbbtvCompliance                      string `json:"HbbtvCompliance"`
	MpdProfile                           string `json:"MpdProfile"`
	WriteSegmentTimelineInRepresentation string `json:"WriteSegmentTimelineInRepresentation"`
}

// Output is one rendition: a video variant, an audio-only rendition, or a
// caption sidecar, discriminated by which description block is set.
type Output struct {
	NameModifier        string               `json:"NameModifier"`
	ContainerSettings   ContainerSettings    `json:"ContainerSettings"`
	VideoDescription    *VideoDescription    `json:"VideoDescription,omitempty"`
	AudioDescriptions   []AudioDescription   `json:"AudioDescriptions,omitempty"`
	CaptionDescriptions []CaptionDescription `json:"CaptionDescriptions,omitempty"`
}

type ContainerSettings struct {
	Container    string        `json:"Container"`
	M3u8Settings *M3u8Settings `json:"M3u8Settings,omitempty"`
}

// M3u8Settings configures the transport stream mux. Video outputs pin the
// full PID layout; audio-only outputs carry only the subset the mux needs,
// so the PID fields are optional.
type M3u8Settings struct {
	AudioFramesPerPes  int    `json:"AudioFramesPerPes"`
	PcrControl         string `json:"PcrControl"`
	PmtPid             int    `json:"PmtPid"`
	PrivateMetadataPid int    `json:"PrivateMetadataPid,omitempty"`
	ProgramNumber      int    `json:"ProgramNumber"`
	PatInterval        *int   `json:"PatInterval,omitempty"`
	PmtInterval        *int   `json:"PmtInterval,omitempty"`
	VideoPid           int    `json:"VideoPid,omitempty"`
	AudioPids          []int  `json:"AudioPids,omitempty"`
}

type VideoDescription struct {
	Width             int                       `json:"Width"`
	Height            int                       `json:"Height"`
	CodecSettings     ladder.VideoCodecSettings `json:"CodecSettings"`
	ScalingBehavior   string                    `json:"ScalingBehavior"`
	TimecodeInsertion string                    `json:"TimecodeInsertion"`
	AntiAlias         string                    `json:"AntiAlias"`
	RespondToAfd      string                    `json:"RespondToAfd,omitempty"`
	Sharpness         int                       `json:"Sharpness"`
	AfdSignaling      string                    `json:"AfdSignaling,omitempty"`
	DropFrameTimecode string                    `json:"DropFrameTimecode,omitempty"`
}

type AudioDescription struct {
	AudioSourceName     string                    `json:"AudioSourceName"`
	AudioTypeControl    string                    `json:"AudioTypeControl"`
	LanguageCode        string                    `json:"LanguageCode"`
	LanguageCodeControl string                    `json:"LanguageCodeControl"`
	CodecSettings       ladder.AudioCodecSettings `json:"CodecSettings"`
	StreamName          string                    `json:"StreamName,omitempty"`
}

type CaptionDescription struct {
	CaptionSelectorName string                     `json:"CaptionSelectorName"`
	DestinationSettings CaptionDestinationSettings `json:"DestinationSettings"`
	LanguageCode        string                     `json:"LanguageCode"`
	LanguageDescription string                     `json:"LanguageDescription"`
}

type CaptionDestinationSettings struct {
	DestinationType           string                     `json:"DestinationType"`
	WebvttDestinationSettings *WebvttDestinationSettings `json:"WebvttDestinationSettings,omitempty"`
}

type WebvttDestinationSettings struct {
	StylePassthrough string `json:"StylePassthrough"`
}
