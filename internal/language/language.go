package language

import (
	"fmt"
	"strings"

	xlanguage "golang.org/x/text/language"

	"github.com/kprabhasreddy/anime-transcoding-pipeline/internal/services"
)

type entry struct {
	code2   string // ISO 639-1 (2-letter)
	code3   string // ISO 639-2/T primary (3-letter)
	display string // Human-readable name
}

// The transcoder accepts only these languages. Audio and caption selectors
// must carry the 3-letter form; anything missing from this table fails the
// job build so a wrong code never reaches output metadata.
var languages = []entry{
	{"en", "ENG", "English"},
	{"ja", "JPN", "Japanese"},
	{"es", "SPA", "Spanish"},
	{"fr", "FRA", "French"},
	{"de", "DEU", "German"},
	{"it", "ITA", "Italian"},
	{"pt", "POR", "Portuguese"},
	{"ru", "RUS", "Russian"},
	{"zh", "ZHO", "Chinese"},
	{"ko", "KOR", "Korean"},
	{"ar", "ARA", "Arabic"},
	{"hi", "HIN", "Hindi"},
	{"th", "THA", "Thai"},
	{"vi", "VIE", "Vietnamese"},
	{"id", "IND", "Indonesian"},
	{"ms", "MSA", "Malay"},
	{"tl", "TGL", "Tagalog"},
	{"pl", "POL", "Polish"},
	{"nl", "NLD", "Dutch"},
	{"tr", "TUR", "Turkish"},
	{"sv", "SWE", "Swedish"},
	{"da", "DAN", "Danish"},
	{"no", "NOR", "Norwegian"},
	{"fi", "FIN", "Finnish"},
	{"cs", "CES", "Czech"},
	{"hu", "HUN", "Hungarian"},
	{"ro", "RON", "Romanian"},
	{"el", "ELL", "Greek"},
	{"he", "HEB", "Hebrew"},
	{"uk", "UKR", "Ukrainian"},
}

var byCode2 map[string]*entry

func init() {
	byCode2 = make(map[string]*entry, len(languages))
	for i := range languages {
		byCode2[languages[i].code2] = &languages[i]
	}
}

// Base strips any regional or script subtag from a BCP 47 tag, leaving the
// primary 2-letter code: "en-US" -> "en", "es-419" -> "es", "zh-Hans" -> "zh".
func Base(tag string) string {
	tag = strings.TrimSpace(tag)
	if parsed, err := xlanguage.Parse(tag); err == nil {
		if base, conf := parsed.Base(); conf != xlanguage.No {
			return base.String()
		}
	}
	// Not a well-formed BCP 47 tag; fall back to splitting on the first
	// subtag separator.
	tag = strings.ToLower(tag)
	if idx := strings.IndexAny(tag, "-_"); idx > 0 {
		tag = tag[:idx]
	}
	return tag
}

// Translate converts a 2-letter (or regionally tagged) language code into the
// transcoder's 3-letter vocabulary. It fails loudly for anything not in the
// table; silently defaulting would corrupt output metadata undetectably.
func Translate(tag string) (string, error) {
	code := Base(tag)
	if e, ok := byCode2[code]; ok {
		return e.code3, nil
	}
	return "", services.Wrap(
		services.ErrUnsupported, "language", "translate",
		fmt.Sprintf("no ISO 639-2 mapping for language code %q", tag), nil)
}

// Supported reports whether the tag maps to a transcoder language code.
func Supported(tag string) bool {
	_, ok := byCode2[Base(tag)]
	return ok
}

// DisplayName returns a human-readable language name for any recognized code.
// Returns "Unknown" for empty input, or the uppercased code for unrecognized input.
func DisplayName(tag string) string {
	if strings.TrimSpace(tag) == "" {
		return "Unknown"
	}
	if e, ok := byCode2[Base(tag)]; ok {
		return e.display
	}
	return strings.ToUpper(strings.TrimSpace(tag))
}
