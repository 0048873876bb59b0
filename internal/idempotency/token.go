package idempotency

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
)

// TokenInput is the set of fields that define job identity. Two submissions
// with the same input are the same job; anything outside this struct
// (priority, callbacks, timestamps) never influences the token.
type TokenInput struct {
	ManifestID     string
	ChecksumMD5    string
	FileSizeBytes  int64
	AudioLanguages []string
	ProfileVersion string
}

// Token derives the deterministic idempotency token for the input: the
// SHA-256 hex digest of the identity fields joined with "|". Audio languages
// are deduplicated and sorted so track order in the manifest does not
// produce a distinct token.
func Token(in TokenInput) string {
	langs := append([]string(nil), in.AudioLanguages...)
	sort.Strings(langs)
	langs = dedupeSorted(langs)

	material := strings.Join([]string{
		in.ManifestID,
		strings.ToLower(in.ChecksumMD5),
		strconv.FormatInt(in.FileSizeBytes, 10),
		strings.Join(langs, ","),
		in.ProfileVersion,
	}, "|")

	sum := sha256.Sum256([]byte(material))
	return hex.EncodeToString(sum[:])
}

func dedupeSorted(values []string) []string {
	out := values[:0]
	for i, v := range values {
		if i > 0 && v == values[i-1] {
			continue
		}
		out = append(out, v)
	}
	return out
}
