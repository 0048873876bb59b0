package idempotency

import (
	"regexp"
	"testing"
)

func baseInput() TokenInput {
	return TokenInput{
		ManifestID:     "crunchy-ep-00125",
		ChecksumMD5:    "9e107d9d372bb6826bd81d3542a419d6",
		FileSizeBytes:  8589934592,
		AudioLanguages: []string{"ja", "en"},
		ProfileVersion: "v1.0",
	}
}

func TestTokenIsDeterministic(t *testing.T) {
	a := Token(baseInput())
	b := Token(baseInput())
	if a != b {
		t.Fatalf("same input produced different tokens: %s vs %s", a, b)
	}
	if !regexp.MustCompile(`^[a-f0-9]{64}$`).MatchString(a) {
		t.Fatalf("token %q is not a sha-256 hex digest", a)
	}
}

func TestTokenIgnoresLanguageOrderAndDuplicates(t *testing.T) {
	a := baseInput()
	b := baseInput()
	b.AudioLanguages = []string{"en", "ja", "en"}
	if Token(a) != Token(b) {
		t.Fatal("language order and duplicates must not change the token")
	}
}

func TestTokenNormalizesChecksumCase(t *testing.T) {
	a := baseInput()
	b := baseInput()
	b.ChecksumMD5 = "9E107D9D372BB6826BD81D3542A419D6"
	if Token(a) != Token(b) {
		t.Fatal("checksum case must not change the token")
	}
}

func TestTokenChangesWithIdentityFields(t *testing.T) {
	base := Token(baseInput())

	mutations := map[string]func(*TokenInput){
		"manifest id":     func(in *TokenInput) { in.ManifestID = "crunchy-ep-00126" },
		"checksum":        func(in *TokenInput) { in.ChecksumMD5 = "0e107d9d372bb6826bd81d3542a419d6" },
		"file size":       func(in *TokenInput) { in.FileSizeBytes++ },
		"languages":       func(in *TokenInput) { in.AudioLanguages = []string{"ja"} },
		"profile version": func(in *TokenInput) { in.ProfileVersion = "v1.1" },
	}
	for name, mutate := range mutations {
		in := baseInput()
		mutate(&in)
		if Token(in) == base {
			t.Errorf("changing %s did not change the token", name)
		}
	}
}

func TestTokenInputIsNotMutated(t *testing.T) {
	in := baseInput()
	in.AudioLanguages = []string{"ja", "en"}
	Token(in)
	if in.AudioLanguages[0] != "ja" || in.AudioLanguages[1] != "en" {
		t.Fatalf("Token sorted the caller's slice: %v", in.AudioLanguages)
	}
}
