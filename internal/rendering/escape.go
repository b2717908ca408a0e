package rendering

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// FileName turns a candidate's name into a safe download name, e.g. "ada-lovelace-cv"
func FileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "cv"
	}

	var result strings.Builder
	result.Grow(len(name) + 3)

	dash := false
	// Decompose so accented letters keep their base letter
	for _, r := range norm.NFD.String(name) {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			result.WriteRune(unicode.ToLower(r))
			dash = false
		case !dash && result.Len() > 0:
			result.WriteByte('-')
			dash = true
		}
	}

	slug := strings.TrimSuffix(result.String(), "-")
	if slug == "" {
		return "cv"
	}
	return slug + "-cv"
}
