package fetch

import (
	"strings"
	"unicode/utf8"
)

// MaxJobTextRunes caps imported job text so prompts stay bounded
const MaxJobTextRunes = 20000

// CleanText normalizes line endings, collapses spaces within lines, keeps list markers
// and allows at most one blank line in a row
func CleanText(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	var out []string
	blank := true
	for _, line := range strings.Split(content, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		if line == "-" {
			continue
		}
		out = append(out, normalizeMarker(line))
		blank = false
	}

	text := strings.TrimSpace(strings.Join(out, "\n"))
	return truncateRunes(text, MaxJobTextRunes)
}

// normalizeMarker rewrites "•", "·" and "*" list markers as "- "
func normalizeMarker(line string) string {
	for _, marker := range []string{"• ", "· ", "* ", "▪ "} {
		if strings.HasPrefix(line, marker) {
			return "- " + strings.TrimPrefix(line, marker)
		}
	}
	return line
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n]))
}
