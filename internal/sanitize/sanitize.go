// Package sanitize provides the text transforms applied to every value before it enters a CV document.
// All functions are total and idempotent: applying one to its own output returns the output unchanged.
package sanitize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

const (
	// MaxBulletWords is the hard cap on words per bullet line
	MaxBulletWords = 22
	// MaxRoleWords is the cap for experience role values
	MaxRoleWords = 10
	// MaxTitleWords is the cap for the profile headline
	MaxTitleWords = 12

	// maxPasses bounds the fixpoint loops; every pass only removes text
	maxPasses = 8
)

const clausePunct = ".?!:;"

// metaPhrases are conversational artifacts models prepend or append to answers
var metaPhrases = []string{
	"here is the corrected text",
	"here's the corrected text",
	"here is the revised text",
	"here's the revised text",
	"here is the rewritten text",
	"here's the rewritten text",
	"as an ai language model",
	"as an ai",
	"original résumé text",
	"original resume text",
	"corrected résumé text",
	"corrected resume text",
	"revised résumé text",
	"revised resume text",
}

// badPhrases mark a whole bullet line as model chatter rather than content
var badPhrases = []string{
	"as an ai",
	"language model",
	"i cannot",
	"i can't",
	"i'm sorry",
	"here is",
	"here are",
	"here's",
	"corrected text",
	"original text",
	"let me know",
	"hope this helps",
	"bullet points:",
}

var (
	metaPhraseRe = buildMetaPhraseRe(metaPhrases)
	codeFenceRe  = regexp.MustCompile("(?m)^[ \t]*```[A-Za-z0-9_-]*[ \t]*$|```")
	courtesyRe   = regexp.MustCompile(`(?im)^[ \t]*(?:sure|certainly|of course)[!,.][ \t]*`)
	labelRe      = regexp.MustCompile(`(?im)^[ \t]*(?:[\p{L}'’]+[ \t]+){0,4}(?:text|résumé|resume|cv|version|bullets?|output|answer|rewrite|result|correction)[ \t]*:[ \t]*`)
	markerRe     = regexp.MustCompile(`^(?:[-*•–—·▪►>]+\s*|\d{1,2}[.)]\s+)`)
	hedgeRe      = regexp.MustCompile(`(?i)(?:,\s*|\(\s*)not\b[^.,;:!?)]*\)?`)
	foldCaser    = cases.Fold()
)

func buildMetaPhraseRe(phrases []string) *regexp.Regexp {
	quoted := make([]string, len(phrases))
	for i, p := range phrases {
		quoted[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile(`(?i)(?:` + strings.Join(quoted, "|") + `)[ \t]*[:.!,]?[ \t]*`)
}

// OneLine collapses every whitespace run, newlines included, into a single space and trims the result.
func OneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// FirstClause returns the text before the first clause-ending punctuation mark.
// A mark only ends a clause when followed by whitespace or the end of the text,
// so "Node.js" and "B.Sc" survive.
func FirstClause(s string) string {
	s = OneLine(s)
	for i := 0; i < len(s); i++ {
		if !strings.ContainsRune(clausePunct, rune(s[i])) {
			continue
		}
		if i+1 == len(s) || s[i+1] == ' ' {
			s = s[:i]
			break
		}
	}
	return strings.TrimRight(s, clausePunct+" ")
}

// CapWords keeps the first n whitespace-delimited tokens.
func CapWords(s string, n int) string {
	words := strings.Fields(s)
	if n < 0 {
		n = 0
	}
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}

// WordCount counts whitespace-delimited tokens.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// StripMeta removes code fences, known model meta-commentary and a leading "label:" prefix.
// Line structure is preserved so multi-line answers can still be split afterwards.
func StripMeta(text string) string {
	return fixpoint(text, stripMetaPass)
}

func stripMetaPass(text string) string {
	text = codeFenceRe.ReplaceAllString(text, "")
	text = metaPhraseRe.ReplaceAllString(text, "")
	text = courtesyRe.ReplaceAllString(text, "")
	text = labelRe.ReplaceAllString(text, "")

	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		kept = append(kept, strings.TrimSpace(line))
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// NormalizeKey is the comparison key used for every case-insensitive dedupe.
func NormalizeKey(s string) string {
	return foldCaser.String(OneLine(s))
}

// Equivalent reports whether two texts are equal once whitespace and case are normalized.
func Equivalent(a, b string) bool {
	return NormalizeKey(a) == NormalizeKey(b)
}

// DedupeFold removes empty entries and entries equal under NormalizeKey, keeping first-seen order.
// Kept entries are returned in their OneLine form.
func DedupeFold(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = OneLine(item)
		if item == "" {
			continue
		}
		key := NormalizeKey(item)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
	}
	return out
}

// BulletLine cleans a single bullet candidate: meta text, list markers, hedging clauses,
// the word cap, trailing punctuation and wrapping quotes.
func BulletLine(s string) string {
	return fixpoint(s, bulletPass)
}

func bulletPass(s string) string {
	s = StripMeta(s)
	s = OneLine(s)
	for {
		next := markerRe.ReplaceAllString(s, "")
		if next == s {
			break
		}
		s = next
	}
	s = hedgeRe.ReplaceAllString(s, "")
	s = CapWords(s, MaxBulletWords)
	return trimDecorations(s)
}

// trimDecorations removes trailing punctuation and quote characters wrapping the text
func trimDecorations(s string) string {
	const quotes = "\"'“”‘’`"
	for {
		next := strings.TrimSpace(s)
		next = strings.Trim(next, quotes)
		next = strings.TrimRight(next, ".,;:!? ")
		next = strings.TrimSpace(next)
		if next == s {
			return s
		}
		s = next
	}
}

// BulletList sanitizes model output into bullet lines. Entries are split on newlines,
// cleaned with BulletLine, filtered for chatter and deduplicated case-insensitively.
func BulletList(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, entry := range lines {
		for _, raw := range strings.Split(entry, "\n") {
			line := BulletLine(raw)
			if line == "" || containsBadPhrase(line) {
				continue
			}
			out = append(out, line)
		}
	}
	return DedupeFold(out)
}

// BulletText is BulletList over a single block of text.
func BulletText(text string) []string {
	return BulletList([]string{text})
}

func containsBadPhrase(line string) bool {
	lower := strings.ToLower(line)
	for _, phrase := range badPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// RoleText sanitizes a proposed experience role. When the candidate reads like a
// bullet sentence instead of a job title, the sanitized previous value is kept.
func RoleText(next, prev string) string {
	return fieldText(next, prev, RoleShape)
}

// TitleText sanitizes a proposed profile headline with the same fallback as RoleText.
func TitleText(next, prev string) string {
	return fieldText(next, prev, TitleShape)
}

func fieldText(next, prev string, shape Shape) string {
	candidate := fieldValue(next, shape.MaxWords)
	if candidate != "" && shape.Accepts(candidate) {
		return candidate
	}
	return fieldValue(prev, shape.MaxWords)
}

func fieldValue(s string, maxWords int) string {
	return fixpoint(s, func(v string) string {
		v = StripMeta(v)
		v = FirstClause(v)
		v = CapWords(v, maxWords)
		v = OneLine(filterFieldChars(v))
		return strings.TrimRight(v, clausePunct+", ")
	})
}

// filterFieldChars keeps letters, digits, spaces and the punctuation allowed in short field values
func filterFieldChars(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			return r
		case unicode.IsSpace(r):
			return ' '
		case strings.ContainsRune("&+-/.,", r):
			return r
		default:
			return -1
		}
	}, s)
}

func fixpoint(s string, pass func(string) string) string {
	for i := 0; i < maxPasses; i++ {
		next := pass(s)
		if next == s {
			return s
		}
		s = next
	}
	return s
}
