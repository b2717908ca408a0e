package sanitize

import (
	"fmt"
	"strings"
)

// Shape is the expected-shape contract for a short field value. It makes the
// "the model answered with a sentence instead of a value" checks explicit.
type Shape struct {
	Name                    string
	MaxWords                int
	ForbidTerminalPunct     bool
	ForbidActionVerb        bool
	ForbidFirstPersonPlural bool
}

// Shared contracts for the single-value fields a model may proofread.
var (
	RoleShape = Shape{
		Name:                    "role",
		MaxWords:                MaxRoleWords,
		ForbidTerminalPunct:     true,
		ForbidActionVerb:        true,
		ForbidFirstPersonPlural: true,
	}
	TitleShape = Shape{
		Name:                    "title",
		MaxWords:                MaxTitleWords,
		ForbidTerminalPunct:     true,
		ForbidActionVerb:        true,
		ForbidFirstPersonPlural: true,
	}
	BulletShape = Shape{
		Name:     "bullet",
		MaxWords: MaxBulletWords,
	}
)

// actionVerbs open achievement sentences; a title never starts with one
var actionVerbs = map[string]bool{
	"achieved": true, "architected": true, "built": true,
	"collaborated": true, "coordinated": true, "created": true, "delivered": true,
	"designed": true, "developed": true, "drove": true, "established": true,
	"implemented": true, "improved": true, "increased": true, "launched": true,
	"led": true, "mentored": true, "migrated": true,
	"optimized": true, "oversaw": true, "reduced": true, "responsible": true,
	"spearheaded": true, "streamlined": true, "worked": true,
}

// narrativeWords only show up in titles when the value is really a sentence. Words that
// also join title parts ("and" in "Nurse and Midwife") are left out.
var narrativeWords = map[string]bool{
	"a": true, "an": true, "the": true, "to": true, "of": true,
	"for": true, "with": true, "by": true,
}

var firstPersonWords = map[string]bool{
	"i": true, "we": true, "my": true, "our": true, "us": true,
}

// Violations lists every way s breaks the contract; an empty result means s conforms.
func (sh Shape) Violations(s string) []string {
	var out []string
	words := strings.Fields(s)

	if sh.MaxWords > 0 && len(words) > sh.MaxWords {
		out = append(out, fmt.Sprintf("%s has %d words, limit is %d", sh.Name, len(words), sh.MaxWords))
	}
	if sh.ForbidTerminalPunct && s != "" && strings.ContainsAny(s[len(s)-1:], clausePunct) {
		out = append(out, fmt.Sprintf("%s ends with punctuation", sh.Name))
	}
	if sh.ForbidActionVerb && startsWithActionVerb(words) {
		out = append(out, fmt.Sprintf("%s reads like an achievement sentence", sh.Name))
	}
	if sh.ForbidFirstPersonPlural && hasFirstPerson(words) {
		out = append(out, fmt.Sprintf("%s is written in the first person", sh.Name))
	}
	return out
}

// Accepts reports whether s satisfies the contract.
func (sh Shape) Accepts(s string) bool {
	return len(sh.Violations(s)) == 0
}

// LooksLikeActionSentence is the heuristic signal that a field value is a bullet-style sentence.
func LooksLikeActionSentence(s string) bool {
	words := strings.Fields(s)
	return startsWithActionVerb(words) || hasFirstPerson(words)
}

func startsWithActionVerb(words []string) bool {
	if len(words) == 0 {
		return false
	}
	first := normalizeWord(words[0])
	if actionVerbs[first] {
		return true
	}
	// Past-tense opener followed by sentence glue: "Designed the payment platform", but
	// not "Managed Services Engineer"
	if strings.HasSuffix(first, "ed") && len(first) > 4 && len(words) > 2 {
		for _, w := range words[1:] {
			if narrativeWords[normalizeWord(w)] || strings.ContainsAny(w, "0123456789") {
				return true
			}
		}
	}
	return false
}

func hasFirstPerson(words []string) bool {
	for _, w := range words {
		if isAcronym(w) {
			continue
		}
		if firstPersonWords[normalizeWord(w)] {
			return true
		}
	}
	return false
}

// isAcronym reports an all-caps word such as "US"; a pronoun is never written that way.
func isAcronym(w string) bool {
	w = strings.Trim(w, ".,;:!?\"'()")
	return len(w) > 1 && strings.ToUpper(w) == w && strings.ToLower(w) != w
}

func normalizeWord(w string) string {
	return strings.ToLower(strings.Trim(w, ".,;:!?\"'()"))
}
