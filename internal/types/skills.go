//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/cv-editor/internal/sanitize"
)

// Category is one bucket of the closed skill category enumeration
type Category string

// Skill categories. Anything unknown or ambiguous lands in CategoryOther.
const (
	CategoryProgramming Category = "Programming"
	CategoryFrontend    Category = "Frontend"
	CategoryBackend     Category = "Backend"
	CategoryDataML      Category = "Data & ML"
	CategoryCloudDevOps Category = "Cloud & DevOps"
	CategoryDatabases   Category = "Databases"
	CategoryTesting     Category = "Testing"
	CategoryTools       Category = "Tools"
	CategoryLanguages   Category = "Languages"
	CategoryOther       Category = "Other"
)

// Categories lists the enumeration in display order
var Categories = []Category{
	CategoryProgramming,
	CategoryFrontend,
	CategoryBackend,
	CategoryDataML,
	CategoryCloudDevOps,
	CategoryDatabases,
	CategoryTesting,
	CategoryTools,
	CategoryLanguages,
	CategoryOther,
}

// ParseCategory maps a free-text label onto the enumeration, case-insensitively.
// Unknown labels return CategoryOther and false.
func ParseCategory(label string) (Category, bool) {
	key := categoryKey(label)
	for _, c := range Categories {
		if categoryKey(string(c)) == key {
			return c, true
		}
	}
	if alias, ok := categoryAliases[key]; ok {
		return alias, true
	}
	return CategoryOther, false
}

var categoryAliases = map[string]Category{
	"programming languages":  CategoryProgramming,
	"languages & frameworks": CategoryProgramming,
	"data":                   CategoryDataML,
	"data and ml":            CategoryDataML,
	"machine learning":       CategoryDataML,
	"ml":                     CategoryDataML,
	"cloud":                  CategoryCloudDevOps,
	"devops":                 CategoryCloudDevOps,
	"cloud and devops":       CategoryCloudDevOps,
	"database":               CategoryDatabases,
	"spoken languages":       CategoryLanguages,
	"tooling":                CategoryTools,
	"qa":                     CategoryTesting,
}

func categoryKey(label string) string {
	return strings.ToLower(sanitize.OneLine(label))
}

// GroupSource records which tier produced the grouping
type GroupSource string

// Provenance tags for SkillsGrouped
const (
	SourceAI         GroupSource = "ai"
	SourceCloudLocal GroupSource = "cloud-local"
	SourceHeuristic  GroupSource = "heuristic"
)

// Valid reports whether the source is one of the known tags
func (s GroupSource) Valid() bool {
	switch s {
	case SourceAI, SourceCloudLocal, SourceHeuristic:
		return true
	}
	return false
}

// SkillGroups maps a category to its skills
type SkillGroups map[Category][]string

// Normalize returns a copy keyed only by known categories (unknown keys fold into Other),
// with each list deduplicated and empty categories dropped. A skill is kept in the
// first category it appears in.
func (g SkillGroups) Normalize() SkillGroups {
	if len(g) == 0 {
		return nil
	}

	keys := make([]Category, 0, len(g))
	for key := range g {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	merged := make(map[Category][]string, len(Categories))
	for _, key := range keys {
		cat, _ := ParseCategory(string(key))
		merged[cat] = append(merged[cat], g[key]...)
	}

	out := make(SkillGroups)
	claimed := make(map[string]bool)
	for _, cat := range Categories {
		var kept []string
		for _, s := range sanitize.DedupeFold(merged[cat]) {
			key := sanitize.NormalizeKey(s)
			if claimed[key] {
				continue
			}
			claimed[key] = true
			kept = append(kept, s)
		}
		if len(kept) > 0 {
			out[cat] = kept
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Count returns the number of grouped skills
func (g SkillGroups) Count() int {
	n := 0
	for _, skills := range g {
		n += len(skills)
	}
	return n
}

// Problems lists invariant violations of the grouping
func (g SkillGroups) Problems() []string {
	var out []string
	for _, cat := range sortedKeys(g) {
		skills := g[cat]
		if _, known := categoryIndex(cat); !known {
			out = append(out, fmt.Sprintf("unknown skill category %q", cat))
		}
		if len(skills) == 0 {
			out = append(out, fmt.Sprintf("skill category %q is empty", cat))
		}
		if len(sanitize.DedupeFold(skills)) != len(skills) {
			out = append(out, fmt.Sprintf("skill category %q has duplicates", cat))
		}
	}
	return out
}

func sortedKeys(g SkillGroups) []Category {
	keys := make([]Category, 0, len(g))
	for _, c := range Categories {
		if _, ok := g[c]; ok {
			keys = append(keys, c)
		}
	}
	for c := range g {
		if _, known := categoryIndex(c); !known {
			keys = append(keys, c)
		}
	}
	return keys
}

func categoryIndex(c Category) (int, bool) {
	for i, known := range Categories {
		if known == c {
			return i, true
		}
	}
	return -1, false
}
