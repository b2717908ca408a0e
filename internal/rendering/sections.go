package rendering

import (
	"strings"

	"github.com/jonathan/cv-editor/internal/types"
)

// Canonical section keys. Pack section orders and labels are keyed by these names.
const (
	SectionProfile        = "Profile"
	SectionExperience     = "Experience"
	SectionEducation      = "Education"
	SectionSkills         = "Skills"
	SectionProjects       = "Projects"
	SectionCertifications = "Certifications"
	SectionPublications   = "Publications"
	SectionPatents        = "Patents"
)

// canonicalOrder is used for non-empty sections the pack does not order
var canonicalOrder = []string{
	SectionProfile, SectionExperience, SectionEducation, SectionSkills,
	SectionProjects, SectionCertifications, SectionPublications, SectionPatents,
}

var sectionAliases = map[string]string{
	"profile":                SectionProfile,
	"summary":                SectionProfile,
	"professional summary":   SectionProfile,
	"experience":             SectionExperience,
	"work experience":        SectionExperience,
	"employment":             SectionExperience,
	"education":              SectionEducation,
	"skills":                 SectionSkills,
	"technical skills":       SectionSkills,
	"projects":               SectionProjects,
	"certifications":         SectionCertifications,
	"licenses":               SectionCertifications,
	"publications":           SectionPublications,
	"patents":                SectionPatents,
}

// Section is one rendered block of the CV
type Section struct {
	Key       string
	Label     string
	Class     string
	Paragraph string
	Lines     []string
	Entries   []Entry
}

// Entry is a positioned item inside a section: a job, a degree, a project
type Entry struct {
	Title    string
	Subtitle string
	Dates    string
	Detail   string
	Bullets  []string
}

// CanonicalSection maps a pack section name onto a canonical key
func CanonicalSection(name string) (string, bool) {
	key, ok := sectionAliases[strings.ToLower(strings.Join(strings.Fields(name), " "))]
	return key, ok
}

// Sections builds the non-empty sections in pack order. Non-empty sections the pack
// does not list follow in canonical order so no content is dropped.
func Sections(doc *types.Document, pack *types.RulePack) []Section {
	var order []string
	if pack != nil {
		order = pack.Sections
	}

	seen := make(map[string]bool, len(canonicalOrder))
	var out []Section
	add := func(key string) {
		if seen[key] {
			return
		}
		seen[key] = true
		if s, ok := buildSection(doc, pack, key); ok {
			out = append(out, s)
		}
	}

	for _, name := range order {
		if key, ok := CanonicalSection(name); ok {
			add(key)
		}
	}
	for _, key := range canonicalOrder {
		add(key)
	}
	return out
}

// Headings returns the labels of the sections HTML would render, in order
func Headings(doc *types.Document, pack *types.RulePack) []string {
	sections := Sections(doc, pack)
	headings := make([]string, 0, len(sections))
	for _, s := range sections {
		headings = append(headings, s.Label)
	}
	return headings
}

func buildSection(doc *types.Document, pack *types.RulePack, key string) (Section, bool) {
	s := Section{
		Key:   key,
		Label: pack.Label(key),
		Class: strings.ToLower(key),
	}
	format := types.DateMonthYear
	if pack != nil && pack.DateFormat != "" {
		format = pack.DateFormat
	}

	switch key {
	case SectionProfile:
		s.Paragraph = strings.TrimSpace(doc.Profile.Summary)
	case SectionExperience:
		for _, e := range doc.Experience {
			if blank(e.Role, e.Company) && len(e.Bullets) == 0 {
				continue
			}
			s.Entries = append(s.Entries, Entry{
				Title:    firstNonEmpty(e.Role, e.Company),
				Subtitle: secondary(e.Company, e.Role, e.Location),
				Dates:    FormatRange(e.Start, e.End, format),
				Bullets:  e.Bullets,
			})
		}
	case SectionEducation:
		for _, e := range doc.Education {
			if blank(e.Degree, e.Institution) {
				continue
			}
			s.Entries = append(s.Entries, Entry{
				Title:    firstNonEmpty(e.Degree, e.Institution),
				Subtitle: secondary(e.Institution, e.Degree, ""),
				Dates:    FormatRange(e.Start, e.End, format),
			})
		}
	case SectionSkills:
		s.Lines = skillLines(doc)
	case SectionProjects:
		for _, p := range doc.Projects {
			if blank(p.Name) {
				continue
			}
			s.Entries = append(s.Entries, Entry{
				Title:   p.Name,
				Detail:  joinNonEmpty(" | ", p.Description, p.Link),
				Bullets: p.Bullets,
			})
		}
	case SectionCertifications:
		for _, c := range doc.Certifications {
			if blank(c.Name) {
				continue
			}
			s.Entries = append(s.Entries, Entry{
				Title:    c.Name,
				Subtitle: strings.TrimSpace(c.Issuer),
				Dates:    FormatDate(c.Date, format),
				Detail:   strings.TrimSpace(c.Link),
			})
		}
	case SectionPublications:
		for _, p := range doc.Publications {
			if blank(p.Title) {
				continue
			}
			s.Entries = append(s.Entries, Entry{
				Title:    p.Title,
				Subtitle: strings.TrimSpace(p.Venue),
				Dates:    FormatDate(p.Date, format),
				Detail:   strings.TrimSpace(p.Link),
			})
		}
	case SectionPatents:
		for _, p := range doc.Patents {
			if blank(p.Title) {
				continue
			}
			s.Entries = append(s.Entries, Entry{
				Title:    p.Title,
				Subtitle: strings.TrimSpace(p.Number),
				Dates:    FormatDate(p.Date, format),
				Detail:   strings.TrimSpace(p.Link),
			})
		}
	}

	empty := s.Paragraph == "" && len(s.Lines) == 0 && len(s.Entries) == 0
	return s, !empty
}

// skillLines renders grouped skills one category per line, or a flat comma list
func skillLines(doc *types.Document) []string {
	if len(doc.SkillsGrouped) > 0 {
		var lines []string
		for _, cat := range types.Categories {
			if skills := doc.SkillsGrouped[cat]; len(skills) > 0 {
				lines = append(lines, string(cat)+": "+strings.Join(skills, ", "))
			}
		}
		return lines
	}
	if len(doc.Skills) == 0 {
		return nil
	}
	return []string{strings.Join(doc.Skills, ", ")}
}

func blank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// secondary returns primary joined with location, unless primary already served as the title
func secondary(primary, title, location string) string {
	if strings.TrimSpace(title) == "" {
		return strings.TrimSpace(location)
	}
	return joinNonEmpty(", ", primary, location)
}

func joinNonEmpty(sep string, values ...string) string {
	var parts []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, sep)
}
