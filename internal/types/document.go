// Package types provides type definitions for the CV document and the country rule packs.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"strings"

	"github.com/jonathan/cv-editor/internal/sanitize"
)

// Default meta values for a fresh editing session
const (
	DefaultCountry = "US"
	LocaleAuto     = "auto"
)

// Contact holds the contact block of the profile
type Contact struct {
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Website  string `json:"website,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	GitHub   string `json:"github,omitempty"`
}

// Profile is the header of the CV
type Profile struct {
	Name     string  `json:"name"`
	Title    string  `json:"title"`
	Location string  `json:"location,omitempty"`
	Contact  Contact `json:"contact"`
	Summary  string  `json:"summary,omitempty"`
}

// Experience is one position. Bullets are single-line, non-empty and capped at MaxBulletWords.
type Experience struct {
	Company  string   `json:"company"`
	Role     string   `json:"role"`
	Location string   `json:"location,omitempty"`
	Start    string   `json:"start,omitempty"`
	End      string   `json:"end,omitempty"`
	Bullets  []string `json:"bullets"`
}

// Education is one degree or program
type Education struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Start       string `json:"start,omitempty"`
	End         string `json:"end,omitempty"`
}

// Certification is a named credential. Link is display-only text.
type Certification struct {
	Name   string `json:"name"`
	Issuer string `json:"issuer,omitempty"`
	Date   string `json:"date,omitempty"`
	Link   string `json:"link,omitempty"`
}

// Project is a side or portfolio project
type Project struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Link        string   `json:"link,omitempty"`
	Bullets     []string `json:"bullets,omitempty"`
}

// Publication is a paper, article or talk
type Publication struct {
	Title string `json:"title"`
	Venue string `json:"venue,omitempty"`
	Date  string `json:"date,omitempty"`
	Link  string `json:"link,omitempty"`
}

// Patent is a granted or filed patent
type Patent struct {
	Title  string `json:"title"`
	Number string `json:"number,omitempty"`
	Date   string `json:"date,omitempty"`
	Link   string `json:"link,omitempty"`
}

// Meta carries locale and country selection for the session
type Meta struct {
	CountryPack string `json:"country_pack"`
	ATSStrict   bool   `json:"ats_strict"`
	Locale      string `json:"locale"`
}

// Document is the root aggregate edited in a session
type Document struct {
	Profile             Profile         `json:"profile"`
	Experience          []Experience    `json:"experience"`
	Education           []Education     `json:"education"`
	Skills              []string        `json:"skills"`
	SkillsGrouped       SkillGroups     `json:"skills_grouped,omitempty"`
	SkillsGroupedSource GroupSource     `json:"skills_grouped_source,omitempty"`
	Certifications      []Certification `json:"certifications,omitempty"`
	Projects            []Project       `json:"projects,omitempty"`
	Publications        []Publication   `json:"publications,omitempty"`
	Patents             []Patent        `json:"patents,omitempty"`
	Meta                Meta            `json:"meta"`
}

// NewDocument returns an empty document with one seed experience entry
func NewDocument() *Document {
	return &Document{
		Experience: []Experience{{Bullets: []string{}}},
		Education:  []Education{},
		Skills:     []string{},
		Meta: Meta{
			CountryPack: DefaultCountry,
			ATSStrict:   true,
			Locale:      LocaleAuto,
		},
	}
}

// SetSkills replaces the skill set, splitting on commas and newlines and deduplicating
// case-insensitively. Derived groups are cleared since they no longer match.
func (d *Document) SetSkills(raw string) {
	d.Skills = ParseSkills(raw)
	d.SkillsGrouped = nil
	d.SkillsGroupedSource = ""
}

// AddSkill appends a skill unless an equivalent entry already exists
func (d *Document) AddSkill(skill string) bool {
	skill = sanitize.OneLine(skill)
	if skill == "" {
		return false
	}
	for _, existing := range d.Skills {
		if sanitize.Equivalent(existing, skill) {
			return false
		}
	}
	d.Skills = append(d.Skills, skill)
	return true
}

// ParseSkills splits free-text skill input on commas, semicolons and newlines
func ParseSkills(raw string) []string {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n' || r == '|'
	})
	return sanitize.DedupeFold(parts)
}

// SetBullets stores sanitized bullets for an experience entry
func (d *Document) SetBullets(index int, lines []string) error {
	if index < 0 || index >= len(d.Experience) {
		return fmt.Errorf("experience index %d out of range (have %d)", index, len(d.Experience))
	}
	d.Experience[index].Bullets = sanitize.BulletList(lines)
	return nil
}

// SetSkillGroups stores normalized groups and their provenance
func (d *Document) SetSkillGroups(groups SkillGroups, source GroupSource) {
	d.SkillsGrouped = groups.Normalize()
	d.SkillsGroupedSource = source
}

// AddExperience appends an empty experience entry and returns its index
func (d *Document) AddExperience() int {
	d.Experience = append(d.Experience, Experience{Bullets: []string{}})
	return len(d.Experience) - 1
}

// Text serializes all user-visible text, one field per line.
// It feeds word counts and date detection.
func (d *Document) Text() string {
	var sb strings.Builder
	write := func(values ...string) {
		for _, v := range values {
			if v = strings.TrimSpace(v); v != "" {
				sb.WriteString(v)
				sb.WriteString("\n")
			}
		}
	}

	p := d.Profile
	write(p.Name, p.Title, p.Location, p.Contact.Email, p.Contact.Phone, p.Contact.Website,
		p.Contact.LinkedIn, p.Contact.GitHub, p.Summary)

	for _, e := range d.Experience {
		write(e.Role, e.Company, e.Location, dateRange(e.Start, e.End))
		write(e.Bullets...)
	}
	for _, e := range d.Education {
		write(e.Degree, e.Institution, dateRange(e.Start, e.End))
	}
	if len(d.SkillsGrouped) > 0 {
		for _, cat := range Categories {
			if skills := d.SkillsGrouped[cat]; len(skills) > 0 {
				write(string(cat) + ": " + strings.Join(skills, ", "))
			}
		}
	} else if len(d.Skills) > 0 {
		write(strings.Join(d.Skills, ", "))
	}
	for _, c := range d.Certifications {
		write(c.Name, c.Issuer, c.Date, c.Link)
	}
	for _, p := range d.Projects {
		write(p.Name, p.Description, p.Link)
		write(p.Bullets...)
	}
	for _, p := range d.Publications {
		write(p.Title, p.Venue, p.Date, p.Link)
	}
	for _, p := range d.Patents {
		write(p.Title, p.Number, p.Date, p.Link)
	}
	return sb.String()
}

func dateRange(start, end string) string {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	switch {
	case start != "" && end != "":
		return start + " – " + end
	case start != "":
		return start
	default:
		return end
	}
}

// Validate reports every invariant the document currently breaks
func (d *Document) Validate() []string {
	var problems []string

	seen := make(map[string]bool, len(d.Skills))
	for _, s := range d.Skills {
		key := sanitize.NormalizeKey(s)
		if seen[key] {
			problems = append(problems, fmt.Sprintf("duplicate skill %q", s))
		}
		seen[key] = true
	}

	checkBullets := func(where string, bullets []string) {
		for j, b := range bullets {
			switch {
			case strings.TrimSpace(b) == "":
				problems = append(problems, fmt.Sprintf("%s bullet %d is empty", where, j+1))
			case strings.ContainsAny(b, "\r\n"):
				problems = append(problems, fmt.Sprintf("%s bullet %d spans several lines", where, j+1))
			case sanitize.WordCount(b) > sanitize.MaxBulletWords:
				problems = append(problems, fmt.Sprintf("%s bullet %d has %d words (max %d)",
					where, j+1, sanitize.WordCount(b), sanitize.MaxBulletWords))
			}
		}
	}
	for i, e := range d.Experience {
		checkBullets(fmt.Sprintf("experience %d", i+1), e.Bullets)
	}
	for i, p := range d.Projects {
		checkBullets(fmt.Sprintf("project %d", i+1), p.Bullets)
	}

	problems = append(problems, d.SkillsGrouped.Problems()...)
	if len(d.SkillsGrouped) > 0 && !d.SkillsGroupedSource.Valid() {
		problems = append(problems, fmt.Sprintf("unknown skill group source %q", d.SkillsGroupedSource))
	}
	return problems
}
