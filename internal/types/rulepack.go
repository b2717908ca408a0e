//nolint:revive // types is a standard Go package name pattern
package types

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// DateFormat is the date convention a country pack expects
type DateFormat string

// Supported date conventions
const (
	DateMonthYear DateFormat = "mon-yyyy" // Jan 2022
	DateSlash     DateFormat = "mm/yyyy"  // 01/2022
	DateDotted    DateFormat = "mm.yyyy"  // 01.2022
)

// ParseDateFormat accepts the spellings remote specs use for each convention
func ParseDateFormat(s string) (DateFormat, bool) {
	switch strings.ToLower(strings.Join(strings.Fields(s), " ")) {
	case "mon-yyyy", "mon yyyy", "mmm yyyy", "month yyyy", "mmmm yyyy":
		return DateMonthYear, true
	case "mm/yyyy", "mm / yyyy":
		return DateSlash, true
	case "mm.yyyy":
		return DateDotted, true
	}
	return "", false
}

// Example renders January 2022 in this convention
func (f DateFormat) Example() string {
	switch f {
	case DateSlash:
		return "01/2022"
	case DateDotted:
		return "01.2022"
	default:
		return "Jan 2022"
	}
}

// RulePack is the per-country ATS configuration
type RulePack struct {
	Country      string            `json:"country" yaml:"country" validate:"required,len=2"`
	PageLimit    int               `json:"page_limit" yaml:"page_limit" validate:"min=1,max=2"`
	PhotoAllowed bool              `json:"photo_allowed" yaml:"photo_allowed"`
	DateFormat   DateFormat        `json:"date_format" yaml:"date_format" validate:"oneof=mon-yyyy mm/yyyy mm.yyyy"`
	Spelling     string            `json:"spelling" yaml:"spelling" validate:"required"`
	Sections     []string          `json:"sections" yaml:"sections" validate:"required,min=1,dive,required"`
	Labels       map[string]string `json:"labels,omitempty" yaml:"labels"`
	Notes        []string          `json:"notes,omitempty" yaml:"notes"`
}

var packValidator = validator.New()

// Validate checks the pack against its field constraints
func (p *RulePack) Validate() error {
	return packValidator.Struct(p)
}

// ValidateField checks a single field, named as in the struct (e.g. "PageLimit")
func (p *RulePack) ValidateField(field string) error {
	return packValidator.StructPartial(p, field)
}

// Label returns the display label for a section, falling back to the section name
func (p *RulePack) Label(section string) string {
	if p == nil {
		return section
	}
	for key, label := range p.Labels {
		if strings.EqualFold(key, section) && strings.TrimSpace(label) != "" {
			return label
		}
	}
	return section
}

// HasSection reports whether the pack orders the named section, case-insensitively
func (p *RulePack) HasSection(section string) bool {
	for _, s := range p.Sections {
		if strings.EqualFold(strings.TrimSpace(s), strings.TrimSpace(section)) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so cached packs are never mutated through callers
func (p *RulePack) Clone() *RulePack {
	if p == nil {
		return nil
	}
	out := *p
	out.Sections = append([]string(nil), p.Sections...)
	out.Notes = append([]string(nil), p.Notes...)
	if p.Labels != nil {
		out.Labels = make(map[string]string, len(p.Labels))
		for k, v := range p.Labels {
			out.Labels[k] = v
		}
	}
	return &out
}
