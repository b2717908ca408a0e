// Package rulepack resolves per-country ATS rule packs: built-in defaults overlaid with a
// remotely generated spec when one can be fetched.
package rulepack

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/cv-editor/internal/types"
	"gopkg.in/yaml.v3"
)

// FallbackCountry is used for codes without built-in defaults.
const FallbackCountry = "US"

// ExtraSections are always present in a merged pack's section order.
var ExtraSections = []string{"Projects", "Certifications", "Publications", "Patents"}

// ErrFetchFailed marks a remote spec that could not be fetched. It is logged, never surfaced.
var ErrFetchFailed = errors.New("remote rule pack fetch failed")

// Fetcher retrieves a remotely generated spec for a country.
type Fetcher interface {
	FetchCountrySpec(ctx context.Context, code string) (*RemoteSpec, error)
}

// RemoteSpec is the AI-authored country spec. Absent fields are nil or empty.
type RemoteSpec struct {
	PageLimit    *int              `json:"page_limit,omitempty"`
	PhotoAllowed *bool             `json:"photo_allowed,omitempty"`
	DateFormat   string            `json:"date_format,omitempty"`
	Spelling     string            `json:"spelling,omitempty"`
	SectionOrder []string          `json:"section_order,omitempty"`
	Labels       map[string]string `json:"labels,omitempty"`
	Notes        []string          `json:"notes,omitempty"`
}

//go:embed defaults.yaml
var defaultsYAML []byte

var defaults = mustLoadDefaults(defaultsYAML)

func mustLoadDefaults(data []byte) map[string]*types.RulePack {
	packs, err := loadDefaults(data)
	if err != nil {
		panic(fmt.Sprintf("invalid built-in rule packs: %v", err))
	}
	return packs
}

func loadDefaults(data []byte) (map[string]*types.RulePack, error) {
	var raw map[string]*types.RulePack
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse defaults: %w", err)
	}
	packs := make(map[string]*types.RulePack, len(raw))
	for code, pack := range raw {
		code = NormalizeCode(code)
		pack.Country = code
		if err := pack.Validate(); err != nil {
			return nil, fmt.Errorf("pack %s: %w", code, err)
		}
		packs[code] = pack
	}
	if _, ok := packs[FallbackCountry]; !ok {
		return nil, fmt.Errorf("missing %s pack", FallbackCountry)
	}
	return packs, nil
}

// NormalizeCode upper-cases and trims a country code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Countries lists the codes with built-in defaults, sorted.
func Countries() []string {
	codes := make([]string, 0, len(defaults))
	for code := range defaults {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Default returns a copy of the built-in pack for code, falling back to the US pack.
func Default(code string) *types.RulePack {
	code = NormalizeCode(code)
	if pack, ok := defaults[code]; ok {
		return pack.Clone()
	}
	pack := defaults[FallbackCountry].Clone()
	if len(code) == 2 {
		pack.Country = code
	}
	return pack
}

// Merge overlays remote on a copy of base field by field; a remote field wins when present,
// non-empty and valid on its own. Invalid fields are skipped and reported in the returned
// error while the rest still apply. The extra sections are then appended if missing.
func Merge(base *types.RulePack, remote *RemoteSpec) (*types.RulePack, error) {
	merged := base.Clone()
	var rejected []error
	overlay := func(field, name string, apply func(p *types.RulePack)) {
		candidate := merged.Clone()
		apply(candidate)
		if err := candidate.ValidateField(field); err != nil {
			rejected = append(rejected, fmt.Errorf("remote %s ignored: %w", name, err))
			return
		}
		merged = candidate
	}

	if remote != nil {
		if remote.PageLimit != nil {
			overlay("PageLimit", "page_limit", func(p *types.RulePack) { p.PageLimit = *remote.PageLimit })
		}
		if remote.PhotoAllowed != nil {
			merged.PhotoAllowed = *remote.PhotoAllowed
		}
		if f, ok := types.ParseDateFormat(remote.DateFormat); ok {
			merged.DateFormat = f
		} else if strings.TrimSpace(remote.DateFormat) != "" {
			rejected = append(rejected, fmt.Errorf("remote date_format ignored: unknown format %q", remote.DateFormat))
		}
		if s := strings.TrimSpace(remote.Spelling); s != "" {
			overlay("Spelling", "spelling", func(p *types.RulePack) { p.Spelling = s })
		}
		if sections := cleanList(remote.SectionOrder); len(sections) > 0 {
			overlay("Sections", "section_order", func(p *types.RulePack) { p.Sections = sections })
		}
		for section, label := range remote.Labels {
			if label = strings.TrimSpace(label); label != "" && strings.TrimSpace(section) != "" {
				if merged.Labels == nil {
					merged.Labels = make(map[string]string)
				}
				merged.Labels[strings.TrimSpace(section)] = label
			}
		}
		if notes := cleanList(remote.Notes); len(notes) > 0 {
			merged.Notes = notes
		}
	}
	merged.Sections = EnsureExtraSections(merged.Sections)

	if err := merged.Validate(); err != nil {
		fallback := base.Clone()
		fallback.Sections = EnsureExtraSections(fallback.Sections)
		return fallback, fmt.Errorf("merged rule pack for %s is invalid: %w", base.Country, err)
	}
	if len(rejected) > 0 {
		return merged, fmt.Errorf("rule pack for %s: %w", base.Country, errors.Join(rejected...))
	}
	return merged, nil
}

// EnsureExtraSections appends each extra section not already present, case-insensitively.
func EnsureExtraSections(sections []string) []string {
	out := append([]string(nil), sections...)
	for _, extra := range ExtraSections {
		found := false
		for _, s := range out {
			if strings.EqualFold(strings.TrimSpace(s), extra) {
				found = true
				break
			}
		}
		if !found {
			out = append(out, extra)
		}
	}
	return out
}

func cleanList(items []string) []string {
	var out []string
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
