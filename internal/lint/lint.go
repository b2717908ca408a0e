// Package lint checks a CV document against ATS conventions for its country rule pack.
package lint

import (
	"fmt"
	"math"
	"strings"

	"github.com/jonathan/cv-editor/internal/rendering"
	"github.com/jonathan/cv-editor/internal/sanitize"
	"github.com/jonathan/cv-editor/internal/types"
)

const (
	// WordsPerPage is the page-estimate divisor
	WordsPerPage = 500
	// MaxElements is the DOM size above which parsers start dropping content
	MaxElements = 2000
)

// Warning texts that callers match on
const (
	NoDatesWarning = "No standardized dates found (use Mon YYYY or MM/YYYY)."
	TableWarning   = "Tables can scramble ATS parsing; use plain sections instead."
	ImageWarning   = "Images are ignored by ATS parsers; keep all content as text."
	ComplexWarning = "Layout is too complex (%d elements); ATS parsers may drop content."
	PagesWarning   = "Estimated length is %d pages; the %s pack allows %d."
	HeadingWarning = "Section heading %q is not a standard heading; ATS parsers may not recognize it."
	MarkupWarning  = "Rendered markup could not be parsed; markup checks were skipped."
)

// Used when no pack is given
const (
	defaultCountry  = types.DefaultCountry
	defaultMaxPages = 1
)

// Lint runs every rule and returns the warnings in rule order.
// markup is optional; when empty, headings are derived from the document and pack.
func Lint(doc *types.Document, pack *types.RulePack, markup string) []string {
	if doc == nil {
		return nil
	}
	var warnings []string
	text := doc.Text()

	// 1. Page estimate
	pages := EstimatePages(WordCount(text))
	limit, country := defaultMaxPages, defaultCountry
	if pack != nil {
		limit, country = pack.PageLimit, pack.Country
	}
	if limit > 0 && pages > limit {
		warnings = append(warnings, fmt.Sprintf(PagesWarning, pages, country, limit))
	}

	// 2. Headings
	var page *Markup
	if strings.TrimSpace(markup) != "" {
		var err error
		page, err = ParseMarkup(markup)
		if err != nil {
			warnings = append(warnings, MarkupWarning)
		}
	}
	headings := rendering.Headings(doc, pack)
	if page != nil {
		headings = page.Headings()
	}
	for _, h := range headings {
		if !KnownHeading(h) {
			warnings = append(warnings, fmt.Sprintf(HeadingWarning, h))
		}
	}

	// 3. Dates
	if !HasStandardDate(text) {
		warnings = append(warnings, NoDatesWarning)
	}

	// 4. Markup structure
	if page != nil {
		warnings = append(warnings, page.Warnings()...)
	}

	return warnings
}

// WordCount counts whitespace-delimited words
func WordCount(text string) int {
	return sanitize.WordCount(text)
}

// EstimatePages returns ceil(words / WordsPerPage), never less than one
func EstimatePages(words int) int {
	pages := int(math.Ceil(float64(words) / WordsPerPage))
	if pages < 1 {
		return 1
	}
	return pages
}
