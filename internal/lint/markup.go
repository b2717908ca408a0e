package lint

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Markup is parsed preview HTML
type Markup struct {
	doc *goquery.Document
}

// ParseMarkup parses rendered HTML, fragment or full page
func ParseMarkup(markup string) (*Markup, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse markup: %w", err)
	}
	return &Markup{doc: doc}, nil
}

// Headings returns the text of every h1, h2 and h3 in document order
func (m *Markup) Headings() []string {
	var headings []string
	m.doc.Find("h1, h2, h3").Each(func(_ int, s *goquery.Selection) {
		if text := strings.Join(strings.Fields(s.Text()), " "); text != "" {
			headings = append(headings, text)
		}
	})
	return headings
}

// Elements counts every element in the parsed tree, including the implied html, head and body
func (m *Markup) Elements() int {
	return m.doc.Find("*").Length()
}

// Warnings reports structures that ATS parsers handle badly
func (m *Markup) Warnings() []string {
	var warnings []string
	if m.doc.Find("table").Length() > 0 {
		warnings = append(warnings, TableWarning)
	}
	if m.doc.Find("img").Length() > 0 {
		warnings = append(warnings, ImageWarning)
	}
	if n := m.Elements(); n > MaxElements {
		warnings = append(warnings, fmt.Sprintf(ComplexWarning, n))
	}
	return warnings
}
