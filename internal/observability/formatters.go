// Package observability provides boxed, human-readable reports for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/cv-editor/internal/assist"
	"github.com/jonathan/cv-editor/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted report output
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// LintReport is the outcome of linting one document
type LintReport struct {
	Country  string   `json:"country"`
	Words    int      `json:"words"`
	Pages    int      `json:"pages"`
	Warnings []string `json:"warnings"`
}

// truncate shortens s to n runes, marking the cut with an ellipsis
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// pad right-pads s with spaces to n runes
func pad(s string, n int) string {
	if gap := n - len([]rune(s)); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to a terminal; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(truncate(line, boxWidth-4), boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// printBanner prints a single-line box
//
//nolint:errcheck // writing to a terminal; errors are not recoverable
func (p *Printer) printBanner(text string) {
	fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
	fmt.Fprintf(p.out, "│ %s │\n", pad(text, boxWidth-4))
	fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
}

// PrintJobSummary outputs the one-line summary of an imported job description.
func (p *Printer) PrintJobSummary(summary string) {
	if summary == "" {
		return
	}
	p.printBox("TARGET JOB", summary)
}

// PrintSuggestions outputs the bullets and skills proposed for a job.
func (p *Printer) PrintSuggestions(s *assist.JobSuggestions) {
	if s == nil || (len(s.Bullets) == 0 && len(s.Skills) == 0) {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Added %d bullets:\n", len(s.Bullets))
	count := min(len(s.Bullets), maxItemsToShow)
	for i := 0; i < count; i++ {
		fmt.Fprintf(&sb, "• %s\n", s.Bullets[i])
	}
	if len(s.Bullets) > maxItemsToShow {
		fmt.Fprintf(&sb, "  ... and %d more\n", len(s.Bullets)-maxItemsToShow)
	}

	if len(s.Skills) > 0 {
		sb.WriteString("\n")
		fmt.Fprintf(&sb, "Skills: %s\n", strings.Join(s.Skills, ", "))
	}

	p.printBox("JOB SUGGESTIONS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSkillGroups outputs grouped skills in category order with their provenance.
func (p *Printer) PrintSkillGroups(groups types.SkillGroups, source types.GroupSource) {
	if len(groups) == 0 {
		return
	}

	var sb strings.Builder
	if source != "" {
		fmt.Fprintf(&sb, "Grouped by: %s\n\n", source)
	}
	for _, cat := range types.Categories {
		if skills := groups[cat]; len(skills) > 0 {
			fmt.Fprintf(&sb, "%s: %s\n", cat, strings.Join(skills, ", "))
		}
	}

	p.printBox("SKILLS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintLintReport outputs the page estimate and any ATS warnings.
func (p *Printer) PrintLintReport(report LintReport) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Country pack: %s\n", report.Country)
	fmt.Fprintf(&sb, "Words: %d (about %d page(s))", report.Words, report.Pages)
	p.printBox("ATS CHECK", sb.String())
	p.PrintWarnings(report.Warnings)
}

// PrintWarnings outputs ATS warnings, or a banner when there are none.
func (p *Printer) PrintWarnings(warnings []string) {
	if len(warnings) == 0 {
		p.printBanner("✅ NO ATS WARNINGS")
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d warnings:\n\n", len(warnings))
	for i, w := range warnings {
		fmt.Fprintf(&sb, "⚠ %s", w)
		if i < len(warnings)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("ATS WARNINGS", sb.String())
}
