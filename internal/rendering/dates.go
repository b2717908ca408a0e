package rendering

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/jonathan/cv-editor/internal/types"
)

var monthAbbrev = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

var (
	monthNameRe  = regexp.MustCompile(`(?i)^(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+(\d{4})$`)
	monthDigitRe = regexp.MustCompile(`^(\d{1,2})\s*[/.\-]\s*(\d{4})$`)
)

// ParseMonthYear recognizes "Jan 2022", "January 2022", "01/2022", "1.2022" and "01-2022"
func ParseMonthYear(value string) (month, year int, ok bool) {
	value = strings.TrimSpace(value)
	if m := monthNameRe.FindStringSubmatch(value); m != nil {
		prefix := strings.ToLower(m[1])
		for i, abbr := range monthAbbrev {
			if strings.ToLower(abbr) == prefix {
				month = i + 1
			}
		}
		year, _ = strconv.Atoi(m[2])
		return month, year, true
	}
	if m := monthDigitRe.FindStringSubmatch(value); m != nil {
		month, _ = strconv.Atoi(m[1])
		year, _ = strconv.Atoi(m[2])
		if month >= 1 && month <= 12 {
			return month, year, true
		}
	}
	return 0, 0, false
}

// FormatDate rewrites a recognizable month/year into the pack's convention.
// Anything else ("Present", "2019") is returned trimmed and unchanged.
func FormatDate(value string, format types.DateFormat) string {
	month, year, ok := ParseMonthYear(value)
	if !ok {
		return strings.TrimSpace(value)
	}
	switch format {
	case types.DateSlash:
		return fmt.Sprintf("%02d/%d", month, year)
	case types.DateDotted:
		return fmt.Sprintf("%02d.%d", month, year)
	default:
		return fmt.Sprintf("%s %d", monthAbbrev[month-1], year)
	}
}

// FormatRange renders "start – end" with both ends in the pack's convention
func FormatRange(start, end string, format types.DateFormat) string {
	return joinNonEmpty(" – ", FormatDate(start, format), FormatDate(end, format))
}
