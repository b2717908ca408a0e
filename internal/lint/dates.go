package lint

import "regexp"

var standardDateRe = regexp.MustCompile(`(?i)\b(?:` +
	`jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|` +
	`sep(?:t|tember)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?` +
	`)\.?\s+\d{4}\b|\b(?:0?[1-9]|1[0-2])[/.]\d{4}\b`)

// HasStandardDate reports whether text contains a Mon YYYY or MM/YYYY date.
// MM.YYYY is accepted too since it is the dotted form some packs prescribe.
func HasStandardDate(text string) bool {
	return standardDateRe.MatchString(text)
}
