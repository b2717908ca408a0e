package fetch

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// MinContentLength is the extracted length below which a page is assumed to be script-rendered
const MinContentLength = 500

// pageChrome is removed from every page before extraction
const pageChrome = "nav, footer, header, script, style, noscript, iframe, svg, .sidebar, .popup, .advertisement"

// MainText returns the description text of a posting page for the given board.
// The first matching content selector wins; the body is used when none match.
func MainText(html string, board Board) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find(pageChrome).Remove()
	doc.Find(strings.Join(board.noise(), ", ")).Remove()

	content := doc.Find("body")
	for _, selector := range append(append([]string{}, board.Content...), GenericBoard.Content...) {
		if sel := doc.Find(selector); sel.Length() > 0 {
			content = sel.First()
			break
		}
	}

	// Block elements become line breaks so bullets survive as separate lines
	content.Find("br").ReplaceWithHtml("\n")
	content.Find("p, li, h1, h2, h3, h4, div, tr").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})
	content.Find("li").Each(func(_ int, s *goquery.Selection) {
		s.PrependHtml("- ")
	})

	return CleanText(content.Text()), nil
}

// ShouldUseBrowser reports whether extracted text is too short to be the real posting
func ShouldUseBrowser(text string) bool {
	return len(strings.TrimSpace(text)) < MinContentLength
}
