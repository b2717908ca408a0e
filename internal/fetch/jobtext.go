package fetch

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// ErrNoJobText is returned when a source yields no usable description
var ErrNoJobText = errors.New("no job description text found")

// JobText loads a job description from a URL or a local file and returns cleaned text.
// With opts.Browser set, short extractions are retried through headless Chrome and the
// longer of the two results is kept.
func JobText(ctx context.Context, source string, opts *Options) (string, error) {
	opts = opts.withDefaults()

	if !IsURL(source) {
		data, err := os.ReadFile(source)
		if err != nil {
			return "", fmt.Errorf("failed to read job description: %w", err)
		}
		return nonEmpty(CleanText(string(data)))
	}

	board := BoardFor(source)
	opts.Log.Debug("importing job posting", "component", "fetch", "url", source, "board", board.Name)

	page, err := Page(ctx, source, opts)
	if err != nil {
		return "", err
	}
	text, err := MainText(page.HTML, board)
	if err != nil {
		return "", &Error{URL: source, Message: "content extraction failed", Cause: err}
	}

	if opts.Browser && ShouldUseBrowser(text) {
		rendered, err := renderAndExtract(ctx, source, board, opts)
		switch {
		case err != nil:
			opts.Log.Warn("browser fallback failed, keeping HTTP content", "component", "fetch", "url", source, "error", err)
		case len(rendered) > len(text):
			text = rendered
		}
	}

	return nonEmpty(text)
}

func nonEmpty(text string) (string, error) {
	if text == "" {
		return "", ErrNoJobText
	}
	return text, nil
}
