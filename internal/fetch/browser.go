package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// renderWait gives client-side boards time to hydrate after the body is ready
const renderWait = 2 * time.Second

// Render loads rawURL in headless Chrome and returns the rendered HTML
func Render(ctx context.Context, rawURL string, opts *Options) (string, error) {
	opts = opts.withDefaults()
	opts.Log.Info("rendering page in browser", "component", "fetch", "url", rawURL)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent(opts.UserAgent),
		)...,
	)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	browserCtx, cancel := context.WithTimeout(browserCtx, opts.Timeout+renderWait)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body"),
		chromedp.Sleep(renderWait),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", &Error{URL: rawURL, Message: "browser rendering failed", Cause: err}
	}

	opts.Log.Debug("rendered page", "component", "fetch", "url", rawURL, "bytes", len(html))
	return html, nil
}

// renderFunc is swapped in tests
var renderFunc = Render

func renderAndExtract(ctx context.Context, rawURL string, board Board, opts *Options) (string, error) {
	html, err := renderFunc(ctx, rawURL, opts)
	if err != nil {
		return "", err
	}
	text, err := MainText(html, board)
	if err != nil {
		return "", fmt.Errorf("failed to extract rendered page: %w", err)
	}
	return text, nil
}
