// Package export produces downloadable HTML and PDF files from a CV document.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/jonathan/cv-editor/internal/rendering"
	"github.com/jonathan/cv-editor/internal/types"
)

// DefaultTimeout bounds browser start-up plus printing
const DefaultTimeout = 60 * time.Second

// Error is an export failure at a named stage
type Error struct {
	Stage   string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("export %s: %s: %v", e.Stage, e.Message, e.Cause)
	}
	return fmt.Sprintf("export %s: %s", e.Stage, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures the headless browser
type Options struct {
	Timeout time.Duration
	// ChromePath overrides browser discovery
	ChromePath string
}

// DefaultOptions reads CHROME_PATH from the environment
func DefaultOptions() *Options {
	return &Options{
		Timeout:    DefaultTimeout,
		ChromePath: os.Getenv("CHROME_PATH"),
	}
}

// HTMLDocument renders the standalone HTML file offered for download
func HTMLDocument(doc *types.Document, pack *types.RulePack) ([]byte, error) {
	html, err := rendering.Page(doc, pack)
	if err != nil {
		return nil, &Error{Stage: "html", Message: "failed to render page", Cause: err}
	}
	return []byte(html), nil
}

// Document renders doc for pack and prints it to PDF on the pack's paper size
func Document(ctx context.Context, doc *types.Document, pack *types.RulePack, opts *Options) ([]byte, error) {
	html, err := HTMLDocument(doc, pack)
	if err != nil {
		return nil, err
	}
	return PDF(ctx, string(html), rendering.PaperFor(pack), opts)
}

// PDF prints a complete HTML page with headless Chrome
func PDF(ctx context.Context, html string, paper rendering.Paper, opts *Options) ([]byte, error) {
	if strings.TrimSpace(html) == "" {
		return nil, &Error{Stage: "pdf", Message: "html is empty"}
	}
	if opts == nil {
		opts = DefaultOptions()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	// Chrome loads the page from disk so relative assets and @page rules behave as in a browser
	tmpDir, err := os.MkdirTemp("", "cv-export-*")
	if err != nil {
		return nil, &Error{Stage: "pdf", Message: "failed to create temp directory", Cause: err}
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	htmlPath := filepath.Join(tmpDir, "cv.html")
	if err := os.WriteFile(htmlPath, []byte(html), 0o644); err != nil {
		return nil, &Error{Stage: "pdf", Message: "failed to write temp HTML", Cause: err}
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if opts.ChromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ChromePath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	browserCtx, cancel := context.WithTimeout(browserCtx, timeout)
	defer cancel()

	var pdf []byte
	err = chromedp.Run(browserCtx,
		chromedp.Navigate("file://"+htmlPath),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(paper.Width).
				WithPaperHeight(paper.Height).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, &Error{Stage: "pdf", Message: "browser printing failed", Cause: err}
	}
	return pdf, nil
}
