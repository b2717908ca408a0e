// Package fetch imports job postings: it downloads a posting page, strips the board's
// chrome and returns the description as plain text for tailoring.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/jonathan/cv-editor/internal/logging"
)

const (
	// DefaultTimeout bounds a single page download
	DefaultTimeout = 20 * time.Second
	// DefaultUserAgent identifies the importer to job boards
	DefaultUserAgent = "Mozilla/5.0 (compatible; CVEditor/1.0)"
	// MaxPageBytes caps how much of a response body is read
	MaxPageBytes = 4 << 20
)

// Result is a downloaded page
type Result struct {
	URL         string
	HTML        string
	ContentType string
	StatusCode  int
}

// Error is a failed download or extraction for a URL
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures page import
type Options struct {
	Timeout   time.Duration
	UserAgent string
	// Browser enables the headless-Chrome fallback for script-rendered boards
	Browser bool
	Client  *http.Client
	Log     *logging.Logger
}

// DefaultOptions returns plain-HTTP import settings
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

func (o *Options) withDefaults() *Options {
	out := DefaultOptions()
	if o == nil {
		out.Log = logging.Nop()
		return out
	}
	*out = *o
	if out.Timeout <= 0 {
		out.Timeout = DefaultTimeout
	}
	if out.UserAgent == "" {
		out.UserAgent = DefaultUserAgent
	}
	if out.Log == nil {
		out.Log = logging.Nop()
	}
	return out
}

// IsURL reports whether s is an absolute http(s) URL
func IsURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Page downloads rawURL. A non-200 status returns the result together with an error.
func Page(ctx context.Context, rawURL string, opts *Options) (*Result, error) {
	opts = opts.withDefaults()
	if !IsURL(rawURL) {
		return nil, &Error{URL: rawURL, Message: "invalid URL"}
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &Error{URL: rawURL, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := client.Do(req)
	if err != nil {
		return nil, &Error{URL: rawURL, Message: "request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxPageBytes))
	if err != nil {
		return nil, &Error{URL: rawURL, Message: "failed to read body", Cause: err}
	}

	result := &Result{
		URL:         rawURL,
		HTML:        string(body),
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}
	if resp.StatusCode != http.StatusOK {
		return result, &Error{URL: rawURL, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}
	opts.Log.Debug("fetched page", "component", "fetch", "url", rawURL, "bytes", len(body))
	return result, nil
}
