package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/cv-editor/internal/logging"
	"github.com/jonathan/cv-editor/internal/rulepack"
)

// ProxyConfig configures a ProxyBackend.
type ProxyConfig struct {
	Name    string
	BaseURL string
	// Token is sent as a bearer token when set
	Token string
	// WriterOnly routes every capability through /write, making the backend the
	// generic last-resort tier
	WriterOnly bool
	Attempts   int
	Backoff    time.Duration
	Timeout    time.Duration
}

// ProxyBackend calls the remote AI proxy over HTTP POST JSON, one endpoint per action.
type ProxyBackend struct {
	cfg  ProxyConfig
	http *http.Client
	log  *logging.Logger
}

// NewProxyBackend creates a proxy backend. A nil logger discards output.
func NewProxyBackend(cfg ProxyConfig, log *logging.Logger) *ProxyBackend {
	if cfg.Name == "" {
		cfg.Name = "proxy"
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = 3
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if log == nil {
		log = logging.Nop()
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &ProxyBackend{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  log.With("backend", cfg.Name),
	}
}

func (p *ProxyBackend) Name() string { return p.cfg.Name }

// Availability is available for every routed capability once a base URL is configured.
func (p *ProxyBackend) Availability(_ context.Context, c Capability) Availability {
	if p.cfg.BaseURL == "" {
		return Unsupported
	}
	if _, _, _, ok := p.route(Request{Capability: c}); !ok {
		return Unsupported
	}
	return Available
}

type writeBody struct {
	Instruction string `json:"instruction"`
	Context     string `json:"context"`
}

type rewriteBody struct {
	Text        string `json:"text"`
	Instruction string `json:"instruction"`
}

type proofreadBody struct {
	Text   string `json:"text"`
	Locale string `json:"locale,omitempty"`
}

type skillsBody struct {
	Skills []string `json:"skills"`
}

type jobBody struct {
	Document json.RawMessage `json:"document,omitempty"`
	JobText  string          `json:"job_text"`
}

// route maps a request to its endpoint, body and result field.
func (p *ProxyBackend) route(req Request) (path string, body any, field string, ok bool) {
	write := func() (string, any, string, bool) {
		return "/write", writeBody{Instruction: req.Instruction, Context: composeInput(req)}, "text", true
	}
	if p.cfg.WriterOnly {
		return write()
	}
	switch req.Capability {
	case CapPrompt:
		switch req.Task {
		case TaskGroupSkills:
			return "/categorize-skills", skillsBody{Skills: SplitLines(req.Input)}, "groups", true
		case TaskGenerateFromJob:
			return "/generate-from-job", jobBody{Document: req.Context, JobText: req.Input}, "suggestions", true
		}
		return write()
	case CapSummarize:
		return "/summarize-job", jobBody{JobText: req.Input}, "summary", true
	case CapRewrite:
		return "/rewrite", rewriteBody{Text: req.Input, Instruction: req.Instruction}, "text", true
	case CapProofread:
		return "/proofread", proofreadBody{Text: req.Input, Locale: req.Locale}, "text", true
	case CapWrite, CapTranslate, CapDetectLanguage:
		return write()
	}
	return "", nil, "", false
}

// Invoke posts the request to its endpoint and decodes the result field.
func (p *ProxyBackend) Invoke(ctx context.Context, req Request) (*Response, error) {
	if state := p.Availability(ctx, req.Capability); state != Available {
		return nil, StateError(p.cfg.Name, req.Capability, state)
	}
	path, body, field, _ := p.route(req)

	raw, err := p.call(ctx, req.Capability, path, body, field)
	if err != nil {
		return nil, err
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		resp := &Response{Text: text}
		if len(req.Shape) > 0 {
			var structured json.RawMessage
			if ParseStructured(text, &structured) == nil {
				resp.Structured = structured
			}
		}
		return resp, nil
	}
	return &Response{Text: string(raw), Structured: raw}, nil
}

// FetchCountrySpec asks the proxy for AI-authored résumé conventions for a country.
func (p *ProxyBackend) FetchCountrySpec(ctx context.Context, code string) (*rulepack.RemoteSpec, error) {
	if p.cfg.BaseURL == "" {
		return nil, StateError(p.cfg.Name, CapPrompt, Unsupported)
	}
	raw, err := p.call(ctx, CapPrompt, "/country-spec", map[string]string{"country": code}, "spec")
	if err != nil {
		return nil, err
	}
	// The proxy may return the spec as an object or as model text holding one
	source := string(raw)
	var text string
	if json.Unmarshal(raw, &text) == nil {
		source = text
	}
	var spec rulepack.RemoteSpec
	if err := ParseStructured(source, &spec); err != nil {
		return nil, &InvocationError{Backend: p.cfg.Name, Capability: CapPrompt, Message: "malformed country spec", Cause: err}
	}
	return &spec, nil
}

// call posts body to path and returns the raw value of the result field.
func (p *ProxyBackend) call(ctx context.Context, c Capability, path string, body any, field string) (json.RawMessage, error) {
	invErr := func(status int, msg string, cause error) error {
		return &InvocationError{Backend: p.cfg.Name, Capability: c, Status: status, Message: msg, Cause: cause}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, invErr(0, "failed to encode request", err)
	}

	resp, err := p.doPostWithRetry(ctx, path, payload)
	if err != nil {
		return nil, invErr(0, "request failed", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, invErr(resp.StatusCode, "failed to read response", err)
	}

	var decoded map[string]json.RawMessage
	decodeErr := json.Unmarshal(data, &decoded)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := http.StatusText(resp.StatusCode)
		var remote string
		if decodeErr == nil && json.Unmarshal(decoded["error"], &remote) == nil && remote != "" {
			msg = remote
		}
		return nil, invErr(resp.StatusCode, msg, nil)
	}
	if decodeErr != nil {
		return nil, invErr(resp.StatusCode, "malformed response", decodeErr)
	}
	value, ok := decoded[field]
	if !ok || len(value) == 0 || string(value) == "null" {
		return nil, invErr(resp.StatusCode, fmt.Sprintf("response has no %q field", field), nil)
	}
	return value, nil
}

// doPostWithRetry performs an HTTP POST with exponential backoff on transport errors.
func (p *ProxyBackend) doPostWithRetry(ctx context.Context, path string, body []byte) (*http.Response, error) {
	requestID := uuid.NewString()
	var lastErr error
	for i := 0; i < p.cfg.Attempts; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+path, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Request-ID", requestID)
		if p.cfg.Token != "" {
			req.Header.Set("Authorization", "Bearer "+p.cfg.Token)
		}

		resp, err := p.http.Do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		p.log.Warn("proxy request failed", "path", path, "attempt", i+1, "request_id", requestID, "error", err)
		if i < p.cfg.Attempts-1 {
			backoff := p.cfg.Backoff * time.Duration(1<<i)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, lastErr
}
