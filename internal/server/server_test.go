package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonathan/cv-editor/internal/config"
	"github.com/jonathan/cv-editor/internal/llm"
	"github.com/jonathan/cv-editor/internal/server/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient returns a canned reply and records the requests it saw
type fakeClient struct {
	mu       sync.Mutex
	reply    string
	err      error
	requests []llm.Request
}

func (c *fakeClient) Generate(_ context.Context, req llm.Request) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, req)
	return c.reply, c.err
}

func (c *fakeClient) GetModel(tier llm.ModelTier) string { return string(tier) }

func (c *fakeClient) Close() error { return nil }

func (c *fakeClient) last(t *testing.T) llm.Request {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	require.NotEmpty(t, c.requests)
	return c.requests[len(c.requests)-1]
}

func newTestServer(client llm.Client, mutate ...func(*Options)) *Server {
	opts := Options{RateLimit: &ratelimit.Config{Enabled: false}}
	for _, m := range mutate {
		m(&opts)
	}
	return New(client, opts)
}

func post(t *testing.T, s *Server, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(&fakeClient{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestWriteEndpoint(t *testing.T) {
	client := &fakeClient{reply: "Sure! Here is the rewritten text:\nBackend engineer with eight years in payments."}
	s := newTestServer(client)

	w := post(t, s, "/write", `{"instruction":"Write a summary","context":"Go, payments"}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Backend engineer with eight years in payments.", decodeBody(t, w)["text"])

	req := client.last(t)
	assert.Equal(t, llm.TierAdvanced, req.Tier)
	assert.Contains(t, req.Prompt, "Write a summary")
	assert.Contains(t, req.Prompt, "Go, payments")
}

func TestRewriteEndpoint_Validation(t *testing.T) {
	s := newTestServer(&fakeClient{reply: "x"})

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{`},
		{"missing text", `{"instruction":"shorter"}`},
		{"missing instruction", `{"text":"Led a team"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(t, s, "/rewrite", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, decodeBody(t, w), "error")
		})
	}
}

func TestProofreadEndpoint_DefaultLocale(t *testing.T) {
	client := &fakeClient{reply: "Managed the team."}
	s := newTestServer(client)

	w := post(t, s, "/proofread", `{"text":"Managd the team.","locale":"auto"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Managed the team.", decodeBody(t, w)["text"])
	req := client.last(t)
	assert.Equal(t, llm.TierLite, req.Tier)
	assert.Contains(t, req.Prompt, "en-US")
}

func TestSummarizeJobEndpoint(t *testing.T) {
	s := newTestServer(&fakeClient{reply: "A platform role\nbuilding Go services."})

	w := post(t, s, "/summarize-job", `{"job_text":"We are hiring a Go engineer."}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "A platform role building Go services.", decodeBody(t, w)["summary"])
}

func TestCategorizeSkillsEndpoint(t *testing.T) {
	client := &fakeClient{reply: "```json\n{\"groups\":{\"programming\":[\"Go\",\"go\"],\"Databases\":[\"Postgres\"],\"Snacks\":[\"Chips\"]}}\n```"}
	s := newTestServer(client)

	w := post(t, s, "/categorize-skills", `{"skills":["Go","Postgres","Chips"]}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	groups := decodeBody(t, w)["groups"].(map[string]any)
	assert.Equal(t, []any{"Go"}, groups["Programming"])
	assert.Equal(t, []any{"Postgres"}, groups["Databases"])
	assert.Equal(t, []any{"Chips"}, groups["Other"])

	req := client.last(t)
	assert.True(t, req.JSON)
	assert.Contains(t, req.Prompt, "Go\nPostgres\nChips")
}

func TestCategorizeSkillsEndpoint_Malformed(t *testing.T) {
	s := newTestServer(&fakeClient{reply: "I cannot help with that."})

	w := post(t, s, "/categorize-skills", `{"skills":["Go"]}`)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "Bad Gateway", decodeBody(t, w)["error"])
}

func TestGenerateFromJobEndpoint(t *testing.T) {
	client := &fakeClient{reply: `{"bullets":["- Built billing APIs in Go.","Built billing APIs in Go"],"skills":["Go","go","Kafka"]}`}
	s := newTestServer(client)

	body := `{"document":{"profile":{"name":"Ada"},"experience":[]},"job_text":"Go and Kafka role"}`
	w := post(t, s, "/generate-from-job", body)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	suggestions := decodeBody(t, w)["suggestions"].(map[string]any)
	assert.Equal(t, []any{"Built billing APIs in Go"}, suggestions["bullets"])
	assert.Equal(t, []any{"Go", "Kafka"}, suggestions["skills"])
	assert.Contains(t, client.last(t).Prompt, `"name":"Ada"`)
}

func TestGenerateFromJobEndpoint_SchemaMismatch(t *testing.T) {
	s := newTestServer(&fakeClient{reply: `{"bullets":"one"}`})

	w := post(t, s, "/generate-from-job", `{"job_text":"Go role"}`)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestCountrySpecEndpoint(t *testing.T) {
	client := &fakeClient{reply: `{"page_limit":2,"date_format":"mm.yyyy","spelling":"de-DE"}`}
	s := newTestServer(client)

	w := post(t, s, "/country-spec", `{"country":"de"}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	spec := decodeBody(t, w)["spec"].(map[string]any)
	assert.EqualValues(t, 2, spec["page_limit"])
	assert.Contains(t, client.last(t).Prompt, "Country code: DE")

	assert.Equal(t, http.StatusBadRequest, post(t, s, "/country-spec", `{"country":"DEU"}`).Code)
}

func TestCountrySpecEndpoint_UpstreamError(t *testing.T) {
	s := newTestServer(&fakeClient{err: errors.New("quota exhausted")})

	w := post(t, s, "/country-spec", `{"country":"FR"}`)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.NotContains(t, w.Body.String(), "quota")
}

func TestRenderEndpoint(t *testing.T) {
	s := newTestServer(&fakeClient{})

	body := `{"country":"DE","document":{"profile":{"name":"Ada <Lovelace>","title":"Engineer"},` +
		`"experience":[{"company":"Acme","role":"Dev","start":"Jan 2020","end":"Mar 2022","bullets":["Built things"]}],` +
		`"skills":["Go"]}}`
	w := post(t, s, "/render", body)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp RenderResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "DE", resp.Country)
	assert.Contains(t, resp.HTML, `lang="de"`)
	assert.Contains(t, resp.HTML, "Ada &lt;Lovelace&gt;")
	assert.NotNil(t, resp.Warnings)
}

func TestRenderEndpoint_InvalidDocument(t *testing.T) {
	s := newTestServer(&fakeClient{})

	w := post(t, s, "/render", `{"document":{"skills":"Go"}}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCORSMiddleware(t *testing.T) {
	s := newTestServer(&fakeClient{}, func(o *Options) {
		o.CORSOrigins = []string{"https://cv.example.com"}
	})

	req := httptest.NewRequest(http.MethodOptions, "/write", nil)
	req.Header.Set("Origin", "https://cv.example.com")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://cv.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestLoggingMiddleware_KeepsRequestID(t *testing.T) {
	s := newTestServer(&fakeClient{})
	id := "0b7c3a2e-6f1d-4c55-9a8e-2d4f5b6c7d8e"

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", id)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, id, w.Header().Get("X-Request-ID"))
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(&fakeClient{reply: "ok"}, func(o *Options) {
		o.RateLimit = &ratelimit.Config{
			Enabled:       true,
			DefaultLimit:  100,
			DefaultWindow: time.Minute,
			Endpoints: []ratelimit.EndpointConfig{
				{Path: "/write", Method: "POST", Limit: 2, Window: time.Hour},
			},
		}
	})
	defer s.rateLimiter.Stop()

	body := `{"instruction":"Write"}`
	assert.Equal(t, http.StatusOK, post(t, s, "/write", body).Code)
	w := post(t, s, "/write", body)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = post(t, s, "/write", body)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, "rate_limit_exceeded", decodeBody(t, w)["error"])
}

func TestAuth(t *testing.T) {
	cfg := &config.JWTConfig{Secret: "0123456789abcdef0123", Issuer: "cv-editor", ExpirationHours: 1}
	s := newTestServer(&fakeClient{reply: "done"}, func(o *Options) { o.JWT = cfg })

	body := `{"instruction":"Write"}`
	assert.Equal(t, http.StatusUnauthorized, post(t, s, "/write", body).Code)

	token, err := NewTokenService(cfg).GenerateToken("web")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/write", bytes.NewBufferString(body))
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// health stays open
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStart_StopsOnCancel(t *testing.T) {
	s := New(&fakeClient{}, Options{Addr: "127.0.0.1:0", RateLimit: &ratelimit.Config{Enabled: false}})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
