package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const postingHTML = `<html><body>
<nav>Jobs Home</nav>
<div class="job-description">
  <h2>Senior Go Engineer</h2>
  <p>We build   payment infrastructure.</p>
  <ul><li>5+ years of Go</li><li>Kubernetes</li></ul>
</div>
<form id="application-form"><input name="email"></form>
<footer>© Acme</footer>
</body></html>`

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestPage_Success(t *testing.T) {
	srv := serve(t, http.StatusOK, "<html><body><h1>Role</h1></body></html>")

	result, err := Page(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Contains(t, result.HTML, "<h1>Role</h1>")
	assert.Equal(t, "text/html", result.ContentType)
}

func TestPage_InvalidURL(t *testing.T) {
	_, err := Page(context.Background(), "not-a-url", nil)
	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "invalid URL")
}

func TestPage_HTTPError(t *testing.T) {
	srv := serve(t, http.StatusNotFound, "gone")

	result, err := Page(context.Background(), srv.URL, nil)
	require.Error(t, err)
	require.NotNil(t, result)
	assert.Equal(t, http.StatusNotFound, result.StatusCode)
	assert.Contains(t, err.Error(), "404")
}

func TestMainText_StripsChromeAndKeepsBullets(t *testing.T) {
	text, err := MainText(postingHTML, GenericBoard)
	require.NoError(t, err)

	assert.Contains(t, text, "Senior Go Engineer")
	assert.Contains(t, text, "We build payment infrastructure.")
	assert.Contains(t, text, "- 5+ years of Go")
	assert.Contains(t, text, "- Kubernetes")
	assert.NotContains(t, text, "Jobs Home")
	assert.NotContains(t, text, "Acme")
}

func TestMainText_FallsBackToBody(t *testing.T) {
	text, err := MainText(`<html><body><script>x()</script><p>Just text</p></body></html>`, GenericBoard)
	require.NoError(t, err)
	assert.Equal(t, "Just text", text)
}

func TestBoardFor(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://boards.greenhouse.io/acme/jobs/1", "greenhouse"},
		{"https://job-boards.greenhouse.io/acme/jobs/1", "greenhouse"},
		{"https://jobs.lever.co/acme/abc", "lever"},
		{"https://acme.wd5.myworkdayjobs.com/en-US/External", "workday"},
		{"https://jobs.ashbyhq.com/acme/1", "ashby"},
		{"https://notgreenhouse.io.example.com/job", "generic"},
		{"::", "generic"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BoardFor(tt.url).Name, tt.url)
	}
}

func TestCleanText(t *testing.T) {
	in := "Title\r\n\r\n\r\n\r\n•   Go   and SQL\n*  Docker\n-\n   \nEnd  "
	assert.Equal(t, "Title\n\n- Go and SQL\n- Docker\n\nEnd", CleanText(in))
	assert.Equal(t, "", CleanText("  \n\n "))
	assert.Len(t, []rune(CleanText(strings.Repeat("ü", MaxJobTextRunes+10))), MaxJobTextRunes)
}

func TestJobText_FromURL(t *testing.T) {
	srv := serve(t, http.StatusOK, postingHTML)

	text, err := JobText(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "Senior Go Engineer"))
}

func TestJobText_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.txt")
	require.NoError(t, os.WriteFile(path, []byte("  Backend role \n\n\n\n• Go"), 0o644))

	text, err := JobText(context.Background(), path, nil)
	require.NoError(t, err)
	assert.Equal(t, "Backend role\n\n- Go", text)
}

func TestJobText_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.txt")
	require.NoError(t, os.WriteFile(path, []byte("   "), 0o644))

	_, err := JobText(context.Background(), path, nil)
	assert.ErrorIs(t, err, ErrNoJobText)
}

func TestJobText_BrowserFallback(t *testing.T) {
	srv := serve(t, http.StatusOK, `<html><body><div id="root"></div></body></html>`)

	orig := renderFunc
	t.Cleanup(func() { renderFunc = orig })

	long := strings.Repeat("Rendered requirement line. ", 30)
	renderFunc = func(_ context.Context, _ string, _ *Options) (string, error) {
		return "<html><body><main><p>" + long + "</p></main></body></html>", nil
	}

	text, err := JobText(context.Background(), srv.URL, &Options{Browser: true})
	require.NoError(t, err)
	assert.Contains(t, text, "Rendered requirement line.")

	renderFunc = func(_ context.Context, _ string, _ *Options) (string, error) {
		return "", errors.New("no chrome")
	}
	_, err = JobText(context.Background(), srv.URL, &Options{Browser: true})
	assert.ErrorIs(t, err, ErrNoJobText)
}
