package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const transcriptPage = `<!DOCTYPE html>
<html>
<head><title>Episode 300: James Dyson</title><script>console.log("tracking")</script></head>
<body>
<nav><p>Home | Episodes | About</p></nav>
<div class="transcript">
  <p>Dyson built   5127 prototypes
  before the first sale.</p>
  <p>He refused to license the design.</p>
</div>
<footer><p>Copyright notice</p></footer>
</body>
</html>`

func serveHTML(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch(t *testing.T) {
	srv := serveHTML(t, http.StatusOK, transcriptPage)

	transcript, err := New().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, "Episode 300: James Dyson", transcript.Title)
	assert.Equal(t,
		"Dyson built 5127 prototypes before the first sale.\n\nHe refused to license the design.",
		transcript.Content)
	assert.NotContains(t, transcript.Content, "Copyright", "footer text is stripped")
	assert.NotContains(t, transcript.Content, "Home |", "navigation is stripped")
}

func TestFetchSendsUserAgent(t *testing.T) {
	var userAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("User-Agent")
		fmt.Fprint(w, transcriptPage)
	}))
	t.Cleanup(srv.Close)

	_, err := New().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "motivateai-ingest/1.0", userAgent)
}

func TestFetchFallsBackToRawText(t *testing.T) {
	page := `<html><head><title>Raw</title></head><body><main>Just a wall
	of   text with no paragraph markup.</main></body></html>`
	srv := serveHTML(t, http.StatusOK, page)

	transcript, err := New().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Just a wall of text with no paragraph markup.", transcript.Content)
}

func TestFetchBadStatus(t *testing.T) {
	srv := serveHTML(t, http.StatusNotFound, "gone")

	_, err := New().Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 404")
}

func TestFetchEmptyPage(t *testing.T) {
	srv := serveHTML(t, http.StatusOK, "<html><body></body></html>")

	_, err := New().Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no transcript text found")
}

func TestFetchCancelledContext(t *testing.T) {
	srv := serveHTML(t, http.StatusOK, transcriptPage)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Fetch(ctx, srv.URL)
	assert.Error(t, err)
}
