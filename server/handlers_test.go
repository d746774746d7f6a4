package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motivateai/rag/internal/models"
	"github.com/motivateai/rag/pkg/history"
	"github.com/motivateai/rag/pkg/rag"
)

type stubQuerier struct {
	result  *models.QueryResult
	err     error
	lastReq rag.Request
}

func (q *stubQuerier) Query(ctx context.Context, req rag.Request) (*models.QueryResult, error) {
	q.lastReq = req
	if q.err != nil {
		return nil, q.err
	}
	return q.result, nil
}

func (q *stubQuerier) QueryStream(ctx context.Context, req rag.Request, onToken func(string)) (*models.QueryResult, error) {
	q.lastReq = req
	if q.err != nil {
		return nil, q.err
	}
	for _, tok := range strings.SplitAfter(q.result.Answer, " ") {
		onToken(tok)
	}
	return q.result, nil
}

func testResult() *models.QueryResult {
	return &models.QueryResult{
		Answer: "Persistence beats talent.",
		Sources: []models.Source{
			{
				Subject:    "James Dyson",
				Company:    "Dyson",
				Themes:     "perseverance",
				Score:      0.82,
				ChunkText:  "Dyson built 5127 prototypes.",
				ChunkIndex: 0,
				SourceFile: "dyson.md",
			},
		},
		Retrieved: 3,
		Kept:      1,
		BestScore: 0.82,
	}
}

func newTestServer(t *testing.T, querier rag.Querier) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hist, err := history.Open(t.TempDir(), 10)
	require.NoError(t, err)
	t.Cleanup(func() { hist.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(Config{}, querier, hist, log)
}

func postForm(t *testing.T, srv *Server, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func TestHome(t *testing.T) {
	srv := newTestServer(t, &stubQuerier{result: testResult()})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "<form")
	assert.Contains(t, body, `name="query"`)
}

func TestQueryHandler(t *testing.T) {
	querier := &stubQuerier{result: testResult()}
	srv := newTestServer(t, querier)

	w := postForm(t, srv, "/query", url.Values{
		"query":     {"what made Dyson succeed?"},
		"k":         {"5"},
		"threshold": {"0.5"},
	})

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Persistence beats talent.")
	assert.Contains(t, body, "James Dyson")
	assert.Contains(t, body, "dyson.md")

	assert.Equal(t, "what made Dyson succeed?", querier.lastReq.Query)
	assert.Equal(t, 5, querier.lastReq.K)
	assert.Equal(t, 0.5, querier.lastReq.Threshold)
}

func TestQueryHandlerRecordsHistory(t *testing.T) {
	srv := newTestServer(t, &stubQuerier{result: testResult()})

	w := postForm(t, srv, "/query", url.Values{"query": {"first question"}})
	require.Equal(t, http.StatusOK, w.Code)

	entries, err := srv.history.Recent(0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "first question", entries[0].Query)
	assert.Equal(t, "Persistence beats talent.", entries[0].Answer)
}

func TestQueryHandlerValidation(t *testing.T) {
	tests := []struct {
		name    string
		form    url.Values
		message string
	}{
		{
			name:    "empty query",
			form:    url.Values{"query": {"   "}},
			message: "Query cannot be empty",
		},
		{
			name:    "k too small",
			form:    url.Values{"query": {"q"}, "k": {"0"}},
			message: "k must be between 1 and 10",
		},
		{
			name:    "k too large",
			form:    url.Values{"query": {"q"}, "k": {"11"}},
			message: "k must be between 1 and 10",
		},
		{
			name:    "k not a number",
			form:    url.Values{"query": {"q"}, "k": {"five"}},
			message: "k must be between 1 and 10",
		},
		{
			name:    "threshold too low",
			form:    url.Values{"query": {"q"}, "threshold": {"0.05"}},
			message: "threshold must be between 0.1 and 1.0",
		},
		{
			name:    "threshold too high",
			form:    url.Values{"query": {"q"}, "threshold": {"1.5"}},
			message: "threshold must be between 0.1 and 1.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, &stubQuerier{result: testResult()})
			w := postForm(t, srv, "/query", tt.form)

			require.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), tt.message)
		})
	}
}

func TestQueryHandlerEngineError(t *testing.T) {
	srv := newTestServer(t, &stubQuerier{err: fmt.Errorf("upstream unavailable")})

	w := postForm(t, srv, "/query", url.Values{"query": {"anything"}})
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "upstream unavailable")
}

func TestClearHistory(t *testing.T) {
	srv := newTestServer(t, &stubQuerier{result: testResult()})

	w := postForm(t, srv, "/query", url.Values{"query": {"to be cleared"}})
	require.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/clear-history", nil)
	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Query history cleared", resp["message"])

	entries, err := srv.history.Recent(0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &stubQuerier{result: testResult()})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestAPIQuery(t *testing.T) {
	querier := &stubQuerier{result: testResult()}
	srv := newTestServer(t, querier)

	payload := `{"query": "what made Dyson succeed?", "k": 3, "threshold": 0.6, "filter": "subject:James Dyson"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var result models.QueryResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "Persistence beats talent.", result.Answer)
	require.Len(t, result.Sources, 1)
	assert.Equal(t, "James Dyson", result.Sources[0].Subject)

	assert.Equal(t, 3, querier.lastReq.K)
	assert.Equal(t, 0.6, querier.lastReq.Threshold)
	assert.Equal(t, "subject:James Dyson", querier.lastReq.Filter)
}

func TestAPIQueryDefaults(t *testing.T) {
	querier := &stubQuerier{result: testResult()}
	srv := newTestServer(t, querier)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", strings.NewReader(`{"query": "anything"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, querier.lastReq.K)
	assert.Equal(t, 0.5, querier.lastReq.Threshold)
}

func TestAPIQueryConfiguredDefaults(t *testing.T) {
	gin.SetMode(gin.TestMode)

	hist, err := history.Open(t.TempDir(), 10)
	require.NoError(t, err)
	t.Cleanup(func() { hist.Close() })

	querier := &stubQuerier{result: testResult()}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := New(Config{DefaultK: 7, DefaultThreshold: 0.3}, querier, hist, log)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", strings.NewReader(`{"query": "anything"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 7, querier.lastReq.K)
	assert.Equal(t, 0.3, querier.lastReq.Threshold)
}

func TestAPIQueryMissingQuery(t *testing.T) {
	srv := newTestServer(t, &stubQuerier{result: testResult()})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", strings.NewReader(`{"k": 3}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
