package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/motivateai/rag/internal/models"
	"github.com/motivateai/rag/internal/types"
)

// Request is one retrieval question with its tuning knobs.
type Request struct {
	Query     string
	K         int
	Threshold float64
	Filter    string
}

// Querier is what the CLI and server depend on.
type Querier interface {
	Query(ctx context.Context, req Request) (*models.QueryResult, error)
	QueryStream(ctx context.Context, req Request, onToken func(string)) (*models.QueryResult, error)
}

// Engine wires embedding, similarity search and generation together.
type Engine struct {
	store    types.VectorStore
	embedder types.Embedder
	chat     types.Chatter
	log      *slog.Logger
}

func New(store types.VectorStore, embedder types.Embedder, chat types.Chatter, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		store:    store,
		embedder: embedder,
		chat:     chat,
		log:      log,
	}
}

// Query runs the full pipeline and returns the answer with its sources.
func (e *Engine) Query(ctx context.Context, req Request) (*models.QueryResult, error) {
	ret, early, err := e.retrieve(ctx, req)
	if err != nil {
		return nil, err
	}
	if early != nil {
		return early, nil
	}

	answer, err := e.chat.Chat(ctx, req.Query, buildContext(ret.kept), len(ret.kept))
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}

	return ret.assemble(answer), nil
}

// QueryStream is Query with the answer streamed token by token through onToken.
func (e *Engine) QueryStream(ctx context.Context, req Request, onToken func(string)) (*models.QueryResult, error) {
	ret, early, err := e.retrieve(ctx, req)
	if err != nil {
		return nil, err
	}
	if early != nil {
		return early, nil
	}

	answer, err := e.chat.ChatStream(ctx, req.Query, buildContext(ret.kept), len(ret.kept), onToken)
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}

	return ret.assemble(answer), nil
}

// retrieval carries the search outcome between the retrieve and generate steps.
type retrieval struct {
	kept      []models.ScoredChunk
	retrieved int
	best      float64
}

// retrieve embeds the query, searches the store, and applies the relevance
// threshold. A non-nil result means there is nothing to send to the model
// and the user-facing message is already set.
func (e *Engine) retrieve(ctx context.Context, req Request) (*retrieval, *models.QueryResult, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, nil, fmt.Errorf("query cannot be empty")
	}
	if req.K <= 0 {
		req.K = 10
	}

	// A malformed filter is ignored rather than fatal; the query still runs
	// unfiltered.
	filter, err := models.ParseFilter(req.Filter)
	if err != nil {
		e.log.Warn("ignoring invalid filter", "filter", req.Filter, "error", err)
		filter = nil
	}
	if filter != nil {
		e.log.Info("applying metadata filter", "key", filter.Key, "value", filter.Value)
	}

	embedding, err := e.embedder.EmbedQuery(ctx, req.Query)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := e.store.Search(ctx, embedding, req.K, filter)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to search store: %w", err)
	}

	if len(results) == 0 {
		return nil, &models.QueryResult{Answer: "No results found."}, nil
	}

	var kept []models.ScoredChunk
	best := results[0].Score
	for _, r := range results {
		if r.Score > best {
			best = r.Score
		}
		if r.Score >= req.Threshold {
			kept = append(kept, r)
		}
	}

	e.log.Info("retrieval finished",
		"retrieved", len(results),
		"kept", len(kept),
		"threshold", req.Threshold,
		"best_score", best,
	)
	for i, r := range kept {
		e.log.Debug("retrieved chunk",
			"rank", i+1,
			"subject", metaString(r.Metadata, "subject"),
			"source", metaString(r.Metadata, "source"),
			"score", r.Score,
		)
	}

	if len(kept) == 0 {
		return nil, &models.QueryResult{
			Answer: fmt.Sprintf(
				"No results above threshold %g. Best score was %.3f. Try lowering the threshold with the -threshold flag.",
				req.Threshold, best),
			Retrieved: len(results),
			BestScore: best,
		}, nil
	}

	return &retrieval{kept: kept, retrieved: len(results), best: best}, nil, nil
}

func (r *retrieval) assemble(answer string) *models.QueryResult {
	sources := make([]models.Source, 0, len(r.kept))
	for _, c := range r.kept {
		sources = append(sources, models.Source{
			Subject:    metaString(c.Metadata, "subject"),
			Company:    metaString(c.Metadata, "company"),
			Themes:     metaString(c.Metadata, "themes"),
			Score:      c.Score,
			ChunkText:  c.Content,
			ChunkIndex: metaInt(c.Metadata, "chunk_index"),
			SourceFile: metaString(c.Metadata, "source"),
		})
	}

	return &models.QueryResult{
		Answer:    answer,
		Sources:   sources,
		Retrieved: r.retrieved,
		Kept:      len(r.kept),
		BestScore: r.best,
	}
}

// buildContext joins the kept chunks into the prompt context block.
func buildContext(kept []models.ScoredChunk) string {
	parts := make([]string, 0, len(kept))
	for _, r := range kept {
		parts = append(parts, r.Content+"\n")
	}
	return strings.Join(parts, "\n---\n")
}

func metaString(md map[string]any, key string) string {
	if v, ok := md[key].(string); ok {
		return v
	}
	return ""
}

func metaInt(md map[string]any, key string) int {
	switch v := md[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}
