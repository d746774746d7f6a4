package types

import (
	"context"

	"github.com/motivateai/rag/internal/models"
)

// Core interfaces

// VectorStore persists embedded chunks and answers similarity queries.
type VectorStore interface {
	Add(ctx context.Context, chunks []models.Chunk, embeddings [][]float32) error
	Search(ctx context.Context, embedding []float32, k int, filter *models.Filter) ([]models.ScoredChunk, error)
	Reset(ctx context.Context) error
	Count(ctx context.Context) (int, error)
	Close() error
}

// Embedder turns text into vectors.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Chatter generates an answer from a question and retrieved context.
type Chatter interface {
	Chat(ctx context.Context, question, contextText string, numSources int) (string, error)
	ChatStream(ctx context.Context, question, contextText string, numSources int, onToken func(string)) (string, error)
}
