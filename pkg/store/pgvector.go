package store

import (
	"context"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/motivateai/rag/internal/models"
)

type PgVectorConfig struct {
	ConnString string
	TableName  string
	VectorDim  int
	BatchSize  int
}

// PgVector stores chunks in PostgreSQL with the pgvector extension.
type PgVector struct {
	config PgVectorConfig
	pool   *pgxpool.Pool
}

func NewPgVector(config PgVectorConfig) (*PgVector, error) {
	if config.TableName == "" {
		config.TableName = "transcript_chunks"
	}
	if config.VectorDim == 0 {
		config.VectorDim = 1536
	}
	if config.BatchSize == 0 {
		config.BatchSize = 100
	}

	pool, err := pgxpool.New(context.Background(), config.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	vs := &PgVector{
		config: config,
		pool:   pool,
	}

	if err := vs.initialize(context.Background()); err != nil {
		pool.Close()
		return nil, err
	}

	return vs, nil
}

func (vs *PgVector) initialize(ctx context.Context) error {
	_, err := vs.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector")
	if err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}

	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			content TEXT,
			chunk_index INTEGER,
			embedding vector(%d),
			metadata JSONB
		)`, vs.config.TableName, vs.config.VectorDim)

	if _, err := vs.pool.Exec(ctx, createTable); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	createIndex := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS %s_embedding_idx
		ON %s
		USING ivfflat (embedding vector_cosine_ops)
		WITH (lists = 100)`,
		vs.config.TableName, vs.config.TableName)

	if _, err := vs.pool.Exec(ctx, createIndex); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	return nil
}

func (vs *PgVector) Add(ctx context.Context, chunks []models.Chunk, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("chunk/embedding count mismatch: %d vs %d", len(chunks), len(embeddings))
	}

	tx, err := vs.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	stmt := fmt.Sprintf(`
		INSERT INTO %s (id, source, content, chunk_index, embedding, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			content = EXCLUDED.content,
			embedding = EXCLUDED.embedding,
			metadata = EXCLUDED.metadata`,
		vs.config.TableName)

	for i, chunk := range chunks {
		metadata, err := json.Marshal(chunk.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode metadata for %s: %w", chunk.ID, err)
		}

		_, err = tx.Exec(ctx, stmt,
			chunk.ID,
			metaString(chunk.Metadata, "source"),
			sanitizeUTF8(chunk.Content),
			metaInt(chunk.Metadata, "chunk_index"),
			pgvector.NewVector(embeddings[i]),
			metadata,
		)
		if err != nil {
			return fmt.Errorf("failed to insert chunk %s: %w", chunk.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Search returns the k nearest chunks by cosine distance, scored as
// relevance (1 - distance) so higher is better.
func (vs *PgVector) Search(ctx context.Context, embedding []float32, k int, filter *models.Filter) ([]models.ScoredChunk, error) {
	if k <= 0 {
		k = 10
	}

	query := fmt.Sprintf(`
		SELECT id, content, metadata, 1 - (embedding <=> $1) AS score
		FROM %s`, vs.config.TableName)
	args := []any{pgvector.NewVector(embedding)}

	if filter != nil {
		query += " WHERE metadata->>$2 = $3"
		args = append(args, filter.Key, filter.Value)
	}

	query += fmt.Sprintf(" ORDER BY embedding <=> $1 LIMIT %d", k)

	rows, err := vs.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer rows.Close()

	var results []models.ScoredChunk
	for rows.Next() {
		var (
			chunk    models.Chunk
			metadata []byte
			score    float64
		)
		if err := rows.Scan(&chunk.ID, &chunk.Content, &metadata, &score); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if err := json.Unmarshal(metadata, &chunk.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode metadata for %s: %w", chunk.ID, err)
		}
		results = append(results, models.ScoredChunk{Chunk: chunk, Score: score})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	return results, nil
}

// Reset drops and recreates the table; ingest rebuilds from scratch.
func (vs *PgVector) Reset(ctx context.Context) error {
	_, err := vs.pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", vs.config.TableName))
	if err != nil {
		return fmt.Errorf("failed to drop table: %w", err)
	}
	return vs.initialize(ctx)
}

func (vs *PgVector) Count(ctx context.Context) (int, error) {
	var count int
	err := vs.pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", vs.config.TableName)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return count, nil
}

func (vs *PgVector) Close() error {
	if vs.pool != nil {
		vs.pool.Close()
	}
	return nil
}

func sanitizeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	v := make([]rune, 0, len(s))
	for i, r := range s {
		if r == utf8.RuneError {
			_, size := utf8.DecodeRuneInString(s[i:])
			if size == 1 {
				continue
			}
		}
		v = append(v, r)
	}
	return string(v)
}
