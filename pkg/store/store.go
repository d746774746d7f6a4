package store

import (
	"fmt"

	"github.com/motivateai/rag/internal/types"
)

// Config selects and configures a vector store backend.
type Config struct {
	Driver      string // pgvector or chroma
	DatabaseURL string
	TableName   string
	VectorDim   int
	BatchSize   int
	ChromaURL   string
	Collection  string
}

// Open connects the configured backend.
func Open(config Config) (types.VectorStore, error) {
	switch config.Driver {
	case "pgvector", "":
		return NewPgVector(PgVectorConfig{
			ConnString: config.DatabaseURL,
			TableName:  config.TableName,
			VectorDim:  config.VectorDim,
			BatchSize:  config.BatchSize,
		})
	case "chroma":
		return NewChroma(ChromaConfig{
			BaseURL:    config.ChromaURL,
			Collection: config.Collection,
		})
	default:
		return nil, fmt.Errorf("unknown store driver %q", config.Driver)
	}
}
