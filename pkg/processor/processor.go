package processor

import (
	"fmt"

	"github.com/tmc/langchaingo/textsplitter"

	"github.com/motivateai/rag/internal/models"
)

type ProcessorConfig struct {
	ChunkSize    int
	ChunkOverlap int
	Separators   []string
}

// Processor splits transcripts into overlapping chunks for embedding.
type Processor struct {
	config   ProcessorConfig
	splitter textsplitter.RecursiveCharacter
}

func NewWithConfig(config ProcessorConfig) Processor {
	if config.ChunkSize == 0 {
		config.ChunkSize = 1200
	}
	if config.ChunkOverlap == 0 {
		config.ChunkOverlap = 250
	}
	if len(config.Separators) == 0 {
		// Prefer paragraph and sentence boundaries before falling back to
		// words and raw characters.
		config.Separators = []string{"\n\n\n", "\n\n", "\n", ". ", "; ", ", ", " ", ""}
	}

	return Processor{
		config: config,
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(config.ChunkSize),
			textsplitter.WithChunkOverlap(config.ChunkOverlap),
			textsplitter.WithSeparators(config.Separators),
		),
	}
}

// Process splits each document and annotates every chunk with its document
// metadata, a corpus-wide chunk_index, and the corpus total_chunks count.
func (p *Processor) Process(docs []models.Document) ([]models.Chunk, error) {
	var chunks []models.Chunk

	for _, doc := range docs {
		pieces, err := p.splitter.SplitText(doc.Content)
		if err != nil {
			return nil, fmt.Errorf("failed to split %s: %w", doc.Source, err)
		}

		for i, piece := range pieces {
			metadata := make(map[string]any, len(doc.Metadata)+2)
			for k, v := range doc.Metadata {
				metadata[k] = v
			}
			chunks = append(chunks, models.Chunk{
				ID:       fmt.Sprintf("%s_%d", doc.Source, i),
				Content:  piece,
				Metadata: metadata,
			})
		}
	}

	for i := range chunks {
		chunks[i].Metadata["chunk_index"] = i
		chunks[i].Metadata["total_chunks"] = len(chunks)
	}

	return chunks, nil
}
