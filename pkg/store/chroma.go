package store

import (
	"context"
	"encoding/json"
	"fmt"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	chromaembed "github.com/amikos-tech/chroma-go/pkg/embeddings"

	"github.com/motivateai/rag/internal/models"
)

type ChromaConfig struct {
	BaseURL    string
	Collection string
}

// Chroma stores chunks in a Chroma server collection via the v2 API.
type Chroma struct {
	config     ChromaConfig
	client     chromago.Client
	collection chromago.Collection
}

func NewChroma(config ChromaConfig) (*Chroma, error) {
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:8000"
	}
	if config.Collection == "" {
		config.Collection = "transcripts"
	}

	client, err := chromago.NewHTTPClient(chromago.WithBaseURL(config.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to create chroma client: %w", err)
	}

	cs := &Chroma{
		config: config,
		client: client,
	}

	if err := cs.openCollection(context.Background()); err != nil {
		client.Close()
		return nil, err
	}

	return cs, nil
}

func (cs *Chroma) openCollection(ctx context.Context) error {
	collection, err := cs.client.GetOrCreateCollection(
		ctx,
		cs.config.Collection,
		chromago.WithCollectionMetadataCreate(
			chromago.NewMetadata(
				chromago.NewStringAttribute("hnsw:space", "cosine"),
			),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to get or create collection: %w", err)
	}
	cs.collection = collection
	return nil
}

func (cs *Chroma) Add(ctx context.Context, chunks []models.Chunk, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("chunk/embedding count mismatch: %d vs %d", len(chunks), len(embeddings))
	}

	ids := make([]chromago.DocumentID, len(chunks))
	texts := make([]string, len(chunks))
	vectors := make([]chromaembed.Embedding, len(chunks))
	metadatas := make([]chromago.DocumentMetadata, len(chunks))

	for i, chunk := range chunks {
		ids[i] = chromago.DocumentID(chunk.ID)
		texts[i] = chunk.Content
		vectors[i] = chromaembed.NewEmbeddingFromFloat32(embeddings[i])
		metadatas[i] = toChromaMetadata(chunk.Metadata)
	}

	err := cs.collection.Add(ctx,
		chromago.WithIDs(ids...),
		chromago.WithTexts(texts...),
		chromago.WithEmbeddings(vectors...),
		chromago.WithMetadatas(metadatas...),
	)
	if err != nil {
		return fmt.Errorf("failed to add chunks to chroma: %w", err)
	}
	return nil
}

// Search queries the collection and converts cosine distances to relevance
// scores (1 - distance) so both backends rank identically.
func (cs *Chroma) Search(ctx context.Context, embedding []float32, k int, filter *models.Filter) ([]models.ScoredChunk, error) {
	if k <= 0 {
		k = 10
	}

	opts := []chromago.CollectionQueryOption{
		chromago.WithQueryEmbeddings(chromaembed.NewEmbeddingFromFloat32(embedding)),
		chromago.WithNResults(k),
	}
	if filter != nil {
		opts = append(opts, chromago.WithWhereQuery(chromago.EqString(filter.Key, filter.Value)))
	}

	results, err := cs.collection.Query(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to query chroma: %w", err)
	}

	idGroups := results.GetIDGroups()
	docGroups := results.GetDocumentsGroups()
	metaGroups := results.GetMetadatasGroups()
	distGroups := results.GetDistancesGroups()
	if len(docGroups) == 0 {
		return nil, nil
	}

	var scored []models.ScoredChunk
	for i, doc := range docGroups[0] {
		chunk := models.Chunk{Content: doc.ContentString()}
		if len(idGroups) > 0 && i < len(idGroups[0]) {
			chunk.ID = string(idGroups[0][i])
		}
		if len(metaGroups) > 0 && i < len(metaGroups[0]) {
			chunk.Metadata = fromChromaMetadata(metaGroups[0][i])
		}
		score := 0.0
		if len(distGroups) > 0 && i < len(distGroups[0]) {
			score = 1 - float64(distGroups[0][i])
		}
		scored = append(scored, models.ScoredChunk{Chunk: chunk, Score: score})
	}

	return scored, nil
}

// Reset deletes and recreates the collection; ingest rebuilds from scratch.
func (cs *Chroma) Reset(ctx context.Context) error {
	if err := cs.client.DeleteCollection(ctx, cs.config.Collection); err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	return cs.openCollection(ctx)
}

func (cs *Chroma) Count(ctx context.Context) (int, error) {
	count, err := cs.collection.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count collection: %w", err)
	}
	return int(count), nil
}

func (cs *Chroma) Close() error {
	return cs.client.Close()
}

func toChromaMetadata(md map[string]any) chromago.DocumentMetadata {
	attrs := make([]*chromago.MetaAttribute, 0, len(md))
	for key, value := range md {
		switch v := value.(type) {
		case string:
			attrs = append(attrs, chromago.NewStringAttribute(key, v))
		case int:
			attrs = append(attrs, chromago.NewIntAttribute(key, int64(v)))
		case int64:
			attrs = append(attrs, chromago.NewIntAttribute(key, v))
		case float64:
			attrs = append(attrs, chromago.NewFloatAttribute(key, v))
		case bool:
			attrs = append(attrs, chromago.NewBoolAttribute(key, v))
		}
	}
	return chromago.NewDocumentMetadata(attrs...)
}

// fromChromaMetadata converts DocumentMetadata back to a plain map. The
// struct has no map accessor, so it goes through JSON.
func fromChromaMetadata(md chromago.DocumentMetadata) map[string]any {
	if md == nil {
		return map[string]any{}
	}
	data, err := json.Marshal(md)
	if err != nil {
		return map[string]any{}
	}
	out := make(map[string]any)
	if err := json.Unmarshal(data, &out); err != nil {
		return map[string]any{}
	}
	return out
}
