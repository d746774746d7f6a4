package processor

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/motivateai/rag/internal/models"
)

// LoadTranscripts reads every markdown file in dir and attaches its catalog
// metadata. Files without a catalog entry, and empty files, are skipped with
// a warning so a stray file can never enter the index untagged.
func LoadTranscripts(dir string, catalog map[string]models.TranscriptMeta, log *slog.Logger) ([]models.Document, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.md"))
	if err != nil {
		return nil, fmt.Errorf("error listing transcripts: %w", err)
	}

	var docs []models.Document
	for _, path := range paths {
		name := filepath.Base(path)

		meta, ok := catalog[name]
		if !ok {
			log.Warn("no metadata found for transcript, skipping", "file", name)
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			log.Warn("could not read transcript, skipping", "file", name, "error", err)
			continue
		}
		content := string(data)
		if strings.TrimSpace(content) == "" {
			log.Warn("transcript is empty, skipping", "file", name)
			continue
		}

		docs = append(docs, models.Document{
			Source:   name,
			Content:  content,
			Metadata: metadataFields(name, meta),
		})
	}

	return docs, nil
}

// metadataFields flattens a catalog record for the vector store. Lists are
// joined to comma-separated strings.
func metadataFields(source string, meta models.TranscriptMeta) map[string]any {
	fields := map[string]any{
		"source":       source,
		"source_type":  meta.SourceType,
		"podcast_name": meta.PodcastName,
		"subject":      meta.Subject,
		"company":      meta.Company,
		"industry":     meta.Industry,
		"themes":       strings.Join(meta.Themes, ", "),
		"key_concepts": strings.Join(meta.KeyConcepts, ", "),
		"time_period":  meta.TimePeriod,
		"stage":        meta.Stage,
	}
	if meta.EpisodeNumber > 0 {
		fields["episode_number"] = meta.EpisodeNumber
	}
	return fields
}
