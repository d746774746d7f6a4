package processor

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motivateai/rag/internal/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoadCatalog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "metadata.yaml")

	catalogData := `
dyson.md:
  source_type: "podcast"
  podcast_name: "Founders"
  episode_number: 300
  subject: "James Dyson"
  company: "Dyson"
  industry: "consumer hardware"
  themes:
    - "perseverance"
    - "product obsession"
  key_concepts:
    - "5127 prototypes"
  time_period: "1970s-2000s"
  stage: "bootstrapped"
`
	require.NoError(t, os.WriteFile(path, []byte(catalogData), 0o644))

	catalog, err := LoadCatalog(path)
	require.NoError(t, err)
	require.Len(t, catalog, 1)

	meta := catalog["dyson.md"]
	assert.Equal(t, "podcast", meta.SourceType)
	assert.Equal(t, "Founders", meta.PodcastName)
	assert.Equal(t, 300, meta.EpisodeNumber)
	assert.Equal(t, "James Dyson", meta.Subject)
	assert.Equal(t, "Dyson", meta.Company)
	assert.Equal(t, []string{"perseverance", "product obsession"}, meta.Themes)
	assert.Equal(t, "bootstrapped", meta.Stage)
}

func TestLoadCatalogMissingFile(t *testing.T) {
	_, err := LoadCatalog(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadTranscripts(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dyson.md"), []byte("Dyson built 5127 prototypes."), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "untracked.md"), []byte("No catalog entry."), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.md"), []byte("   \n"), 0o644))

	catalog := map[string]models.TranscriptMeta{
		"dyson.md": {
			SourceType: "podcast",
			Subject:    "James Dyson",
			Company:    "Dyson",
			Themes:     []string{"perseverance", "product obsession"},
		},
		"empty.md": {Subject: "Nobody"},
	}

	docs, err := LoadTranscripts(dir, catalog, discardLogger())
	require.NoError(t, err)
	require.Len(t, docs, 1, "untracked and empty transcripts are skipped")

	doc := docs[0]
	assert.Equal(t, "dyson.md", doc.Source)
	assert.Equal(t, "Dyson built 5127 prototypes.", doc.Content)
	assert.Equal(t, "dyson.md", doc.Metadata["source"])
	assert.Equal(t, "James Dyson", doc.Metadata["subject"])
	assert.Equal(t, "perseverance, product obsession", doc.Metadata["themes"])

	_, hasEpisode := doc.Metadata["episode_number"]
	assert.False(t, hasEpisode, "episode_number is only set when known")
}

func TestLoadTranscriptsEmptyDir(t *testing.T) {
	docs, err := LoadTranscripts(t.TempDir(), nil, discardLogger())
	require.NoError(t, err)
	assert.Empty(t, docs)
}
