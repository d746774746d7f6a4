package models

// TranscriptMeta is one entry of the metadata catalog. Every transcript file
// that should be ingested needs a record; files without one are skipped.
type TranscriptMeta struct {
	SourceType    string   `yaml:"source_type"`
	PodcastName   string   `yaml:"podcast_name"`
	EpisodeNumber int      `yaml:"episode_number"`
	Subject       string   `yaml:"subject"`
	Company       string   `yaml:"company"`
	Industry      string   `yaml:"industry"`
	Themes        []string `yaml:"themes"`
	KeyConcepts   []string `yaml:"key_concepts"`
	TimePeriod    string   `yaml:"time_period"`
	Stage         string   `yaml:"stage"`
}

// Document is a loaded transcript with its catalog metadata attached.
// List-valued catalog fields are joined to comma-separated strings so they
// survive the vector store's flat metadata schema.
type Document struct {
	Source   string
	Content  string
	Metadata map[string]any
}

// Chunk is the unit of retrieval: a slice of a transcript carrying the
// document metadata plus its position within the corpus.
type Chunk struct {
	ID       string
	Content  string
	Metadata map[string]any
}

// ScoredChunk is a chunk returned from similarity search. Score is a
// relevance in [0,1]; higher is more similar.
type ScoredChunk struct {
	Chunk
	Score float64
}
