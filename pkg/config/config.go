package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LLM struct {
		APIKey         string  `yaml:"-"`
		BaseURL        string  `yaml:"base_url"`
		Model          string  `yaml:"model"`
		EmbeddingModel string  `yaml:"embedding_model"`
		MaxTokens      int     `yaml:"max_tokens"`
		Temperature    float64 `yaml:"temperature"`
	} `yaml:"llm"`

	Store struct {
		Driver      string `yaml:"driver"` // pgvector or chroma
		DatabaseURL string `yaml:"database_url"`
		TableName   string `yaml:"table_name"`
		VectorDim   int    `yaml:"vector_dim"`
		BatchSize   int    `yaml:"batch_size"`
		ChromaURL   string `yaml:"chroma_url"`
		Collection  string `yaml:"collection"`
	} `yaml:"store"`

	Ingest struct {
		TranscriptsDir string `yaml:"transcripts_dir"`
		MetadataFile   string `yaml:"metadata_file"`
		ChunkSize      int    `yaml:"chunk_size"`
		ChunkOverlap   int    `yaml:"chunk_overlap"`
	} `yaml:"ingest"`

	Retrieval struct {
		K         int     `yaml:"k"`
		Threshold float64 `yaml:"threshold"`
	} `yaml:"retrieval"`

	Server struct {
		Addr         string `yaml:"addr"`
		DataDir      string `yaml:"data_dir"`
		HistoryLimit int    `yaml:"history_limit"`
	} `yaml:"server"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

func LoadConfig(path string) (*Config, error) {
	// If no path provided, try default locations
	if path == "" {
		locations := []string{
			"config.yaml",
			"config.yml",
			filepath.Join(os.Getenv("HOME"), ".config/motivateai/config.yaml"),
			"/etc/motivateai/config.yaml",
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path == "" {
		return getDefaultConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	mergeWithEnv(&config)
	applyDefaults(&config)

	return &config, nil
}

func getDefaultConfig() (*Config, error) {
	config := &Config{}
	mergeWithEnv(config)
	applyDefaults(config)
	return config, nil
}

func applyDefaults(config *Config) {
	if config.LLM.Model == "" {
		config.LLM.Model = "gpt-4o-mini"
	}
	if config.LLM.EmbeddingModel == "" {
		config.LLM.EmbeddingModel = "text-embedding-3-small"
	}
	if config.LLM.MaxTokens == 0 {
		config.LLM.MaxTokens = 2000
	}

	if config.Store.Driver == "" {
		config.Store.Driver = "pgvector"
	}
	if config.Store.TableName == "" {
		config.Store.TableName = "transcript_chunks"
	}
	if config.Store.VectorDim == 0 {
		config.Store.VectorDim = 1536
	}
	if config.Store.BatchSize == 0 {
		config.Store.BatchSize = 100
	}
	if config.Store.ChromaURL == "" {
		config.Store.ChromaURL = "http://localhost:8000"
	}
	if config.Store.Collection == "" {
		config.Store.Collection = "transcripts"
	}

	if config.Ingest.TranscriptsDir == "" {
		config.Ingest.TranscriptsDir = "transcripts"
	}
	if config.Ingest.MetadataFile == "" {
		config.Ingest.MetadataFile = filepath.Join(config.Ingest.TranscriptsDir, "metadata.yaml")
	}
	if config.Ingest.ChunkSize == 0 {
		config.Ingest.ChunkSize = 1200
	}
	if config.Ingest.ChunkOverlap == 0 {
		config.Ingest.ChunkOverlap = 250
	}

	if config.Retrieval.K == 0 {
		config.Retrieval.K = 10
	}
	if config.Retrieval.Threshold == 0 {
		config.Retrieval.Threshold = 0.4
	}

	if config.Server.Addr == "" {
		config.Server.Addr = ":8080"
	}
	if config.Server.DataDir == "" {
		config.Server.DataDir = "data"
	}
	if config.Server.HistoryLimit == 0 {
		config.Server.HistoryLimit = 50
	}

	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
	if config.Log.Format == "" {
		config.Log.Format = "text"
	}
}

func mergeWithEnv(config *Config) {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		config.LLM.APIKey = key
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		config.LLM.BaseURL = baseURL
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		config.Store.DatabaseURL = dbURL
	}
	if chromaURL := os.Getenv("CHROMA_URL"); chromaURL != "" {
		config.Store.ChromaURL = chromaURL
	}
}
