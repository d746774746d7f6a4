package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"

	"github.com/motivateai/rag/internal/logger"
	"github.com/motivateai/rag/internal/models"
	cfgPkg "github.com/motivateai/rag/pkg/config"
	"github.com/motivateai/rag/pkg/llm"
	"github.com/motivateai/rag/pkg/processor"
	"github.com/motivateai/rag/pkg/scraper"
	"github.com/motivateai/rag/pkg/store"
)

func main() {
	var (
		configPath string
		dir        string
		metadata   string
		fetchURL   string
		fetchName  string
	)

	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.StringVar(&dir, "dir", "", "Transcripts directory (overrides config)")
	flag.StringVar(&metadata, "metadata", "", "Metadata catalog file (overrides config)")
	flag.StringVar(&fetchURL, "url", "", "Fetch a remote transcript page into the transcripts directory first")
	flag.StringVar(&fetchName, "name", "", "Filename for the fetched transcript (with -url)")
	flag.Parse()

	godotenv.Load()

	config, err := cfgPkg.LoadConfig(configPath)
	if err != nil {
		log.Fatal(err)
	}
	if dir != "" {
		config.Ingest.TranscriptsDir = dir
		if metadata == "" {
			config.Ingest.MetadataFile = filepath.Join(dir, "metadata.yaml")
		}
	}
	if metadata != "" {
		config.Ingest.MetadataFile = metadata
	}
	if errs := config.Validate(); len(errs) > 0 {
		for _, e := range errs {
			color.Red("config: %v", e)
		}
		os.Exit(1)
	}

	if err := run(config, fetchURL, fetchName); err != nil {
		log.Fatal(err)
	}
}

func run(config *cfgPkg.Config, fetchURL, fetchName string) error {
	ctx := context.Background()
	slogger := logger.New(config.Log.Level, config.Log.Format)

	if fetchURL != "" {
		if err := fetchTranscript(ctx, config.Ingest.TranscriptsDir, fetchURL, fetchName); err != nil {
			return err
		}
	}

	color.Blue("Starting database creation from %s", config.Ingest.TranscriptsDir)

	catalog, err := processor.LoadCatalog(config.Ingest.MetadataFile)
	if err != nil {
		return err
	}

	docs, err := processor.LoadTranscripts(config.Ingest.TranscriptsDir, catalog, slogger)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return fmt.Errorf("no transcripts with metadata found in %s", config.Ingest.TranscriptsDir)
	}

	color.Green("✓ Loaded %d documents", len(docs))
	for _, doc := range docs {
		subject, _ := doc.Metadata["subject"].(string)
		fmt.Printf("  %s: %d characters\n", subject, len(doc.Content))
	}

	proc := processor.NewWithConfig(processor.ProcessorConfig{
		ChunkSize:    config.Ingest.ChunkSize,
		ChunkOverlap: config.Ingest.ChunkOverlap,
	})
	chunks, err := proc.Process(docs)
	if err != nil {
		return err
	}
	color.Green("✓ Split into %d chunks", len(chunks))
	printChunksPerSubject(chunks)

	embedder, err := llm.NewEmbedderWithConfig(llm.EmbedderConfig{
		Model:     config.LLM.EmbeddingModel,
		APIKey:    config.LLM.APIKey,
		BaseURL:   config.LLM.BaseURL,
		BatchSize: config.Store.BatchSize,
	})
	if err != nil {
		return err
	}

	vectorStore, err := store.Open(store.Config{
		Driver:      config.Store.Driver,
		DatabaseURL: config.Store.DatabaseURL,
		TableName:   config.Store.TableName,
		VectorDim:   config.Store.VectorDim,
		BatchSize:   config.Store.BatchSize,
		ChromaURL:   config.Store.ChromaURL,
		Collection:  config.Store.Collection,
	})
	if err != nil {
		return err
	}
	defer vectorStore.Close()

	// Rebuild from scratch, matching the ingest contract: the store always
	// reflects exactly the current transcripts directory.
	if err := vectorStore.Reset(ctx); err != nil {
		return err
	}

	bar := progressbar.NewOptions(len(chunks),
		progressbar.OptionSetDescription(color.BlueString("Embedding and storing chunks")),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
	)

	batchSize := config.Store.BatchSize
	for i := 0; i < len(chunks); i += batchSize {
		end := i + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[i:end]

		texts := make([]string, len(batch))
		for j, chunk := range batch {
			texts[j] = chunk.Content
		}

		embeddings, err := embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			return fmt.Errorf("failed to embed batch: %w", err)
		}
		if err := vectorStore.Add(ctx, batch, embeddings); err != nil {
			return fmt.Errorf("failed to store batch: %w", err)
		}
		bar.Add(len(batch))
	}
	bar.Finish()
	fmt.Println()

	color.Green("✓ Saved %d chunks", len(chunks))
	printStats(chunks)

	return nil
}

func fetchTranscript(ctx context.Context, dir, url, name string) error {
	if name == "" {
		name = filepath.Base(strings.TrimRight(url, "/"))
		if !strings.HasSuffix(name, ".md") {
			name += ".md"
		}
	}

	color.Blue("Fetching transcript from %s", url)
	fetcher := scraper.New()
	transcript, err := fetcher.Fetch(ctx, url)
	if err != nil {
		return err
	}

	content := processor.FormatText(transcript.Content)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}

	color.Green("✓ Saved %s (%d characters)", path, len(content))
	color.Yellow("Add a metadata entry for %q to the catalog or the file will be skipped", name)
	return nil
}

func printChunksPerSubject(chunks []models.Chunk) {
	counts := make(map[string]int)
	for _, chunk := range chunks {
		if subject, ok := chunk.Metadata["subject"].(string); ok {
			counts[subject]++
		}
	}
	subjects := make([]string, 0, len(counts))
	for subject := range counts {
		subjects = append(subjects, subject)
	}
	sort.Strings(subjects)
	for _, subject := range subjects {
		fmt.Printf("  %s: %d chunks\n", subject, counts[subject])
	}
}

func printStats(chunks []models.Chunk) {
	subjects := make(map[string]bool)
	themes := make(map[string]bool)
	for _, chunk := range chunks {
		if subject, ok := chunk.Metadata["subject"].(string); ok && subject != "" {
			subjects[subject] = true
		}
		if joined, ok := chunk.Metadata["themes"].(string); ok {
			for _, theme := range strings.Split(joined, ",") {
				if theme = strings.TrimSpace(theme); theme != "" {
					themes[theme] = true
				}
			}
		}
	}

	names := make([]string, 0, len(subjects))
	for subject := range subjects {
		names = append(names, subject)
	}
	sort.Strings(names)

	color.Cyan("Subjects: %s", strings.Join(names, ", "))
	color.Cyan("Unique themes: %d", len(themes))
}
