package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/motivateai/rag/internal/logger"
	"github.com/motivateai/rag/internal/models"
	cfgPkg "github.com/motivateai/rag/pkg/config"
	"github.com/motivateai/rag/pkg/llm"
	"github.com/motivateai/rag/pkg/rag"
	"github.com/motivateai/rag/pkg/store"
)

func main() {
	var (
		configPath string
		k          int
		threshold  float64
		filter     string
		stream     bool
	)

	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.IntVar(&k, "k", 10, "Number of chunks to retrieve (overrides retrieval.k)")
	flag.Float64Var(&threshold, "threshold", 0.4, "Similarity threshold (overrides retrieval.threshold)")
	flag.StringVar(&filter, "filter", "", "Metadata filter (key:value, e.g. 'subject:Elon Musk')")
	flag.BoolVar(&stream, "stream", true, "Stream the answer as it is generated")
	flag.Parse()

	query := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if query == "" {
		fmt.Fprintln(os.Stderr, "usage: query [flags] \"question text\"")
		flag.PrintDefaults()
		os.Exit(2)
	}

	godotenv.Load()

	config, err := cfgPkg.LoadConfig(configPath)
	if err != nil {
		log.Fatal(err)
	}
	applyRetrievalDefaults(flagsSet(), config, &k, &threshold)
	if errs := config.Validate(); len(errs) > 0 {
		for _, e := range errs {
			color.Red("config: %v", e)
		}
		os.Exit(1)
	}

	if err := run(config, rag.Request{Query: query, K: k, Threshold: threshold, Filter: filter}, stream); err != nil {
		log.Fatal(err)
	}
}

// flagsSet reports which flags were passed explicitly on the command line.
func flagsSet() map[string]bool {
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// applyRetrievalDefaults replaces k and threshold with the configured
// retrieval defaults unless the corresponding flag was given.
func applyRetrievalDefaults(set map[string]bool, config *cfgPkg.Config, k *int, threshold *float64) {
	if !set["k"] {
		*k = config.Retrieval.K
	}
	if !set["threshold"] {
		*threshold = config.Retrieval.Threshold
	}
}

func run(config *cfgPkg.Config, req rag.Request, stream bool) error {
	ctx := context.Background()
	slogger := logger.New(config.Log.Level, config.Log.Format)

	embedder, err := llm.NewEmbedderWithConfig(llm.EmbedderConfig{
		Model:   config.LLM.EmbeddingModel,
		APIKey:  config.LLM.APIKey,
		BaseURL: config.LLM.BaseURL,
	})
	if err != nil {
		return err
	}

	chatEngine, err := llm.NewWithConfig(llm.ChatConfig{
		Model:       config.LLM.Model,
		Temperature: config.LLM.Temperature,
		MaxTokens:   config.LLM.MaxTokens,
		APIKey:      config.LLM.APIKey,
		BaseURL:     config.LLM.BaseURL,
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

	engine := rag.New(vectorStore, embedder, chatEngine, slogger)

	var result *models.QueryResult
	if stream {
		result, err = engine.QueryStream(ctx, req, func(token string) {
			fmt.Print(token)
		})
		if err != nil {
			return err
		}
		// Early-exit answers ("no results" and threshold messages) never
		// reach the model, so nothing was streamed.
		if len(result.Sources) == 0 {
			fmt.Print(result.Answer)
		}
		fmt.Println()
	} else {
		result, err = engine.Query(ctx, req)
		if err != nil {
			return err
		}
		fmt.Println(result.Answer)
	}

	printSources(result.Sources)
	return nil
}

func printSources(sources []models.Source) {
	if len(sources) == 0 {
		return
	}

	color.Cyan("\nSources:")
	for i, source := range sources {
		header := source.Subject
		if source.Company != "" {
			header += " / " + source.Company
		}
		color.Green("  %d. %s", i+1, header)
		fmt.Printf("     %s, chunk %d, relevance %.3f\n", source.SourceFile, source.ChunkIndex, source.Score)
		if source.Themes != "" {
			fmt.Printf("     themes: %s\n", source.Themes)
		}
	}
}
