package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/motivateai/rag/internal/logger"
	cfgPkg "github.com/motivateai/rag/pkg/config"
	"github.com/motivateai/rag/pkg/history"
	"github.com/motivateai/rag/pkg/llm"
	"github.com/motivateai/rag/pkg/rag"
	"github.com/motivateai/rag/pkg/store"
	"github.com/motivateai/rag/server"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.Parse()

	godotenv.Load()

	config, err := cfgPkg.LoadConfig(configPath)
	if err != nil {
		log.Fatal(err)
	}
	if errs := config.Validate(); len(errs) > 0 {
		for _, e := range errs {
			color.Red("config: %v", e)
		}
		os.Exit(1)
	}

	if err := run(config); err != nil {
		log.Fatal(err)
	}
}

func run(config *cfgPkg.Config) error {
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

	hist, err := history.Open(filepath.Join(config.Server.DataDir, "history"), config.Server.HistoryLimit)
	if err != nil {
		return err
	}
	defer hist.Close()

	engine := rag.New(vectorStore, embedder, chatEngine, slogger)

	srv := server.New(server.Config{
		Addr:             config.Server.Addr,
		DefaultK:         config.Retrieval.K,
		DefaultThreshold: config.Retrieval.Threshold,
	}, engine, hist, slogger)

	return srv.Run()
}
