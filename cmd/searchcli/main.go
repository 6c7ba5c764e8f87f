package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/watchlater-dev/watchlater/internal/app"
	"github.com/watchlater-dev/watchlater/internal/platform/gemini"
	"github.com/watchlater-dev/watchlater/internal/platform/logger"
	"github.com/watchlater-dev/watchlater/internal/platform/qdrant"
	"github.com/watchlater-dev/watchlater/internal/services"
)

func main() {
	log, err := logger.New(os.Getenv("LOG_MODE"))
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(log); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("\n--- Search Application Closed ---")
}

func run(log *logger.Logger) error {
	ctx := context.Background()
	cfg := app.LoadConfig(log)

	fmt.Println("--- YouTube Watch Later Semantic Search (CLI) ---")
	if !cfg.Valid() {
		fmt.Println("Configuration is not valid. Set GEMINI_API_KEY.")
		return nil
	}

	qdrantCfg, err := qdrant.ResolveConfigFromEnv()
	if err != nil {
		return err
	}
	store, err := qdrant.NewVectorStore(log, qdrantCfg)
	if err != nil {
		return err
	}
	client, err := gemini.NewClient(ctx, log, cfg.GeminiAPIKey)
	if err != nil {
		return err
	}
	embedder, err := gemini.NewEmbedder(client, cfg.EmbeddingModel)
	if err != nil {
		return err
	}
	searchSvc, err := services.NewSearchService(log, store, embedder, nil, services.SearchConfig{
		DefaultResults: cfg.DefaultResults,
	})
	if err != nil {
		return err
	}

	count, err := store.Count(ctx)
	if err != nil {
		return fmt.Errorf("collection count: %w", err)
	}
	fmt.Printf("Database contains %d items.\n", count)
	if count == 0 {
		fmt.Println("Warning: The database is empty. Run the ingestion pipeline first.")
	}

	fmt.Print("\nType search queries (or 'quit' to exit).\n\n")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println("\nExiting search.")
			break
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		if strings.EqualFold(query, "quit") {
			break
		}

		resp, err := searchSvc.Search(ctx, query, cfg.DefaultResults)
		if err != nil {
			fmt.Printf("Search failed: %v\n", err)
			continue
		}
		if len(resp.Results) == 0 {
			fmt.Println("No relevant videos found.")
			continue
		}

		fmt.Printf("\n--- Top %d results for '%s' ---\n", len(resp.Results), query)
		for i, r := range resp.Results {
			fmt.Printf("\n%d. (Score: %.4f) %s\n", i+1, r.Score, r.Title)
			fmt.Printf("   Channel: %s\n", r.Channel)
			fmt.Printf("   URL: %s\n", r.URL)
		}
		fmt.Println()
	}
	return scanner.Err()
}
