package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/watchlater-dev/watchlater/internal/clients/rediscache"
	"github.com/watchlater-dev/watchlater/internal/handlers"
	"github.com/watchlater-dev/watchlater/internal/platform/gemini"
	"github.com/watchlater-dev/watchlater/internal/platform/logger"
	"github.com/watchlater-dev/watchlater/internal/platform/qdrant"
	"github.com/watchlater-dev/watchlater/internal/server"
	"github.com/watchlater-dev/watchlater/internal/services"
)

// App bundles everything main needs to run the server.
type App struct {
	Config Config
	Router *gin.Engine
	Cache  rediscache.Cache
}

// Build wires clients, services and handlers bottom-up. It fails fast on
// anything the server cannot run without (vector store, embedder) and
// degrades on the optional pieces (reranker, cache).
func Build(ctx context.Context, log *logger.Logger) (*App, error) {
	cfg := LoadConfig(log)

	qdrantCfg, err := qdrant.ResolveConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("qdrant config: %w", err)
	}
	store, err := qdrant.NewVectorStore(log, qdrantCfg)
	if err != nil {
		return nil, fmt.Errorf("qdrant store: %w", err)
	}

	geminiClient, err := gemini.NewClient(ctx, log, cfg.GeminiAPIKey)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	embedder, err := gemini.NewEmbedder(geminiClient, cfg.EmbeddingModel)
	if err != nil {
		return nil, fmt.Errorf("embedder: %w", err)
	}

	var reranker gemini.Reranker
	if cfg.RerankEnabled {
		reranker, err = gemini.NewReranker(geminiClient, cfg.RerankModel)
		if err != nil {
			log.Warn("reranker init failed, rerank disabled", "error", err)
			reranker = nil
		}
	}

	var cache rediscache.Cache
	if rediscache.Enabled() {
		cache, err = rediscache.New(log)
		if err != nil {
			log.Warn("redis cache init failed, continuing without it", "error", err)
			cache = nil
		}
	}

	searchSvc, err := services.NewSearchService(log, store, embedder, reranker, services.SearchConfig{
		DefaultResults:   cfg.DefaultResults,
		RerankEnabled:    cfg.RerankEnabled && reranker != nil,
		RerankModel:      cfg.RerankModel,
		RerankCandidates: cfg.RerankCandidates,
	})
	if err != nil {
		return nil, fmt.Errorf("search service: %w", err)
	}
	channelSvc, err := services.NewChannelService(log, store, cache)
	if err != nil {
		return nil, fmt.Errorf("channel service: %w", err)
	}
	topicSvc, err := services.NewTopicService(log, store, cfg.TopicSnapshotPath)
	if err != nil {
		return nil, fmt.Errorf("topic service: %w", err)
	}
	statusSvc, err := services.NewStatusService(log, store, services.StatusConfig{
		DefaultResults: cfg.DefaultResults,
		Collection:     qdrantCfg.Collection,
		EmbeddingModel: cfg.EmbeddingModel,
		RerankEnabled:  cfg.RerankEnabled && reranker != nil,
		RerankModel:    cfg.RerankModel,
		ConfigValid:    cfg.Valid(),
	})
	if err != nil {
		return nil, fmt.Errorf("status service: %w", err)
	}

	router, err := server.NewRouter(server.RouterConfig{
		Log:            log,
		AllowOrigins:   cfg.AllowOrigins,
		SearchHandler:  handlers.NewSearchHandler(log, searchSvc),
		ChannelHandler: handlers.NewChannelHandler(log, channelSvc),
		TopicHandler:   handlers.NewTopicHandler(log, topicSvc),
		StatusHandler:  handlers.NewStatusHandler(log, statusSvc),
		PageHandler:    handlers.NewPageHandler(log, statusSvc),
	})
	if err != nil {
		return nil, fmt.Errorf("router: %w", err)
	}

	return &App{
		Config: cfg,
		Router: router,
		Cache:  cache,
	}, nil
}

// Close releases the app's long-lived clients.
func (a *App) Close() {
	if a.Cache != nil {
		_ = a.Cache.Close()
	}
}
