package services

import (
	"context"
	"fmt"

	"github.com/watchlater-dev/watchlater/internal/platform/logger"
	"github.com/watchlater-dev/watchlater/internal/platform/vectordb"
	"github.com/watchlater-dev/watchlater/internal/types"
)

// StatusConfig is the slice of app config the bootstrap and health
// endpoints expose.
type StatusConfig struct {
	DefaultResults int
	Collection     string
	EmbeddingModel string
	RerankEnabled  bool
	RerankModel    string
	ConfigValid    bool
}

// IndexData carries the values the HTML shell template renders.
type IndexData struct {
	DBCount         int64
	CollectionName  string
	CollectionEmpty bool
	DefaultResults  int
	EmbeddingModel  string
}

type StatusService interface {
	AppConfig(ctx context.Context) *types.AppConfig
	Healthcheck(ctx context.Context) *types.Healthcheck
	IndexData(ctx context.Context) IndexData
}

type statusService struct {
	log   *logger.Logger
	store vectordb.Store
	cfg   StatusConfig
}

func NewStatusService(log *logger.Logger, store vectordb.Store, cfg StatusConfig) (StatusService, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if store == nil {
		return nil, fmt.Errorf("vector store required")
	}
	return &statusService{
		log:   log.With("service", "StatusService"),
		store: store,
		cfg:   cfg,
	}, nil
}

// dbCount reads the live collection size. The endpoints stay up when
// the store is unreachable and report a zero count instead.
func (s *statusService) dbCount(ctx context.Context) (int64, bool) {
	count, err := s.store.Count(ctx)
	if err != nil {
		s.log.Warn("collection count failed", "error", err)
		return 0, false
	}
	return count, true
}

func (s *statusService) AppConfig(ctx context.Context) *types.AppConfig {
	count, _ := s.dbCount(ctx)
	return &types.AppConfig{
		DefaultResults:  s.cfg.DefaultResults,
		Collection:      s.cfg.Collection,
		DBCount:         count,
		CollectionEmpty: count == 0,
		EmbeddingModel:  s.cfg.EmbeddingModel,
		Rerank: types.AppConfigRerank{
			Enabled: s.cfg.RerankEnabled,
			Model:   s.cfg.RerankModel,
		},
	}
}

func (s *statusService) Healthcheck(ctx context.Context) *types.Healthcheck {
	count, ok := s.dbCount(ctx)
	status := "ok"
	if !ok {
		status = "degraded"
	}
	return &types.Healthcheck{
		Status:      status,
		DBCount:     count,
		Collection:  s.cfg.Collection,
		Model:       s.cfg.EmbeddingModel,
		ConfigValid: s.cfg.ConfigValid,
	}
}

func (s *statusService) IndexData(ctx context.Context) IndexData {
	count, _ := s.dbCount(ctx)
	return IndexData{
		DBCount:         count,
		CollectionName:  s.cfg.Collection,
		CollectionEmpty: count == 0,
		DefaultResults:  s.cfg.DefaultResults,
		EmbeddingModel:  s.cfg.EmbeddingModel,
	}
}
