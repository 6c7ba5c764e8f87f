package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/watchlater-dev/watchlater/internal/platform/gemini"
	"github.com/watchlater-dev/watchlater/internal/platform/logger"
	"github.com/watchlater-dev/watchlater/internal/platform/vectordb"
	"github.com/watchlater-dev/watchlater/internal/types"
)

// ErrEmptyQuery is returned when the search query is blank.
var ErrEmptyQuery = errors.New("no search query provided")

const noMatchMessage = "No matching videos found"

// SearchConfig carries the knobs the search flow needs from app config.
type SearchConfig struct {
	DefaultResults   int
	RerankEnabled    bool
	RerankModel      string
	RerankCandidates int
}

type SearchService interface {
	Search(ctx context.Context, query string, displayN int) (*types.SearchResponse, error)
}

type searchService struct {
	log      *logger.Logger
	store    vectordb.Store
	embedder gemini.Embedder
	reranker gemini.Reranker
	cfg      SearchConfig
}

// NewSearchService wires the search flow. reranker may be nil, in which
// case rerank is reported as disabled regardless of config.
func NewSearchService(
	log *logger.Logger,
	store vectordb.Store,
	embedder gemini.Embedder,
	reranker gemini.Reranker,
	cfg SearchConfig,
) (SearchService, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if store == nil {
		return nil, fmt.Errorf("vector store required")
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder required")
	}
	if cfg.DefaultResults < 1 {
		cfg.DefaultResults = 20
	}
	return &searchService{
		log:      log.With("service", "SearchService"),
		store:    store,
		embedder: embedder,
		reranker: reranker,
		cfg:      cfg,
	}, nil
}

func (s *searchService) Search(ctx context.Context, query string, displayN int) (*types.SearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if displayN < 1 {
		displayN = s.cfg.DefaultResults
	}

	rerankActive := s.cfg.RerankEnabled && s.reranker != nil
	retrieveN := displayN
	if rerankActive && s.cfg.RerankCandidates > retrieveN {
		retrieveN = s.cfg.RerankCandidates
	}

	vec, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	matches, err := s.store.QueryMatches(ctx, vec, retrieveN, nil)
	if err != nil {
		return nil, fmt.Errorf("vector query: %w", err)
	}
	if len(matches) == 0 {
		return &types.SearchResponse{
			Results: []types.VideoResult{},
			Message: noMatchMessage,
		}, nil
	}

	results := make([]types.VideoResult, 0, len(matches))
	for i, m := range matches {
		r := shapeVideo(m.Record, clampSimilarity(m.Score))
		r.OriginalRank = i + 1
		results = append(results, r)
	}

	info := &types.RerankInfo{Enabled: rerankActive}
	if rerankActive {
		s.applyRerank(ctx, query, results, info)
	}
	if !info.Applied {
		for i := range results {
			results[i].RerankPosition = results[i].OriginalRank
		}
	}

	if len(results) > displayN {
		results = results[:displayN]
	}
	return &types.SearchResponse{
		Results: results,
		Count:   len(results),
		Rerank:  info,
	}, nil
}

// applyRerank reorders results in place according to the model's
// ordering. Any failure leaves the vector order untouched and records
// the reason.
func (s *searchService) applyRerank(ctx context.Context, query string, results []types.VideoResult, info *types.RerankInfo) {
	info.Model = s.cfg.RerankModel
	info.Reason = "not_run"
	info.CandidateCount = len(results)

	candidates := make([]gemini.RerankCandidate, len(results))
	for i, r := range results {
		candidates[i] = gemini.RerankCandidate{
			ID:      r.ID,
			Title:   r.Title,
			Channel: r.Channel,
		}
	}

	start := time.Now()
	ranked, err := s.reranker.Rerank(ctx, query, candidates)
	info.LatencyMS = time.Since(start).Milliseconds()

	if err != nil {
		var rerr *gemini.RerankError
		if errors.As(err, &rerr) && rerr.Stage == gemini.RerankStageParse {
			info.Reason = "parse_failed"
		} else {
			info.Reason = "llm_error"
		}
		s.log.Warn("rerank failed, keeping vector order",
			"reason", info.Reason,
			"error", err,
		)
		return
	}
	if len(ranked) == 0 {
		info.Reason = "parse_failed"
		return
	}

	applyRanking(results, ranked)
	info.Applied = true
	info.Reason = "success"
}

// applyRanking permutes results so ranked ids come first in the model's
// order; ids the model never mentioned keep their relative vector order
// behind them. Ids outside the candidate set are dropped. Scores the
// model attached are carried through as llm_score.
func applyRanking(results []types.VideoResult, ranked []gemini.RankedItem) {
	index := make(map[string]int, len(results))
	for i, r := range results {
		index[r.ID] = i
	}

	ordered := make([]types.VideoResult, 0, len(results))
	taken := make(map[string]bool, len(results))
	for _, item := range ranked {
		i, ok := index[item.ID]
		if !ok || taken[item.ID] {
			continue
		}
		taken[item.ID] = true
		r := results[i]
		if item.Score != nil {
			score := *item.Score
			r.LLMScore = &score
		}
		ordered = append(ordered, r)
	}
	for _, r := range results {
		if !taken[r.ID] {
			ordered = append(ordered, r)
		}
	}

	copy(results, ordered)
	for i := range results {
		results[i].RerankPosition = i + 1
	}
}

// clampSimilarity keeps scores presentable: cosine similarity should land
// in [0,1], anything else reports 0.
func clampSimilarity(score float64) float64 {
	if score < 0 || score > 1 {
		return 0
	}
	return score
}
