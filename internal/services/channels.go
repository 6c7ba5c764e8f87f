package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/watchlater-dev/watchlater/internal/clients/rediscache"
	"github.com/watchlater-dev/watchlater/internal/platform/logger"
	"github.com/watchlater-dev/watchlater/internal/platform/vectordb"
	"github.com/watchlater-dev/watchlater/internal/types"
)

const (
	channelCacheKeyPrefix = "watchlater:channels:"
	channelCacheTTL       = time.Hour
)

// ChannelQuery carries the already-validated listing parameters. Limit
// nil means unlimited.
type ChannelQuery struct {
	Sort   string
	Limit  *int
	Offset int
	Q      string
}

type ChannelService interface {
	Channels(ctx context.Context, q ChannelQuery) (*types.ChannelsResponse, error)
	ChannelVideos(ctx context.Context, channel string) (*types.ChannelVideosResponse, error)
}

type channelService struct {
	log   *logger.Logger
	store vectordb.Store
	cache rediscache.Cache

	mu        sync.Mutex
	rows      []types.ChannelRow
	rowsTotal int64
}

// NewChannelService builds the channel aggregation layer. cache may be
// nil; aggregation then only lives in process.
func NewChannelService(log *logger.Logger, store vectordb.Store, cache rediscache.Cache) (ChannelService, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if store == nil {
		return nil, fmt.Errorf("vector store required")
	}
	return &channelService{
		log:       log.With("service", "ChannelService"),
		store:     store,
		cache:     cache,
		rowsTotal: -1,
	}, nil
}

func (s *channelService) Channels(ctx context.Context, q ChannelQuery) (*types.ChannelsResponse, error) {
	rows, total, stale, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	filtered := rows
	if query := strings.ToLower(strings.TrimSpace(q.Q)); query != "" {
		filtered = make([]types.ChannelRow, 0, len(rows))
		for _, row := range rows {
			if strings.Contains(strings.ToLower(row.Channel), query) {
				filtered = append(filtered, row)
			}
		}
	}

	sorted := make([]types.ChannelRow, len(filtered))
	copy(sorted, filtered)
	sortChannelRows(sorted, q.Sort)

	totalAvailable := len(sorted)
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	if offset > totalAvailable {
		offset = totalAvailable
	}
	page := sorted[offset:]
	if q.Limit != nil {
		limit := *q.Limit
		if limit < 0 {
			limit = 0
		}
		if limit < len(page) {
			page = page[:limit]
		}
	}

	return &types.ChannelsResponse{
		TotalVideos:      total,
		DistinctChannels: len(rows),
		TotalAvailable:   totalAvailable,
		Returned:         len(page),
		Offset:           offset,
		Limit:            q.Limit,
		HasMore:          q.Limit != nil && offset+len(page) < totalAvailable,
		Sort:             q.Sort,
		Stale:            stale,
		Q:                strings.TrimSpace(q.Q),
		Channels:         page,
	}, nil
}

func (s *channelService) ChannelVideos(ctx context.Context, channel string) (*types.ChannelVideosResponse, error) {
	records, err := s.store.FilterRecords(ctx, map[string]any{"channel": channel}, 0)
	if err != nil {
		return nil, fmt.Errorf("filter by channel: %w", err)
	}

	results := make([]types.VideoResult, 0, len(records))
	for _, rec := range records {
		r := shapeVideo(rec, 0.0)
		if payloadString(rec.Payload, "channel") == "" {
			r.Channel = channel
		}
		results = append(results, r)
	}
	return &types.ChannelVideosResponse{
		Results: results,
		Count:   len(results),
		Channel: channel,
	}, nil
}

// snapshot returns the aggregated rows, rebuilding when the collection
// count moved. When the store is unreachable but an older aggregation
// exists, that one is served with stale set.
func (s *channelService) snapshot(ctx context.Context) ([]types.ChannelRow, int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	total, err := s.store.Count(ctx)
	if err != nil {
		if s.rowsTotal >= 0 {
			s.log.Warn("collection count failed, serving stale channel aggregation", "error", err)
			return s.rows, s.rowsTotal, true, nil
		}
		return nil, 0, false, fmt.Errorf("collection count: %w", err)
	}
	if s.rowsTotal == total {
		return s.rows, total, false, nil
	}

	key := fmt.Sprintf("%s%d", channelCacheKeyPrefix, total)
	if s.cache != nil {
		var cached []types.ChannelRow
		cacheErr := s.cache.GetJSON(ctx, key, &cached)
		if cacheErr == nil {
			s.rows, s.rowsTotal = cached, total
			return s.rows, total, false, nil
		}
		if !errors.Is(cacheErr, rediscache.ErrMiss) {
			s.log.Warn("channel cache read failed", "error", cacheErr)
		}
	}

	start := time.Now()
	rows, err := s.aggregate(ctx, total)
	if err != nil {
		return nil, 0, false, err
	}
	s.rows, s.rowsTotal = rows, total
	s.log.Info("channel aggregation rebuilt",
		"total_videos", total,
		"distinct_channels", len(rows),
		"build_ms", time.Since(start).Milliseconds(),
	)

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, rows, channelCacheTTL); err != nil {
			s.log.Warn("channel cache write failed", "error", err)
		}
	}
	return s.rows, total, false, nil
}

func (s *channelService) aggregate(ctx context.Context, total int64) ([]types.ChannelRow, error) {
	records, err := s.store.AllRecords(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("scan collection: %w", err)
	}

	byChannel := make(map[string]*types.ChannelRow)
	order := make([]string, 0)
	for _, rec := range records {
		name := normalizeChannel(payloadString(rec.Payload, "channel"))
		row, ok := byChannel[name]
		if !ok {
			row = &types.ChannelRow{Channel: name}
			byChannel[name] = row
			order = append(order, name)
		}
		row.Count++
		row.TotalDurationSeconds += payloadSeconds(rec.Payload, "duration_seconds")
		if row.ChannelThumbnail == "" {
			row.ChannelThumbnail = payloadString(rec.Payload, "channel_thumbnail")
		}
	}

	rows := make([]types.ChannelRow, 0, len(byChannel))
	for _, name := range order {
		row := *byChannel[name]
		if total > 0 {
			row.Percent = math.Round(float64(row.Count)/float64(total)*100*100) / 100
		}
		if row.TotalDurationSeconds > 0 {
			row.WatchTime = FormatWatchTime(row.TotalDurationSeconds)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func sortChannelRows(rows []types.ChannelRow, sortOrder string) {
	switch sortOrder {
	case "count_asc":
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Count < rows[j].Count })
	case "alpha":
		sort.SliceStable(rows, func(i, j int) bool {
			return strings.ToLower(rows[i].Channel) < strings.ToLower(rows[j].Channel)
		})
	case "alpha_desc":
		sort.SliceStable(rows, func(i, j int) bool {
			return strings.ToLower(rows[i].Channel) > strings.ToLower(rows[j].Channel)
		})
	default:
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Count > rows[j].Count })
	}
}
