package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/watchlater-dev/watchlater/internal/platform/logger"
	"github.com/watchlater-dev/watchlater/internal/platform/vectordb"
	"github.com/watchlater-dev/watchlater/internal/types"
)

// ErrTopicNotFound is returned for topic ids the snapshot does not know.
var ErrTopicNotFound = errors.New("topic not found")

// noiseClusterID is the bucket the clustering pipeline assigns to videos
// that fit no topic; it is never served.
const noiseClusterID = -1

type TopicService interface {
	Topics(ctx context.Context) (*types.TopicsResponse, error)
	TopicVideos(ctx context.Context, id int) (*types.TopicVideosResponse, error)
}

type topicService struct {
	log          *logger.Logger
	store        vectordb.Store
	snapshotPath string

	mu       sync.Mutex
	snapshot *types.TopicSnapshot
	loadedAt time.Time
}

// NewTopicService serves the precomputed clustering snapshot written by
// the external analysis pipeline.
func NewTopicService(log *logger.Logger, store vectordb.Store, snapshotPath string) (TopicService, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if store == nil {
		return nil, fmt.Errorf("vector store required")
	}
	if snapshotPath == "" {
		return nil, fmt.Errorf("snapshot path required")
	}
	return &topicService{
		log:          log.With("service", "TopicService"),
		store:        store,
		snapshotPath: snapshotPath,
	}, nil
}

func (s *topicService) Topics(ctx context.Context) (*types.TopicsResponse, error) {
	snap := s.loadSnapshot()
	if snap == nil {
		return &types.TopicsResponse{Topics: []types.TopicEntry{}, Stale: true}, nil
	}

	entries := make([]types.TopicEntry, 0, len(snap.Clusters))
	for _, c := range snap.Clusters {
		if c.ID == noiseClusterID {
			continue
		}
		entries = append(entries, types.TopicEntry{
			ID:       c.ID,
			Label:    c.Label,
			Keywords: c.Keywords,
			Count:    c.Size,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Count > entries[j].Count })

	stale := false
	liveCount, err := s.store.Count(ctx)
	if err != nil {
		s.log.Warn("collection count failed, topic staleness unknown", "error", err)
		stale = true
	} else if liveCount != snap.TotalVideos {
		stale = true
	}

	return &types.TopicsResponse{
		Topics:      entries,
		TotalVideos: snap.TotalVideos,
		GeneratedAt: snap.GeneratedAt,
		Stale:       stale,
	}, nil
}

func (s *topicService) TopicVideos(ctx context.Context, id int) (*types.TopicVideosResponse, error) {
	snap := s.loadSnapshot()
	if snap == nil || id == noiseClusterID {
		return nil, ErrTopicNotFound
	}

	var entry *types.TopicEntry
	for _, c := range snap.Clusters {
		if c.ID == id {
			entry = &types.TopicEntry{ID: c.ID, Label: c.Label, Keywords: c.Keywords, Count: c.Size}
			break
		}
	}
	if entry == nil {
		return nil, ErrTopicNotFound
	}

	memberIDs := make([]string, 0, entry.Count)
	for vid, cluster := range snap.Assignments {
		if cluster == id {
			memberIDs = append(memberIDs, vid)
		}
	}
	sort.Strings(memberIDs)

	records, err := s.store.Fetch(ctx, memberIDs)
	if err != nil {
		return nil, fmt.Errorf("fetch topic members: %w", err)
	}
	byID := make(map[string]vectordb.Record, len(records))
	for _, rec := range records {
		byID[rec.ID] = rec
	}

	results := make([]types.VideoResult, 0, len(memberIDs))
	for _, vid := range memberIDs {
		rec, ok := byID[vid]
		if !ok {
			continue
		}
		results = append(results, shapeVideo(rec, 0.0))
	}
	return &types.TopicVideosResponse{
		Topic:   *entry,
		Results: results,
		Count:   len(results),
	}, nil
}

// loadSnapshot reads the snapshot file at most once per minute. A
// missing or unreadable file reports nil; the endpoints then answer
// with an empty stale payload instead of failing.
func (s *topicService) loadSnapshot() *types.TopicSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshot != nil && time.Since(s.loadedAt) < time.Minute {
		return s.snapshot
	}

	raw, err := os.ReadFile(s.snapshotPath)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("topic snapshot unreadable", "path", s.snapshotPath, "error", err)
		}
		return s.snapshot
	}

	var snap types.TopicSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		s.log.Warn("topic snapshot failed to decode", "path", s.snapshotPath, "error", err)
		return s.snapshot
	}
	s.snapshot = &snap
	s.loadedAt = time.Now()
	return s.snapshot
}
