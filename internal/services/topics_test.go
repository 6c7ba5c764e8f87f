package services

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/watchlater-dev/watchlater/internal/platform/vectordb"
	"github.com/watchlater-dev/watchlater/internal/types"
)

func writeSnapshot(t *testing.T, snap types.TopicSnapshot) string {
	t.Helper()
	raw, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}
	path := filepath.Join(t.TempDir(), "topic_clusters.json")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}
	return path
}

func testSnapshot() types.TopicSnapshot {
	return types.TopicSnapshot{
		TotalVideos: 4,
		GeneratedAt: "2026-08-01T12:00:00Z",
		Clusters: []types.TopicCluster{
			{ID: 0, Label: "Programming", Keywords: []string{"go", "rust"}, Size: 2},
			{ID: 1, Label: "Cooking", Keywords: []string{"pasta"}, Size: 1},
			{ID: -1, Label: "Noise", Size: 1},
		},
		Assignments: map[string]int{
			"v1": 0,
			"v2": 0,
			"v3": 1,
			"v4": -1,
		},
	}
}

func TestTopicsServesSnapshot(t *testing.T) {
	path := writeSnapshot(t, testSnapshot())
	store := &fakeStore{
		countFn: func(ctx context.Context) (int64, error) { return 4, nil },
	}
	svc, err := NewTopicService(newTestLogger(t), store, path)
	if err != nil {
		t.Fatalf("NewTopicService: %v", err)
	}

	resp, err := svc.Topics(context.Background())
	if err != nil {
		t.Fatalf("Topics: %v", err)
	}
	if resp.Stale {
		t.Fatalf("snapshot matches live count, should not be stale")
	}
	if len(resp.Topics) != 2 {
		t.Fatalf("noise cluster must be dropped: got=%d topics", len(resp.Topics))
	}
	if resp.Topics[0].Label != "Programming" || resp.Topics[0].Count != 2 {
		t.Fatalf("largest topic first: %+v", resp.Topics[0])
	}
	if resp.TotalVideos != 4 || resp.GeneratedAt == "" {
		t.Fatalf("snapshot metadata: %+v", resp)
	}
}

func TestTopicsStaleWhenCountMoved(t *testing.T) {
	path := writeSnapshot(t, testSnapshot())
	store := &fakeStore{
		countFn: func(ctx context.Context) (int64, error) { return 9, nil },
	}
	svc, err := NewTopicService(newTestLogger(t), store, path)
	if err != nil {
		t.Fatalf("NewTopicService: %v", err)
	}

	resp, err := svc.Topics(context.Background())
	if err != nil {
		t.Fatalf("Topics: %v", err)
	}
	if !resp.Stale {
		t.Fatalf("live count differs from snapshot, expected stale")
	}
}

func TestTopicsMissingSnapshot(t *testing.T) {
	store := &fakeStore{
		countFn: func(ctx context.Context) (int64, error) { return 4, nil },
	}
	svc, err := NewTopicService(newTestLogger(t), store, filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("NewTopicService: %v", err)
	}

	resp, err := svc.Topics(context.Background())
	if err != nil {
		t.Fatalf("Topics: %v", err)
	}
	if !resp.Stale || len(resp.Topics) != 0 {
		t.Fatalf("missing snapshot: %+v", resp)
	}
}

func TestTopicVideos(t *testing.T) {
	path := writeSnapshot(t, testSnapshot())
	store := &fakeStore{
		countFn: func(ctx context.Context) (int64, error) { return 4, nil },
		fetchFn: func(ctx context.Context, ids []string) ([]vectordb.Record, error) {
			if len(ids) != 2 {
				return nil, errors.New("unexpected id count")
			}
			return []vectordb.Record{
				{ID: "v1", Payload: map[string]any{"title": "Go Talk", "channel": "Conf"}},
				{ID: "v2", Payload: map[string]any{"title": "Rust Talk", "channel": "Conf"}},
			}, nil
		},
	}
	svc, err := NewTopicService(newTestLogger(t), store, path)
	if err != nil {
		t.Fatalf("NewTopicService: %v", err)
	}

	resp, err := svc.TopicVideos(context.Background(), 0)
	if err != nil {
		t.Fatalf("TopicVideos: %v", err)
	}
	if resp.Topic.Label != "Programming" {
		t.Fatalf("topic: %+v", resp.Topic)
	}
	if resp.Count != 2 {
		t.Fatalf("count: want=2 got=%d", resp.Count)
	}
	if resp.Results[0].ID != "v1" || resp.Results[0].Score != 0.0 {
		t.Fatalf("first member: %+v", resp.Results[0])
	}
}

func TestTopicVideosUnknownID(t *testing.T) {
	path := writeSnapshot(t, testSnapshot())
	svc, err := NewTopicService(newTestLogger(t), &fakeStore{}, path)
	if err != nil {
		t.Fatalf("NewTopicService: %v", err)
	}

	if _, err := svc.TopicVideos(context.Background(), 42); !errors.Is(err, ErrTopicNotFound) {
		t.Fatalf("want ErrTopicNotFound, got=%v", err)
	}
	if _, err := svc.TopicVideos(context.Background(), noiseClusterID); !errors.Is(err, ErrTopicNotFound) {
		t.Fatalf("noise cluster must 404, got=%v", err)
	}
}
