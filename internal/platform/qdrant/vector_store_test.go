package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/watchlater-dev/watchlater/internal/platform/logger"
)

func TestQueryMatchesRequestShapeAndRecordExtraction(t *testing.T) {
	var captured map[string]any
	s := newTestVectorStore(t, func(r *http.Request) (*http.Response, error) {
		if r.Method != http.MethodPost {
			t.Fatalf("method: want=%s got=%s", http.MethodPost, r.Method)
		}
		if r.URL.Path != "/collections/watch_later_videos/points/search" {
			t.Fatalf("path: want=%q got=%q", "/collections/watch_later_videos/points/search", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		return okResponse(t, []map[string]any{
			{
				"id":    "11111111-1111-1111-1111-111111111111",
				"score": 0.92,
				"payload": map[string]any{
					payloadVideoIDKey:  "dQw4w9WgXcQ",
					payloadDocumentKey: "Title\nChannel\nDescription",
					"title":            "Some Video",
					"channel":          "Some Channel",
				},
			},
			{
				"id":    "22222222-2222-2222-2222-222222222222",
				"score": 0.40,
				"payload": map[string]any{
					payloadVideoIDKey: "abc123defgh",
					"title":           "Other Video",
				},
			},
		}), nil
	})

	matches, err := s.QueryMatches(context.Background(), []float32{1, 2, 3}, 5, nil)
	if err != nil {
		t.Fatalf("QueryMatches: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("matches length: want=2 got=%d", len(matches))
	}
	if matches[0].ID != "dQw4w9WgXcQ" {
		t.Fatalf("first match id: want=%q got=%q", "dQw4w9WgXcQ", matches[0].ID)
	}
	if matches[0].Document != "Title\nChannel\nDescription" {
		t.Fatalf("document: got=%q", matches[0].Document)
	}
	if _, reserved := matches[0].Payload[payloadVideoIDKey]; reserved {
		t.Fatalf("reserved payload key leaked into metadata")
	}
	if _, reserved := matches[0].Payload[payloadDocumentKey]; reserved {
		t.Fatalf("reserved document key leaked into metadata")
	}
	if matches[0].Payload["title"] != "Some Video" {
		t.Fatalf("payload title: got=%v", matches[0].Payload["title"])
	}
	if !(matches[0].Score > matches[1].Score) {
		t.Fatalf("expected descending scores, got=%v", []float64{matches[0].Score, matches[1].Score})
	}

	if captured["with_payload"] != true {
		t.Fatalf("with_payload: want=true got=%v", captured["with_payload"])
	}
	if captured["with_vector"] != false {
		t.Fatalf("with_vector: want=false got=%v", captured["with_vector"])
	}
	if captured["limit"] != float64(5) {
		t.Fatalf("limit: want=5 got=%v", captured["limit"])
	}
	if _, hasFilter := captured["filter"]; hasFilter {
		t.Fatalf("filter should be absent when no filter given")
	}
}

func TestQueryMatchesDimensionMismatch(t *testing.T) {
	s := newTestVectorStore(t, func(r *http.Request) (*http.Response, error) {
		t.Fatalf("no request expected")
		return nil, nil
	})

	_, err := s.QueryMatches(context.Background(), []float32{1, 2}, 5, nil)
	if err == nil {
		t.Fatalf("QueryMatches: expected error, got nil")
	}
	var opErr *OperationError
	if !errors.As(err, &opErr) {
		t.Fatalf("expected OperationError, got=%T", err)
	}
	if opErr.Code != OperationErrorValidation {
		t.Fatalf("error code: want=%q got=%q", OperationErrorValidation, opErr.Code)
	}
}

func TestFilterRecordsTranslatesEqualityFilter(t *testing.T) {
	var captured map[string]any
	s := newTestVectorStore(t, func(r *http.Request) (*http.Response, error) {
		if r.URL.Path != "/collections/watch_later_videos/points/scroll" {
			t.Fatalf("path: got=%q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		return okResponse(t, map[string]any{
			"points": []map[string]any{
				{
					"id": "33333333-3333-3333-3333-333333333333",
					"payload": map[string]any{
						payloadVideoIDKey: "vid1",
						"channel":         "Veritasium",
					},
				},
			},
			"next_page_offset": nil,
		}), nil
	})

	records, err := s.FilterRecords(context.Background(), map[string]any{"channel": "Veritasium"}, 100)
	if err != nil {
		t.Fatalf("FilterRecords: %v", err)
	}
	if len(records) != 1 || records[0].ID != "vid1" {
		t.Fatalf("records: got=%+v", records)
	}

	filter, ok := captured["filter"].(map[string]any)
	if !ok {
		t.Fatalf("filter type: got=%T", captured["filter"])
	}
	must, ok := filter["must"].([]any)
	if !ok || len(must) != 1 {
		t.Fatalf("must conditions: got=%v", filter["must"])
	}
	cond, ok := must[0].(map[string]any)
	if !ok || cond["key"] != "channel" {
		t.Fatalf("condition key: got=%v", must[0])
	}
	match, ok := cond["match"].(map[string]any)
	if !ok || match["value"] != "Veritasium" {
		t.Fatalf("condition match: got=%v", cond["match"])
	}
}

func TestAllRecordsFollowsScrollPagination(t *testing.T) {
	var calls int
	s := newTestVectorStore(t, func(r *http.Request) (*http.Response, error) {
		calls++
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		switch calls {
		case 1:
			if _, hasOffset := body["offset"]; hasOffset {
				t.Fatalf("first scroll page must not carry an offset")
			}
			return okResponse(t, map[string]any{
				"points": []map[string]any{
					{"id": "a", "payload": map[string]any{payloadVideoIDKey: "vid1"}},
					{"id": "b", "payload": map[string]any{payloadVideoIDKey: "vid2"}},
				},
				"next_page_offset": "cursor-1",
			}), nil
		case 2:
			if body["offset"] != "cursor-1" {
				t.Fatalf("second page offset: want=%q got=%v", "cursor-1", body["offset"])
			}
			return okResponse(t, map[string]any{
				"points": []map[string]any{
					{"id": "c", "payload": map[string]any{payloadVideoIDKey: "vid3"}},
				},
				"next_page_offset": nil,
			}), nil
		default:
			t.Fatalf("unexpected extra scroll call %d", calls)
			return nil, nil
		}
	})

	records, err := s.AllRecords(context.Background(), 2)
	if err != nil {
		t.Fatalf("AllRecords: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records length: want=3 got=%d", len(records))
	}
	if records[2].ID != "vid3" {
		t.Fatalf("last record id: want=%q got=%q", "vid3", records[2].ID)
	}
	if calls != 2 {
		t.Fatalf("scroll calls: want=2 got=%d", calls)
	}
}

func TestFetchDeduplicatesPointIDs(t *testing.T) {
	var captured map[string]any
	s := newTestVectorStore(t, func(r *http.Request) (*http.Response, error) {
		if r.URL.Path != "/collections/watch_later_videos/points" {
			t.Fatalf("path: got=%q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		return okResponse(t, []map[string]any{
			{"id": "x", "payload": map[string]any{payloadVideoIDKey: "vid1"}},
		}), nil
	})

	records, err := s.Fetch(context.Background(), []string{"vid1", "vid1", " ", "vid2"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(records) != 1 || records[0].ID != "vid1" {
		t.Fatalf("records: got=%+v", records)
	}

	ids, ok := captured["ids"].([]any)
	if !ok {
		t.Fatalf("ids type: got=%T", captured["ids"])
	}
	if len(ids) != 2 {
		t.Fatalf("point ids: want=2 got=%d (%v)", len(ids), ids)
	}
	if ids[0] == ids[1] {
		t.Fatalf("point ids not deduplicated: %v", ids)
	}
}

func TestCountExact(t *testing.T) {
	s := newTestVectorStore(t, func(r *http.Request) (*http.Response, error) {
		if r.URL.Path != "/collections/watch_later_videos/points/count" {
			t.Fatalf("path: got=%q", r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["exact"] != true {
			t.Fatalf("exact: want=true got=%v", body["exact"])
		}
		return okResponse(t, map[string]any{"count": 1234}), nil
	})

	count, err := s.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1234 {
		t.Fatalf("count: want=1234 got=%d", count)
	}
}

func TestDeleteIDsTranslatesToPointDelete(t *testing.T) {
	var captured map[string]any
	s := newTestVectorStore(t, func(r *http.Request) (*http.Response, error) {
		if r.Method != http.MethodPost {
			t.Fatalf("method: got=%q", r.Method)
		}
		if r.URL.Path != "/collections/watch_later_videos/points/delete" {
			t.Fatalf("path: got=%q", r.URL.Path)
		}
		if r.URL.RawQuery != "wait=true" {
			t.Fatalf("query: got=%q", r.URL.RawQuery)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		return okResponse(t, map[string]any{"operation_id": 7, "status": "completed"}), nil
	})

	if err := s.DeleteIDs(context.Background(), []string{"vid1", "vid1", "vid2"}); err != nil {
		t.Fatalf("DeleteIDs: %v", err)
	}

	points, ok := captured["points"].([]any)
	if !ok {
		t.Fatalf("points type: got=%T", captured["points"])
	}
	if len(points) != 2 {
		t.Fatalf("points: want=2 got=%d (%v)", len(points), points)
	}
	if points[0] != s.pointID("vid1") || points[1] != s.pointID("vid2") {
		t.Fatalf("point ids: got=%v", points)
	}
}

func TestDeleteIDsSkipsEmptyBatch(t *testing.T) {
	s := newTestVectorStore(t, func(r *http.Request) (*http.Response, error) {
		t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		return nil, nil
	})

	if err := s.DeleteIDs(context.Background(), []string{"", "   "}); err != nil {
		t.Fatalf("DeleteIDs: %v", err)
	}
}

func TestDoJSONSurfacesEnvelopeError(t *testing.T) {
	s := newTestVectorStore(t, func(r *http.Request) (*http.Response, error) {
		payload := map[string]any{
			"result": nil,
			"status": map[string]any{"error": "collection not found"},
		}
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     make(http.Header),
			Body:       io.NopCloser(bytes.NewReader(raw)),
		}, nil
	})

	_, err := s.Count(context.Background())
	if err == nil {
		t.Fatalf("Count: expected error, got nil")
	}
	var opErr *OperationError
	if !errors.As(err, &opErr) {
		t.Fatalf("expected OperationError, got=%T", err)
	}
	if opErr.Code != OperationErrorQueryFailed {
		t.Fatalf("error code: want=%q got=%q", OperationErrorQueryFailed, opErr.Code)
	}
}

func TestNormalizeScoreEuclid(t *testing.T) {
	s := newTestVectorStore(t, nil)
	s.distance = "euclid"
	if got := s.normalizeScore(0); got != 1.0 {
		t.Fatalf("normalizeScore(0): want=1.0 got=%v", got)
	}
	if got := s.normalizeScore(1); got != 0.5 {
		t.Fatalf("normalizeScore(1): want=0.5 got=%v", got)
	}
	s.distance = "cosine"
	if got := s.normalizeScore(0.73); got != 0.73 {
		t.Fatalf("normalizeScore cosine passthrough: want=0.73 got=%v", got)
	}
}

func TestClassifyHTTPCallErrorTimeout(t *testing.T) {
	err := classifyHTTPCallError("query", "timeout", context.DeadlineExceeded)
	var opErr *OperationError
	if !errors.As(err, &opErr) {
		t.Fatalf("expected OperationError, got=%T", err)
	}
	if opErr.Code != OperationErrorTimeout {
		t.Fatalf("error code: want=%q got=%q", OperationErrorTimeout, opErr.Code)
	}
}

func TestClassifyHTTPCallErrorTransport(t *testing.T) {
	err := classifyHTTPCallError("query", "transport", fmt.Errorf("boom"))
	var opErr *OperationError
	if !errors.As(err, &opErr) {
		t.Fatalf("expected OperationError, got=%T", err)
	}
	if opErr.Code != OperationErrorTransportFailed {
		t.Fatalf("error code: want=%q got=%q", OperationErrorTransportFailed, opErr.Code)
	}
}

func newTestVectorStore(t *testing.T, roundTrip func(*http.Request) (*http.Response, error)) *vectorStore {
	t.Helper()
	client := &http.Client{}
	if roundTrip != nil {
		client.Transport = roundTripFunc(roundTrip)
	}
	return &vectorStore{
		log:      newTestLogger(t),
		cfg:      Config{Collection: "watch_later_videos", VectorDim: 3},
		baseURL:  "http://qdrant.local",
		http:     client,
		distance: "cosine",
	}
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(func() {
		log.Sync()
	})
	return log
}

func okResponse(t *testing.T, result any) *http.Response {
	t.Helper()
	payload := map[string]any{
		"result": result,
		"status": "ok",
		"time":   0.001,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     make(http.Header),
		Body:       io.NopCloser(bytes.NewReader(raw)),
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}
