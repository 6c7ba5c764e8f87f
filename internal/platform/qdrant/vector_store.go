// Package qdrant implements vectordb.Store against the Qdrant HTTP API.
// Video IDs are not valid Qdrant point IDs, so points get deterministic
// UUIDv5 IDs and the real video ID travels in the payload.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/watchlater-dev/watchlater/internal/platform/logger"
	"github.com/watchlater-dev/watchlater/internal/platform/vectordb"
)

const (
	payloadVideoIDKey  = "_wl_video_id"
	payloadDocumentKey = "_wl_document"
	maxErrorBodyBytes  = 1024
	defaultScrollBatch = 256
)

var pointIDNamespaceUUID = uuid.MustParse("6ba7b811-9dad-11d1-80b4-00c04fd430c8")

type vectorStore struct {
	log      *logger.Logger
	cfg      Config
	baseURL  string
	distance string
	http     *http.Client
}

type qdrantEnvelope struct {
	Result json.RawMessage `json:"result"`
	Status json.RawMessage `json:"status"`
	Time   float64         `json:"time"`
}

type qdrantPoint struct {
	ID      json.RawMessage `json:"id"`
	Score   float64         `json:"score"`
	Payload map[string]any  `json:"payload"`
}

type qdrantScrollResult struct {
	Points         []qdrantPoint   `json:"points"`
	NextPageOffset json.RawMessage `json:"next_page_offset"`
}

func NewVectorStore(log *logger.Logger, cfg Config) (vectordb.Store, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if err := ValidateConfig(cfg, true); err != nil {
		return nil, err
	}

	s := &vectorStore{
		log:     log.With("service", "QdrantVectorStore"),
		cfg:     cfg,
		baseURL: strings.TrimRight(cfg.URL, "/"),
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	if err := s.verifyReady(context.Background()); err != nil {
		return nil, err
	}

	log.Info(
		"Qdrant vector store ready",
		"url", s.baseURL,
		"collection", cfg.Collection,
		"vector_dim", cfg.VectorDim,
		"distance", s.distance,
	)
	return s, nil
}

func (s *vectorStore) QueryMatches(ctx context.Context, q []float32, topK int, filter map[string]any) ([]vectordb.Match, error) {
	if s == nil {
		return nil, fmt.Errorf("vector store unavailable")
	}
	const op = "query"
	if len(q) == 0 {
		return nil, opErr(op, OperationErrorValidation, "query vector required", nil)
	}
	if s.cfg.VectorDim > 0 && len(q) != s.cfg.VectorDim {
		return nil, opErr(
			op,
			OperationErrorValidation,
			fmt.Sprintf("query vector dimension mismatch: expected=%d got=%d", s.cfg.VectorDim, len(q)),
			nil,
		)
	}
	if topK <= 0 {
		topK = 10
	}

	req := map[string]any{
		"vector":       q,
		"limit":        topK,
		"with_payload": true,
		"with_vector":  false,
	}
	if qf := translateFilter(filter); qf != nil {
		req["filter"] = qf
	}

	var rawResults []qdrantPoint
	if err := s.doJSON(
		ctx,
		op,
		http.MethodPost,
		s.collectionPath("/points/search"),
		req,
		&rawResults,
	); err != nil {
		return nil, err
	}

	out := make([]vectordb.Match, 0, len(rawResults))
	for _, item := range rawResults {
		rec, ok := recordFromPayload(item)
		if !ok {
			continue
		}
		out = append(out, vectordb.Match{
			Record: rec,
			Score:  s.normalizeScore(item.Score),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score == out[j].Score {
			return out[i].ID < out[j].ID
		}
		return out[i].Score > out[j].Score
	})
	return out, nil
}

func (s *vectorStore) FilterRecords(ctx context.Context, filter map[string]any, limit int) ([]vectordb.Record, error) {
	if s == nil {
		return nil, fmt.Errorf("vector store unavailable")
	}
	const op = "filter"
	unlimited := limit <= 0

	qf := translateFilter(filter)
	var (
		collected []vectordb.Record
		offset    json.RawMessage
	)
	for {
		batch := defaultScrollBatch
		if !unlimited && limit-len(collected) < batch {
			batch = limit - len(collected)
		}
		req := map[string]any{
			"limit":        batch,
			"with_payload": true,
			"with_vector":  false,
		}
		if qf != nil {
			req["filter"] = qf
		}
		if len(offset) > 0 && string(offset) != "null" {
			req["offset"] = offset
		}

		var result qdrantScrollResult
		if err := s.doJSON(
			ctx,
			op,
			http.MethodPost,
			s.collectionPath("/points/scroll"),
			req,
			&result,
		); err != nil {
			return nil, err
		}
		collected = append(collected, recordsFromPoints(result.Points)...)

		if !unlimited && len(collected) >= limit {
			return collected[:limit], nil
		}
		if len(result.Points) == 0 || len(result.NextPageOffset) == 0 || string(result.NextPageOffset) == "null" {
			return collected, nil
		}
		offset = result.NextPageOffset
	}
}

func (s *vectorStore) AllRecords(ctx context.Context, batchSize int) ([]vectordb.Record, error) {
	if s == nil {
		return nil, fmt.Errorf("vector store unavailable")
	}
	const op = "scroll"
	if batchSize <= 0 {
		batchSize = defaultScrollBatch
	}

	var (
		collected []vectordb.Record
		offset    json.RawMessage
	)
	for {
		req := map[string]any{
			"limit":        batchSize,
			"with_payload": true,
			"with_vector":  false,
		}
		if len(offset) > 0 && string(offset) != "null" {
			req["offset"] = offset
		}

		var result qdrantScrollResult
		if err := s.doJSON(
			ctx,
			op,
			http.MethodPost,
			s.collectionPath("/points/scroll"),
			req,
			&result,
		); err != nil {
			return nil, err
		}

		collected = append(collected, recordsFromPoints(result.Points)...)

		if len(result.Points) == 0 || len(result.NextPageOffset) == 0 || string(result.NextPageOffset) == "null" {
			return collected, nil
		}
		offset = result.NextPageOffset
	}
}

func (s *vectorStore) Fetch(ctx context.Context, ids []string) ([]vectordb.Record, error) {
	if s == nil {
		return nil, fmt.Errorf("vector store unavailable")
	}
	const op = "fetch"
	pointIDs := s.pointIDs(ids)
	if len(pointIDs) == 0 {
		return nil, nil
	}

	req := map[string]any{
		"ids":          pointIDs,
		"with_payload": true,
		"with_vector":  false,
	}
	var points []qdrantPoint
	if err := s.doJSON(
		ctx,
		op,
		http.MethodPost,
		s.collectionPath("/points"),
		req,
		&points,
	); err != nil {
		return nil, err
	}
	return recordsFromPoints(points), nil
}

func (s *vectorStore) Count(ctx context.Context) (int64, error) {
	if s == nil {
		return 0, fmt.Errorf("vector store unavailable")
	}
	const op = "count"

	var result struct {
		Count int64 `json:"count"`
	}
	if err := s.doJSON(
		ctx,
		op,
		http.MethodPost,
		s.collectionPath("/points/count"),
		map[string]any{"exact": true},
		&result,
	); err != nil {
		return 0, err
	}
	return result.Count, nil
}

func (s *vectorStore) DeleteIDs(ctx context.Context, ids []string) error {
	if s == nil {
		return nil
	}
	const op = "delete"
	pointIDs := s.pointIDs(ids)
	if len(pointIDs) == 0 {
		return nil
	}

	req := map[string]any{"points": pointIDs}
	return s.doJSON(
		ctx,
		op,
		http.MethodPost,
		s.collectionPath("/points/delete?wait=true"),
		req,
		nil,
	)
}

func (s *vectorStore) verifyReady(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("qdrant vector store not initialized")
	}
	const op = "bootstrap_verify"

	readyReq, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/readyz", nil)
	if err != nil {
		return opErr(op, OperationErrorTransportFailed, "build ready request failed", err)
	}
	readyResp, err := s.http.Do(readyReq)
	if err != nil {
		return classifyHTTPCallError(op, "qdrant ready check failed", err)
	}
	_ = readyResp.Body.Close()
	if readyResp.StatusCode < 200 || readyResp.StatusCode >= 300 {
		return &OperationError{
			Code:       OperationErrorQueryFailed,
			Operation:  op,
			StatusCode: readyResp.StatusCode,
			Message:    fmt.Sprintf("qdrant ready check returned status=%d", readyResp.StatusCode),
		}
	}

	var result struct {
		Config struct {
			Params struct {
				Vectors struct {
					Size     int    `json:"size"`
					Distance string `json:"distance"`
				} `json:"vectors"`
			} `json:"params"`
		} `json:"config"`
	}
	if err := s.doJSON(
		ctx,
		op,
		http.MethodGet,
		s.collectionPath(""),
		nil,
		&result,
	); err != nil {
		return err
	}

	size := result.Config.Params.Vectors.Size
	if size != 0 && size != s.cfg.VectorDim {
		return &OperationError{
			Code:      OperationErrorValidation,
			Operation: op,
			Message: fmt.Sprintf(
				"qdrant collection %q vector size mismatch: expected=%d actual=%d",
				s.cfg.Collection,
				s.cfg.VectorDim,
				size,
			),
		}
	}
	s.distance = strings.TrimSpace(result.Config.Params.Vectors.Distance)
	return nil
}

func (s *vectorStore) doJSON(ctx context.Context, op, method, path string, in any, out any) error {
	var body io.Reader
	if in != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(in); err != nil {
			return opErr(op, OperationErrorEncodeFailed, "encode request failed", err)
		}
		body = &buf
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return opErr(op, OperationErrorTransportFailed, "build request failed", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return classifyHTTPCallError(op, "qdrant request failed", err)
	}
	defer resp.Body.Close()

	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 10*1024*1024))
	if readErr != nil {
		return opErr(op, OperationErrorDecodeFailed, "read response failed", readErr)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &OperationError{
			Code:       OperationErrorQueryFailed,
			Operation:  op,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("qdrant http status=%d body=%q", resp.StatusCode, truncateBody(raw)),
		}
	}

	var envelope qdrantEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return opErr(op, OperationErrorDecodeFailed, "decode qdrant envelope failed", err)
	}
	if statusErr := parseEnvelopeStatus(envelope.Status); statusErr != "" {
		return &OperationError{
			Code:       OperationErrorQueryFailed,
			Operation:  op,
			StatusCode: resp.StatusCode,
			Message:    statusErr,
		}
	}

	if out == nil {
		return nil
	}
	if len(envelope.Result) == 0 || string(envelope.Result) == "null" {
		return nil
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return opErr(op, OperationErrorDecodeFailed, "decode qdrant result failed", err)
	}
	return nil
}

func classifyHTTPCallError(op, message string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return opErr(op, OperationErrorTimeout, message, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return opErr(op, OperationErrorTimeout, message, err)
	}
	return opErr(op, OperationErrorTransportFailed, message, err)
}

func parseEnvelopeStatus(raw json.RawMessage) string {
	status := strings.TrimSpace(string(raw))
	if status == "" || status == "null" {
		return ""
	}

	var statusString string
	if err := json.Unmarshal(raw, &statusString); err == nil {
		if strings.EqualFold(statusString, "ok") {
			return ""
		}
		return fmt.Sprintf("qdrant status=%q", statusString)
	}

	var statusObject struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &statusObject); err == nil {
		if strings.TrimSpace(statusObject.Error) != "" {
			return strings.TrimSpace(statusObject.Error)
		}
	}

	return fmt.Sprintf("qdrant status=%s", status)
}

func truncateBody(raw []byte) string {
	if len(raw) <= maxErrorBodyBytes {
		return string(raw)
	}
	return string(raw[:maxErrorBodyBytes]) + "..."
}

// translateFilter maps exact-match payload filters onto Qdrant's filter DSL.
// This app only ever filters on payload equality (channel name).
func translateFilter(filter map[string]any) map[string]any {
	if len(filter) == 0 {
		return nil
	}
	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	must := make([]any, 0, len(keys))
	for _, k := range keys {
		must = append(must, map[string]any{
			"key":   k,
			"match": map[string]any{"value": filter[k]},
		})
	}
	return map[string]any{"must": must}
}

func recordsFromPoints(points []qdrantPoint) []vectordb.Record {
	out := make([]vectordb.Record, 0, len(points))
	for _, p := range points {
		if rec, ok := recordFromPayload(p); ok {
			out = append(out, rec)
		}
	}
	return out
}

func recordFromPayload(p qdrantPoint) (vectordb.Record, bool) {
	rec := vectordb.Record{Payload: map[string]any{}}
	for k, v := range p.Payload {
		switch k {
		case payloadVideoIDKey:
			if id, ok := v.(string); ok {
				rec.ID = strings.TrimSpace(id)
			}
		case payloadDocumentKey:
			if doc, ok := v.(string); ok {
				rec.Document = doc
			}
		default:
			rec.Payload[k] = v
		}
	}
	if rec.ID == "" {
		rec.ID = decodePointID(p.ID)
	}
	return rec, rec.ID != ""
}

func decodePointID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var idString string
	if err := json.Unmarshal(raw, &idString); err == nil {
		return strings.TrimSpace(idString)
	}
	var idNumber int64
	if err := json.Unmarshal(raw, &idNumber); err == nil {
		return fmt.Sprintf("%d", idNumber)
	}
	return strings.TrimSpace(string(raw))
}

// normalizeScore maps distance-flavored scores to a "higher is better"
// similarity. Cosine collections already return similarity.
func (s *vectorStore) normalizeScore(score float64) float64 {
	switch strings.ToLower(strings.TrimSpace(s.distance)) {
	case "euclid", "manhattan":
		if score < 0 {
			score = -score
		}
		return 1.0 / (1.0 + score)
	default:
		return score
	}
}

func (s *vectorStore) pointIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		videoID := strings.TrimSpace(id)
		if videoID == "" {
			continue
		}
		pointID := s.pointID(videoID)
		if _, exists := seen[pointID]; exists {
			continue
		}
		seen[pointID] = struct{}{}
		out = append(out, pointID)
	}
	return out
}

func (s *vectorStore) pointID(videoID string) string {
	deterministic := uuid.NewSHA1(pointIDNamespaceUUID, []byte(s.cfg.Collection+"|"+videoID))
	return deterministic.String()
}

func (s *vectorStore) collectionPath(suffix string) string {
	path := "/collections/" + s.cfg.Collection
	if strings.TrimSpace(suffix) == "" {
		return path
	}
	return path + suffix
}
