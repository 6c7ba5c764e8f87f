package types

// VideoResult is the wire shape shared by search hits, channel listings
// and topic members. OriginalRank and RerankPosition are 1-based and only
// populated on search results; LLMScore only when the reranker scored
// the video.
type VideoResult struct {
	ID               string         `json:"id"`
	Title            string         `json:"title"`
	Channel          string         `json:"channel"`
	ChannelID        string         `json:"channel_id"`
	URL              string         `json:"url"`
	Score            float64        `json:"score"`
	Thumbnail        string         `json:"thumbnail"`
	ChannelThumbnail string         `json:"channel_thumbnail"`
	Tags             string         `json:"tags"`
	Document         string         `json:"document"`
	Metadata         map[string]any `json:"metadata"`
	OriginalRank     int            `json:"original_rank,omitempty"`
	RerankPosition   int            `json:"rerank_position,omitempty"`
	LLMScore         *float64       `json:"llm_score,omitempty"`
}

// RerankInfo reports what the optional LLM rerank pass did to a result
// set. Reason is one of not_run, llm_error, parse_failed, success.
type RerankInfo struct {
	Enabled        bool   `json:"enabled"`
	Applied        bool   `json:"applied"`
	Model          string `json:"model,omitempty"`
	LatencyMS      int64  `json:"latency_ms"`
	Reason         string `json:"reason,omitempty"`
	CandidateCount int    `json:"candidate_count,omitempty"`
}

type SearchResponse struct {
	Results []VideoResult `json:"results"`
	Count   int           `json:"count"`
	Rerank  *RerankInfo   `json:"rerank,omitempty"`
	Message string        `json:"message,omitempty"`
}

type ChannelVideosResponse struct {
	Results []VideoResult `json:"results"`
	Count   int           `json:"count"`
	Channel string        `json:"channel"`
}
