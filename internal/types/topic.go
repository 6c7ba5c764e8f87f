package types

// TopicSnapshot mirrors the JSON file the external clustering pipeline
// writes. Assignments maps video id to cluster id; cluster id -1 is the
// noise bucket and is never served.
type TopicSnapshot struct {
	TotalVideos int64          `json:"total_videos"`
	GeneratedAt string         `json:"generated_at"`
	Clusters    []TopicCluster `json:"clusters"`
	Assignments map[string]int `json:"assignments"`
}

type TopicCluster struct {
	ID       int      `json:"id"`
	Label    string   `json:"label"`
	Keywords []string `json:"keywords"`
	Size     int      `json:"size"`
}

// TopicEntry is the served form of a cluster.
type TopicEntry struct {
	ID       int      `json:"id"`
	Label    string   `json:"label"`
	Keywords []string `json:"keywords"`
	Count    int      `json:"count"`
}

type TopicsResponse struct {
	Topics      []TopicEntry `json:"topics"`
	TotalVideos int64        `json:"total_videos"`
	GeneratedAt string       `json:"generated_at,omitempty"`
	Stale       bool         `json:"stale"`
}

type TopicVideosResponse struct {
	Topic   TopicEntry    `json:"topic"`
	Results []VideoResult `json:"results"`
	Count   int           `json:"count"`
}
