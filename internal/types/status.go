package types

// AppConfig is the frontend bootstrap payload.
type AppConfig struct {
	DefaultResults  int             `json:"default_results"`
	Collection      string          `json:"collection"`
	DBCount         int64           `json:"db_count"`
	CollectionEmpty bool            `json:"collection_empty"`
	EmbeddingModel  string          `json:"embedding_model"`
	Rerank          AppConfigRerank `json:"rerank"`
}

type AppConfigRerank struct {
	Enabled bool   `json:"enabled"`
	Model   string `json:"model,omitempty"`
}

type Healthcheck struct {
	Status      string `json:"status"`
	DBCount     int64  `json:"db_count"`
	Collection  string `json:"collection"`
	Model       string `json:"model"`
	ConfigValid bool   `json:"config_valid"`
}
