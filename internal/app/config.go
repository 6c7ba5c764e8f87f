package app

import (
	"strings"

	"github.com/watchlater-dev/watchlater/internal/platform/envutil"
	"github.com/watchlater-dev/watchlater/internal/platform/logger"
)

type Config struct {
	Port         string
	AllowOrigins []string

	DefaultResults int

	GeminiAPIKey   string
	EmbeddingModel string

	RerankEnabled    bool
	RerankModel      string
	RerankCandidates int

	TopicSnapshotPath string
}

func LoadConfig(log *logger.Logger) Config {
	origins := []string{}
	for _, o := range strings.Split(envutil.GetEnv("ALLOW_ORIGINS", "", log), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			origins = append(origins, o)
		}
	}

	return Config{
		Port:              envutil.GetEnv("PORT", "8080", log),
		AllowOrigins:      origins,
		DefaultResults:    envutil.GetEnvAsInt("DEFAULT_SEARCH_RESULTS", 20, log),
		GeminiAPIKey:      envutil.GetEnv("GEMINI_API_KEY", "", log),
		EmbeddingModel:    envutil.GetEnv("EMBEDDING_MODEL", "gemini-embedding-001", log),
		RerankEnabled:     envutil.GetEnvAsBool("ENABLE_LLM_RERANK", false, log),
		RerankModel:       envutil.GetEnv("RERANK_MODEL", "gemini-2.5-flash", log),
		RerankCandidates:  envutil.GetEnvAsInt("RERANK_CANDIDATES", 30, log),
		TopicSnapshotPath: envutil.GetEnv("TOPIC_SNAPSHOT_PATH", "data/topic_clusters.json", log),
	}
}

// Valid reports whether search can work at all: without a Gemini key
// queries cannot be embedded.
func (c Config) Valid() bool {
	return strings.TrimSpace(c.GeminiAPIKey) != ""
}
