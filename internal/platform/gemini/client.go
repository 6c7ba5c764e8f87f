package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/watchlater-dev/watchlater/internal/platform/logger"
)

// Client wraps a single genai client shared by the embedder and the reranker.
type Client struct {
	log   *logger.Logger
	genai *genai.Client
}

func NewClient(ctx context.Context, log *logger.Logger, apiKey string) (*Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Client{
		log:   log.With("platform", "gemini"),
		genai: c,
	}, nil
}
