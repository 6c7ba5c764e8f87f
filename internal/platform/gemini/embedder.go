package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Embedder turns a search query into a vector in the same space the
// stored video embeddings were generated in.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	ModelName() string
}

type embedder struct {
	client *Client
	model  string
}

func NewEmbedder(client *Client, model string) (Embedder, error) {
	if client == nil {
		return nil, fmt.Errorf("gemini client is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("embedding model is required")
	}
	return &embedder{
		client: client,
		model:  model,
	}, nil
}

func (e *embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("embed query: text is empty")
	}

	contents := []*genai.Content{
		genai.NewContentFromText(text, genai.RoleUser),
	}
	result, err := e.client.genai.Models.EmbedContent(ctx,
		e.model,
		contents,
		&genai.EmbedContentConfig{
			TaskType: "RETRIEVAL_QUERY",
		},
	)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("embed query: no embedding returned")
	}
	return result.Embeddings[0].Values, nil
}

func (e *embedder) ModelName() string {
	return e.model
}
