package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// RerankStage identifies which half of a rerank call failed, so callers
// can report the model being unreachable separately from the model
// returning output that does not parse.
type RerankStage string

const (
	RerankStageGenerate RerankStage = "generate"
	RerankStageParse    RerankStage = "parse"
)

type RerankError struct {
	Stage RerankStage
	Cause error
}

func (e *RerankError) Error() string {
	if e == nil {
		return "rerank failed"
	}
	return fmt.Sprintf("rerank %s failed: %v", e.Stage, e.Cause)
}

func (e *RerankError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// RerankCandidate is the slice of a search hit the model sees. Titles
// and channel names are enough signal; documents would blow the prompt
// up for no gain.
type RerankCandidate struct {
	ID      string
	Title   string
	Channel string
}

// RankedItem is one entry of the model's ordering. Score is optional;
// the model may rank without scoring.
type RankedItem struct {
	ID    string
	Score *float64
}

type Reranker interface {
	Rerank(ctx context.Context, query string, candidates []RerankCandidate) ([]RankedItem, error)
	ModelName() string
}

type reranker struct {
	client *Client
	model  string
}

func NewReranker(client *Client, model string) (Reranker, error) {
	if client == nil {
		return nil, fmt.Errorf("gemini client is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("rerank model is required")
	}
	return &reranker{
		client: client,
		model:  model,
	}, nil
}

func (r *reranker) Rerank(ctx context.Context, query string, candidates []RerankCandidate) ([]RankedItem, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	prompt := buildRerankPrompt(query, candidates)
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}
	resp, err := r.client.genai.Models.GenerateContent(ctx,
		r.model,
		contents,
		&genai.GenerateContentConfig{
			Temperature:      genai.Ptr[float32](0),
			ResponseMIMEType: "application/json",
			ResponseSchema:   rankingSchema(),
		},
	)
	if err != nil {
		return nil, &RerankError{Stage: RerankStageGenerate, Cause: err}
	}

	ranked, err := parseRankingOutput(resp.Text())
	if err != nil {
		r.client.log.Warn("rerank output did not parse",
			"model", r.model,
			"error", err,
		)
		return nil, &RerankError{Stage: RerankStageParse, Cause: err}
	}
	return ranked, nil
}

func (r *reranker) ModelName() string {
	return r.model
}

// rankingSchema constrains the model to {"ranked": [{"id": ..., "score": ...}]}.
func rankingSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"ranked": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"id":    {Type: genai.TypeString},
						"score": {Type: genai.TypeNumber},
					},
					Required: []string{"id"},
				},
			},
		},
		Required: []string{"ranked"},
	}
}

func buildRerankPrompt(query string, candidates []RerankCandidate) string {
	var b strings.Builder
	b.WriteString("You rank saved videos by how well they match a search query.\n")
	b.WriteString("Query: ")
	b.WriteString(query)
	b.WriteString("\n\nCandidates:\n")
	for i, c := range candidates {
		fmt.Fprintf(&b, "%d. id=%s title=%q channel=%q\n", i+1, c.ID, c.Title, c.Channel)
	}
	b.WriteString("\nReturn every candidate id ordered from best match to worst. ")
	b.WriteString("Optionally attach a relevance score between 0 and 1 to each id.")
	return b.String()
}

type rankingOutput struct {
	Ranked []struct {
		ID    string   `json:"id"`
		Score *float64 `json:"score"`
	} `json:"ranked"`
}

func parseRankingOutput(text string) ([]RankedItem, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, fmt.Errorf("empty response")
	}

	var out rankingOutput
	if err := json.Unmarshal([]byte(trimmed), &out); err != nil {
		return nil, fmt.Errorf("decode ranking json: %w", err)
	}
	if len(out.Ranked) == 0 {
		return nil, fmt.Errorf("ranking json has no entries")
	}

	seen := make(map[string]bool, len(out.Ranked))
	items := make([]RankedItem, 0, len(out.Ranked))
	for _, entry := range out.Ranked {
		id := strings.TrimSpace(entry.ID)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		items = append(items, RankedItem{ID: id, Score: entry.Score})
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("ranking json has no usable ids")
	}
	return items, nil
}
