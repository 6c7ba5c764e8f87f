// Package vectordb defines the read-mostly contract between the application
// and the external vector database that holds the Watch Later collection.
// Vectors and their metadata payloads are produced by an external ingestion
// pipeline; this app only queries them.
package vectordb

import "context"

// Record is one stored video: its ID, the metadata payload written at
// ingestion time, and the document text that was embedded.
type Record struct {
	ID       string
	Payload  map[string]any
	Document string
}

// Match is a Record with a similarity score (higher is better).
type Match struct {
	Record
	Score float64
}

type Store interface {
	// QueryMatches runs a top-K similarity search and returns matches with
	// payloads and document text, ordered by descending score.
	QueryMatches(ctx context.Context, q []float32, topK int, filter map[string]any) ([]Match, error)

	// FilterRecords returns up to limit records whose payload fields equal
	// the given filter values (no vector involved).
	FilterRecords(ctx context.Context, filter map[string]any, limit int) ([]Record, error)

	// AllRecords pages through the whole collection and returns every record.
	AllRecords(ctx context.Context, batchSize int) ([]Record, error)

	// Fetch returns the records for the given video IDs; unknown IDs are
	// silently skipped.
	Fetch(ctx context.Context, ids []string) ([]Record, error)

	// Count returns the number of stored vectors.
	Count(ctx context.Context) (int64, error)

	// DeleteIDs removes the given video IDs from the collection.
	DeleteIDs(ctx context.Context, ids []string) error
}
