// Package store persists memories and runs vector similarity searches.
package store

import (
	"context"

	"interview-memory-service/internal/models"
)

// Store defines the interface for memory persistence and retrieval.
type Store interface {
	// Insert appends a memory record. No uniqueness constraint, no
	// deduplication, no update path.
	Insert(ctx context.Context, memory models.Memory) error

	// VectorSearch returns the top limit stored memories nearest to vector,
	// scanning numCandidates candidates, ordered by descending similarity.
	VectorSearch(ctx context.Context, vector []float32, limit, numCandidates int) ([]models.SearchResult, error)
}
