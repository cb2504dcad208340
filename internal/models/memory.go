package models

// Memory is a stored note with its embedding. Append-only: records are
// never updated or deduplicated after insertion.
type Memory struct {
	Classification string    `bson:"classification" json:"classification"`
	Description    string    `bson:"description" json:"description"`
	SourceFile     string    `bson:"sourceFile" json:"sourceFile"`
	Embedding      []float32 `bson:"embedding" json:"-"`
	CreatedAt      string    `bson:"createdAt" json:"createdAt"` // RFC-3339 UTC
}

// SearchResult is one ranked hit from a vector similarity search.
// Score is in [0,1] under the index's cosine metric. Not persisted.
type SearchResult struct {
	Classification string  `bson:"classification" json:"classification"`
	Description    string  `bson:"description" json:"description"`
	SourceFile     string  `bson:"sourceFile" json:"sourceFile"`
	CreatedAt      string  `bson:"createdAt" json:"createdAt"`
	Score          float64 `bson:"score" json:"score"`
}

// MemoryInput is the caller-supplied part of a save-memory request.
type MemoryInput struct {
	Classification string `json:"classification"`
	Description    string `json:"description"`
}

// SaveMemoryRequest is the body of POST /api/save-memory.
type SaveMemoryRequest struct {
	Memory     MemoryInput `json:"memory"`
	SourceFile string      `json:"sourceFile"`
}

// SearchMemoryRequest is the body of POST /api/search-memory.
type SearchMemoryRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// SaveMemoryResponse is the response of POST /api/save-memory.
type SaveMemoryResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// SearchMemoryResponse is the response of POST /api/search-memory.
type SearchMemoryResponse struct {
	Success bool           `json:"success"`
	Results []SearchResult `json:"results,omitempty"`
	Error   string         `json:"error,omitempty"`
}
