// Package service implements the memory ingestion and search operations.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"interview-memory-service/internal/memory/store"
	"interview-memory-service/internal/models"
	"interview-memory-service/internal/observability/logging"
	"interview-memory-service/internal/observability/metrics"
	"interview-memory-service/internal/service/embed"
)

// Validation errors for save-memory requests. Reported to the caller with a
// 4xx status; the embedding service is never contacted for invalid input.
var (
	ErrMissingClassification = errors.New("memory.classification is required")
	ErrMissingDescription    = errors.New("memory.description is required")
	ErrMissingSourceFile     = errors.New("sourceFile is required")
	ErrEmptyQuery            = errors.New("query is required")
)

// Service wires the embedder and the datastore into the save/search
// operations. Construct once at process start and thread through calls.
type Service struct {
	embedder      embed.Embedder
	store         store.Store
	defaultLimit  int
	numCandidates int
	log           zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithDefaultLimit sets the result count used when a search request omits
// its limit.
func WithDefaultLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.defaultLimit = n
		}
	}
}

// WithNumCandidates sets the fixed oversampling factor for vector search.
func WithNumCandidates(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.numCandidates = n
		}
	}
}

// New creates a memory service.
func New(embedder embed.Embedder, st store.Store, opts ...Option) *Service {
	s := &Service{
		embedder:      embedder,
		store:         st,
		defaultLimit:  5,
		numCandidates: 50,
		log:           logging.WithComponent("memory"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save validates the request, embeds the note, and appends it to the store
// with a server-assigned creation timestamp.
func (s *Service) Save(ctx context.Context, req models.SaveMemoryRequest) error {
	if err := validateSave(req); err != nil {
		metrics.DefaultMetrics.SaveFailures.WithLabelValues("validation").Inc()
		return err
	}

	vector, err := s.embedder.Embed(ctx, req.Memory.Classification+": "+req.Memory.Description)
	if err != nil {
		metrics.DefaultMetrics.SaveFailures.WithLabelValues("embedding").Inc()
		return fmt.Errorf("embedding memory: %w", err)
	}

	memory := models.Memory{
		Classification: req.Memory.Classification,
		Description:    req.Memory.Description,
		SourceFile:     req.SourceFile,
		Embedding:      vector,
		CreatedAt:      time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.store.Insert(ctx, memory); err != nil {
		metrics.DefaultMetrics.SaveFailures.WithLabelValues("store").Inc()
		return fmt.Errorf("storing memory: %w", err)
	}

	metrics.DefaultMetrics.MemoriesSaved.Inc()
	s.log.Debug().
		Str("classification", memory.Classification).
		Str("sourceFile", memory.SourceFile).
		Msg("Memory saved")
	return nil
}

// Search embeds the query and returns the nearest stored memories, best
// first. Any embedding or datastore failure is surfaced to the caller, who
// is expected to present an empty result set. Best-effort: no retries, no
// timeout beyond the underlying client defaults.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]models.SearchResult, error) {
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 {
		limit = s.defaultLimit
	}

	start := time.Now()
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		metrics.DefaultMetrics.RecordSearch(start, err, "embedding")
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	results, err := s.store.VectorSearch(ctx, vector, limit, s.numCandidates)
	metrics.DefaultMetrics.RecordSearch(start, err, "store")
	if err != nil {
		return nil, fmt.Errorf("searching memories: %w", err)
	}

	s.log.Debug().
		Str("query", query).
		Int("limit", limit).
		Int("results", len(results)).
		Msg("Memory search completed")
	return results, nil
}

func validateSave(req models.SaveMemoryRequest) error {
	if req.Memory.Classification == "" {
		return ErrMissingClassification
	}
	if req.Memory.Description == "" {
		return ErrMissingDescription
	}
	if req.SourceFile == "" {
		return ErrMissingSourceFile
	}
	return nil
}

// IsValidationError reports whether err is a request validation error.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrMissingClassification) ||
		errors.Is(err, ErrMissingDescription) ||
		errors.Is(err, ErrMissingSourceFile) ||
		errors.Is(err, ErrEmptyQuery)
}
