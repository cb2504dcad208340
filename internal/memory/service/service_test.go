package service

import (
	"context"
	"errors"
	"testing"

	"interview-memory-service/internal/models"
)

// fakeEmbedder returns a fixed vector and counts calls.
type fakeEmbedder struct {
	calls  int
	vector []float32
	err    error
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	f.calls++
	return f.vector, f.err
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vector
	}
	return out, f.err
}

// fakeStore records inserts and returns canned search results.
type fakeStore struct {
	inserted      []models.Memory
	results       []models.SearchResult
	insertErr     error
	searchErr     error
	lastLimit     int
	lastCandidate int
}

func (f *fakeStore) Insert(_ context.Context, m models.Memory) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, m)
	return nil
}

func (f *fakeStore) VectorSearch(_ context.Context, _ []float32, limit, numCandidates int) ([]models.SearchResult, error) {
	f.lastLimit = limit
	f.lastCandidate = numCandidates
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.results, nil
}

func saveReq(classification, description, sourceFile string) models.SaveMemoryRequest {
	return models.SaveMemoryRequest{
		Memory:     models.MemoryInput{Classification: classification, Description: description},
		SourceFile: sourceFile,
	}
}

func TestSave_Valid(t *testing.T) {
	emb := &fakeEmbedder{vector: []float32{0.1, 0.2}}
	st := &fakeStore{}
	svc := New(emb, st)

	err := svc.Save(context.Background(), saveReq("skill", "Built a distributed cache", "notes.md"))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if len(st.inserted) != 1 {
		t.Fatalf("expected 1 insert, got %d", len(st.inserted))
	}
	m := st.inserted[0]
	if m.Classification != "skill" || m.Description != "Built a distributed cache" || m.SourceFile != "notes.md" {
		t.Errorf("unexpected stored memory: %+v", m)
	}
	if len(m.Embedding) != 2 {
		t.Errorf("expected embedding attached, got %v", m.Embedding)
	}
	if m.CreatedAt == "" {
		t.Error("expected server-assigned createdAt")
	}
}

func TestSave_ValidationRejectsBeforeEmbedding(t *testing.T) {
	tests := []struct {
		name    string
		req     models.SaveMemoryRequest
		wantErr error
	}{
		{"missing classification", saveReq("", "desc", "f.md"), ErrMissingClassification},
		{"missing description", saveReq("skill", "", "f.md"), ErrMissingDescription},
		{"missing source file", saveReq("skill", "desc", ""), ErrMissingSourceFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emb := &fakeEmbedder{vector: []float32{0.1}}
			st := &fakeStore{}
			svc := New(emb, st)

			err := svc.Save(context.Background(), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Save() = %v, want %v", err, tt.wantErr)
			}
			if emb.calls != 0 {
				t.Errorf("expected no embedding call for invalid request, got %d", emb.calls)
			}
			if len(st.inserted) != 0 {
				t.Errorf("expected no insert for invalid request")
			}
			if !IsValidationError(err) {
				t.Errorf("expected IsValidationError(%v) = true", err)
			}
		})
	}
}

func TestSave_EmbeddingFailureSurfaced(t *testing.T) {
	emb := &fakeEmbedder{err: errors.New("quota exceeded")}
	st := &fakeStore{}
	svc := New(emb, st)

	err := svc.Save(context.Background(), saveReq("skill", "desc", "f.md"))
	if err == nil {
		t.Fatal("expected error")
	}
	if IsValidationError(err) {
		t.Error("embedding failure must not be a validation error")
	}
	if len(st.inserted) != 0 {
		t.Error("expected no insert after embedding failure")
	}
}

func TestSearch_DefaultsAndOversampling(t *testing.T) {
	emb := &fakeEmbedder{vector: []float32{0.5}}
	st := &fakeStore{results: []models.SearchResult{{Score: 0.9}}}
	svc := New(emb, st, WithDefaultLimit(3), WithNumCandidates(50))

	results, err := svc.Search(context.Background(), "distributed systems", 0)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("expected 1 result, got %d", len(results))
	}
	if st.lastLimit != 3 {
		t.Errorf("expected default limit 3, got %d", st.lastLimit)
	}
	if st.lastCandidate != 50 {
		t.Errorf("expected numCandidates 50, got %d", st.lastCandidate)
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	svc := New(&fakeEmbedder{}, &fakeStore{})

	if _, err := svc.Search(context.Background(), "", 5); !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("expected ErrEmptyQuery, got %v", err)
	}
}

func TestSearch_UpstreamFailuresSurfaced(t *testing.T) {
	t.Run("embedding failure", func(t *testing.T) {
		svc := New(&fakeEmbedder{err: errors.New("down")}, &fakeStore{})
		if _, err := svc.Search(context.Background(), "q", 5); err == nil {
			t.Error("expected error from embedding failure")
		}
	})

	t.Run("store failure", func(t *testing.T) {
		svc := New(&fakeEmbedder{vector: []float32{1}}, &fakeStore{searchErr: errors.New("down")})
		if _, err := svc.Search(context.Background(), "q", 5); err == nil {
			t.Error("expected error from store failure")
		}
	})
}

