package transcript

import (
	"context"
	"errors"
	"sync"
	"testing"

	"interview-memory-service/internal/models"
)

// countingDetector records classify calls and returns a fixed verdict.
type countingDetector struct {
	mu      sync.Mutex
	queries []string
	verdict bool
	err     error
}

func (d *countingDetector) Classify(_ context.Context, text string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.queries = append(d.queries, text)
	return d.verdict, d.err
}

func (d *countingDetector) calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.queries...)
}

// fakeSearcher returns canned results and records queries.
type fakeSearcher struct {
	mu      sync.Mutex
	queries []string
	results []models.SearchResult
	err     error
}

func (s *fakeSearcher) Search(_ context.Context, query string, _ int) ([]models.SearchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, query)
	return s.results, s.err
}

func newTestHandler(d *countingDetector, s *fakeSearcher, minScore float64) (*Handler, *Display) {
	display := NewDisplay()
	h := NewHandler(d, s, display, Config{
		SessionID:   "sess-1",
		SearchLimit: 5,
		MinScore:    minScore,
	})
	return h, display
}

func TestHandler_GroupsFragmentsUntilPunctuation(t *testing.T) {
	det := &countingDetector{verdict: false}
	h, display := newTestHandler(det, &fakeSearcher{}, 0.5)

	h.OnFinal("Tell ", 0.9)
	h.OnFinal("me about ", 0.9)
	h.OnFinal("your experience.", 0.9)
	h.Wait()

	frags := display.Fragments()
	if len(frags) != 3 {
		t.Fatalf("expected 3 displayed fragments, got %d", len(frags))
	}

	groupId := frags[0].GroupID
	if groupId == "" {
		t.Fatal("expected a group id on the first fragment")
	}
	for i, f := range frags {
		if f.GroupID != groupId {
			t.Errorf("fragment %d: group id %v, want %v", i, f.GroupID, groupId)
		}
	}

	calls := det.calls()
	if len(calls) != 1 {
		t.Fatalf("expected exactly 1 classification call, got %d", len(calls))
	}
	if calls[0] != "Tell me about your experience." {
		t.Errorf("expected classification of concatenated text, got %q", calls[0])
	}
}

func TestHandler_PunctuationOpensFreshGroup(t *testing.T) {
	det := &countingDetector{verdict: false}
	h, display := newTestHandler(det, &fakeSearcher{}, 0.5)

	h.OnFinal("First sentence.", 0.9)
	h.OnFinal("Second ", 0.9)
	h.OnFinal("sentence.", 0.9)
	h.Wait()

	frags := display.Fragments()
	if len(frags) != 3 {
		t.Fatalf("expected 3 fragments, got %d", len(frags))
	}
	if frags[0].GroupID == frags[1].GroupID {
		t.Error("expected a new group after punctuation closed the first")
	}
	if frags[1].GroupID != frags[2].GroupID {
		t.Error("expected fragments of the second sentence to share a group")
	}

	calls := det.calls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 classification calls, got %d", len(calls))
	}
	if calls[1] != "Second sentence." {
		t.Errorf("expected buffer reset between groups, got %q", calls[1])
	}
}

func TestHandler_QuestionGroupAnnotatedWithFilteredResults(t *testing.T) {
	det := &countingDetector{verdict: true}
	searcher := &fakeSearcher{results: []models.SearchResult{
		{Description: "a", Score: 0.9},
		{Description: "b", Score: 0.6},
		{Description: "c", Score: 0.3},
	}}
	h, display := newTestHandler(det, searcher, 0.5)

	h.OnFinal("Tell me about your experience.", 0.9)
	h.Wait()

	frags := display.Fragments()
	if len(frags) != 1 {
		t.Fatalf("expected 1 fragment, got %d", len(frags))
	}
	if !frags[0].IsQuestion {
		t.Error("expected fragment flagged as question")
	}
	if len(frags[0].Results) != 2 {
		t.Fatalf("expected 2 results above threshold, got %d", len(frags[0].Results))
	}
	if frags[0].Results[0].Score != 0.9 || frags[0].Results[1].Score != 0.6 {
		t.Errorf("expected scores [0.9 0.6], got %+v", frags[0].Results)
	}
}

func TestHandler_AnnotationAppliedToWholeGroup(t *testing.T) {
	det := &countingDetector{verdict: true}
	searcher := &fakeSearcher{results: []models.SearchResult{{Description: "hit", Score: 0.8}}}
	h, display := newTestHandler(det, searcher, 0.5)

	h.OnFinal("What are ", 0.9)
	h.OnFinal("your weaknesses?", 0.9)
	h.Wait()

	for i, f := range display.Fragments() {
		if !f.IsQuestion {
			t.Errorf("fragment %d: expected isQuestion", i)
		}
		if len(f.Results) != 1 {
			t.Errorf("fragment %d: expected results attached", i)
		}
	}
}

func TestHandler_NonQuestionGroupNotAnnotated(t *testing.T) {
	det := &countingDetector{verdict: false}
	searcher := &fakeSearcher{results: []models.SearchResult{{Score: 0.99}}}
	h, display := newTestHandler(det, searcher, 0.5)

	h.OnFinal("The weather is nice today.", 0.9)
	h.Wait()

	frags := display.Fragments()
	if frags[0].IsQuestion {
		t.Error("expected non-question to stay unflagged")
	}
	if len(searcher.queries) != 0 {
		t.Error("expected no search for a non-question group")
	}
}

func TestHandler_SearchFailureDegradesToEmptyResults(t *testing.T) {
	det := &countingDetector{verdict: true}
	searcher := &fakeSearcher{err: errors.New("datastore down")}
	h, display := newTestHandler(det, searcher, 0.5)

	h.OnFinal("Tell me about your experience.", 0.9)
	h.Wait()

	frags := display.Fragments()
	if !frags[0].IsQuestion {
		t.Error("expected question flag despite search failure")
	}
	if len(frags[0].Results) != 0 {
		t.Errorf("expected empty results on search failure, got %+v", frags[0].Results)
	}
}

func TestHandler_PartialsEmittedButNotAccumulated(t *testing.T) {
	det := &countingDetector{verdict: false}
	h, display := newTestHandler(det, &fakeSearcher{}, 0.5)

	h.OnPartial("Tell me")
	h.OnPartial("Tell me about")
	h.OnFinal("Tell me about your experience.", 0.9)
	h.Wait()

	frags := display.Fragments()
	if len(frags) != 3 {
		t.Fatalf("expected 3 fragments (2 interim + 1 final), got %d", len(frags))
	}
	if frags[0].IsFinal || frags[1].IsFinal || !frags[2].IsFinal {
		t.Error("expected two interim fragments followed by a final")
	}
	// Interim fragments share the group the final closes.
	if frags[0].GroupID != frags[2].GroupID {
		t.Error("expected interim fragments to join the open group")
	}

	calls := det.calls()
	if len(calls) != 1 || calls[0] != "Tell me about your experience." {
		t.Errorf("expected buffer built from finals only, got %v", calls)
	}
}

func TestHandler_OnErrorDropsOpenGroup(t *testing.T) {
	det := &countingDetector{verdict: true}
	h, display := newTestHandler(det, &fakeSearcher{}, 0.5)

	h.OnFinal("Tell me ", 0.9)
	h.OnError(errors.New("stream reset"))
	h.OnFinal("unrelated text.", 0.9)
	h.Wait()

	// The dropped group's text must not leak into the next classification.
	calls := det.calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 classification call, got %d", len(calls))
	}
	if calls[0] != "unrelated text." {
		t.Errorf("expected dropped buffer discarded, got %q", calls[0])
	}

	frags := display.Fragments()
	if frags[0].GroupID == frags[1].GroupID {
		t.Error("expected a fresh group after the dropped one")
	}
}

func TestHandler_SequenceNumbersAreArrivalOrder(t *testing.T) {
	det := &countingDetector{verdict: false}
	h, display := newTestHandler(det, &fakeSearcher{}, 0.5)

	h.OnFinal("One.", 0.9)
	h.OnFinal("Two.", 0.9)
	h.OnFinal("Three.", 0.9)
	h.Wait()

	frags := display.Fragments()
	for i, f := range frags {
		if f.ID != int64(i+1) {
			t.Errorf("fragment %d: id %d, want %d", i, f.ID, i+1)
		}
	}
}

func TestDisplay_LateAnnotationAfterResetIsDropped(t *testing.T) {
	display := NewDisplay()
	display.Emit(models.Fragment{ID: 1, GroupID: "sess-1-grp-1"})

	display.Reset()
	display.Annotate("sess-1-grp-1", true, []models.SearchResult{{Score: 0.9}})

	if got := display.Fragments(); len(got) != 0 {
		t.Errorf("expected empty display after reset, got %+v", got)
	}
}
