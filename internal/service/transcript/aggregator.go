package transcript

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"interview-memory-service/internal/models"
	"interview-memory-service/internal/observability/logging"
	"interview-memory-service/internal/observability/metrics"
	"interview-memory-service/internal/service/detect"
)

// Searcher runs a memory lookup for a classified question.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]models.SearchResult, error)
}

// Sink receives emitted fragments and, later, group annotations.
// Emit is always called before any Annotate for the same group.
type Sink interface {
	// Emit delivers a fragment for display, in arrival order.
	Emit(frag models.Fragment)

	// Annotate attaches the classification outcome and search results to
	// every fragment sharing groupId.
	Annotate(groupId string, isQuestion bool, results []models.SearchResult)
}

// Config holds aggregator tuning.
type Config struct {
	SessionID   string
	SearchLimit int     // results requested per question
	MinScore    float64 // minimum similarity score retained
}

// Handler accumulates streamed transcript fragments into sentence-level
// question groups. It implements stt.Callback: final transcripts join the
// group buffer; interim transcripts are emitted for display only. When a
// final fragment carries sentence-ending punctuation the accumulated text
// is classified asynchronously, and question groups get their memory
// search results attached to every fragment in the group.
//
// Fragment emission is never blocked on classification: the annotation may
// arrive after newer fragments have already been emitted.
type Handler struct {
	detector  detect.Detector
	searcher  Searcher
	sink      Sink
	groups    *Generator
	lifecycle *Lifecycle
	cfg       Config
	log       zerolog.Logger

	mu     sync.Mutex
	seq    int64
	buffer strings.Builder

	pending sync.WaitGroup
}

// NewHandler creates an aggregator for one live session.
func NewHandler(detector detect.Detector, searcher Searcher, sink Sink, cfg Config) *Handler {
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = 5
	}
	return &Handler{
		detector:  detector,
		searcher:  searcher,
		sink:      sink,
		groups:    NewGenerator(),
		lifecycle: NewLifecycle(),
		cfg:       cfg,
		log:       logging.WithSession(cfg.SessionID),
	}
}

// --- stt.Callback implementation ---

// OnPartial emits an interim fragment for display. Interim text is not
// appended to the classification buffer; the provider re-sends a growing
// prefix that the matching final transcript supersedes.
func (h *Handler) OnPartial(text string) {
	h.mu.Lock()
	frag := h.newFragment(text, false)
	h.mu.Unlock()

	h.sink.Emit(frag)
	metrics.DefaultMetrics.FragmentsEmitted.WithLabelValues("false").Inc()
}

// OnFinal appends a final fragment to the current group, emits it, and
// closes the group when sentence-ending punctuation appears.
func (h *Handler) OnFinal(text string, confidence float64) {
	h.mu.Lock()
	frag := h.newFragment(text, true)
	h.buffer.WriteString(text)

	var closedGroup, closedText string
	if containsSentenceEnd(text) {
		closedGroup = frag.GroupID
		closedText = h.buffer.String()
		h.buffer.Reset()
		h.lifecycle.Close()
		metrics.DefaultMetrics.GroupsClosed.Inc()
	}
	h.mu.Unlock()

	// Display emission strictly precedes the annotation update.
	h.sink.Emit(frag)
	metrics.DefaultMetrics.FragmentsEmitted.WithLabelValues("true").Inc()

	if closedGroup != "" {
		h.classifyGroup(closedGroup, closedText)
	}
}

// OnError drops the open group. The accumulated text may be incomplete, so
// no classification is attempted for it.
func (h *Handler) OnError(err error) {
	h.mu.Lock()
	groupId := h.lifecycle.GroupId()
	dropped := h.lifecycle.Drop()
	h.buffer.Reset()
	h.mu.Unlock()

	if dropped {
		metrics.DefaultMetrics.GroupsDropped.WithLabelValues("stt_error").Inc()
	}
	h.log.Warn().Err(err).
		Str("groupId", groupId).
		Bool("dropped", dropped).
		Msg("STT error, open group abandoned")
}

// Wait blocks until all in-flight classification and search work has
// settled. Call during teardown or from tests.
func (h *Handler) Wait() {
	h.pending.Wait()
}

// newFragment assigns the next sequence number and the current group id,
// opening a new group if none is open. Caller holds h.mu.
func (h *Handler) newFragment(text string, isFinal bool) models.Fragment {
	if !h.lifecycle.IsOpen() {
		groupId := h.groups.Next(h.cfg.SessionID)
		if err := h.lifecycle.Open(groupId); err != nil {
			// Open only fails when a group is already open, which IsOpen
			// just excluded under h.mu.
			h.log.Error().Err(err).Msg("group open failed")
		}
		metrics.DefaultMetrics.GroupsOpened.Inc()
	}

	h.seq++
	return models.Fragment{
		ID:        h.seq,
		Text:      text,
		IsFinal:   isFinal,
		GroupID:   h.lifecycle.GroupId(),
		Timestamp: time.Now().UnixMilli(),
	}
}

// classifyGroup runs detection and, for questions, the memory search, then
// annotates the closed group. Runs asynchronously; a stopped session's
// sink decides what to do with late annotations.
func (h *Handler) classifyGroup(groupId, text string) {
	h.pending.Add(1)
	go func() {
		defer h.pending.Done()
		ctx := context.Background()

		isQuestion, err := h.detector.Classify(ctx, text)
		if err != nil {
			h.log.Warn().Err(err).
				Str("groupId", groupId).
				Msg("Classification failed, treating group as non-question")
			return
		}
		if !isQuestion {
			return
		}

		results, err := h.searcher.Search(ctx, text, h.cfg.SearchLimit)
		if err != nil {
			// Degrade to an empty result set; the question flag still lands.
			h.log.Warn().Err(err).
				Str("groupId", groupId).
				Msg("Memory search failed for question group")
			results = nil
		}

		filtered := FilterByScore(results, h.cfg.MinScore)
		h.log.Debug().
			Str("groupId", groupId).
			Int("results", len(filtered)).
			Msg("Question group annotated")
		h.sink.Annotate(groupId, true, filtered)
	}()
}

func containsSentenceEnd(text string) bool {
	return strings.ContainsAny(text, ".?!")
}

// FilterByScore retains the results whose score meets the minimum, keeping
// the original order.
func FilterByScore(results []models.SearchResult, min float64) []models.SearchResult {
	filtered := make([]models.SearchResult, 0, len(results))
	for _, r := range results {
		if r.Score >= min {
			filtered = append(filtered, r)
		}
	}
	return filtered
}
