// Package session wires one live capture together: the STT adapter feeds
// the transcript aggregator, whose output fans out to the in-memory display
// list and, when Kafka is enabled, the event publisher.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"interview-memory-service/internal/events"
	"interview-memory-service/internal/models"
	"interview-memory-service/internal/observability/logging"
	"interview-memory-service/internal/observability/metrics"
	"interview-memory-service/internal/service/detect"
	"interview-memory-service/internal/service/stt"
	"interview-memory-service/internal/service/transcript"
)

// Event types carried on published fragment and annotation events.
const (
	EventTypeFragment   = "interview.transcript.fragment"
	EventTypeAnnotation = "interview.transcript.annotation"
)

// Config holds per-session tuning.
type Config struct {
	SearchLimit int
	MinScore    float64
}

// Session manages one live transcription session from audio intake to
// annotated display fragments.
type Session struct {
	ID string

	adapter stt.Adapter
	handler *transcript.Handler
	display *transcript.Display
	log     zerolog.Logger

	mu        sync.Mutex
	startedAt time.Time
	stopped   bool
}

// New creates a session with a fresh id. A nil publisher skips event
// publishing; fragments still land in the display list.
func New(adapter stt.Adapter, detector detect.Detector, searcher transcript.Searcher, publisher *events.Publisher, cfg Config) *Session {
	id := uuid.New().String()
	display := transcript.NewDisplay()

	var sink transcript.Sink = display
	if publisher != nil {
		sink = NewMultiSink(display, NewEventSink(publisher, id))
	}

	handler := transcript.NewHandler(detector, searcher, sink, transcript.Config{
		SessionID:   id,
		SearchLimit: cfg.SearchLimit,
		MinScore:    cfg.MinScore,
	})

	return &Session{
		ID:      id,
		adapter: adapter,
		handler: handler,
		display: display,
		log:     logging.WithSession(id),
	}
}

// Start begins the streaming transcription session.
func (s *Session) Start(ctx context.Context) error {
	if err := s.adapter.Start(ctx, s.handler); err != nil {
		return err
	}

	s.mu.Lock()
	s.startedAt = time.Now()
	s.mu.Unlock()

	metrics.DefaultMetrics.SessionsTotal.Inc()
	metrics.DefaultMetrics.SessionsActive.Inc()
	s.log.Info().Msg("Session started")
	return nil
}

// SendAudio forwards audio bytes to the STT adapter.
func (s *Session) SendAudio(ctx context.Context, audio []byte) error {
	return s.adapter.SendAudio(ctx, audio)
}

// Stop closes the STT adapter and waits for in-flight classification and
// search work to settle, so the display holds every annotation that will
// ever arrive. Safe to call more than once.
func (s *Session) Stop() error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	started := s.startedAt
	s.mu.Unlock()

	err := s.adapter.Close()
	s.handler.Wait()

	metrics.DefaultMetrics.SessionsActive.Dec()
	s.log.Info().
		Dur("duration", time.Since(started)).
		Err(err).
		Msg("Session stopped")
	return err
}

// Fragments returns the displayed fragments in arrival order, with any
// annotations applied so far.
func (s *Session) Fragments() []models.Fragment {
	return s.display.Fragments()
}

// Display returns the session's display sink.
func (s *Session) Display() *transcript.Display {
	return s.display
}

// EventSink publishes aggregator output as Kafka events.
type EventSink struct {
	publisher *events.Publisher
	sessionID string
	log       zerolog.Logger
}

// NewEventSink creates a sink that publishes fragments and annotations for
// the given session.
func NewEventSink(publisher *events.Publisher, sessionID string) *EventSink {
	return &EventSink{
		publisher: publisher,
		sessionID: sessionID,
		log:       logging.WithSession(sessionID),
	}
}

// Emit publishes a fragment event keyed by session id.
func (s *EventSink) Emit(frag models.Fragment) {
	ev := models.FragmentEvent{
		EventType: EventTypeFragment,
		SessionID: s.sessionID,
		Fragment:  frag,
	}
	if err := s.publisher.PublishFragment(context.Background(), s.sessionID, ev); err != nil {
		s.log.Warn().Err(err).Str("groupId", frag.GroupID).Msg("Failed to publish fragment event")
	}
}

// Annotate publishes an annotation event keyed by session id.
func (s *EventSink) Annotate(groupId string, isQuestion bool, results []models.SearchResult) {
	ev := models.AnnotationEvent{
		EventType:  EventTypeAnnotation,
		SessionID:  s.sessionID,
		GroupID:    groupId,
		IsQuestion: isQuestion,
		Results:    results,
		Timestamp:  time.Now().UnixMilli(),
	}
	if err := s.publisher.PublishAnnotation(context.Background(), s.sessionID, ev); err != nil {
		s.log.Warn().Err(err).Str("groupId", groupId).Msg("Failed to publish annotation event")
	}
}

// MultiSink fans aggregator output out to several sinks in order.
type MultiSink struct {
	sinks []transcript.Sink
}

// NewMultiSink creates a sink that forwards to each given sink in turn.
func NewMultiSink(sinks ...transcript.Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (m *MultiSink) Emit(frag models.Fragment) {
	for _, s := range m.sinks {
		s.Emit(frag)
	}
}

func (m *MultiSink) Annotate(groupId string, isQuestion bool, results []models.SearchResult) {
	for _, s := range m.sinks {
		s.Annotate(groupId, isQuestion, results)
	}
}
