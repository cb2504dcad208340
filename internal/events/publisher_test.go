package events

import (
	"context"
	"testing"
)

func TestNew_DisabledMode(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
	}{
		{"disabled", &Config{Enabled: false, Brokers: []string{"localhost:9092"}}},
		{"no brokers", &Config{Enabled: true, Brokers: []string{}}},
		{"empty brokers", &Config{Enabled: true, Brokers: nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.cfg)
			if p == nil {
				t.Fatal("expected non-nil publisher")
			}
			if p.enabled {
				t.Error("expected publisher to be disabled")
			}
			if p.writerFragment != nil {
				t.Error("expected nil fragment writer when disabled")
			}
			if p.writerAnnotation != nil {
				t.Error("expected nil annotation writer when disabled")
			}
		})
	}
}

func TestNew_ConfigValues(t *testing.T) {
	cfg := &Config{
		Enabled:         false,
		Brokers:         []string{"localhost:9092"},
		TopicFragment:   "test.fragment",
		TopicAnnotation: "test.annotation",
		Principal:       "test-principal",
	}

	p := New(cfg)

	if p.principal != "test-principal" {
		t.Errorf("expected principal 'test-principal', got %s", p.principal)
	}
	if p.topicFragment != "test.fragment" {
		t.Errorf("expected topic fragment 'test.fragment', got %s", p.topicFragment)
	}
	if p.topicAnnotation != "test.annotation" {
		t.Errorf("expected topic annotation 'test.annotation', got %s", p.topicAnnotation)
	}
}

func TestPublisher_PublishFragment_Disabled(t *testing.T) {
	p := New(&Config{Enabled: false})

	event := map[string]string{"text": "test fragment"}
	err := p.PublishFragment(context.Background(), "test-key", event)

	if err != nil {
		t.Errorf("expected no error when disabled, got %v", err)
	}
}

func TestPublisher_PublishAnnotation_Disabled(t *testing.T) {
	p := New(&Config{Enabled: false})

	event := map[string]any{"groupId": "grp-1", "isQuestion": true}
	err := p.PublishAnnotation(context.Background(), "test-key", event)

	if err != nil {
		t.Errorf("expected no error when disabled, got %v", err)
	}
}

func TestPublisher_PublishFragment_InvalidJSON(t *testing.T) {
	p := New(&Config{Enabled: false})

	// Create an unmarshalable value (channel)
	event := make(chan int)
	err := p.PublishFragment(context.Background(), "test-key", event)

	if err == nil {
		t.Error("expected error for unmarshalable event")
	}
}

func TestPublisher_PublishAnnotation_InvalidJSON(t *testing.T) {
	p := New(&Config{Enabled: false})

	// Create an unmarshalable value (channel)
	event := make(chan int)
	err := p.PublishAnnotation(context.Background(), "test-key", event)

	if err == nil {
		t.Error("expected error for unmarshalable event")
	}
}

func TestPublisher_Close_NoWriters(t *testing.T) {
	p := New(&Config{Enabled: false})

	err := p.Close()
	if err != nil {
		t.Errorf("expected no error closing disabled publisher, got %v", err)
	}
}

func TestPublisher_Close_NilWriters(t *testing.T) {
	p := &Publisher{
		writerFragment:   nil,
		writerAnnotation: nil,
	}

	err := p.Close()
	if err != nil {
		t.Errorf("expected no error closing publisher with nil writers, got %v", err)
	}
}

type testEvent struct {
	EventType string `json:"eventType"`
	SessionID string `json:"sessionId"`
	Text      string `json:"text"`
}

func TestPublisher_PublishFragment_ValidEvent(t *testing.T) {
	p := New(&Config{
		Enabled:       false,
		TopicFragment: "test.fragment",
		Principal:     "test-svc",
	})

	event := testEvent{
		EventType: "interview.transcript.fragment",
		SessionID: "sess-123",
		Text:      "hello world",
	}

	err := p.PublishFragment(context.Background(), "sess-123", event)
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestPublisher_PublishAnnotation_ValidEvent(t *testing.T) {
	p := New(&Config{
		Enabled:         false,
		TopicAnnotation: "test.annotation",
		Principal:       "test-svc",
	})

	event := testEvent{
		EventType: "interview.transcript.annotation",
		SessionID: "sess-123",
		Text:      "tell me about your experience",
	}

	err := p.PublishAnnotation(context.Background(), "sess-123", event)
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}
