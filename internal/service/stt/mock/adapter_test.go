package mock

import (
	"context"
	"strings"
	"sync"
	"testing"
)

// recordingCallback captures callback invocations for assertions.
type recordingCallback struct {
	mu       sync.Mutex
	partials []string
	finals   []string
	errs     []error
}

func (r *recordingCallback) OnPartial(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.partials = append(r.partials, text)
}

func (r *recordingCallback) OnFinal(text string, confidence float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finals = append(r.finals, text)
}

func (r *recordingCallback) OnError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func TestAdapter_ProgressivePartialsThenFinals(t *testing.T) {
	u := SimulatedUtterance{
		Partials:   []string{"Tell me", "Tell me about"},
		Finals:     []string{"Tell ", "me about ", "your experience."},
		Confidence: 0.9,
	}
	a := NewWithUtterance(u)
	cb := &recordingCallback{}

	if err := a.Start(context.Background(), cb); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// One callback per audio frame: partials first, then final pieces.
	for i := 0; i < len(u.Partials)+len(u.Finals); i++ {
		if err := a.SendAudio(context.Background(), []byte{0}); err != nil {
			t.Fatalf("SendAudio %d failed: %v", i, err)
		}
	}

	if len(cb.partials) != 2 {
		t.Errorf("expected 2 partials, got %d", len(cb.partials))
	}
	if len(cb.finals) != 3 {
		t.Fatalf("expected 3 final pieces, got %d", len(cb.finals))
	}
	if got := strings.Join(cb.finals, ""); got != "Tell me about your experience." {
		t.Errorf("unexpected concatenated finals: %q", got)
	}
}

func TestAdapter_GoesQuietAfterLastFinal(t *testing.T) {
	u := SimulatedUtterance{Finals: []string{"Done."}, Confidence: 1}
	a := NewWithUtterance(u)
	cb := &recordingCallback{}
	a.Start(context.Background(), cb)

	for i := 0; i < 5; i++ {
		a.SendAudio(context.Background(), []byte{0})
	}

	if len(cb.finals) != 1 {
		t.Errorf("expected exactly 1 final, got %d", len(cb.finals))
	}
	if a.AudioReceived() != 5 {
		t.Errorf("expected 5 audio frames counted, got %d", a.AudioReceived())
	}
}

func TestAdapter_Drain(t *testing.T) {
	a := NewWithUtterance(DefaultUtterances[0])
	cb := &recordingCallback{}
	a.Start(context.Background(), cb)

	a.Drain()

	if len(cb.partials) != len(DefaultUtterances[0].Partials) {
		t.Errorf("expected %d partials, got %d", len(DefaultUtterances[0].Partials), len(cb.partials))
	}
	if len(cb.finals) != len(DefaultUtterances[0].Finals) {
		t.Errorf("expected %d finals, got %d", len(DefaultUtterances[0].Finals), len(cb.finals))
	}
}

func TestAdapter_NoCallbacksAfterClose(t *testing.T) {
	a := NewWithUtterance(DefaultUtterances[0])
	cb := &recordingCallback{}
	a.Start(context.Background(), cb)

	if err := a.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	a.SendAudio(context.Background(), []byte{0})
	a.Drain()

	if len(cb.partials) != 0 || len(cb.finals) != 0 {
		t.Errorf("expected no callbacks after close, got %d partials %d finals",
			len(cb.partials), len(cb.finals))
	}
}

func TestAdapter_SendBeforeStartIsNoop(t *testing.T) {
	a := New()
	if err := a.SendAudio(context.Background(), []byte{0}); err != nil {
		t.Errorf("expected nil error before Start, got %v", err)
	}
}
