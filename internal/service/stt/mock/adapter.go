// Package mock provides a mock STT adapter for testing without cloud
// credentials. It simulates realistic speech-to-text behavior with
// progressive partial transcripts and finals that arrive in sentence pieces,
// the way a live interview transcript does.
package mock

import (
	"context"
	"sync"

	"interview-memory-service/internal/service/stt"
)

// SimulatedUtterance represents a mock utterance with progressive transcripts.
type SimulatedUtterance struct {
	Partials   []string // Progressive partial transcripts
	Finals     []string // Final transcript pieces, delivered in order
	Confidence float64  // Confidence score for finals
}

// DefaultUtterances provides interview-style sample utterances.
var DefaultUtterances = []SimulatedUtterance{
	{
		Partials:   []string{"Tell me", "Tell me about your"},
		Finals:     []string{"Tell ", "me about ", "your experience."},
		Confidence: 0.94,
	},
	{
		Partials:   []string{"What are", "What are your greatest"},
		Finals:     []string{"What are your ", "greatest weaknesses?"},
		Confidence: 0.91,
	},
	{
		Partials:   []string{"That sounds"},
		Finals:     []string{"That sounds great, ", "thanks for sharing."},
		Confidence: 0.97,
	},
	{
		Partials:   []string{"Walk me", "Walk me through a"},
		Finals:     []string{"Walk me through ", "a challenge ", "you faced recently."},
		Confidence: 0.89,
	},
}

// Adapter implements stt.Adapter with mock responses.
// Each SendAudio call advances the simulation: first through the partial
// transcripts, then through the final pieces one at a time.
type Adapter struct {
	cb            stt.Callback
	mu            sync.Mutex
	audioReceived int
	utterance     SimulatedUtterance
	partialIndex  int
	finalIndex    int
	closed        bool
}

// utteranceCounter tracks which utterance to use next (cycles through defaults)
var (
	utteranceCounter int
	counterMu        sync.Mutex
)

// New creates a new mock STT adapter.
func New() *Adapter {
	counterMu.Lock()
	idx := utteranceCounter % len(DefaultUtterances)
	utteranceCounter++
	counterMu.Unlock()

	return &Adapter{
		utterance: DefaultUtterances[idx],
	}
}

// NewWithUtterance creates a mock adapter that replays a specific utterance.
func NewWithUtterance(u SimulatedUtterance) *Adapter {
	return &Adapter{utterance: u}
}

// Start begins a mock transcription session.
func (a *Adapter) Start(ctx context.Context, cb stt.Callback) error {
	a.cb = cb
	return nil
}

// SendAudio simulates receiving audio. Each call emits the next partial
// transcript; once partials are exhausted, each call emits the next final
// piece. After the last final piece the adapter goes quiet.
func (a *Adapter) SendAudio(ctx context.Context, audio []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed || a.cb == nil {
		return nil
	}

	a.audioReceived++

	if a.partialIndex < len(a.utterance.Partials) {
		text := a.utterance.Partials[a.partialIndex]
		a.partialIndex++
		a.cb.OnPartial(text)
		return nil
	}

	if a.finalIndex < len(a.utterance.Finals) {
		text := a.utterance.Finals[a.finalIndex]
		a.finalIndex++
		a.cb.OnFinal(text, a.utterance.Confidence)
	}
	return nil
}

// Drain emits all remaining transcript pieces immediately. Useful for
// clients that want the full utterance without pacing audio frames.
func (a *Adapter) Drain() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed || a.cb == nil {
		return
	}
	for ; a.partialIndex < len(a.utterance.Partials); a.partialIndex++ {
		a.cb.OnPartial(a.utterance.Partials[a.partialIndex])
	}
	for ; a.finalIndex < len(a.utterance.Finals); a.finalIndex++ {
		a.cb.OnFinal(a.utterance.Finals[a.finalIndex], a.utterance.Confidence)
	}
}

// Close ends the mock session.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	return nil
}

// AudioReceived returns how many audio frames have been received.
func (a *Adapter) AudioReceived() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.audioReceived
}
