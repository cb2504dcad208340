// Package detect classifies transcript text as interview questions.
// Two interchangeable strategies are provided: deterministic keyword
// matching and an LLM-based semantic classifier with a bounded cache.
package detect

import (
	"context"
	"fmt"
	"strings"

	"interview-memory-service/internal/config"
	"interview-memory-service/internal/observability/metrics"
)

// Detector classifies a text fragment as an interview question.
type Detector interface {
	// Classify returns true if text reads like an interview question or
	// conversation point worth looking up memories for.
	Classify(ctx context.Context, text string) (bool, error)
}

// triggerPhrases are interview-domain phrases that mark a question even
// without a question mark. Matched case-insensitively as substrings.
var triggerPhrases = []string{
	"tell me about",
	"describe",
	"explain",
	"walk me through",
	"what is",
	"what are",
	"how do",
	"how would",
	"why do",
	"why did",
	"can you",
	"could you",
	"have you ever",
	"experience",
	"strengths",
	"weaknesses",
	"challenge",
}

// Keyword is the deterministic detection strategy. It never errors.
type Keyword struct{}

// NewKeyword creates a keyword detector.
func NewKeyword() *Keyword {
	return &Keyword{}
}

// Classify returns true if text contains a question mark or any trigger phrase.
func (k *Keyword) Classify(_ context.Context, text string) (bool, error) {
	isQuestion := matchKeywords(text)
	metrics.DefaultMetrics.RecordClassification("keyword", isQuestion)
	return isQuestion, nil
}

func matchKeywords(text string) bool {
	if strings.Contains(text, "?") {
		return true
	}
	lower := strings.ToLower(text)
	for _, phrase := range triggerPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// New creates a detector for the configured mode.
func New(ctx context.Context, cfg *config.Configuration) (Detector, error) {
	switch cfg.Detector.Mode {
	case "keyword":
		return NewKeyword(), nil
	case "llm":
		return NewLLM(ctx, cfg.Google, cfg.Detector.CacheSize)
	default:
		return nil, fmt.Errorf("unsupported detector mode: %s", cfg.Detector.Mode)
	}
}
