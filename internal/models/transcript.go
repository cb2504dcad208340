// Package models defines the data structures for transcript and memory events.
package models

// Fragment represents one incremental piece of transcribed text.
// Text is immutable after creation; IsQuestion and Results are attached
// later, once the fragment's question group has been classified.
type Fragment struct {
	ID         int64          `json:"id"`
	Text       string         `json:"text"`
	IsFinal    bool           `json:"isFinal"`
	GroupID    string         `json:"groupId"`
	Timestamp  int64          `json:"timestamp"`
	IsQuestion bool           `json:"isQuestion,omitempty"`
	Results    []SearchResult `json:"searchResults,omitempty"`
}

// FragmentEvent is published when a fragment is emitted to the display list.
type FragmentEvent struct {
	EventType string   `json:"eventType"`
	SessionID string   `json:"sessionId"`
	Fragment  Fragment `json:"fragment"`
}

// AnnotationEvent is published when a question group has been classified
// and its memory lookup has resolved.
type AnnotationEvent struct {
	EventType  string         `json:"eventType"`
	SessionID  string         `json:"sessionId"`
	GroupID    string         `json:"groupId"`
	IsQuestion bool           `json:"isQuestion"`
	Results    []SearchResult `json:"results"`
	Timestamp  int64          `json:"timestamp"`
}
