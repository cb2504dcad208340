// Package transcript groups streamed fragments into question units,
// classifies them at sentence boundaries, and attaches memory search
// results back to every fragment in the group.
package transcript

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// State represents the lifecycle state of the current question group.
type State int

const (
	// StateIdle - no open group; the next fragment opens one.
	StateIdle State = iota
	// StateAccumulating - fragments are being appended to the current group.
	StateAccumulating
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateAccumulating:
		return "ACCUMULATING"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", s)
	}
}

// Errors for invalid state transitions.
var (
	ErrGroupAlreadyOpen = errors.New("a question group is already open")
	ErrNoOpenGroup      = errors.New("no question group is open")
)

// Lifecycle manages the state machine for question groups within a session.
// Thread-safe for concurrent access.
//
// State transitions:
//
//	IDLE → ACCUMULATING   Open(), on the first fragment after a reset
//	ACCUMULATING → IDLE   Close(), when sentence punctuation triggers
//	                      classification, or Drop() on an STT error
type Lifecycle struct {
	mu      sync.RWMutex
	groupId string
	state   State
}

// NewLifecycle creates a lifecycle in IDLE state with no open group.
func NewLifecycle() *Lifecycle {
	return &Lifecycle{state: StateIdle}
}

// GroupId returns the open group's ID, or "" when idle.
func (l *Lifecycle) GroupId() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.groupId
}

// State returns the current state.
func (l *Lifecycle) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// IsOpen returns true if a group is currently accumulating fragments.
func (l *Lifecycle) IsOpen() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state == StateAccumulating
}

// Open assigns a new group id and transitions to ACCUMULATING.
func (l *Lifecycle) Open(groupId string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == StateAccumulating {
		return ErrGroupAlreadyOpen
	}
	l.groupId = groupId
	l.state = StateAccumulating
	return nil
}

// Append validates that a fragment may join the current group.
func (l *Lifecycle) Append() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.state != StateAccumulating {
		return ErrNoOpenGroup
	}
	return nil
}

// Close ends the current group and returns to IDLE. The group id is
// cleared; classification of the closed group proceeds independently.
// Idempotent.
func (l *Lifecycle) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.groupId = ""
	l.state = StateIdle
}

// Drop abandons the current group without classification. Use when an STT
// error makes the accumulated text untrustworthy.
// Returns true if a group was actually open.
func (l *Lifecycle) Drop() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != StateAccumulating {
		return false
	}
	l.groupId = ""
	l.state = StateIdle
	return true
}

// Generator produces question group IDs unique within a session.
type Generator struct {
	counter uint64
}

// NewGenerator creates a group ID generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Next returns the next group ID for the session.
func (g *Generator) Next(sessionId string) string {
	n := atomic.AddUint64(&g.counter, 1)
	return fmt.Sprintf("%s-grp-%d", sessionId, n)
}
