package transcript

import (
	"sync"

	"interview-memory-service/internal/models"
	"interview-memory-service/internal/observability/metrics"
)

// Display is an in-memory Sink holding the ordered fragment list shown to
// the user. Annotations are applied uniformly to every fragment sharing
// the annotated group id. After Reset, annotations for groups emitted
// before the reset no longer match anything and are dropped: a late
// classification from a previous session cannot touch the new one.
type Display struct {
	mu        sync.Mutex
	fragments []models.Fragment
	byGroup   map[string][]int // group id → fragment indexes
}

// NewDisplay creates an empty display list.
func NewDisplay() *Display {
	return &Display{byGroup: make(map[string][]int)}
}

// Emit appends a fragment in arrival order.
func (d *Display) Emit(frag models.Fragment) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fragments = append(d.fragments, frag)
	d.byGroup[frag.GroupID] = append(d.byGroup[frag.GroupID], len(d.fragments)-1)
}

// Annotate applies the classification outcome to every fragment sharing
// groupId. Unknown group ids are ignored.
func (d *Display) Annotate(groupId string, isQuestion bool, results []models.SearchResult) {
	d.mu.Lock()
	defer d.mu.Unlock()

	idxs, ok := d.byGroup[groupId]
	if !ok {
		metrics.DefaultMetrics.AnnotationsDropped.Inc()
		return
	}
	for _, i := range idxs {
		d.fragments[i].IsQuestion = isQuestion
		d.fragments[i].Results = results
	}
	metrics.DefaultMetrics.AnnotationsApplied.Inc()
}

// Fragments returns a copy of the current display list.
func (d *Display) Fragments() []models.Fragment {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]models.Fragment, len(d.fragments))
	copy(out, d.fragments)
	return out
}

// Reset clears the display list and the group index.
func (d *Display) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fragments = nil
	d.byGroup = make(map[string][]int)
}
