package viewerpdf

// Tracker remembers the identifiers of candidates already captured in one
// session so that an element the viewer keeps on screen across pages is
// not saved again as new content.
//
// A Tracker belongs to exactly one session. It only grows.
type Tracker struct {
	seen map[string]struct{}
}

// NewTracker returns an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{seen: make(map[string]struct{})}
}

// Contains reports whether id was added before. Matching is exact.
func (t *Tracker) Contains(id string) bool {
	_, ok := t.seen[id]
	return ok
}

// Add records id as seen.
func (t *Tracker) Add(id string) {
	t.seen[id] = struct{}{}
}

// Len returns the number of distinct identifiers seen.
func (t *Tracker) Len() int {
	return len(t.seen)
}
