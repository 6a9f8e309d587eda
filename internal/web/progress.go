package web

import "sync"

// progressTracker keeps one upload-progress slot per session. A second
// upload from the same session overwrites the first's slot; last writer
// wins, matching the single-tab assumption of the upload flow.
type progressTracker struct {
	mu      sync.Mutex
	percent map[string]int
}

func newProgressTracker() *progressTracker {
	return &progressTracker{percent: make(map[string]int)}
}

func (t *progressTracker) set(id string, percent int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.percent[id] = percent
}

func (t *progressTracker) get(id string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.percent[id]
}

func (t *progressTracker) clear(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.percent, id)
}
