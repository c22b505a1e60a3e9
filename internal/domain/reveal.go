package domain

import "sync"

const MaxRevealLevel = 5

var revealThresholds = [...]int{0, 5, 10, 15, 20, 25}

// RevealLevel maps a conversation's cumulative message count to a photo
// disclosure level in [0, MaxRevealLevel]. Negative counts are level 0.
func RevealLevel(messageCount int) int {
	level := 0
	for i, threshold := range revealThresholds {
		if messageCount >= threshold {
			level = i
		}
	}
	return min(level, MaxRevealLevel)
}

// RevealTracker is the running maximum a viewing session displays. A stale
// or smaller count never lowers a level that was already shown.
type RevealTracker struct {
	mu    sync.Mutex
	level int
}

// Observe folds a freshly computed message count into the tracker and
// returns the level to display.
func (t *RevealTracker) Observe(messageCount int) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if l := RevealLevel(messageCount); l > t.level {
		t.level = l
	}
	return t.level
}

func (t *RevealTracker) Level() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.level
}
