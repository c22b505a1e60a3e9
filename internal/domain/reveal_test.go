package domain

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRevealLevel(t *testing.T) {
	tests := []struct {
		count int
		want  int
	}{
		{-3, 0},
		{0, 0},
		{4, 0},
		{5, 1},
		{9, 1},
		{10, 2},
		{15, 3},
		{19, 3},
		{20, 4},
		{24, 4},
		{25, 5},
		{1000, 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RevealLevel(tt.count), "count=%d", tt.count)
	}
}

func TestRevealLevelIsMonotonic(t *testing.T) {
	prev := RevealLevel(0)
	for n := 1; n <= 100; n++ {
		l := RevealLevel(n)
		assert.GreaterOrEqual(t, l, prev)
		assert.LessOrEqual(t, l, MaxRevealLevel)
		prev = l
	}
}

func TestRevealTrackerNeverDecreases(t *testing.T) {
	var tr RevealTracker
	assert.Equal(t, 0, tr.Level())
	assert.Equal(t, 2, tr.Observe(12))
	// A stale count from an older page must not take the level back.
	assert.Equal(t, 2, tr.Observe(3))
	assert.Equal(t, 5, tr.Observe(30))
	assert.Equal(t, 5, tr.Level())
}

func TestRevealTrackerConcurrent(t *testing.T) {
	var tr RevealTracker
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			tr.Observe(n)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, RevealLevel(49), tr.Level())
}
