package governor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBackoffDoublesAndClampsAtMax(t *testing.T) {
	g := New(1, 8)
	assert.Equal(t, uint32(1), g.Current())

	g.Backoff()
	assert.Equal(t, uint32(2), g.Current())

	g.Backoff()
	assert.Equal(t, uint32(4), g.Current())

	g.Backoff()
	assert.Equal(t, uint32(8), g.Current())

	// already at max: one more backoff must not advance further.
	g.Backoff()
	assert.Equal(t, uint32(8), g.Current())
}

func TestResetReturnsToMin(t *testing.T) {
	g := New(10, 80)
	g.Backoff()
	g.Backoff()
	assert.Equal(t, uint32(40), g.Current())

	g.Reset()
	assert.Equal(t, uint32(10), g.Current())
	assert.Equal(t, uint8(0), g.Shift())
}

func TestBackoffMonotonicNonDecreasing(t *testing.T) {
	g := New(1, 1024)
	prev := g.Current()
	for i := 0; i < 12; i++ {
		g.Backoff()
		cur := g.Current()
		assert.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
}
