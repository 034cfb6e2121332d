package envmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrefilterRoughness(t *testing.T) {
	assert.Equal(t, float32(0), prefilterRoughness(0))
	assert.InDelta(t, 1.0/6.0, prefilterRoughness(1), 1e-6)
	assert.InDelta(t, 0.5, prefilterRoughness(3), 1e-6)
	assert.Equal(t, float32(1), prefilterRoughness(6))

	// saturates at 1 for every deeper level
	assert.Equal(t, float32(1), prefilterRoughness(7))
	assert.Equal(t, float32(1), prefilterRoughness(12))
}

func TestPrefilterRoughnessMonotonic(t *testing.T) {
	previous := prefilterRoughness(0)
	for level := uint32(1); level <= 12; level++ {
		current := prefilterRoughness(level)
		assert.GreaterOrEqual(t, current, previous, "level %d", level)
		assert.LessOrEqual(t, current, float32(1), "level %d", level)
		previous = current
	}
}
