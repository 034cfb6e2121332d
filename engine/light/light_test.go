package light

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPointLight(t *testing.T) {
	l := NewPointLight(1, 2, 3, 4, 5, 6)

	uniform := l.Uniform()
	assert.Equal(t, [4]float32{1, 2, 3, 1}, uniform.Position)
	assert.Equal(t, [4]float32{4, 5, 6, 1}, uniform.Color)
	assert.Nil(t, l.BindGroup())
}

func TestNewDirectionalLight(t *testing.T) {
	// the stored vector points toward the light, normalized, with w = 0
	l := NewDirectionalLight(0, -2, 0, 1, 1, 1)

	uniform := l.Uniform()
	assert.Equal(t, [4]float32{0, 1, 0, 0}, uniform.Position)
	assert.Equal(t, [4]float32{1, 1, 1, 1}, uniform.Color)
}

func TestSetColor(t *testing.T) {
	l := NewPointLight(0, 0, 0, 1, 1, 1)

	l.SetColor(0.5, 0.25, 0.125)

	assert.Equal(t, [4]float32{0.5, 0.25, 0.125, 1}, l.Uniform().Color)
}

func TestDefaultLights(t *testing.T) {
	lights := DefaultLights()

	require.Len(t, lights, 2)
	for _, l := range lights {
		// both defaults are directional
		assert.Equal(t, float32(0), l.Uniform().Position[3])
	}
	assert.Equal(t, [4]float32{1, 1, 1, 1}, lights[0].Uniform().Color)
	assert.Equal(t, [4]float32{0.8, 0.8, 0.8, 1}, lights[1].Uniform().Color)
}

func TestGPULightUniformMarshal(t *testing.T) {
	uniform := GPULightUniform{
		Position: [4]float32{1, 2, 3, 1},
		Color:    [4]float32{5, 6, 7, 1},
	}

	assert.Equal(t, 32, uniform.Size())

	buf := uniform.Marshal()
	require.Len(t, buf, 32)
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(buf[0:])))
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(buf[12:])))
	assert.Equal(t, float32(5), math.Float32frombits(binary.LittleEndian.Uint32(buf[16:])))
	assert.Equal(t, float32(7), math.Float32frombits(binary.LittleEndian.Uint32(buf[24:])))
}
