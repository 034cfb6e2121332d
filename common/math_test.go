package common

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// transform4 applies a column-major 4x4 matrix to a point with w = 1.
func transform4(m []float32, p [3]float32) [3]float32 {
	var out [3]float32
	for row := 0; row < 3; row++ {
		out[row] = m[0*4+row]*p[0] + m[1*4+row]*p[1] + m[2*4+row]*p[2] + m[3*4+row]
	}
	return out
}

func TestIdentity(t *testing.T) {
	m := make([]float32, 16)
	for i := range m {
		m[i] = 7
	}
	Identity(m)

	for i, v := range m {
		if i%5 == 0 {
			assert.Equal(t, float32(1), v, "diagonal %d", i)
		} else {
			assert.Equal(t, float32(0), v, "off-diagonal %d", i)
		}
	}
}

func TestMul4IdentityIsNeutral(t *testing.T) {
	id := make([]float32, 16)
	Identity(id)
	m := make([]float32, 16)
	for i := range m {
		m[i] = float32(i + 1)
	}

	out := make([]float32, 16)
	Mul4(out, id, m)
	assert.Equal(t, m, out)

	Mul4(out, m, id)
	assert.Equal(t, m, out)
}

func TestMul4AliasingSafe(t *testing.T) {
	m := make([]float32, 16)
	Identity(m)
	m[12] = 3 // translate x by 3

	// out aliases one of the operands
	Mul4(m, m, m)

	p := transform4(m, [3]float32{0, 0, 0})
	assert.InDelta(t, 6, p[0], 1e-5)
}

func TestTranspose4RoundTrip(t *testing.T) {
	m := make([]float32, 16)
	for i := range m {
		m[i] = float32(i)
	}

	once := make([]float32, 16)
	Transpose4(once, m)
	assert.Equal(t, float32(4), once[1])
	assert.Equal(t, float32(1), once[4])

	twice := make([]float32, 16)
	Transpose4(twice, once)
	assert.Equal(t, m, twice)
}

func TestInvert4RoundTrip(t *testing.T) {
	m := make([]float32, 16)
	BuildModelMatrix(m, 3, -2, 5, 0.3, 1.1, -0.7, 2, 2, 2)

	inverse := make([]float32, 16)
	require.True(t, Invert4(inverse, m))

	product := make([]float32, 16)
	Mul4(product, m, inverse)
	for i, v := range product {
		if i%5 == 0 {
			assert.InDelta(t, 1, v, 1e-4, "diagonal %d", i)
		} else {
			assert.InDelta(t, 0, v, 1e-4, "off-diagonal %d", i)
		}
	}
}

func TestInvert4Singular(t *testing.T) {
	m := make([]float32, 16) // all zeros
	out := make([]float32, 16)
	out[0] = 42

	assert.False(t, Invert4(out, m))
	// output untouched on failure
	assert.Equal(t, float32(42), out[0])
}

func TestLookAtTransformsWorldToView(t *testing.T) {
	view := make([]float32, 16)
	LookAt(view, 0, 0, 5, 0, 0, 0, 0, 1, 0)

	eye := transform4(view, [3]float32{0, 0, 5})
	for _, v := range eye {
		assert.InDelta(t, 0, v, 1e-5)
	}

	// the target sits straight ahead on -Z in view space
	target := transform4(view, [3]float32{0, 0, 0})
	assert.InDelta(t, 0, target[0], 1e-5)
	assert.InDelta(t, 0, target[1], 1e-5)
	assert.InDelta(t, -5, target[2], 1e-5)
}

func TestPerspectiveDepthRange(t *testing.T) {
	proj := make([]float32, 16)
	near, far := float32(0.1), float32(100)
	Perspective(proj, math.Pi/2, 1, near, far)

	// a point on the near plane maps to depth 0, the far plane to depth 1
	nearDepth := (proj[10]*(-near) + proj[14]) / near
	farDepth := (proj[10]*(-far) + proj[14]) / far
	assert.InDelta(t, 0, nearDepth, 1e-5)
	assert.InDelta(t, 1, farDepth, 1e-5)
	assert.Equal(t, float32(-1), proj[11])
}

func TestBuildModelMatrixTranslationAndScale(t *testing.T) {
	m := make([]float32, 16)
	BuildModelMatrix(m, 1, 2, 3, 0, 0, 0, 2, 3, 4)

	p := transform4(m, [3]float32{1, 1, 1})
	assert.InDelta(t, 3, p[0], 1e-5)
	assert.InDelta(t, 5, p[1], 1e-5)
	assert.InDelta(t, 7, p[2], 1e-5)
}

func TestVectorHelpers(t *testing.T) {
	a := [3]float32{1, 2, 3}
	b := [3]float32{4, 5, 6}

	assert.Equal(t, [3]float32{5, 7, 9}, Add3(a, b))
	assert.Equal(t, [3]float32{-3, -3, -3}, Sub3(a, b))
	assert.Equal(t, [3]float32{2, 4, 6}, Scale3(a, 2))
	assert.Equal(t, float32(32), Dot3(a, b))
	assert.Equal(t, [3]float32{-3, 6, -3}, Cross3(a, b))
}

func TestNormalize3(t *testing.T) {
	n := Normalize3([3]float32{3, 0, 4})
	assert.InDelta(t, 0.6, n[0], 1e-5)
	assert.InDelta(t, 0.8, n[2], 1e-5)
	assert.InDelta(t, 1, Length3(n), 1e-5)

	// the zero vector passes through unchanged
	assert.Equal(t, [3]float32{0, 0, 0}, Normalize3([3]float32{0, 0, 0}))
}
