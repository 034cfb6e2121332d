package camera

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penumbra3d/penumbra/common"
)

func TestNewCameraDefaults(t *testing.T) {
	c := NewCamera()

	assert.Equal(t, [3]float32{0, 5, 5}, c.Eye())
	assert.Equal(t, [3]float32{0, 0, 0}, c.Target())
	assert.Equal(t, float32(1), c.Aspect())
	assert.Nil(t, c.BindGroup())
}

func TestCameraBuilderOptions(t *testing.T) {
	c := NewCamera(
		WithEye(1, 2, 3),
		WithTarget(4, 5, 6),
		WithClipPlanes(0.5, 200),
	)

	assert.Equal(t, [3]float32{1, 2, 3}, c.Eye())
	assert.Equal(t, [3]float32{4, 5, 6}, c.Target())
}

func TestTranslateMovesEyeAndTargetTogether(t *testing.T) {
	c := NewCamera(WithEye(0, 0, 5), WithTarget(0, 0, 0))

	c.Translate(0, 0, 1)

	assert.InDelta(t, 4, c.Eye()[2], 1e-5)
	assert.InDelta(t, -1, c.Target()[2], 1e-5)
	// the view direction is unchanged
	dir := common.Normalize3(common.Sub3(c.Target(), c.Eye()))
	assert.InDelta(t, -1, dir[2], 1e-5)
}

func TestMoveForwardClampsAtTarget(t *testing.T) {
	c := NewCamera(WithEye(0, 0, 5), WithTarget(0, 0, 0))

	c.MoveForward(100)

	// the eye stops just short of the target
	eye := c.Eye()
	assert.InDelta(t, 0.01, eye[2], 1e-5)
	assert.Equal(t, [3]float32{0, 0, 0}, c.Target())
}

func TestMoveForwardBacksAway(t *testing.T) {
	c := NewCamera(WithEye(0, 0, 5), WithTarget(0, 0, 0))

	c.MoveForward(-5)

	assert.InDelta(t, 10, c.Eye()[2], 1e-5)
}

func TestRotateYawOrbitsTarget(t *testing.T) {
	c := NewCamera(WithEye(0, 0, 0), WithTarget(0, 0, -5))

	c.Rotate(90, 0)

	// a 90 degree yaw swings the view from -Z onto -X, distance preserved
	target := c.Target()
	assert.InDelta(t, -5, target[0], 1e-4)
	assert.InDelta(t, 0, target[1], 1e-4)
	assert.InDelta(t, 0, target[2], 1e-4)
}

func TestRotatePitchClampsNearPoles(t *testing.T) {
	c := NewCamera(WithEye(0, 0, 0), WithTarget(0, 0, -5))

	c.Rotate(0, 70)
	almostUp := common.Normalize3(common.Sub3(c.Target(), c.Eye()))
	assert.InDelta(t, 0.9397, almostUp[1], 1e-3)

	// pushing further up is rejected once the direction nears the up axis
	c.Rotate(0, 25)
	after := common.Normalize3(common.Sub3(c.Target(), c.Eye()))
	assert.InDelta(t, almostUp[1], after[1], 1e-4)
	assert.Less(t, after[1], float32(0.98))
}

func float32At(t *testing.T, buf []byte, offset int) float32 {
	t.Helper()
	require.LessOrEqual(t, offset+4, len(buf))
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[offset:]))
}

func TestGPUCameraUniformMarshal(t *testing.T) {
	uniform := GPUCameraUniform{
		Eye:  [3]float32{1, 2, 3},
		Near: 0.1,
		Far:  100,
	}
	for i := range uniform.View {
		uniform.View[i] = float32(i)
		uniform.Proj[i] = float32(50 + i)
	}

	assert.Equal(t, 160, uniform.Size())

	buf := uniform.Marshal()
	require.Len(t, buf, 160)
	assert.Equal(t, float32(0), float32At(t, buf, 0))
	assert.Equal(t, float32(15), float32At(t, buf, 60))
	assert.Equal(t, float32(50), float32At(t, buf, 64))
	assert.Equal(t, float32(1), float32At(t, buf, 128))
	assert.Equal(t, float32(3), float32At(t, buf, 136))
	// near and far sit after the vec3 pad
	assert.Equal(t, float32(0.1), float32At(t, buf, 144))
	assert.Equal(t, float32(100), float32At(t, buf, 148))
	assert.Equal(t, float32(0), float32At(t, buf, 140))
}
