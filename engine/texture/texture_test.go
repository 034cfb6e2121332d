package texture

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
)

func TestMipLevelCount(t *testing.T) {
	cases := map[uint32]uint32{
		0:    1,
		1:    1,
		2:    2,
		3:    2,
		4:    3,
		255:  8,
		256:  9,
		512:  10,
		513:  10,
		1024: 11,
	}
	for extent, want := range cases {
		assert.Equal(t, want, MipLevelCount(extent), "extent %d", extent)
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "2D", Kind2D.String())
	assert.Equal(t, "3D", Kind3D.String())
	assert.Equal(t, "Cube", KindCube.String())
	assert.Equal(t, "Kind(7)", Kind(7).String())
}

func TestKindViewDimension(t *testing.T) {
	assert.Equal(t, wgpu.TextureViewDimension2D, Kind2D.ViewDimension())
	assert.Equal(t, wgpu.TextureViewDimension3D, Kind3D.ViewDimension())
	assert.Equal(t, wgpu.TextureViewDimensionCube, KindCube.ViewDimension())
}

func TestKindZeroValueIs2D(t *testing.T) {
	var k Kind
	assert.Equal(t, Kind2D, k)
}

func TestClampedLinearSampler(t *testing.T) {
	cfg := ClampedLinearSampler()
	assert.Equal(t, wgpu.AddressModeClampToEdge, cfg.AddressModeU)
	assert.Equal(t, wgpu.AddressModeClampToEdge, cfg.AddressModeW)
	assert.Equal(t, wgpu.FilterModeLinear, cfg.MagFilter)
	assert.Equal(t, wgpu.MipmapFilterModeLinear, cfg.MipmapFilter)
}
