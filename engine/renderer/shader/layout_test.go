package shader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniformLayoutPacking(t *testing.T) {
	layout := NewUniformLayout([]NamedUniform{
		{Name: "a", Property: UniformVec3},
		{Name: "b", Property: UniformFloat},
		{Name: "c", Property: UniformVec4},
	})

	offset, ok := layout.OffsetOf("a")
	require.True(t, ok)
	assert.Equal(t, uint32(0), offset)

	// the float slots into the vec3's tail padding
	offset, ok = layout.OffsetOf("b")
	require.True(t, ok)
	assert.Equal(t, uint32(12), offset)

	offset, ok = layout.OffsetOf("c")
	require.True(t, ok)
	assert.Equal(t, uint32(16), offset)

	assert.Equal(t, uint32(32), layout.Size())
}

func TestUniformLayoutMat3Padding(t *testing.T) {
	layout := NewUniformLayout([]NamedUniform{
		{Name: "m", Property: UniformMat3},
		{Name: "f", Property: UniformFloat},
	})

	offset, ok := layout.OffsetOf("m")
	require.True(t, ok)
	assert.Equal(t, uint32(0), offset)

	offset, ok = layout.OffsetOf("f")
	require.True(t, ok)
	assert.Equal(t, uint32(48), offset)

	// 52 rounded up to the block multiple
	assert.Equal(t, uint32(64), layout.Size())
}

func TestUniformLayoutAlignmentGaps(t *testing.T) {
	layout := NewUniformLayout([]NamedUniform{
		{Name: "f", Property: UniformFloat},
		{Name: "v2", Property: UniformVec2},
		{Name: "v4", Property: UniformVec4},
	})

	offset, _ := layout.OffsetOf("f")
	assert.Equal(t, uint32(0), offset)
	offset, _ = layout.OffsetOf("v2")
	assert.Equal(t, uint32(8), offset)
	offset, _ = layout.OffsetOf("v4")
	assert.Equal(t, uint32(16), offset)
	assert.Equal(t, uint32(32), layout.Size())
}

func TestUniformLayoutUnknownName(t *testing.T) {
	layout := NewUniformLayout([]NamedUniform{
		{Name: "a", Property: UniformFloat},
	})

	_, ok := layout.OffsetOf("missing")
	assert.False(t, ok)
	_, ok = layout.PropertyOf("missing")
	assert.False(t, ok)
}

func TestUniformLayoutEmpty(t *testing.T) {
	layout := NewUniformLayout(nil)
	assert.Equal(t, uint32(0), layout.Size())
	assert.Empty(t, layout.Properties())
}

func TestTextureSlotTableBindings(t *testing.T) {
	table := NewTextureSlotTable([]NamedTexture{
		{Name: "albedo", Property: TextureProperty{Default: DefaultWhite}},
		{Name: "normal_map", Property: TextureProperty{Default: DefaultNormal}},
		{Name: "metal_rough", Property: TextureProperty{Default: DefaultWhite}},
	})

	assert.Equal(t, 3, table.Len())

	for i, name := range []string{"albedo", "normal_map", "metal_rough"} {
		index, ok := table.IndexOf(name)
		require.True(t, ok, name)
		assert.Equal(t, uint32(i), index)

		view, ok := table.ViewBindingOf(name)
		require.True(t, ok)
		assert.Equal(t, uint32(i)*2+1, view)

		sampler, ok := table.SamplerBindingOf(name)
		require.True(t, ok)
		assert.Equal(t, uint32(i)*2+2, sampler)
	}
}

func TestTextureSlotTableUnknownName(t *testing.T) {
	table := NewTextureSlotTable([]NamedTexture{
		{Name: "albedo", Property: TextureProperty{Default: DefaultWhite}},
	})

	_, ok := table.IndexOf("missing")
	assert.False(t, ok)
	_, ok = table.ViewBindingOf("missing")
	assert.False(t, ok)
	_, ok = table.SamplerBindingOf("missing")
	assert.False(t, ok)
	_, ok = table.PropertyOf("missing")
	assert.False(t, ok)
}
