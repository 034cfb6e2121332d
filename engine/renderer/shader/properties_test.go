package shader

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penumbra3d/penumbra/engine/texture"
)

func TestParseUniformProperty(t *testing.T) {
	cases := map[string]UniformProperty{
		"float": UniformFloat,
		"vec2":  UniformVec2,
		"vec3":  UniformVec3,
		"vec4":  UniformVec4,
		"mat3":  UniformMat3,
		"mat4":  UniformMat4,
	}
	for keyword, want := range cases {
		got, err := ParseUniformProperty(keyword)
		require.NoError(t, err, keyword)
		assert.Equal(t, want, got)
		assert.Equal(t, keyword, got.String())
	}

	_, err := ParseUniformProperty("double")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "double")
}

func TestUniformPropertySizesAndAligns(t *testing.T) {
	assert.Equal(t, uint32(4), UniformFloat.Size())
	assert.Equal(t, uint32(4), UniformFloat.Align())
	assert.Equal(t, uint32(8), UniformVec2.Size())
	assert.Equal(t, uint32(8), UniformVec2.Align())
	assert.Equal(t, uint32(12), UniformVec3.Size())
	assert.Equal(t, uint32(16), UniformVec3.Align())
	assert.Equal(t, uint32(16), UniformVec4.Size())
	assert.Equal(t, uint32(48), UniformMat3.Size())
	assert.Equal(t, uint32(64), UniformMat4.Size())
	assert.Equal(t, uint32(16), UniformMat4.Align())
}

func TestParseDefaultTag(t *testing.T) {
	for keyword, want := range map[string]DefaultTag{
		"white":  DefaultWhite,
		"black":  DefaultBlack,
		"gray":   DefaultGray,
		"grey":   DefaultGray,
		"normal": DefaultNormal,
	} {
		got, err := ParseDefaultTag(keyword)
		require.NoError(t, err, keyword)
		assert.Equal(t, want, got)
	}

	_, err := ParseDefaultTag("pink")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pink")
}

func TestParseTextureKind(t *testing.T) {
	for keyword, want := range map[string]texture.Kind{
		"2D":   texture.Kind2D,
		"3D":   texture.Kind3D,
		"Cube": texture.KindCube,
	} {
		got, err := ParseTextureKind(keyword)
		require.NoError(t, err, keyword)
		assert.Equal(t, want, got)
	}

	_, err := ParseTextureKind("1D")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1D")
}

func TestParseRasterKeywords(t *testing.T) {
	cull, err := ParseCullMode("none")
	require.NoError(t, err)
	assert.Equal(t, wgpu.CullModeNone, cull)
	_, err = ParseCullMode("backwards")
	assert.Error(t, err)

	face, err := ParseFrontFace("cw")
	require.NoError(t, err)
	assert.Equal(t, wgpu.FrontFaceCW, face)
	_, err = ParseFrontFace("clockwise")
	assert.Error(t, err)

	mask, err := ParseWriteMask([]string{"r", "G", "b"})
	require.NoError(t, err)
	assert.Equal(t, wgpu.ColorWriteMaskRed|wgpu.ColorWriteMaskGreen|wgpu.ColorWriteMaskBlue, mask)
	_, err = ParseWriteMask([]string{"X"})
	assert.Error(t, err)

	op, err := ParseBlendOperation("rsub")
	require.NoError(t, err)
	assert.Equal(t, wgpu.BlendOperationReverseSubtract, op)

	factor, err := ParseBlendFactor("one_minus_src_alpha")
	require.NoError(t, err)
	assert.Equal(t, wgpu.BlendFactorOneMinusSrcAlpha, factor)

	compare, err := ParseCompareFunction("greater_equal")
	require.NoError(t, err)
	assert.Equal(t, wgpu.CompareFunctionGreaterEqual, compare)

	stencilOp, err := ParseStencilOperation("increment_wrap")
	require.NoError(t, err)
	assert.Equal(t, wgpu.StencilOperationIncrementWrap, stencilOp)
}

func TestDefaultRasterState(t *testing.T) {
	state := DefaultRasterState()
	assert.Equal(t, wgpu.CullModeBack, state.CullMode)
	assert.Equal(t, wgpu.FrontFaceCCW, state.FrontFace)
	assert.Equal(t, wgpu.ColorWriteMaskAll, state.WriteMask)
	assert.True(t, state.DepthWrite)
	assert.Equal(t, wgpu.CompareFunctionLess, state.DepthCompare)
	assert.Equal(t, wgpu.BlendFactorOne, state.Blend.Color.SrcFactor)
	assert.Equal(t, wgpu.BlendFactorZero, state.Blend.Color.DstFactor)
	assert.Equal(t, uint32(0xFFFFFFFF), state.Stencil.ReadMask)
	assert.Equal(t, wgpu.StencilOperationKeep, state.Stencil.Front.PassOp)
}
