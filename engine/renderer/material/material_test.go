package material

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penumbra3d/penumbra/engine/renderer/shader"
	"github.com/penumbra3d/penumbra/engine/texture"
)

func testShader(t *testing.T) shader.Shader {
	t.Helper()
	return shader.New("lit",
		[]shader.NamedUniform{
			{Name: "tint", Property: shader.UniformVec3},
			{Name: "roughness", Property: shader.UniformFloat},
			{Name: "base_color", Property: shader.UniformVec4},
			{Name: "uv_transform", Property: shader.UniformMat3},
		},
		[]shader.NamedTexture{
			{Name: "albedo", Property: shader.TextureProperty{Default: shader.DefaultWhite}},
		},
		nil,
	)
}

func float32At(t *testing.T, block []byte, offset uint32) float32 {
	t.Helper()
	require.LessOrEqual(t, int(offset)+4, len(block))
	return math.Float32frombits(binary.LittleEndian.Uint32(block[offset:]))
}

func TestNewMaterialZeroInitialized(t *testing.T) {
	m := NewMaterial("Steel", testShader(t))

	assert.Equal(t, "Steel", m.Name())
	assert.Equal(t, int(m.Shader().UniformLayout().Size()), len(m.UniformBytes()))
	for _, b := range m.UniformBytes() {
		assert.Zero(t, b)
	}
	assert.False(t, m.Built())
}

func TestNewMaterialEmptyNamePanics(t *testing.T) {
	assert.Panics(t, func() {
		NewMaterial("", testShader(t))
	})
}

func TestSettersWriteAtLayoutOffsets(t *testing.T) {
	m := NewMaterial("Steel", testShader(t))

	m.SetVec3("tint", [3]float32{1, 2, 3})
	m.SetFloat("roughness", 0.5)
	m.SetVec4("base_color", [4]float32{4, 5, 6, 7})

	block := m.UniformBytes()
	// tint at 0, roughness in the vec3 tail at 12, base_color at 16
	assert.Equal(t, float32(1), float32At(t, block, 0))
	assert.Equal(t, float32(2), float32At(t, block, 4))
	assert.Equal(t, float32(3), float32At(t, block, 8))
	assert.Equal(t, float32(0.5), float32At(t, block, 12))
	assert.Equal(t, float32(4), float32At(t, block, 16))
	assert.Equal(t, float32(7), float32At(t, block, 28))
}

func TestSetMat3PadsColumns(t *testing.T) {
	m := NewMaterial("Steel", testShader(t))

	m.SetMat3("uv_transform", [9]float32{1, 2, 3, 4, 5, 6, 7, 8, 9})

	offset, ok := m.Shader().UniformLayout().OffsetOf("uv_transform")
	require.True(t, ok)
	block := m.UniformBytes()

	want := []float32{1, 2, 3, 0, 4, 5, 6, 0, 7, 8, 9, 0}
	for i, v := range want {
		assert.Equal(t, v, float32At(t, block, offset+uint32(i)*4), "element %d", i)
	}
}

func TestSetterUnknownNameIsNoOp(t *testing.T) {
	m := NewMaterial("Steel", testShader(t))

	m.SetFloat("missing", 1)

	for _, b := range m.UniformBytes() {
		assert.Zero(t, b)
	}
}

func TestSetterTypeMismatchIsNoOp(t *testing.T) {
	m := NewMaterial("Steel", testShader(t))

	// roughness is declared float; a vec4 write must not land
	m.SetVec4("roughness", [4]float32{1, 2, 3, 4})

	for _, b := range m.UniformBytes() {
		assert.Zero(t, b)
	}
}

func TestSetterOverwriteMatchesSingleWrite(t *testing.T) {
	overwritten := NewMaterial("Steel", testShader(t))
	overwritten.SetFloat("roughness", 0.25)
	overwritten.SetFloat("roughness", 0.75)

	// writing x then y leaves the block identical to writing only y
	direct := NewMaterial("Steel", testShader(t))
	direct.SetFloat("roughness", 0.75)

	assert.Equal(t, direct.UniformBytes(), overwritten.UniformBytes())
}

// fakeTexture carries a fixed kind so texture filtering can be exercised
// without a device.
type fakeTexture struct {
	kind texture.Kind
}

var _ texture.Texture = &fakeTexture{}

func (f *fakeTexture) Handle() *wgpu.Texture     { return nil }
func (f *fakeTexture) View() *wgpu.TextureView   { return nil }
func (f *fakeTexture) Sampler() *wgpu.Sampler    { return nil }
func (f *fakeTexture) Kind() texture.Kind        { return f.kind }
func (f *fakeTexture) Format() wgpu.TextureFormat {
	return wgpu.TextureFormatRGBA8UnormSrgb
}
func (f *fakeTexture) Width() uint32         { return 1 }
func (f *fakeTexture) Height() uint32        { return 1 }
func (f *fakeTexture) Depth() uint32         { return 1 }
func (f *fakeTexture) MipLevelCount() uint32 { return 1 }
func (f *fakeTexture) FaceView(level, face uint32) (*wgpu.TextureView, error) {
	return nil, nil
}
func (f *fakeTexture) Release() {}

func TestSetTextureUndeclaredIsNoOp(t *testing.T) {
	m := NewMaterial("Steel", testShader(t))

	require.NoError(t, m.SetTexture("missing", &fakeTexture{kind: texture.Kind2D}))
	assert.Nil(t, m.Texture("missing"))
	assert.Nil(t, m.Texture("albedo"))
}

func TestSetTextureKindMismatchIsNoOp(t *testing.T) {
	m := NewMaterial("Steel", testShader(t))

	// albedo is declared 2D; a cube texture must not land
	require.NoError(t, m.SetTexture("albedo", &fakeTexture{kind: texture.KindCube}))
	assert.Nil(t, m.Texture("albedo"))
}

func TestSetTextureMatchingKindIsAccepted(t *testing.T) {
	m := NewMaterial("Steel", testShader(t))
	tex := &fakeTexture{kind: texture.Kind2D}

	require.NoError(t, m.SetTexture("albedo", tex))
	assert.Same(t, texture.Texture(tex), m.Texture("albedo"))
}

func TestUpdateBeforeBuildErrors(t *testing.T) {
	m := NewMaterial("Steel", testShader(t))

	err := m.Update(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, shader.ErrNotBuilt)
}

func TestBuildRequiresBuiltShader(t *testing.T) {
	m := NewMaterial("Steel", testShader(t))

	err := m.Build(nil, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, shader.ErrNotBuilt)
}
