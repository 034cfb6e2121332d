package shader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penumbra3d/penumbra/engine/texture"
)

const litDescription = `{
  "shaders": [
    {
      "name": "lit",
      "uniform_properties": [
        ["vec4", "base_color"],
        ["float", "roughness"]
      ],
      "texture_properties": [
        ["2D", "albedo", "white"],
        ["Cube", "reflection"]
      ],
      "subshaders": [
        {
          "tag": "ForwardBase",
          "vs": "lit_vert.wgsl",
          "fs": "lit_frag.wgsl",
          "definition": { "BASE_PASS": null }
        },
        {
          "tag": "ForwardAdd",
          "vs": "lit_vert.wgsl",
          "fs": "lit_frag.wgsl",
          "cull": "none",
          "depth_write": false,
          "depth_compare": "less_equal",
          "blend": { "op": "add", "src": "one", "dst": "one" }
        }
      ]
    }
  ],
  "materials": [
    { "name": "Steel", "shader": "lit" }
  ]
}`

func TestParseLibrary(t *testing.T) {
	shaders, materials, err := ParseLibrary([]byte(litDescription), "assets")
	require.NoError(t, err)
	require.Len(t, shaders, 1)
	require.Len(t, materials, 1)

	s := shaders[0]
	assert.Equal(t, "lit", s.Name())
	assert.False(t, s.Built())

	offset, ok := s.UniformLayout().OffsetOf("roughness")
	require.True(t, ok)
	assert.Equal(t, uint32(16), offset)
	assert.Equal(t, uint32(32), s.UniformLayout().Size())

	prop, ok := s.TextureSlots().PropertyOf("albedo")
	require.True(t, ok)
	assert.Equal(t, texture.Kind2D, prop.Kind)
	assert.Equal(t, DefaultWhite, prop.Default)

	prop, ok = s.TextureSlots().PropertyOf("reflection")
	require.True(t, ok)
	assert.Equal(t, texture.KindCube, prop.Kind)

	base, ok := s.SubShader(TagForwardBase)
	require.True(t, ok)
	assert.Equal(t, filepath.Join("assets", "lit_vert.wgsl"), base.VertexPath)
	assert.Contains(t, base.Definitions, "BASE_PASS")
	assert.Equal(t, wgpu.CullModeBack, base.State.CullMode)
	assert.True(t, base.State.DepthWrite)

	add, ok := s.SubShader(TagForwardAdd)
	require.True(t, ok)
	assert.Equal(t, wgpu.CullModeNone, add.State.CullMode)
	assert.False(t, add.State.DepthWrite)
	assert.Equal(t, wgpu.CompareFunctionLessEqual, add.State.DepthCompare)
	assert.Equal(t, wgpu.BlendFactorOne, add.State.Blend.Color.SrcFactor)
	assert.Equal(t, wgpu.BlendFactorOne, add.State.Blend.Color.DstFactor)
	// alpha equation mirrors the color equation when omitted
	assert.Equal(t, add.State.Blend.Color, add.State.Blend.Alpha)

	_, ok = s.SubShader("Shadow")
	assert.False(t, ok)

	assert.Equal(t, "Steel", materials[0].Name)
	assert.Equal(t, "lit", materials[0].Shader)
}

func TestParseLibraryFileIndirection(t *testing.T) {
	dir := t.TempDir()

	inner := `{
      "name": "unlit",
      "uniform_properties": [["vec4", "base_color"]],
      "texture_properties": [["2D", "albedo", "gray"]],
      "subshaders": [{ "tag": "ForwardBase", "vs": "unlit.wgsl", "fs": "unlit.wgsl" }]
    }`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "unlit.shader.json"), []byte(inner), 0o644))

	outer := `{ "shaders": ["unlit.shader.json"] }`
	path := filepath.Join(dir, "shaders.json")
	require.NoError(t, os.WriteFile(path, []byte(outer), 0o644))

	shaders, _, err := ParseLibraryFile(path)
	require.NoError(t, err)
	require.Len(t, shaders, 1)
	assert.Equal(t, "unlit", shaders[0].Name())

	// source paths resolve against the referenced file's directory
	sub, ok := shaders[0].SubShader(TagForwardBase)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "unlit.wgsl"), sub.VertexPath)
}

func TestParseLibraryNestedIndirectionRejected(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"), []byte(`"b.json"`), 0o644))

	outer := `{ "shaders": ["a.json"] }`
	path := filepath.Join(dir, "shaders.json")
	require.NoError(t, os.WriteFile(path, []byte(outer), 0o644))

	_, _, err := ParseLibraryFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "indirection")
}

func TestParseLibraryErrors(t *testing.T) {
	cases := map[string]struct {
		json     string
		fragment string
	}{
		"unknown uniform type": {
			json:     `{"shaders":[{"name":"s","uniform_properties":[["double","x"]],"subshaders":[{"tag":"ForwardBase","vs":"a","fs":"b"}]}]}`,
			fragment: "double",
		},
		"2D default required": {
			json:     `{"shaders":[{"name":"s","texture_properties":[["2D","albedo"]],"subshaders":[{"tag":"ForwardBase","vs":"a","fs":"b"}]}]}`,
			fragment: "default",
		},
		"unknown default tag": {
			json:     `{"shaders":[{"name":"s","texture_properties":[["2D","albedo","pink"]],"subshaders":[{"tag":"ForwardBase","vs":"a","fs":"b"}]}]}`,
			fragment: "pink",
		},
		"duplicate tag": {
			json:     `{"shaders":[{"name":"s","subshaders":[{"tag":"ForwardBase","vs":"a","fs":"b"},{"tag":"ForwardBase","vs":"a","fs":"b"}]}]}`,
			fragment: "duplicate",
		},
		"missing shader name": {
			json:     `{"shaders":[{"subshaders":[{"tag":"ForwardBase","vs":"a","fs":"b"}]}]}`,
			fragment: "name",
		},
		"missing sources": {
			json:     `{"shaders":[{"name":"s","subshaders":[{"tag":"ForwardBase"}]}]}`,
			fragment: "vs and fs",
		},
		"unknown cull keyword": {
			json:     `{"shaders":[{"name":"s","subshaders":[{"tag":"ForwardBase","vs":"a","fs":"b","cull":"sideways"}]}]}`,
			fragment: "sideways",
		},
		"material without shader": {
			json:     `{"materials":[{"name":"Steel"}]}`,
			fragment: "Steel",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := ParseLibrary([]byte(tc.json), ".")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.fragment)
		})
	}
}
