package assets

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penumbra3d/penumbra/engine/camera"
	"github.com/penumbra3d/penumbra/engine/light"
	"github.com/penumbra3d/penumbra/engine/renderer"
	"github.com/penumbra3d/penumbra/engine/renderer/envmap"
	"github.com/penumbra3d/penumbra/engine/renderer/pipeline"
	"github.com/penumbra3d/penumbra/engine/renderer/shader"
)

// stubRenderer records shader registrations so the library can be exercised
// without a GPU.
type stubRenderer struct {
	registered   []shader.Shader
	unregistered []string
	failFor      string
}

var _ renderer.Renderer = &stubRenderer{}

func (r *stubRenderer) Context() renderer.GraphicsContext { return nil }

func (r *stubRenderer) RegisterShader(s shader.Shader) error {
	if s.Name() == r.failFor {
		return errors.New("compile failed")
	}
	r.registered = append(r.registered, s)
	return nil
}

// registeredNames flattens the recorded registrations for order assertions.
func (r *stubRenderer) registeredNames() []string {
	names := make([]string, 0, len(r.registered))
	for _, s := range r.registered {
		names = append(names, s.Name())
	}
	return names
}

func (r *stubRenderer) UnregisterShader(name string) {
	r.unregistered = append(r.unregistered, name)
}

func (r *stubRenderer) Pipeline(key pipeline.Key) (pipeline.Pipeline, bool) {
	return nil, false
}

func (r *stubRenderer) RenderFrame(cam camera.Camera, lights []light.Light, items []renderer.DrawItem, env envmap.EnvironmentMap) error {
	return nil
}

func (r *stubRenderer) Resize(width, height uint32) error { return nil }

func (r *stubRenderer) Release() {}

func writeDescription(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const unlitDescription = `{
  "shaders": [
    {
      "name": "unlit",
      "uniform_properties": [["vec4", "base_color"]],
      "subshaders": [{ "tag": "ForwardBase", "vs": "unlit.wgsl", "fs": "unlit.wgsl" }]
    }
  ],
  "materials": [
    { "name": "FlatWhite", "shader": "unlit" }
  ]
}`

func TestLibraryLoad(t *testing.T) {
	stub := &stubRenderer{}
	lib := NewLibrary(stub)
	path := writeDescription(t, t.TempDir(), "shaders.json", unlitDescription)

	require.NoError(t, lib.Load(path))

	assert.Equal(t, []string{"unlit"}, stub.registeredNames())
	_, ok := lib.Shader("unlit")
	assert.True(t, ok)
	assert.Equal(t, []string{"FlatWhite"}, lib.MaterialNames())
}

func TestLibraryReloadReplacesContribution(t *testing.T) {
	stub := &stubRenderer{}
	lib := NewLibrary(stub)
	path := writeDescription(t, t.TempDir(), "shaders.json", unlitDescription)

	require.NoError(t, lib.Load(path))
	require.NoError(t, lib.Load(path))

	// registration itself replaces the cached pipelines, so a redeclared
	// name is never unregistered
	assert.Equal(t, []string{"unlit", "unlit"}, stub.registeredNames())
	assert.Empty(t, stub.unregistered)
	assert.Len(t, lib.MaterialNames(), 1)

	// the registry resolves the name to the newest generation
	current, ok := lib.Shader("unlit")
	require.True(t, ok)
	assert.Same(t, stub.registered[1], current)
}

func TestLibraryReloadDropsAbandonedNames(t *testing.T) {
	stub := &stubRenderer{}
	lib := NewLibrary(stub)
	dir := t.TempDir()
	path := writeDescription(t, dir, "shaders.json", unlitDescription)
	require.NoError(t, lib.Load(path))

	renamed := `{
	  "shaders": [
	    {
	      "name": "flat",
	      "uniform_properties": [["vec4", "base_color"]],
	      "subshaders": [{ "tag": "ForwardBase", "vs": "flat.wgsl", "fs": "flat.wgsl" }]
	    }
	  ]
	}`
	writeDescription(t, dir, "shaders.json", renamed)
	require.NoError(t, lib.Load(path))

	// the name the file no longer declares is dropped from the renderer
	assert.Equal(t, []string{"unlit"}, stub.unregistered)
	_, ok := lib.Shader("unlit")
	assert.False(t, ok)
	_, ok = lib.Shader("flat")
	assert.True(t, ok)
	assert.Empty(t, lib.MaterialNames())
}

func TestLibraryLoadFailureKeepsPreviousState(t *testing.T) {
	stub := &stubRenderer{}
	lib := NewLibrary(stub)
	dir := t.TempDir()
	path := writeDescription(t, dir, "shaders.json", unlitDescription)

	require.NoError(t, lib.Load(path))

	stub.failFor = "unlit"
	writeDescription(t, dir, "shaders.json", unlitDescription)
	err := lib.Load(path)
	require.Error(t, err)

	// the previous contribution survives the failed reload
	_, ok := lib.Shader("unlit")
	assert.True(t, ok)
	assert.Empty(t, stub.unregistered)
}

const twoShaderDescription = `{
  "shaders": [
    {
      "name": "alpha",
      "uniform_properties": [["vec4", "base_color"]],
      "subshaders": [{ "tag": "ForwardBase", "vs": "alpha.wgsl", "fs": "alpha.wgsl" }]
    },
    {
      "name": "beta",
      "uniform_properties": [["float", "roughness"]],
      "subshaders": [{ "tag": "ForwardBase", "vs": "beta.wgsl", "fs": "beta.wgsl" }]
    }
  ]
}`

func TestLibraryPartialFailureRollsBackRegistrations(t *testing.T) {
	stub := &stubRenderer{}
	lib := NewLibrary(stub)
	dir := t.TempDir()
	path := writeDescription(t, dir, "shaders.json", twoShaderDescription)
	require.NoError(t, lib.Load(path))
	require.Equal(t, []string{"alpha", "beta"}, stub.registeredNames())
	oldAlpha, ok := lib.Shader("alpha")
	require.True(t, ok)

	// the second shader of the reload fails after the first has already
	// replaced its pipelines
	stub.failFor = "beta"
	writeDescription(t, dir, "shaders.json", twoShaderDescription)
	err := lib.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "beta")

	// the registry still resolves to the previous generation
	current, ok := lib.Shader("alpha")
	require.True(t, ok)
	assert.Same(t, oldAlpha, current)

	// and the renderer was rolled back to it: the last registration for
	// alpha is the old object again, not the aborted generation's
	names := stub.registeredNames()
	require.Equal(t, []string{"alpha", "beta", "alpha", "alpha"}, names)
	assert.Same(t, oldAlpha, stub.registered[len(stub.registered)-1])
	assert.Empty(t, stub.unregistered)
}

func TestLibraryLoadParseError(t *testing.T) {
	lib := NewLibrary(&stubRenderer{})
	path := writeDescription(t, t.TempDir(), "shaders.json", "{ not json")

	err := lib.Load(path)
	require.Error(t, err)
	_, ok := lib.Shader("unlit")
	assert.False(t, ok)
}

func TestCreateMaterial(t *testing.T) {
	lib := NewLibrary(&stubRenderer{})
	path := writeDescription(t, t.TempDir(), "shaders.json", unlitDescription)
	require.NoError(t, lib.Load(path))

	m, err := lib.CreateMaterial("FlatWhite")
	require.NoError(t, err)
	assert.Equal(t, "FlatWhite", m.Name())
	assert.Equal(t, "unlit", m.Shader().Name())
	assert.False(t, m.Built())

	_, err = lib.CreateMaterial("Missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Missing")
}

func TestCloseWithoutWatchIsNoOp(t *testing.T) {
	lib := NewLibrary(&stubRenderer{})
	lib.Close()
}
