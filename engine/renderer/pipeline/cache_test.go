package pipeline

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penumbra3d/penumbra/engine/renderer/shader"
)

// fakePipeline stands in for a compiled pipeline so the cache can be
// exercised without a device.
type fakePipeline struct {
	key      Key
	released int
}

var _ Pipeline = &fakePipeline{}

func (f *fakePipeline) Key() Key                     { return f.key }
func (f *fakePipeline) State() shader.RasterState    { return shader.DefaultRasterState() }
func (f *fakePipeline) Handle() *wgpu.RenderPipeline { return nil }
func (f *fakePipeline) Release()                     { f.released++ }

func TestKeyString(t *testing.T) {
	key := Key{Shader: "lit", Pass: "ForwardBase"}
	assert.Equal(t, "lit/ForwardBase", key.String())
}

func TestCacheInsertAndLookup(t *testing.T) {
	cache := NewCache()
	p := &fakePipeline{key: Key{Shader: "lit", Pass: "ForwardBase"}}

	cache.Insert(p)

	got, ok := cache.Lookup(p.key)
	require.True(t, ok)
	assert.Same(t, Pipeline(p), got)

	_, ok = cache.Lookup(Key{Shader: "lit", Pass: "ForwardAdd"})
	assert.False(t, ok)
}

func TestCacheInsertReleasesReplacedPipeline(t *testing.T) {
	cache := NewCache()
	key := Key{Shader: "lit", Pass: "ForwardBase"}
	old := &fakePipeline{key: key}
	replacement := &fakePipeline{key: key}

	cache.Insert(old)
	cache.Insert(replacement)

	assert.Equal(t, 1, old.released)
	assert.Zero(t, replacement.released)

	got, ok := cache.Lookup(key)
	require.True(t, ok)
	assert.Same(t, Pipeline(replacement), got)
}

func TestCacheRemoveShader(t *testing.T) {
	cache := NewCache()
	litBase := &fakePipeline{key: Key{Shader: "lit", Pass: "ForwardBase"}}
	litAdd := &fakePipeline{key: Key{Shader: "lit", Pass: "ForwardAdd"}}
	unlit := &fakePipeline{key: Key{Shader: "unlit", Pass: "ForwardBase"}}
	cache.Insert(litBase)
	cache.Insert(litAdd)
	cache.Insert(unlit)

	cache.RemoveShader("lit")

	assert.Equal(t, 1, litBase.released)
	assert.Equal(t, 1, litAdd.released)
	assert.Zero(t, unlit.released)

	_, ok := cache.Lookup(litBase.key)
	assert.False(t, ok)
	_, ok = cache.Lookup(unlit.key)
	assert.True(t, ok)
}

func TestCacheRelease(t *testing.T) {
	cache := NewCache()
	a := &fakePipeline{key: Key{Shader: "a", Pass: "ForwardBase"}}
	b := &fakePipeline{key: Key{Shader: "b", Pass: "ForwardBase"}}
	cache.Insert(a)
	cache.Insert(b)

	cache.Release()

	assert.Equal(t, 1, a.released)
	assert.Equal(t, 1, b.released)
	_, ok := cache.Lookup(a.key)
	assert.False(t, ok)
}
