package pipeline

import "sync"

// Cache is a keyed store of compiled pipelines. Draw code looks pipelines up
// by Key every frame; a miss means the material's shader declares no pass for
// the tag and the draw is skipped.
type Cache struct {
	mu        sync.RWMutex
	pipelines map[Key]Pipeline
}

// NewCache creates an empty pipeline cache.
//
// Returns:
//   - *Cache: the cache
func NewCache() *Cache {
	return &Cache{
		pipelines: make(map[Key]Pipeline),
	}
}

// Insert stores a pipeline under its key, releasing any pipeline previously
// stored there.
//
// Parameters:
//   - p: the pipeline to store
func (c *Cache) Insert(p Pipeline) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if old, ok := c.pipelines[p.Key()]; ok {
		old.Release()
	}
	c.pipelines[p.Key()] = p
}

// Lookup retrieves a pipeline by key.
//
// Parameters:
//   - key: the composite pipeline key
//
// Returns:
//   - Pipeline: the pipeline
//   - bool: false when no pipeline is stored under the key
func (c *Cache) Lookup(key Key) (Pipeline, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.pipelines[key]
	return p, ok
}

// RemoveShader releases and removes every pipeline belonging to the named
// shader, used when a shader is reloaded.
//
// Parameters:
//   - shaderName: the shader whose pipelines to drop
func (c *Cache) RemoveShader(shaderName string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, p := range c.pipelines {
		if key.Shader == shaderName {
			p.Release()
			delete(c.pipelines, key)
		}
	}
}

// Release frees every cached pipeline and empties the cache.
func (c *Cache) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, p := range c.pipelines {
		p.Release()
		delete(c.pipelines, key)
	}
}
