// Package scene groups a camera, lights, draw items and an environment into
// one renderable unit and keeps their GPU-side uniforms current.
package scene

import (
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/penumbra3d/penumbra/engine/camera"
	"github.com/penumbra3d/penumbra/engine/light"
	"github.com/penumbra3d/penumbra/engine/model"
	"github.com/penumbra3d/penumbra/engine/renderer"
	"github.com/penumbra3d/penumbra/engine/renderer/envmap"
	"github.com/penumbra3d/penumbra/engine/renderer/material"
)

// scene is the implementation of the Scene interface.
type scene struct {
	mu *sync.Mutex

	name string

	camera      camera.Camera
	lights      []light.Light
	environment envmap.EnvironmentMap

	nextID uint64
	items  map[uint64]renderer.DrawItem

	// order preserves insertion order so draw submission is deterministic.
	order []uint64
}

// Scene owns the objects a frame draws. Items are identified by the handle
// Add returns; the draw order is the insertion order. Thread-safe.
type Scene interface {
	// Name returns the scene's identifier.
	//
	// Returns:
	//   - string: the name
	Name() string

	// Camera returns the scene camera.
	//
	// Returns:
	//   - camera.Camera: the camera
	Camera() camera.Camera

	// Lights returns the scene lights in the order they were added.
	//
	// Returns:
	//   - []light.Light: a copy of the light list
	Lights() []light.Light

	// AddLight appends a light to the scene.
	//
	// Parameters:
	//   - l: the light to add
	AddLight(l light.Light)

	// Environment returns the scene's environment map, or nil when the scene
	// has none.
	//
	// Returns:
	//   - envmap.EnvironmentMap: the environment
	Environment() envmap.EnvironmentMap

	// SetEnvironment replaces the scene's environment map. The previous
	// environment is not released; the caller owns both.
	//
	// Parameters:
	//   - env: the new environment, or nil for none
	SetEnvironment(env envmap.EnvironmentMap)

	// Add registers a mesh with the material it draws with.
	//
	// Parameters:
	//   - mesh: the mesh
	//   - mat: the material
	//
	// Returns:
	//   - uint64: a handle for Remove
	Add(mesh model.Mesh, mat material.Material) uint64

	// Remove drops a previously added item. Unknown handles are ignored. The
	// mesh and material are not released; the caller owns them.
	//
	// Parameters:
	//   - id: the handle returned by Add
	Remove(id uint64)

	// Items returns the draw items in insertion order.
	//
	// Returns:
	//   - []renderer.DrawItem: a copy of the item list
	Items() []renderer.DrawItem

	// Build uploads every unbuilt object in the scene: the camera, the
	// lights, and each item's mesh and material.
	//
	// Parameters:
	//   - ctx: the graphics context providing device, queue and layouts
	//
	// Returns:
	//   - error: the first build failure
	Build(ctx renderer.GraphicsContext) error

	// Update flushes dirty uniforms of the camera, lights, meshes and
	// materials to the GPU. Call once per frame before rendering.
	//
	// Parameters:
	//   - queue: the wgpu queue
	//
	// Returns:
	//   - error: the first upload failure
	Update(queue *wgpu.Queue) error

	// Release frees the camera and lights the scene owns. Meshes, materials
	// and the environment are owned by their creators.
	Release()
}

var _ Scene = &scene{}

// New creates a scene. Without options the scene gets a default camera and
// the default light rig.
//
// Parameters:
//   - name: the scene identifier
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the scene
func New(name string, options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:    &sync.Mutex{},
		name:  name,
		items: make(map[uint64]renderer.DrawItem),
	}
	for _, option := range options {
		option(s)
	}
	if s.camera == nil {
		s.camera = camera.NewCamera()
	}
	if s.lights == nil {
		s.lights = light.DefaultLights()
	}
	return s
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Camera() camera.Camera {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.camera
}

func (s *scene) Lights() []light.Light {
	s.mu.Lock()
	defer s.mu.Unlock()
	lights := make([]light.Light, len(s.lights))
	copy(lights, s.lights)
	return lights
}

func (s *scene) AddLight(l light.Light) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lights = append(s.lights, l)
}

func (s *scene) Environment() envmap.EnvironmentMap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.environment
}

func (s *scene) SetEnvironment(env envmap.EnvironmentMap) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.environment = env
}

func (s *scene) Add(mesh model.Mesh, mat material.Material) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.items[id] = renderer.DrawItem{Mesh: mesh, Material: mat}
	s.order = append(s.order, id)
	return id
}

func (s *scene) Remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return
	}
	delete(s.items, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *scene) Items() []renderer.DrawItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]renderer.DrawItem, 0, len(s.order))
	for _, id := range s.order {
		items = append(items, s.items[id])
	}
	return items
}

func (s *scene) Build(ctx renderer.GraphicsContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	device, queue := ctx.Device(), ctx.Queue()

	if err := s.camera.Build(device, queue, ctx.CameraLayout()); err != nil {
		return fmt.Errorf("scene %s: failed to build camera: %w", s.name, err)
	}
	for _, l := range s.lights {
		if err := l.Build(device, queue, ctx.LightLayout()); err != nil {
			return fmt.Errorf("scene %s: failed to build light: %w", s.name, err)
		}
	}
	for _, id := range s.order {
		item := s.items[id]
		if !item.Mesh.Built() {
			if err := item.Mesh.Build(device, queue, ctx.ObjectLayout()); err != nil {
				return fmt.Errorf("scene %s: failed to build mesh %s: %w", s.name, item.Mesh.Name(), err)
			}
		}
		if !item.Material.Built() {
			if err := item.Material.Build(device, queue, ctx.Defaults()); err != nil {
				return fmt.Errorf("scene %s: failed to build material %s: %w", s.name, item.Material.Name(), err)
			}
		}
	}
	return nil
}

func (s *scene) Update(queue *wgpu.Queue) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.camera.Update(queue)
	for _, l := range s.lights {
		l.Update(queue)
	}
	for _, id := range s.order {
		item := s.items[id]
		if item.Mesh.Built() {
			item.Mesh.Update(queue)
		}
		if item.Material.Built() {
			if err := item.Material.Update(queue); err != nil {
				return fmt.Errorf("scene %s: failed to update material %s: %w", s.name, item.Material.Name(), err)
			}
		}
	}
	return nil
}

func (s *scene) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range s.lights {
		l.Release()
	}
	s.lights = nil
	if s.camera != nil {
		s.camera.Release()
		s.camera = nil
	}
}
