// Package light provides the point and directional lights bound at the light
// slot of lit pipelines. Multi-light rendering binds one light per pass: the
// first light draws with the base pass, each further light with the additive
// pass.
package light

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/penumbra3d/penumbra/common"
)

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	uniform GPULightUniform
	dirty   bool

	uniformBuffer *wgpu.Buffer
	bindGroup     *wgpu.BindGroup
	built         bool
}

// Light is a single scene light with its own uniform buffer and bind group.
type Light interface {
	// Uniform returns the light's current GPU uniform value.
	//
	// Returns:
	//   - GPULightUniform: the uniform value
	Uniform() GPULightUniform

	// SetColor sets the light's RGB intensity and marks the light dirty.
	//
	// Parameters:
	//   - r, g, b: the color components
	SetColor(r, g, b float32)

	// Build creates the light's uniform buffer and bind group. Build is
	// once-only: calling it again after success is a no-op.
	//
	// Parameters:
	//   - device: the wgpu device
	//   - queue: the wgpu queue for the initial upload
	//   - layout: the shared light bind-group layout
	//
	// Returns:
	//   - error: a buffer or bind-group creation error, or nil
	Build(device *wgpu.Device, queue *wgpu.Queue, layout *wgpu.BindGroupLayout) error

	// Update re-uploads the light uniform if it changed since the last
	// upload.
	//
	// Parameters:
	//   - queue: the wgpu queue
	Update(queue *wgpu.Queue)

	// BindGroup returns the light bind group, or nil before Build.
	//
	// Returns:
	//   - *wgpu.BindGroup: the light bind group
	BindGroup() *wgpu.BindGroup

	// Release frees the uniform buffer and bind group.
	Release()
}

var _ Light = &lightImpl{}

// NewPointLight creates a light radiating from a world-space position.
//
// Parameters:
//   - x, y, z: the world-space position
//   - r, g, b: the RGB intensity
//
// Returns:
//   - Light: the unbuilt light
func NewPointLight(x, y, z, r, g, b float32) Light {
	return &lightImpl{
		uniform: GPULightUniform{
			Position: [4]float32{x, y, z, 1},
			Color:    [4]float32{r, g, b, 1},
		},
		dirty: true,
	}
}

// NewDirectionalLight creates a light shining along a direction from
// infinitely far away. The direction is the way the light travels; it is
// normalized and negated for the shader, which wants the vector toward the
// light.
//
// Parameters:
//   - dx, dy, dz: the direction the light travels
//   - r, g, b: the RGB intensity
//
// Returns:
//   - Light: the unbuilt light
func NewDirectionalLight(dx, dy, dz, r, g, b float32) Light {
	toLight := common.Normalize3([3]float32{-dx, -dy, -dz})
	return &lightImpl{
		uniform: GPULightUniform{
			Position: [4]float32{toLight[0], toLight[1], toLight[2], 0},
			Color:    [4]float32{r, g, b, 1},
		},
		dirty: true,
	}
}

// DefaultLights returns the two-light setup scenes start with: a white key
// light and a dimmer gray fill from the opposite side.
//
// Returns:
//   - []Light: the unbuilt default lights
func DefaultLights() []Light {
	return []Light{
		NewDirectionalLight(-1, -8, -1, 1, 1, 1),
		NewDirectionalLight(1, -4, 1, 0.8, 0.8, 0.8),
	}
}

func (l *lightImpl) Uniform() GPULightUniform {
	return l.uniform
}

func (l *lightImpl) SetColor(r, g, b float32) {
	l.uniform.Color = [4]float32{r, g, b, 1}
	l.dirty = true
}

func (l *lightImpl) Build(device *wgpu.Device, queue *wgpu.Queue, layout *wgpu.BindGroupLayout) error {
	if l.built {
		return nil
	}

	uniformBuffer, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            "Light Uniform Buffer",
		Size:             uint64(l.uniform.Size()),
		Usage:            wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return fmt.Errorf("light: failed to create uniform buffer: %w", err)
	}
	queue.WriteBuffer(uniformBuffer, 0, l.uniform.Marshal())

	bindGroup, err := device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Light Bind Group",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{
				Binding: 0,
				Buffer:  uniformBuffer,
				Offset:  0,
				Size:    wgpu.WholeSize,
			},
		},
	})
	if err != nil {
		uniformBuffer.Release()
		return fmt.Errorf("light: failed to create bind group: %w", err)
	}

	l.uniformBuffer = uniformBuffer
	l.bindGroup = bindGroup
	l.built = true
	l.dirty = false
	return nil
}

func (l *lightImpl) Update(queue *wgpu.Queue) {
	if !l.built || !l.dirty {
		return
	}
	queue.WriteBuffer(l.uniformBuffer, 0, l.uniform.Marshal())
	l.dirty = false
}

func (l *lightImpl) BindGroup() *wgpu.BindGroup {
	return l.bindGroup
}

func (l *lightImpl) Release() {
	if l.bindGroup != nil {
		l.bindGroup.Release()
		l.bindGroup = nil
	}
	if l.uniformBuffer != nil {
		l.uniformBuffer.Release()
		l.uniformBuffer = nil
	}
	l.built = false
}
