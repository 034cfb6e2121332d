// Package material implements material instances: a CPU-side uniform byte
// block laid out by the owning shader plus the texture set bound alongside
// it. Instances exclusively own their GPU buffer and bind group; shared
// placeholder textures live in Defaults and are never released by a material.
package material

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/penumbra3d/penumbra/engine/renderer/shader"
	"github.com/penumbra3d/penumbra/engine/texture"
)

// material is the implementation of the Material interface.
type material struct {
	name   string
	shader shader.Shader

	uniformBytes []byte
	textures     map[string]texture.Texture
	dirty        bool

	device        *wgpu.Device
	defaults      *Defaults
	uniformBuffer *wgpu.Buffer
	bindGroup     *wgpu.BindGroup
	built         bool
}

// Material is an instance of a shader with its own property values. Uniform
// setters write into a CPU-side byte block at the offsets the shader's layout
// declares; Update uploads the block. Setters targeting an undeclared name,
// or a name declared with a different type, are silent no-ops so materials
// survive shader edits during development.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// Shader retrieves the shader this material instantiates.
	//
	// Returns:
	//   - shader.Shader: the owning shader
	Shader() shader.Shader

	// SetFloat writes a float property value.
	//
	// Parameters:
	//   - name: the declared property name
	//   - value: the value to write
	SetFloat(name string, value float32)

	// SetVec2 writes a vec2 property value.
	//
	// Parameters:
	//   - name: the declared property name
	//   - value: the value to write
	SetVec2(name string, value [2]float32)

	// SetVec3 writes a vec3 property value.
	//
	// Parameters:
	//   - name: the declared property name
	//   - value: the value to write
	SetVec3(name string, value [3]float32)

	// SetVec4 writes a vec4 property value.
	//
	// Parameters:
	//   - name: the declared property name
	//   - value: the value to write
	SetVec4(name string, value [4]float32)

	// SetMat3 writes a mat3 property value as three 16-byte columns, each
	// column padded with a trailing zero float.
	//
	// Parameters:
	//   - name: the declared property name
	//   - value: the column-major 3x3 matrix
	SetMat3(name string, value [9]float32)

	// SetMat4 writes a mat4 property value.
	//
	// Parameters:
	//   - name: the declared property name
	//   - value: the column-major 4x4 matrix
	SetMat4(name string, value [16]float32)

	// SetTexture assigns a texture to a declared texture property. The
	// assignment is ignored when the name is undeclared or the texture's kind
	// differs from the declared kind. After Build the bind group is recreated
	// to pick up the new texture.
	//
	// Parameters:
	//   - name: the declared texture property name
	//   - tex: the texture to bind
	//
	// Returns:
	//   - error: a bind-group recreation error, or nil
	SetTexture(name string, tex texture.Texture) error

	// Texture retrieves the texture assigned to a property, or nil when the
	// property still resolves to its declared default.
	//
	// Parameters:
	//   - name: the declared texture property name
	//
	// Returns:
	//   - texture.Texture: the assigned texture, or nil
	Texture(name string) texture.Texture

	// UniformBytes returns the CPU-side uniform block.
	//
	// Returns:
	//   - []byte: the block, len = the shader layout's size
	UniformBytes() []byte

	// Build creates the uniform buffer and bind group. Unassigned texture
	// properties resolve to the shared placeholder matching their declared
	// kind and default tag. Build is once-only: calling it again after
	// success is a no-op.
	//
	// Parameters:
	//   - device: the wgpu device
	//   - queue: the wgpu queue for the initial uniform upload
	//   - defaults: the shared placeholder textures
	//
	// Returns:
	//   - error: shader.ErrNotBuilt when the shader is unbuilt, or a creation error
	Build(device *wgpu.Device, queue *wgpu.Queue, defaults *Defaults) error

	// Built reports whether Build has succeeded.
	//
	// Returns:
	//   - bool: true after a successful Build
	Built() bool

	// Update uploads the uniform block if any setter ran since the last
	// upload. A no-op when the block is clean.
	//
	// Parameters:
	//   - queue: the wgpu queue
	//
	// Returns:
	//   - error: shader.ErrNotBuilt before a successful Build, or nil
	Update(queue *wgpu.Queue) error

	// BindGroup returns the material bind group, or nil before Build.
	//
	// Returns:
	//   - *wgpu.BindGroup: the bind group
	BindGroup() *wgpu.BindGroup

	// Release frees the uniform buffer and bind group. Assigned and default
	// textures are shared resources and are left alone.
	Release()
}

var _ Material = &material{}

// NewMaterial creates a material instance of a shader. The uniform block is
// zero-initialized at the layout's size and every texture property starts on
// its declared default.
//
// Parameters:
//   - name: the material identifier
//   - s: the shader to instantiate
//
// Returns:
//   - Material: the unbuilt material
func NewMaterial(name string, s shader.Shader) Material {
	if name == "" {
		panic("material: name must not be empty")
	}
	textures := make(map[string]texture.Texture, s.TextureSlots().Len())
	for _, t := range s.TextureSlots().Properties() {
		textures[t.Name] = nil
	}
	return &material{
		name:         name,
		shader:       s,
		uniformBytes: make([]byte, s.UniformLayout().Size()),
		textures:     textures,
	}
}

func (m *material) Name() string {
	return m.name
}

func (m *material) Shader() shader.Shader {
	return m.shader
}

func (m *material) SetFloat(name string, value float32) {
	m.setUniform(name, shader.UniformFloat, []float32{value})
}

func (m *material) SetVec2(name string, value [2]float32) {
	m.setUniform(name, shader.UniformVec2, value[:])
}

func (m *material) SetVec3(name string, value [3]float32) {
	m.setUniform(name, shader.UniformVec3, value[:])
}

func (m *material) SetVec4(name string, value [4]float32) {
	m.setUniform(name, shader.UniformVec4, value[:])
}

func (m *material) SetMat3(name string, value [9]float32) {
	// three 16-byte columns, trailing float of each column left zero
	padded := []float32{
		value[0], value[1], value[2], 0,
		value[3], value[4], value[5], 0,
		value[6], value[7], value[8], 0,
	}
	m.setUniform(name, shader.UniformMat3, padded)
}

func (m *material) SetMat4(name string, value [16]float32) {
	m.setUniform(name, shader.UniformMat4, value[:])
}

// setUniform writes the values at the property's offset when the name is
// declared with the expected type.
func (m *material) setUniform(name string, expected shader.UniformProperty, values []float32) {
	layout := m.shader.UniformLayout()
	prop, ok := layout.PropertyOf(name)
	if !ok || prop != expected {
		return
	}
	offset, _ := layout.OffsetOf(name)
	for i, v := range values {
		binary.LittleEndian.PutUint32(m.uniformBytes[int(offset)+i*4:], math.Float32bits(v))
	}
	m.dirty = true
}

func (m *material) SetTexture(name string, tex texture.Texture) error {
	prop, ok := m.shader.TextureSlots().PropertyOf(name)
	if !ok || tex == nil || tex.Kind() != prop.Kind {
		return nil
	}
	m.textures[name] = tex
	if !m.built {
		return nil
	}
	bindGroup, err := m.createBindGroup()
	if err != nil {
		return fmt.Errorf("material %s: failed to rebind texture %s: %w", m.name, name, err)
	}
	m.bindGroup.Release()
	m.bindGroup = bindGroup
	return nil
}

func (m *material) Texture(name string) texture.Texture {
	return m.textures[name]
}

func (m *material) UniformBytes() []byte {
	return m.uniformBytes
}

func (m *material) Build(device *wgpu.Device, queue *wgpu.Queue, defaults *Defaults) error {
	if m.built {
		return nil
	}
	if !m.shader.Built() {
		return fmt.Errorf("material %s: shader %s: %w", m.name, m.shader.Name(), shader.ErrNotBuilt)
	}

	uniformBuffer, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            m.name + " Material Uniform Buffer",
		Size:             uint64(len(m.uniformBytes)),
		Usage:            wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return fmt.Errorf("material %s: failed to create uniform buffer: %w", m.name, err)
	}
	queue.WriteBuffer(uniformBuffer, 0, m.uniformBytes)

	m.device = device
	m.defaults = defaults
	m.uniformBuffer = uniformBuffer
	bindGroup, err := m.createBindGroup()
	if err != nil {
		uniformBuffer.Release()
		m.device = nil
		m.defaults = nil
		m.uniformBuffer = nil
		return fmt.Errorf("material %s: failed to create bind group: %w", m.name, err)
	}

	m.bindGroup = bindGroup
	m.built = true
	m.dirty = false
	return nil
}

func (m *material) Built() bool {
	return m.built
}

func (m *material) Update(queue *wgpu.Queue) error {
	if !m.built {
		return fmt.Errorf("material %s: %w", m.name, shader.ErrNotBuilt)
	}
	if !m.dirty {
		return nil
	}
	queue.WriteBuffer(m.uniformBuffer, 0, m.uniformBytes)
	m.dirty = false
	return nil
}

func (m *material) BindGroup() *wgpu.BindGroup {
	return m.bindGroup
}

func (m *material) Release() {
	if m.bindGroup != nil {
		m.bindGroup.Release()
		m.bindGroup = nil
	}
	if m.uniformBuffer != nil {
		m.uniformBuffer.Release()
		m.uniformBuffer = nil
	}
	m.built = false
}

// createBindGroup assembles the bind group from the uniform buffer and the
// current texture set, substituting defaults for unassigned properties.
func (m *material) createBindGroup() (*wgpu.BindGroup, error) {
	layout, err := m.shader.BindGroupLayout()
	if err != nil {
		return nil, err
	}

	slots := m.shader.TextureSlots()
	entries := make([]wgpu.BindGroupEntry, 0, 1+2*slots.Len())
	entries = append(entries, wgpu.BindGroupEntry{
		Binding: 0,
		Buffer:  m.uniformBuffer,
		Offset:  0,
		Size:    wgpu.WholeSize,
	})
	for i, t := range slots.Properties() {
		tex := m.textures[t.Name]
		if tex == nil {
			tex = m.defaults.Resolve(t.Property)
		}
		entries = append(entries,
			wgpu.BindGroupEntry{
				Binding:     uint32(i)*2 + 1,
				TextureView: tex.View(),
			},
			wgpu.BindGroupEntry{
				Binding: uint32(i)*2 + 2,
				Sampler: tex.Sampler(),
			},
		)
	}

	return m.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   m.name + " Material Bind Group",
		Layout:  layout,
		Entries: entries,
	})
}
