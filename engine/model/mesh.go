package model

import (
	"fmt"
	"math"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/penumbra3d/penumbra/common"
)

// mesh is the implementation of the Mesh interface.
type mesh struct {
	name     string
	vertices []MeshVertex
	indices  []uint32

	position [3]float32
	rotation [3]float32
	scale    [3]float32
	dirty    bool

	vertexBuffer  *wgpu.Buffer
	indexBuffer   *wgpu.Buffer
	uniformBuffer *wgpu.Buffer
	bindGroup     *wgpu.BindGroup
	built         bool
}

// Mesh is indexed triangle geometry with a world transform. Build uploads the
// vertex and index data and creates the per-object uniform bind group;
// Update re-uploads the uniform when the transform has changed since the last
// upload.
type Mesh interface {
	// Name retrieves the mesh identifier.
	//
	// Returns:
	//   - string: the mesh name
	Name() string

	// Vertices returns the CPU-side vertex data.
	//
	// Returns:
	//   - []MeshVertex: the vertices
	Vertices() []MeshVertex

	// Indices returns the CPU-side index data.
	//
	// Returns:
	//   - []uint32: the triangle indices
	Indices() []uint32

	// IndexCount returns the number of indices to draw.
	//
	// Returns:
	//   - uint32: the index count
	IndexCount() uint32

	// SetPosition sets the world-space translation and marks the transform dirty.
	//
	// Parameters:
	//   - x, y, z: the translation components
	SetPosition(x, y, z float32)

	// SetRotation sets the Euler rotation in degrees (applied Z, then Y, then X)
	// and marks the transform dirty.
	//
	// Parameters:
	//   - x, y, z: the rotation angles in degrees
	SetRotation(x, y, z float32)

	// SetScale sets the per-axis scale and marks the transform dirty.
	//
	// Parameters:
	//   - x, y, z: the scale factors
	SetScale(x, y, z float32)

	// CalcTangents recomputes per-vertex tangents from the positions and
	// texture coordinates. Tangents are accumulated per triangle, normalized
	// per vertex, and stored with w = 1.
	CalcTangents()

	// Build uploads vertex and index buffers and creates the object uniform
	// buffer and bind group. Build is once-only: calling it again after
	// success is a no-op.
	//
	// Parameters:
	//   - device: the wgpu device
	//   - queue: the wgpu queue for the initial uniform upload
	//   - objectLayout: the shared per-object bind-group layout
	//
	// Returns:
	//   - error: a buffer or bind-group creation error, or nil
	Build(device *wgpu.Device, queue *wgpu.Queue, objectLayout *wgpu.BindGroupLayout) error

	// Built reports whether Build has succeeded.
	//
	// Returns:
	//   - bool: true after a successful Build
	Built() bool

	// Update re-uploads the object uniform if the transform changed since the
	// last upload. A no-op when the transform is clean.
	//
	// Parameters:
	//   - queue: the wgpu queue
	Update(queue *wgpu.Queue)

	// VertexBuffer returns the GPU vertex buffer, or nil before Build.
	//
	// Returns:
	//   - *wgpu.Buffer: the vertex buffer
	VertexBuffer() *wgpu.Buffer

	// IndexBuffer returns the GPU index buffer, or nil before Build.
	//
	// Returns:
	//   - *wgpu.Buffer: the index buffer
	IndexBuffer() *wgpu.Buffer

	// BindGroup returns the per-object bind group, or nil before Build.
	//
	// Returns:
	//   - *wgpu.BindGroup: the object bind group
	BindGroup() *wgpu.BindGroup

	// Release frees the GPU buffers and bind group.
	Release()
}

var _ Mesh = &mesh{}

// NewMesh creates a Mesh from vertex and index data with an identity
// transform. GPU objects are deferred to Build.
//
// Parameters:
//   - name: the mesh identifier
//   - vertices: the vertex data
//   - indices: the triangle indices, three per triangle
//
// Returns:
//   - Mesh: the unbuilt mesh
func NewMesh(name string, vertices []MeshVertex, indices []uint32) Mesh {
	if len(indices)%3 != 0 {
		panic(fmt.Sprintf("model: mesh %s index count %d is not a multiple of 3", name, len(indices)))
	}
	return &mesh{
		name:     name,
		vertices: vertices,
		indices:  indices,
		scale:    [3]float32{1, 1, 1},
		dirty:    true,
	}
}

func (m *mesh) Name() string {
	return m.name
}

func (m *mesh) Vertices() []MeshVertex {
	return m.vertices
}

func (m *mesh) Indices() []uint32 {
	return m.indices
}

func (m *mesh) IndexCount() uint32 {
	return uint32(len(m.indices))
}

func (m *mesh) SetPosition(x, y, z float32) {
	m.position = [3]float32{x, y, z}
	m.dirty = true
}

func (m *mesh) SetRotation(x, y, z float32) {
	m.rotation = [3]float32{x, y, z}
	m.dirty = true
}

func (m *mesh) SetScale(x, y, z float32) {
	m.scale = [3]float32{x, y, z}
	m.dirty = true
}

func (m *mesh) CalcTangents() {
	accumulated := make([][3]float32, len(m.vertices))
	for i := 0; i+2 < len(m.indices); i += 3 {
		i0, i1, i2 := m.indices[i], m.indices[i+1], m.indices[i+2]
		v0, v1, v2 := &m.vertices[i0], &m.vertices[i1], &m.vertices[i2]

		e1 := common.Sub3(v1.Position, v0.Position)
		e2 := common.Sub3(v2.Position, v0.Position)
		du1 := v1.TexCoords[0] - v0.TexCoords[0]
		dv1 := v1.TexCoords[1] - v0.TexCoords[1]
		du2 := v2.TexCoords[0] - v0.TexCoords[0]
		dv2 := v2.TexCoords[1] - v0.TexCoords[1]

		det := du1*dv2 - du2*dv1
		if det == 0 {
			continue
		}
		f := 1.0 / det
		tangent := common.Normalize3(common.Sub3(
			common.Scale3(e1, f*dv2),
			common.Scale3(e2, f*dv1),
		))
		for _, idx := range []uint32{i0, i1, i2} {
			accumulated[idx] = common.Add3(accumulated[idx], tangent)
		}
	}
	for i := range m.vertices {
		t := common.Normalize3(accumulated[i])
		m.vertices[i].Tangent = [4]float32{t[0], t[1], t[2], 1}
	}
}

func (m *mesh) Build(device *wgpu.Device, queue *wgpu.Queue, objectLayout *wgpu.BindGroupLayout) error {
	if m.built {
		return nil
	}

	vertexData := common.SliceToBytes(m.vertices)
	vertexBuffer, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            m.name + " Vertex Buffer",
		Size:             uint64(len(vertexData)),
		Usage:            wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return fmt.Errorf("mesh %s: failed to create vertex buffer: %w", m.name, err)
	}
	queue.WriteBuffer(vertexBuffer, 0, vertexData)

	indexData := common.SliceToBytes(m.indices)
	indexBuffer, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            m.name + " Index Buffer",
		Size:             uint64(len(indexData)),
		Usage:            wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		vertexBuffer.Release()
		return fmt.Errorf("mesh %s: failed to create index buffer: %w", m.name, err)
	}
	queue.WriteBuffer(indexBuffer, 0, indexData)

	uniform := m.uniformData()
	uniformBuffer, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            m.name + " Object Uniform Buffer",
		Size:             uint64(uniform.Size()),
		Usage:            wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		vertexBuffer.Release()
		indexBuffer.Release()
		return fmt.Errorf("mesh %s: failed to create uniform buffer: %w", m.name, err)
	}
	queue.WriteBuffer(uniformBuffer, 0, uniform.Marshal())

	bindGroup, err := device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  m.name + " Object Bind Group",
		Layout: objectLayout,
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
		vertexBuffer.Release()
		indexBuffer.Release()
		uniformBuffer.Release()
		return fmt.Errorf("mesh %s: failed to create bind group: %w", m.name, err)
	}

	m.vertexBuffer = vertexBuffer
	m.indexBuffer = indexBuffer
	m.uniformBuffer = uniformBuffer
	m.bindGroup = bindGroup
	m.built = true
	m.dirty = false
	return nil
}

func (m *mesh) Built() bool {
	return m.built
}

func (m *mesh) Update(queue *wgpu.Queue) {
	if !m.built || !m.dirty {
		return
	}
	uniform := m.uniformData()
	queue.WriteBuffer(m.uniformBuffer, 0, uniform.Marshal())
	m.dirty = false
}

func (m *mesh) VertexBuffer() *wgpu.Buffer {
	return m.vertexBuffer
}

func (m *mesh) IndexBuffer() *wgpu.Buffer {
	return m.indexBuffer
}

func (m *mesh) BindGroup() *wgpu.BindGroup {
	return m.bindGroup
}

func (m *mesh) Release() {
	if m.bindGroup != nil {
		m.bindGroup.Release()
		m.bindGroup = nil
	}
	if m.uniformBuffer != nil {
		m.uniformBuffer.Release()
		m.uniformBuffer = nil
	}
	if m.indexBuffer != nil {
		m.indexBuffer.Release()
		m.indexBuffer = nil
	}
	if m.vertexBuffer != nil {
		m.vertexBuffer.Release()
		m.vertexBuffer = nil
	}
	m.built = false
}

// uniformData composes the object uniform from the current transform. The
// inverse-transpose falls back to the transform itself when the matrix is
// singular.
func (m *mesh) uniformData() GPUMeshData {
	var data GPUMeshData
	const degToRad = math.Pi / 180.0
	transform := make([]float32, 16)
	common.BuildModelMatrix(transform,
		m.position[0], m.position[1], m.position[2],
		m.rotation[0]*degToRad, m.rotation[1]*degToRad, m.rotation[2]*degToRad,
		m.scale[0], m.scale[1], m.scale[2],
	)
	inverse := make([]float32, 16)
	inverseTranspose := make([]float32, 16)
	if common.Invert4(inverse, transform) {
		common.Transpose4(inverseTranspose, inverse)
	} else {
		copy(inverseTranspose, transform)
	}
	copy(data.Transform[:], transform)
	copy(data.TransformIV[:], inverseTranspose)
	return data
}
