package model

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultVertex(t *testing.T) {
	v := DefaultVertex()
	assert.Equal(t, [3]float32{0, 0, 1}, v.Normal)
	assert.Equal(t, [4]float32{1, 0, 0, 1}, v.Tangent)
	assert.Equal(t, [4]float32{0, 0, 0, 1}, v.Color)
}

func TestVertexBufferLayout(t *testing.T) {
	layout := VertexBufferLayout()

	assert.Equal(t, uint64(unsafe.Sizeof(MeshVertex{})), layout.ArrayStride)
	require.Len(t, layout.Attributes, 5)

	offsets := []uint64{0, 12, 20, 32, 48}
	for i, attr := range layout.Attributes {
		assert.Equal(t, offsets[i], attr.Offset, "attribute %d", i)
		assert.Equal(t, uint32(i), attr.ShaderLocation)
	}
}

func TestNewMeshRejectsPartialTriangles(t *testing.T) {
	v := DefaultVertex()
	assert.Panics(t, func() {
		NewMesh("broken", []MeshVertex{v, v, v}, []uint32{0, 1})
	})
}

func TestNewCube(t *testing.T) {
	cube := NewCube("cube")

	assert.Equal(t, "cube", cube.Name())
	assert.Len(t, cube.Vertices(), 24)
	assert.Len(t, cube.Indices(), 36)
	assert.Equal(t, uint32(36), cube.IndexCount())
	assert.False(t, cube.Built())

	// all positions on the unit cube surface
	for _, v := range cube.Vertices() {
		for _, c := range v.Position {
			assert.InDelta(t, 0.5, abs(c), 1e-6)
		}
	}
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func TestCalcTangents(t *testing.T) {
	// one triangle in the XY plane with UVs aligned to the axes: the
	// tangent must follow +X
	vertices := []MeshVertex{
		{Position: [3]float32{0, 0, 0}, TexCoords: [2]float32{0, 0}, Normal: [3]float32{0, 0, 1}},
		{Position: [3]float32{1, 0, 0}, TexCoords: [2]float32{1, 0}, Normal: [3]float32{0, 0, 1}},
		{Position: [3]float32{0, 1, 0}, TexCoords: [2]float32{0, 1}, Normal: [3]float32{0, 0, 1}},
	}
	mesh := NewMesh("tri", vertices, []uint32{0, 1, 2})
	mesh.CalcTangents()

	for _, v := range mesh.Vertices() {
		assert.InDelta(t, 1.0, v.Tangent[0], 1e-5)
		assert.InDelta(t, 0.0, v.Tangent[1], 1e-5)
		assert.InDelta(t, 0.0, v.Tangent[2], 1e-5)
		assert.Equal(t, float32(1), v.Tangent[3])
	}
}

func TestCalcTangentsSkipsDegenerateUVs(t *testing.T) {
	// identical UVs make the determinant zero; the triangle contributes
	// nothing and the accumulator stays zero
	vertices := []MeshVertex{
		{Position: [3]float32{0, 0, 0}, Tangent: [4]float32{1, 0, 0, 1}},
		{Position: [3]float32{1, 0, 0}, Tangent: [4]float32{1, 0, 0, 1}},
		{Position: [3]float32{0, 1, 0}, Tangent: [4]float32{1, 0, 0, 1}},
	}
	mesh := NewMesh("degenerate", vertices, []uint32{0, 1, 2})
	mesh.CalcTangents()

	for _, v := range mesh.Vertices() {
		assert.Equal(t, [4]float32{0, 0, 0, 1}, v.Tangent)
	}
}

func TestGPUMeshDataMarshal(t *testing.T) {
	var d GPUMeshData
	for i := range d.Transform {
		d.Transform[i] = float32(i)
		d.TransformIV[i] = float32(100 + i)
	}

	assert.Equal(t, 128, d.Size())

	data := d.Marshal()
	require.Len(t, data, 128)
	// first float of each matrix block
	assert.Equal(t, []byte{0, 0, 0, 0}, data[0:4])
	assert.Equal(t, []byte{0, 0, 0xC8, 0x42}, data[64:68]) // 100.0
}
