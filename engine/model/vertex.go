// Package model holds the fixed mesh vertex record and the Mesh type: vertex
// and index data with a world transform, bound to GPU buffers and an object
// uniform for drawing.
package model

import (
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
)

// MeshVertex is the fixed vertex record every render pipeline consumes:
// position, texture coordinates, normal, tangent and color, tightly packed in
// that order at shader locations 0 through 4.
type MeshVertex struct {
	Position  [3]float32
	TexCoords [2]float32
	Normal    [3]float32
	Tangent   [4]float32
	Color     [4]float32
}

// DefaultVertex returns a vertex with a +Z normal, +X tangent and opaque
// black color.
func DefaultVertex() MeshVertex {
	return MeshVertex{
		Normal:  [3]float32{0, 0, 1},
		Tangent: [4]float32{1, 0, 0, 1},
		Color:   [4]float32{0, 0, 0, 1},
	}
}

// VertexBufferLayout returns the wgpu vertex buffer layout matching MeshVertex.
//
// Returns:
//   - wgpu.VertexBufferLayout: the tightly packed five-attribute layout
func VertexBufferLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: uint64(unsafe.Sizeof(MeshVertex{})),
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{
				// position
				Format:         wgpu.VertexFormatFloat32x3,
				Offset:         0,
				ShaderLocation: 0,
			},
			{
				// texcoord
				Format:         wgpu.VertexFormatFloat32x2,
				Offset:         3 * 4,
				ShaderLocation: 1,
			},
			{
				// normal
				Format:         wgpu.VertexFormatFloat32x3,
				Offset:         5 * 4,
				ShaderLocation: 2,
			},
			{
				// tangent
				Format:         wgpu.VertexFormatFloat32x4,
				Offset:         8 * 4,
				ShaderLocation: 3,
			},
			{
				// color
				Format:         wgpu.VertexFormatFloat32x4,
				Offset:         12 * 4,
				ShaderLocation: 4,
			},
		},
	}
}
