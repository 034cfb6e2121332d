package model

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUMeshData is the GPU-aligned representation of the per-object uniform
// bound at the object slot of every lit pipeline.
// Size: 128 bytes (two mat4x4<f32>, std140 aligned, no padding required).
type GPUMeshData struct {
	Transform   [16]float32 // offset  0: model-to-world transform (64 bytes)
	TransformIV [16]float32 // offset 64: inverse-transpose of Transform, for normal vectors (64 bytes)
}

// Size returns the size of the GPUMeshData struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUMeshData) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUMeshData struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 128-byte buffer ready for GPU upload.
func (g *GPUMeshData) Marshal() []byte {
	buf := make([]byte, 128)
	for i := 0; i < 16; i++ {
		binary.LittleEndian.PutUint32(buf[i*4:(i+1)*4], math.Float32bits(g.Transform[i]))
	}
	for i := 0; i < 16; i++ {
		binary.LittleEndian.PutUint32(buf[64+i*4:64+(i+1)*4], math.Float32bits(g.TransformIV[i]))
	}
	return buf
}
