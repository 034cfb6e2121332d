package camera

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUCameraUniform is the GPU-aligned representation of the camera uniform
// buffer bound at the camera slot of every pipeline.
// Size: 160 bytes (std140 / WGSL aligned, struct size rounded to 16).
type GPUCameraUniform struct {
	View  [16]float32 // offset   0: world-to-view matrix (mat4x4<f32>)
	Proj  [16]float32 // offset  64: view-to-clip matrix, [0, 1] depth (mat4x4<f32>)
	Eye   [3]float32  // offset 128: world-space camera position (vec3<f32>)
	_pad  float32     // offset 140: padding to align the trailing scalars
	Near  float32     // offset 144: near plane distance
	Far   float32     // offset 148: far plane distance
	_tail [2]float32  // offset 152: padding to the 16-byte struct round
}

// Size returns the size of the GPUCameraUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (160)
func (g *GPUCameraUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUCameraUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUCameraUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.View[i]))
	}
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[64+i*4:], math.Float32bits(g.Proj[i]))
	}
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[128+i*4:], math.Float32bits(g.Eye[i]))
	}
	binary.LittleEndian.PutUint32(buf[144:], math.Float32bits(g.Near))
	binary.LittleEndian.PutUint32(buf[148:], math.Float32bits(g.Far))
	return buf
}
