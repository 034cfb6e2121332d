package light

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// GPULightUniform is the GPU-aligned representation of one light, bound at
// the light slot of lit pipelines. Position.w distinguishes the kinds: 1 for
// a point light's world position, 0 for a directional light's direction
// toward the scene.
// Size: 32 bytes (two vec4<f32>, std140 aligned, no padding required).
type GPULightUniform struct {
	Position [4]float32 // offset  0: position (w = 1) or negated direction (w = 0)
	Color    [4]float32 // offset 16: RGB intensity, alpha unused
}

// Size returns the size of the GPULightUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (32)
func (g *GPULightUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPULightUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPULightUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.Position[i]))
	}
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[16+i*4:], math.Float32bits(g.Color[i]))
	}
	return buf
}
