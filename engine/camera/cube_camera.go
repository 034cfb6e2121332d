package camera

import (
	"fmt"
	"math"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/penumbra3d/penumbra/common"
)

// cubeFace pairs a look direction with the up vector that keeps the face
// oriented per the cubemap face convention (+X, -X, +Y, -Y, +Z, -Z).
type cubeFace struct {
	direction [3]float32
	up        [3]float32
}

var cubeFaces = [6]cubeFace{
	{direction: [3]float32{1, 0, 0}, up: [3]float32{0, -1, 0}},
	{direction: [3]float32{-1, 0, 0}, up: [3]float32{0, -1, 0}},
	{direction: [3]float32{0, 1, 0}, up: [3]float32{0, 0, 1}},
	{direction: [3]float32{0, -1, 0}, up: [3]float32{0, 0, -1}},
	{direction: [3]float32{0, 0, 1}, up: [3]float32{0, -1, 0}},
	{direction: [3]float32{0, 0, -1}, up: [3]float32{0, -1, 0}},
}

// cubeCamera is the implementation of the CubeCamera interface.
type cubeCamera struct {
	uniformBuffers [6]*wgpu.Buffer
	bindGroups     [6]*wgpu.BindGroup
	built          bool
}

// CubeCamera is a fixed camera at the origin with one prebuilt view per
// cubemap face: 90 degree field of view at aspect ratio 1, so the six faces
// tile the full sphere. Used when rendering into cubemap targets.
type CubeCamera interface {
	// Build creates the six per-face uniform buffers and bind groups. Build
	// is once-only: calling it again after success is a no-op.
	//
	// Parameters:
	//   - device: the wgpu device
	//   - queue: the wgpu queue for the uploads
	//   - layout: the shared camera bind-group layout
	//
	// Returns:
	//   - error: a buffer or bind-group creation error, or nil
	Build(device *wgpu.Device, queue *wgpu.Queue, layout *wgpu.BindGroupLayout) error

	// BindGroup returns the camera bind group for one cubemap face.
	//
	// Parameters:
	//   - face: the face index, 0 through 5 in +X, -X, +Y, -Y, +Z, -Z order
	//
	// Returns:
	//   - *wgpu.BindGroup: the face's camera bind group, or nil before Build
	BindGroup(face uint32) *wgpu.BindGroup

	// Release frees the per-face uniform buffers and bind groups.
	Release()
}

var _ CubeCamera = &cubeCamera{}

// NewCubeCamera creates an unbuilt CubeCamera.
//
// Returns:
//   - CubeCamera: the cube camera
func NewCubeCamera() CubeCamera {
	return &cubeCamera{}
}

func (c *cubeCamera) Build(device *wgpu.Device, queue *wgpu.Queue, layout *wgpu.BindGroupLayout) error {
	if c.built {
		return nil
	}

	const near, far = 0.1, 10.0
	for i, face := range cubeFaces {
		uniform := GPUCameraUniform{
			Near: near,
			Far:  far,
		}
		common.LookAt(uniform.View[:],
			0, 0, 0,
			face.direction[0], face.direction[1], face.direction[2],
			face.up[0], face.up[1], face.up[2],
		)
		common.Perspective(uniform.Proj[:], 90.0*(math.Pi/180.0), 1.0, near, far)

		buffer, err := device.CreateBuffer(&wgpu.BufferDescriptor{
			Label:            fmt.Sprintf("Cube Camera Face %d Uniform Buffer", i),
			Size:             uint64(uniform.Size()),
			Usage:            wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
			MappedAtCreation: false,
		})
		if err != nil {
			c.Release()
			return fmt.Errorf("cube camera face %d: failed to create uniform buffer: %w", i, err)
		}
		queue.WriteBuffer(buffer, 0, uniform.Marshal())
		c.uniformBuffers[i] = buffer

		bindGroup, err := device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:  fmt.Sprintf("Cube Camera Face %d Bind Group", i),
			Layout: layout,
			Entries: []wgpu.BindGroupEntry{
				{
					Binding: 0,
					Buffer:  buffer,
					Offset:  0,
					Size:    wgpu.WholeSize,
				},
			},
		})
		if err != nil {
			c.Release()
			return fmt.Errorf("cube camera face %d: failed to create bind group: %w", i, err)
		}
		c.bindGroups[i] = bindGroup
	}

	c.built = true
	return nil
}

func (c *cubeCamera) BindGroup(face uint32) *wgpu.BindGroup {
	if face >= 6 {
		return nil
	}
	return c.bindGroups[face]
}

func (c *cubeCamera) Release() {
	for i := range 6 {
		if c.bindGroups[i] != nil {
			c.bindGroups[i].Release()
			c.bindGroups[i] = nil
		}
		if c.uniformBuffers[i] != nil {
			c.uniformBuffers[i].Release()
			c.uniformBuffers[i] = nil
		}
	}
	c.built = false
}
