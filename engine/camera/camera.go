// Package camera provides the perspective camera bound at the camera slot of
// every render pipeline, and the fixed six-face cube camera used when
// rendering into cubemap targets.
package camera

import (
	"fmt"
	"math"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/penumbra3d/penumbra/common"
)

// pitchLimit stops Rotate just short of the poles so the view never flips.
const pitchLimit = 0.98

// cameraImpl is the implementation of the Camera interface.
type cameraImpl struct {
	mu *sync.Mutex

	eye    [3]float32
	target [3]float32
	up     [3]float32

	fov    float32
	aspect float32
	near   float32
	far    float32

	dirty bool

	uniformBuffer *wgpu.Buffer
	bindGroup     *wgpu.BindGroup
	built         bool
}

// Camera holds a perspective view of the scene. Movement operations mark the
// camera dirty; Update re-uploads the uniform only when something changed.
type Camera interface {
	// Eye returns the world-space camera position.
	//
	// Returns:
	//   - [3]float32: the eye position
	Eye() [3]float32

	// Target returns the world-space look-at point.
	//
	// Returns:
	//   - [3]float32: the target position
	Target() [3]float32

	// Aspect returns the aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// SetAspect sets the aspect ratio, typically on surface resize.
	//
	// Parameters:
	//   - aspect: the aspect ratio
	SetAspect(aspect float32)

	// Translate moves the eye and target together along the camera's local
	// axes.
	//
	// Parameters:
	//   - right: offset along the camera's right axis
	//   - up: offset along the camera's up axis
	//   - forward: offset along the view direction
	Translate(right, up, forward float32)

	// MoveForward moves the eye toward the target. The step is clamped so the
	// eye never reaches or crosses the target.
	//
	// Parameters:
	//   - delta: the distance to move, negative to back away
	MoveForward(delta float32)

	// Rotate orbits the view direction around the eye. Pitch is clamped
	// before the view direction reaches the up axis.
	//
	// Parameters:
	//   - yaw: rotation around the up axis in degrees
	//   - pitch: rotation around the right axis in degrees
	Rotate(yaw, pitch float32)

	// Build creates the camera uniform buffer and bind group. Build is
	// once-only: calling it again after success is a no-op.
	//
	// Parameters:
	//   - device: the wgpu device
	//   - queue: the wgpu queue for the initial upload
	//   - layout: the shared camera bind-group layout
	//
	// Returns:
	//   - error: a buffer or bind-group creation error, or nil
	Build(device *wgpu.Device, queue *wgpu.Queue, layout *wgpu.BindGroupLayout) error

	// Update re-uploads the camera uniform if the view changed since the last
	// upload.
	//
	// Parameters:
	//   - queue: the wgpu queue
	Update(queue *wgpu.Queue)

	// BindGroup returns the camera bind group, or nil before Build.
	//
	// Returns:
	//   - *wgpu.BindGroup: the camera bind group
	BindGroup() *wgpu.BindGroup

	// Release frees the uniform buffer and bind group.
	Release()
}

var _ Camera = &cameraImpl{}

// NewCamera creates a Camera with default perspective settings, looking at
// the origin from (0, 5, 5).
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the unbuilt camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:     &sync.Mutex{},
		eye:    [3]float32{0, 5, 5},
		target: [3]float32{0, 0, 0},
		up:     [3]float32{0, 1, 0},
		fov:    45.0 * (math.Pi / 180.0), // radians
		aspect: 1.0,
		near:   0.1,
		far:    100.0,
		dirty:  true,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

func (c *cameraImpl) Eye() [3]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eye
}

func (c *cameraImpl) Target() [3]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if aspect == c.aspect {
		return
	}
	c.aspect = aspect
	c.dirty = true
}

func (c *cameraImpl) Translate(right, up, forward float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	forwardAxis := common.Normalize3(common.Sub3(c.target, c.eye))
	rightAxis := common.Normalize3(common.Cross3(forwardAxis, c.up))
	offset := common.Add3(
		common.Add3(common.Scale3(rightAxis, right), common.Scale3(c.up, up)),
		common.Scale3(forwardAxis, forward),
	)
	c.eye = common.Add3(c.eye, offset)
	c.target = common.Add3(c.target, offset)
	c.dirty = true
}

func (c *cameraImpl) MoveForward(delta float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	forward := common.Sub3(c.target, c.eye)
	distance := common.Length3(forward)
	if distance == 0 {
		return
	}
	// stop just short of the target so the view direction stays defined
	if delta >= distance {
		delta = distance - 0.01
	}
	c.eye = common.Add3(c.eye, common.Scale3(common.Normalize3(forward), delta))
	c.dirty = true
}

func (c *cameraImpl) Rotate(yaw, pitch float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	forward := common.Sub3(c.target, c.eye)
	distance := common.Length3(forward)
	if distance == 0 {
		return
	}
	direction := common.Normalize3(forward)

	direction = rotateAround(direction, c.up, yaw)
	rightAxis := common.Normalize3(common.Cross3(direction, c.up))
	pitched := rotateAround(direction, rightAxis, pitch)
	if abs32(pitched[1]) < pitchLimit {
		direction = pitched
	}

	c.target = common.Add3(c.eye, common.Scale3(direction, distance))
	c.dirty = true
}

func (c *cameraImpl) Build(device *wgpu.Device, queue *wgpu.Queue, layout *wgpu.BindGroupLayout) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.built {
		return nil
	}

	uniform := c.uniformData()
	uniformBuffer, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            "Camera Uniform Buffer",
		Size:             uint64(uniform.Size()),
		Usage:            wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return fmt.Errorf("camera: failed to create uniform buffer: %w", err)
	}
	queue.WriteBuffer(uniformBuffer, 0, uniform.Marshal())

	bindGroup, err := device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Camera Bind Group",
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
		return fmt.Errorf("camera: failed to create bind group: %w", err)
	}

	c.uniformBuffer = uniformBuffer
	c.bindGroup = bindGroup
	c.built = true
	c.dirty = false
	return nil
}

func (c *cameraImpl) Update(queue *wgpu.Queue) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.built || !c.dirty {
		return
	}
	uniform := c.uniformData()
	queue.WriteBuffer(c.uniformBuffer, 0, uniform.Marshal())
	c.dirty = false
}

func (c *cameraImpl) BindGroup() *wgpu.BindGroup {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bindGroup
}

func (c *cameraImpl) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.bindGroup != nil {
		c.bindGroup.Release()
		c.bindGroup = nil
	}
	if c.uniformBuffer != nil {
		c.uniformBuffer.Release()
		c.uniformBuffer = nil
	}
	c.built = false
}

// uniformData composes the camera uniform from the current view state.
// Caller must hold the mutex.
func (c *cameraImpl) uniformData() GPUCameraUniform {
	uniform := GPUCameraUniform{
		Eye:  c.eye,
		Near: c.near,
		Far:  c.far,
	}
	common.LookAt(uniform.View[:],
		c.eye[0], c.eye[1], c.eye[2],
		c.target[0], c.target[1], c.target[2],
		c.up[0], c.up[1], c.up[2],
	)
	common.Perspective(uniform.Proj[:], c.fov, c.aspect, c.near, c.far)
	return uniform
}

// rotateAround rotates v around a unit axis by an angle in degrees using the
// Rodrigues formula.
func rotateAround(v, axis [3]float32, degrees float32) [3]float32 {
	radians := float64(degrees) * math.Pi / 180.0
	sin := float32(math.Sin(radians))
	cos := float32(math.Cos(radians))
	return common.Add3(
		common.Add3(
			common.Scale3(v, cos),
			common.Scale3(common.Cross3(axis, v), sin),
		),
		common.Scale3(axis, common.Dot3(axis, v)*(1-cos)),
	)
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
