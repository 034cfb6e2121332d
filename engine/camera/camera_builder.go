package camera

// CameraBuilderOption is a functional option used to configure a Camera during construction.
type CameraBuilderOption func(*cameraImpl)

// WithEye sets the initial world-space camera position.
//
// Parameters:
//   - x, y, z: the eye position components
//
// Returns:
//   - CameraBuilderOption: a function that sets the eye position
func WithEye(x, y, z float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.eye = [3]float32{x, y, z}
	}
}

// WithTarget sets the initial world-space look-at point.
//
// Parameters:
//   - x, y, z: the target position components
//
// Returns:
//   - CameraBuilderOption: a function that sets the target position
func WithTarget(x, y, z float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.target = [3]float32{x, y, z}
	}
}

// WithUp sets the camera's up vector.
//
// Parameters:
//   - x, y, z: the up vector components
//
// Returns:
//   - CameraBuilderOption: a function that sets the up vector
func WithUp(x, y, z float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.up = [3]float32{x, y, z}
	}
}

// WithFov sets the field of view in radians.
//
// Parameters:
//   - fov: the field of view in radians
//
// Returns:
//   - CameraBuilderOption: a function that sets the field of view
func WithFov(fov float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.fov = fov
	}
}

// WithAspect sets the aspect ratio (width / height).
//
// Parameters:
//   - aspect: the aspect ratio
//
// Returns:
//   - CameraBuilderOption: a function that sets the aspect ratio
func WithAspect(aspect float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.aspect = aspect
	}
}

// WithClipPlanes sets the near and far clipping plane distances.
//
// Parameters:
//   - near: the near plane distance
//   - far: the far plane distance
//
// Returns:
//   - CameraBuilderOption: a function that sets the clip planes
func WithClipPlanes(near, far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.near = near
		c.far = far
	}
}
