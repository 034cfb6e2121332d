package scene

import (
	"github.com/penumbra3d/penumbra/engine/camera"
	"github.com/penumbra3d/penumbra/engine/light"
)

// SceneBuilderOption is a functional option used to configure a Scene during construction.
type SceneBuilderOption func(*scene)

// WithCamera sets the scene camera instead of the default one.
//
// Parameters:
//   - cam: the camera to use
//
// Returns:
//   - SceneBuilderOption: a function that sets the camera
func WithCamera(cam camera.Camera) SceneBuilderOption {
	return func(s *scene) {
		if cam != nil {
			s.camera = cam
		}
	}
}

// WithLights sets the scene lights instead of the default rig. Passing no
// lights leaves the scene lightless, which draws nothing lit.
//
// Parameters:
//   - lights: the lights to use
//
// Returns:
//   - SceneBuilderOption: a function that sets the lights
func WithLights(lights ...light.Light) SceneBuilderOption {
	return func(s *scene) {
		s.lights = lights
	}
}
