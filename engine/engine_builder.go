package engine

import (
	"github.com/charmbracelet/log"

	"github.com/penumbra3d/penumbra/engine/renderer"
	"github.com/penumbra3d/penumbra/engine/scene"
)

// EngineBuilderOption is a functional option used to configure an Engine during construction.
type EngineBuilderOption func(*engine)

// WithTitle sets the window title.
//
// Parameters:
//   - title: the title bar text
//
// Returns:
//   - EngineBuilderOption: a function that sets the title
func WithTitle(title string) EngineBuilderOption {
	return func(e *engine) {
		e.title = title
	}
}

// WithSize sets the initial window size.
//
// Parameters:
//   - width, height: the initial size in screen coordinates
//
// Returns:
//   - EngineBuilderOption: a function that sets the size
func WithSize(width, height int) EngineBuilderOption {
	return func(e *engine) {
		if width > 0 && height > 0 {
			e.width, e.height = width, height
		}
	}
}

// WithVSync locks presentation to the display refresh rate.
//
// Returns:
//   - EngineBuilderOption: a function that enables vsync
func WithVSync() EngineBuilderOption {
	return func(e *engine) {
		e.presentMode = renderer.PresentModeVSync
	}
}

// WithFallbackAdapter forces the software rendering adapter.
//
// Returns:
//   - EngineBuilderOption: a function that forces the fallback adapter
func WithFallbackAdapter() EngineBuilderOption {
	return func(e *engine) {
		e.forceFallback = true
	}
}

// WithProfiling enables the per-second frame stats log line.
//
// Returns:
//   - EngineBuilderOption: a function that enables profiling
func WithProfiling() EngineBuilderOption {
	return func(e *engine) {
		e.profiled = true
	}
}

// WithHotReload reloads shader descriptions when their files change on disk.
//
// Returns:
//   - EngineBuilderOption: a function that enables hot reload
func WithHotReload() EngineBuilderOption {
	return func(e *engine) {
		e.hotReload = true
	}
}

// WithScene sets the scene instead of the default empty one.
//
// Parameters:
//   - s: the scene to use
//
// Returns:
//   - EngineBuilderOption: a function that sets the scene
func WithScene(s scene.Scene) EngineBuilderOption {
	return func(e *engine) {
		if s != nil {
			e.scene = s
		}
	}
}

// WithEngineLogger sets the logger the engine and its library report to.
//
// Parameters:
//   - logger: the logger to use
//
// Returns:
//   - EngineBuilderOption: a function that sets the logger
func WithEngineLogger(logger *log.Logger) EngineBuilderOption {
	return func(e *engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}
