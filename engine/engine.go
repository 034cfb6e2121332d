// Package engine assembles the window, graphics context, renderer, asset
// library and scene into a runnable application: it drives the frame loop,
// routes input to the scene camera and loads environments and shader
// descriptions.
package engine

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/charmbracelet/log"

	"github.com/penumbra3d/penumbra/common"
	"github.com/penumbra3d/penumbra/engine/assets"
	"github.com/penumbra3d/penumbra/engine/profiler"
	"github.com/penumbra3d/penumbra/engine/renderer"
	"github.com/penumbra3d/penumbra/engine/renderer/envmap"
	"github.com/penumbra3d/penumbra/engine/scene"
	"github.com/penumbra3d/penumbra/engine/window"
)

const (
	// moveSpeed is the camera translation per held key per frame.
	moveSpeed = 0.05

	// lookSpeed is the camera rotation in degrees per dragged pixel.
	lookSpeed = 0.3

	// zoomSpeed is the camera dolly distance per scroll step.
	zoomSpeed = 0.2
)

// engine is the implementation of the Engine interface.
type engine struct {
	window   window.Window
	ctx      renderer.GraphicsContext
	renderer renderer.Renderer
	library  assets.Library
	scene    scene.Scene
	profiler *profiler.Profiler
	logger   *log.Logger

	// decodePool parallelizes image decoding for environment loads.
	decodePool worker.DynamicWorkerPool

	keysDown map[uint32]bool

	title         string
	width, height int
	presentMode   renderer.PresentMode
	forceFallback bool
	profiled      bool
	hotReload     bool
}

// Engine is the top-level application object. Construction opens the window
// and initializes the GPU; Run blocks on the calling goroutine until the
// window closes.
type Engine interface {
	// Window returns the engine's window.
	//
	// Returns:
	//   - window.Window: the window
	Window() window.Window

	// Renderer returns the engine's renderer.
	//
	// Returns:
	//   - renderer.Renderer: the renderer
	Renderer() renderer.Renderer

	// Library returns the shader and material registry.
	//
	// Returns:
	//   - assets.Library: the library
	Library() assets.Library

	// Scene returns the active scene.
	//
	// Returns:
	//   - scene.Scene: the scene
	Scene() scene.Scene

	// LoadShaders loads a shader description file into the library and
	// starts hot reload if it was enabled.
	//
	// Parameters:
	//   - path: path to the JSON description file
	//
	// Returns:
	//   - error: a parse or registration error
	LoadShaders(path string) error

	// LoadEnvironment decodes six cubemap face images in parallel, runs the
	// environment precompute and attaches the result to the scene. Face
	// order is +X, -X, +Y, -Y, +Z, -Z.
	//
	// Parameters:
	//   - facePaths: the six face image paths
	//
	// Returns:
	//   - error: a decode or precompute error
	LoadEnvironment(facePaths [6]string) error

	// Run builds the scene and drives the frame loop until the window
	// closes. Must be called from the goroutine that created the engine.
	//
	// Returns:
	//   - error: a scene build failure
	Run() error

	// Release frees the scene, the environment and all GPU state.
	Release()
}

var _ Engine = &engine{}

// New opens a window and initializes the GPU stack.
//
// Parameters:
//   - options: functional options to configure the engine
//
// Returns:
//   - Engine: the engine
//   - error: a window or GPU initialization failure
func New(options ...EngineBuilderOption) (Engine, error) {
	e := &engine{
		logger:   log.Default(),
		title:    "Penumbra",
		width:    1280,
		height:   720,
		keysDown: make(map[uint32]bool),
	}
	for _, option := range options {
		option(e)
	}

	win, err := window.New(window.WithTitle(e.title), window.WithSize(e.width, e.height))
	if err != nil {
		return nil, err
	}
	e.window = win

	contextOptions := []renderer.ContextBuilderOption{
		renderer.WithPresentMode(e.presentMode),
	}
	if e.forceFallback {
		contextOptions = append(contextOptions, renderer.WithForceFallbackAdapter())
	}
	ctx, err := renderer.NewGraphicsContext(win.SurfaceDescriptor(), contextOptions...)
	if err != nil {
		win.Close()
		return nil, err
	}
	e.ctx = ctx

	fbWidth, fbHeight := win.Size()
	if err := ctx.ConfigureSurface(uint32(fbWidth), uint32(fbHeight)); err != nil {
		ctx.Release()
		win.Close()
		return nil, err
	}

	r, err := renderer.NewRenderer(ctx)
	if err != nil {
		ctx.Release()
		win.Close()
		return nil, err
	}
	e.renderer = r

	e.library = assets.NewLibrary(r, assets.WithLogger(e.logger))
	if e.scene == nil {
		e.scene = scene.New("Main Scene")
	}
	e.scene.Camera().SetAspect(float32(fbWidth) / float32(fbHeight))

	if e.profiled {
		e.profiler = profiler.New(profiler.WithProfilerLogger(e.logger))
	}
	e.decodePool = worker.NewDynamicWorkerPool(max(runtime.NumCPU()-1, 1), 64, 1*time.Second)

	// A scene always has an environment so the sky pass and IBL bindings are
	// valid before any skybox is loaded.
	if e.scene.Environment() == nil {
		var faces [6]common.ImageData
		for i := range faces {
			faces[i] = common.SolidImage(0, 0, 0, 255)
		}
		env, err := envmap.New(ctx.Device(), ctx.Queue(), faces, ctx.CameraLayout(), ctx.SceneLayout())
		if err != nil {
			e.Release()
			return nil, fmt.Errorf("engine: failed to create default environment: %w", err)
		}
		e.scene.SetEnvironment(env)
	}

	e.installInput()
	return e, nil
}

// installInput routes window events to the scene camera.
func (e *engine) installInput() {
	e.window.OnKey(func(keyCode uint32, pressed bool) {
		e.keysDown[keyCode] = pressed
	})
	e.window.OnDrag(func(dx, dy float32) {
		e.scene.Camera().Rotate(-dx*lookSpeed, -dy*lookSpeed)
	})
	e.window.OnScroll(func(delta float32) {
		e.scene.Camera().MoveForward(delta * zoomSpeed)
	})
	e.window.OnResize(func(width, height int) {
		if err := e.renderer.Resize(uint32(width), uint32(height)); err != nil {
			e.logger.Error("resize failed", "error", err)
			return
		}
		e.scene.Camera().SetAspect(float32(width) / float32(height))
	})
}

// applyHeldKeys translates the camera for every movement key currently held.
func (e *engine) applyHeldKeys() {
	var right, up, forward float32
	if e.keysDown[common.KeyW] {
		forward += moveSpeed
	}
	if e.keysDown[common.KeyS] {
		forward -= moveSpeed
	}
	if e.keysDown[common.KeyD] {
		right += moveSpeed
	}
	if e.keysDown[common.KeyA] {
		right -= moveSpeed
	}
	if e.keysDown[common.KeyE] {
		up += moveSpeed
	}
	if e.keysDown[common.KeyQ] {
		up -= moveSpeed
	}
	if right != 0 || up != 0 || forward != 0 {
		e.scene.Camera().Translate(right, up, forward)
	}
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Library() assets.Library {
	return e.library
}

func (e *engine) Scene() scene.Scene {
	return e.scene
}

func (e *engine) LoadShaders(path string) error {
	if err := e.library.Load(path); err != nil {
		return err
	}
	if e.hotReload {
		if err := e.library.Watch(); err != nil {
			e.logger.Warn("hot reload unavailable", "error", err)
		}
	}
	return nil
}

func (e *engine) LoadEnvironment(facePaths [6]string) error {
	var (
		wg    sync.WaitGroup
		faces [6]common.ImageData
		errs  [6]error
	)
	for i, path := range facePaths {
		wg.Add(1)
		index, facePath := i, path
		e.decodePool.SubmitTask(worker.Task{
			ID: index,
			Do: func() (any, error) {
				defer wg.Done()
				faces[index], errs[index] = common.DecodeImageFile(facePath)
				return nil, errs[index]
			},
		})
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			return fmt.Errorf("engine: failed to decode environment face %s: %w", facePaths[i], err)
		}
	}

	env, err := envmap.New(e.ctx.Device(), e.ctx.Queue(), faces, e.ctx.CameraLayout(), e.ctx.SceneLayout())
	if err != nil {
		return err
	}
	if old := e.scene.Environment(); old != nil {
		old.Release()
	}
	e.scene.SetEnvironment(env)
	e.logger.Info("environment loaded", "size", faces[0].Width)
	return nil
}

func (e *engine) Run() error {
	if err := e.scene.Build(e.ctx); err != nil {
		return err
	}

	e.window.OnFrame(func() {
		e.applyHeldKeys()
		if err := e.scene.Update(e.ctx.Queue()); err != nil {
			e.logger.Error("scene update failed", "error", err)
			return
		}
		err := e.renderer.RenderFrame(
			e.scene.Camera(),
			e.scene.Lights(),
			e.scene.Items(),
			e.scene.Environment(),
		)
		if err != nil {
			e.logger.Error("frame dropped", "error", err)
		}
		if e.profiler != nil {
			e.profiler.Tick()
		}
	})

	e.window.Run()
	return nil
}

func (e *engine) Release() {
	e.library.Close()
	if env := e.scene.Environment(); env != nil {
		env.Release()
		e.scene.SetEnvironment(nil)
	}
	e.scene.Release()
	e.renderer.Release()
	e.ctx.Release()
	e.window.Close()
}
