// Package renderer implements the forward renderer: a graphics context
// owning the WebGPU device and the fixed bind-group layouts, and the frame
// loop drawing lit geometry pass by pass with a sky pass at the end.
package renderer

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/penumbra3d/penumbra/engine/renderer/envmap"
	"github.com/penumbra3d/penumbra/engine/renderer/material"
	"github.com/penumbra3d/penumbra/engine/renderer/shader"
	"github.com/penumbra3d/penumbra/engine/texture"
)

// DepthStencilFormat is the depth-stencil attachment format every lit
// pipeline and the depth texture use.
const DepthStencilFormat = wgpu.TextureFormatDepth24PlusStencil8

// PresentMode controls how finished frames are delivered to the display.
type PresentMode int

const (
	// PresentModeUncapped presents frames as fast as they are produced.
	PresentModeUncapped PresentMode = iota

	// PresentModeVSync locks presentation to the display refresh rate.
	PresentModeVSync
)

// graphicsContext is the implementation of the GraphicsContext interface.
type graphicsContext struct {
	mu *sync.Mutex

	instance *wgpu.Instance
	surface  *wgpu.Surface
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	surfaceFormat wgpu.TextureFormat
	presentMode   wgpu.PresentMode
	width, height uint32

	depthStencil texture.Texture

	objectLayout *wgpu.BindGroupLayout
	cameraLayout *wgpu.BindGroupLayout
	lightLayout  *wgpu.BindGroupLayout
	sceneLayout  *wgpu.BindGroupLayout

	defaults *material.Defaults

	forceFallbackAdapter bool
}

// GraphicsContext owns the WebGPU instance, surface, device and queue, the
// depth-stencil attachment, the fixed per-slot bind-group layouts and the
// shared placeholder textures.
type GraphicsContext interface {
	// Device returns the wgpu device.
	//
	// Returns:
	//   - *wgpu.Device: the device
	Device() *wgpu.Device

	// Queue returns the wgpu queue.
	//
	// Returns:
	//   - *wgpu.Queue: the queue
	Queue() *wgpu.Queue

	// SurfaceFormat returns the configured swapchain format.
	//
	// Returns:
	//   - wgpu.TextureFormat: the surface format
	SurfaceFormat() wgpu.TextureFormat

	// ObjectLayout returns the per-object bind-group layout (uniform at 0).
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the object layout
	ObjectLayout() *wgpu.BindGroupLayout

	// CameraLayout returns the per-camera bind-group layout (uniform at 0).
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the camera layout
	CameraLayout() *wgpu.BindGroupLayout

	// LightLayout returns the per-light bind-group layout (uniform at 0).
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the light layout
	LightLayout() *wgpu.BindGroupLayout

	// SceneLayout returns the environment bind-group layout.
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the scene layout
	SceneLayout() *wgpu.BindGroupLayout

	// Defaults returns the shared placeholder textures for material building.
	//
	// Returns:
	//   - *material.Defaults: the placeholder set
	Defaults() *material.Defaults

	// ConfigureSurface configures the swapchain and recreates the
	// depth-stencil attachment for the given size. Call once at startup and
	// again on every window resize.
	//
	// Parameters:
	//   - width, height: the surface size in pixels
	//
	// Returns:
	//   - error: a depth-stencil creation error, or nil
	ConfigureSurface(width, height uint32) error

	// SurfaceSize returns the currently configured surface size.
	//
	// Returns:
	//   - uint32: the width in pixels
	//   - uint32: the height in pixels
	SurfaceSize() (uint32, uint32)

	// DepthView returns the view of the depth-stencil attachment, or nil
	// before the first ConfigureSurface.
	//
	// Returns:
	//   - *wgpu.TextureView: the depth-stencil view
	DepthView() *wgpu.TextureView

	// AcquireFrame returns the next swapchain texture and a view of it. The
	// caller presents with PresentFrame after submitting.
	//
	// Returns:
	//   - *wgpu.Texture: the swapchain texture
	//   - *wgpu.TextureView: a view of it
	//   - error: a swapchain acquisition error
	AcquireFrame() (*wgpu.Texture, *wgpu.TextureView, error)

	// PresentFrame presents the previously acquired swapchain texture and
	// releases the references.
	//
	// Parameters:
	//   - frame: the texture from AcquireFrame
	//   - view: the view from AcquireFrame
	PresentFrame(frame *wgpu.Texture, view *wgpu.TextureView)

	// Release frees every GPU object the context owns.
	Release()
}

var _ GraphicsContext = &graphicsContext{}

// NewGraphicsContext creates the device, queue, fixed layouts and default
// textures for a window surface. The surface is left unconfigured; call
// ConfigureSurface with the window size before rendering.
//
// Parameters:
//   - surfaceDescriptor: the window system's surface descriptor
//   - options: functional options to configure the context
//
// Returns:
//   - GraphicsContext: the context
//   - error: an adapter, device or layout creation error
func NewGraphicsContext(surfaceDescriptor *wgpu.SurfaceDescriptor, options ...ContextBuilderOption) (GraphicsContext, error) {
	runtime.LockOSThread()
	c := &graphicsContext{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeImmediate,
	}
	for _, option := range options {
		option(c)
	}

	c.surface = c.instance.CreateSurface(surfaceDescriptor)

	adapter, err := c.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: c.forceFallbackAdapter,
		CompatibleSurface:    c.surface,
	})
	if err != nil {
		return nil, fmt.Errorf("renderer: failed to request adapter: %w", err)
	}
	c.adapter = adapter

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
	})
	if err != nil {
		return nil, fmt.Errorf("renderer: failed to request device: %w", err)
	}
	c.device = device
	c.queue = device.GetQueue()

	if err := c.createLayouts(); err != nil {
		c.Release()
		return nil, err
	}

	c.defaults, err = material.NewDefaults(c.device, c.queue)
	if err != nil {
		c.Release()
		return nil, fmt.Errorf("renderer: %w", err)
	}

	return c, nil
}

// createLayouts creates the fixed single-uniform layouts for the object,
// camera and light slots plus the scene layout.
func (c *graphicsContext) createLayouts() error {
	for _, l := range []struct {
		label  string
		target **wgpu.BindGroupLayout
	}{
		{"Object Bind Group Layout", &c.objectLayout},
		{"Camera Bind Group Layout", &c.cameraLayout},
		{"Light Bind Group Layout", &c.lightLayout},
	} {
		layout, err := c.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
			Label: l.label,
			Entries: []wgpu.BindGroupLayoutEntry{
				shader.UniformEntry(0),
			},
		})
		if err != nil {
			return fmt.Errorf("renderer: failed to create %s: %w", l.label, err)
		}
		*l.target = layout
	}

	sceneLayout, err := envmap.SceneBindGroupLayout(c.device)
	if err != nil {
		return fmt.Errorf("renderer: %w", err)
	}
	c.sceneLayout = sceneLayout
	return nil
}

func (c *graphicsContext) Device() *wgpu.Device {
	return c.device
}

func (c *graphicsContext) Queue() *wgpu.Queue {
	return c.queue
}

func (c *graphicsContext) SurfaceFormat() wgpu.TextureFormat {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.surfaceFormat
}

func (c *graphicsContext) ObjectLayout() *wgpu.BindGroupLayout {
	return c.objectLayout
}

func (c *graphicsContext) CameraLayout() *wgpu.BindGroupLayout {
	return c.cameraLayout
}

func (c *graphicsContext) LightLayout() *wgpu.BindGroupLayout {
	return c.lightLayout
}

func (c *graphicsContext) SceneLayout() *wgpu.BindGroupLayout {
	return c.sceneLayout
}

func (c *graphicsContext) Defaults() *material.Defaults {
	return c.defaults
}

func (c *graphicsContext) ConfigureSurface(width, height uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	capabilities := c.surface.GetCapabilities(c.adapter)
	c.surfaceFormat = capabilities.Formats[0]

	c.surface.Configure(c.adapter, c.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      c.surfaceFormat,
		Width:       width,
		Height:      height,
		PresentMode: c.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})
	c.width, c.height = width, height

	if c.depthStencil != nil {
		c.depthStencil.Release()
		c.depthStencil = nil
	}
	depthStencil, err := texture.NewDepthStencil(c.device, width, height, DepthStencilFormat)
	if err != nil {
		return fmt.Errorf("renderer: %w", err)
	}
	c.depthStencil = depthStencil
	return nil
}

func (c *graphicsContext) SurfaceSize() (uint32, uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}

func (c *graphicsContext) DepthView() *wgpu.TextureView {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.depthStencil == nil {
		return nil
	}
	return c.depthStencil.View()
}

func (c *graphicsContext) AcquireFrame() (*wgpu.Texture, *wgpu.TextureView, error) {
	frame, err := c.surface.GetCurrentTexture()
	if err != nil {
		return nil, nil, fmt.Errorf("renderer: failed to acquire swapchain texture: %w", err)
	}
	view, err := frame.CreateView(nil)
	if err != nil {
		frame.Release()
		return nil, nil, fmt.Errorf("renderer: failed to create swapchain view: %w", err)
	}
	return frame, view, nil
}

func (c *graphicsContext) PresentFrame(frame *wgpu.Texture, view *wgpu.TextureView) {
	c.surface.Present()
	view.Release()
	frame.Release()
}

func (c *graphicsContext) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.defaults != nil {
		c.defaults.Release()
		c.defaults = nil
	}
	if c.depthStencil != nil {
		c.depthStencil.Release()
		c.depthStencil = nil
	}
	for _, layout := range []**wgpu.BindGroupLayout{&c.sceneLayout, &c.lightLayout, &c.cameraLayout, &c.objectLayout} {
		if *layout != nil {
			(*layout).Release()
			*layout = nil
		}
	}
	if c.device != nil {
		c.device.Release()
		c.device = nil
	}
	if c.surface != nil {
		c.surface.Release()
		c.surface = nil
	}
	if c.instance != nil {
		c.instance.Release()
		c.instance = nil
	}
}
