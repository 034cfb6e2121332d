// Package window wraps GLFW windowing and input behind a small interface the
// engine drives its frame loop from. GLFW only provides the surface and the
// event pump; all rendering goes through WebGPU.
package window

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// desktopWindow is the implementation of the Window interface.
type desktopWindow struct {
	title  string
	width  int
	height int

	handle *glfw.Window
	open   bool

	// dragging tracks whether the middle mouse button is held, for the
	// delta-based drag callback.
	dragging     bool
	lastX, lastY float64

	onFrame  func()
	onResize func(width, height int)
	onScroll func(delta float32)
	onKey    func(keyCode uint32, pressed bool)
	onDrag   func(dx, dy float32)
}

// Window is a desktop window with an event pump. Run blocks on the calling
// goroutine until the window closes; input arrives through the callbacks,
// which all fire on that same goroutine.
type Window interface {
	// OnFrame sets the function called once per event-loop iteration.
	//
	// Parameters:
	//   - callback: the per-frame function, or nil to disable
	OnFrame(callback func())

	// OnResize sets the function called when the framebuffer size changes.
	// The reported size is in pixels, which differs from screen coordinates
	// on high-DPI displays.
	//
	// Parameters:
	//   - callback: function receiving the new width and height in pixels
	OnResize(callback func(width, height int))

	// OnScroll sets the function called for scroll wheel events.
	//
	// Parameters:
	//   - callback: function receiving the vertical scroll delta
	OnScroll(callback func(delta float32))

	// OnKey sets the function called for key presses and releases. Repeats
	// are reported as presses.
	//
	// Parameters:
	//   - callback: function receiving the GLFW key code and press state
	OnKey(callback func(keyCode uint32, pressed bool))

	// OnDrag sets the function called while the middle mouse button is held
	// and the cursor moves.
	//
	// Parameters:
	//   - callback: function receiving the cursor movement since the last event
	OnDrag(callback func(dx, dy float32))

	// SurfaceDescriptor returns the platform surface descriptor WebGPU
	// renders into.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the surface descriptor
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// Size returns the current framebuffer size in pixels.
	//
	// Returns:
	//   - int: the width in pixels
	//   - int: the height in pixels
	Size() (int, int)

	// Run pumps events and calls the frame callback until the window closes.
	// Escape closes the window.
	Run()

	// Close destroys the window and shuts GLFW down.
	Close()
}

var _ Window = &desktopWindow{}

// New creates and shows a desktop window. Must be called from the main
// goroutine; the calling thread is locked for GLFW.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the window
//   - error: a GLFW initialization or window creation error
func New(options ...WindowBuilderOption) (Window, error) {
	runtime.LockOSThread()

	w := &desktopWindow{
		title:  "Penumbra",
		width:  1280,
		height: 720,
	}
	for _, option := range options {
		option(w)
	}

	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("window: failed to initialize GLFW: %w", err)
	}

	// No OpenGL context; WebGPU brings its own backend.
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	handle, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("window: failed to create window: %w", err)
	}
	w.handle = handle
	w.open = true
	w.installCallbacks()

	// The framebuffer can differ from the requested size on high-DPI displays.
	w.width, w.height = handle.GetFramebufferSize()

	return w, nil
}

func (w *desktopWindow) installCallbacks() {
	w.handle.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			w.handle.SetShouldClose(true)
			return
		}
		if w.onKey == nil {
			return
		}
		switch action {
		case glfw.Press, glfw.Repeat:
			w.onKey(uint32(key), true)
		case glfw.Release:
			w.onKey(uint32(key), false)
		}
	})

	w.handle.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		if w.onScroll != nil {
			w.onScroll(float32(yoff))
		}
	})

	w.handle.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		if button != glfw.MouseButtonMiddle {
			return
		}
		switch action {
		case glfw.Press:
			w.dragging = true
			w.lastX, w.lastY = w.handle.GetCursorPos()
		case glfw.Release:
			w.dragging = false
		}
	})

	w.handle.SetCursorPosCallback(func(_ *glfw.Window, xpos, ypos float64) {
		if !w.dragging {
			return
		}
		dx, dy := xpos-w.lastX, ypos-w.lastY
		w.lastX, w.lastY = xpos, ypos
		if w.onDrag != nil {
			w.onDrag(float32(dx), float32(dy))
		}
	})

	w.handle.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.width, w.height = width, height
		if w.onResize != nil && width > 0 && height > 0 {
			w.onResize(width, height)
		}
	})
}

func (w *desktopWindow) OnFrame(callback func()) {
	w.onFrame = callback
}

func (w *desktopWindow) OnResize(callback func(width, height int)) {
	w.onResize = callback
}

func (w *desktopWindow) OnScroll(callback func(delta float32)) {
	w.onScroll = callback
}

func (w *desktopWindow) OnKey(callback func(keyCode uint32, pressed bool)) {
	w.onKey = callback
}

func (w *desktopWindow) OnDrag(callback func(dx, dy float32)) {
	w.onDrag = callback
}

func (w *desktopWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return wgpuglfw.GetSurfaceDescriptor(w.handle)
}

func (w *desktopWindow) Size() (int, int) {
	return w.width, w.height
}

func (w *desktopWindow) Run() {
	for w.open && !w.handle.ShouldClose() {
		glfw.PollEvents()
		if w.onFrame != nil {
			w.onFrame()
		}
		runtime.Gosched()
	}
}

func (w *desktopWindow) Close() {
	if !w.open {
		return
	}
	w.open = false
	w.handle.SetShouldClose(true)
	w.handle.Destroy()
	glfw.Terminate()
}
