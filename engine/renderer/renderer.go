package renderer

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/penumbra3d/penumbra/common"
	"github.com/penumbra3d/penumbra/engine/camera"
	"github.com/penumbra3d/penumbra/engine/light"
	"github.com/penumbra3d/penumbra/engine/model"
	"github.com/penumbra3d/penumbra/engine/renderer/envmap"
	"github.com/penumbra3d/penumbra/engine/renderer/material"
	"github.com/penumbra3d/penumbra/engine/renderer/pipeline"
	"github.com/penumbra3d/penumbra/engine/renderer/shader"
)

//go:embed assets/skybox.wgsl
var skyboxSource string

// DrawItem pairs a built mesh with the built material it draws with.
type DrawItem struct {
	Mesh     model.Mesh
	Material material.Material
}

// forwardRenderer is the implementation of the Renderer interface.
type forwardRenderer struct {
	mu *sync.Mutex

	ctx   GraphicsContext
	cache *pipeline.Cache

	skyboxPipeline *wgpu.RenderPipeline
	skyVertexBuf   *wgpu.Buffer
	skyIndexBuf    *wgpu.Buffer
	skyIndexCount  uint32
}

// Renderer draws lit geometry with one render pass tag per light: the first
// light uses the base pass, every further light the additive pass. A material
// whose shader declares no pass for a tag is skipped for that tag without an
// error. The sky is drawn last so it only fills untouched pixels.
type Renderer interface {
	// Context returns the graphics context the renderer draws with.
	//
	// Returns:
	//   - GraphicsContext: the context
	Context() GraphicsContext

	// RegisterShader builds a shader and compiles one pipeline per declared
	// sub-shader into the cache. Re-registering a shader name replaces its
	// pipelines.
	//
	// Parameters:
	//   - s: the shader to register
	//
	// Returns:
	//   - error: a build or pipeline compile error
	RegisterShader(s shader.Shader) error

	// UnregisterShader drops every cached pipeline of the named shader.
	//
	// Parameters:
	//   - name: the shader name
	UnregisterShader(name string)

	// Pipeline looks up a cached pipeline.
	//
	// Parameters:
	//   - key: the composite pipeline key
	//
	// Returns:
	//   - pipeline.Pipeline: the pipeline
	//   - bool: false when nothing is cached under the key
	Pipeline(key pipeline.Key) (pipeline.Pipeline, bool)

	// RenderFrame draws one frame: every item once per light with the
	// matching pass tag, then the sky, then presents.
	//
	// Parameters:
	//   - cam: the built scene camera
	//   - lights: the built lights, at least one
	//   - items: the built draw items
	//   - env: the environment for the sky pass, or nil to skip it
	//
	// Returns:
	//   - error: a swapchain or encoding error
	RenderFrame(cam camera.Camera, lights []light.Light, items []DrawItem, env envmap.EnvironmentMap) error

	// Resize reconfigures the surface and depth attachment for a new window
	// size.
	//
	// Parameters:
	//   - width, height: the new size in pixels
	//
	// Returns:
	//   - error: a reconfiguration error
	Resize(width, height uint32) error

	// Release frees the pipeline cache and sky resources. The context is
	// released separately by its owner.
	Release()
}

var _ Renderer = &forwardRenderer{}

// NewRenderer creates a forward renderer on a configured context. The context
// must have had ConfigureSurface called so the surface format is known.
//
// Parameters:
//   - ctx: the configured graphics context
//
// Returns:
//   - Renderer: the renderer
//   - error: a sky pipeline or buffer creation error
func NewRenderer(ctx GraphicsContext) (Renderer, error) {
	r := &forwardRenderer{
		mu:    &sync.Mutex{},
		ctx:   ctx,
		cache: pipeline.NewCache(),
	}
	if err := r.createSkyResources(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *forwardRenderer) Context() GraphicsContext {
	return r.ctx
}

func (r *forwardRenderer) RegisterShader(s shader.Shader) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	device := r.ctx.Device()
	if err := s.Build(device); err != nil {
		return err
	}
	materialLayout, err := s.BindGroupLayout()
	if err != nil {
		return err
	}

	r.cache.RemoveShader(s.Name())
	for _, sub := range s.SubShaders() {
		p, err := pipeline.Compile(device, s, sub,
			pipeline.WithColorFormat(r.ctx.SurfaceFormat()),
			pipeline.WithDepthStencil(DepthStencilFormat),
			pipeline.WithBindGroupLayouts(
				materialLayout,
				r.ctx.ObjectLayout(),
				r.ctx.CameraLayout(),
				r.ctx.LightLayout(),
			),
			pipeline.WithVertexBuffers(model.VertexBufferLayout()),
		)
		if err != nil {
			r.cache.RemoveShader(s.Name())
			return err
		}
		r.cache.Insert(p)
	}
	return nil
}

func (r *forwardRenderer) UnregisterShader(name string) {
	r.cache.RemoveShader(name)
}

func (r *forwardRenderer) Pipeline(key pipeline.Key) (pipeline.Pipeline, bool) {
	return r.cache.Lookup(key)
}

func (r *forwardRenderer) RenderFrame(cam camera.Camera, lights []light.Light, items []DrawItem, env envmap.EnvironmentMap) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	frame, view, err := r.ctx.AcquireFrame()
	if err != nil {
		return err
	}

	encoder, err := r.ctx.Device().CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		frame.Release()
		return fmt.Errorf("renderer: failed to create frame encoder: %w", err)
	}

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       view,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{A: 1.0},
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:              r.ctx.DepthView(),
			DepthLoadOp:       wgpu.LoadOpClear,
			DepthStoreOp:      wgpu.StoreOpStore,
			DepthClearValue:   1.0,
			StencilLoadOp:     wgpu.LoadOpClear,
			StencilStoreOp:    wgpu.StoreOpStore,
			StencilClearValue: 0,
		},
	})

	for lightIndex, l := range lights {
		tag := shader.TagForwardBase
		if lightIndex > 0 {
			tag = shader.TagForwardAdd
		}
		for _, item := range items {
			r.drawItem(pass, item, cam, l, tag)
		}
	}

	if env != nil {
		r.drawSky(pass, cam, env)
	}

	pass.End()
	pass.Release()

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		encoder.Release()
		view.Release()
		frame.Release()
		return fmt.Errorf("renderer: failed to finish frame encoder: %w", err)
	}
	r.ctx.Queue().Submit(commandBuffer)
	commandBuffer.Release()
	encoder.Release()

	r.ctx.PresentFrame(frame, view)
	return nil
}

// drawItem encodes one mesh with one material for one pass tag. Missing
// pipelines mean the shader declares no such pass; the draw is skipped.
func (r *forwardRenderer) drawItem(pass *wgpu.RenderPassEncoder, item DrawItem, cam camera.Camera, l light.Light, tag string) {
	if !item.Mesh.Built() || !item.Material.Built() {
		return
	}
	key := pipeline.Key{Shader: item.Material.Shader().Name(), Pass: tag}
	p, ok := r.cache.Lookup(key)
	if !ok {
		return
	}

	pass.SetPipeline(p.Handle())
	pass.SetBindGroup(0, item.Material.BindGroup(), nil)
	pass.SetBindGroup(1, item.Mesh.BindGroup(), nil)
	pass.SetBindGroup(2, cam.BindGroup(), nil)
	pass.SetBindGroup(3, l.BindGroup(), nil)
	pass.SetVertexBuffer(0, item.Mesh.VertexBuffer(), 0, wgpu.WholeSize)
	pass.SetIndexBuffer(item.Mesh.IndexBuffer(), wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	pass.DrawIndexed(item.Mesh.IndexCount(), 1, 0, 0, 0)
}

// drawSky encodes the sky cube after all lit geometry.
func (r *forwardRenderer) drawSky(pass *wgpu.RenderPassEncoder, cam camera.Camera, env envmap.EnvironmentMap) {
	pass.SetPipeline(r.skyboxPipeline)
	pass.SetBindGroup(0, cam.BindGroup(), nil)
	pass.SetBindGroup(1, env.SceneBindGroup(), nil)
	pass.SetVertexBuffer(0, r.skyVertexBuf, 0, wgpu.WholeSize)
	pass.SetIndexBuffer(r.skyIndexBuf, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	pass.DrawIndexed(r.skyIndexCount, 1, 0, 0, 0)
}

func (r *forwardRenderer) Resize(width, height uint32) error {
	return r.ctx.ConfigureSurface(width, height)
}

func (r *forwardRenderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cache.Release()
	if r.skyboxPipeline != nil {
		r.skyboxPipeline.Release()
		r.skyboxPipeline = nil
	}
	if r.skyIndexBuf != nil {
		r.skyIndexBuf.Release()
		r.skyIndexBuf = nil
	}
	if r.skyVertexBuf != nil {
		r.skyVertexBuf.Release()
		r.skyVertexBuf = nil
	}
}

// createSkyResources compiles the sky pipeline and uploads the sky cube
// geometry. The pipeline culls nothing, writes no depth and passes at
// LessEqual so the forced far-plane depth of the sky survives the test.
func (r *forwardRenderer) createSkyResources() error {
	device := r.ctx.Device()

	module, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: "Skybox Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: skyboxSource,
		},
	})
	if err != nil {
		return fmt.Errorf("renderer: failed to compile skybox shader: %w", err)
	}
	defer module.Release()

	layout, err := device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label: "Skybox Pipeline Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{
			r.ctx.CameraLayout(),
			r.ctx.SceneLayout(),
		},
	})
	if err != nil {
		return fmt.Errorf("renderer: failed to create skybox pipeline layout: %w", err)
	}
	defer layout.Release()

	stencil := wgpu.StencilFaceState{
		Compare:     wgpu.CompareFunctionAlways,
		FailOp:      wgpu.StencilOperationKeep,
		DepthFailOp: wgpu.StencilOperationKeep,
		PassOp:      wgpu.StencilOperationKeep,
	}
	r.skyboxPipeline, err = device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "Skybox Pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers:    []wgpu.VertexBufferLayout{model.VertexBufferLayout()},
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    r.ctx.SurfaceFormat(),
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            DepthStencilFormat,
			DepthWriteEnabled: false,
			DepthCompare:      wgpu.CompareFunctionLessEqual,
			StencilFront:      stencil,
			StencilBack:       stencil,
			StencilReadMask:   0xFFFFFFFF,
			StencilWriteMask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("renderer: failed to create skybox pipeline: %w", err)
	}

	cube := model.NewCube("Skybox Cube")
	vertexData := common.SliceToBytes(cube.Vertices())
	indexData := common.SliceToBytes(cube.Indices())
	r.skyIndexCount = cube.IndexCount()

	r.skyVertexBuf, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            "Skybox Vertex Buffer",
		Size:             uint64(len(vertexData)),
		Usage:            wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return fmt.Errorf("renderer: failed to create skybox vertex buffer: %w", err)
	}
	r.ctx.Queue().WriteBuffer(r.skyVertexBuf, 0, vertexData)

	r.skyIndexBuf, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            "Skybox Index Buffer",
		Size:             uint64(len(indexData)),
		Usage:            wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return fmt.Errorf("renderer: failed to create skybox index buffer: %w", err)
	}
	r.ctx.Queue().WriteBuffer(r.skyIndexBuf, 0, indexData)

	return nil
}
