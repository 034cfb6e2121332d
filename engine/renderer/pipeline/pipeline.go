// Package pipeline turns a shader's sub-shader passes into cached WebGPU
// render pipelines. Pipelines are keyed by the shader name and pass tag as a
// composite Key so lookups never parse or format strings.
package pipeline

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/penumbra3d/penumbra/engine/renderer/shader"
)

// Key uniquely identifies a compiled pipeline: the owning shader's name and
// the sub-shader pass tag.
type Key struct {
	Shader string
	Pass   string
}

// String formats the key for labels and log output.
//
// Returns:
//   - string: "shader/pass"
func (k Key) String() string {
	return k.Shader + "/" + k.Pass
}

// pipeline is the implementation of the Pipeline interface.
type pipeline struct {
	key    Key
	state  shader.RasterState
	handle *wgpu.RenderPipeline
}

// Pipeline is a compiled render pipeline together with the fixed-function
// state it was created from.
type Pipeline interface {
	// Key returns the composite pipeline key.
	//
	// Returns:
	//   - Key: the shader name and pass tag
	Key() Key

	// State returns the fixed-function state the pipeline was compiled with.
	//
	// Returns:
	//   - shader.RasterState: the raster state
	State() shader.RasterState

	// Handle returns the underlying WebGPU render pipeline.
	//
	// Returns:
	//   - *wgpu.RenderPipeline: the pipeline object
	Handle() *wgpu.RenderPipeline

	// Release frees the underlying pipeline object.
	Release()
}

var _ Pipeline = &pipeline{}

// Compile creates a render pipeline for one pass of a built shader. The
// shader must have been built first so the pass modules exist.
//
// Parameters:
//   - device: the wgpu device
//   - s: the built owning shader
//   - sub: the pass to compile, one of s's sub-shaders
//   - opts: a variadic list of BuilderOption functions configuring targets and layouts
//
// Returns:
//   - Pipeline: the compiled pipeline
//   - error: shader.ErrNotBuilt when s is unbuilt, or a pipeline creation error
func Compile(device *wgpu.Device, s shader.Shader, sub *shader.SubShader, opts ...BuilderOption) (Pipeline, error) {
	key := Key{Shader: s.Name(), Pass: sub.Tag}
	if !s.Built() {
		return nil, fmt.Errorf("pipeline %s: %w", key, shader.ErrNotBuilt)
	}

	cfg := defaultBuilderConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	layout, err := device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            key.String() + " Pipeline Layout",
		BindGroupLayouts: cfg.bindGroupLayouts,
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline %s: failed to create pipeline layout: %w", key, err)
	}
	defer layout.Release()

	state := sub.State
	descriptor := wgpu.RenderPipelineDescriptor{
		Label:  key.String() + " Pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     sub.VertexModule(),
			EntryPoint: "vs_main",
			Buffers:    cfg.vertexBuffers,
		},
		Fragment: &wgpu.FragmentState{
			Module:     sub.FragmentModule(),
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    cfg.colorFormat,
					Blend:     &state.Blend,
					WriteMask: state.WriteMask,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: state.FrontFace,
			CullMode:  state.CullMode,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	}
	if cfg.depthFormat != wgpu.TextureFormatUndefined {
		descriptor.DepthStencil = &wgpu.DepthStencilState{
			Format:            cfg.depthFormat,
			DepthWriteEnabled: state.DepthWrite,
			DepthCompare:      state.DepthCompare,
			StencilFront:      state.Stencil.Front,
			StencilBack:       state.Stencil.Back,
			StencilReadMask:   state.Stencil.ReadMask,
			StencilWriteMask:  state.Stencil.WriteMask,
		}
	}

	handle, err := device.CreateRenderPipeline(&descriptor)
	if err != nil {
		return nil, fmt.Errorf("pipeline %s: failed to create render pipeline: %w", key, err)
	}

	return &pipeline{
		key:    key,
		state:  state,
		handle: handle,
	}, nil
}

func (p *pipeline) Key() Key {
	return p.key
}

func (p *pipeline) State() shader.RasterState {
	return p.state
}

func (p *pipeline) Handle() *wgpu.RenderPipeline {
	return p.handle
}

func (p *pipeline) Release() {
	if p.handle != nil {
		p.handle.Release()
		p.handle = nil
	}
}
