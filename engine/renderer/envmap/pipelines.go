// Package envmap implements image-based lighting: a base environment cubemap
// plus the precomputed maps sampled at shading time. Precompute runs once per
// environment on the GPU: mip generation by blitting, a diffuse irradiance
// convolution, a roughness-prefiltered specular chain and the BRDF
// integration lookup table.
package envmap

import (
	_ "embed"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/penumbra3d/penumbra/engine/model"
	"github.com/penumbra3d/penumbra/engine/renderer/shader"
)

//go:embed assets/blit.wgsl
var blitSource string

//go:embed assets/irradiance.wgsl
var irradianceSource string

//go:embed assets/prefilter.wgsl
var prefilterSource string

//go:embed assets/brdf_lut.wgsl
var brdfLUTSource string

// blitFormats are the attachment formats the blit pipeline is compiled for.
// Mip generation targets whichever of these the texture uses.
var blitFormats = []wgpu.TextureFormat{
	wgpu.TextureFormatRGBA8UnormSrgb,
	wgpu.TextureFormatRGBA8Unorm,
	wgpu.TextureFormatRGBA16Float,
}

// precomputeFormat is the attachment format of the irradiance and prefilter targets.
const precomputeFormat = wgpu.TextureFormatRGBA8UnormSrgb

// brdfLUTFormat is the attachment format of the BRDF integration table.
const brdfLUTFormat = wgpu.TextureFormatRGBA16Float

// brdfLUTSize is the edge length of the BRDF integration table.
const brdfLUTSize = 512

// pipelines holds the fixed GPU pipelines shared by every precompute run.
type pipelines struct {
	blitLayout *wgpu.BindGroupLayout
	envLayout  *wgpu.BindGroupLayout

	blit       map[wgpu.TextureFormat]*wgpu.RenderPipeline
	irradiance *wgpu.RenderPipeline
	prefilter  *wgpu.RenderPipeline
	brdfLUT    *wgpu.RenderPipeline
}

// newPipelines compiles the precompute pipeline set. The camera layout is the
// renderer's shared per-camera layout so the cube camera's face bind groups
// fit group 0 of the convolution passes.
func newPipelines(device *wgpu.Device, cameraLayout *wgpu.BindGroupLayout) (*pipelines, error) {
	p := &pipelines{
		blit: make(map[wgpu.TextureFormat]*wgpu.RenderPipeline, len(blitFormats)),
	}

	var err error
	p.blitLayout, err = device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Blit Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			shader.TextureEntry(0, wgpu.TextureViewDimension2D),
			shader.SamplerEntry(1),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("envmap: failed to create blit layout: %w", err)
	}

	p.envLayout, err = device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "EnvMap Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			shader.TextureEntry(0, wgpu.TextureViewDimensionCube),
			shader.SamplerEntry(1),
			shader.UniformEntry(2),
		},
	})
	if err != nil {
		p.release()
		return nil, fmt.Errorf("envmap: failed to create env layout: %w", err)
	}

	blitModule, err := compileModule(device, "Blit Shader", blitSource)
	if err != nil {
		p.release()
		return nil, err
	}
	defer blitModule.Release()
	for _, format := range blitFormats {
		p.blit[format], err = createPipeline(device, pipelineConfig{
			label:   fmt.Sprintf("Blit Pipeline %v", format),
			module:  blitModule,
			layouts: []*wgpu.BindGroupLayout{p.blitLayout},
			format:  format,
		})
		if err != nil {
			p.release()
			return nil, err
		}
	}

	irradianceModule, err := compileModule(device, "Irradiance Shader", irradianceSource)
	if err != nil {
		p.release()
		return nil, err
	}
	defer irradianceModule.Release()
	p.irradiance, err = createPipeline(device, pipelineConfig{
		label:         "EnvMap Irradiance Pipeline",
		module:        irradianceModule,
		layouts:       []*wgpu.BindGroupLayout{cameraLayout, p.envLayout},
		vertexBuffers: []wgpu.VertexBufferLayout{model.VertexBufferLayout()},
		format:        precomputeFormat,
	})
	if err != nil {
		p.release()
		return nil, err
	}

	prefilterModule, err := compileModule(device, "Prefilter Shader", prefilterSource)
	if err != nil {
		p.release()
		return nil, err
	}
	defer prefilterModule.Release()
	p.prefilter, err = createPipeline(device, pipelineConfig{
		label:         "EnvMap Prefilter Pipeline",
		module:        prefilterModule,
		layouts:       []*wgpu.BindGroupLayout{cameraLayout, p.envLayout},
		vertexBuffers: []wgpu.VertexBufferLayout{model.VertexBufferLayout()},
		format:        precomputeFormat,
	})
	if err != nil {
		p.release()
		return nil, err
	}

	brdfModule, err := compileModule(device, "BRDF LUT Shader", brdfLUTSource)
	if err != nil {
		p.release()
		return nil, err
	}
	defer brdfModule.Release()
	p.brdfLUT, err = createPipeline(device, pipelineConfig{
		label:  "BRDF LUT Pipeline",
		module: brdfModule,
		format: brdfLUTFormat,
	})
	if err != nil {
		p.release()
		return nil, err
	}

	return p, nil
}

func (p *pipelines) release() {
	if p.brdfLUT != nil {
		p.brdfLUT.Release()
	}
	if p.prefilter != nil {
		p.prefilter.Release()
	}
	if p.irradiance != nil {
		p.irradiance.Release()
	}
	for _, pl := range p.blit {
		pl.Release()
	}
	p.blit = nil
	if p.envLayout != nil {
		p.envLayout.Release()
	}
	if p.blitLayout != nil {
		p.blitLayout.Release()
	}
}

func compileModule(device *wgpu.Device, label, source string) (*wgpu.ShaderModule, error) {
	module, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: source,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("envmap: failed to compile %s: %w", label, err)
	}
	return module, nil
}

// pipelineConfig describes one internal pipeline: single color target, no
// depth, no culling.
type pipelineConfig struct {
	label         string
	module        *wgpu.ShaderModule
	layouts       []*wgpu.BindGroupLayout
	vertexBuffers []wgpu.VertexBufferLayout
	format        wgpu.TextureFormat
}

func createPipeline(device *wgpu.Device, cfg pipelineConfig) (*wgpu.RenderPipeline, error) {
	layout, err := device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            cfg.label + " Layout",
		BindGroupLayouts: cfg.layouts,
	})
	if err != nil {
		return nil, fmt.Errorf("envmap: failed to create %s layout: %w", cfg.label, err)
	}
	defer layout.Release()

	pipeline, err := device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  cfg.label,
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     cfg.module,
			EntryPoint: "vs_main",
			Buffers:    cfg.vertexBuffers,
		},
		Fragment: &wgpu.FragmentState{
			Module:     cfg.module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    cfg.format,
					Blend:     nil,
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
	})
	if err != nil {
		return nil, fmt.Errorf("envmap: failed to create %s: %w", cfg.label, err)
	}
	return pipeline, nil
}
