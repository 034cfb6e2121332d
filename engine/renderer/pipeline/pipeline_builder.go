package pipeline

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// builderConfig holds the compile-time targets and layouts for one pipeline.
type builderConfig struct {
	colorFormat      wgpu.TextureFormat
	depthFormat      wgpu.TextureFormat
	bindGroupLayouts []*wgpu.BindGroupLayout
	vertexBuffers    []wgpu.VertexBufferLayout
}

// defaultBuilderConfig returns a config targeting an sRGB color attachment
// with no depth buffer, no bind groups and no vertex buffers.
func defaultBuilderConfig() builderConfig {
	return builderConfig{
		colorFormat: wgpu.TextureFormatRGBA8UnormSrgb,
		depthFormat: wgpu.TextureFormatUndefined,
	}
}

// BuilderOption is a functional option used to configure a pipeline during compilation.
type BuilderOption func(*builderConfig)

// WithColorFormat sets the color attachment format for this pipeline.
//
// Parameters:
//   - format: the texture format of the color attachment
//
// Returns:
//   - BuilderOption: a function that sets the color format for this pipeline
func WithColorFormat(format wgpu.TextureFormat) BuilderOption {
	return func(c *builderConfig) {
		c.colorFormat = format
	}
}

// WithDepthStencil sets the depth-stencil attachment format for this pipeline.
// Omitting this option compiles the pipeline without a depth-stencil state.
//
// Parameters:
//   - format: the texture format of the depth-stencil attachment
//
// Returns:
//   - BuilderOption: a function that sets the depth-stencil format for this pipeline
func WithDepthStencil(format wgpu.TextureFormat) BuilderOption {
	return func(c *builderConfig) {
		c.depthFormat = format
	}
}

// WithBindGroupLayouts sets the bind-group layouts for this pipeline, in slot order.
//
// Parameters:
//   - layouts: the bind-group layouts, index = slot
//
// Returns:
//   - BuilderOption: a function that sets the bind-group layouts for this pipeline
func WithBindGroupLayouts(layouts ...*wgpu.BindGroupLayout) BuilderOption {
	return func(c *builderConfig) {
		c.bindGroupLayouts = layouts
	}
}

// WithVertexBuffers sets the vertex buffer layouts for this pipeline. Omitting
// this option compiles a pipeline with no vertex buffers, for fullscreen
// passes that generate their geometry in the vertex shader.
//
// Parameters:
//   - buffers: the vertex buffer layouts
//
// Returns:
//   - BuilderOption: a function that sets the vertex buffer layouts for this pipeline
func WithVertexBuffers(buffers ...wgpu.VertexBufferLayout) BuilderOption {
	return func(c *builderConfig) {
		c.vertexBuffers = buffers
	}
}
