package shader

import "github.com/cogentcore/webgpu/wgpu"

// Bind-group layout entry helpers shared by material bind groups, the fixed
// renderer layouts (object/camera/light/scene) and the environment-map
// precompute passes. All entries are visible to both vertex and fragment
// stages.

// UniformEntry returns a uniform-buffer layout entry at the given binding.
func UniformEntry(binding uint32) wgpu.BindGroupLayoutEntry {
	return wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
		Buffer: wgpu.BufferBindingLayout{
			Type:             wgpu.BufferBindingTypeUniform,
			HasDynamicOffset: false,
		},
	}
}

// TextureEntry returns a filterable float texture layout entry at the given
// binding with the given view dimension.
func TextureEntry(binding uint32, dimension wgpu.TextureViewDimension) wgpu.BindGroupLayoutEntry {
	return wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
		Texture: wgpu.TextureBindingLayout{
			SampleType:    wgpu.TextureSampleTypeFloat,
			ViewDimension: dimension,
			Multisampled:  false,
		},
	}
}

// SamplerEntry returns a filtering sampler layout entry at the given binding.
func SamplerEntry(binding uint32) wgpu.BindGroupLayoutEntry {
	return wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
		Sampler: wgpu.SamplerBindingLayout{
			Type: wgpu.SamplerBindingTypeFiltering,
		},
	}
}
