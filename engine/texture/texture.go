// Package texture wraps wgpu texture, view and sampler triples used by
// materials, environment maps and render targets. Cube render targets expose
// per-mip per-face views so precompute passes can render into individual
// cubemap levels.
package texture

import (
	"fmt"
	"math/bits"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/penumbra3d/penumbra/common"
)

// Kind identifies the dimensionality of a texture as declared by a shader's
// texture properties.
type Kind int

const (
	// Kind2D is a standard two-dimensional texture.
	Kind2D Kind = iota

	// Kind3D is a volume texture.
	Kind3D

	// KindCube is a six-face cubemap texture.
	KindCube
)

// String returns the descriptor keyword for the texture kind.
func (k Kind) String() string {
	switch k {
	case Kind2D:
		return "2D"
	case Kind3D:
		return "3D"
	case KindCube:
		return "Cube"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ViewDimension returns the wgpu texture view dimension for the kind.
func (k Kind) ViewDimension() wgpu.TextureViewDimension {
	switch k {
	case Kind3D:
		return wgpu.TextureViewDimension3D
	case KindCube:
		return wgpu.TextureViewDimensionCube
	default:
		return wgpu.TextureViewDimension2D
	}
}

// MipLevelCount returns the length of a full mip chain for a texture whose
// largest dimension is the given extent: floor(log2(extent)) + 1. An extent
// of zero yields one level.
func MipLevelCount(extent uint32) uint32 {
	if extent == 0 {
		return 1
	}
	return uint32(bits.Len32(extent))
}

// SamplerConfig configures the sampler created alongside a texture. Zero
// fields fall back to linear filtering with repeat addressing.
type SamplerConfig struct {
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	MagFilter, MinFilter                     wgpu.FilterMode
	MipmapFilter                             wgpu.MipmapFilterMode
	LodMinClamp, LodMaxClamp                 float32
	MaxAnisotropy                            uint16
}

// ClampedLinearSampler is the sampler configuration used for cubemaps and
// render targets: linear filtering in all modes with clamp-to-edge addressing.
func ClampedLinearSampler() SamplerConfig {
	return SamplerConfig{
		AddressModeU: wgpu.AddressModeClampToEdge,
		AddressModeV: wgpu.AddressModeClampToEdge,
		AddressModeW: wgpu.AddressModeClampToEdge,
		MagFilter:    wgpu.FilterModeLinear,
		MinFilter:    wgpu.FilterModeLinear,
		MipmapFilter: wgpu.MipmapFilterModeLinear,
	}
}

// texture is the implementation of the Texture interface.
type texture struct {
	handle        *wgpu.Texture
	view          *wgpu.TextureView
	sampler       *wgpu.Sampler
	kind          Kind
	format        wgpu.TextureFormat
	width         uint32
	height        uint32
	depth         uint32
	mipLevelCount uint32
}

// Texture is a GPU texture together with its default view and sampler. The
// owning structure (material, environment map, graphics context) is
// responsible for calling Release exactly once when the texture is replaced
// or discarded.
type Texture interface {
	// Handle returns the underlying wgpu texture object.
	//
	// Returns:
	//   - *wgpu.Texture: the raw texture handle
	Handle() *wgpu.Texture

	// View returns the default full-resource view. Cube textures return a
	// cube-dimension view covering all faces and mip levels.
	//
	// Returns:
	//   - *wgpu.TextureView: the default view
	View() *wgpu.TextureView

	// Sampler returns the sampler created with the texture.
	//
	// Returns:
	//   - *wgpu.Sampler: the sampler
	Sampler() *wgpu.Sampler

	// Kind returns the declared dimensionality of the texture.
	//
	// Returns:
	//   - Kind: Kind2D, Kind3D or KindCube
	Kind() Kind

	// Format returns the texel format the texture was created with.
	//
	// Returns:
	//   - wgpu.TextureFormat: the texture format
	Format() wgpu.TextureFormat

	// Width returns the level-0 width in pixels.
	//
	// Returns:
	//   - uint32: the width
	Width() uint32

	// Height returns the level-0 height in pixels.
	//
	// Returns:
	//   - uint32: the height
	Height() uint32

	// Depth returns the depth or array layer count (6 for cubemaps).
	//
	// Returns:
	//   - uint32: the depth or layer count
	Depth() uint32

	// MipLevelCount returns the number of mip levels the texture was created with.
	//
	// Returns:
	//   - uint32: the mip level count
	MipLevelCount() uint32

	// FaceView creates a 2D view of a single (mip level, array layer) slice,
	// used as a render-pass color attachment when writing into one cubemap
	// face at one mip level. The caller owns the returned view and must
	// release it after the pass is submitted.
	//
	// Parameters:
	//   - level: the mip level to address
	//   - face: the array layer (cubemap face index 0..5)
	//
	// Returns:
	//   - *wgpu.TextureView: a single-slice 2D view
	//   - error: an error if the view cannot be created or the slice is out of range
	FaceView(level, face uint32) (*wgpu.TextureView, error)

	// Release frees the texture, its default view and its sampler.
	Release()
}

var _ Texture = &texture{}

// New2D creates a 2D texture from decoded RGBA pixels, uploading mip level 0.
// When mipmap is true the texture is allocated with a full mip chain; the
// levels above 0 are left for the caller to fill via blit passes.
//
// Parameters:
//   - device: the wgpu device
//   - queue: the queue used for the level-0 upload
//   - img: decoded pixel data with dimensions
//   - format: texel format (pixel bytes must match, 4 bytes per pixel)
//   - mipmap: whether to allocate a full mip chain
//   - sampler: sampler configuration
//   - label: debug label
//
// Returns:
//   - Texture: the created texture
//   - error: an error if any GPU object creation fails
func New2D(device *wgpu.Device, queue *wgpu.Queue, img common.ImageData, format wgpu.TextureFormat, mipmap bool, sampler SamplerConfig, label string) (Texture, error) {
	mips := uint32(1)
	if mipmap {
		mips = MipLevelCount(max(img.Width, img.Height))
	}
	return newFromPixels(device, queue, img.Pixels, img.Width, img.Height, 1, Kind2D, format, mips, sampler, label)
}

// NewCube creates a cubemap from tightly packed face pixels in layer order
// +X, -X, +Y, -Y, +Z, -Z. Each face is width x width. When mipmap is true the
// full chain is allocated with only level 0 uploaded.
//
// Parameters:
//   - device: the wgpu device
//   - queue: the queue used for the level-0 upload
//   - pixels: 6*width*width*4 bytes of face data
//   - width: face edge length in pixels
//   - format: texel format
//   - mipmap: whether to allocate a full mip chain
//   - sampler: sampler configuration
//   - label: debug label
//
// Returns:
//   - Texture: the created cubemap
//   - error: an error if any GPU object creation fails
func NewCube(device *wgpu.Device, queue *wgpu.Queue, pixels []byte, width uint32, format wgpu.TextureFormat, mipmap bool, sampler SamplerConfig, label string) (Texture, error) {
	mips := uint32(1)
	if mipmap {
		mips = MipLevelCount(width)
	}
	return newFromPixels(device, queue, pixels, width, width, 6, KindCube, format, mips, sampler, label)
}

// New3D creates a volume texture from tightly packed slice pixels.
//
// Parameters:
//   - device: the wgpu device
//   - queue: the queue used for the upload
//   - pixels: width*height*depth*4 bytes of volume data
//   - width, height, depth: volume dimensions
//   - format: texel format
//   - sampler: sampler configuration
//   - label: debug label
//
// Returns:
//   - Texture: the created volume texture
//   - error: an error if any GPU object creation fails
func New3D(device *wgpu.Device, queue *wgpu.Queue, pixels []byte, width, height, depth uint32, format wgpu.TextureFormat, sampler SamplerConfig, label string) (Texture, error) {
	return newFromPixels(device, queue, pixels, width, height, depth, Kind3D, format, 1, sampler, label)
}

// NewRenderTargetCube creates an uninitialized cubemap usable both as a
// render-pass attachment and as a sampled texture, with a full mip chain when
// mipmap is true. Used for the irradiance and prefiltered environment maps.
//
// Parameters:
//   - device: the wgpu device
//   - width: face edge length in pixels
//   - format: texel format
//   - mipmap: whether to allocate a full mip chain
//
// Returns:
//   - Texture: the created render-target cubemap
//   - error: an error if any GPU object creation fails
func NewRenderTargetCube(device *wgpu.Device, width uint32, format wgpu.TextureFormat, mipmap bool) (Texture, error) {
	mips := uint32(1)
	if mipmap {
		mips = MipLevelCount(width)
	}
	handle, err := device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Render Target Cube",
		Size: wgpu.Extent3D{
			Width:              width,
			Height:             width,
			DepthOrArrayLayers: 6,
		},
		MipLevelCount: mips,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst | wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create render target cube: %w", err)
	}
	return wrapTexture(device, handle, KindCube, format, width, width, 6, mips, ClampedLinearSampler(), "Render Target Cube")
}

// NewRenderTarget2D creates an uninitialized 2D texture usable as a render
// attachment and sampled texture. Used for the BRDF integration lookup table.
//
// Parameters:
//   - device: the wgpu device
//   - width, height: target dimensions
//   - format: texel format
//
// Returns:
//   - Texture: the created render target
//   - error: an error if any GPU object creation fails
func NewRenderTarget2D(device *wgpu.Device, width, height uint32, format wgpu.TextureFormat) (Texture, error) {
	handle, err := device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Render Target 2D",
		Size: wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create render target 2d: %w", err)
	}
	return wrapTexture(device, handle, Kind2D, format, width, height, 1, 1, ClampedLinearSampler(), "Render Target 2D")
}

// NewDepthStencil creates the depth-stencil attachment matching the surface size.
//
// Parameters:
//   - device: the wgpu device
//   - width, height: surface dimensions
//   - format: a depth-stencil format such as Depth24PlusStencil8
//
// Returns:
//   - Texture: the created depth-stencil texture
//   - error: an error if any GPU object creation fails
func NewDepthStencil(device *wgpu.Device, width, height uint32, format wgpu.TextureFormat) (Texture, error) {
	handle, err := device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Depth Stencil Texture",
		Size: wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create depth stencil texture: %w", err)
	}
	view, err := handle.CreateView(nil)
	if err != nil {
		handle.Release()
		return nil, fmt.Errorf("failed to create depth stencil view: %w", err)
	}
	sampler, err := device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Depth Stencil Sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMinClamp:   0.0,
		LodMaxClamp:   100.0,
		Compare:       wgpu.CompareFunctionLessEqual,
		MaxAnisotropy: 1,
	})
	if err != nil {
		view.Release()
		handle.Release()
		return nil, fmt.Errorf("failed to create depth stencil sampler: %w", err)
	}
	return &texture{
		handle:        handle,
		view:          view,
		sampler:       sampler,
		kind:          Kind2D,
		format:        format,
		width:         width,
		height:        height,
		depth:         1,
		mipLevelCount: 1,
	}, nil
}

func newFromPixels(device *wgpu.Device, queue *wgpu.Queue, pixels []byte, width, height, depth uint32, kind Kind, format wgpu.TextureFormat, mips uint32, sampler SamplerConfig, label string) (Texture, error) {
	dimension := wgpu.TextureDimension2D
	if kind == Kind3D {
		dimension = wgpu.TextureDimension3D
	}
	handle, err := device.CreateTexture(&wgpu.TextureDescriptor{
		Label: label,
		Size: wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: depth,
		},
		MipLevelCount: mips,
		SampleCount:   1,
		Dimension:     dimension,
		Format:        format,
		// RenderAttachment is required so mip levels above 0 can be filled
		// by the blit pass.
		Usage: wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst | wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create texture %q: %w", label, err)
	}

	queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  handle,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  width * 4,
			RowsPerImage: height,
		},
		&wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: depth,
		},
	)

	return wrapTexture(device, handle, kind, format, width, height, depth, mips, sampler, label)
}

func wrapTexture(device *wgpu.Device, handle *wgpu.Texture, kind Kind, format wgpu.TextureFormat, width, height, depth, mips uint32, sampler SamplerConfig, label string) (Texture, error) {
	var view *wgpu.TextureView
	var err error
	if kind == KindCube {
		view, err = handle.CreateView(&wgpu.TextureViewDescriptor{
			Label:           label + " View",
			Format:          format,
			Dimension:       wgpu.TextureViewDimensionCube,
			BaseMipLevel:    0,
			MipLevelCount:   mips,
			BaseArrayLayer:  0,
			ArrayLayerCount: 6,
			Aspect:          wgpu.TextureAspectAll,
		})
	} else {
		view, err = handle.CreateView(nil)
	}
	if err != nil {
		handle.Release()
		return nil, fmt.Errorf("failed to create view for texture %q: %w", label, err)
	}

	samp, err := device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         label + " Sampler",
		AddressModeU:  common.Coalesce(sampler.AddressModeU, wgpu.AddressModeRepeat),
		AddressModeV:  common.Coalesce(sampler.AddressModeV, wgpu.AddressModeRepeat),
		AddressModeW:  common.Coalesce(sampler.AddressModeW, wgpu.AddressModeRepeat),
		MagFilter:     common.Coalesce(sampler.MagFilter, wgpu.FilterModeLinear),
		MinFilter:     common.Coalesce(sampler.MinFilter, wgpu.FilterModeLinear),
		MipmapFilter:  common.Coalesce(sampler.MipmapFilter, wgpu.MipmapFilterModeLinear),
		LodMinClamp:   common.Coalesce(sampler.LodMinClamp, 0.0),
		LodMaxClamp:   common.Coalesce(sampler.LodMaxClamp, 32.0),
		MaxAnisotropy: common.Coalesce(sampler.MaxAnisotropy, 1),
	})
	if err != nil {
		view.Release()
		handle.Release()
		return nil, fmt.Errorf("failed to create sampler for texture %q: %w", label, err)
	}

	return &texture{
		handle:        handle,
		view:          view,
		sampler:       samp,
		kind:          kind,
		format:        format,
		width:         width,
		height:        height,
		depth:         depth,
		mipLevelCount: mips,
	}, nil
}

func (t *texture) Handle() *wgpu.Texture {
	return t.handle
}

func (t *texture) View() *wgpu.TextureView {
	return t.view
}

func (t *texture) Sampler() *wgpu.Sampler {
	return t.sampler
}

func (t *texture) Kind() Kind {
	return t.kind
}

func (t *texture) Format() wgpu.TextureFormat {
	return t.format
}

func (t *texture) Width() uint32 {
	return t.width
}

func (t *texture) Height() uint32 {
	return t.height
}

func (t *texture) Depth() uint32 {
	return t.depth
}

func (t *texture) MipLevelCount() uint32 {
	return t.mipLevelCount
}

func (t *texture) FaceView(level, face uint32) (*wgpu.TextureView, error) {
	if level >= t.mipLevelCount || face >= t.depth {
		return nil, fmt.Errorf("face view out of range: level %d of %d, face %d of %d", level, t.mipLevelCount, face, t.depth)
	}
	view, err := t.handle.CreateView(&wgpu.TextureViewDescriptor{
		Label:           fmt.Sprintf("Face View level-%d layer-%d", level, face),
		Format:          t.format,
		Dimension:       wgpu.TextureViewDimension2D,
		BaseMipLevel:    level,
		MipLevelCount:   1,
		BaseArrayLayer:  face,
		ArrayLayerCount: 1,
		Aspect:          wgpu.TextureAspectAll,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create face view: %w", err)
	}
	return view, nil
}

func (t *texture) Release() {
	t.sampler.Release()
	t.view.Release()
	t.handle.Release()
}
