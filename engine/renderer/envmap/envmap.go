package envmap

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/penumbra3d/penumbra/common"
	"github.com/penumbra3d/penumbra/engine/camera"
	"github.com/penumbra3d/penumbra/engine/renderer/shader"
	"github.com/penumbra3d/penumbra/engine/texture"
)

// environmentMap is the implementation of the EnvironmentMap interface.
type environmentMap struct {
	cubemap     texture.Texture
	irradiance  texture.Texture
	prefiltered texture.Texture
	brdfLUT     texture.Texture

	precalcBuffer  *wgpu.Buffer
	sceneBindGroup *wgpu.BindGroup
}

// EnvironmentMap holds the base environment cubemap and the maps precomputed
// from it, bound together as the scene bind group.
type EnvironmentMap interface {
	// Cubemap returns the base environment cubemap.
	//
	// Returns:
	//   - texture.Texture: the base cubemap with a full mip chain
	Cubemap() texture.Texture

	// Irradiance returns the diffuse irradiance cubemap.
	//
	// Returns:
	//   - texture.Texture: the irradiance cubemap
	Irradiance() texture.Texture

	// Prefiltered returns the specular prefiltered cubemap. Mip level maps to
	// roughness: level j was filtered at roughness min(j/6, 1).
	//
	// Returns:
	//   - texture.Texture: the prefiltered cubemap
	Prefiltered() texture.Texture

	// BRDFLUT returns the BRDF integration lookup table.
	//
	// Returns:
	//   - texture.Texture: the 2D lookup table
	BRDFLUT() texture.Texture

	// SceneBindGroup returns the bind group exposing all four maps to sky and
	// lit passes.
	//
	// Returns:
	//   - *wgpu.BindGroup: the scene bind group
	SceneBindGroup() *wgpu.BindGroup

	// Release frees every map and the scene bind group.
	Release()
}

var _ EnvironmentMap = &environmentMap{}

// SceneBindGroupLayout creates the bind-group layout of the scene bind group:
// view and sampler pairs for the base cubemap, the irradiance map, the
// prefiltered map and the BRDF table, at bindings 0 through 7.
//
// Parameters:
//   - device: the wgpu device
//
// Returns:
//   - *wgpu.BindGroupLayout: the scene layout
//   - error: a layout creation error
func SceneBindGroupLayout(device *wgpu.Device) (*wgpu.BindGroupLayout, error) {
	layout, err := device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Scene Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			shader.TextureEntry(0, wgpu.TextureViewDimensionCube),
			shader.SamplerEntry(1),
			shader.TextureEntry(2, wgpu.TextureViewDimensionCube),
			shader.SamplerEntry(3),
			shader.TextureEntry(4, wgpu.TextureViewDimensionCube),
			shader.SamplerEntry(5),
			shader.TextureEntry(6, wgpu.TextureViewDimension2D),
			shader.SamplerEntry(7),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("envmap: failed to create scene layout: %w", err)
	}
	return layout, nil
}

// New creates an environment map from six face images and runs the full
// precompute: base mip chain, irradiance convolution, prefiltered specular
// chain and BRDF table. Faces follow the cubemap layer order +X, -X, +Y, -Y,
// +Z, -Z and must all be square with the same edge length.
//
// Parameters:
//   - device: the wgpu device
//   - queue: the wgpu queue the precompute passes submit to
//   - faces: the six face images in layer order
//   - cameraLayout: the renderer's shared per-camera bind-group layout
//   - sceneLayout: the layout from SceneBindGroupLayout
//
// Returns:
//   - EnvironmentMap: the fully precomputed environment
//   - error: a face mismatch or GPU error
func New(device *wgpu.Device, queue *wgpu.Queue, faces [6]common.ImageData, cameraLayout, sceneLayout *wgpu.BindGroupLayout) (EnvironmentMap, error) {
	width := faces[0].Width
	pixels := make([]byte, 0, int(width)*int(width)*4*6)
	for i, face := range faces {
		if face.Width != width || face.Height != width {
			return nil, fmt.Errorf("envmap: face %d is %dx%d, want %dx%d", i, face.Width, face.Height, width, width)
		}
		pixels = append(pixels, face.Pixels...)
	}

	e := &environmentMap{}
	var err error
	e.cubemap, err = texture.NewCube(device, queue, pixels, width, precomputeFormat, true, texture.ClampedLinearSampler(), "Environment Cubemap")
	if err != nil {
		return nil, fmt.Errorf("envmap: failed to create cubemap: %w", err)
	}

	if err := e.precompute(device, queue, cameraLayout); err != nil {
		e.Release()
		return nil, err
	}

	e.sceneBindGroup, err = device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Scene Bind Group",
		Layout: sceneLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: e.cubemap.View()},
			{Binding: 1, Sampler: e.cubemap.Sampler()},
			{Binding: 2, TextureView: e.irradiance.View()},
			{Binding: 3, Sampler: e.irradiance.Sampler()},
			{Binding: 4, TextureView: e.prefiltered.View()},
			{Binding: 5, Sampler: e.prefiltered.Sampler()},
			{Binding: 6, TextureView: e.brdfLUT.View()},
			{Binding: 7, Sampler: e.brdfLUT.Sampler()},
		},
	})
	if err != nil {
		e.Release()
		return nil, fmt.Errorf("envmap: failed to create scene bind group: %w", err)
	}

	return e, nil
}

func (e *environmentMap) Cubemap() texture.Texture {
	return e.cubemap
}

func (e *environmentMap) Irradiance() texture.Texture {
	return e.irradiance
}

func (e *environmentMap) Prefiltered() texture.Texture {
	return e.prefiltered
}

func (e *environmentMap) BRDFLUT() texture.Texture {
	return e.brdfLUT
}

func (e *environmentMap) SceneBindGroup() *wgpu.BindGroup {
	return e.sceneBindGroup
}

func (e *environmentMap) Release() {
	if e.sceneBindGroup != nil {
		e.sceneBindGroup.Release()
		e.sceneBindGroup = nil
	}
	if e.precalcBuffer != nil {
		e.precalcBuffer.Release()
		e.precalcBuffer = nil
	}
	for _, t := range []texture.Texture{e.brdfLUT, e.prefiltered, e.irradiance, e.cubemap} {
		if t != nil {
			t.Release()
		}
	}
	e.brdfLUT, e.prefiltered, e.irradiance, e.cubemap = nil, nil, nil, nil
}

// precompute runs the GPU passes that derive the lighting maps from the base
// cubemap. Each stage submits its own command buffer; ordering between stages
// comes from submitting to the same queue.
func (e *environmentMap) precompute(device *wgpu.Device, queue *wgpu.Queue, cameraLayout *wgpu.BindGroupLayout) error {
	pipes, err := newPipelines(device, cameraLayout)
	if err != nil {
		return err
	}
	defer pipes.release()

	cubeCamera := camera.NewCubeCamera()
	if err := cubeCamera.Build(device, queue, cameraLayout); err != nil {
		return fmt.Errorf("envmap: %w", err)
	}
	defer cubeCamera.Release()

	cube, err := newCubeGeometry(device, queue)
	if err != nil {
		return err
	}
	defer cube.release()

	e.precalcBuffer, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            "EnvMap Precalc Uniform Buffer",
		Size:             4,
		Usage:            wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return fmt.Errorf("envmap: failed to create precalc buffer: %w", err)
	}

	envBindGroup, err := device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "EnvMap Precalc Bind Group",
		Layout: pipes.envLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: e.cubemap.View()},
			{Binding: 1, Sampler: e.cubemap.Sampler()},
			{Binding: 2, Buffer: e.precalcBuffer, Offset: 0, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return fmt.Errorf("envmap: failed to create precalc bind group: %w", err)
	}
	defer envBindGroup.Release()

	if err := generateMipmaps(device, queue, pipes, e.cubemap); err != nil {
		return err
	}

	width := e.cubemap.Width()
	e.irradiance, err = texture.NewRenderTargetCube(device, width, precomputeFormat, true)
	if err != nil {
		return fmt.Errorf("envmap: failed to create irradiance target: %w", err)
	}
	if err := e.renderIrradiance(device, queue, pipes, cubeCamera, envBindGroup, cube); err != nil {
		return err
	}
	if err := generateMipmaps(device, queue, pipes, e.irradiance); err != nil {
		return err
	}

	e.prefiltered, err = texture.NewRenderTargetCube(device, width, precomputeFormat, true)
	if err != nil {
		return fmt.Errorf("envmap: failed to create prefilter target: %w", err)
	}
	if err := e.renderPrefiltered(device, queue, pipes, cubeCamera, envBindGroup, cube); err != nil {
		return err
	}

	e.brdfLUT, err = texture.NewRenderTarget2D(device, brdfLUTSize, brdfLUTSize, brdfLUTFormat)
	if err != nil {
		return fmt.Errorf("envmap: failed to create brdf lut target: %w", err)
	}
	return renderBRDFLUT(device, queue, pipes, e.brdfLUT)
}
