package material

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/penumbra3d/penumbra/engine/renderer/shader"
	"github.com/penumbra3d/penumbra/engine/texture"
)

// Defaults holds the shared placeholder textures materials fall back to for
// unassigned texture properties. One instance is created per device and
// shared by every material; materials never release these.
type Defaults struct {
	white  texture.Texture
	black  texture.Texture
	gray   texture.Texture
	normal texture.Texture
	cube   texture.Texture
	volume texture.Texture
}

// NewDefaults creates the full placeholder set.
//
// Parameters:
//   - device: the wgpu device
//   - queue: the wgpu queue for pixel uploads
//
// Returns:
//   - *Defaults: the placeholder set
//   - error: a texture creation error
func NewDefaults(device *wgpu.Device, queue *wgpu.Queue) (*Defaults, error) {
	d := &Defaults{}
	var err error
	if d.white, err = texture.White1x1(device, queue); err != nil {
		return nil, fmt.Errorf("failed to create default textures: %w", err)
	}
	if d.black, err = texture.Black1x1(device, queue); err != nil {
		d.Release()
		return nil, fmt.Errorf("failed to create default textures: %w", err)
	}
	if d.gray, err = texture.Gray1x1(device, queue); err != nil {
		d.Release()
		return nil, fmt.Errorf("failed to create default textures: %w", err)
	}
	if d.normal, err = texture.Normal1x1(device, queue); err != nil {
		d.Release()
		return nil, fmt.Errorf("failed to create default textures: %w", err)
	}
	if d.cube, err = texture.DefaultCube(device, queue); err != nil {
		d.Release()
		return nil, fmt.Errorf("failed to create default textures: %w", err)
	}
	if d.volume, err = texture.Black1x1x1(device, queue); err != nil {
		d.Release()
		return nil, fmt.Errorf("failed to create default textures: %w", err)
	}
	return d, nil
}

// Resolve returns the placeholder for a texture property: 2D properties by
// their declared default tag, cube and volume properties by kind.
//
// Parameters:
//   - prop: the declared texture property
//
// Returns:
//   - texture.Texture: the shared placeholder
func (d *Defaults) Resolve(prop shader.TextureProperty) texture.Texture {
	switch prop.Kind {
	case texture.KindCube:
		return d.cube
	case texture.Kind3D:
		return d.volume
	default:
	}
	switch prop.Default {
	case shader.DefaultBlack:
		return d.black
	case shader.DefaultGray:
		return d.gray
	case shader.DefaultNormal:
		return d.normal
	default:
		return d.white
	}
}

// Release frees every placeholder texture.
func (d *Defaults) Release() {
	for _, t := range []texture.Texture{d.white, d.black, d.gray, d.normal, d.cube, d.volume} {
		if t != nil {
			t.Release()
		}
	}
	*d = Defaults{}
}
