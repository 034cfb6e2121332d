package texture

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/penumbra3d/penumbra/common"
)

// Fixed single-pixel placeholder colors bound in place of texture properties
// a material never set.
var (
	whitePixel  = [4]byte{255, 255, 255, 255}
	blackPixel  = [4]byte{0, 0, 0, 255}
	grayPixel   = [4]byte{128, 128, 128, 255}
	normalPixel = [4]byte{128, 128, 255, 255}
)

// White1x1 creates the 1x1 white placeholder texture.
//
// Parameters:
//   - device: the wgpu device
//   - queue: the upload queue
//
// Returns:
//   - Texture: a 1x1 RGBA8 texture with value [255, 255, 255, 255]
//   - error: an error if GPU object creation fails
func White1x1(device *wgpu.Device, queue *wgpu.Queue) (Texture, error) {
	return solid1x1(device, queue, whitePixel, "White 1x1")
}

// Black1x1 creates the 1x1 black placeholder texture ([0, 0, 0, 255]).
func Black1x1(device *wgpu.Device, queue *wgpu.Queue) (Texture, error) {
	return solid1x1(device, queue, blackPixel, "Black 1x1")
}

// Gray1x1 creates the 1x1 mid-gray placeholder texture ([128, 128, 128, 255]).
func Gray1x1(device *wgpu.Device, queue *wgpu.Queue) (Texture, error) {
	return solid1x1(device, queue, grayPixel, "Gray 1x1")
}

// Normal1x1 creates the 1x1 flat-normal placeholder texture ([128, 128, 255, 255]),
// encoding an unperturbed +Z tangent-space normal.
func Normal1x1(device *wgpu.Device, queue *wgpu.Queue) (Texture, error) {
	return solid1x1(device, queue, normalPixel, "Normal 1x1")
}

// DefaultCube creates the 1-pixel-per-face placeholder cubemap with a distinct
// color per face, used before any skybox is loaded and as the default for
// declared cube properties.
//
// Parameters:
//   - device: the wgpu device
//   - queue: the upload queue
//
// Returns:
//   - Texture: a 1x1x6 RGBA8 cubemap
//   - error: an error if GPU object creation fails
func DefaultCube(device *wgpu.Device, queue *wgpu.Queue) (Texture, error) {
	pixels := []byte{
		255, 0, 0, 255,
		0, 255, 255, 255,
		0, 255, 0, 255,
		255, 0, 255, 255,
		0, 0, 255, 255,
		255, 255, 0, 255,
	}
	return NewCube(device, queue, pixels, 1, wgpu.TextureFormatRGBA8Unorm, false, SamplerConfig{}, "Default Cube")
}

// Black1x1x1 creates the 1x1x1 black placeholder volume texture, used as the
// default for declared 3D properties.
func Black1x1x1(device *wgpu.Device, queue *wgpu.Queue) (Texture, error) {
	return New3D(device, queue, blackPixel[:], 1, 1, 1, wgpu.TextureFormatRGBA8Unorm, SamplerConfig{}, "Black 1x1x1")
}

func solid1x1(device *wgpu.Device, queue *wgpu.Queue, pixel [4]byte, label string) (Texture, error) {
	img := common.SolidImage(pixel[0], pixel[1], pixel[2], pixel[3])
	return New2D(device, queue, img, wgpu.TextureFormatRGBA8Unorm, false, SamplerConfig{}, label)
}
