// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"
)

// ImageData holds decoded RGBA pixel data pending GPU upload. It is used for
// 2D texture uploads and for the six face images of a cubemap.
type ImageData struct {
	// Pixels is the raw pixel data in RGBA format, 4 bytes per pixel, row-major order.
	Pixels []byte
	// Width is the image width in pixels.
	Width uint32
	// Height is the image height in pixels.
	Height uint32
}

// SolidImage creates a 1x1 ImageData filled with the given RGBA color.
//
// Parameters:
//   - r, g, b, a: color channel values
//
// Returns:
//   - ImageData: a single-pixel image
func SolidImage(r, g, b, a byte) ImageData {
	return ImageData{
		Pixels: []byte{r, g, b, a},
		Width:  1,
		Height: 1,
	}
}

// DecodeImageFile loads and decodes an image file from disk into RGBA pixel data.
// Supports PNG and JPEG formats.
// Reference: https://pkg.go.dev/image
//
// Parameters:
//   - path: path to the image file
//
// Returns:
//   - ImageData: decoded RGBA pixels with dimensions
//   - error: error if opening or decoding fails
func DecodeImageFile(path string) (ImageData, error) {
	file, err := os.Open(path)
	if err != nil {
		return ImageData{}, fmt.Errorf("failed to open image file %s: %w", path, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return ImageData{}, fmt.Errorf("failed to decode image file %s: %w", path, err)
	}
	return toRGBA(img), nil
}

// DecodeImageBytes decodes in-memory image bytes (PNG or JPEG) into RGBA pixel data.
//
// Parameters:
//   - data: raw encoded image bytes
//
// Returns:
//   - ImageData: decoded RGBA pixels with dimensions
//   - error: error if decoding fails
func DecodeImageBytes(data []byte) (ImageData, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return ImageData{}, fmt.Errorf("failed to decode embedded image: %w", err)
	}
	return toRGBA(img), nil
}

func toRGBA(img image.Image) ImageData {
	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)
	return ImageData{
		Pixels: rgba.Pix,
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
	}
}
