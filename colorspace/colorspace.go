// Package colorspace converts images between the sRGB storage space and the
// perceptually uniform processing space used for all descriptor math.
package colorspace

import "image"

// Image is a 3-channel image in the uniform processing space.
// Pixels are stored row-major, 3 interleaved bytes per pixel.
type Image struct {
	Pix    []uint8
	Width  int
	Height int
}

// At returns the 3 channel values of the pixel at (x, y).
func (m *Image) At(x, y int) [3]uint8 {
	i := (y*m.Width + x) * 3
	return [3]uint8{m.Pix[i], m.Pix[i+1], m.Pix[i+2]}
}

// Set writes the 3 channel values of the pixel at (x, y).
func (m *Image) Set(x, y int, c [3]uint8) {
	i := (y*m.Width + x) * 3
	m.Pix[i], m.Pix[i+1], m.Pix[i+2] = c[0], c[1], c[2]
}

// NewImage allocates a uniform-space image of the given dimensions.
func NewImage(width, height int) *Image {
	return &Image{
		Pix:    make([]uint8, width*height*3),
		Width:  width,
		Height: height,
	}
}

// Adapter converts between a storage/display color representation and the
// uniform processing space. Round-trips are lossy but visually consistent;
// the conversion is used for illustration only and is not correctness
// critical for descriptor math.
//
// Implementations must be safe for concurrent use.
type Adapter interface {
	// ToUniformSpace converts a decoded image into the uniform space.
	ToUniformSpace(img image.Image) *Image

	// FromUniformSpace converts a uniform-space image back to sRGB.
	FromUniformSpace(m *Image) image.Image
}
