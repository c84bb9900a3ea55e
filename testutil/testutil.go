package testutil

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/hupe1980/colorbag/colorspace"
	"github.com/hupe1980/colorbag/util"
)

// SolidImage returns a uniform-space image filled with a single color.
func SolidImage(width, height int, c [3]uint8) *colorspace.Image {
	img := colorspace.NewImage(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// BlockPatternImage returns a uniform-space image whose block grid is
// solid per block, cycling through the palette in row-major block order.
// The expected extractor descriptor of such an image is exactly the
// palette sequence.
func BlockPatternImage(blockSize, blocksX, blocksY int, palette [][3]uint8) *colorspace.Image {
	img := colorspace.NewImage(blockSize*blocksX, blockSize*blocksY)
	for by := 0; by < blocksY; by++ {
		for bx := 0; bx < blocksX; bx++ {
			c := palette[(by*blocksX+bx)%len(palette)]
			for y := by * blockSize; y < (by+1)*blockSize; y++ {
				for x := bx * blockSize; x < (bx+1)*blockSize; x++ {
					img.Set(x, y, c)
				}
			}
		}
	}
	return img
}

// NoisyImage returns a uniform-space image where every pixel color is
// drawn from rng, so no block has a dominant color.
func NoisyImage(width, height int, rng *util.RNG) *colorspace.Image {
	img := colorspace.NewImage(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, [3]uint8{
				uint8(rng.Intn(256)),
				uint8(rng.Intn(256)),
				uint8(rng.Intn(256)),
			})
		}
	}
	return img
}

// ClusteredPoints returns perCluster points around each center, jittered
// by at most jitter per channel, flattened to the corpus layout. With
// centers far apart relative to the jitter, k-means with
// k == len(centers) should recover them.
func ClusteredPoints(rng *util.RNG, centers [][3]float32, perCluster int, jitter float32) []float32 {
	points := make([]float32, 0, len(centers)*perCluster*3)
	for _, c := range centers {
		for i := 0; i < perCluster; i++ {
			for d := 0; d < 3; d++ {
				offset := (rng.Float32()*2 - 1) * jitter
				points = append(points, c[d]+offset)
			}
		}
	}
	return points
}

// WriteSolidPNG writes a width x height PNG filled with one sRGB color.
func WriteSolidPNG(path string, width, height int, c color.RGBA) error {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, c)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}
