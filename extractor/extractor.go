// Package extractor reduces an image to a fixed-length descriptor of
// dominant block colors.
//
// The image is partitioned into a fixed grid of blocks, and each block is
// reduced to one representative color: the most frequent exact color in
// the block, or a randomly picked block pixel when no color is frequent
// enough to dominate.
package extractor

import (
	"fmt"

	"github.com/hupe1980/colorbag/colorspace"
	"github.com/hupe1980/colorbag/util"
)

// Descriptor is the ordered sequence of representative block colors for
// one image, in row-major block scan order. Two descriptors are only
// comparable position by position, so the order is part of the contract.
type Descriptor [][3]uint8

// ErrInvalidShape indicates an image whose dimensions do not fit the
// configured block grid.
type ErrInvalidShape struct {
	Width     int
	Height    int
	BlockSize int
	NumBlocks int
}

func (e *ErrInvalidShape) Error() string {
	return fmt.Sprintf("invalid shape: %dx%d not divisible into %d blocks of size %d",
		e.Width, e.Height, e.NumBlocks, e.BlockSize)
}

// Options contains configuration options for the extractor.
type Options struct {
	// BlockSize is the side length of one square block in pixels.
	BlockSize int

	// NumBlocks is the exact number of blocks the grid must yield.
	NumBlocks int

	// OccurrenceThreshold is the minimum frequency the most frequent block
	// color must reach. Below it, a random block pixel is used instead.
	OccurrenceThreshold int
}

// DefaultOptions contains the default configuration options:
// a 16x16 grid of 10x10 blocks on a 160x160 working image.
var DefaultOptions = Options{
	BlockSize:           10,
	NumBlocks:           256,
	OccurrenceThreshold: 4,
}

// Extractor extracts block color descriptors. It is stateless and safe
// for concurrent use; randomness comes from the RNG passed per call.
type Extractor struct {
	opts Options
}

// New creates a new Extractor.
func New(optFns ...func(o *Options)) *Extractor {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Extractor{opts: opts}
}

// Options returns the extractor configuration.
func (e *Extractor) Options() Options { return e.opts }

// Extract computes the block color descriptor of img.
//
// Blocks are scanned row-major (rows of blocks outer, columns inner) and
// the result always holds exactly NumBlocks colors in that order. The rng
// drives both tie-breaking between equally frequent colors and the random
// fallback pick; passing generators with the same seed reproduces the
// same descriptor.
func (e *Extractor) Extract(img *colorspace.Image, rng *util.RNG) (Descriptor, error) {
	bs := e.opts.BlockSize
	if img.Width%bs != 0 || img.Height%bs != 0 {
		return nil, &ErrInvalidShape{Width: img.Width, Height: img.Height, BlockSize: bs, NumBlocks: e.opts.NumBlocks}
	}

	cols := img.Width / bs
	rows := img.Height / bs
	if cols*rows != e.opts.NumBlocks {
		return nil, &ErrInvalidShape{Width: img.Width, Height: img.Height, BlockSize: bs, NumBlocks: e.opts.NumBlocks}
	}

	desc := make(Descriptor, 0, e.opts.NumBlocks)
	for by := 0; by < rows; by++ {
		for bx := 0; bx < cols; bx++ {
			desc = append(desc, e.blockColor(img, bx*bs, by*bs, rng))
		}
	}

	return desc, nil
}

// blockColor reduces the bs x bs block with top-left corner (x0, y0) to
// its representative color.
func (e *Extractor) blockColor(img *colorspace.Image, x0, y0 int, rng *util.RNG) [3]uint8 {
	bs := e.opts.BlockSize

	// Transient per-block frequency count over exact colors. The order
	// slice keeps first-appearance order so tie candidates are collected
	// deterministically regardless of map iteration order.
	counts := make(map[[3]uint8]int, bs*bs)
	order := make([][3]uint8, 0, bs*bs)

	for y := y0; y < y0+bs; y++ {
		for x := x0; x < x0+bs; x++ {
			c := img.At(x, y)
			if _, seen := counts[c]; !seen {
				order = append(order, c)
			}
			counts[c]++
		}
	}

	best := 0
	for _, c := range order {
		if counts[c] > best {
			best = counts[c]
		}
	}

	if best < e.opts.OccurrenceThreshold {
		// No dominant color: fall back to a uniformly random block pixel.
		i := rng.Intn(bs * bs)
		return img.At(x0+i%bs, y0+i/bs)
	}

	ties := order[:0:0]
	for _, c := range order {
		if counts[c] == best {
			ties = append(ties, c)
		}
	}
	if len(ties) == 1 {
		return ties[0]
	}
	return ties[rng.Intn(len(ties))]
}
