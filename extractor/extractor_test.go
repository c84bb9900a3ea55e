package extractor

import (
	"errors"
	"testing"

	"github.com/hupe1980/colorbag/colorspace"
	"github.com/hupe1980/colorbag/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockPattern builds a 160x160 uniform-space image from a 16x16 grid of
// solid 10x10 blocks, with a distinct color per block.
func blockPattern() (*colorspace.Image, [][3]uint8) {
	img := colorspace.NewImage(160, 160)
	colors := make([][3]uint8, 0, 256)

	for by := 0; by < 16; by++ {
		for bx := 0; bx < 16; bx++ {
			c := [3]uint8{uint8(by*16 + bx), uint8(bx * 3), uint8(by * 5)}
			colors = append(colors, c)
			for y := by * 10; y < by*10+10; y++ {
				for x := bx * 10; x < bx*10+10; x++ {
					img.Set(x, y, c)
				}
			}
		}
	}

	return img, colors
}

func TestExtract_BlockCount(t *testing.T) {
	img, _ := blockPattern()
	e := New()

	desc, err := e.Extract(img, util.NewRNG(1))
	require.NoError(t, err)
	assert.Len(t, desc, 256)
}

func TestExtract_RecoversSolidBlocks(t *testing.T) {
	// Solid blocks with no two adjacent blocks sharing a color must be
	// recovered exactly, in row-major order.
	img, want := blockPattern()
	e := New()

	desc, err := e.Extract(img, util.NewRNG(1))
	require.NoError(t, err)
	assert.Equal(t, Descriptor(want), desc)
}

func TestExtract_UniformBlockIgnoresThreshold(t *testing.T) {
	img := colorspace.NewImage(10, 10)
	c := [3]uint8{42, 17, 99}
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			img.Set(x, y, c)
		}
	}

	// Even an absurd threshold cannot beat 100 identical pixels.
	e := New(func(o *Options) {
		o.NumBlocks = 1
		o.OccurrenceThreshold = 100
	})

	desc, err := e.Extract(img, util.NewRNG(7))
	require.NoError(t, err)
	assert.Equal(t, c, desc[0])
}

func TestExtract_AllDistinctFallsBackToBlockPixel(t *testing.T) {
	// Every pixel distinct: max frequency 1, below the threshold, so the
	// representative must be randomly picked from the block's own pixels.
	img := colorspace.NewImage(10, 10)
	members := make(map[[3]uint8]bool, 100)
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			c := [3]uint8{uint8(y*10 + x), uint8(x), uint8(y)}
			img.Set(x, y, c)
			members[c] = true
		}
	}

	e := New(func(o *Options) { o.NumBlocks = 1 })

	for seed := int64(0); seed < 20; seed++ {
		desc, err := e.Extract(img, util.NewRNG(seed))
		require.NoError(t, err)
		assert.True(t, members[desc[0]], "representative %v is not a block pixel", desc[0])
	}
}

func TestExtract_DominantColorWins(t *testing.T) {
	// 60 pixels of one color vs 40 scattered distinct ones.
	img := colorspace.NewImage(10, 10)
	dominant := [3]uint8{200, 100, 50}
	n := 0
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			if n < 60 {
				img.Set(x, y, dominant)
			} else {
				img.Set(x, y, [3]uint8{uint8(n), 0, 255})
			}
			n++
		}
	}

	e := New(func(o *Options) { o.NumBlocks = 1 })
	desc, err := e.Extract(img, util.NewRNG(3))
	require.NoError(t, err)
	assert.Equal(t, dominant, desc[0])
}

func TestExtract_Deterministic(t *testing.T) {
	// All-distinct pixels exercise the random paths; the same seed must
	// reproduce the same descriptor.
	img := colorspace.NewImage(40, 40)
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			img.Set(x, y, [3]uint8{uint8(x * 7), uint8(y * 11), uint8(x + y)})
		}
	}

	e := New(func(o *Options) { o.NumBlocks = 16 })

	a, err := e.Extract(img, util.NewRNG(1234))
	require.NoError(t, err)
	b, err := e.Extract(img, util.NewRNG(1234))
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := e.Extract(img, util.NewRNG(4321))
	require.NoError(t, err)
	// Different seed is allowed to differ (and virtually always does).
	assert.Len(t, c, 16)
}

func TestExtract_InvalidShape(t *testing.T) {
	e := New()

	tests := []struct {
		name string
		w, h int
	}{
		{name: "width not divisible", w: 155, h: 160},
		{name: "height not divisible", w: 160, h: 155},
		{name: "wrong block count", w: 80, h: 80},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Extract(colorspace.NewImage(tt.w, tt.h), util.NewRNG(1))
			var se *ErrInvalidShape
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.w, se.Width)
			assert.Equal(t, tt.h, se.Height)
		})
	}
}
