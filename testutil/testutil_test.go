package testutil

import (
	"testing"

	"github.com/hupe1980/colorbag/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolidImage(t *testing.T) {
	img := SolidImage(4, 3, [3]uint8{10, 20, 30})
	assert.Equal(t, 4, img.Width)
	assert.Equal(t, 3, img.Height)
	assert.Equal(t, [3]uint8{10, 20, 30}, img.At(0, 0))
	assert.Equal(t, [3]uint8{10, 20, 30}, img.At(3, 2))
}

func TestBlockPatternImage(t *testing.T) {
	palette := [][3]uint8{{1, 1, 1}, {2, 2, 2}, {3, 3, 3}}
	img := BlockPatternImage(2, 3, 2, palette)

	require.Equal(t, 6, img.Width)
	require.Equal(t, 4, img.Height)

	// Block (0,0) is palette[0], block (1,0) palette[1], block (0,1)
	// palette[0] again (index 3 cycles).
	assert.Equal(t, palette[0], img.At(0, 0))
	assert.Equal(t, palette[0], img.At(1, 1))
	assert.Equal(t, palette[1], img.At(2, 0))
	assert.Equal(t, palette[0], img.At(0, 2))
}

func TestClusteredPoints(t *testing.T) {
	rng := util.NewRNG(1)
	centers := [][3]float32{{0, 0, 0}, {100, 100, 100}}

	points := ClusteredPoints(rng, centers, 5, 2)
	require.Len(t, points, 2*5*3)

	for i := 0; i < 5; i++ {
		for d := 0; d < 3; d++ {
			assert.LessOrEqual(t, points[i*3+d], float32(2))
			assert.GreaterOrEqual(t, points[(5+i)*3+d], float32(98))
		}
	}
}

func TestNoisyImage_Deterministic(t *testing.T) {
	a := NoisyImage(8, 8, util.NewRNG(9))
	b := NoisyImage(8, 8, util.NewRNG(9))
	assert.Equal(t, a.Pix, b.Pix)
}
