package corpus

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/colorbag/codebook"
	"github.com/hupe1980/colorbag/colorspace"
	"github.com/hupe1980/colorbag/extractor"
	"github.com/hupe1980/colorbag/imaging"
	"github.com/hupe1980/colorbag/internal/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSolidPNG(t *testing.T, path string, c color.RGBA) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 160, 160))
	for y := 0; y < 160; y++ {
		for x := 0; x < 160; x++ {
			img.SetRGBA(x, y, c)
		}
	}

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func labOf(c color.RGBA) [3]uint8 {
	adapter := colorspace.LabAdapter{}
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.SetRGBA(0, 0, c)
	return adapter.ToUniformSpace(img).At(0, 0)
}

func TestCollect_PoolsDescriptorsInOrder(t *testing.T) {
	dir := t.TempDir()
	red := color.RGBA{255, 0, 0, 255}
	green := color.RGBA{0, 255, 0, 255}

	redPath := filepath.Join(dir, "red.png")
	greenPath := filepath.Join(dir, "green.png")
	writeSolidPNG(t, redPath, red)
	writeSolidPNG(t, greenPath, green)

	c := NewCollector(extractor.New())
	corp, err := c.Collect(context.Background(), []string{redPath, greenPath})
	require.NoError(t, err)

	assert.Equal(t, 2, corp.NumImages())
	assert.Equal(t, 2*256, corp.Len())
	require.Len(t, corp.Data(), 2*256*codebook.Dim)

	// Solid images yield 256 copies of the image's uniform-space color,
	// at the image's fixed offset.
	wantRed := labOf(red)
	wantGreen := labOf(green)

	redDesc := corp.Descriptor(0)
	greenDesc := corp.Descriptor(1)
	for b := 0; b < 256; b++ {
		assert.Equal(t, float32(wantRed[0]), redDesc[b*3])
		assert.Equal(t, float32(wantRed[1]), redDesc[b*3+1])
		assert.Equal(t, float32(wantRed[2]), redDesc[b*3+2])
		assert.Equal(t, float32(wantGreen[0]), greenDesc[b*3])
	}
}

func TestCollect_FailsWholeBatchOnDecodeError(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.png")
	bad := filepath.Join(dir, "bad.png")
	writeSolidPNG(t, good, color.RGBA{10, 20, 30, 255})
	require.NoError(t, os.WriteFile(bad, []byte("garbage"), 0o644))

	c := NewCollector(extractor.New())
	_, err := c.Collect(context.Background(), []string{good, bad})
	require.Error(t, err)

	var de *imaging.ErrDecode
	require.True(t, errors.As(err, &de))
	assert.Equal(t, bad, de.Path)
}

func TestCollect_Deterministic(t *testing.T) {
	dir := t.TempDir()

	// A noisy image exercises the extractor's random paths.
	img := image.NewRGBA(image.Rect(0, 0, 160, 160))
	for y := 0; y < 160; y++ {
		for x := 0; x < 160; x++ {
			img.SetRGBA(x, y, color.RGBA{uint8(x * 31), uint8(y * 17), uint8(x*y + 3), 255})
		}
	}
	path := filepath.Join(dir, "noise.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	paths := []string{path, path, path}

	collect := func(workers int) *Corpus {
		c := NewCollector(extractor.New(), func(o *Options) {
			o.Seed = 77
			o.Workers = workers
		})
		corp, err := c.Collect(context.Background(), paths)
		require.NoError(t, err)
		return corp
	}

	// Same seed, different parallelism: identical corpus.
	assert.Equal(t, collect(1).Data(), collect(3).Data())
}

func TestCollect_WithResourceController(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "img.png")
	writeSolidPNG(t, path, color.RGBA{1, 2, 3, 255})

	ctrl := resource.NewController(resource.Config{MemoryLimitBytes: 1 << 20})
	c := NewCollector(extractor.New(), func(o *Options) {
		o.Controller = ctrl
	})

	corp, err := c.Collect(context.Background(), []string{path, path})
	require.NoError(t, err)
	assert.Equal(t, 2, corp.NumImages())
	assert.Equal(t, int64(0), ctrl.MemoryUsage())
}

func TestCollect_Empty(t *testing.T) {
	c := NewCollector(extractor.New())
	corp, err := c.Collect(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, corp.NumImages())
	assert.Equal(t, 0, corp.Len())
}
