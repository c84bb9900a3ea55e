package colorbag

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/colorbag/blobstore"
	"github.com/hupe1980/colorbag/colorspace"
	"github.com/hupe1980/colorbag/dataset"
)

var batchColors = []color.RGBA{
	{255, 0, 0, 255},
	{0, 255, 0, 255},
	{0, 0, 255, 255},
	{255, 255, 0, 255},
}

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

// writeBatch creates two solid images per color and returns the directory.
func writeBatch(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	for i, c := range batchColors {
		for j := 0; j < 2; j++ {
			writeSolidPNG(t, filepath.Join(dir, fmt.Sprintf("img-%d-%d.png", i, j)), c)
		}
	}
	return dir
}

func labOf(c color.RGBA) [3]float32 {
	adapter := colorspace.LabAdapter{}
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.SetRGBA(0, 0, c)
	p := adapter.ToUniformSpace(img).At(0, 0)
	return [3]float32{float32(p[0]), float32(p[1]), float32(p[2])}
}

func TestPipeline_Run(t *testing.T) {
	dir := writeBatch(t)
	out := filepath.Join(t.TempDir(), "bags.cbds")

	p := New(WithK(4), WithIterations(25), WithSeed(42))

	result, err := p.Run(context.Background(), dir, out)
	require.NoError(t, err)
	assert.Equal(t, 8, result.Images)
	assert.Equal(t, 4, result.K)
	assert.Equal(t, out, result.DatasetPath)
	require.NotEmpty(t, result.TrainStats.Objective)

	// Four well-separated solid colors: the trained centroids must land
	// exactly on the four uniform-space colors.
	var got [][3]float32
	for j := 0; j < result.Codebook.K(); j++ {
		c := result.Codebook.Centroid(j)
		got = append(got, [3]float32{c[0], c[1], c[2]})
	}
	var want [][3]float32
	for _, c := range batchColors {
		want = append(want, labOf(c))
	}
	sortColors := func(s [][3]float32) {
		sort.Slice(s, func(a, b int) bool {
			if s[a][0] != s[b][0] {
				return s[a][0] < s[b][0]
			}
			if s[a][1] != s[b][1] {
				return s[a][1] < s[b][1]
			}
			return s[a][2] < s[b][2]
		})
	}
	sortColors(got)
	sortColors(want)
	assert.Equal(t, want, got)

	r, err := dataset.Open(out)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, 8, r.Len())
	assert.Equal(t, 4, r.K())

	// Raw counts: each solid image puts all its pixels on one centroid.
	for i := 0; i < r.Len(); i++ {
		row, err := r.Row(i)
		require.NoError(t, err)
		assert.Equal(t, float32(160*160), row.Sum())
	}

	row, err := r.RowByID("img-0-0")
	require.NoError(t, err)
	lab0 := labOf(batchColors[0])
	nearest, err := result.Codebook.Nearest(lab0[:])
	require.NoError(t, err)
	assert.Equal(t, float32(160*160), row[nearest])
}

func TestPipeline_RunDeterministic(t *testing.T) {
	dir := writeBatch(t)
	outDir := t.TempDir()

	run := func(name string) []byte {
		p := New(WithK(4), WithSeed(7), WithCompression(dataset.CompressionLZ4))
		out := filepath.Join(outDir, name)
		_, err := p.Run(context.Background(), dir, out)
		require.NoError(t, err)

		data, err := os.ReadFile(out)
		require.NoError(t, err)
		return data
	}

	assert.Equal(t, run("a.cbds"), run("b.cbds"))
}

func TestPipeline_RunEmptyDir(t *testing.T) {
	p := New()
	_, err := p.Run(context.Background(), t.TempDir(), filepath.Join(t.TempDir(), "out.cbds"))
	assert.ErrorIs(t, err, ErrNoImages)
}

func TestPipeline_NormalizeSelection(t *testing.T) {
	dir := writeBatch(t)
	out := filepath.Join(t.TempDir(), "bags.cbds")

	p := New(WithK(4), WithSeed(1), WithNormalization(NormalizationPowerL1))

	_, err := p.Run(context.Background(), dir, out)
	require.NoError(t, err)

	r, err := dataset.Open(out)
	require.NoError(t, err)
	defer r.Close()

	// Power + L1 rows sum to 1.
	for i := 0; i < r.Len(); i++ {
		row, err := r.Row(i)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, float64(row.Sum()), 1e-5)
	}
}

func TestPipeline_Publish(t *testing.T) {
	dir := writeBatch(t)
	out := filepath.Join(t.TempDir(), "bags.cbds")

	metrics := &BasicMetricsCollector{}
	p := New(WithK(4), WithSeed(3), WithMetricsCollector(metrics))

	result, err := p.Run(context.Background(), dir, out)
	require.NoError(t, err)

	cbPath := filepath.Join(filepath.Dir(out), "codebook.cbvc")
	require.NoError(t, result.Codebook.Save(nil, cbPath))

	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	_, err = OpenManifest(ctx, store, "release-1")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	m, err := p.Publish(ctx, store, "release-1", out, cbPath)
	require.NoError(t, err)
	assert.Equal(t, 8, m.NumBags)
	assert.Equal(t, 4, m.K)
	assert.Equal(t, "zstd", m.Compression)

	opened, err := OpenManifest(ctx, store, "release-1")
	require.NoError(t, err)
	assert.Equal(t, m.Dataset, opened.Dataset)
	assert.Equal(t, m.Codebook, opened.Codebook)

	// All three blobs present, manifest committed last.
	names, err := store.List(ctx, "release-1/")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"release-1/bags.cbds",
		"release-1/codebook.cbvc",
		"release-1/manifest.json",
	}, names)

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.CollectCount)
	assert.Equal(t, int64(8), stats.CollectImages)
	assert.Equal(t, int64(1), stats.TrainCount)
	assert.Equal(t, int64(1), stats.ExportCount)
	assert.Equal(t, int64(1), stats.PublishCount)
	assert.Equal(t, int64(0), stats.PublishErrors)
}
