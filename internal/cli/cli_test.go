package cli

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/colorbag/dataset"
	"github.com/hupe1980/colorbag/testutil"
)

func writeImages(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	colors := []color.RGBA{
		{255, 0, 0, 255},
		{0, 255, 0, 255},
		{0, 0, 255, 255},
		{255, 255, 0, 255},
	}
	for i, c := range colors {
		path := filepath.Join(dir, fmt.Sprintf("img-%d.png", i))
		require.NoError(t, testutil.WriteSolidPNG(path, 160, 160, c))
	}
	return dir
}

func execute(t *testing.T, args ...string) error {
	t.Helper()

	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	return cmd.Execute()
}

func TestRunCommand(t *testing.T) {
	dir := writeImages(t)
	out := filepath.Join(t.TempDir(), "bags.cbds")

	require.NoError(t, execute(t, "run", dir, out, "--k", "4", "--seed", "5"))

	r, err := dataset.Open(out)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, 4, r.Len())
	assert.Equal(t, 4, r.K())
}

func TestTrainThenBags(t *testing.T) {
	dir := writeImages(t)
	workDir := t.TempDir()
	cbPath := filepath.Join(workDir, "codebook.cbvc")
	out := filepath.Join(workDir, "batch.cbds")

	require.NoError(t, execute(t, "train", dir, cbPath, "--k", "4", "--seed", "5"))
	require.NoError(t, execute(t, "bags", dir, cbPath, out, "--normalize", "max", "--compression", "lz4"))

	r, err := dataset.Open(out)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, 4, r.Len())
	assert.Equal(t, dataset.CompressionLZ4, r.Compression())
}

func TestPublishCommand(t *testing.T) {
	dir := writeImages(t)
	workDir := t.TempDir()
	out := filepath.Join(workDir, "bags.cbds")
	storeDir := t.TempDir()

	require.NoError(t, execute(t, "run", dir, out, "--k", "4"))
	require.NoError(t, execute(t, "publish", "release-1", out, "--dir", storeDir))

	_, err := os.Stat(filepath.Join(storeDir, "release-1", "manifest.json"))
	assert.NoError(t, err)
}

func TestPublishCommand_RequiresTarget(t *testing.T) {
	err := execute(t, "publish", "release-1", "whatever.cbds")
	require.Error(t, err)
}

func TestRunCommand_BadNormalization(t *testing.T) {
	err := execute(t, "run", t.TempDir(), "out.cbds", "--normalize", "bogus")
	require.Error(t, err)
}
