package persistence

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/colorbag/internal/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloat32SliceRoundTrip(t *testing.T) {
	in := []float32{0, 1.5, -3.25, 1e10, -1e-10}

	var buf bytes.Buffer
	require.NoError(t, WriteFloat32Slice(&buf, in))

	out, err := ReadFloat32Slice(&buf, len(in))
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDecodeFloat32Slice_Short(t *testing.T) {
	_, err := DecodeFloat32Slice([]byte{1, 2, 3}, 1)
	assert.Error(t, err)
}

func TestStringRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteString(&buf, "image_0042"))
	require.NoError(t, WriteString(&buf, ""))

	s, err := ReadString(&buf)
	require.NoError(t, err)
	assert.Equal(t, "image_0042", s)

	s, err = ReadString(&buf)
	require.NoError(t, err)
	assert.Equal(t, "", s)
}

func TestSaveToFile_Atomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.bin")

	require.NoError(t, SaveToFile(nil, path, func(w io.Writer) error {
		_, err := w.Write([]byte("payload"))
		return err
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)
}

func TestSaveToFile_NoPartialOutputOnWriteError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.bin")
	boom := errors.New("boom")

	err := SaveToFile(nil, path, func(w io.Writer) error {
		_, _ = w.Write([]byte("half"))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))

	// No temp litter left behind either.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSaveToFile_NoPartialOutputOnIOFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.bin")

	ffs := fs.NewFaultyFS(nil)
	ffs.SetLimit(4)

	payload := make([]byte, 1<<20) // larger than the write buffer
	err := SaveToFile(ffs, path, func(w io.Writer) error {
		_, err := w.Write(payload)
		return err
	})
	require.ErrorIs(t, err, fs.ErrInjected)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestSaveToFile_OverwritesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.bin")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	require.NoError(t, SaveToFile(nil, path, func(w io.Writer) error {
		_, err := w.Write([]byte("new"))
		return err
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), data)
}

func TestChecksumWriterReader(t *testing.T) {
	var buf bytes.Buffer
	cw := NewChecksumWriter(&buf)
	_, err := cw.Write([]byte("hello checksum"))
	require.NoError(t, err)
	sum := cw.Sum()
	assert.Equal(t, Checksum([]byte("hello checksum")), sum)

	cr := NewChecksumReader(&buf)
	_, err = io.ReadAll(cr)
	require.NoError(t, err)
	require.NoError(t, cr.Verify(sum))

	err = cr.Verify(sum + 1)
	var mismatch *ChecksumMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, sum, mismatch.Actual)
}
