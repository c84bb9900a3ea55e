// Package persistence provides binary serialization primitives shared by
// the codebook and dataset file formats: little-endian slice IO, CRC32
// integrity checking, and atomic file replacement.
package persistence

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/hupe1980/colorbag/internal/fs"
)

// ByteOrder is the byte order of every persisted file. Little-endian is
// native on amd64 and arm64.
var ByteOrder = binary.LittleEndian

// WriteFloat32Slice writes vec as raw little-endian bytes.
func WriteFloat32Slice(w io.Writer, vec []float32) error {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		ByteOrder.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	_, err := w.Write(buf)
	return err
}

// ReadFloat32Slice reads count float32 values.
func ReadFloat32Slice(r io.Reader, count int) ([]float32, error) {
	buf := make([]byte, 4*count)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}

	vec := make([]float32, count)
	for i := range vec {
		vec[i] = math.Float32frombits(ByteOrder.Uint32(buf[i*4:]))
	}
	return vec, nil
}

// DecodeFloat32Slice decodes count float32 values from data in place.
func DecodeFloat32Slice(data []byte, count int) ([]float32, error) {
	if len(data) < 4*count {
		return nil, fmt.Errorf("short float32 section: need %d bytes, have %d", 4*count, len(data))
	}

	vec := make([]float32, count)
	for i := range vec {
		vec[i] = math.Float32frombits(ByteOrder.Uint32(data[i*4:]))
	}
	return vec, nil
}

// WriteString writes a length-prefixed UTF-8 string.
func WriteString(w io.Writer, s string) error {
	var lenBuf [4]byte
	ByteOrder.PutUint32(lenBuf[:], uint32(len(s)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

// ReadString reads a length-prefixed UTF-8 string.
func ReadString(r io.Reader) (string, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return "", err
	}
	buf := make([]byte, ByteOrder.Uint32(lenBuf[:]))
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// SaveToFile writes a file atomically: the content goes to a temp file in
// the target directory, is fsynced, and is renamed over the target. A
// partially written file is never observable under the final name.
func SaveToFile(fsys fs.FileSystem, filename string, writeFunc func(io.Writer) error) error {
	if fsys == nil {
		fsys = fs.Default
	}

	dir := filepath.Dir(filename)
	tmpName := filename + fmt.Sprintf(".tmp-%d", os.Getpid())

	tmp, err := fsys.OpenFile(tmpName, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	cleanup := true
	defer func() {
		if cleanup {
			_ = tmp.Close()
			_ = fsys.Remove(tmpName)
		}
	}()

	buf := bufio.NewWriterSize(tmp, 256*1024)
	if err := writeFunc(buf); err != nil {
		return err
	}
	if err := buf.Flush(); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := fsys.Rename(tmpName, filename); err != nil {
		_ = fsys.Remove(tmpName)
		cleanup = false
		return err
	}
	cleanup = false

	// Best-effort: fsync the directory so the rename is durable on POSIX.
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}

	return nil
}

// LoadFromFile opens filename and hands a buffered reader to readFunc.
func LoadFromFile(filename string, readFunc func(io.Reader) error) error {
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	return readFunc(bufio.NewReaderSize(f, 256*1024))
}
