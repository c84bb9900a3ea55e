package codebook

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/colorbag/internal/fs"
	"github.com/hupe1980/colorbag/persistence"
)

const (
	// fileMagic identifies codebook files (ASCII "CBVC": colorbag vocabulary).
	fileMagic = 0x43425643
	// fileVersion is the current codebook file format version.
	fileVersion = 1
)

var (
	ErrInvalidMagic   = errors.New("invalid codebook magic number")
	ErrInvalidVersion = errors.New("unsupported codebook version")
)

// fileHeader is the fixed header at the start of every codebook file.
type fileHeader struct {
	Magic   uint32
	Version uint32
	K       uint32
	Dim     uint32
}

// Save persists the codebook to path atomically.
func (cb *Codebook) Save(fsys fs.FileSystem, path string) error {
	return persistence.SaveToFile(fsys, path, func(w io.Writer) error {
		cw := persistence.NewChecksumWriter(w)

		header := fileHeader{Magic: fileMagic, Version: fileVersion, K: uint32(cb.k), Dim: Dim}
		if err := binary.Write(cw, persistence.ByteOrder, &header); err != nil {
			return err
		}
		if err := persistence.WriteFloat32Slice(cw, cb.centroids); err != nil {
			return err
		}

		return binary.Write(w, persistence.ByteOrder, cw.Sum())
	})
}

// Load reads a codebook previously written by Save.
func Load(path string) (*Codebook, error) {
	var cb *Codebook
	err := persistence.LoadFromFile(path, func(r io.Reader) error {
		cr := persistence.NewChecksumReader(r)

		var header fileHeader
		if err := binary.Read(cr, persistence.ByteOrder, &header); err != nil {
			return err
		}
		if header.Magic != fileMagic {
			return fmt.Errorf("%w: got 0x%08x", ErrInvalidMagic, header.Magic)
		}
		if header.Version != fileVersion {
			return fmt.Errorf("%w: got %d", ErrInvalidVersion, header.Version)
		}
		if header.Dim != Dim {
			return fmt.Errorf("unexpected centroid dimension %d", header.Dim)
		}

		centroids, err := persistence.ReadFloat32Slice(cr, int(header.K)*Dim)
		if err != nil {
			return err
		}

		var sum uint32
		if err := binary.Read(r, persistence.ByteOrder, &sum); err != nil {
			return err
		}
		if err := cr.Verify(sum); err != nil {
			return err
		}

		cb, err = NewFromCentroids(centroids)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cb, nil
}
