package dataset

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/hupe1980/colorbag/bag"
	"github.com/hupe1980/colorbag/internal/fs"
	"github.com/hupe1980/colorbag/persistence"
)

// ErrDuplicateID is returned when two bags share an image ID. A dataset
// maps IDs to rows, so duplicates would make half the rows unreachable.
type ErrDuplicateID struct {
	ID string
}

func (e *ErrDuplicateID) Error() string {
	return fmt.Sprintf("duplicate image id %q", e.ID)
}

// ErrRaggedRow is returned when a bag's length differs from the first row.
type ErrRaggedRow struct {
	Row  int
	Want int
	Got  int
}

func (e *ErrRaggedRow) Error() string {
	return fmt.Sprintf("ragged bag at row %d: want %d entries, got %d", e.Row, e.Want, e.Got)
}

// Options contains configuration options for the exporter.
type Options struct {
	// Compression is the codec applied to the row section.
	Compression Compression

	// FileSystem is used for all writes. Defaults to the local filesystem.
	FileSystem fs.FileSystem
}

// DefaultOptions contains the default configuration options for the exporter.
var DefaultOptions = Options{
	Compression: CompressionZstd,
	FileSystem:  fs.Default,
}

// Exporter writes datasets. Export is atomic: on any failure the target
// path either keeps its previous content or does not exist.
type Exporter struct {
	opts Options
}

// NewExporter creates a new Exporter.
func NewExporter(optFns ...func(o *Options)) *Exporter {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.FileSystem == nil {
		opts.FileSystem = fs.Default
	}

	return &Exporter{opts: opts}
}

// Export writes one dataset file holding ids[i] and bags[i] at row i.
// IDs must be unique and every bag must have the same length.
func (e *Exporter) Export(path string, ids []string, bags []bag.Bag) error {
	if len(ids) != len(bags) {
		return fmt.Errorf("id/bag count mismatch: %d ids, %d bags", len(ids), len(bags))
	}

	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return &ErrDuplicateID{ID: id}
		}
		seen[id] = struct{}{}
	}

	k := 0
	if len(bags) > 0 {
		k = len(bags[0])
	}
	for i, b := range bags {
		if len(b) != k {
			return &ErrRaggedRow{Row: i, Want: k, Got: len(b)}
		}
	}

	rows := make([]byte, 0, len(bags)*k*4)
	for _, b := range bags {
		for _, v := range b {
			rows = binary.LittleEndian.AppendUint32(rows, math.Float32bits(v))
		}
	}

	compressed, err := compress(rows, e.opts.Compression)
	if err != nil {
		return err
	}

	return persistence.SaveToFile(e.opts.FileSystem, path, func(w io.Writer) error {
		cw := persistence.NewChecksumWriter(w)

		header := fileHeader{
			Magic:       fileMagic,
			Version:     fileVersion,
			NumBags:     uint32(len(bags)),
			K:           uint32(k),
			Compression: uint32(e.opts.Compression),
		}
		if err := binary.Write(cw, persistence.ByteOrder, &header); err != nil {
			return err
		}

		for _, id := range ids {
			if err := persistence.WriteString(cw, id); err != nil {
				return err
			}
		}

		if err := binary.Write(cw, persistence.ByteOrder, uint64(len(compressed))); err != nil {
			return err
		}
		if _, err := cw.Write(compressed); err != nil {
			return err
		}

		return binary.Write(w, persistence.ByteOrder, cw.Sum())
	})
}
