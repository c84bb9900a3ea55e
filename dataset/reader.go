package dataset

import (
	"fmt"
	"os"

	"github.com/hupe1980/colorbag/bag"
	"github.com/hupe1980/colorbag/internal/mmap"
	"github.com/hupe1980/colorbag/persistence"
)

const headerSize = 4 * 5

// Reader serves rows out of a dataset file. Open loads the file into
// memory; OpenMmap maps it and, for uncompressed datasets, serves rows
// straight out of the mapping without copying the row section.
type Reader struct {
	header fileHeader
	ids    []string
	index  map[string]int
	rows   []byte
	mm     *mmap.File
}

// Open reads the dataset at path into memory.
func Open(path string) (*Reader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return newReader(data, nil)
}

// OpenMmap memory-maps the dataset at path. The Reader must be closed to
// release the mapping.
func OpenMmap(path string) (*Reader, error) {
	mm, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}

	r, err := newReader(mm.Data, mm)
	if err != nil {
		_ = mm.Close()
		return nil, err
	}
	return r, nil
}

func newReader(data []byte, mm *mmap.File) (*Reader, error) {
	if len(data) < headerSize+4 {
		return nil, fmt.Errorf("dataset file too short: %d bytes", len(data))
	}

	body := data[:len(data)-4]
	sum := persistence.ByteOrder.Uint32(data[len(data)-4:])
	if actual := persistence.Checksum(body); actual != sum {
		return nil, &persistence.ChecksumMismatchError{Expected: sum, Actual: actual}
	}

	header := fileHeader{
		Magic:       persistence.ByteOrder.Uint32(body[0:]),
		Version:     persistence.ByteOrder.Uint32(body[4:]),
		NumBags:     persistence.ByteOrder.Uint32(body[8:]),
		K:           persistence.ByteOrder.Uint32(body[12:]),
		Compression: persistence.ByteOrder.Uint32(body[16:]),
	}
	if header.Magic != fileMagic {
		return nil, fmt.Errorf("%w: got 0x%08x", ErrInvalidMagic, header.Magic)
	}
	if header.Version != fileVersion {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidVersion, header.Version)
	}

	off := headerSize
	ids := make([]string, header.NumBags)
	index := make(map[string]int, header.NumBags)
	for i := range ids {
		if off+4 > len(body) {
			return nil, fmt.Errorf("truncated id table at row %d", i)
		}
		n := int(persistence.ByteOrder.Uint32(body[off:]))
		off += 4
		if off+n > len(body) {
			return nil, fmt.Errorf("truncated id table at row %d", i)
		}
		ids[i] = string(body[off : off+n])
		index[ids[i]] = i
		off += n
	}

	if off+8 > len(body) {
		return nil, fmt.Errorf("truncated row section header")
	}
	rowLen := int(persistence.ByteOrder.Uint64(body[off:]))
	off += 8
	if off+rowLen != len(body) {
		return nil, fmt.Errorf("row section length mismatch: header says %d bytes, file has %d", rowLen, len(body)-off)
	}

	rows, err := decompress(body[off:], Compression(header.Compression), int(header.NumBags)*int(header.K)*4)
	if err != nil {
		return nil, err
	}

	return &Reader{header: header, ids: ids, index: index, rows: rows, mm: mm}, nil
}

// Len returns the number of rows in the dataset.
func (r *Reader) Len() int { return int(r.header.NumBags) }

// K returns the bag length shared by every row.
func (r *Reader) K() int { return int(r.header.K) }

// Compression returns the codec the row section was stored with.
func (r *Reader) Compression() Compression { return Compression(r.header.Compression) }

// IDs returns the image IDs in row order. The slice is shared, not copied.
func (r *Reader) IDs() []string { return r.ids }

// ID returns the image ID at row i.
func (r *Reader) ID(i int) (string, error) {
	if i < 0 || i >= len(r.ids) {
		return "", fmt.Errorf("row %d out of range [0, %d)", i, len(r.ids))
	}
	return r.ids[i], nil
}

// Row decodes the bag at row i into a fresh slice.
func (r *Reader) Row(i int) (bag.Bag, error) {
	if i < 0 || i >= r.Len() {
		return nil, fmt.Errorf("row %d out of range [0, %d)", i, r.Len())
	}

	k := r.K()
	vec, err := persistence.DecodeFloat32Slice(r.rows[i*k*4:], k)
	if err != nil {
		return nil, err
	}
	return bag.Bag(vec), nil
}

// RowByID decodes the bag stored under the given image ID.
func (r *Reader) RowByID(id string) (bag.Bag, error) {
	i, ok := r.index[id]
	if !ok {
		return nil, fmt.Errorf("unknown image id %q", id)
	}
	return r.Row(i)
}

// Close releases the memory mapping, if any. Safe on in-memory readers.
func (r *Reader) Close() error {
	if r.mm != nil {
		mm := r.mm
		r.mm = nil
		r.rows = nil
		return mm.Close()
	}
	return nil
}
