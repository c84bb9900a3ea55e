// Package dataset exports batches of bag histograms to a single binary
// container and reads them back with random access. A dataset file holds
// the image IDs, the raw bag rows and enough metadata to validate the
// file before any row is served.
package dataset

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

const (
	// fileMagic identifies dataset files (ASCII "CBDS": colorbag dataset).
	fileMagic = 0x43424453
	// fileVersion is the current dataset file format version.
	fileVersion = 1
)

var (
	ErrInvalidMagic   = errors.New("invalid dataset magic number")
	ErrInvalidVersion = errors.New("unsupported dataset version")
)

// Compression selects the codec applied to the row section. IDs and
// header stay uncompressed so a reader can list a dataset cheaply.
type Compression uint32

const (
	CompressionNone Compression = iota
	CompressionZstd
	CompressionLZ4
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("unknown(%d)", uint32(c))
	}
}

// ParseCompression maps a codec name to its Compression value.
func ParseCompression(s string) (Compression, error) {
	switch s {
	case "none", "":
		return CompressionNone, nil
	case "zstd":
		return CompressionZstd, nil
	case "lz4":
		return CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("unknown compression codec %q", s)
	}
}

// fileHeader is the fixed header at the start of every dataset file.
type fileHeader struct {
	Magic       uint32
	Version     uint32
	NumBags     uint32
	K           uint32
	Compression uint32
}

func compress(data []byte, c Compression) ([]byte, error) {
	switch c {
	case CompressionNone:
		return data, nil
	case CompressionZstd:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, err
		}
		defer enc.Close()
		return enc.EncodeAll(data, make([]byte, 0, len(data)/2)), nil
	case CompressionLZ4:
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown compression codec %d", c)
	}
}

func decompress(data []byte, c Compression, uncompressedLen int) ([]byte, error) {
	switch c {
	case CompressionNone:
		if len(data) != uncompressedLen {
			return nil, fmt.Errorf("row section length mismatch: want %d bytes, have %d", uncompressedLen, len(data))
		}
		return data, nil
	case CompressionZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		out, err := dec.DecodeAll(data, make([]byte, 0, uncompressedLen))
		if err != nil {
			return nil, err
		}
		if len(out) != uncompressedLen {
			return nil, fmt.Errorf("row section length mismatch: want %d bytes, have %d", uncompressedLen, len(out))
		}
		return out, nil
	case CompressionLZ4:
		out := make([]byte, uncompressedLen)
		r := lz4.NewReader(bytes.NewReader(data))
		if _, err := io.ReadFull(r, out); err != nil {
			return nil, err
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown compression codec %d", c)
	}
}
