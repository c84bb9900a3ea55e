// Package imaging loads and resizes source photographs.
//
// Decoding and resizing are thin I/O wrappers around the standard image
// decoders and golang.org/x/image; all descriptor math happens elsewhere.
package imaging

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// ErrDecode indicates that a source image could not be decoded.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrDecode struct {
	Path  string
	cause error
}

func (e *ErrDecode) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.cause)
}

func (e *ErrDecode) Unwrap() error { return e.cause }

// Load reads and decodes the image at path. PNG, JPEG and WEBP are
// supported (WEBP via the golang.org/x/image decoder).
func Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ErrDecode{Path: path, cause: err}
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, &ErrDecode{Path: path, cause: err}
	}
	return img, nil
}

// Resize scales img to width x height using bilinear interpolation.
// If img already has the target dimensions it is returned unchanged.
func Resize(img image.Image, width, height int) image.Image {
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return img
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(dst, dst.Rect, img, b, draw.Src, nil)
	return dst
}

// LoadResized loads the image at path and scales it to the working
// resolution in one step.
func LoadResized(path string, width, height int) (image.Image, error) {
	img, err := Load(path)
	if err != nil {
		return nil, err
	}
	return Resize(img, width, height), nil
}

// ID derives the stable image identifier from a path: the file base name
// with its extension stripped. IDs correlate exported bags with their
// source images and must be unique within one exported batch.
func ID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ListDir returns the sorted paths of all regular files in dir whose
// extension matches a supported image format.
func ListDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".png", ".jpg", ".jpeg", ".webp":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}

	sort.Strings(paths)
	return paths, nil
}
