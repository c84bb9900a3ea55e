// Package bag quantizes images against a trained codebook into bag-of-colors
// histograms and normalizes batches of them.
package bag

import (
	"context"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/colorbag/codebook"
	"github.com/hupe1980/colorbag/colorspace"
	"github.com/hupe1980/colorbag/imaging"
	"github.com/hupe1980/colorbag/internal/resource"
)

// Bag is a histogram over codebook entries: index j holds the number of
// pixels assigned to centroid j (or a normalized weight after a
// normalizer ran). Raw counts are the canonical persisted form.
type Bag []float32

// Sum returns the total weight of the bag.
func (b Bag) Sum() float32 {
	var s float32
	for _, v := range b {
		s += v
	}
	return s
}

// Options contains configuration options for the builder.
type Options struct {
	// WorkingWidth and WorkingHeight are the resolution every image is
	// resized to before assignment.
	WorkingWidth  int
	WorkingHeight int

	// Workers bounds the number of images processed concurrently.
	// Defaults to GOMAXPROCS.
	Workers int

	// Adapter converts decoded images to the uniform color space.
	Adapter colorspace.Adapter

	// Controller optionally bounds decode memory and IO. Nil disables.
	Controller *resource.Controller
}

// DefaultOptions contains the default configuration options for the builder.
var DefaultOptions = Options{
	WorkingWidth:  160,
	WorkingHeight: 160,
	Adapter:       colorspace.LabAdapter{},
}

// Builder builds bags for images. The codebook is an explicit argument on
// every call, never ambient state.
type Builder struct {
	opts Options
}

// NewBuilder creates a new Builder.
func NewBuilder(optFns ...func(o *Options)) *Builder {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.Adapter == nil {
		opts.Adapter = colorspace.LabAdapter{}
	}

	return &Builder{opts: opts}
}

// BuildImage assigns every pixel of an already-converted uniform-space
// image to its nearest centroid. The sum of the returned bag equals the
// image's pixel count: every pixel contributes exactly one increment.
func BuildImage(img *colorspace.Image, cb *codebook.Codebook) (Bag, error) {
	if cb.K() == 0 {
		return nil, codebook.ErrEmptyCodebook
	}

	bag := make(Bag, cb.K())
	n := img.Width * img.Height
	for i := 0; i < n; i++ {
		p := img.Pix[i*3 : i*3+3]
		j, err := cb.NearestPixel([3]uint8{p[0], p[1], p[2]})
		if err != nil {
			return nil, err
		}
		bag[j]++
	}

	return bag, nil
}

// Build decodes and resizes the image at path, converts it to the uniform
// space and quantizes every pixel against the codebook. Unlike block
// extraction, all pixels participate, not just block representatives.
func (b *Builder) Build(ctx context.Context, path string, cb *codebook.Codebook) (Bag, error) {
	if cb.K() == 0 {
		return nil, codebook.ErrEmptyCodebook
	}

	if fi, err := os.Stat(path); err == nil {
		if err := b.opts.Controller.WaitIO(ctx, fi.Size()); err != nil {
			return nil, err
		}
	}

	memPerImage := int64(b.opts.WorkingWidth*b.opts.WorkingHeight) * 8
	if err := b.opts.Controller.AcquireMemory(ctx, memPerImage); err != nil {
		return nil, err
	}
	defer b.opts.Controller.ReleaseMemory(memPerImage)

	img, err := imaging.LoadResized(path, b.opts.WorkingWidth, b.opts.WorkingHeight)
	if err != nil {
		return nil, err
	}

	return BuildImage(b.opts.Adapter.ToUniformSpace(img), cb)
}

// BuildAll builds one bag per path. Images are processed independently in
// parallel and results land at their input position; a single image
// failure cancels and fails the whole batch without corrupting sibling
// results.
func (b *Builder) BuildAll(ctx context.Context, paths []string, cb *codebook.Codebook) ([]Bag, error) {
	if cb.K() == 0 {
		return nil, codebook.ErrEmptyCodebook
	}

	bags := make([]Bag, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.Workers)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			bag, err := b.Build(ctx, path, cb)
			if err != nil {
				return err
			}
			bags[i] = bag
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return bags, nil
}
