package corpus

import (
	"context"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/colorbag/codebook"
	"github.com/hupe1980/colorbag/colorspace"
	"github.com/hupe1980/colorbag/extractor"
	"github.com/hupe1980/colorbag/imaging"
	"github.com/hupe1980/colorbag/internal/resource"
	"github.com/hupe1980/colorbag/util"
)

// Options contains configuration options for the collector.
type Options struct {
	// WorkingWidth and WorkingHeight are the resolution every image is
	// resized to before extraction.
	WorkingWidth  int
	WorkingHeight int

	// Workers bounds the number of images processed concurrently.
	// Defaults to GOMAXPROCS.
	Workers int

	// Seed drives the extractor's tie-break and fallback randomness.
	// Per-image generators are forked from it, so results do not depend
	// on scheduling order.
	Seed int64

	// Adapter converts decoded images to the uniform color space.
	Adapter colorspace.Adapter

	// Controller optionally bounds decode memory and IO. Nil disables.
	Controller *resource.Controller
}

// DefaultOptions contains the default configuration options for the collector.
var DefaultOptions = Options{
	WorkingWidth:  160,
	WorkingHeight: 160,
	Adapter:       colorspace.LabAdapter{},
}

// Collector runs the block extractor over a list of images and pools the
// resulting descriptors.
type Collector struct {
	opts Options
	ext  *extractor.Extractor
}

// NewCollector creates a new Collector around the given extractor.
func NewCollector(ext *extractor.Extractor, optFns ...func(o *Options)) *Collector {
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

	return &Collector{opts: opts, ext: ext}
}

// Collect processes every image exactly once and concatenates the
// descriptors into a corpus, image i at offset i * NumBlocks.
//
// Images are processed in parallel, one task per image; output position
// is fixed by input position, so completion order does not matter. Any
// failure (decode, shape) cancels the remaining work and fails the whole
// collection: a silently incomplete training corpus is worse than an
// early abort.
func (c *Collector) Collect(ctx context.Context, paths []string) (*Corpus, error) {
	numBlocks := c.ext.Options().NumBlocks
	stride := numBlocks * codebook.Dim
	data := make([]float32, len(paths)*stride)

	// Decoded source + working RGBA + uniform planes, rough upper bound.
	memPerImage := int64(c.opts.WorkingWidth*c.opts.WorkingHeight) * 8

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Workers)

	rng := util.NewRNG(c.opts.Seed)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if fi, err := os.Stat(path); err == nil {
				if err := c.opts.Controller.WaitIO(ctx, fi.Size()); err != nil {
					return err
				}
			}
			if err := c.opts.Controller.AcquireMemory(ctx, memPerImage); err != nil {
				return err
			}
			defer c.opts.Controller.ReleaseMemory(memPerImage)

			img, err := imaging.LoadResized(path, c.opts.WorkingWidth, c.opts.WorkingHeight)
			if err != nil {
				return err
			}

			uniform := c.opts.Adapter.ToUniformSpace(img)
			desc, err := c.ext.Extract(uniform, rng.Fork(int64(i)))
			if err != nil {
				return err
			}

			out := data[i*stride : (i+1)*stride]
			for b, col := range desc {
				out[b*codebook.Dim] = float32(col[0])
				out[b*codebook.Dim+1] = float32(col[1])
				out[b*codebook.Dim+2] = float32(col[2])
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Corpus{data: data, numImages: len(paths), numBlocks: numBlocks}, nil
}
