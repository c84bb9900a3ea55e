package colorbag

import (
	"log/slog"

	"github.com/hupe1980/colorbag/codec"
	"github.com/hupe1980/colorbag/dataset"
	"github.com/hupe1980/colorbag/internal/resource"
)

type options struct {
	seed                int64
	k                   int
	iterations          int
	workers             int
	workingWidth        int
	workingHeight       int
	blockSize           int
	numBlocks           int
	occurrenceThreshold int
	normalization       Normalization
	compression         dataset.Compression
	codec               codec.Codec
	controller          *resource.Controller
	metricsCollector    MetricsCollector
	logger              *Logger
}

// Option configures pipeline behavior.
type Option func(*options)

// WithSeed sets the seed driving every random choice in the pipeline
// (extractor tie-breaks, k-means initialization). Same seed and input,
// same output.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithK sets the vocabulary size (number of centroid colors). Typical
// values range from 16 to 512; the default is 256.
func WithK(k int) Option {
	return func(o *options) {
		o.k = k
	}
}

// WithIterations sets the k-means iteration count. Training may stop
// earlier when assignments converge. The default is 50.
func WithIterations(iterations int) Option {
	return func(o *options) {
		o.iterations = iterations
	}
}

// WithWorkers bounds the number of images processed concurrently during
// collection and bag building. Defaults to GOMAXPROCS.
func WithWorkers(workers int) Option {
	return func(o *options) {
		o.workers = workers
	}
}

// WithWorkingSize sets the resolution images are resized to before any
// processing. Width and height must each be divisible by the block size.
func WithWorkingSize(width, height int) Option {
	return func(o *options) {
		o.workingWidth = width
		o.workingHeight = height
	}
}

// WithBlockGrid configures the extraction grid: blocks of
// blockSize x blockSize pixels, numBlocks blocks total.
func WithBlockGrid(blockSize, numBlocks int) Option {
	return func(o *options) {
		o.blockSize = blockSize
		o.numBlocks = numBlocks
	}
}

// WithOccurrenceThreshold sets the minimum frequency the dominant block
// color must reach before it is trusted over a random block pixel.
func WithOccurrenceThreshold(threshold int) Option {
	return func(o *options) {
		o.occurrenceThreshold = threshold
	}
}

// WithNormalization selects the normalization applied to built bags
// before export. The default is none (raw counts).
func WithNormalization(n Normalization) Option {
	return func(o *options) {
		o.normalization = n
	}
}

// WithCompression selects the codec for the exported dataset's row
// section. The default is zstd.
func WithCompression(c dataset.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithCodec configures the codec used for published manifests.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithResourceLimits bounds decoded-image memory and decode IO rate.
// Zero values disable the respective limit.
func WithResourceLimits(memoryLimitBytes, ioLimitBytesPerSec int64) Option {
	return func(o *options) {
		o.controller = resource.NewController(resource.Config{
			MemoryLimitBytes:   memoryLimitBytes,
			IOLimitBytesPerSec: ioLimitBytesPerSec,
		})
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// pipeline runs. Pass nil to disable metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for pipeline runs.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		k:                   256,
		iterations:          50,
		workingWidth:        160,
		workingHeight:       160,
		blockSize:           10,
		numBlocks:           256,
		occurrenceThreshold: 4,
		compression:         dataset.CompressionZstd,
		codec:               codec.Default,
		metricsCollector:    NoopMetricsCollector{},
		logger:              NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}
