package colorbag

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/colorbag/bag"
	"github.com/hupe1980/colorbag/codebook"
	"github.com/hupe1980/colorbag/corpus"
	"github.com/hupe1980/colorbag/dataset"
	"github.com/hupe1980/colorbag/extractor"
	"github.com/hupe1980/colorbag/imaging"
	"github.com/hupe1980/colorbag/util"
)

// Normalization selects the transform applied to built bags before export.
type Normalization int

const (
	// NormalizationNone keeps raw pixel counts.
	NormalizationNone Normalization = iota
	// NormalizationMax divides each row by its maximum entry.
	NormalizationMax
	// NormalizationTFIDF applies tf-idf weighting across the batch.
	NormalizationTFIDF
	// NormalizationPowerL1 takes entrywise square roots and L1-normalizes.
	NormalizationPowerL1
)

func (n Normalization) String() string {
	switch n {
	case NormalizationNone:
		return "none"
	case NormalizationMax:
		return "max"
	case NormalizationTFIDF:
		return "tfidf"
	case NormalizationPowerL1:
		return "power-l1"
	default:
		return fmt.Sprintf("unknown(%d)", int(n))
	}
}

// ParseNormalization maps a normalization name to its value.
func ParseNormalization(s string) (Normalization, error) {
	switch s {
	case "none", "":
		return NormalizationNone, nil
	case "max":
		return NormalizationMax, nil
	case "tfidf":
		return NormalizationTFIDF, nil
	case "power-l1":
		return NormalizationPowerL1, nil
	default:
		return 0, fmt.Errorf("unknown normalization %q", s)
	}
}

// Pipeline drives the full batch run: collect block colors, train a
// vocabulary, build bags, normalize and export. All stages share one
// configuration and one seed, so a run is reproducible end to end.
type Pipeline struct {
	opts      options
	ext       *extractor.Extractor
	collector *corpus.Collector
	builder   *bag.Builder
	exporter  *dataset.Exporter
}

// New creates a new Pipeline.
func New(optFns ...Option) *Pipeline {
	opts := applyOptions(optFns)

	ext := extractor.New(func(o *extractor.Options) {
		o.BlockSize = opts.blockSize
		o.NumBlocks = opts.numBlocks
		o.OccurrenceThreshold = opts.occurrenceThreshold
	})

	collector := corpus.NewCollector(ext, func(o *corpus.Options) {
		o.WorkingWidth = opts.workingWidth
		o.WorkingHeight = opts.workingHeight
		o.Workers = opts.workers
		o.Seed = opts.seed
		o.Controller = opts.controller
	})

	builder := bag.NewBuilder(func(o *bag.Options) {
		o.WorkingWidth = opts.workingWidth
		o.WorkingHeight = opts.workingHeight
		o.Workers = opts.workers
		o.Controller = opts.controller
	})

	exporter := dataset.NewExporter(func(o *dataset.Options) {
		o.Compression = opts.compression
	})

	return &Pipeline{
		opts:      opts,
		ext:       ext,
		collector: collector,
		builder:   builder,
		exporter:  exporter,
	}
}

// Collect extracts block color descriptors from every image and pools
// them into a training corpus.
func (p *Pipeline) Collect(ctx context.Context, paths []string) (*corpus.Corpus, error) {
	start := time.Now()
	corp, err := p.collector.Collect(ctx, paths)

	p.opts.metricsCollector.RecordCollect(len(paths), time.Since(start), err)
	p.opts.logger.LogCollect(ctx, len(paths), time.Since(start), err)
	return corp, err
}

// Train learns the color vocabulary from a collected corpus.
func (p *Pipeline) Train(ctx context.Context, corp *corpus.Corpus) (*codebook.Codebook, error) {
	start := time.Now()
	rng := util.NewRNG(p.opts.seed)

	cb, err := codebook.Train(ctx, corp.Data(), p.opts.k, p.opts.iterations, rng)

	var iterations int
	var objective float64
	if cb != nil {
		stats := cb.Stats()
		iterations = stats.Iterations
		if len(stats.Objective) > 0 {
			objective = stats.Objective[len(stats.Objective)-1]
		}
	}

	p.opts.metricsCollector.RecordTrain(p.opts.k, iterations, time.Since(start), err)
	p.opts.logger.LogTrain(ctx, p.opts.k, iterations, objective, time.Since(start), err)
	return cb, err
}

// BuildBags quantizes every image against the codebook, one bag per path,
// in input order.
func (p *Pipeline) BuildBags(ctx context.Context, paths []string, cb *codebook.Codebook) ([]bag.Bag, error) {
	start := time.Now()
	bags, err := p.builder.BuildAll(ctx, paths, cb)

	p.opts.metricsCollector.RecordBuild(len(paths), time.Since(start), err)
	p.opts.logger.LogBuild(ctx, len(paths), time.Since(start), err)
	return bags, err
}

// Normalize applies the configured normalization to a batch of bags.
// The input is never mutated.
func (p *Pipeline) Normalize(bags []bag.Bag) ([]bag.Bag, error) {
	switch p.opts.normalization {
	case NormalizationNone:
		return bags, nil
	case NormalizationMax:
		return bag.NormalizeMax(bags)
	case NormalizationTFIDF:
		return bag.NormalizeTFIDF(bags)
	case NormalizationPowerL1:
		return bag.NormalizePowerL1(bags)
	default:
		return nil, fmt.Errorf("unknown normalization %d", p.opts.normalization)
	}
}

// Export writes the bags and their image IDs to a dataset container at
// path, atomically.
func (p *Pipeline) Export(ctx context.Context, path string, ids []string, bags []bag.Bag) error {
	start := time.Now()
	err := p.exporter.Export(path, ids, bags)

	p.opts.metricsCollector.RecordExport(len(bags), time.Since(start), err)
	p.opts.logger.LogExport(ctx, path, len(bags), err)
	return err
}

// RunResult summarizes a completed end-to-end run.
type RunResult struct {
	// Images is the number of input images processed.
	Images int

	// K is the vocabulary size.
	K int

	// DatasetPath is the path of the exported dataset container.
	DatasetPath string

	// Codebook is the trained vocabulary, available for reuse or saving.
	Codebook *codebook.Codebook

	// TrainStats holds the per-iteration clustering objective.
	TrainStats codebook.TrainStats
}

// Run executes the whole pipeline over the images in inputDir and exports
// the resulting dataset to outPath. Image IDs are derived from file names
// (base name without extension).
func (p *Pipeline) Run(ctx context.Context, inputDir, outPath string) (*RunResult, error) {
	paths, err := imaging.ListDir(inputDir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, ErrNoImages
	}

	ids := make([]string, len(paths))
	for i, path := range paths {
		ids[i] = imaging.ID(path)
	}

	corp, err := p.Collect(ctx, paths)
	if err != nil {
		return nil, err
	}

	cb, err := p.Train(ctx, corp)
	if err != nil {
		return nil, err
	}

	bags, err := p.BuildBags(ctx, paths, cb)
	if err != nil {
		return nil, err
	}

	bags, err = p.Normalize(bags)
	if err != nil {
		return nil, err
	}

	if err := p.Export(ctx, outPath, ids, bags); err != nil {
		return nil, err
	}

	return &RunResult{
		Images:      len(paths),
		K:           cb.K(),
		DatasetPath: outPath,
		Codebook:    cb,
		TrainStats:  cb.Stats(),
	}, nil
}
