// Package cli provides the command-line interface for colorbag.
package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hupe1980/colorbag"
	"github.com/hupe1980/colorbag/dataset"
)

// Pipeline flags shared by the run, train and bags commands.
var (
	flagSeed       int64
	flagK          int
	flagIterations int
	flagWorkers    int
	flagNormalize  string
	flagCompress   string
	flagVerbose    bool
)

// NewRootCmd builds the colorbag command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "colorbag",
		Short: "Batch bag-of-colors descriptor pipeline",
		Long: `Colorbag converts directories of color photographs into fixed-length
"bag of colors" descriptors for image search.

A run trains a k-means color vocabulary over dominant block colors,
assigns every pixel of every image to its nearest vocabulary color, and
exports the resulting histograms as one dataset container.

Examples:
  # Full pipeline: train on ./photos and export the bags
  colorbag run ./photos ./out/bags.cbds

  # Reusable vocabulary: train once, build bags for several batches
  colorbag train ./photos ./out/codebook.cbvc
  colorbag bags ./batch1 ./out/codebook.cbvc ./out/batch1.cbds

  # Publish a finished dataset to an S3-compatible store
  colorbag publish release-2026-08 ./out/bags.cbds --endpoint localhost:9000 --bucket descriptors`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress non-error output")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newTrainCmd())
	rootCmd.AddCommand(newBagsCmd())
	rootCmd.AddCommand(newPublishCmd())

	return rootCmd
}

func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&flagSeed, "seed", 0, "seed for all random choices (same seed, same output)")
	cmd.Flags().IntVar(&flagK, "k", 256, "vocabulary size (16-512 typical)")
	cmd.Flags().IntVar(&flagIterations, "iterations", 50, "k-means iteration budget")
	cmd.Flags().IntVar(&flagWorkers, "workers", 0, "concurrent image workers (0 = GOMAXPROCS)")
	cmd.Flags().StringVar(&flagNormalize, "normalize", "none", "bag normalization (none, max, tfidf, power-l1)")
	cmd.Flags().StringVar(&flagCompress, "compression", "zstd", "dataset row compression (none, zstd, lz4)")
	cmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
}

func pipelineOptions() ([]colorbag.Option, error) {
	norm, err := colorbag.ParseNormalization(flagNormalize)
	if err != nil {
		return nil, err
	}
	comp, err := dataset.ParseCompression(flagCompress)
	if err != nil {
		return nil, err
	}

	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}

	return []colorbag.Option{
		colorbag.WithSeed(flagSeed),
		colorbag.WithK(flagK),
		colorbag.WithIterations(flagIterations),
		colorbag.WithWorkers(flagWorkers),
		colorbag.WithNormalization(norm),
		colorbag.WithCompression(comp),
		colorbag.WithLogLevel(level),
	}, nil
}
