package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/colorbag"
	"github.com/hupe1980/colorbag/imaging"
)

func newTrainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train <input-dir> <codebook.cbvc>",
		Short: "Train a color vocabulary and save it",
		Long: `Train collects dominant block colors from all images in the input
directory, clusters them into a vocabulary of k centroid colors and
saves the result for later bag building.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := pipelineOptions()
			if err != nil {
				return err
			}

			paths, err := imaging.ListDir(args[0])
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return colorbag.ErrNoImages
			}

			p := colorbag.New(opts...)

			corp, err := p.Collect(cmd.Context(), paths)
			if err != nil {
				return err
			}

			cb, err := p.Train(cmd.Context(), corp)
			if err != nil {
				return err
			}

			if err := cb.Save(nil, args[1]); err != nil {
				return fmt.Errorf("save codebook: %w", err)
			}

			stats := cb.Stats()
			fmt.Printf("trained k=%d on %d images in %d iterations, saved to %s\n",
				cb.K(), len(paths), stats.Iterations, args[1])
			return nil
		},
	}

	addPipelineFlags(cmd)

	return cmd
}
