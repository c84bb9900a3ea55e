package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/colorbag"
	"github.com/hupe1980/colorbag/codebook"
	"github.com/hupe1980/colorbag/imaging"
)

func newBagsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bags <input-dir> <codebook.cbvc> <output.cbds>",
		Short: "Build bags for a batch against a saved vocabulary",
		Long: `Bags quantizes every image in the input directory against a previously
trained vocabulary and exports the histograms to a dataset container.
Use this to describe new batches without retraining.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := pipelineOptions()
			if err != nil {
				return err
			}

			cb, err := codebook.Load(args[1])
			if err != nil {
				return fmt.Errorf("load codebook: %w", err)
			}

			paths, err := imaging.ListDir(args[0])
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return colorbag.ErrNoImages
			}

			ids := make([]string, len(paths))
			for i, path := range paths {
				ids[i] = imaging.ID(path)
			}

			p := colorbag.New(opts...)

			bags, err := p.BuildBags(cmd.Context(), paths, cb)
			if err != nil {
				return err
			}

			bags, err = p.Normalize(bags)
			if err != nil {
				return err
			}

			if err := p.Export(cmd.Context(), args[2], ids, bags); err != nil {
				return err
			}

			fmt.Printf("exported %d bags (k=%d) to %s\n", len(bags), cb.K(), args[2])
			return nil
		},
	}

	addPipelineFlags(cmd)

	return cmd
}
