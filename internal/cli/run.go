package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/colorbag"
)

func newRunCmd() *cobra.Command {
	var codebookOut string

	cmd := &cobra.Command{
		Use:   "run <input-dir> <output.cbds>",
		Short: "Run the full pipeline: train, build bags, export",
		Long: `Run trains a color vocabulary over all images in the input directory,
builds one bag per image and exports them to a single dataset container.

The export is atomic: the output file either holds the complete dataset
or is left untouched.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := pipelineOptions()
			if err != nil {
				return err
			}

			p := colorbag.New(opts...)
			result, err := p.Run(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}

			if codebookOut != "" {
				if err := result.Codebook.Save(nil, codebookOut); err != nil {
					return fmt.Errorf("save codebook: %w", err)
				}
			}

			fmt.Printf("exported %d bags (k=%d) to %s\n", result.Images, result.K, result.DatasetPath)
			return nil
		},
	}

	addPipelineFlags(cmd)
	cmd.Flags().StringVar(&codebookOut, "save-codebook", "", "also save the trained vocabulary to this path")

	return cmd
}
