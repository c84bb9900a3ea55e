// Colorbag - batch "bag of colors" descriptor pipeline
//
// Colorbag turns directories of photographs into fixed-length color
// histograms for image search: it trains a color vocabulary over the
// corpus, quantizes every image against it, and exports the result as a
// single randomly accessible dataset container.
package main

import (
	"os"

	"github.com/hupe1980/colorbag/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
