// Package corpus pools block color descriptors from a training set of
// images into one flat color dataset for vocabulary training.
package corpus

import (
	"github.com/hupe1980/colorbag/codebook"
)

// Corpus is the pooled color data of a training run: the concatenation of
// per-image descriptors as flattened float32 color points. It is built
// once per training run and discarded after training.
type Corpus struct {
	data      []float32
	numImages int
	numBlocks int
}

// Data returns the flattened color points (Len() * 3 values).
func (c *Corpus) Data() []float32 { return c.data }

// Len returns the number of color points in the corpus.
func (c *Corpus) Len() int { return len(c.data) / codebook.Dim }

// NumImages returns the number of images the corpus was pooled from.
func (c *Corpus) NumImages() int { return c.numImages }

// Descriptor returns the color points contributed by image i, at its
// fixed offset i * numBlocks.
func (c *Corpus) Descriptor(i int) []float32 {
	stride := c.numBlocks * codebook.Dim
	return c.data[i*stride : (i+1)*stride]
}
