// Package codebook learns and queries the color vocabulary: a fixed set of
// centroid colors with an exact nearest-centroid index over them.
package codebook

import (
	"errors"
	"fmt"

	"github.com/hupe1980/colorbag/colorspace"
	"github.com/hupe1980/colorbag/distance"
)

// Dim is the dimensionality of a color point.
const Dim = 3

// ErrEmptyCodebook is returned when querying a codebook with no centroids.
var ErrEmptyCodebook = errors.New("empty codebook")

// ErrInsufficientData indicates a training corpus smaller than the
// requested codebook size.
type ErrInsufficientData struct {
	Need int
	Have int
}

func (e *ErrInsufficientData) Error() string {
	return fmt.Sprintf("insufficient data: need at least %d points, have %d", e.Need, e.Have)
}

// Codebook is a trained color vocabulary. Centroids are immutable after
// training, so all queries are safe for concurrent use.
type Codebook struct {
	centroids []float32 // k * Dim, flattened
	k         int
	distFunc  distance.Func
	stats     TrainStats
}

// TrainStats records the clustering objective per iteration, for
// observability only.
type TrainStats struct {
	// Objective holds the within-cluster sum of squared distances after
	// each completed iteration.
	Objective []float64

	// Iterations is the number of iterations actually run.
	Iterations int
}

// NewFromCentroids builds a codebook directly from flattened centroids
// (k * Dim values). Used when loading a persisted vocabulary.
func NewFromCentroids(centroids []float32) (*Codebook, error) {
	if len(centroids)%Dim != 0 {
		return nil, fmt.Errorf("centroid data length %d is not a multiple of %d", len(centroids), Dim)
	}

	df, err := distance.Provider(distance.MetricL2)
	if err != nil {
		return nil, err
	}

	cb := &Codebook{
		centroids: centroids,
		k:         len(centroids) / Dim,
		distFunc:  df,
	}
	return cb, nil
}

// K returns the number of centroids.
func (cb *Codebook) K() int { return cb.k }

// Centroid returns centroid j as a read-only slice of Dim values.
func (cb *Codebook) Centroid(j int) []float32 {
	return cb.centroids[j*Dim : (j+1)*Dim]
}

// Centroids returns the flattened centroid data. Callers must not mutate it.
func (cb *Codebook) Centroids() []float32 { return cb.centroids }

// Stats returns the training statistics. Zero-valued for loaded codebooks.
func (cb *Codebook) Stats() TrainStats { return cb.stats }

// Nearest returns the index of the centroid closest to the query color
// under Euclidean distance. Ties are broken by the lowest index.
func (cb *Codebook) Nearest(c []float32) (int, error) {
	if cb.k == 0 {
		return -1, ErrEmptyCodebook
	}

	best := 0
	bestDist := cb.distFunc(c, cb.centroids[:Dim])
	for j := 1; j < cb.k; j++ {
		if d := cb.distFunc(c, cb.centroids[j*Dim:(j+1)*Dim]); d < bestDist {
			bestDist = d
			best = j
		}
	}

	return best, nil
}

// NearestPixel returns the nearest centroid index for an 8-bit
// uniform-space pixel.
func (cb *Codebook) NearestPixel(c [3]uint8) (int, error) {
	q := [Dim]float32{float32(c[0]), float32(c[1]), float32(c[2])}
	return cb.Nearest(q[:])
}

// NearestImage assigns every pixel of img to its nearest centroid and
// returns the assignments in row-major pixel order.
func (cb *Codebook) NearestImage(img *colorspace.Image) ([]int, error) {
	if cb.k == 0 {
		return nil, ErrEmptyCodebook
	}

	out := make([]int, img.Width*img.Height)
	var q [Dim]float32
	for i := 0; i < len(out); i++ {
		p := img.Pix[i*3 : i*3+3]
		q[0], q[1], q[2] = float32(p[0]), float32(p[1]), float32(p[2])
		j, err := cb.Nearest(q[:])
		if err != nil {
			return nil, err
		}
		out[i] = j
	}

	return out, nil
}
