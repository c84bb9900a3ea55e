package codebook

import (
	"context"
	"fmt"

	"github.com/hupe1980/colorbag/distance"
	"github.com/hupe1980/colorbag/util"
)

// Train learns a codebook of k centroid colors from the flattened corpus
// points (len(points) must be a multiple of Dim) using Lloyd's algorithm
// under squared Euclidean distance.
//
// Initialization samples k distinct corpus points through rng, so runs
// with the same seed and input are reproducible. Termination is by
// iteration count; an iteration in which no assignment changes ends
// training early. Clusters that lose all points are re-seeded from a
// random corpus point rather than left with an undefined centroid, and a
// final repair pass guarantees that every returned centroid has at least
// one assigned point.
func Train(ctx context.Context, points []float32, k, iterations int, rng *util.RNG) (*Codebook, error) {
	if k < 1 {
		return nil, fmt.Errorf("k must be at least 1, got %d", k)
	}
	if iterations < 1 {
		return nil, fmt.Errorf("iterations must be at least 1, got %d", iterations)
	}
	if len(points)%Dim != 0 {
		return nil, fmt.Errorf("corpus length %d is not a multiple of %d", len(points), Dim)
	}

	n := len(points) / Dim
	if n == 0 || n < k {
		return nil, &ErrInsufficientData{Need: k, Have: n}
	}

	df, err := distance.Provider(distance.MetricL2)
	if err != nil {
		return nil, err
	}

	centroids := make([]float32, k*Dim)
	for i, p := range rng.Perm(n)[:k] {
		copy(centroids[i*Dim:(i+1)*Dim], points[p*Dim:(p+1)*Dim])
	}

	assignments := make([]int, n)
	counts := make([]int, k)
	sums := make([]float64, k*Dim)
	stats := TrainStats{Objective: make([]float64, 0, iterations)}

	for iter := 0; iter < iterations; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		changed := false
		var objective float64
		for i := 0; i < n; i++ {
			j, d := nearest(points[i*Dim:(i+1)*Dim], centroids, k, df)
			objective += float64(d)
			if assignments[i] != j {
				assignments[i] = j
				changed = true
			}
		}
		stats.Objective = append(stats.Objective, objective)
		stats.Iterations = iter + 1

		if !changed && iter > 0 {
			break
		}

		for i := range sums {
			sums[i] = 0
		}
		for i := range counts {
			counts[i] = 0
		}
		for i := 0; i < n; i++ {
			j := assignments[i]
			counts[j]++
			for d := 0; d < Dim; d++ {
				sums[j*Dim+d] += float64(points[i*Dim+d])
			}
		}

		for j := 0; j < k; j++ {
			if counts[j] > 0 {
				inv := 1.0 / float64(counts[j])
				for d := 0; d < Dim; d++ {
					centroids[j*Dim+d] = float32(sums[j*Dim+d] * inv)
				}
			} else {
				// Re-seed empty cluster from a random corpus point.
				p := rng.Intn(n)
				copy(centroids[j*Dim:(j+1)*Dim], points[p*Dim:(p+1)*Dim])
			}
		}
	}

	repairOrphans(points, centroids, assignments, counts, n, k, df)

	cb, err := NewFromCentroids(centroids)
	if err != nil {
		return nil, err
	}
	cb.stats = stats
	return cb, nil
}

// nearest returns the index of the closest centroid and its distance;
// ties go to the lowest index.
func nearest(p, centroids []float32, k int, df distance.Func) (int, float32) {
	best := 0
	bestDist := df(p, centroids[:Dim])
	for j := 1; j < k; j++ {
		if d := df(p, centroids[j*Dim:(j+1)*Dim]); d < bestDist {
			bestDist = d
			best = j
		}
	}
	return best, bestDist
}

// repairOrphans moves centroids that own zero points after the final
// iteration onto the corpus points farthest from their current centroid,
// so every returned centroid claims at least one point. Inputs with fewer
// distinct points than centroids cannot be fully repaired; the loop gives
// up once no candidate point remains.
func repairOrphans(points, centroids []float32, assignments, counts []int, n, k int, df distance.Func) {
	for attempt := 0; attempt < k; attempt++ {
		for i := range counts {
			counts[i] = 0
		}
		for i := 0; i < n; i++ {
			j, _ := nearest(points[i*Dim:(i+1)*Dim], centroids, k, df)
			assignments[i] = j
			counts[j]++
		}

		empty := -1
		for j := 0; j < k; j++ {
			if counts[j] == 0 {
				empty = j
				break
			}
		}
		if empty < 0 {
			return
		}

		// Steal the point farthest from its centroid, but only out of a
		// cluster that can spare one.
		farthest := -1
		var farthestDist float32
		for i := 0; i < n; i++ {
			j := assignments[i]
			if counts[j] < 2 {
				continue
			}
			d := df(points[i*Dim:(i+1)*Dim], centroids[j*Dim:(j+1)*Dim])
			if d > farthestDist {
				farthestDist = d
				farthest = i
			}
		}
		if farthest < 0 || farthestDist == 0 {
			return
		}

		copy(centroids[empty*Dim:(empty+1)*Dim], points[farthest*Dim:(farthest+1)*Dim])
	}
}
