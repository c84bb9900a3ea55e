// Package colorbag turns directories of color photographs into fixed-length
// "bag of colors" descriptors for image search.
//
// The pipeline has three stages:
//
//  1. Block extraction: every training image is resized to a working
//     resolution, converted to CIELAB and reduced to 256 dominant block
//     colors.
//  2. Vocabulary training: k-means over the pooled block colors yields a
//     codebook of K centroid colors.
//  3. Bag building: every pixel of an input image is assigned to its
//     nearest centroid, producing a K-length histogram, optionally
//     normalized (max, tf-idf or power-law + L1).
//
// # Quick Start
//
//	ctx := context.Background()
//	p := colorbag.New(colorbag.WithK(256), colorbag.WithSeed(42))
//	result, err := p.Run(ctx, "./photos", "./out/bags.cbds")
//
// The exported dataset is a single binary container with the image IDs and
// the bag rows, written atomically and readable with random access:
//
//	r, _ := dataset.OpenMmap("./out/bags.cbds")
//	row, _ := r.RowByID("sunset")
//
// Datasets can be published to a blob store (local directory, in-memory,
// or any S3-compatible endpoint via the minio subpackage); the manifest is
// uploaded last, so readers never discover half-uploaded releases.
package colorbag
