// Package testutil provides testing utilities for colorbag.
//
// This package is intended for use in tests and benchmarks only.
// It generates synthetic inputs with known structure: solid and
// block-patterned uniform-space images, noisy images, and clustered
// color point sets for exercising vocabulary training.
package testutil
