package colorbag

import (
	"errors"

	"github.com/hupe1980/colorbag/bag"
	"github.com/hupe1980/colorbag/codebook"
	"github.com/hupe1980/colorbag/extractor"
	"github.com/hupe1980/colorbag/imaging"
)

// ErrNoImages is returned when a run finds no decodable input images.
var ErrNoImages = errors.New("no input images")

// ErrEmptyCodebook is returned when bags are built against a codebook with
// zero centroids.
var ErrEmptyCodebook = codebook.ErrEmptyCodebook

// Aliases for the structured error types of the stage packages, so callers
// can match pipeline failures without importing every subpackage.
type (
	// InvalidShapeError indicates an image that does not fit the block grid.
	InvalidShapeError = extractor.ErrInvalidShape

	// InsufficientDataError indicates a training corpus smaller than K.
	InsufficientDataError = codebook.ErrInsufficientData

	// DegenerateBagError indicates an all-zero bag that cannot be normalized.
	DegenerateBagError = bag.ErrDegenerateBag

	// DecodeError indicates an input image that could not be decoded.
	DecodeError = imaging.ErrDecode
)
