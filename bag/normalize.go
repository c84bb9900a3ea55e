package bag

import (
	"errors"
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring/v2"
)

// tfEpsilon guards the term-frequency division for empty bags.
const tfEpsilon = 1e-10

// ErrDegenerateBag indicates a bag that cannot be normalized because its
// normalization denominator is zero.
type ErrDegenerateBag struct {
	Row int
}

func (e *ErrDegenerateBag) Error() string {
	return fmt.Sprintf("degenerate bag at row %d: all entries are zero", e.Row)
}

// Normalizers transform a batch of N bags of length K into a new N x K
// matrix; inputs are never mutated. Rows that cannot be normalized are
// left all-zero in the output and reported through the joined error, so
// the caller decides whether to drop the rows or abort.

// NormalizeMax divides every entry of a row by that row's maximum value.
func NormalizeMax(bags []Bag) ([]Bag, error) {
	out := make([]Bag, len(bags))
	var errs []error

	for i, row := range bags {
		out[i] = make(Bag, len(row))

		var maxVal float32
		for _, v := range row {
			if v > maxVal {
				maxVal = v
			}
		}
		if maxVal == 0 {
			errs = append(errs, &ErrDegenerateBag{Row: i})
			continue
		}

		for j, v := range row {
			out[i][j] = v / maxVal
		}
	}

	return out, errors.Join(errs...)
}

// NormalizeTFIDF applies term-frequency / inverse-document-frequency
// weighting across the batch: tf is each entry over its row sum (with a
// small epsilon for empty rows), idf is ln(N / docCount) per column,
// where docCount is the number of rows with a nonzero entry in that
// column. Columns used by no row get idf 0, so vocabulary entries absent
// from the whole batch contribute nothing instead of propagating NaN.
func NormalizeTFIDF(bags []Bag) ([]Bag, error) {
	n := len(bags)
	if n == 0 {
		return nil, nil
	}
	k := len(bags[0])

	// Per-column document bitmaps; cardinality is the doc count.
	cols := make([]*roaring.Bitmap, k)
	for j := range cols {
		cols[j] = roaring.New()
	}
	for i, row := range bags {
		for j, v := range row {
			if v != 0 {
				cols[j].Add(uint32(i))
			}
		}
	}

	idf := make([]float64, k)
	for j := range idf {
		if dc := cols[j].GetCardinality(); dc > 0 {
			idf[j] = math.Log(float64(n) / float64(dc))
		}
	}

	out := make([]Bag, n)
	for i, row := range bags {
		out[i] = make(Bag, k)

		var sum float64
		for _, v := range row {
			sum += float64(v)
		}
		denom := tfEpsilon + sum

		for j, v := range row {
			out[i][j] = float32(float64(v) / denom * idf[j])
		}
	}

	return out, nil
}

// NormalizePowerL1 takes the entrywise square root of each count, then
// divides each row by the L1 sum of the square-rooted entries.
func NormalizePowerL1(bags []Bag) ([]Bag, error) {
	out := make([]Bag, len(bags))
	var errs []error

	for i, row := range bags {
		out[i] = make(Bag, len(row))

		var sum float64
		for j, v := range row {
			r := math.Sqrt(float64(v))
			out[i][j] = float32(r)
			sum += r
		}
		if sum == 0 {
			for j := range out[i] {
				out[i][j] = 0
			}
			errs = append(errs, &ErrDegenerateBag{Row: i})
			continue
		}

		inv := 1.0 / sum
		for j := range out[i] {
			out[i][j] = float32(float64(out[i][j]) * inv)
		}
	}

	return out, errors.Join(errs...)
}

// UsedColumns returns a bitmap of the codebook entries referenced by at
// least one bag in the batch.
func UsedColumns(bags []Bag) *roaring.Bitmap {
	used := roaring.New()
	for _, row := range bags {
		for j, v := range row {
			if v != 0 {
				used.Add(uint32(j))
			}
		}
	}
	return used
}
