package gonet

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ExtractionResult holds the summary statistics of the cells a mask
// selects in a channel: the total counts, their arithmetic mean, the
// population standard deviation, and the number of selected cells.
type ExtractionResult struct {
	Total float64
	Mean  float64
	Std   float64
	Count int
}

func (r ExtractionResult) String() string {
	return fmt.Sprintf("{Total=%g, Mean=%g, Std=%g, Count=%d}", r.Total, r.Mean, r.Std, r.Count)
}

// ExtractRegion computes statistics over exactly the cells where mask is
// true. The mask must match the channel's dimensions. A mask that selects
// no cells is not an error: Count is 0, Total is 0, and Mean and Std come
// back NaN so that downstream plotting can handle them like any other
// floating-point hole.
func ExtractRegion(img *Image, mask *Mask) (ExtractionResult, error) {
	if img.Rows() != mask.Rows() || img.Cols() != mask.Cols() {
		return ExtractionResult{}, fmt.Errorf("%w: mask %dx%d applied to channel %dx%d",
			ErrDimensionMismatch, mask.Rows(), mask.Cols(), img.Rows(), img.Cols())
	}

	values := make([]float64, 0, mask.Count())
	data := img.Data()
	for i, v := range data {
		if mask.bits[i] {
			values = append(values, v)
		}
	}
	return summarize(values), nil
}

// ExtractRegionCombined computes statistics over a weighted per-cell
// combination of several same-shaped channels. A nil weights slice means
// unit weights; otherwise len(weights) must equal len(imgs).
func ExtractRegionCombined(imgs []*Image, weights []float64, mask *Mask) (ExtractionResult, error) {
	if len(imgs) == 0 {
		return ExtractionResult{}, fmt.Errorf("%w: no channels to combine", ErrDimensionMismatch)
	}
	if weights != nil && len(weights) != len(imgs) {
		return ExtractionResult{}, fmt.Errorf("%w: %d weights for %d channels", ErrDimensionMismatch, len(weights), len(imgs))
	}
	rows, cols := imgs[0].Rows(), imgs[0].Cols()
	for _, im := range imgs {
		if im.Rows() != rows || im.Cols() != cols {
			return ExtractionResult{}, fmt.Errorf("%w: channel %dx%d combined with %dx%d",
				ErrDimensionMismatch, im.Rows(), im.Cols(), rows, cols)
		}
	}
	if mask.Rows() != rows || mask.Cols() != cols {
		return ExtractionResult{}, fmt.Errorf("%w: mask %dx%d applied to channels %dx%d",
			ErrDimensionMismatch, mask.Rows(), mask.Cols(), rows, cols)
	}

	values := make([]float64, 0, mask.Count())
	for i := range mask.bits {
		if !mask.bits[i] {
			continue
		}
		var sum float64
		for c, im := range imgs {
			w := 1.0
			if weights != nil {
				w = weights[c]
			}
			sum += w * im.data[i]
		}
		values = append(values, sum)
	}
	return summarize(values), nil
}

func summarize(values []float64) ExtractionResult {
	if len(values) == 0 {
		return ExtractionResult{Total: 0, Mean: math.NaN(), Std: math.NaN(), Count: 0}
	}
	return ExtractionResult{
		Total: floats.Sum(values),
		Mean:  stat.Mean(values, nil),
		Std:   stat.PopStdDev(values, nil),
		Count: len(values),
	}
}
