// Package preprocessing cleans raw sample sequences before model fitting.
package preprocessing

import (
	"errors"
	"fmt"

	"github.com/gazelib/gazelib/pkg/stats"
)

// ErrExtrapolation is returned when a sequence holds no value to fill gaps from.
var ErrExtrapolation = errors.New("cannot extrapolate from a sequence without values")

// FillGaps replaces missing (nil) samples with the most recent present value.
// Samples before the first present value take that first value.
// The input is not modified.
func FillGaps[T any](values []*T) ([]T, error) {
	first := -1
	for i, v := range values {
		if v != nil {
			first = i
			break
		}
	}
	if first < 0 {
		return nil, fmt.Errorf("%w: %d samples, none present", ErrExtrapolation, len(values))
	}

	out := make([]T, len(values))
	last := *values[first]
	for i, v := range values {
		if v != nil {
			last = *v
		}
		out[i] = last
	}
	return out, nil
}

// MedianFilter replaces each sample by the median of the kernel-sized window
// centred on it. The sequence is padded with zeros at both ends, so the output
// has the same length as the input. kernel must be odd and positive.
func MedianFilter(values []float64, kernel int) ([]float64, error) {
	if kernel < 1 || kernel%2 == 0 {
		return nil, fmt.Errorf("kernel size must be odd and positive, got %d", kernel)
	}
	half := kernel / 2
	out := make([]float64, len(values))
	window := make([]float64, kernel)
	for i := range values {
		for k := range window {
			j := i - half + k
			if j < 0 || j >= len(values) {
				window[k] = 0
				continue
			}
			window[k] = values[j]
		}
		out[i], _ = stats.Median(window)
	}
	return out, nil
}
