// Package stats holds small statistical helpers that do not depend on a container.
//
// Sequences with missing samples are passed as slices of pointers; a nil
// element is a missing value and is ignored.
package stats

import (
	"cmp"
	"slices"
)

// Number is the set of numeric types the helpers accept.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Maximum returns the largest non-missing value. ok is false if there is none.
func Maximum[T cmp.Ordered](values []*T) (m T, ok bool) {
	for _, v := range values {
		if v == nil {
			continue
		}
		if !ok || *v > m {
			m = *v
			ok = true
		}
	}
	return m, ok
}

// Minimum returns the smallest non-missing value. ok is false if there is none.
func Minimum[T cmp.Ordered](values []*T) (m T, ok bool) {
	for _, v := range values {
		if v == nil {
			continue
		}
		if !ok || *v < m {
			m = *v
			ok = true
		}
	}
	return m, ok
}

// ArithmeticMean returns the mean of the non-missing values.
// ok is false for an empty sequence or one with only missing values.
func ArithmeticMean[T Number](values []*T) (float64, bool) {
	var sum float64
	var count int
	for _, v := range values {
		if v != nil {
			sum += float64(*v)
			count++
		}
	}
	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}

// Mean returns the arithmetic mean of a sequence without missing values.
func Mean[T Number](values []T) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range values {
		sum += float64(v)
	}
	return sum / float64(len(values)), true
}

// WeightedArithmeticMean weights each value by the weight at the same position.
// Missing values are skipped, missing weights count as zero. Pairs beyond the
// shorter slice are ignored. ok is false if the weights sum to zero or less.
func WeightedArithmeticMean[T Number](values, weights []*T) (float64, bool) {
	var sumValues, sumWeights float64
	n := min(len(values), len(weights))
	for i := 0; i < n; i++ {
		if values[i] == nil || weights[i] == nil {
			continue
		}
		w := float64(*weights[i])
		sumValues += float64(*values[i]) * w
		sumWeights += w
	}
	if sumWeights <= 0 {
		return 0, false
	}
	return sumValues / sumWeights, true
}

// Deltas returns the differences between consecutive values.
// The result is one shorter than the input; empty for inputs shorter than two.
func Deltas[T Number](values []T) []T {
	if len(values) < 2 {
		return []T{}
	}
	diffs := make([]T, len(values)-1)
	for i := range diffs {
		diffs[i] = values[i+1] - values[i]
	}
	return diffs
}

// Median returns the median of values. ok is false for an empty sequence.
func Median[T Number](values []T) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return float64(sorted[mid]), true
	}
	return (float64(sorted[mid-1]) + float64(sorted[mid])) / 2, true
}

// Ptr returns a pointer to v. Handy for building sequences with missing values.
func Ptr[T any](v T) *T {
	return &v
}
