// Package convert holds helpers shared by the device specific converters.
package convert

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/gazelib/gazelib/pkg/stats"
)

var (
	// ErrConversion reports raw data a converter cannot interpret.
	ErrConversion = errors.New("conversion failed")
	// ErrSkipRow is returned by row converters for rows that carry no value.
	ErrSkipRow = errors.New("row skipped")
	// ErrUnknownTrial is returned for a trial configuration id that does not exist.
	ErrUnknownTrial = errors.New("unknown trial configuration")
)

// Row is one line of a delimited gaze data file, keyed by column name.
type Row = map[string]string

// EstimateSamplingInterval returns the mean interval between consecutive
// times. ok is false for fewer than two times.
func EstimateSamplingInterval(times []int64) (float64, bool) {
	return stats.Mean(stats.Deltas(times))
}

// Range is a run of consecutive rows sharing the same value.
// Start is inclusive and End exclusive.
type Range[V comparable] struct {
	Start int64
	End   int64
	Value V
	// First is the row that opened the range.
	First Row
}

// SplitToRangesAtChangeInValue cuts rows into ranges wherever the converted
// value changes. A range ends where the next one starts; the last range ends
// one (rounded) sampling interval after the last valid row.
//
// Rows for which value or time returns ErrSkipRow are skipped without
// breaking the current range. Any other error aborts the split.
func SplitToRangesAtChangeInValue[V comparable](rows []Row, value func(Row) (V, error), time func(Row) (int64, error)) ([]Range[V], error) {
	times := make([]int64, 0, len(rows))
	for _, r := range rows {
		if t, err := time(r); err == nil {
			times = append(times, t)
		}
	}
	interval := int64(0)
	if mean, ok := EstimateSamplingInterval(times); ok {
		interval = int64(math.RoundToEven(mean))
	}

	var (
		out      []Range[V]
		current  *Range[V]
		previous V
		lastTime int64
	)
	for i, r := range rows {
		v, err := value(r)
		if errors.Is(err, ErrSkipRow) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		t, err := time(r)
		if errors.Is(err, ErrSkipRow) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		lastTime = t

		if current != nil && v == previous {
			continue
		}
		if current != nil {
			current.End = t
			out = append(out, *current)
		}
		current = &Range[V]{Start: t, Value: v, First: r}
		previous = v
	}

	if current != nil {
		current.End = lastTime + interval
		out = append(out, *current)
	}
	return out, nil
}

// ExperimentConfiguration lists the trial configurations of an experiment.
type ExperimentConfiguration []TrialConfiguration

// TrialConfiguration describes the stimuli of one trial type.
type TrialConfiguration struct {
	Name   string       `json:"name"`
	Images []string     `json:"images"`
	AOIs   [][4]float64 `json:"aois"`
}

// ReadExperimentConfiguration decodes a JSON experiment configuration.
func ReadExperimentConfiguration(r io.Reader) (ExperimentConfiguration, error) {
	var ec ExperimentConfiguration
	if err := json.NewDecoder(r).Decode(&ec); err != nil {
		return nil, fmt.Errorf("%w: invalid experiment configuration: %v", ErrConversion, err)
	}
	return ec, nil
}

// TrialConfiguration returns the trial configuration named id,
// e.g. "calibration_movie" or "SRT1".
func (ec ExperimentConfiguration) TrialConfiguration(id string) (TrialConfiguration, error) {
	for _, tc := range ec {
		if tc.Name == id {
			return tc, nil
		}
	}
	return TrialConfiguration{}, fmt.Errorf("%w: %q", ErrUnknownTrial, id)
}

// ImageName returns the image file name at index.
func (tc TrialConfiguration) ImageName(index int) (string, error) {
	if index < 0 || index >= len(tc.Images) {
		return "", fmt.Errorf("%w: image index %d of %d in %q", ErrConversion, index, len(tc.Images), tc.Name)
	}
	return tc.Images[index], nil
}

// AOIRectangle returns an area of interest in gazelib/geom/rectangle order,
// which swaps the two middle coordinates of the stored AOI.
func (tc TrialConfiguration) AOIRectangle(index int) ([4]float64, error) {
	if index < 0 || index >= len(tc.AOIs) {
		return [4]float64{}, fmt.Errorf("%w: aoi index %d of %d in %q", ErrConversion, index, len(tc.AOIs), tc.Name)
	}
	a := tc.AOIs[index]
	return [4]float64{a[0], a[2], a[1], a[3]}, nil
}
