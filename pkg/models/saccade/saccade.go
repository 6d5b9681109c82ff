// Package saccade finds a single saccade in binocular gaze data.
package saccade

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gazelib/gazelib/pkg/core"
	"github.com/gazelib/gazelib/pkg/preprocessing"
	"github.com/gazelib/gazelib/pkg/saccademodel"
	"github.com/gazelib/gazelib/pkg/typed"
)

// Type identifies a saccade result.
const Type = "gazelib/gaze/saccade"

// Stream names required by Fit.
const (
	LeftEyeX  = "gazelib/gaze/left_eye_x_relative"
	LeftEyeY  = "gazelib/gaze/left_eye_y_relative"
	RightEyeX = "gazelib/gaze/right_eye_x_relative"
	RightEyeY = "gazelib/gaze/right_eye_y_relative"
)

// RequiredStreams lists the streams Fit reads.
var RequiredStreams = []string{LeftEyeX, LeftEyeY, RightEyeX, RightEyeY}

// MedianKernel is the window of the median filter applied before fitting.
// It removes outliers the model cannot absorb.
const MedianKernel = 5

// Result is the timing of the fitted saccade.
type Result struct {
	Type              string  `json:"type"`
	StartTimeRelative int64   `json:"start_time_relative"`
	EndTimeRelative   int64   `json:"end_time_relative"`
	MeanSquaredError  float64 `json:"mean_squared_error"`
	// Eye is "left" or "right", whichever fit was used.
	Eye string `json:"eye"`
}

// Options configures Fit.
type Options struct {
	Logger *slog.Logger
}

// Option is a functional option for Fit.
type Option func(*Options)

// WithLogger sets the logger used to report per eye results.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

type eyeFit struct {
	name     string
	timeline string
	result   saccademodel.Result
}

// Fit fits the saccade model to each eye separately and keeps the eye with
// the lower mean squared error. On a tie the right eye wins.
//
// Samples are gap filled and median filtered first. Missing streams, or
// streams without a single sample, yield core.ErrInsufficientData.
func Fit(c *core.Container, opts ...Option) (Result, error) {
	o := Options{Logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}

	if err := c.AssertHasStreams(RequiredStreams); err != nil {
		return Result{}, err
	}

	left, err := fitEye(c, "left", LeftEyeX, LeftEyeY)
	if err != nil {
		return Result{}, err
	}
	right, err := fitEye(c, "right", RightEyeX, RightEyeY)
	if err != nil {
		return Result{}, err
	}
	o.Logger.Debug("saccade fits",
		"left_mse", left.result.MeanSquaredError,
		"right_mse", right.result.MeanSquaredError)

	best := right
	if left.result.MeanSquaredError < right.result.MeanSquaredError {
		best = left
	}

	nSource := len(best.result.SourcePoints)
	nSaccade := len(best.result.SaccadePoints)
	startIndex := max(0, nSource-1)
	endIndex := max(0, nSource+nSaccade-1)

	start, err := c.RelativeTimeByIndex(best.timeline, startIndex)
	if err != nil {
		return Result{}, err
	}
	end, err := c.RelativeTimeByIndex(best.timeline, endIndex)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Type:              Type,
		StartTimeRelative: start,
		EndTimeRelative:   end,
		MeanSquaredError:  best.result.MeanSquaredError,
		Eye:               best.name,
	}, nil
}

func fitEye(c *core.Container, eye, xStream, yStream string) (eyeFit, error) {
	timeline, err := c.StreamTimelineName(xStream)
	if err != nil {
		return eyeFit{}, err
	}
	xs, err := filtered(c, xStream)
	if err != nil {
		return eyeFit{}, err
	}
	ys, err := filtered(c, yStream)
	if err != nil {
		return eyeFit{}, err
	}

	points := make([]saccademodel.Point, min(len(xs), len(ys)))
	for i := range points {
		points[i] = saccademodel.Point{X: xs[i], Y: ys[i]}
	}

	result, err := saccademodel.Fit(points)
	if errors.Is(err, saccademodel.ErrInterpolation) {
		return eyeFit{}, fmt.Errorf("%w: cannot find saccade from empty data", core.ErrInsufficientData)
	}
	if err != nil {
		return eyeFit{}, err
	}
	return eyeFit{name: eye, timeline: timeline, result: result}, nil
}

// filtered returns the gap filled, median filtered samples of a stream.
func filtered(c *core.Container, stream string) ([]float64, error) {
	values, err := typed.Values[float64](c, stream)
	if err != nil {
		return nil, err
	}
	filled, err := preprocessing.FillGaps(values)
	if errors.Is(err, preprocessing.ErrExtrapolation) {
		return nil, fmt.Errorf("%w: stream %q has no samples", core.ErrInsufficientData, stream)
	}
	if err != nil {
		return nil, err
	}
	return preprocessing.MedianFilter(filled, MedianKernel)
}
