// Package tobii converts Tobii TX300 gaze data exported by the ICL
// experiment software into gazelib/common/v1 containers.
//
// A .gazedata file is a tab separated table with one row per sample. The
// columns read are TETTime, the per eye gaze position, pupil diameter and
// validity columns, and the experiment columns tag, trialnumber, stim and aoi.
package tobii

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"github.com/gazelib/gazelib/pkg/adapters/fs"
	"github.com/gazelib/gazelib/pkg/convert"
	"github.com/gazelib/gazelib/pkg/core"
)

// Timeline is the name of the timeline built from TETTime.
const Timeline = "eyetracker"

// Stream names written by Convert.
const (
	LeftEyeX      = "gazelib/gaze/left_eye_x_relative"
	LeftEyeY      = "gazelib/gaze/left_eye_y_relative"
	LeftEyePupil  = "gazelib/gaze/left_eye_pupil_mm"
	RightEyeX     = "gazelib/gaze/right_eye_x_relative"
	RightEyeY     = "gazelib/gaze/right_eye_y_relative"
	RightEyePupil = "gazelib/gaze/right_eye_pupil_mm"
)

// Event tags written by Convert.
const (
	TagWait     = "icl/experiment/reaction/period/wait"
	TagTarget   = "icl/experiment/reaction/period/target"
	TagTrial    = "icl/experiment/reaction/trial"
	TagStimulus = "icl/stimulus"
	TagImage    = "icl/stimulus/image"
)

// Environment entries written by Convert.
const (
	EnvHeadID             = "gazelib/gaze/head_id"
	EnvTrialConfiguration = "icl/gaze/trial_configuration_id"
	EnvSourceFiles        = "gazelib/general/source_files"
	EnvCalibrated         = "icl/gaze/tracker_successfully_calibrated"
	EnvManufacturer       = "gazelib/gaze/eyetracker/manufacturer"
	EnvModel              = "gazelib/gaze/eyetracker/model"
	EnvDisplaySize        = "gazelib/gaze/tracked_display_size"
	EnvConversionID       = "gazelib/general/conversion_id"
)

// Delimiter separates the columns of a .gazedata file.
const Delimiter = '\t'

// ErrNoRows is returned for gaze data without a single sample.
var ErrNoRows = errors.New("gaze data has no rows")

// Options configures a conversion.
type Options struct {
	HeadID       string
	SourceFiles  []string
	Calibrated   bool
	ConversionID string
	Logger       *slog.Logger
}

// Option is a functional option for Convert.
type Option func(*Options)

// WithHeadID sets the participant identifier.
func WithHeadID(id string) Option {
	return func(o *Options) {
		o.HeadID = id
	}
}

// WithSourceFiles records the names of the files the data came from.
func WithSourceFiles(names ...string) Option {
	return func(o *Options) {
		o.SourceFiles = names
	}
}

// WithCalibrated records whether the tracker calibration succeeded.
func WithCalibrated(ok bool) Option {
	return func(o *Options) {
		o.Calibrated = ok
	}
}

// WithConversionID overrides the generated conversion id.
func WithConversionID(id string) Option {
	return func(o *Options) {
		o.ConversionID = id
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

func newOptions(opts []Option) Options {
	o := Options{
		HeadID:     "unknown",
		Calibrated: true,
		Logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.ConversionID == "" {
		o.ConversionID = uuid.NewString()
	}
	return o
}

// ValidityToConfidence maps a Tobii validity code to a confidence value.
// 0 means the eye was certainly found and 4 that it certainly was not.
func ValidityToConfidence(validity int) (float64, error) {
	switch validity {
	case 0:
		return 1.0, nil
	case 1:
		return 0.8, nil
	case 2:
		return 0.5, nil
	case 3:
		return 0.1, nil
	case 4:
		return 0.0, nil
	}
	return 0, fmt.Errorf("%w: invalid Tobii validity %d", convert.ErrConversion, validity)
}

// ConvertFiles reads a .gazedata file and its experiment configuration and
// converts them. Source file names default to the base names of both paths.
func ConvertFiles(gazedataPath, configPath, trialConfigID string, opts ...Option) (*core.Container, error) {
	gd, err := os.Open(gazedataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open gaze data: %w", err)
	}
	defer gd.Close()

	rows, err := fs.ReadDictList(gd, Delimiter)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", gazedataPath, err)
	}

	cf, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open experiment configuration: %w", err)
	}
	defer cf.Close()

	ec, err := convert.ReadExperimentConfiguration(cf)
	if err != nil {
		return nil, err
	}

	opts = append([]Option{WithSourceFiles(filepath.Base(gazedataPath), filepath.Base(configPath))}, opts...)
	return Convert(rows, ec, trialConfigID, opts...)
}

// Convert builds a container from gaze data rows. The first row's TETTime
// becomes the time reference.
func Convert(rows []convert.Row, ec convert.ExperimentConfiguration, trialConfigID string, opts ...Option) (*core.Container, error) {
	o := newOptions(opts)
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %w", convert.ErrConversion, ErrNoRows)
	}
	trial, err := ec.TrialConfiguration(trialConfigID)
	if err != nil {
		return nil, err
	}

	reference, err := parseInt(rows[0], "TETTime")
	if err != nil {
		return nil, err
	}
	relativeTime := func(r convert.Row) (int64, error) {
		t, err := parseInt(r, "TETTime")
		if err != nil {
			return 0, err
		}
		return t - reference, nil
	}

	c := core.NewAt(reference)
	addEnvironment(c, o, trialConfigID)

	if err := addStreams(c, rows, relativeTime); err != nil {
		return nil, err
	}
	if err := addPeriods(c, rows, relativeTime); err != nil {
		return nil, err
	}
	if err := addTrials(c, rows, relativeTime); err != nil {
		return nil, err
	}
	if err := addStimuli(c, rows, relativeTime, trial); err != nil {
		return nil, err
	}

	o.Logger.Info("converted tobii gaze data",
		"conversion_id", o.ConversionID,
		"samples", len(rows),
		"events", c.CountEvents())
	return c, nil
}

func addEnvironment(c *core.Container, o Options, trialConfigID string) {
	sources := make([]any, len(o.SourceFiles))
	for i, s := range o.SourceFiles {
		sources[i] = s
	}
	c.AddEnvironment(EnvHeadID, o.HeadID)
	c.AddEnvironment(EnvTrialConfiguration, trialConfigID)
	c.AddEnvironment(EnvSourceFiles, sources)
	c.AddEnvironment(EnvCalibrated, o.Calibrated)
	c.AddEnvironment(EnvManufacturer, "Tobii")
	c.AddEnvironment(EnvModel, "TX300")
	c.AddEnvironment(EnvDisplaySize, map[string]any{
		"physical_mm": map[string]any{
			"width":  510.0,
			"height": 288.0,
		},
		"resolution_px": map[string]any{
			"width":  1024,
			"height": 768,
		},
	})
	c.AddEnvironment(EnvConversionID, o.ConversionID)
}

type eyeColumns struct {
	x, y, pupil, validity string
	xStream, yStream     string
	pupilStream          string
}

var eyes = []eyeColumns{
	{"XGazePosLeftEye", "YGazePosLeftEye", "LeftEyePupilDiameter", "ValidityLeftEye", LeftEyeX, LeftEyeY, LeftEyePupil},
	{"XGazePosRightEye", "YGazePosRightEye", "RightEyePupilDiameter", "ValidityRightEye", RightEyeX, RightEyeY, RightEyePupil},
}

func addStreams(c *core.Container, rows []convert.Row, relativeTime func(convert.Row) (int64, error)) error {
	timeline := make([]int64, len(rows))
	for i, r := range rows {
		t, err := relativeTime(r)
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
		timeline[i] = t
	}
	if err := c.AddTimeline(Timeline, timeline); err != nil {
		return err
	}

	for _, eye := range eyes {
		xs := make([]any, len(rows))
		ys := make([]any, len(rows))
		pupils := make([]any, len(rows))
		confidence := make([]float64, len(rows))
		for i, r := range rows {
			var err error
			if xs[i], err = parseSample(r, eye.x); err != nil {
				return fmt.Errorf("row %d: %w", i, err)
			}
			if ys[i], err = parseSample(r, eye.y); err != nil {
				return fmt.Errorf("row %d: %w", i, err)
			}
			if pupils[i], err = parseSample(r, eye.pupil); err != nil {
				return fmt.Errorf("row %d: %w", i, err)
			}
			validity, err := parseInt(r, eye.validity)
			if err != nil {
				return fmt.Errorf("row %d: %w", i, err)
			}
			if confidence[i], err = ValidityToConfidence(int(validity)); err != nil {
				return fmt.Errorf("row %d: %w", i, err)
			}
		}
		if err := c.AddStream(eye.xStream, Timeline, xs, core.WithConfidence(confidence)); err != nil {
			return err
		}
		if err := c.AddStream(eye.yStream, Timeline, ys, core.WithConfidence(confidence)); err != nil {
			return err
		}
		if err := c.AddStream(eye.pupilStream, Timeline, pupils); err != nil {
			return err
		}
	}
	return nil
}

func addPeriods(c *core.Container, rows []convert.Row, relativeTime func(convert.Row) (int64, error)) error {
	period := func(r convert.Row) (string, error) {
		switch tag := r["tag"]; tag {
		case "":
			return "", convert.ErrSkipRow
		case "Wait":
			return TagWait, nil
		case "Target", "midbox":
			return TagTarget, nil
		default:
			return "", fmt.Errorf("%w: unexpected tag value %q", convert.ErrConversion, tag)
		}
	}
	ranges, err := convert.SplitToRangesAtChangeInValue(rows, period, relativeTime)
	if err != nil {
		return err
	}
	for _, r := range ranges {
		if err := c.AddEvent([]string{r.Value}, r.Start, r.End); err != nil {
			return err
		}
	}
	return nil
}

func addTrials(c *core.Container, rows []convert.Row, relativeTime func(convert.Row) (int64, error)) error {
	trial := func(r convert.Row) (int64, error) {
		if r["trialnumber"] == "" {
			return 0, convert.ErrSkipRow
		}
		return parseInt(r, "trialnumber")
	}
	ranges, err := convert.SplitToRangesAtChangeInValue(rows, trial, relativeTime)
	if err != nil {
		return err
	}
	for _, r := range ranges {
		extra := map[string]any{
			"icl/experiment/reaction/trial/sequence_number": r.Value,
		}
		if err := c.AddEvent([]string{TagTrial}, r.Start, r.End, core.WithExtra(extra)); err != nil {
			return err
		}
	}
	return nil
}

func addStimuli(c *core.Container, rows []convert.Row, relativeTime func(convert.Row) (int64, error), trial convert.TrialConfiguration) error {
	// A new range starts when either the image or the area of interest changes.
	stimulus := func(r convert.Row) (string, error) {
		if r["stim"] == "" || r["aoi"] == "" {
			return "", convert.ErrSkipRow
		}
		return r["stim"] + "-" + r["aoi"], nil
	}
	ranges, err := convert.SplitToRangesAtChangeInValue(rows, stimulus, relativeTime)
	if err != nil {
		return err
	}
	for _, r := range ranges {
		imageIndex, err := parseInt(r.First, "stim")
		if err != nil {
			return err
		}
		aoiIndex, err := parseInt(r.First, "aoi")
		if err != nil {
			return err
		}
		filename, err := trial.ImageName(int(imageIndex))
		if err != nil {
			return err
		}
		rect, err := trial.AOIRectangle(int(aoiIndex))
		if err != nil {
			return err
		}
		extra := map[string]any{
			"original_area_of_interest_index": aoiIndex,
			"original_image_index":            imageIndex,
			"icl/stimulus/image/filename":     filename,
			"icl/stimulus/image/rectangle":    []any{rect[0], rect[1], rect[2], rect[3]},
		}
		if err := c.AddEvent([]string{TagStimulus, TagImage}, r.Start, r.End, core.WithExtra(extra)); err != nil {
			return err
		}
	}
	return nil
}

func parseInt(r convert.Row, column string) (int64, error) {
	v, ok := r[column]
	if !ok {
		return 0, fmt.Errorf("%w: missing column %q", convert.ErrConversion, column)
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: column %q: %v", convert.ErrConversion, column, err)
	}
	return n, nil
}

// parseSample parses a gaze or pupil value. Tobii writes -1 for samples the
// tracker lost; those become nil.
func parseSample(r convert.Row, column string) (any, error) {
	v, ok := r[column]
	if !ok {
		return nil, fmt.Errorf("%w: missing column %q", convert.ErrConversion, column)
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: column %q: %v", convert.ErrConversion, column, err)
	}
	if f == -1.0 {
		return nil, nil
	}
	return f, nil
}
