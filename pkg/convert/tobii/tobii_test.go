package tobii_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gazelib/gazelib/pkg/convert"
	"github.com/gazelib/gazelib/pkg/convert/tobii"
	"github.com/gazelib/gazelib/pkg/core"
	"github.com/gazelib/gazelib/pkg/models/saccade"
)

var (
	gazedataPath = filepath.Join("testdata", "shift_trials01-02.gazedata")
	configPath   = filepath.Join("testdata", "experiment-config.json")
)

func convertFixture(t *testing.T, opts ...tobii.Option) *core.Container {
	t.Helper()
	opts = append([]tobii.Option{tobii.WithConversionID("test")}, opts...)
	c, err := tobii.ConvertFiles(gazedataPath, configPath, "shift", opts...)
	require.NoError(t, err)
	return c
}

func TestConvertFiles(t *testing.T) {
	c := convertFixture(t, tobii.WithHeadID("p01"))

	assert.Equal(t, int64(1443604120000000), c.TimeReference())

	tl, err := c.Timeline(tobii.Timeline)
	require.NoError(t, err)
	assert.Equal(t, core.Timeline{0, 10000, 20000, 30000, 40000, 50000, 60000, 70000}, tl)

	assert.NoError(t, c.AssertHasStreams([]string{
		tobii.LeftEyeX, tobii.LeftEyeY, tobii.LeftEyePupil,
		tobii.RightEyeX, tobii.RightEyeY, tobii.RightEyePupil,
	}))
	assert.NoError(t, c.AssertHasStreams(saccade.RequiredStreams))

	t.Run("Environment", func(t *testing.T) {
		head, err := c.Environment(tobii.EnvHeadID)
		require.NoError(t, err)
		assert.Equal(t, "p01", head)

		sources, err := c.Environment(tobii.EnvSourceFiles)
		require.NoError(t, err)
		assert.Equal(t, []any{"shift_trials01-02.gazedata", "experiment-config.json"}, sources)

		trial, err := c.Environment(tobii.EnvTrialConfiguration)
		require.NoError(t, err)
		assert.Equal(t, "shift", trial)

		model, err := c.Environment(tobii.EnvModel)
		require.NoError(t, err)
		assert.Equal(t, "TX300", model)

		id, err := c.Environment(tobii.EnvConversionID)
		require.NoError(t, err)
		assert.Equal(t, "test", id)
	})

	t.Run("Missing samples", func(t *testing.T) {
		xs, err := c.StreamValues(tobii.LeftEyeX)
		require.NoError(t, err)
		assert.Equal(t, 0.5, xs[0])
		assert.Nil(t, xs[2])

		pupils, err := c.StreamValues(tobii.LeftEyePupil)
		require.NoError(t, err)
		assert.Nil(t, pupils[2])
	})

	t.Run("Confidence", func(t *testing.T) {
		conf, err := c.StreamConfidence(tobii.LeftEyeX)
		require.NoError(t, err)
		assert.Equal(t, []float64{1.0, 1.0, 0.0, 0.5, 0.1, 1.0, 1.0, 1.0}, conf)

		conf, err = c.StreamConfidence(tobii.RightEyeY)
		require.NoError(t, err)
		assert.Equal(t, 0.8, conf[2])

		conf, err = c.StreamConfidence(tobii.LeftEyePupil)
		require.NoError(t, err)
		assert.Nil(t, conf)
	})

	t.Run("Periods", func(t *testing.T) {
		var got [][2]int64
		for e := range c.IterEventsByTags([]string{tobii.TagWait, tobii.TagTarget}) {
			got = append(got, [2]int64(e.Range))
		}
		assert.Equal(t, [][2]int64{{10000, 30000}, {30000, 60000}, {60000, 70000}, {70000, 80000}}, got)
		assert.Equal(t, 2, c.CountEventsByTag(tobii.TagTarget))
	})

	t.Run("Trials", func(t *testing.T) {
		require.Equal(t, 2, c.CountEventsByTag(tobii.TagTrial))
		second, err := c.EventByTag(tobii.TagTrial, 1)
		require.NoError(t, err)
		assert.Equal(t, core.Range{50000, 80000}, second.Range)
		extra := second.Extra.(map[string]any)
		assert.EqualValues(t, 2, extra["icl/experiment/reaction/trial/sequence_number"])
	})

	t.Run("Stimuli", func(t *testing.T) {
		require.Equal(t, 3, c.CountEventsByTag(tobii.TagImage))
		e, err := c.EventByTag(tobii.TagImage, 1)
		require.NoError(t, err)
		assert.Equal(t, core.Range{30000, 60000}, e.Range)
		assert.True(t, e.HasTag(tobii.TagStimulus))

		extra := e.Extra.(map[string]any)
		assert.Equal(t, "target.png", extra["icl/stimulus/image/filename"])
		assert.Equal(t, []any{0.5, 0.7, 0.6, 0.8}, extra["icl/stimulus/image/rectangle"])
		assert.EqualValues(t, 1, extra["original_image_index"])
		assert.EqualValues(t, 1, extra["original_area_of_interest_index"])
	})

	t.Run("Valid document", func(t *testing.T) {
		data, err := c.MarshalJSON()
		require.NoError(t, err)
		back, err := core.FromJSON(data)
		require.NoError(t, err)
		assert.Equal(t, c.CountEvents(), back.CountEvents())
	})
}

func TestConvertGeneratesConversionID(t *testing.T) {
	a, err := tobii.ConvertFiles(gazedataPath, configPath, "shift")
	require.NoError(t, err)
	b, err := tobii.ConvertFiles(gazedataPath, configPath, "shift")
	require.NoError(t, err)

	idA, err := a.Environment(tobii.EnvConversionID)
	require.NoError(t, err)
	idB, err := b.Environment(tobii.EnvConversionID)
	require.NoError(t, err)
	assert.NotEmpty(t, idA)
	assert.NotEqual(t, idA, idB)
}

func TestConvertErrors(t *testing.T) {
	ec := convert.ExperimentConfiguration{{Name: "mid", Images: []string{"a.png"}, AOIs: [][4]float64{{0, 1, 0, 1}}}}
	row := func(mod func(convert.Row)) []convert.Row {
		r := convert.Row{
			"TETTime":               "100",
			"XGazePosLeftEye":       "0.5",
			"YGazePosLeftEye":       "0.5",
			"LeftEyePupilDiameter":  "3",
			"ValidityLeftEye":       "0",
			"XGazePosRightEye":      "0.5",
			"YGazePosRightEye":      "0.5",
			"RightEyePupilDiameter": "3",
			"ValidityRightEye":      "0",
			"tag":                   "",
			"trialnumber":           "1",
			"stim":                  "0",
			"aoi":                   "0",
		}
		if mod != nil {
			mod(r)
		}
		return []convert.Row{r}
	}

	t.Run("Valid single row", func(t *testing.T) {
		c, err := tobii.Convert(row(nil), ec, "mid")
		require.NoError(t, err)
		assert.Equal(t, int64(100), c.TimeReference())
		assert.Equal(t, 1, c.CountEventsByTag(tobii.TagTrial))
	})

	t.Run("No rows", func(t *testing.T) {
		_, err := tobii.Convert(nil, ec, "mid")
		assert.ErrorIs(t, err, convert.ErrConversion)
		assert.ErrorIs(t, err, tobii.ErrNoRows)
	})

	t.Run("Unknown trial configuration", func(t *testing.T) {
		_, err := tobii.Convert(row(nil), ec, "shift")
		assert.ErrorIs(t, err, convert.ErrUnknownTrial)
	})

	t.Run("Invalid validity", func(t *testing.T) {
		_, err := tobii.Convert(row(func(r convert.Row) { r["ValidityRightEye"] = "7" }), ec, "mid")
		assert.ErrorIs(t, err, convert.ErrConversion)
	})

	t.Run("Unexpected tag", func(t *testing.T) {
		_, err := tobii.Convert(row(func(r convert.Row) { r["tag"] = "Surprise" }), ec, "mid")
		assert.ErrorIs(t, err, convert.ErrConversion)
	})

	t.Run("Missing column", func(t *testing.T) {
		_, err := tobii.Convert(row(func(r convert.Row) { delete(r, "XGazePosLeftEye") }), ec, "mid")
		assert.ErrorIs(t, err, convert.ErrConversion)
	})

	t.Run("Image index out of range", func(t *testing.T) {
		_, err := tobii.Convert(row(func(r convert.Row) { r["stim"] = "3" }), ec, "mid")
		assert.ErrorIs(t, err, convert.ErrConversion)
	})
}

func TestValidityToConfidence(t *testing.T) {
	want := map[int]float64{0: 1.0, 1: 0.8, 2: 0.5, 3: 0.1, 4: 0.0}
	for validity, conf := range want {
		got, err := tobii.ValidityToConfidence(validity)
		require.NoError(t, err)
		assert.Equal(t, conf, got)
	}
	_, err := tobii.ValidityToConfidence(-1)
	assert.ErrorIs(t, err, convert.ErrConversion)
}

func TestConvertedSaccade(t *testing.T) {
	c := convertFixture(t)
	trial, err := c.SliceByTag(tobii.TagTrial, 0)
	require.NoError(t, err)

	res, err := saccade.Fit(trial)
	require.NoError(t, err)
	assert.Equal(t, saccade.Type, res.Type)
	assert.LessOrEqual(t, res.StartTimeRelative, res.EndTimeRelative)
}
