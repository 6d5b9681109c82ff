package core_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gazelib/gazelib/pkg/core"
)

func TestAddTimeline(t *testing.T) {
	c := core.NewAt(0)

	values := []int64{1, 2, 3}
	require.NoError(t, c.AddTimeline("t", values))
	values[0] = 100
	tl, _ := c.Timeline("t")
	assert.Equal(t, core.Timeline{1, 2, 3}, tl, "container must own its copy")

	assert.ErrorIs(t, c.AddTimeline("", nil), core.ErrInvalidTimeline)

	t.Run("Loosely typed", func(t *testing.T) {
		require.NoError(t, c.AddTimelineValues("any", []any{0, 10.0, int32(20)}))
		tl, _ := c.Timeline("any")
		assert.Equal(t, core.Timeline{0, 10, 20}, tl)

		assert.ErrorIs(t, c.AddTimelineValues("bad", []any{0, 1.5}), core.ErrInvalidTimeline)
		assert.ErrorIs(t, c.AddTimelineValues("bad", []any{"x"}), core.ErrInvalidTimeline)
		assert.ErrorIs(t, c.AddTimelineValues("bad", 42), core.ErrInvalidTimeline)
		assert.NotContains(t, c.TimelineNames(), "bad")
	})

	t.Run("Replacing a bound timeline", func(t *testing.T) {
		c := core.NewAt(0)
		require.NoError(t, c.AddTimeline("t", []int64{0, 10, 20}))
		require.NoError(t, c.AddStream("s", "t", []any{1, 2, 3}))

		err := c.AddTimeline("t", []int64{0, 10, 20, 30, 40})
		assert.ErrorIs(t, err, core.ErrInvalidTimeline)
		assert.ErrorContains(t, err, `"s"`)
		tl, _ := c.Timeline("t")
		assert.Equal(t, core.Timeline{0, 10, 20}, tl)

		require.NoError(t, c.AddTimeline("t", []int64{5, 15, 25}))
		sliced, err := c.SliceByRelativeTime(0, 100)
		require.NoError(t, err)
		values, _ := sliced.Stream("s")
		assert.Len(t, values.Values, 3)
	})
}

func TestZeroContainer(t *testing.T) {
	var c core.Container
	c.AddEnvironment("subject", "p01")
	require.NoError(t, c.AddTimeline("t", []int64{0, 1}))
	require.NoError(t, c.AddStream("s", "t", []any{1.0, 2.0}))
	require.NoError(t, c.AddEvent([]string{"trial"}, 0, 1))

	data, err := c.MarshalJSON()
	require.NoError(t, err)
	loaded, err := core.FromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.CountEventsByTag("trial"))
	assert.Equal(t, []string{"s"}, loaded.StreamNames())
}

func TestAddStream(t *testing.T) {
	newC := func(t *testing.T) *core.Container {
		c := core.NewAt(0)
		require.NoError(t, c.AddTimeline("t", []int64{0, 1, 2}))
		return c
	}

	t.Run("Length mismatch", func(t *testing.T) {
		c := newC(t)
		err := c.AddStream("s", "t", []any{1, 2})
		assert.ErrorIs(t, err, core.ErrInvalidStream)
		assert.False(t, c.HasStreams([]string{"s"}))
	})

	t.Run("Missing timeline", func(t *testing.T) {
		c := newC(t)
		assert.ErrorIs(t, c.AddStream("s", "nope", []any{}), core.ErrMissingTimeline)
	})

	t.Run("Empty name", func(t *testing.T) {
		c := newC(t)
		assert.ErrorIs(t, c.AddStream("", "t", []any{1, 2, 3}), core.ErrInvalidStream)
	})

	t.Run("Confidence bounds", func(t *testing.T) {
		cases := map[string][]float64{
			"too high": {0, 1.01, 1},
			"negative": {0, -0.1, 1},
			"nan":      {0, math.NaN(), 1},
			"short":    {0, 1},
			"long":     {0, 1, 1, 1},
		}
		for name, conf := range cases {
			t.Run(name, func(t *testing.T) {
				c := newC(t)
				err := c.AddStream("s", "t", []any{1, 2, 3}, core.WithConfidence(conf))
				assert.ErrorIs(t, err, core.ErrInvalidStream)
				assert.Empty(t, c.StreamNames())
			})
		}
	})

	t.Run("Replace keeps old on failure", func(t *testing.T) {
		c := newC(t)
		require.NoError(t, c.AddStream("s", "t", []any{1, 2, 3}))
		require.Error(t, c.AddStream("s", "t", []any{1}))
		values, _ := c.StreamValues("s")
		assert.Len(t, values, 3)
	})

	t.Run("Not JSON compatible", func(t *testing.T) {
		c := newC(t)
		err := c.AddStream("s", "t", []any{1, math.Inf(1), 3})
		assert.ErrorIs(t, err, core.ErrInvalidStream)
		err = c.AddStream("s", "t", []any{1, func() {}, 3})
		assert.ErrorIs(t, err, core.ErrInvalidStream)
	})

	t.Run("Owned copy", func(t *testing.T) {
		c := newC(t)
		values := []any{1, 2, 3}
		conf := []float64{1, 1, 1}
		require.NoError(t, c.AddStream("s", "t", values,
			core.WithConfidence(conf), core.WithStreamDerived("gazelib/preprocessing/median")))
		values[0] = 99
		conf[0] = 0

		s, _ := c.Stream("s")
		assert.Equal(t, 1, s.Values[0])
		assert.Equal(t, 1.0, s.Confidence[0])
		assert.Equal(t, "gazelib/preprocessing/median", s.Derived)
	})
}

func TestAddEvent(t *testing.T) {
	c := core.NewAt(0)

	require.NoError(t, c.AddEvent([]string{"a"}, 5, 5))
	assert.ErrorIs(t, c.AddEvent([]string{"a"}, 6, 5), core.ErrInvalidEvent)
	assert.ErrorIs(t, c.AddEvent([]string{"a"}, 0, 1, core.WithExtra(func() {})), core.ErrInvalidEvent)
	assert.Equal(t, 1, c.CountEvents())

	require.NoError(t, c.AddEvent(nil, 0, 1, core.WithEventDerived("gazelib/models/saccade")))
	e := c.Events()[1]
	assert.NotNil(t, e.Tags)
	assert.Equal(t, "gazelib/models/saccade", e.Derived)

	t.Run("Raw", func(t *testing.T) {
		require.NoError(t, c.AddRawEvent([]any{"x", "y"}, 1.0, int64(2)))
		assert.Equal(t, 1, c.CountEventsByTag("y"))

		assert.ErrorIs(t, c.AddRawEvent("x", 0, 1), core.ErrInvalidEvent)
		assert.ErrorIs(t, c.AddRawEvent([]any{"x", 3}, 0, 1), core.ErrInvalidEvent)
		assert.ErrorIs(t, c.AddRawEvent([]string{"x"}, 0.5, 1), core.ErrInvalidEvent)
		assert.ErrorIs(t, c.AddRawEvent([]string{"x"}, 0, "1"), core.ErrInvalidEvent)
		assert.Equal(t, 3, c.CountEvents())
	})
}

func TestSetTimeReference(t *testing.T) {
	c := core.NewAt(100)
	require.NoError(t, c.AddEvent([]string{"a"}, 10, 20))

	c.SetTimeReference(0)
	assert.Equal(t, int64(10), c.ConvertToUnixTime(10))
	assert.Equal(t, core.Range{10, 20}, c.Events()[0].Range, "relative times are not rewritten")

	require.NoError(t, c.SetTimeReferenceValue(5.0))
	assert.Equal(t, int64(5), c.TimeReference())
	assert.ErrorIs(t, c.SetTimeReferenceValue("now"), core.ErrInvalidTime)
	assert.ErrorIs(t, c.SetTimeReferenceValue(1.5), core.ErrInvalidTime)
	assert.Equal(t, int64(5), c.TimeReference())
}
