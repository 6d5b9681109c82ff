package saccade_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gazelib/gazelib/pkg/core"
	"github.com/gazelib/gazelib/pkg/models/saccade"
)

func constant(n int, v float64) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// ramp is a fixation at 0, a three sample saccade and a fixation at 1.
func ramp() []any {
	out := constant(5, 0)
	out = append(out, 0.25, 0.5, 0.75)
	return append(out, constant(5, 1)...)
}

// drift never settles, so a fixation model fits it poorly.
func drift(n int) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = float64(i*i) / 100
	}
	return out
}

func newGaze(t *testing.T, lx, ly, rx, ry []any) *core.Container {
	t.Helper()
	c := core.NewAt(0)
	tl := make([]int64, len(lx))
	for i := range tl {
		tl[i] = int64(i) * 1_000
	}
	require.NoError(t, c.AddTimeline("eyetracker", tl))
	require.NoError(t, c.AddStream(saccade.LeftEyeX, "eyetracker", lx))
	require.NoError(t, c.AddStream(saccade.LeftEyeY, "eyetracker", ly))
	require.NoError(t, c.AddStream(saccade.RightEyeX, "eyetracker", rx))
	require.NoError(t, c.AddStream(saccade.RightEyeY, "eyetracker", ry))
	return c
}

func TestFit(t *testing.T) {
	flat := constant(13, 0.3)

	t.Run("Right eye fits better", func(t *testing.T) {
		c := newGaze(t, drift(13), flat, ramp(), flat)
		r, err := saccade.Fit(c)
		require.NoError(t, err)
		assert.Equal(t, saccade.Type, r.Type)
		assert.Equal(t, "right", r.Eye)
		assert.Equal(t, int64(4_000), r.StartTimeRelative)
		assert.Equal(t, int64(7_000), r.EndTimeRelative)
		assert.InDelta(t, 0, r.MeanSquaredError, 1e-9)
	})

	t.Run("Left eye fits better", func(t *testing.T) {
		c := newGaze(t, ramp(), flat, drift(13), flat)
		r, err := saccade.Fit(c)
		require.NoError(t, err)
		assert.Equal(t, "left", r.Eye)
		assert.Equal(t, int64(4_000), r.StartTimeRelative)
		assert.Equal(t, int64(7_000), r.EndTimeRelative)
	})

	t.Run("Tie goes to the right eye", func(t *testing.T) {
		c := newGaze(t, ramp(), flat, ramp(), flat)
		r, err := saccade.Fit(c)
		require.NoError(t, err)
		assert.Equal(t, "right", r.Eye)
	})

	t.Run("Gaps are filled", func(t *testing.T) {
		rx := ramp()
		rx[0], rx[1] = nil, nil
		c := newGaze(t, drift(13), flat, rx, flat)
		r, err := saccade.Fit(c)
		require.NoError(t, err)
		assert.Equal(t, int64(4_000), r.StartTimeRelative)
	})
}

func TestFitInsufficientData(t *testing.T) {
	t.Run("Empty container", func(t *testing.T) {
		_, err := saccade.Fit(core.New())
		assert.ErrorIs(t, err, core.ErrInsufficientData)
	})

	t.Run("Only missing samples", func(t *testing.T) {
		none := []any{nil, nil, nil}
		c := newGaze(t, none, none, none, none)
		_, err := saccade.Fit(c)
		assert.ErrorIs(t, err, core.ErrInsufficientData)
	})

	t.Run("No samples", func(t *testing.T) {
		c := newGaze(t, []any{}, []any{}, []any{}, []any{})
		_, err := saccade.Fit(c)
		assert.ErrorIs(t, err, core.ErrInsufficientData)
	})
}
