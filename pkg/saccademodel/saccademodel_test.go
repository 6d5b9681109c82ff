package saccademodel

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func points(xs ...float64) []Point {
	out := make([]Point, len(xs))
	for i, x := range xs {
		out[i] = Point{X: x, Y: -x}
	}
	return out
}

func TestFit(t *testing.T) {
	t.Run("Step", func(t *testing.T) {
		r, err := Fit(points(0, 0, 0, 10, 10, 10))
		require.NoError(t, err)
		assert.Len(t, r.SourcePoints, 3)
		assert.Empty(t, r.SaccadePoints)
		assert.Len(t, r.TargetPoints, 3)
		assert.InDelta(t, 0, r.MeanSquaredError, 1e-9)
	})

	t.Run("Ramp", func(t *testing.T) {
		r, err := Fit(points(0, 0, 1, 2, 3, 3))
		require.NoError(t, err)
		assert.Equal(t, points(0, 0), r.SourcePoints)
		assert.Equal(t, points(1, 2), r.SaccadePoints)
		assert.Equal(t, points(3, 3), r.TargetPoints)
		assert.InDelta(t, 0, r.MeanSquaredError, 1e-9)
	})

	t.Run("Single point", func(t *testing.T) {
		r, err := Fit(points(4))
		require.NoError(t, err)
		assert.Len(t, r.SourcePoints, 1)
		assert.Zero(t, r.MeanSquaredError)
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := Fit(nil)
		assert.ErrorIs(t, err, ErrInterpolation)
	})
}

// naiveError scores a split by evaluating the model point by point.
func naiveError(pts []Point, i, j int) float64 {
	mean := func(ps []Point) Point {
		var s Point
		for _, p := range ps {
			s = s.add(p)
		}
		return s.scale(1 / float64(len(ps)))
	}
	a, b := mean(pts[:i]), mean(pts[j:])
	total := 0.0
	for _, p := range pts[:i] {
		total += p.sub(a).norm2()
	}
	m := float64(j - i)
	for k := i; k < j; k++ {
		tk := float64(k-i+1) / (m + 1)
		total += pts[k].sub(a.add(b.sub(a).scale(tk))).norm2()
	}
	for _, p := range pts[j:] {
		total += p.sub(b).norm2()
	}
	return total / float64(len(pts))
}

func TestFitMatchesNaive(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for n := 2; n < 25; n++ {
		pts := make([]Point, n)
		for k := range pts {
			pts[k] = Point{X: rng.Float64()*10 - 5, Y: rng.Float64()*10 - 5}
		}

		best := math.Inf(1)
		for i := 1; i < n; i++ {
			for j := i; j < n; j++ {
				best = min(best, naiveError(pts, i, j))
			}
		}

		r, err := Fit(pts)
		require.NoError(t, err)
		assert.InDelta(t, best, r.MeanSquaredError, 1e-9, "n=%d", n)
		assert.Equal(t, n, len(r.SourcePoints)+len(r.SaccadePoints)+len(r.TargetPoints))
		assert.InDelta(t, naiveError(pts, len(r.SourcePoints), len(r.SourcePoints)+len(r.SaccadePoints)),
			r.MeanSquaredError, 1e-9)
	}
}
