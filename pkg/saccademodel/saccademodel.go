// Package saccademodel fits a three phase model to a sequence of gaze points:
// a fixation at a source position, a linear saccade, and a fixation at a
// target position.
//
// Every split of the sequence into source, saccade and target is scored by
// the mean squared distance between the points and the model. Source and
// target points are modeled by their mean; saccade points are modeled by
// evenly spaced positions on the segment between the two means. Prefix sums
// keep each score O(1), so a fit is O(n²) in the number of points.
package saccademodel

import (
	"errors"
	"math"
)

// ErrInterpolation is returned when there are no points to fit.
var ErrInterpolation = errors.New("cannot fit a saccade to an empty sequence")

// Point is a 2D gaze position.
type Point struct {
	X, Y float64
}

func (p Point) add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) scale(f float64) Point { return Point{p.X * f, p.Y * f} }
func (p Point) dot(q Point) float64 { return p.X*q.X + p.Y*q.Y }
func (p Point) norm2() float64 { return p.dot(p) }

// Result is the best split found by Fit.
type Result struct {
	SourcePoints     []Point `json:"source_points"`
	SaccadePoints    []Point `json:"saccade_points"`
	TargetPoints     []Point `json:"target_points"`
	MeanSquaredError float64 `json:"mean_squared_error"`
}

// prefix holds running sums over the points so that segment sums are O(1).
type prefix struct {
	sum      []Point   // Σ p_k
	weighted []Point   // Σ k·p_k
	sq       []float64 // Σ |p_k|²
}

func newPrefix(points []Point) prefix {
	n := len(points)
	p := prefix{
		sum:      make([]Point, n+1),
		weighted: make([]Point, n+1),
		sq:       make([]float64, n+1),
	}
	for k, pt := range points {
		p.sum[k+1] = p.sum[k].add(pt)
		p.weighted[k+1] = p.weighted[k].add(pt.scale(float64(k)))
		p.sq[k+1] = p.sq[k] + pt.norm2()
	}
	return p
}

// constantError is the squared error of points [i, j) against their mean.
func (p prefix) constantError(i, j int) (Point, float64) {
	m := float64(j - i)
	s := p.sum[j].sub(p.sum[i])
	mean := s.scale(1 / m)
	return mean, p.sq[j] - p.sq[i] - s.norm2()/m
}

// lineError is the squared error of points [i, j) against positions
// a + (b-a)·t_k with t_k = (k-i+1)/(m+1).
func (p prefix) lineError(i, j int, a, b Point) float64 {
	m := float64(j - i)
	if m == 0 {
		return 0
	}
	s := p.sum[j].sub(p.sum[i])
	ks := p.weighted[j].sub(p.weighted[i])
	// Σ p_k·t_k
	pt := ks.sub(s.scale(float64(i - 1))).scale(1 / (m + 1))
	// Σ p_k·(1-t_k)
	pu := s.sub(pt)
	d := b.sub(a)
	sumT := m / 2
	sumT2 := m * (2*m + 1) / (6 * (m + 1))
	model := m*a.norm2() + 2*a.dot(d)*sumT + d.norm2()*sumT2
	return p.sq[j] - p.sq[i] - 2*(a.dot(pu)+b.dot(pt)) + model
}

// Fit finds the split of points into source, saccade and target with the
// smallest mean squared error. Source and target hold at least one point
// each when there are two or more points. Ties go to the shortest source,
// then the shortest saccade.
func Fit(points []Point) (Result, error) {
	n := len(points)
	if n == 0 {
		return Result{}, ErrInterpolation
	}
	if n == 1 {
		return Result{
			SourcePoints:  []Point{points[0]},
			SaccadePoints: []Point{},
			TargetPoints:  []Point{},
		}, nil
	}

	pre := newPrefix(points)
	bestErr := math.Inf(1)
	bestI, bestJ := 1, 1
	for i := 1; i < n; i++ {
		a, srcErr := pre.constantError(0, i)
		for j := i; j < n; j++ {
			b, tgtErr := pre.constantError(j, n)
			total := srcErr + tgtErr + pre.lineError(i, j, a, b)
			if total < bestErr {
				bestErr, bestI, bestJ = total, i, j
			}
		}
	}

	return Result{
		SourcePoints:     clonePoints(points[:bestI]),
		SaccadePoints:    clonePoints(points[bestI:bestJ]),
		TargetPoints:     clonePoints(points[bestJ:]),
		MeanSquaredError: max(0, bestErr) / float64(n),
	}, nil
}

func clonePoints(p []Point) []Point {
	return append([]Point{}, p...)
}
