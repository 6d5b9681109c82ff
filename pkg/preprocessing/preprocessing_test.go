package preprocessing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gazelib/gazelib/pkg/preprocessing"
	"github.com/gazelib/gazelib/pkg/stats"
)

func TestFillGaps(t *testing.T) {
	p := stats.Ptr[int]

	tests := []struct {
		name string
		in   []*int
		want []int
	}{
		{"Leading and inner gaps", []*int{nil, nil, p(5), nil, p(7)}, []int{5, 5, 5, 5, 7}},
		{"Trailing gap", []*int{p(1), nil}, []int{1, 1}},
		{"No gaps", []*int{p(1), p(2)}, []int{1, 2}},
		{"Single", []*int{p(3)}, []int{3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := preprocessing.FillGaps(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("Input untouched", func(t *testing.T) {
		in := []*int{nil, p(1)}
		_, err := preprocessing.FillGaps(in)
		require.NoError(t, err)
		assert.Nil(t, in[0])
	})

	t.Run("Nothing to fill from", func(t *testing.T) {
		_, err := preprocessing.FillGaps([]*int{nil, nil})
		assert.ErrorIs(t, err, preprocessing.ErrExtrapolation)
		_, err = preprocessing.FillGaps([]*float64{})
		assert.ErrorIs(t, err, preprocessing.ErrExtrapolation)
	})
}

func TestMedianFilter(t *testing.T) {
	t.Run("Removes outlier", func(t *testing.T) {
		got, err := preprocessing.MedianFilter([]float64{1, 1, 9, 1, 1, 1, 1}, 3)
		require.NoError(t, err)
		assert.Equal(t, []float64{1, 1, 1, 1, 1, 1, 1}, got)
	})

	t.Run("Zero padded edges", func(t *testing.T) {
		got, err := preprocessing.MedianFilter([]float64{1, 2, 3}, 3)
		require.NoError(t, err)
		assert.Equal(t, []float64{1, 2, 2}, got)

		got, err = preprocessing.MedianFilter([]float64{4, 4}, 5)
		require.NoError(t, err)
		assert.Equal(t, []float64{0, 0}, got)
	})

	t.Run("Kernel one is identity", func(t *testing.T) {
		in := []float64{3, 1, 2}
		got, err := preprocessing.MedianFilter(in, 1)
		require.NoError(t, err)
		assert.Equal(t, in, got)
	})

	t.Run("Even kernel", func(t *testing.T) {
		_, err := preprocessing.MedianFilter([]float64{1}, 4)
		assert.Error(t, err)
	})
}
