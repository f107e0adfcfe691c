package evaluation

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStratifiedKFold_PreservesClassRatio(t *testing.T) {
	y := make([]int, 100)
	for i := 0; i < 10; i++ {
		y[i*10] = 1
	}

	folds, err := NewStratifiedKFold(5, false, 0).Split(y)
	require.NoError(t, err)
	require.Len(t, folds, 5)

	seen := make(map[int]int)
	for _, fold := range folds {
		assert.Len(t, fold.Test, 20)
		assert.Len(t, fold.Train, 80)
		assert.True(t, sort.IntsAreSorted(fold.Test))
		assert.True(t, sort.IntsAreSorted(fold.Train))

		positives := 0
		for _, idx := range fold.Test {
			seen[idx]++
			if y[idx] == 1 {
				positives++
			}
		}
		assert.Equal(t, 2, positives)

		inTest := make(map[int]bool)
		for _, idx := range fold.Test {
			inTest[idx] = true
		}
		for _, idx := range fold.Train {
			assert.False(t, inTest[idx], "index %d in both train and test", idx)
		}
	}

	assert.Len(t, seen, 100, "every sample is tested exactly once")
	for idx, count := range seen {
		assert.Equal(t, 1, count, "index %d", idx)
	}
}

func TestStratifiedKFold_Shuffle(t *testing.T) {
	_, y := synthetic(60, 4, 1)

	a, err := NewStratifiedKFold(3, true, 7).Split(y)
	require.NoError(t, err)
	b, err := NewStratifiedKFold(3, true, 7).Split(y)
	require.NoError(t, err)
	plain, err := NewStratifiedKFold(3, false, 7).Split(y)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, plain, a)

	for _, fold := range a {
		positives := 0
		for _, idx := range fold.Test {
			positives += y[idx]
		}
		assert.Equal(t, 5, positives)
	}
}

func TestStratifiedKFold_InvalidFolds(t *testing.T) {
	y := []int{0, 0, 0, 1, 1, 1}

	tests := []struct {
		name   string
		nFolds int
		labels []int
	}{
		{"one fold", 1, y},
		{"more folds than samples", 7, y},
		{"more folds than largest class", 4, y},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewStratifiedKFold(tt.nFolds, false, 0).Split(tt.labels)
			assert.ErrorIs(t, err, ErrInvalidFolds)
		})
	}
}

func TestStratifiedKFold_SmallClass(t *testing.T) {
	y := []int{0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 1}

	folds, err := NewStratifiedKFold(5, false, 0).Split(y)
	require.NoError(t, err)

	withPositive := 0
	for _, fold := range folds {
		for _, idx := range fold.Test {
			if y[idx] == 1 {
				withPositive++
			}
		}
	}
	assert.Equal(t, 2, withPositive)
}
