package preprocessing

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func TestOutlierRows_UnionAcrossColumns(t *testing.T) {
	rows := make([][]float64, 40)
	for i := range rows {
		rows[i] = []float64{float64(i % 3), float64(i % 3)}
	}
	rows[39][0] = 1000
	rows[5][1] = 1000

	assert.Equal(t, []int{5, 39}, OutlierRows(dec(rows)))
}

func TestRemoveOutliers_DropsFromBothSides(t *testing.T) {
	rows := make([][]float64, 40)
	y := make([]int, 40)
	for i := range rows {
		rows[i] = []float64{float64(i % 3)}
		y[i] = i
	}
	rows[20][0] = -1000

	X, labels, err := RemoveOutliers(dec(rows), y)
	require.NoError(t, err)
	require.Len(t, X, 39)
	require.Len(t, labels, 39)
	assert.NotContains(t, labels, 20)
	assert.Equal(t, 19, labels[19])
	assert.Equal(t, 21, labels[20])
}

func TestRemoveOutliers_RetainedRowsWithinBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	rows := make([][]float64, 500)
	y := make([]int, 500)
	for i := range rows {
		rows[i] = []float64{rng.NormFloat64(), rng.ExpFloat64() * 3, rng.NormFloat64() * 10}
		if i%50 == 0 {
			rows[i][i%3] = 500
		}
		y[i] = i % 2
	}
	X := dec(rows)

	type bounds struct{ lo, hi float64 }
	limits := make([]bounds, 3)
	for j := range limits {
		mean, std := stat.MeanStdDev(toFloatColumn(X, j), nil)
		limits[j] = bounds{mean - OutlierStdDevs*std, mean + OutlierStdDevs*std}
	}

	kept, labels, err := RemoveOutliers(X, y)
	require.NoError(t, err)
	assert.Equal(t, len(kept), len(labels))
	assert.Less(t, len(kept), len(X))

	for _, row := range kept {
		for j, v := range row {
			f := v.InexactFloat64()
			assert.GreaterOrEqual(t, f, limits[j].lo)
			assert.LessOrEqual(t, f, limits[j].hi)
		}
	}
}

func TestRemoveOutliers_Misaligned(t *testing.T) {
	_, _, err := RemoveOutliers(dec([][]float64{{1}, {2}}), []int{0})
	require.ErrorIs(t, err, ErrAlignment)
}

func TestRemoveOutliers_DegenerateInputs(t *testing.T) {
	X, y, err := RemoveOutliers([][]decimal.Decimal{}, []int{})
	require.NoError(t, err)
	assert.Empty(t, X)
	assert.Empty(t, y)

	constant := dec([][]float64{{5}, {5}, {5}})
	X, y, err = RemoveOutliers(constant, []int{0, 1, 0})
	require.NoError(t, err)
	assert.Len(t, X, 3)
	assert.Len(t, y, 3)
}
