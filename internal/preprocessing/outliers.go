package preprocessing

import (
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"
)

// OutlierStdDevs is how many sample standard deviations from the column mean
// a value may lie before its row is dropped.
const OutlierStdDevs = 4.0

// OutlierRows returns the ascending, de-duplicated indices of rows that are
// outliers in at least one column. Column statistics use the sample standard
// deviation over all given rows.
func OutlierRows(X [][]decimal.Decimal) []int {
	if len(X) < 2 {
		return nil
	}

	flagged := make(map[int]bool)
	for j := range X[0] {
		col := toFloatColumn(X, j)
		mean, std := stat.MeanStdDev(col, nil)
		if std == 0 || math.IsNaN(std) {
			continue
		}

		lower := mean - OutlierStdDevs*std
		upper := mean + OutlierStdDevs*std
		for i, v := range col {
			if v < lower || v > upper {
				flagged[i] = true
			}
		}
	}

	indices := make([]int, 0, len(flagged))
	for i := range flagged {
		indices = append(indices, i)
	}
	sort.Ints(indices)
	return indices
}

// RemoveOutliers drops every row flagged by OutlierRows from both X and y.
func RemoveOutliers(X [][]decimal.Decimal, y []int) ([][]decimal.Decimal, []int, error) {
	if len(X) != len(y) {
		return nil, nil, fmt.Errorf("%w: %d feature rows, %d labels", ErrAlignment, len(X), len(y))
	}

	drop := make(map[int]bool)
	for _, i := range OutlierRows(X) {
		drop[i] = true
	}

	newX := make([][]decimal.Decimal, 0, len(X)-len(drop))
	newY := make([]int, 0, len(y)-len(drop))
	for i := range X {
		if drop[i] {
			continue
		}
		newX = append(newX, X[i])
		newY = append(newY, y[i])
	}

	if len(newX) != len(newY) {
		return nil, nil, fmt.Errorf("%w after outlier removal: %d feature rows, %d labels", ErrAlignment, len(newX), len(newY))
	}

	return newX, newY, nil
}
