package preprocessing

import (
	"math/rand"

	"github.com/shopspring/decimal"
)

func dec(rows [][]float64) [][]decimal.Decimal {
	X := make([][]decimal.Decimal, len(rows))
	for i, row := range rows {
		X[i] = make([]decimal.Decimal, len(row))
		for j, v := range row {
			X[i][j] = decimal.NewFromFloat(v)
		}
	}
	return X
}

// imbalanced returns n rows of two features where every ratio-th row is
// labelled 1 and shifted away from the majority cloud.
func imbalanced(n, ratio int, seed int64) ([][]decimal.Decimal, []int) {
	rng := rand.New(rand.NewSource(seed))
	rows := make([][]float64, n)
	y := make([]int, n)
	for i := range rows {
		shift := 0.0
		if i%ratio == 0 {
			y[i] = 1
			shift = 3
		}
		rows[i] = []float64{rng.NormFloat64() + shift, rng.NormFloat64() - shift}
	}
	return dec(rows), y
}

func countLabels(y []int) map[int]int {
	counts := make(map[int]int)
	for _, label := range y {
		counts[label]++
	}
	return counts
}
