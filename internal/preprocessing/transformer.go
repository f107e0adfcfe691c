package preprocessing

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrAlignment    = errors.New("features and labels are misaligned")
	ErrNotFitted    = errors.New("transformer must be fitted before transform")
	ErrEmptyDataset = errors.New("empty dataset")
)

// Transformer is a feature-space transformation fitted on training rows only.
// Clone returns an unfitted copy with the same configuration.
type Transformer interface {
	Name() string
	FitTransform(X [][]decimal.Decimal) ([][]decimal.Decimal, error)
	Transform(X [][]decimal.Decimal) ([][]decimal.Decimal, error)
	Clone() Transformer
}

// Resampler rebalances a labeled training set.
type Resampler interface {
	Name() string
	FitResample(X [][]decimal.Decimal, y []int) ([][]decimal.Decimal, []int, error)
	Clone() Resampler
}

func copyRows(X [][]decimal.Decimal) [][]decimal.Decimal {
	result := make([][]decimal.Decimal, len(X))
	for i := range X {
		result[i] = make([]decimal.Decimal, len(X[i]))
		copy(result[i], X[i])
	}
	return result
}

func toFloatColumn(X [][]decimal.Decimal, j int) []float64 {
	col := make([]float64, len(X))
	for i := range X {
		col[i] = X[i][j].InexactFloat64()
	}
	return col
}
