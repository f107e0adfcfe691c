package evaluation

import (
	"math/rand"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// synthetic returns n rows of three features where every ratio-th row is
// labelled 1 and drawn from a shifted cloud.
func synthetic(n, ratio int, seed int64) ([][]decimal.Decimal, []int) {
	rng := rand.New(rand.NewSource(seed))
	X := make([][]decimal.Decimal, n)
	y := make([]int, n)
	for i := range X {
		shift := 0.0
		if i%ratio == 0 {
			y[i] = 1
			shift = 2.5
		}
		X[i] = []decimal.Decimal{
			decimal.NewFromFloat(rng.NormFloat64() + shift),
			decimal.NewFromFloat(rng.NormFloat64() - shift),
			decimal.NewFromFloat(rng.NormFloat64()),
		}
	}
	return X, y
}

// mockModel predicts the positive class for every row.
type mockModel struct {
	mock.Mock
}

func newMockModel() *mockModel {
	m := &mockModel{}
	m.On("Fit", mock.Anything, mock.Anything).Return(nil)
	m.On("Reset").Return()
	return m
}

func (m *mockModel) Fit(X [][]decimal.Decimal, y []int) error {
	args := m.Called(X, y)
	return args.Error(0)
}

func (m *mockModel) Predict(X [][]decimal.Decimal) []int {
	predictions := make([]int, len(X))
	for i := range predictions {
		predictions[i] = 1
	}
	return predictions
}

func (m *mockModel) GetType() string           { return "mock" }
func (m *mockModel) GetName() string           { return "mock" }
func (m *mockModel) GetParams() map[string]any { return nil }
func (m *mockModel) GetClasses() []int         { return []int{0, 1} }
func (m *mockModel) Reset()                    { m.Called() }
