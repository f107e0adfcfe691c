package preprocessing

import (
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

type Scaler struct {
	ScaleType    string
	IsFitted     bool
	FeatureMin   []decimal.Decimal
	FeatureMax   []decimal.Decimal
	FeatureMean  []decimal.Decimal
	FeatureStd   []decimal.Decimal
	FeatureScale []decimal.Decimal
}

func ScaleTypes() []string {
	return []string{"standard", "minmax", "robust", "none"}
}

func NewScaler(scaleType string) (*Scaler, error) {
	switch scaleType {
	case "minmax", "normalized":
		scaleType = "minmax"
	case "standard", "standardized":
		scaleType = "standard"
	case "robust":
	case "raw", "none", "":
		scaleType = "none"
	default:
		return nil, fmt.Errorf("unknown scale type: %s", scaleType)
	}

	return &Scaler{ScaleType: scaleType}, nil
}

func (s *Scaler) Name() string {
	return s.ScaleType
}

func (s *Scaler) Clone() Transformer {
	return &Scaler{ScaleType: s.ScaleType}
}

func (s *Scaler) Fit(X [][]decimal.Decimal) error {
	if len(X) == 0 {
		return ErrEmptyDataset
	}

	nFeatures := len(X[0])
	s.FeatureMin = make([]decimal.Decimal, nFeatures)
	s.FeatureMax = make([]decimal.Decimal, nFeatures)
	s.FeatureMean = make([]decimal.Decimal, nFeatures)
	s.FeatureStd = make([]decimal.Decimal, nFeatures)
	s.FeatureScale = make([]decimal.Decimal, nFeatures)

	switch s.ScaleType {
	case "minmax":
		s.fitMinMax(X)
	case "standard":
		s.fitStandard(X)
	case "robust":
		s.fitRobust(X)
	case "none":
	default:
		return fmt.Errorf("unknown scale type: %s", s.ScaleType)
	}

	s.IsFitted = true
	return nil
}

func (s *Scaler) Transform(X [][]decimal.Decimal) ([][]decimal.Decimal, error) {
	if !s.IsFitted {
		return nil, ErrNotFitted
	}

	if s.ScaleType == "none" {
		return copyRows(X), nil
	}

	result := make([][]decimal.Decimal, len(X))
	for i := range X {
		if len(X[i]) != len(s.FeatureMean) {
			return nil, fmt.Errorf("row %d has %d features, scaler was fitted on %d", i, len(X[i]), len(s.FeatureMean))
		}
		result[i] = make([]decimal.Decimal, len(X[i]))
		for j := range X[i] {
			switch s.ScaleType {
			case "minmax":
				result[i][j] = s.transformMinMax(X[i][j], j)
			case "standard", "robust":
				result[i][j] = X[i][j].Sub(s.FeatureMean[j]).Div(s.FeatureScale[j])
			}
		}
	}

	return result, nil
}

func (s *Scaler) FitTransform(X [][]decimal.Decimal) ([][]decimal.Decimal, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

func (s *Scaler) fitMinMax(X [][]decimal.Decimal) {
	for j := range X[0] {
		s.FeatureMin[j] = X[0][j]
		s.FeatureMax[j] = X[0][j]

		for i := 1; i < len(X); i++ {
			if X[i][j].LessThan(s.FeatureMin[j]) {
				s.FeatureMin[j] = X[i][j]
			}
			if X[i][j].GreaterThan(s.FeatureMax[j]) {
				s.FeatureMax[j] = X[i][j]
			}
		}
	}
}

func (s *Scaler) fitStandard(X [][]decimal.Decimal) {
	nSamples := decimal.NewFromInt(int64(len(X)))

	for j := range X[0] {
		sum := decimal.Zero
		for i := range X {
			sum = sum.Add(X[i][j])
		}
		s.FeatureMean[j] = sum.Div(nSamples)

		variance := decimal.Zero
		for i := range X {
			diff := X[i][j].Sub(s.FeatureMean[j])
			variance = variance.Add(diff.Mul(diff))
		}
		variance = variance.Div(nSamples)

		s.FeatureStd[j] = decimal.NewFromFloat(math.Sqrt(variance.InexactFloat64()))
		s.FeatureScale[j] = s.FeatureStd[j]
		if s.FeatureScale[j].IsZero() {
			s.FeatureScale[j] = decimal.NewFromInt(1)
		}
	}
}

// fitRobust centers on the median and scales by the interquartile range.
func (s *Scaler) fitRobust(X [][]decimal.Decimal) {
	for j := range X[0] {
		col := toFloatColumn(X, j)
		sort.Float64s(col)

		s.FeatureMean[j] = decimal.NewFromFloat(percentile(col, 50))
		s.FeatureScale[j] = decimal.NewFromFloat(percentile(col, 75) - percentile(col, 25))
		if s.FeatureScale[j].IsZero() {
			s.FeatureScale[j] = decimal.NewFromInt(1)
		}
	}
}

func (s *Scaler) transformMinMax(value decimal.Decimal, featureIndex int) decimal.Decimal {
	rng := s.FeatureMax[featureIndex].Sub(s.FeatureMin[featureIndex])
	if rng.IsZero() {
		return decimal.Zero
	}
	return value.Sub(s.FeatureMin[featureIndex]).Div(rng)
}

// percentile uses linear interpolation between closest ranks on sorted data.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	frac := rank - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}
