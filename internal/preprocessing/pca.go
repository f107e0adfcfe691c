package preprocessing

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var ErrEigenFailed = errors.New("pca: eigendecomposition failed")

// PCA projects rows onto the leading principal components of the fitted data.
type PCA struct {
	NComponents       int
	IsFitted          bool
	Mean              []float64
	Components        *mat.Dense
	ExplainedVariance []float64
}

func NewPCA(nComponents int) (*PCA, error) {
	if nComponents <= 0 {
		return nil, fmt.Errorf("pca: n_components must be positive, got %d", nComponents)
	}
	return &PCA{NComponents: nComponents}, nil
}

func (p *PCA) Name() string {
	return fmt.Sprintf("pca(%d)", p.NComponents)
}

func (p *PCA) Clone() Transformer {
	return &PCA{NComponents: p.NComponents}
}

func (p *PCA) Fit(X [][]decimal.Decimal) error {
	if len(X) < 2 {
		return fmt.Errorf("pca: need at least 2 rows, got %d", len(X))
	}

	nFeatures := len(X[0])
	if p.NComponents > nFeatures {
		return fmt.Errorf("pca: n_components %d exceeds feature count %d", p.NComponents, nFeatures)
	}

	data := mat.NewDense(len(X), nFeatures, flatten(X))
	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, data, nil)

	var eig mat.EigenSym
	if ok := eig.Factorize(&cov, true); !ok {
		return ErrEigenFailed
	}
	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	// EigenSym returns ascending eigenvalues.
	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return values[order[a]] > values[order[b]]
	})

	p.Components = mat.NewDense(nFeatures, p.NComponents, nil)
	p.ExplainedVariance = make([]float64, p.NComponents)
	for c := 0; c < p.NComponents; c++ {
		src := order[c]
		p.ExplainedVariance[c] = values[src]

		sign := 1.0
		largest := 0.0
		for r := 0; r < nFeatures; r++ {
			if v := vectors.At(r, src); math.Abs(v) > math.Abs(largest) {
				largest = v
			}
		}
		if largest < 0 {
			sign = -1.0
		}
		for r := 0; r < nFeatures; r++ {
			p.Components.Set(r, c, sign*vectors.At(r, src))
		}
	}

	p.Mean = make([]float64, nFeatures)
	for j := 0; j < nFeatures; j++ {
		p.Mean[j] = stat.Mean(mat.Col(nil, j, data), nil)
	}

	p.IsFitted = true
	return nil
}

func (p *PCA) Transform(X [][]decimal.Decimal) ([][]decimal.Decimal, error) {
	if !p.IsFitted {
		return nil, ErrNotFitted
	}
	if len(X) == 0 {
		return [][]decimal.Decimal{}, nil
	}
	if len(X[0]) != len(p.Mean) {
		return nil, fmt.Errorf("pca: rows have %d features, fitted on %d", len(X[0]), len(p.Mean))
	}

	centered := mat.NewDense(len(X), len(p.Mean), flatten(X))
	for i := 0; i < len(X); i++ {
		for j, m := range p.Mean {
			centered.Set(i, j, centered.At(i, j)-m)
		}
	}

	var projected mat.Dense
	projected.Mul(centered, p.Components)

	result := make([][]decimal.Decimal, len(X))
	for i := range result {
		result[i] = make([]decimal.Decimal, p.NComponents)
		for c := 0; c < p.NComponents; c++ {
			result[i][c] = decimal.NewFromFloat(projected.At(i, c))
		}
	}
	return result, nil
}

func (p *PCA) FitTransform(X [][]decimal.Decimal) ([][]decimal.Decimal, error) {
	if err := p.Fit(X); err != nil {
		return nil, err
	}
	return p.Transform(X)
}

func flatten(X [][]decimal.Decimal) []float64 {
	data := make([]float64, 0, len(X)*len(X[0]))
	for _, row := range X {
		for _, v := range row {
			data = append(data, v.InexactFloat64())
		}
	}
	return data
}
