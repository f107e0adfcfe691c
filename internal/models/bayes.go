package models

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"
)

type NaiveBayes struct {
	BaseModel
	ClassLogPriors map[int]float64
	FeatureMeans   map[int][]float64
	FeatureVars    map[int][]float64
	VarSmoothing   float64
}

func NewNaiveBayes(varSmoothing float64) *NaiveBayes {
	if varSmoothing <= 0 {
		varSmoothing = 1e-9
	}

	return &NaiveBayes{
		VarSmoothing: varSmoothing,
		BaseModel: BaseModel{
			Name: "NaiveBayes",
			Params: map[string]any{
				"var_smoothing": varSmoothing,
			},
		},
	}
}

// Fit estimates per-class Gaussian likelihoods. The smoothing term added to
// every variance is var_smoothing times the largest feature variance.
func (nb *NaiveBayes) Fit(X [][]decimal.Decimal, y []int) error {
	if len(X) == 0 {
		return ErrEmptyTrainingSet
	}

	rows := toFloatRows(X)
	nb.Classes = ExtractClasses(y)
	nFeatures := len(rows[0])

	epsilon := 0.0
	for j := 0; j < nFeatures; j++ {
		_, variance := stat.PopMeanVariance(column(rows, j), nil)
		epsilon = math.Max(epsilon, variance)
	}
	epsilon *= nb.VarSmoothing
	if epsilon == 0 {
		epsilon = nb.VarSmoothing
	}

	nb.ClassLogPriors = make(map[int]float64)
	nb.FeatureMeans = make(map[int][]float64)
	nb.FeatureVars = make(map[int][]float64)

	for _, class := range nb.Classes {
		var classData [][]float64
		for i, label := range y {
			if label == class {
				classData = append(classData, rows[i])
			}
		}

		if len(classData) == 0 {
			return fmt.Errorf("class %d has no samples", class)
		}

		nb.ClassLogPriors[class] = math.Log(float64(len(classData)) / float64(len(y)))
		nb.FeatureMeans[class] = make([]float64, nFeatures)
		nb.FeatureVars[class] = make([]float64, nFeatures)

		for j := 0; j < nFeatures; j++ {
			mean, variance := stat.PopMeanVariance(column(classData, j), nil)
			nb.FeatureMeans[class][j] = mean
			nb.FeatureVars[class][j] = variance + epsilon
		}
	}

	return nil
}

func (nb *NaiveBayes) logGaussianPDF(x, mean, variance float64) float64 {
	diff := x - mean
	return -0.5*math.Log(2*math.Pi*variance) - (diff*diff)/(2*variance)
}

func (nb *NaiveBayes) Predict(X [][]decimal.Decimal) []int {
	predictions := make([]int, len(X))

	for i, sample := range toFloatRows(X) {
		maxLogProb := math.Inf(-1)
		bestClass := nb.Classes[0]

		for _, class := range nb.Classes {
			logProb := nb.ClassLogPriors[class]
			for j, feature := range sample {
				logProb += nb.logGaussianPDF(feature, nb.FeatureMeans[class][j], nb.FeatureVars[class][j])
			}

			if logProb > maxLogProb {
				maxLogProb = logProb
				bestClass = class
			}
		}

		predictions[i] = bestClass
	}

	return predictions
}

func (nb *NaiveBayes) Reset() {
	nb.ClassLogPriors = nil
	nb.FeatureMeans = nil
	nb.FeatureVars = nil
	nb.Classes = nil
}

func column(rows [][]float64, j int) []float64 {
	col := make([]float64, len(rows))
	for i, row := range rows {
		col[i] = row[j]
	}
	return col
}
