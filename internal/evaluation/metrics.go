package evaluation

import (
	"fmt"
	"math"
	"sort"
)

type ClassificationMetrics struct {
	Accuracy          float64              `json:"accuracy"`
	BalancedAccuracy  float64              `json:"balanced_accuracy"`
	MacroPrecision    float64              `json:"macro_precision"`
	MacroRecall       float64              `json:"macro_recall"`
	MacroF1           float64              `json:"macro_f1"`
	WeightedPrecision float64              `json:"weighted_precision"`
	WeightedRecall    float64              `json:"weighted_recall"`
	WeightedF1        float64              `json:"weighted_f1"`
	PerClassMetrics   map[int]ClassMetrics `json:"per_class_metrics"`
	ConfusionMatrix   [][]int              `json:"confusion_matrix"`
	Classes           []int                `json:"classes"`
	NumSamples        int                  `json:"num_samples"`
}

type ClassMetrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1Score   float64 `json:"f1_score"`
	Support   int     `json:"support"`
}

// ClassificationReport computes per-class and averaged precision, recall and
// F1 over the union of classes, observed labels and predictions. Undefined
// ratios (zero denominators) are reported as 0.
func ClassificationReport(yTrue, yPred []int, classes []int) (*ClassificationMetrics, error) {
	if len(yTrue) != len(yPred) {
		return nil, fmt.Errorf("%w: %d true labels, %d predictions", ErrAlignment, len(yTrue), len(yPred))
	}

	classes = unionClasses(classes, yTrue, yPred)
	numClasses := len(classes)
	confusionMatrix := buildConfusionMatrix(yTrue, yPred, classes)

	classSupport := make(map[int]int)
	for _, class := range yTrue {
		classSupport[class]++
	}

	perClassMetrics := make(map[int]ClassMetrics)
	var macroPrec, macroRec, macroF1 float64
	var weightedPrec, weightedRec, weightedF1 float64

	for i, class := range classes {
		tp := confusionMatrix[i][i]
		fp := 0
		fn := 0
		for j := range classes {
			if j != i {
				fp += confusionMatrix[j][i]
				fn += confusionMatrix[i][j]
			}
		}

		precision := safeDivide(float64(tp), float64(tp+fp))
		recall := safeDivide(float64(tp), float64(tp+fn))
		f1 := safeDivide(2*precision*recall, precision+recall)

		support := classSupport[class]
		perClassMetrics[class] = ClassMetrics{
			Precision: precision,
			Recall:    recall,
			F1Score:   f1,
			Support:   support,
		}

		macroPrec += precision
		macroRec += recall
		macroF1 += f1

		weightedPrec += precision * float64(support)
		weightedRec += recall * float64(support)
		weightedF1 += f1 * float64(support)
	}

	correct := 0
	for i, pred := range yPred {
		if pred == yTrue[i] {
			correct++
		}
	}

	n := float64(len(yTrue))
	return &ClassificationMetrics{
		Accuracy:          safeDivide(float64(correct), n),
		BalancedAccuracy:  safeDivide(macroRec, float64(numClasses)),
		MacroPrecision:    safeDivide(macroPrec, float64(numClasses)),
		MacroRecall:       safeDivide(macroRec, float64(numClasses)),
		MacroF1:           safeDivide(macroF1, float64(numClasses)),
		WeightedPrecision: safeDivide(weightedPrec, n),
		WeightedRecall:    safeDivide(weightedRec, n),
		WeightedF1:        safeDivide(weightedF1, n),
		PerClassMetrics:   perClassMetrics,
		ConfusionMatrix:   confusionMatrix,
		Classes:           classes,
		NumSamples:        len(yTrue),
	}, nil
}

// PositiveScore extracts recall, precision and F1 of one class.
func (m *ClassificationMetrics) PositiveScore(positive int) Score {
	cm := m.PerClassMetrics[positive]
	return Score{Recall: cm.Recall, Precision: cm.Precision, F1: cm.F1Score}
}

func (m *ClassificationMetrics) FormatMetrics() string {
	result := fmt.Sprintf("Accuracy: %.4f\n", m.Accuracy)
	result += fmt.Sprintf("Balanced Accuracy: %.4f\n", m.BalancedAccuracy)
	for _, class := range m.Classes {
		cm := m.PerClassMetrics[class]
		result += fmt.Sprintf("Class %d - Precision: %.4f, Recall: %.4f, F1: %.4f, Support: %d\n",
			class, cm.Precision, cm.Recall, cm.F1Score, cm.Support)
	}
	result += fmt.Sprintf("Macro Avg - Precision: %.4f, Recall: %.4f, F1: %.4f\n",
		m.MacroPrecision, m.MacroRecall, m.MacroF1)
	result += fmt.Sprintf("Weighted Avg - Precision: %.4f, Recall: %.4f, F1: %.4f\n",
		m.WeightedPrecision, m.WeightedRecall, m.WeightedF1)
	return result
}

func unionClasses(classes []int, labelSets ...[]int) []int {
	seen := make(map[int]bool)
	for _, class := range classes {
		seen[class] = true
	}
	for _, labels := range labelSets {
		for _, label := range labels {
			seen[label] = true
		}
	}

	result := make([]int, 0, len(seen))
	for class := range seen {
		result = append(result, class)
	}
	sort.Ints(result)
	return result
}

func buildConfusionMatrix(yTrue, yPred []int, classes []int) [][]int {
	numClasses := len(classes)
	matrix := make([][]int, numClasses)
	for i := range matrix {
		matrix[i] = make([]int, numClasses)
	}

	classToIdx := make(map[int]int)
	for i, class := range classes {
		classToIdx[class] = i
	}

	for i := range yTrue {
		trueIdx, trueOk := classToIdx[yTrue[i]]
		predIdx, predOk := classToIdx[yPred[i]]
		if trueOk && predOk {
			matrix[trueIdx][predIdx]++
		}
	}

	return matrix
}

func safeDivide(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0.0
	}
	result := numerator / denominator
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0.0
	}
	return result
}
