package models

import (
	"sort"

	"github.com/shopspring/decimal"
)

type TreeNode struct {
	IsLeaf           bool
	Class            int
	Feature          int
	Threshold        decimal.Decimal
	Left             *TreeNode
	Right            *TreeNode
	Samples          int
	Impurity         float64
	ImpurityDecrease float64
}

type DecisionTree struct {
	BaseModel
	Root                *TreeNode
	MaxDepth            int
	MinSamplesSplit     int
	MinImpurityDecrease float64
}

func NewDecisionTree(maxDepth, minSamplesSplit int) *DecisionTree {
	if maxDepth <= 0 {
		maxDepth = 10
	}

	if minSamplesSplit < 2 {
		minSamplesSplit = 2
	}

	return &DecisionTree{
		MaxDepth:            maxDepth,
		MinSamplesSplit:     minSamplesSplit,
		MinImpurityDecrease: 1e-7,
		BaseModel: BaseModel{
			Name: "DecisionTree",
			Params: map[string]any{
				"max_depth":         maxDepth,
				"min_samples_split": minSamplesSplit,
			},
		},
	}
}

func (dt *DecisionTree) Fit(X [][]decimal.Decimal, y []int) error {
	if len(X) == 0 {
		return ErrEmptyTrainingSet
	}

	dt.Classes = ExtractClasses(y)
	dt.Root = dt.buildTree(X, y, 0)
	return nil
}

func (dt *DecisionTree) Predict(X [][]decimal.Decimal) []int {
	predictions := make([]int, len(X))

	for i, sample := range X {
		predictions[i] = dt.predictSample(sample, dt.Root)
	}

	return predictions
}

func (dt *DecisionTree) Reset() {
	dt.Root = nil
	dt.Classes = nil
}

func (dt *DecisionTree) buildTree(X [][]decimal.Decimal, y []int, depth int) *TreeNode {
	node := &TreeNode{
		Samples:  len(y),
		Impurity: dt.calculateGini(y),
	}

	if depth >= dt.MaxDepth || len(y) < dt.MinSamplesSplit || dt.isPure(y) {
		node.IsLeaf = true
		node.Class = dt.mostCommonClass(y)
		return node
	}

	bestFeature, bestThreshold, bestImpurityDecrease := dt.findBestSplit(X, y)

	if bestImpurityDecrease < dt.MinImpurityDecrease {
		node.IsLeaf = true
		node.Class = dt.mostCommonClass(y)
		return node
	}

	node.Feature = bestFeature
	node.Threshold = bestThreshold
	node.ImpurityDecrease = bestImpurityDecrease

	leftIndices, rightIndices := dt.splitData(X, bestFeature, bestThreshold)

	if len(leftIndices) == 0 || len(rightIndices) == 0 {
		node.IsLeaf = true
		node.Class = dt.mostCommonClass(y)
		return node
	}

	XLeft, yLeft := selectRows(X, y, leftIndices)
	XRight, yRight := selectRows(X, y, rightIndices)

	node.Left = dt.buildTree(XLeft, yLeft, depth+1)
	node.Right = dt.buildTree(XRight, yRight, depth+1)

	return node
}

func (dt *DecisionTree) findBestSplit(X [][]decimal.Decimal, y []int) (int, decimal.Decimal, float64) {
	bestFeature := 0
	bestThreshold := decimal.Zero
	bestImpurityDecrease := 0.0

	parentImpurity := dt.calculateGini(y)
	n := float64(len(y))

	for feature := range X[0] {
		for _, threshold := range dt.getUniqueValues(X, feature) {
			leftIndices, rightIndices := dt.splitData(X, feature, threshold)

			if len(leftIndices) == 0 || len(rightIndices) == 0 {
				continue
			}

			yLeft := make([]int, len(leftIndices))
			yRight := make([]int, len(rightIndices))
			for i, idx := range leftIndices {
				yLeft[i] = y[idx]
			}
			for i, idx := range rightIndices {
				yRight[i] = y[idx]
			}

			weightedImpurity := (float64(len(leftIndices))/n)*dt.calculateGini(yLeft) +
				(float64(len(rightIndices))/n)*dt.calculateGini(yRight)

			impurityDecrease := parentImpurity - weightedImpurity

			if impurityDecrease > bestImpurityDecrease {
				bestImpurityDecrease = impurityDecrease
				bestFeature = feature
				bestThreshold = threshold
			}
		}
	}

	return bestFeature, bestThreshold, bestImpurityDecrease
}

func (dt *DecisionTree) predictSample(sample []decimal.Decimal, node *TreeNode) int {
	if node.IsLeaf {
		return node.Class
	}

	if sample[node.Feature].LessThan(node.Threshold) {
		return dt.predictSample(sample, node.Left)
	}
	return dt.predictSample(sample, node.Right)
}

func (dt *DecisionTree) calculateGini(y []int) float64 {
	if len(y) == 0 {
		return 0.0
	}

	classCounts := make(map[int]int)
	for _, class := range y {
		classCounts[class]++
	}

	impurity := 1.0
	n := float64(len(y))

	for _, count := range classCounts {
		p := float64(count) / n
		impurity -= p * p
	}

	return impurity
}

func (dt *DecisionTree) isPure(y []int) bool {
	for _, class := range y {
		if class != y[0] {
			return false
		}
	}
	return true
}

func (dt *DecisionTree) mostCommonClass(y []int) int {
	if len(y) == 0 {
		return 0
	}

	classCounts := make(map[int]int)
	for _, class := range y {
		classCounts[class]++
	}

	return majority(classCounts, y[0])
}

// getUniqueValues returns the distinct values of a feature in ascending
// order, so split selection is independent of map iteration.
func (dt *DecisionTree) getUniqueValues(X [][]decimal.Decimal, feature int) []decimal.Decimal {
	valueMap := make(map[string]decimal.Decimal)

	for _, sample := range X {
		valueMap[sample[feature].String()] = sample[feature]
	}

	values := make([]decimal.Decimal, 0, len(valueMap))
	for _, value := range valueMap {
		values = append(values, value)
	}
	sort.Slice(values, func(i, j int) bool {
		return values[i].LessThan(values[j])
	})

	return values
}

func (dt *DecisionTree) splitData(X [][]decimal.Decimal, feature int, threshold decimal.Decimal) ([]int, []int) {
	var leftIndices, rightIndices []int

	for i, sample := range X {
		if sample[feature].LessThan(threshold) {
			leftIndices = append(leftIndices, i)
		} else {
			rightIndices = append(rightIndices, i)
		}
	}

	return leftIndices, rightIndices
}

func selectRows(X [][]decimal.Decimal, y []int, indices []int) ([][]decimal.Decimal, []int) {
	selectedX := make([][]decimal.Decimal, len(indices))
	selectedY := make([]int, len(indices))

	for i, idx := range indices {
		selectedX[i] = X[idx]
		selectedY[i] = y[idx]
	}

	return selectedX, selectedY
}
