package models

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/shopspring/decimal"
)

type RandomForest struct {
	BaseModel
	NTrees          int
	MaxDepth        int
	MinSamplesSplit int
	MaxFeatures     int
	RandomState     int64
	Trees           []*DecisionTree
	FeatureIndices  [][]int
}

func NewRandomForest(nTrees, maxDepth, minSamplesSplit int, randomState int64) *RandomForest {
	if nTrees <= 0 {
		nTrees = 100
	}

	return &RandomForest{
		NTrees:          nTrees,
		MaxDepth:        maxDepth,
		MinSamplesSplit: minSamplesSplit,
		RandomState:     randomState,
		BaseModel: BaseModel{
			Name: "RandomForest",
			Params: map[string]any{
				"n_estimators":      nTrees,
				"max_depth":         maxDepth,
				"min_samples_split": minSamplesSplit,
				"random_state":      randomState,
			},
		},
	}
}

func (rf *RandomForest) Fit(X [][]decimal.Decimal, y []int) error {
	if len(X) == 0 {
		return ErrEmptyTrainingSet
	}

	rf.Classes = ExtractClasses(y)
	nFeatures := len(X[0])

	rf.MaxFeatures = int(math.Sqrt(float64(nFeatures)))
	if rf.MaxFeatures < 1 {
		rf.MaxFeatures = 1
	}

	rf.Trees = make([]*DecisionTree, rf.NTrees)
	rf.FeatureIndices = make([][]int, rf.NTrees)

	for i := 0; i < rf.NTrees; i++ {
		tree, features, err := rf.trainSingleTree(X, y, rf.RandomState+int64(i))
		if err != nil {
			return fmt.Errorf("tree %d training failed: %w", i, err)
		}
		rf.Trees[i] = tree
		rf.FeatureIndices[i] = features
	}

	return nil
}

func (rf *RandomForest) trainSingleTree(X [][]decimal.Decimal, y []int, seed int64) (*DecisionTree, []int, error) {
	r := rand.New(rand.NewSource(seed))

	n := len(X)
	XBoot := make([][]decimal.Decimal, n)
	yBoot := make([]int, n)

	for i := 0; i < n; i++ {
		idx := r.Intn(n)
		XBoot[i] = X[idx]
		yBoot[i] = y[idx]
	}

	features := rf.selectRandomFeatures(len(X[0]), r)

	XSelected := make([][]decimal.Decimal, n)
	for i := range XBoot {
		XSelected[i] = make([]decimal.Decimal, len(features))
		for j, feat := range features {
			XSelected[i][j] = XBoot[i][feat]
		}
	}

	tree := NewDecisionTree(rf.MaxDepth, rf.MinSamplesSplit)
	err := tree.Fit(XSelected, yBoot)

	return tree, features, err
}

func (rf *RandomForest) selectRandomFeatures(nFeatures int, r *rand.Rand) []int {
	features := make([]int, nFeatures)
	for i := range features {
		features[i] = i
	}

	for i := 0; i < rf.MaxFeatures && i < nFeatures; i++ {
		j := i + r.Intn(nFeatures-i)
		features[i], features[j] = features[j], features[i]
	}

	return features[:rf.MaxFeatures]
}

func (rf *RandomForest) Predict(X [][]decimal.Decimal) []int {
	predictions := make([]int, len(X))

	for i, sample := range X {
		votes := make(map[int]int)

		for j, tree := range rf.Trees {
			selectedSample := make([]decimal.Decimal, len(rf.FeatureIndices[j]))
			for k, feat := range rf.FeatureIndices[j] {
				selectedSample[k] = sample[feat]
			}

			votes[tree.predictSample(selectedSample, tree.Root)]++
		}

		predictions[i] = majority(votes, rf.Classes[0])
	}

	return predictions
}

func (rf *RandomForest) Reset() {
	rf.Trees = nil
	rf.FeatureIndices = nil
	rf.Classes = nil
}
