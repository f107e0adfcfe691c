package models

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

type KNN struct {
	BaseModel
	K      int
	Metric string
	XTrain [][]float64
	yTrain []int
}

func NewKNN(k int, metric string) *KNN {
	if k <= 0 {
		k = 5
	}

	if metric != "euclidean" && metric != "manhattan" {
		metric = "euclidean"
	}

	return &KNN{
		K:      k,
		Metric: metric,
		BaseModel: BaseModel{
			Name: "KNN",
			Params: map[string]any{
				"n_neighbors": k,
				"metric":      metric,
			},
		},
	}
}

func (knn *KNN) Fit(X [][]decimal.Decimal, y []int) error {
	if len(X) == 0 {
		return ErrEmptyTrainingSet
	}

	knn.XTrain = toFloatRows(X)
	knn.yTrain = make([]int, len(y))
	copy(knn.yTrain, y)

	knn.Classes = ExtractClasses(y)
	return nil
}

func (knn *KNN) Predict(X [][]decimal.Decimal) []int {
	predictions := make([]int, len(X))

	for i, sample := range toFloatRows(X) {
		neighbors := knn.findNeighbors(sample)
		predictions[i] = knn.majorityVote(neighbors)
	}

	return predictions
}

func (knn *KNN) findNeighbors(sample []float64) []int {
	type neighbor struct {
		index    int
		distance float64
	}

	neighbors := make([]neighbor, len(knn.XTrain))

	for i, trainSample := range knn.XTrain {
		neighbors[i] = neighbor{index: i, distance: knn.calculateDistance(sample, trainSample)}
	}

	sort.SliceStable(neighbors, func(i, j int) bool {
		return neighbors[i].distance < neighbors[j].distance
	})

	k := min(knn.K, len(neighbors))
	kNeighbors := make([]int, k)
	for i := 0; i < k; i++ {
		kNeighbors[i] = neighbors[i].index
	}

	return kNeighbors
}

func (knn *KNN) calculateDistance(a, b []float64) float64 {
	sum := 0.0
	switch knn.Metric {
	case "manhattan":
		for i := range a {
			sum += math.Abs(a[i] - b[i])
		}
		return sum
	default:
		for i := range a {
			diff := a[i] - b[i]
			sum += diff * diff
		}
		return math.Sqrt(sum)
	}
}

func (knn *KNN) majorityVote(neighbors []int) int {
	votes := make(map[int]int)

	for _, neighborIdx := range neighbors {
		votes[knn.yTrain[neighborIdx]]++
	}

	return majority(votes, knn.Classes[0])
}

func (knn *KNN) Reset() {
	knn.XTrain = nil
	knn.yTrain = nil
	knn.Classes = nil
}
