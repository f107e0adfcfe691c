package data

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

type DataValidator struct{}

func NewDataValidator() *DataValidator {
	return &DataValidator{}
}

func (dv *DataValidator) ValidateDataset(X [][]decimal.Decimal, y []int) error {
	if len(X) == 0 {
		return fmt.Errorf("dataset is empty")
	}

	if len(X) != len(y) {
		return fmt.Errorf("feature matrix and labels have different lengths: %d vs %d", len(X), len(y))
	}

	nFeatures := len(X[0])
	if nFeatures == 0 {
		return fmt.Errorf("features cannot be empty")
	}

	for i, sample := range X {
		if len(sample) != nFeatures {
			return fmt.Errorf("inconsistent feature count at sample %d: expected %d, got %d", i, nFeatures, len(sample))
		}
	}

	return nil
}

func (dv *DataValidator) ValidateLabels(y []int) error {
	if len(y) == 0 {
		return fmt.Errorf("labels are empty")
	}

	classCount := make(map[int]int)
	for _, label := range y {
		classCount[label]++
	}

	if len(classCount) < 2 {
		return fmt.Errorf("dataset must have at least 2 classes, found %d", len(classCount))
	}

	return nil
}

type ClassCount struct {
	Class int
	Count int
}

type DatasetStats struct {
	Samples           int
	Features          int
	ClassDistribution []ClassCount
	// ImbalanceRatio is the majority count divided by the minority count.
	ImbalanceRatio float64
}

func (dv *DataValidator) GetDatasetStats(X [][]decimal.Decimal, y []int) DatasetStats {
	stats := DatasetStats{Samples: len(X)}
	if len(X) == 0 {
		return stats
	}
	stats.Features = len(X[0])

	classCount := make(map[int]int)
	for _, label := range y {
		classCount[label]++
	}

	for class, count := range classCount {
		stats.ClassDistribution = append(stats.ClassDistribution, ClassCount{Class: class, Count: count})
	}
	sort.Slice(stats.ClassDistribution, func(i, j int) bool {
		return stats.ClassDistribution[i].Class < stats.ClassDistribution[j].Class
	})

	minCount, maxCount := len(y), 0
	for _, cc := range stats.ClassDistribution {
		minCount = min(minCount, cc.Count)
		maxCount = max(maxCount, cc.Count)
	}
	if minCount > 0 {
		stats.ImbalanceRatio = float64(maxCount) / float64(minCount)
	}

	return stats
}
