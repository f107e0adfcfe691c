package models

import (
	"errors"
	"sort"

	"github.com/shopspring/decimal"
)

type Model interface {
	Fit(X [][]decimal.Decimal, y []int) error
	Predict(X [][]decimal.Decimal) []int
	GetType() string
	GetName() string
	GetParams() map[string]any
	GetClasses() []int
	Reset()
}

type BaseModel struct {
	Name    string
	Params  map[string]any
	Classes []int
}

func (bm *BaseModel) GetType() string {
	return bm.Name
}

func (bm *BaseModel) GetName() string {
	return bm.Name
}

func (bm *BaseModel) GetParams() map[string]any {
	return bm.Params
}

func (bm *BaseModel) GetClasses() []int {
	return bm.Classes
}

// ExtractClasses returns the distinct labels of y in ascending order.
func ExtractClasses(y []int) []int {
	classMap := make(map[int]bool)
	for _, label := range y {
		classMap[label] = true
	}

	classes := make([]int, 0, len(classMap))
	for class := range classMap {
		classes = append(classes, class)
	}
	sort.Ints(classes)

	return classes
}

// majority returns the label with the highest count, preferring the smaller
// label on ties so predictions do not depend on map iteration order.
func majority(counts map[int]int, fallback int) int {
	best := fallback
	bestCount := 0
	for class, count := range counts {
		if count > bestCount || (count == bestCount && count > 0 && class < best) {
			best = class
			bestCount = count
		}
	}
	return best
}

var ErrEmptyTrainingSet = errors.New("empty training set")

func toFloatRows(X [][]decimal.Decimal) [][]float64 {
	rows := make([][]float64, len(X))
	for i, row := range X {
		rows[i] = make([]float64, len(row))
		for j, v := range row {
			rows[i][j] = v.InexactFloat64()
		}
	}
	return rows
}
