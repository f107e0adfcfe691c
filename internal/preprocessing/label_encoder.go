package preprocessing

import (
	"fmt"
	"sort"
)

// LabelEncoder maps string labels to integers 0..n-1 in sorted label order.
type LabelEncoder struct {
	ClassToInt map[string]int
	IntToClass map[int]string
	IsFitted   bool
}

func NewLabelEncoder() *LabelEncoder {
	return &LabelEncoder{
		ClassToInt: make(map[string]int),
		IntToClass: make(map[int]string),
	}
}

func (le *LabelEncoder) Fit(labels []string) {
	le.ClassToInt = make(map[string]int)
	le.IntToClass = make(map[int]string)

	unique := make(map[string]bool)
	for _, label := range labels {
		unique[label] = true
	}

	sorted := make([]string, 0, len(unique))
	for label := range unique {
		sorted = append(sorted, label)
	}
	sort.Strings(sorted)

	for idx, label := range sorted {
		le.ClassToInt[label] = idx
		le.IntToClass[idx] = label
	}

	le.IsFitted = true
}

func (le *LabelEncoder) Transform(labels []string) ([]int, error) {
	if !le.IsFitted {
		return nil, fmt.Errorf("LabelEncoder must be fitted before transform")
	}

	result := make([]int, len(labels))
	for i, label := range labels {
		val, ok := le.ClassToInt[label]
		if !ok {
			return nil, fmt.Errorf("unknown label: %s", label)
		}
		result[i] = val
	}

	return result, nil
}

func (le *LabelEncoder) FitTransform(labels []string) ([]int, error) {
	le.Fit(labels)
	return le.Transform(labels)
}

func (le *LabelEncoder) InverseTransform(encoded []int) ([]string, error) {
	if !le.IsFitted {
		return nil, fmt.Errorf("LabelEncoder must be fitted before inverse transform")
	}

	result := make([]string, len(encoded))
	for i, val := range encoded {
		label, ok := le.IntToClass[val]
		if !ok {
			return nil, fmt.Errorf("unknown encoding: %d", val)
		}
		result[i] = label
	}

	return result, nil
}

// Classes returns the labels in encoded order.
func (le *LabelEncoder) Classes() []string {
	classes := make([]string, len(le.IntToClass))
	for idx, label := range le.IntToClass {
		classes[idx] = label
	}
	return classes
}
