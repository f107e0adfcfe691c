package evaluation

import (
	"fmt"
	"math/rand"
)

type Fold struct {
	Train []int
	Test  []int
}

// StratifiedKFold assigns every sample to exactly one test fold so that each
// fold keeps the class proportions of y. Without shuffling the assignment is
// fully determined by label order; with shuffling it is determined by the seed.
type StratifiedKFold struct {
	nFolds     int
	shuffle    bool
	randomSeed int64
}

func NewStratifiedKFold(nFolds int, shuffle bool, randomSeed int64) *StratifiedKFold {
	return &StratifiedKFold{
		nFolds:     nFolds,
		shuffle:    shuffle,
		randomSeed: randomSeed,
	}
}

func (skf *StratifiedKFold) Split(y []int) ([]Fold, error) {
	n := len(y)
	if skf.nFolds < 2 || skf.nFolds > n {
		return nil, fmt.Errorf("%w: %d (must be between 2 and %d)", ErrInvalidFolds, skf.nFolds, n)
	}

	// Classes are numbered in order of first appearance.
	encoded := make([]int, n)
	classIndex := make(map[int]int)
	var counts []int
	for i, label := range y {
		k, ok := classIndex[label]
		if !ok {
			k = len(counts)
			classIndex[label] = k
			counts = append(counts, 0)
		}
		encoded[i] = k
		counts[k]++
	}

	largest := 0
	for _, c := range counts {
		largest = max(largest, c)
	}
	if skf.nFolds > largest {
		return nil, fmt.Errorf("%w: %d folds but no class has more than %d members", ErrInvalidFolds, skf.nFolds, largest)
	}

	// Deal the label-sorted samples round-robin over the folds to decide how
	// many members of each class every fold receives.
	allocation := make([][]int, skf.nFolds)
	for f := range allocation {
		allocation[f] = make([]int, len(counts))
	}
	pos := 0
	for k, c := range counts {
		for m := 0; m < c; m++ {
			allocation[pos%skf.nFolds][k]++
			pos++
		}
	}

	rng := rand.New(rand.NewSource(skf.randomSeed))
	testFold := make([]int, n)
	for k := range counts {
		foldsForClass := make([]int, 0, counts[k])
		for f := 0; f < skf.nFolds; f++ {
			for m := 0; m < allocation[f][k]; m++ {
				foldsForClass = append(foldsForClass, f)
			}
		}
		if skf.shuffle {
			rng.Shuffle(len(foldsForClass), func(i, j int) {
				foldsForClass[i], foldsForClass[j] = foldsForClass[j], foldsForClass[i]
			})
		}

		next := 0
		for i := range encoded {
			if encoded[i] == k {
				testFold[i] = foldsForClass[next]
				next++
			}
		}
	}

	folds := make([]Fold, skf.nFolds)
	for i, f := range testFold {
		for g := range folds {
			if g == f {
				folds[g].Test = append(folds[g].Test, i)
			} else {
				folds[g].Train = append(folds[g].Train, i)
			}
		}
	}

	return folds, nil
}
