package preprocessing

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/shopspring/decimal"
)

type ResamplerOptions struct {
	Seed       int64
	KNeighbors int
}

func ResampleMethods() []string {
	return []string{"none", "random_over", "random_under", "smote", "nearmiss"}
}

func NewResampler(method string, opts ResamplerOptions) (Resampler, error) {
	if opts.KNeighbors <= 0 {
		opts.KNeighbors = 5
	}

	switch method {
	case "none", "":
		return &passthrough{}, nil
	case "random_over", "oversample":
		return &RandomOverSampler{Seed: opts.Seed}, nil
	case "random_under", "undersample":
		return &RandomUnderSampler{Seed: opts.Seed}, nil
	case "smote":
		return &SMOTE{Seed: opts.Seed, KNeighbors: opts.KNeighbors}, nil
	case "nearmiss":
		return &NearMiss{NNeighbors: min(opts.KNeighbors, 3)}, nil
	default:
		return nil, fmt.Errorf("unknown resampling method: %s", method)
	}
}

type passthrough struct{}

func (p *passthrough) Name() string     { return "none" }
func (p *passthrough) Clone() Resampler { return &passthrough{} }

func (p *passthrough) FitResample(X [][]decimal.Decimal, y []int) ([][]decimal.Decimal, []int, error) {
	if err := checkAligned(X, y); err != nil {
		return nil, nil, err
	}
	labels := make([]int, len(y))
	copy(labels, y)
	return copyRows(X), labels, nil
}

// RandomOverSampler duplicates randomly chosen rows of every class until each
// class matches the majority class count. Original rows come first.
type RandomOverSampler struct {
	Seed int64
}

func (r *RandomOverSampler) Name() string     { return "random_over" }
func (r *RandomOverSampler) Clone() Resampler { return &RandomOverSampler{Seed: r.Seed} }

func (r *RandomOverSampler) FitResample(X [][]decimal.Decimal, y []int) ([][]decimal.Decimal, []int, error) {
	if err := checkAligned(X, y); err != nil {
		return nil, nil, err
	}

	rng := rand.New(rand.NewSource(r.Seed))
	classes, byClass := groupByClass(y)
	target := largestClass(byClass)

	newX := copyRows(X)
	newY := append([]int(nil), y...)
	for _, class := range classes {
		members := byClass[class]
		for n := len(members); n < target; n++ {
			idx := members[rng.Intn(len(members))]
			newX = append(newX, append([]decimal.Decimal(nil), X[idx]...))
			newY = append(newY, class)
		}
	}

	return newX, newY, nil
}

// RandomUnderSampler keeps a random subset of every class sized to the
// minority class count. Kept rows retain their original order.
type RandomUnderSampler struct {
	Seed int64
}

func (r *RandomUnderSampler) Name() string     { return "random_under" }
func (r *RandomUnderSampler) Clone() Resampler { return &RandomUnderSampler{Seed: r.Seed} }

func (r *RandomUnderSampler) FitResample(X [][]decimal.Decimal, y []int) ([][]decimal.Decimal, []int, error) {
	if err := checkAligned(X, y); err != nil {
		return nil, nil, err
	}

	rng := rand.New(rand.NewSource(r.Seed))
	classes, byClass := groupByClass(y)
	target := smallestClass(byClass)

	var keep []int
	for _, class := range classes {
		members := append([]int(nil), byClass[class]...)
		rng.Shuffle(len(members), func(i, j int) {
			members[i], members[j] = members[j], members[i]
		})
		keep = append(keep, members[:target]...)
	}

	return selectSorted(X, y, keep)
}

// SMOTE synthesizes minority rows by interpolating between a row and one of
// its k nearest same-class neighbours.
type SMOTE struct {
	Seed       int64
	KNeighbors int
}

func (s *SMOTE) Name() string     { return "smote" }
func (s *SMOTE) Clone() Resampler { return &SMOTE{Seed: s.Seed, KNeighbors: s.KNeighbors} }

func (s *SMOTE) FitResample(X [][]decimal.Decimal, y []int) ([][]decimal.Decimal, []int, error) {
	if err := checkAligned(X, y); err != nil {
		return nil, nil, err
	}

	rng := rand.New(rand.NewSource(s.Seed))
	rows := floatRows(X)
	classes, byClass := groupByClass(y)
	target := largestClass(byClass)

	newX := copyRows(X)
	newY := append([]int(nil), y...)
	for _, class := range classes {
		members := byClass[class]
		needed := target - len(members)
		if needed == 0 {
			continue
		}
		if len(members) < 2 {
			return nil, nil, fmt.Errorf("smote: class %d has %d sample(s), need at least 2", class, len(members))
		}

		k := min(s.KNeighbors, len(members)-1)
		neighbors := make(map[int][]int, len(members))
		for _, idx := range members {
			neighbors[idx] = nearest(rows, rows[idx], members, idx, k)
		}

		for n := 0; n < needed; n++ {
			idx := members[rng.Intn(len(members))]
			nn := neighbors[idx][rng.Intn(k)]
			gap := rng.Float64()

			synthetic := make([]decimal.Decimal, len(rows[idx]))
			for j := range synthetic {
				synthetic[j] = decimal.NewFromFloat(rows[idx][j] + gap*(rows[nn][j]-rows[idx][j]))
			}
			newX = append(newX, synthetic)
			newY = append(newY, class)
		}
	}

	return newX, newY, nil
}

// NearMiss (version 1) keeps, for each non-minority class, the rows whose mean
// distance to their closest minority rows is smallest.
type NearMiss struct {
	NNeighbors int
}

func (nm *NearMiss) Name() string     { return "nearmiss" }
func (nm *NearMiss) Clone() Resampler { return &NearMiss{NNeighbors: nm.NNeighbors} }

func (nm *NearMiss) FitResample(X [][]decimal.Decimal, y []int) ([][]decimal.Decimal, []int, error) {
	if err := checkAligned(X, y); err != nil {
		return nil, nil, err
	}

	rows := floatRows(X)
	classes, byClass := groupByClass(y)
	target := smallestClass(byClass)

	minority := classes[0]
	for _, class := range classes {
		if len(byClass[class]) < len(byClass[minority]) {
			minority = class
		}
	}
	minorityRows := byClass[minority]
	k := min(max(nm.NNeighbors, 1), len(minorityRows))

	keep := append([]int(nil), minorityRows...)
	for _, class := range classes {
		if class == minority {
			continue
		}

		type scored struct {
			index int
			dist  float64
		}
		candidates := make([]scored, 0, len(byClass[class]))
		for _, idx := range byClass[class] {
			closest := nearest(rows, rows[idx], minorityRows, -1, k)
			total := 0.0
			for _, m := range closest {
				total += euclidean(rows[idx], rows[m])
			}
			candidates = append(candidates, scored{index: idx, dist: total / float64(len(closest))})
		}
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].dist < candidates[j].dist
		})
		for _, c := range candidates[:target] {
			keep = append(keep, c.index)
		}
	}

	return selectSorted(X, y, keep)
}

func checkAligned(X [][]decimal.Decimal, y []int) error {
	if len(X) != len(y) {
		return fmt.Errorf("%w: %d feature rows, %d labels", ErrAlignment, len(X), len(y))
	}
	if len(X) == 0 {
		return ErrEmptyDataset
	}
	return nil
}

func groupByClass(y []int) ([]int, map[int][]int) {
	byClass := make(map[int][]int)
	for i, label := range y {
		byClass[label] = append(byClass[label], i)
	}

	classes := make([]int, 0, len(byClass))
	for class := range byClass {
		classes = append(classes, class)
	}
	sort.Ints(classes)

	return classes, byClass
}

func largestClass(byClass map[int][]int) int {
	n := 0
	for _, members := range byClass {
		n = max(n, len(members))
	}
	return n
}

func smallestClass(byClass map[int][]int) int {
	n := math.MaxInt
	for _, members := range byClass {
		n = min(n, len(members))
	}
	return n
}

func selectSorted(X [][]decimal.Decimal, y []int, indices []int) ([][]decimal.Decimal, []int, error) {
	sort.Ints(indices)
	newX := make([][]decimal.Decimal, len(indices))
	newY := make([]int, len(indices))
	for i, idx := range indices {
		newX[i] = append([]decimal.Decimal(nil), X[idx]...)
		newY[i] = y[idx]
	}
	return newX, newY, nil
}

// nearest returns the k candidates closest to point, skipping the candidate
// equal to self. Ties keep candidate order.
func nearest(rows [][]float64, point []float64, candidates []int, self int, k int) []int {
	type neighbor struct {
		index int
		dist  float64
	}

	neighbors := make([]neighbor, 0, len(candidates))
	for _, idx := range candidates {
		if idx == self {
			continue
		}
		neighbors = append(neighbors, neighbor{index: idx, dist: euclidean(point, rows[idx])})
	}
	sort.SliceStable(neighbors, func(i, j int) bool {
		return neighbors[i].dist < neighbors[j].dist
	})

	k = min(k, len(neighbors))
	result := make([]int, k)
	for i := 0; i < k; i++ {
		result[i] = neighbors[i].index
	}
	return result
}

func euclidean(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return math.Sqrt(sum)
}

func floatRows(X [][]decimal.Decimal) [][]float64 {
	rows := make([][]float64, len(X))
	for i, row := range X {
		rows[i] = make([]float64, len(row))
		for j, v := range row {
			rows[i][j] = v.InexactFloat64()
		}
	}
	return rows
}
