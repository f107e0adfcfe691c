package evaluation

import "fmt"

// Score holds recall, precision and F1 of the positive class.
type Score struct {
	Recall    float64 `json:"recall"`
	Precision float64 `json:"precision"`
	F1        float64 `json:"f1"`
}

func (s Score) Vector() [3]float64 {
	return [3]float64{s.Recall, s.Precision, s.F1}
}

func (s Score) String() string {
	return fmt.Sprintf("recall=%.4f precision=%.4f f1=%.4f", s.Recall, s.Precision, s.F1)
}

func MeanScore(scores []Score) Score {
	if len(scores) == 0 {
		return Score{}
	}

	var mean Score
	for _, s := range scores {
		mean.Recall += s.Recall
		mean.Precision += s.Precision
		mean.F1 += s.F1
	}
	n := float64(len(scores))
	mean.Recall /= n
	mean.Precision /= n
	mean.F1 /= n
	return mean
}
