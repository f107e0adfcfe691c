package evaluation

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"imbalancecv/internal/models"
)

type Scoring string

const (
	ScoringAll       Scoring = "all"
	ScoringCustom    Scoring = "custom"
	ScoringRecall    Scoring = "recall"
	ScoringPrecision Scoring = "precision"
	ScoringF1        Scoring = "f1"
)

// Thresholds of the custom scoring mode. Both comparisons are strict.
const (
	CustomMinRecall    = 0.5
	CustomMinPrecision = 0.2
)

func ScoringModes() []Scoring {
	return []Scoring{ScoringAll, ScoringCustom, ScoringRecall, ScoringPrecision, ScoringF1}
}

func ParseScoring(s string) (Scoring, error) {
	for _, mode := range ScoringModes() {
		if string(mode) == s {
			return mode, nil
		}
	}
	return "", fmt.Errorf("%w: %q (expected one of %v)", ErrUnknownScoring, s, ScoringModes())
}

// Metric returns the score component a metric mode ranks by.
func (s Scoring) Metric(score Score) (float64, bool) {
	switch s {
	case ScoringRecall:
		return score.Recall, true
	case ScoringPrecision:
		return score.Precision, true
	case ScoringF1:
		return score.F1, true
	}
	return 0, false
}

type ScoredParams struct {
	Key    string
	Params Params
	Score  Score
}

type SearchResult struct {
	RunID   string
	Scoring Scoring
	// Scores holds every combination keyed by Params.Key.
	Scores map[string]Score
	// Order lists the combinations as they were enumerated.
	Order []ScoredParams
	// Matches is filled in custom mode.
	Matches []ScoredParams
	// Best and Ties are filled in the metric modes.
	Best     *ScoredParams
	Ties     []ScoredParams
	Pipeline Pipeline
}

// SortedKeys returns the keys of Scores in lexical order.
func (r *SearchResult) SortedKeys() []string {
	keys := make([]string, 0, len(r.Scores))
	for key := range r.Scores {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

type GridSearch struct {
	CV      *CrossValidator
	Scoring Scoring
	Out     io.Writer
	Logger  *slog.Logger
}

func NewGridSearch(cv *CrossValidator, scoring Scoring) *GridSearch {
	return &GridSearch{
		CV:      cv,
		Scoring: scoring,
		Out:     os.Stdout,
	}
}

// Run evaluates every combination of grid with the cross-validator and
// reports the results according to the scoring mode.
func (gs *GridSearch) Run(
	ctor models.Constructor,
	grid ParamGrid,
	X [][]decimal.Decimal,
	y []int,
	pipeline Pipeline,
) (*SearchResult, error) {

	if _, err := ParseScoring(string(gs.Scoring)); err != nil {
		return nil, err
	}
	combos, err := grid.Combinations()
	if err != nil {
		return nil, err
	}
	keys := make([]string, len(combos))
	seen := make(map[string]bool, len(combos))
	for i, params := range combos {
		keys[i] = params.Key()
		if seen[keys[i]] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateKey, keys[i])
		}
		seen[keys[i]] = true
	}

	runID := uuid.NewString()
	log := gs.logger().With("run_id", runID)
	log.Info("grid search started",
		"combinations", len(combos), "scoring", gs.Scoring, "pipeline", pipeline.String())

	result := &SearchResult{
		RunID:    runID,
		Scoring:  gs.Scoring,
		Scores:   make(map[string]Score, len(combos)),
		Order:    make([]ScoredParams, 0, len(combos)),
		Pipeline: pipeline,
	}

	for i, params := range combos {
		key := keys[i]

		model, err := ctor(params)
		if err != nil {
			return nil, fmt.Errorf("construct %s: %w", key, err)
		}

		cvResult, err := gs.CV.Evaluate(model, X, y, pipeline)
		if err != nil {
			return nil, fmt.Errorf("evaluate %s: %w", key, err)
		}

		result.Scores[key] = cvResult.Mean
		result.Order = append(result.Order, ScoredParams{Key: key, Params: params, Score: cvResult.Mean})
		log.Debug("combination evaluated",
			"index", i+1, "params", key, "score", cvResult.Mean.String())
	}

	switch gs.Scoring {
	case ScoringAll:
		gs.printAll(result)
	case ScoringCustom:
		for _, entry := range result.Order {
			if entry.Score.Recall > CustomMinRecall && entry.Score.Precision > CustomMinPrecision {
				result.Matches = append(result.Matches, entry)
			}
		}
		gs.printCustom(result)
	default:
		gs.selectBest(result)
		gs.printBest(result)
	}

	log.Info("grid search finished", "evaluated", len(result.Order))
	return result, nil
}

func (gs *GridSearch) selectBest(result *SearchResult) {
	best := 0.0
	for i, entry := range result.Order {
		value, _ := gs.Scoring.Metric(entry.Score)
		if i == 0 || value > best {
			best = value
		}
	}
	for _, entry := range result.Order {
		if value, _ := gs.Scoring.Metric(entry.Score); value == best {
			result.Ties = append(result.Ties, entry)
		}
	}
	if len(result.Ties) > 0 {
		first := result.Ties[0]
		result.Best = &first
	}
}

func (gs *GridSearch) printAll(result *SearchResult) {
	out := gs.writer()
	fmt.Fprintln(out, color.New(color.FgCyan, color.Bold).Sprint("All combinations:"))
	for _, key := range result.SortedKeys() {
		fmt.Fprintf(out, "%s: %s\n", key, formatVector(result.Scores[key]))
	}
}

func (gs *GridSearch) printCustom(result *SearchResult) {
	out := gs.writer()
	fmt.Fprintln(out, color.New(color.FgCyan, color.Bold).Sprintf(
		"Combinations with recall > %.1f and precision > %.1f:", CustomMinRecall, CustomMinPrecision))
	if len(result.Matches) == 0 {
		color.New(color.FgYellow).Fprintln(out, "none")
		return
	}
	for _, entry := range result.Matches {
		fmt.Fprintf(out, "%s: %s\n", entry.Key, formatVector(entry.Score))
	}
}

func (gs *GridSearch) printBest(result *SearchResult) {
	out := gs.writer()
	if result.Best == nil {
		return
	}
	value, _ := gs.Scoring.Metric(result.Best.Score)
	fmt.Fprintln(out, color.New(color.FgCyan, color.Bold).Sprintf("Best %s: %.4f", gs.Scoring, value))
	for _, entry := range result.Ties {
		color.New(color.FgGreen).Fprintf(out, "%s: %s\n", entry.Key, formatVector(entry.Score))
	}
	fmt.Fprintf(out, "Pipeline: %s\n", result.Pipeline.String())
}

func (gs *GridSearch) writer() io.Writer {
	if gs.Out != nil {
		return gs.Out
	}
	return os.Stdout
}

func (gs *GridSearch) logger() *slog.Logger {
	if gs.Logger != nil {
		return gs.Logger
	}
	return slog.Default()
}

func formatVector(s Score) string {
	v := s.Vector()
	return fmt.Sprintf("[%.4f, %.4f, %.4f]", v[0], v[1], v[2])
}
