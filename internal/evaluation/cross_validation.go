package evaluation

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"

	"imbalancecv/internal/models"
	"imbalancecv/internal/preprocessing"
)

// Pipeline lists the per-fold transformations applied to training data before
// the model is fitted. Scaler, Resampler and Reducer are templates: each fold
// works on its own unfitted Clone. A nil Scaler or Resampler passes data
// through unchanged; a nil Reducer disables dimensionality reduction.
type Pipeline struct {
	Scaler         preprocessing.Transformer
	Resampler      preprocessing.Resampler
	RemoveOutliers bool
	Reducer        preprocessing.Transformer
}

func (p Pipeline) String() string {
	scaler, resampler, reducer := "none", "none", "none"
	if p.Scaler != nil {
		scaler = p.Scaler.Name()
	}
	if p.Resampler != nil {
		resampler = p.Resampler.Name()
	}
	if p.Reducer != nil {
		reducer = p.Reducer.Name()
	}
	return fmt.Sprintf("scaler=%s resampler=%s remove_outliers=%t reducer=%s",
		scaler, resampler, p.RemoveOutliers, reducer)
}

type CrossValidator struct {
	NFolds        int
	Shuffle       bool
	RandomSeed    int64
	PositiveClass int
	Verbose       bool
	Out           io.Writer
	Logger        *slog.Logger
}

type CVResult struct {
	Folds []Score
	Mean  Score
}

func NewCrossValidator(nFolds int, positiveClass int) *CrossValidator {
	return &CrossValidator{
		NFolds:        nFolds,
		RandomSeed:    42,
		PositiveClass: positiveClass,
		Out:           os.Stdout,
	}
}

// Evaluate runs stratified k-fold cross-validation. Per fold the scaler is fit
// on the training rows only, the scaled training rows are resampled, outliers
// are optionally removed from them, the reducer is fit on what remains, and a
// fresh model is fit and scored on the held-out rows.
func (cv *CrossValidator) Evaluate(model models.Model, X [][]decimal.Decimal, y []int, pipeline Pipeline) (*CVResult, error) {
	if len(X) != len(y) {
		return nil, fmt.Errorf("%w: %d feature rows, %d labels", ErrAlignment, len(X), len(y))
	}

	folds, err := NewStratifiedKFold(cv.NFolds, cv.Shuffle, cv.RandomSeed).Split(y)
	if err != nil {
		return nil, err
	}

	positives := 0
	for _, label := range y {
		if label == cv.PositiveClass {
			positives++
		}
	}
	if positives < cv.NFolds {
		cv.logger().Warn("positive class smaller than fold count",
			"positives", positives, "folds", cv.NFolds)
	}

	scores := make([]Score, len(folds))
	for i, fold := range folds {
		score, err := cv.evaluateFold(model, X, y, fold, pipeline)
		if err != nil {
			return nil, fmt.Errorf("fold %d failed: %w", i+1, err)
		}
		scores[i] = score
		cv.logger().Debug("fold evaluated",
			"fold", i+1, "train", len(fold.Train), "test", len(fold.Test),
			"recall", score.Recall, "precision", score.Precision, "f1", score.F1)
	}

	result := &CVResult{Folds: scores, Mean: MeanScore(scores)}
	if cv.Verbose {
		cv.printSplits(result)
	}
	return result, nil
}

func (cv *CrossValidator) evaluateFold(
	model models.Model,
	X [][]decimal.Decimal,
	y []int,
	fold Fold,
	pipeline Pipeline,
) (Score, error) {

	XTrain, yTrain := subset(X, y, fold.Train)
	XTest, yTest := subset(X, y, fold.Test)

	if pipeline.Scaler != nil {
		scaler := pipeline.Scaler.Clone()
		var err error
		if XTrain, err = scaler.FitTransform(XTrain); err != nil {
			return Score{}, fmt.Errorf("scaling: %w", err)
		}
		if XTest, err = scaler.Transform(XTest); err != nil {
			return Score{}, fmt.Errorf("scaling: %w", err)
		}
	}

	if pipeline.Resampler != nil {
		var err error
		XTrain, yTrain, err = pipeline.Resampler.Clone().FitResample(XTrain, yTrain)
		if err != nil {
			return Score{}, fmt.Errorf("resampling: %w", err)
		}
	}

	if pipeline.RemoveOutliers {
		var err error
		XTrain, yTrain, err = preprocessing.RemoveOutliers(XTrain, yTrain)
		if err != nil {
			return Score{}, fmt.Errorf("outlier removal: %w", err)
		}
	}

	if pipeline.Reducer != nil {
		reducer := pipeline.Reducer.Clone()
		var err error
		if XTrain, err = reducer.FitTransform(XTrain); err != nil {
			return Score{}, fmt.Errorf("reduction: %w", err)
		}
		if XTest, err = reducer.Transform(XTest); err != nil {
			return Score{}, fmt.Errorf("reduction: %w", err)
		}
	}

	foldModel, err := cv.cloneModel(model)
	if err != nil {
		return Score{}, err
	}
	if err := foldModel.Fit(XTrain, yTrain); err != nil {
		return Score{}, fmt.Errorf("fit %s: %w", foldModel.GetName(), err)
	}

	predictions := foldModel.Predict(XTest)
	report, err := ClassificationReport(yTest, predictions, []int{cv.PositiveClass})
	if err != nil {
		return Score{}, err
	}

	if report.PerClassMetrics[cv.PositiveClass].Support == 0 {
		cv.logger().Warn("positive class absent from test fold", "test", len(yTest))
	}

	return report.PositiveScore(cv.PositiveClass), nil
}

// cloneModel rebuilds registered models from their parameters. Models the
// factory does not know are reset and reused.
func (cv *CrossValidator) cloneModel(model models.Model) (models.Model, error) {
	clone, err := models.New(model.GetType(), model.GetParams())
	if errors.Is(err, models.ErrUnknownAlgorithm) {
		model.Reset()
		return model, nil
	}
	if err != nil {
		return nil, fmt.Errorf("clone %s: %w", model.GetName(), err)
	}
	return clone, nil
}

func (cv *CrossValidator) printSplits(result *CVResult) {
	out := cv.Out
	if out == nil {
		out = os.Stdout
	}
	heading := color.New(color.FgCyan).SprintFunc()

	for i, s := range result.Folds {
		fmt.Fprintln(out, heading(fmt.Sprintf("split %d", i+1)))
		fmt.Fprintf(out, "recall: %.4f\n", s.Recall)
		fmt.Fprintf(out, "precision: %.4f\n", s.Precision)
		fmt.Fprintf(out, "f1: %.4f\n", s.F1)
	}

	fmt.Fprintln(out, heading("Mean Scores:"))
	fmt.Fprintf(out, "Mean recall: %.4f\n", result.Mean.Recall)
	fmt.Fprintf(out, "Mean precision: %.4f\n", result.Mean.Precision)
	fmt.Fprintf(out, "Mean f1: %.4f\n\n", result.Mean.F1)
}

func (cv *CrossValidator) logger() *slog.Logger {
	if cv.Logger != nil {
		return cv.Logger
	}
	return slog.Default()
}

func subset(X [][]decimal.Decimal, y []int, indices []int) ([][]decimal.Decimal, []int) {
	XSub := make([][]decimal.Decimal, len(indices))
	ySub := make([]int, len(indices))
	for i, idx := range indices {
		XSub[i] = X[idx]
		ySub[i] = y[idx]
	}
	return XSub, ySub
}
