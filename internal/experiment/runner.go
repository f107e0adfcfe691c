package experiment

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/fatih/color"

	"imbalancecv/internal/data"
	"imbalancecv/internal/evaluation"
	"imbalancecv/internal/models"
	"imbalancecv/internal/preprocessing"
)

type Runner struct {
	Config *Config
	Out    io.Writer
	Logger *slog.Logger
}

func NewRunner(cfg *Config, out io.Writer, logger *slog.Logger) *Runner {
	if out == nil {
		out = os.Stdout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{Config: cfg, Out: out, Logger: logger}
}

// LoadDataset reads and validates the configured CSV file.
func (r *Runner) LoadDataset() (*data.Dataset, error) {
	cfg := r.Config.Data
	dataset, err := data.NewCSVReader(cfg.File, cfg.LabelColumn).LoadData(cfg.PositiveLabel)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", cfg.File, err)
	}

	validator := data.NewDataValidator()
	if err := validator.ValidateDataset(dataset.X, dataset.Y); err != nil {
		return nil, fmt.Errorf("validate %s: %w", cfg.File, err)
	}
	if err := validator.ValidateLabels(dataset.Y); err != nil {
		return nil, fmt.Errorf("validate %s: %w", cfg.File, err)
	}

	stats := validator.GetDatasetStats(dataset.X, dataset.Y)
	r.Logger.Info("dataset loaded",
		"file", cfg.File,
		"samples", stats.Samples,
		"features", stats.Features,
		"classes", dataset.Classes,
		"positive", cfg.PositiveLabel,
		"imbalance_ratio", stats.ImbalanceRatio)

	return dataset, nil
}

// BuildPipeline turns the pipeline section into unfitted templates.
func (r *Runner) BuildPipeline() (evaluation.Pipeline, error) {
	cfg := r.Config.Pipeline
	var pipeline evaluation.Pipeline

	scaler, err := preprocessing.NewScaler(cfg.Scaler)
	if err != nil {
		return pipeline, err
	}
	pipeline.Scaler = scaler

	resampler, err := preprocessing.NewResampler(cfg.Resampler.Method, preprocessing.ResamplerOptions{
		Seed:       cfg.Resampler.Seed,
		KNeighbors: cfg.Resampler.KNeighbors,
	})
	if err != nil {
		return pipeline, err
	}
	pipeline.Resampler = resampler
	pipeline.RemoveOutliers = cfg.RemoveOutliers

	if cfg.PCAComponents > 0 {
		pca, err := preprocessing.NewPCA(cfg.PCAComponents)
		if err != nil {
			return pipeline, err
		}
		pipeline.Reducer = pca
	}

	return pipeline, nil
}

func (r *Runner) CrossValidator(positiveClass int) *evaluation.CrossValidator {
	cfg := r.Config.CrossValidation
	cv := evaluation.NewCrossValidator(cfg.Folds, positiveClass)
	cv.Shuffle = cfg.Shuffle
	cv.RandomSeed = cfg.Seed
	cv.Verbose = cfg.Verbose
	cv.Out = r.Out
	cv.Logger = r.Logger
	return cv
}

// Search runs the configured grid search on dataset and exports the results
// when an export path is set.
func (r *Runner) Search(dataset *data.Dataset) (*evaluation.SearchResult, error) {
	scoring, err := evaluation.ParseScoring(r.Config.Search.Scoring)
	if err != nil {
		return nil, err
	}
	ctor, err := models.Lookup(r.Config.Model.Algorithm)
	if err != nil {
		return nil, err
	}
	pipeline, err := r.BuildPipeline()
	if err != nil {
		return nil, err
	}

	gs := evaluation.NewGridSearch(r.CrossValidator(dataset.PositiveClass), scoring)
	gs.Out = r.Out
	gs.Logger = r.Logger

	result, err := gs.Run(ctor, evaluation.ParamGrid(r.Config.Model.ParamGrid), dataset.X, dataset.Y, pipeline)
	if err != nil {
		return nil, err
	}

	if path := r.Config.Output.Export; path != "" {
		if err := r.ExportResults(result, dataset.SourceFile, path); err != nil {
			return nil, err
		}
		color.New(color.FgGreen).Fprintf(r.Out, "Results exported to %s\n", path)
	}
	return result, nil
}

// Evaluate cross-validates a single parameter combination.
func (r *Runner) Evaluate(dataset *data.Dataset, params map[string]any) (*evaluation.CVResult, error) {
	model, err := models.New(r.Config.Model.Algorithm, params)
	if err != nil {
		return nil, err
	}
	pipeline, err := r.BuildPipeline()
	if err != nil {
		return nil, err
	}

	r.Logger.Info("cross-validating",
		"model", model.GetName(),
		"params", evaluation.Params(model.GetParams()).Key(),
		"pipeline", pipeline.String())

	return r.CrossValidator(dataset.PositiveClass).Evaluate(model, dataset.X, dataset.Y, pipeline)
}

// Run loads the dataset and runs the grid search.
func (r *Runner) Run() (*evaluation.SearchResult, error) {
	dataset, err := r.LoadDataset()
	if err != nil {
		return nil, err
	}
	return r.Search(dataset)
}

// ExportResults writes one row per evaluated combination in enumeration
// order. Selected marks the best and tied rows of metric modes and the
// matches of custom mode.
func (r *Runner) ExportResults(result *evaluation.SearchResult, dataset string, filename string) (err error) {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filename, err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", filename, closeErr)
		}
	}()

	selected := make(map[string]string)
	for _, entry := range result.Matches {
		selected[entry.Key] = "match"
	}
	for _, entry := range result.Ties {
		selected[entry.Key] = "tie"
	}
	if result.Best != nil {
		selected[result.Best.Key] = "best"
	}

	reducer := "none"
	if result.Pipeline.Reducer != nil {
		reducer = result.Pipeline.Reducer.Name()
	}
	scaler := "none"
	if result.Pipeline.Scaler != nil {
		scaler = result.Pipeline.Scaler.Name()
	}
	resampler := "none"
	if result.Pipeline.Resampler != nil {
		resampler = result.Pipeline.Resampler.Name()
	}

	writer := csv.NewWriter(file)
	writer.Write([]string{
		"RunID", "Dataset", "Algorithm", "Parameters", "Scoring",
		"Scaler", "Resampler", "RemoveOutliers", "Reducer",
		"Recall", "Precision", "F1", "Selected",
	})

	for _, entry := range result.Order {
		writer.Write([]string{
			result.RunID,
			dataset,
			r.Config.Model.Algorithm,
			entry.Key,
			string(result.Scoring),
			scaler,
			resampler,
			strconv.FormatBool(result.Pipeline.RemoveOutliers),
			reducer,
			fmt.Sprintf("%.4f", entry.Score.Recall),
			fmt.Sprintf("%.4f", entry.Score.Precision),
			fmt.Sprintf("%.4f", entry.Score.F1),
			selected[entry.Key],
		})
	}

	writer.Flush()
	return writer.Error()
}
