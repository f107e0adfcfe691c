package experiment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const sampleConfig = `
data:
  file: transactions.csv
  label_column: fraud
model:
  algorithm: knn
  param_grid:
    n_neighbors: [1, 3, 5]
    metric: [euclidean, manhattan]
pipeline:
  scaler: minmax
  resampler:
    method: smote
    k_neighbors: 3
  remove_outliers: true
  pca_components: 2
cross_validation:
  folds: 4
  shuffle: true
search:
  scoring: recall
output:
  export: results.csv
`

func TestLoad(t *testing.T) {
	cfg, err := Load(writeFile(t, "config.yaml", sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "transactions.csv", cfg.Data.File)
	assert.Equal(t, "fraud", cfg.Data.LabelColumn)
	assert.Equal(t, "1", cfg.Data.PositiveLabel, "default kept")
	assert.Equal(t, []any{1, 3, 5}, cfg.Model.ParamGrid["n_neighbors"])
	assert.Equal(t, []any{"euclidean", "manhattan"}, cfg.Model.ParamGrid["metric"])
	assert.Equal(t, "minmax", cfg.Pipeline.Scaler)
	assert.Equal(t, "smote", cfg.Pipeline.Resampler.Method)
	assert.Equal(t, 3, cfg.Pipeline.Resampler.KNeighbors)
	assert.Equal(t, int64(42), cfg.Pipeline.Resampler.Seed)
	assert.True(t, cfg.Pipeline.RemoveOutliers)
	assert.Equal(t, 2, cfg.Pipeline.PCAComponents)
	assert.Equal(t, 4, cfg.CrossValidation.Folds)
	assert.True(t, cfg.CrossValidation.Shuffle)
	assert.Equal(t, int64(42), cfg.CrossValidation.Seed)
	assert.Equal(t, "recall", cfg.Search.Scoring)
	assert.Equal(t, "results.csv", cfg.Output.Export)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("GRIDCV_SEARCH_SCORING", "custom")
	t.Setenv("GRIDCV_CROSS_VALIDATION_FOLDS", "3")
	t.Setenv("GRIDCV_DATA_POSITIVE_LABEL", "yes")

	cfg, err := Load(writeFile(t, "config.yaml", sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "custom", cfg.Search.Scoring)
	assert.Equal(t, 3, cfg.CrossValidation.Folds)
	assert.Equal(t, "yes", cfg.Data.PositiveLabel)
	assert.Equal(t, "minmax", cfg.Pipeline.Scaler, "unset variables leave file values alone")
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		message string
	}{
		{"missing file", "model: {algorithm: knn}", "Config.Data.File is required"},
		{"unknown scoring", "data: {file: a.csv}\nsearch: {scoring: accuracy}", "Config.Search.Scoring must be one of"},
		{"one fold", "data: {file: a.csv}\ncross_validation: {folds: 1}", "Config.CrossValidation.Folds must be at least 2"},
		{"unknown algorithm", "data: {file: a.csv}\nmodel: {algorithm: svm}", "Config.Model.Algorithm"},
		{"unknown resampler", "data: {file: a.csv}\npipeline: {resampler: {method: adasyn}}", "Config.Pipeline.Resampler.Method"},
		{"malformed yaml", "data: [", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, "config.yaml", tt.content))
			require.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidConfig)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	cfg.Data.File = "data.csv"
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 5, cfg.CrossValidation.Folds)
	assert.False(t, cfg.CrossValidation.Shuffle)
	assert.Equal(t, "standard", cfg.Pipeline.Scaler)
	assert.Equal(t, "none", cfg.Pipeline.Resampler.Method)
	assert.Equal(t, "f1", cfg.Search.Scoring)
}
