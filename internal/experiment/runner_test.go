package experiment

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imbalancecv/internal/evaluation"
	"imbalancecv/internal/preprocessing"
)

// writeDataset writes n rows of three features and a yes/no label where
// every fifth row is a shifted positive.
func writeDataset(t *testing.T, n int) string {
	t.Helper()
	rng := rand.New(rand.NewSource(1))

	var sb strings.Builder
	sb.WriteString("amount,age,score,fraud\n")
	for i := 0; i < n; i++ {
		label, shift := "no", 0.0
		if i%5 == 0 {
			label, shift = "yes", 3
		}
		fmt.Fprintf(&sb, "%.4f,%.4f,%.4f,%s\n",
			rng.NormFloat64()+shift, rng.NormFloat64()-shift, rng.NormFloat64(), label)
	}
	return writeFile(t, "data.csv", sb.String())
}

func testConfig(t *testing.T) *Config {
	t.Helper()
	cfg := Default()
	cfg.Data.File = writeDataset(t, 100)
	cfg.Data.LabelColumn = "fraud"
	cfg.Data.PositiveLabel = "yes"
	cfg.Model.ParamGrid = map[string][]any{"n_neighbors": {1, 3, 5}}
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestRunner_LoadDataset(t *testing.T) {
	runner := NewRunner(testConfig(t), io.Discard, nil)

	dataset, err := runner.LoadDataset()
	require.NoError(t, err)

	assert.Len(t, dataset.X, 100)
	assert.Equal(t, []string{"amount", "age", "score"}, dataset.Features)
	assert.Equal(t, []string{"no", "yes"}, dataset.Classes)
	assert.Equal(t, 1, dataset.PositiveClass)
}

func TestRunner_LoadDataset_UnknownPositiveLabel(t *testing.T) {
	cfg := testConfig(t)
	cfg.Data.PositiveLabel = "maybe"

	_, err := NewRunner(cfg, io.Discard, nil).LoadDataset()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"maybe"`)
}

func TestRunner_BuildPipeline(t *testing.T) {
	cfg := testConfig(t)
	cfg.Pipeline.Scaler = "robust"
	cfg.Pipeline.Resampler.Method = "random_under"
	cfg.Pipeline.RemoveOutliers = true
	cfg.Pipeline.PCAComponents = 2

	pipeline, err := NewRunner(cfg, io.Discard, nil).BuildPipeline()
	require.NoError(t, err)

	assert.Equal(t, "robust", pipeline.Scaler.Name())
	assert.Equal(t, "random_under", pipeline.Resampler.Name())
	assert.True(t, pipeline.RemoveOutliers)
	require.IsType(t, &preprocessing.PCA{}, pipeline.Reducer)
	assert.Equal(t, 2, pipeline.Reducer.(*preprocessing.PCA).NComponents)

	cfg.Pipeline.PCAComponents = 0
	pipeline, err = NewRunner(cfg, io.Discard, nil).BuildPipeline()
	require.NoError(t, err)
	assert.Nil(t, pipeline.Reducer)
}

func TestRunner_RunExportsResults(t *testing.T) {
	cfg := testConfig(t)
	cfg.Search.Scoring = "recall"
	cfg.Pipeline.Resampler.Method = "random_over"
	cfg.Output.Export = filepath.Join(t.TempDir(), "results.csv")

	var out bytes.Buffer
	result, err := NewRunner(cfg, &out, nil).Run()
	require.NoError(t, err)
	require.NotNil(t, result.Best)
	assert.Contains(t, out.String(), "Best recall:")
	assert.Contains(t, out.String(), "Results exported to")

	file, err := os.Open(cfg.Output.Export)
	require.NoError(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, "RunID", records[0][0])

	best := 0
	for _, record := range records[1:] {
		_, err := uuid.Parse(record[0])
		assert.NoError(t, err)
		assert.Equal(t, result.RunID, record[0])
		assert.Equal(t, "knn", record[2])
		assert.Equal(t, "random_over", record[6])
		if record[12] == "best" {
			best++
			assert.Equal(t, result.Best.Key, record[3])
		}
	}
	assert.Equal(t, 1, best)
	assert.Equal(t, "{n_neighbors: 1}", records[1][3])
}

func TestRunner_Evaluate(t *testing.T) {
	cfg := testConfig(t)
	cfg.CrossValidation.Verbose = true

	var out bytes.Buffer
	runner := NewRunner(cfg, &out, nil)
	dataset, err := runner.LoadDataset()
	require.NoError(t, err)

	result, err := runner.Evaluate(dataset, map[string]any{"n_neighbors": "3"})
	require.NoError(t, err)
	assert.Len(t, result.Folds, 5)
	assert.Contains(t, out.String(), "Mean Scores:")

	_, err = runner.Evaluate(dataset, map[string]any{"depth": "3"})
	assert.Error(t, err)
}

func TestRunner_SearchRejectsUnknownScoring(t *testing.T) {
	cfg := testConfig(t)
	cfg.Search.Scoring = "accuracy"

	_, err := NewRunner(cfg, io.Discard, nil).Run()
	assert.ErrorIs(t, err, evaluation.ErrUnknownScoring)
}

func TestRunner_ExportResultsReportsWriteFailures(t *testing.T) {
	runner := NewRunner(testConfig(t), io.Discard, nil)
	result := &evaluation.SearchResult{
		RunID:   uuid.NewString(),
		Scoring: evaluation.ScoringAll,
		Order: []evaluation.ScoredParams{
			{Key: "{n_neighbors: 1}", Score: evaluation.Score{Recall: 1}},
		},
	}

	err := runner.ExportResults(result, "data.csv", filepath.Join(t.TempDir(), "missing", "out.csv"))
	assert.Error(t, err)

	if _, statErr := os.Stat("/dev/full"); statErr != nil {
		t.Skip("/dev/full not available")
	}
	err = runner.ExportResults(result, "data.csv", "/dev/full")
	assert.Error(t, err, "buffered rows that cannot be written must surface")
}
