package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamGrid_Combinations(t *testing.T) {
	grid := ParamGrid{
		"b": {1, 2},
		"a": {"x", "y"},
	}

	combos, err := grid.Combinations()
	require.NoError(t, err)

	assert.Equal(t, []Params{
		{"a": "x", "b": 1},
		{"a": "x", "b": 2},
		{"a": "y", "b": 1},
		{"a": "y", "b": 2},
	}, combos)
}

func TestParamGrid_ManyNames(t *testing.T) {
	grid := ParamGrid{}
	for _, name := range []string{"p1", "p2", "p3", "p4", "p5", "p6", "p7"} {
		grid[name] = []any{0, 1}
	}

	combos, err := grid.Combinations()
	require.NoError(t, err)
	assert.Len(t, combos, 128)
	assert.Equal(t, 128, grid.Size())

	keys := make(map[string]bool)
	for _, combo := range combos {
		keys[combo.Key()] = true
	}
	assert.Len(t, keys, 128)
}

func TestParamGrid_Empty(t *testing.T) {
	_, err := ParamGrid{}.Combinations()
	assert.ErrorIs(t, err, ErrEmptyGrid)

	_, err = ParamGrid{"k": {1}, "metric": {}}.Combinations()
	assert.ErrorIs(t, err, ErrEmptyGrid)
	assert.Contains(t, err.Error(), "metric")
}

func TestParams_Key(t *testing.T) {
	tests := []struct {
		params Params
		want   string
	}{
		{Params{"n_neighbors": 3, "metric": "manhattan"}, "{metric: 'manhattan', n_neighbors: 3}"},
		{Params{"var_smoothing": 0.5}, "{var_smoothing: 0.5}"},
		{Params{"var_smoothing": 1e-9}, "{var_smoothing: 1e-09}"},
		{Params{"n_neighbors": 1.0}, "{n_neighbors: 1.0}"},
		{Params{"n_neighbors": float32(2)}, "{n_neighbors: 2.0}"},
		{Params{"n_neighbors": 1}, "{n_neighbors: 1}"},
		{Params{"max_depth": nil, "bootstrap": true}, "{bootstrap: true, max_depth: None}"},
		{Params{}, "{}"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.params.Key())
		})
	}
}

func TestParseScoring(t *testing.T) {
	for _, mode := range ScoringModes() {
		got, err := ParseScoring(string(mode))
		require.NoError(t, err)
		assert.Equal(t, mode, got)
	}

	_, err := ParseScoring("accuracy")
	assert.ErrorIs(t, err, ErrUnknownScoring)
}

func TestParams_KeyDistinguishesIntsFromFloats(t *testing.T) {
	combos, err := ParamGrid{"n_neighbors": {1, 1.0, 3}}.Combinations()
	require.NoError(t, err)

	keys := make(map[string]bool)
	for _, combo := range combos {
		keys[combo.Key()] = true
	}
	assert.Len(t, keys, 3)
}
