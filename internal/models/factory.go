package models

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/go-viper/mapstructure/v2"
)

var (
	ErrUnknownAlgorithm = errors.New("unknown algorithm")
	ErrInvalidParameter = errors.New("invalid parameter")
)

// Constructor builds an unfitted model from keyword hyperparameters.
type Constructor func(params map[string]any) (Model, error)

type ModelConfig struct {
	NNeighbors      int     `mapstructure:"n_neighbors"`
	Metric          string  `mapstructure:"metric"`
	MaxDepth        int     `mapstructure:"max_depth"`
	MinSamplesSplit int     `mapstructure:"min_samples_split"`
	NEstimators     int     `mapstructure:"n_estimators"`
	RandomState     int64   `mapstructure:"random_state"`
	VarSmoothing    float64 `mapstructure:"var_smoothing"`
}

var registry = map[string]struct {
	typeName string
	build    func(config ModelConfig) Model
	allowed  []string
}{
	"knn": {
		typeName: "KNN",
		build:    func(c ModelConfig) Model { return NewKNN(c.NNeighbors, c.Metric) },
		allowed:  []string{"n_neighbors", "metric"},
	},
	"tree": {
		typeName: "DecisionTree",
		build:    func(c ModelConfig) Model { return NewDecisionTree(c.MaxDepth, c.MinSamplesSplit) },
		allowed:  []string{"max_depth", "min_samples_split"},
	},
	"forest": {
		typeName: "RandomForest",
		build: func(c ModelConfig) Model {
			return NewRandomForest(c.NEstimators, c.MaxDepth, c.MinSamplesSplit, c.RandomState)
		},
		allowed: []string{"n_estimators", "max_depth", "min_samples_split", "random_state"},
	},
	"bayes": {
		typeName: "NaiveBayes",
		build:    func(c ModelConfig) Model { return NewNaiveBayes(c.VarSmoothing) },
		allowed:  []string{"var_smoothing"},
	},
}

func Algorithms() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the constructor for an algorithm name (knn, tree, forest,
// bayes) or for a model type name as reported by GetType.
func Lookup(algorithm string) (Constructor, error) {
	key, err := resolve(algorithm)
	if err != nil {
		return nil, err
	}
	return func(params map[string]any) (Model, error) {
		return New(key, params)
	}, nil
}

func New(algorithm string, params map[string]any) (Model, error) {
	key, err := resolve(algorithm)
	if err != nil {
		return nil, err
	}
	entry := registry[key]

	for name := range params {
		if !slices.Contains(entry.allowed, name) {
			return nil, fmt.Errorf("%s: unexpected parameter %q (allowed: %v)", key, name, entry.allowed)
		}
	}

	config := DefaultConfig(key)
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &config,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(params); err != nil {
		return nil, fmt.Errorf("%s: decode parameters: %w", key, err)
	}
	if err := config.validate(key); err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}

	return entry.build(config), nil
}

// validate rejects values the constructors would otherwise replace with
// defaults, so a model always runs with the parameters it is reported under.
func (c ModelConfig) validate(algorithm string) error {
	switch algorithm {
	case "knn":
		if c.NNeighbors <= 0 {
			return fmt.Errorf("%w: n_neighbors must be positive, got %d", ErrInvalidParameter, c.NNeighbors)
		}
		if c.Metric != "euclidean" && c.Metric != "manhattan" {
			return fmt.Errorf("%w: metric must be euclidean or manhattan, got %q", ErrInvalidParameter, c.Metric)
		}
	case "tree", "forest":
		if c.MaxDepth <= 0 {
			return fmt.Errorf("%w: max_depth must be positive, got %d", ErrInvalidParameter, c.MaxDepth)
		}
		if c.MinSamplesSplit < 2 {
			return fmt.Errorf("%w: min_samples_split must be at least 2, got %d", ErrInvalidParameter, c.MinSamplesSplit)
		}
		if algorithm == "forest" && c.NEstimators <= 0 {
			return fmt.Errorf("%w: n_estimators must be positive, got %d", ErrInvalidParameter, c.NEstimators)
		}
	case "bayes":
		if c.VarSmoothing <= 0 {
			return fmt.Errorf("%w: var_smoothing must be positive, got %g", ErrInvalidParameter, c.VarSmoothing)
		}
	}
	return nil
}

func DefaultConfig(algorithm string) ModelConfig {
	config := ModelConfig{}

	switch algorithm {
	case "knn":
		config.NNeighbors = 5
		config.Metric = "euclidean"
	case "tree":
		config.MaxDepth = 10
		config.MinSamplesSplit = 2
	case "forest":
		config.NEstimators = 100
		config.MaxDepth = 10
		config.MinSamplesSplit = 2
		config.RandomState = 42
	case "bayes":
		config.VarSmoothing = 1e-9
	}

	return config
}

func resolve(algorithm string) (string, error) {
	if _, ok := registry[algorithm]; ok {
		return algorithm, nil
	}
	for key, entry := range registry {
		if entry.typeName == algorithm {
			return key, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownAlgorithm, algorithm)
}
