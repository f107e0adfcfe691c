package experiment

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// EnvPrefix prefixes every environment override, e.g. GRIDCV_SEARCH_SCORING.
const EnvPrefix = "GRIDCV"

type Config struct {
	Data            DataConfig            `yaml:"data" envconfig:"DATA"`
	Model           ModelConfig           `yaml:"model" envconfig:"MODEL"`
	Pipeline        PipelineConfig        `yaml:"pipeline" envconfig:"PIPELINE"`
	CrossValidation CrossValidationConfig `yaml:"cross_validation" envconfig:"CROSS_VALIDATION"`
	Search          SearchConfig          `yaml:"search" envconfig:"SEARCH"`
	Output          OutputConfig          `yaml:"output" envconfig:"OUTPUT"`
}

type DataConfig struct {
	File string `yaml:"file" envconfig:"FILE" validate:"required"`
	// LabelColumn defaults to the last column when empty.
	LabelColumn   string `yaml:"label_column" envconfig:"LABEL_COLUMN"`
	PositiveLabel string `yaml:"positive_label" envconfig:"POSITIVE_LABEL" validate:"required"`
}

type ModelConfig struct {
	Algorithm string           `yaml:"algorithm" envconfig:"ALGORITHM" validate:"required,oneof=knn tree forest bayes KNN DecisionTree RandomForest NaiveBayes"`
	ParamGrid map[string][]any `yaml:"param_grid" ignored:"true"`
}

type PipelineConfig struct {
	Scaler         string          `yaml:"scaler" envconfig:"SCALER" validate:"omitempty,oneof=standard standardized minmax normalized robust none raw"`
	Resampler      ResamplerConfig `yaml:"resampler" envconfig:"RESAMPLER"`
	RemoveOutliers bool            `yaml:"remove_outliers" envconfig:"REMOVE_OUTLIERS"`
	// PCAComponents disables dimensionality reduction when zero.
	PCAComponents int `yaml:"pca_components" envconfig:"PCA_COMPONENTS" validate:"gte=0"`
}

type ResamplerConfig struct {
	Method     string `yaml:"method" envconfig:"METHOD" validate:"omitempty,oneof=none random_over random_under smote nearmiss"`
	KNeighbors int    `yaml:"k_neighbors" envconfig:"K_NEIGHBORS" validate:"gte=0"`
	Seed       int64  `yaml:"seed" envconfig:"SEED"`
}

type CrossValidationConfig struct {
	Folds   int   `yaml:"folds" envconfig:"FOLDS" validate:"gte=2"`
	Shuffle bool  `yaml:"shuffle" envconfig:"SHUFFLE"`
	Seed    int64 `yaml:"seed" envconfig:"SEED"`
	Verbose bool  `yaml:"verbose" envconfig:"VERBOSE"`
}

type SearchConfig struct {
	Scoring string `yaml:"scoring" envconfig:"SCORING" validate:"required,oneof=all custom recall precision f1"`
}

type OutputConfig struct {
	// Export is the path of the results CSV; empty disables the export.
	Export string `yaml:"export" envconfig:"EXPORT"`
}

func Default() *Config {
	return &Config{
		Data: DataConfig{PositiveLabel: "1"},
		Model: ModelConfig{
			Algorithm: "knn",
		},
		Pipeline: PipelineConfig{
			Scaler:    "standard",
			Resampler: ResamplerConfig{Method: "none", KNeighbors: 5, Seed: 42},
		},
		CrossValidation: CrossValidationConfig{Folds: 5, Seed: 42},
		Search:          SearchConfig{Scoring: "f1"},
	}
}

// Load reads the YAML file at path over the defaults, applies environment
// overrides and validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read is Load without validation, for callers that apply further overrides.
func Read(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	messages := make([]string, len(fieldErrors))
	for i, fe := range fieldErrors {
		messages[i] = formatFieldError(fe)
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(messages, "; "))
}

func formatFieldError(fe validator.FieldError) string {
	field := fe.Namespace()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
