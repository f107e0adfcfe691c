package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"imbalancecv/internal/experiment"
)

var version = "dev"

type globalOptions struct {
	configPath string
	debug      bool
	logJSON    bool
}

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "gridcv",
		Short: "Cross-validation and grid search for imbalanced classification",
		Long: `gridcv evaluates classifiers on imbalanced binary datasets.

Every fold scales, resamples, optionally trims outliers and reduces the
training rows before fitting a fresh model, and reports recall, precision
and F1 of the positive class.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to the YAML configuration file")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVar(&opts.logJSON, "log-json", false, "Write logs as JSON")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		slog.SetDefault(newLogger(cmd.ErrOrStderr(), opts.debug, opts.logJSON))
	}

	cmd.AddCommand(newSearchCommand(opts))
	cmd.AddCommand(newCVCommand(opts))
	cmd.AddCommand(newOutliersCommand(opts))

	return cmd
}

func newLogger(w io.Writer, debug, asJSON bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	if asJSON {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}

// loadConfig reads the configuration file and applies the data file argument
// before validating.
func loadConfig(opts *globalOptions, args []string, override func(cfg *experiment.Config)) (*experiment.Config, error) {
	cfg, err := experiment.Read(opts.configPath)
	if err != nil {
		return nil, err
	}
	if len(args) > 0 {
		cfg.Data.File = args[0]
	}
	if override != nil {
		override(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseSet turns repeated name=value flags into model parameters.
func parseSet(pairs []string) (map[string]any, error) {
	params := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --set %q: expected name=value", pair)
		}
		params[name] = strings.TrimSpace(value)
	}
	return params, nil
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
