package main

import (
	"github.com/spf13/cobra"

	"imbalancecv/internal/experiment"
)

func newCVCommand(opts *globalOptions) *cobra.Command {
	var (
		algorithm string
		sets      []string
	)

	cmd := &cobra.Command{
		Use:   "cv [data.csv]",
		Short: "Cross-validate a single parameter combination",
		Example: `  gridcv cv data.csv --algorithm knn --set n_neighbors=3 --set metric=manhattan
  gridcv cv -c config.yaml --set max_depth=4 -a tree`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseSet(sets)
			if err != nil {
				return err
			}

			cfg, err := loadConfig(opts, args, func(cfg *experiment.Config) {
				if cmd.Flags().Changed("algorithm") {
					cfg.Model.Algorithm = algorithm
				}
				cfg.CrossValidation.Verbose = true
			})
			if err != nil {
				return err
			}

			runner := experiment.NewRunner(cfg, cmd.OutOrStdout(), nil)
			dataset, err := runner.LoadDataset()
			if err != nil {
				return err
			}
			_, err = runner.Evaluate(dataset, params)
			return err
		},
	}

	cmd.Flags().StringVarP(&algorithm, "algorithm", "a", "knn", "Model algorithm (knn|tree|forest|bayes)")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Model parameter as name=value (repeatable)")

	return cmd
}
