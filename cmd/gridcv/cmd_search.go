package main

import (
	"github.com/spf13/cobra"

	"imbalancecv/internal/experiment"
)

func newSearchCommand(opts *globalOptions) *cobra.Command {
	var (
		scoring   string
		algorithm string
		export    string
		verbose   bool
	)

	cmd := &cobra.Command{
		Use:   "search [data.csv]",
		Short: "Grid-search the configured parameter grid",
		Long: `Evaluate every combination of the configured parameter grid with
stratified cross-validation and report according to the scoring mode:

  all        every combination with its mean recall, precision and F1
  custom     combinations with recall > 0.5 and precision > 0.2
  recall     the combinations with the highest mean recall
  precision  the combinations with the highest mean precision
  f1         the combinations with the highest mean F1`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts, args, func(cfg *experiment.Config) {
				if cmd.Flags().Changed("scoring") {
					cfg.Search.Scoring = scoring
				}
				if cmd.Flags().Changed("algorithm") {
					cfg.Model.Algorithm = algorithm
				}
				if cmd.Flags().Changed("export") {
					cfg.Output.Export = export
				}
				if verbose {
					cfg.CrossValidation.Verbose = true
				}
			})
			if err != nil {
				return err
			}

			_, err = experiment.NewRunner(cfg, cmd.OutOrStdout(), nil).Run()
			return err
		},
	}

	cmd.Flags().StringVarP(&scoring, "scoring", "s", "f1", "Scoring mode (all|custom|recall|precision|f1)")
	cmd.Flags().StringVarP(&algorithm, "algorithm", "a", "knn", "Model algorithm (knn|tree|forest|bayes)")
	cmd.Flags().StringVarP(&export, "export", "o", "", "Write results to this CSV file")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print per-fold scores of every combination")

	return cmd
}
