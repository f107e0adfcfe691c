package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"imbalancecv/internal/experiment"
	"imbalancecv/internal/preprocessing"
)

func newOutliersCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "outliers [data.csv]",
		Short: "Report the rows the outlier filter would drop",
		Long: fmt.Sprintf(`Flag rows lying more than %.0f sample standard deviations from the
column mean in any feature, computed over the whole dataset.`, preprocessing.OutlierStdDevs),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts, args, nil)
			if err != nil {
				return err
			}

			dataset, err := experiment.NewRunner(cfg, cmd.OutOrStdout(), nil).LoadDataset()
			if err != nil {
				return err
			}

			rows := preprocessing.OutlierRows(dataset.X)
			byClass := make(map[int]int)
			for _, idx := range rows {
				byClass[dataset.Y[idx]]++
			}

			out := cmd.OutOrStdout()
			color.New(color.FgCyan, color.Bold).Fprintf(out, "Outliers: %d of %d rows\n", len(rows), len(dataset.X))
			for class, label := range dataset.Classes {
				fmt.Fprintf(out, "  %s: %d\n", label, byClass[class])
			}
			if len(rows) > 0 {
				fmt.Fprintf(out, "Rows: %v\n", rows)
			}
			return nil
		},
	}
}
