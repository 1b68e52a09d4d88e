package main

import "github.com/spf13/cobra"

func newSimulateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "simulate",
		Short: "Rank the sample day's tasks across morning, afternoon and evening",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printJSON(cmd.OutOrStdout(), opts.predictor().SimulateDailyProgress(cmd.Context()))
		},
	}
}
