package main

import (
	"github.com/spf13/cobra"
)

func newBatchCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "batch <tasks.yaml>",
		Short: "Score a list of tasks and print them highest priority first",
		Long: `Score every task in the file against one user state.

The file holds a "tasks" list and a "userState" object. Tasks are scored one
after another and printed by descending priority; equal scores keep file order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := loadBatchFile(args[0])
			if err != nil {
				return err
			}
			items := opts.predictor().PredictBatch(cmd.Context(), b.Tasks, b.UserState)
			return printJSON(cmd.OutOrStdout(), items)
		},
	}
}
