package main

import "github.com/spf13/cobra"

func newCompareCommand(opts *rootOptions) *cobra.Command {
	flags := &requestFlags{}

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Score one task with the model and the local formulas side by side",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := flags.request(cmd)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), opts.predictor().Compare(cmd.Context(), req.Task, req.UserState))
		},
	}

	flags.register(cmd)
	return cmd
}
