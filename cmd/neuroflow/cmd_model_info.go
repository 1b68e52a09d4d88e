package main

import (
	"github.com/spf13/cobra"

	"github.com/neuroflow/backend/internal/models"
)

func newModelInfoCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "model-info",
		Short: "Show model metadata, or the demo figures when offline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info, ok := opts.predictor().ModelInfo(cmd.Context())
			if !ok {
				demo := models.DemoModelInfo()
				info = &demo
			}
			return printJSON(cmd.OutOrStdout(), info)
		},
	}
}
