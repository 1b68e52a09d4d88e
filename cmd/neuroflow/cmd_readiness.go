package main

import (
	"github.com/spf13/cobra"

	"github.com/neuroflow/backend/internal/services"
)

func newReadinessCommand() *cobra.Command {
	flags := &requestFlags{}

	cmd := &cobra.Command{
		Use:   "readiness",
		Short: "Score how well the current state suits focused work",
		Long: `Average mood, energy, focus, calm and sleep quality into a readiness score
and list recommendations and cautions for the state. Runs locally; the model
server is not contacted.`,
		Example: `  neuroflow readiness --mood 0.7 --energy 0.8 --focus 0.6 --stress 0.3 --sleep 0.8 --medication
  neuroflow readiness -f request.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			state, err := flags.userState()
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), services.Readiness(state))
		},
	}

	flags.registerState(cmd)
	return cmd
}
