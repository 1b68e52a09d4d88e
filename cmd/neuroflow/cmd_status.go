package main

import (
	"github.com/spf13/cobra"

	"github.com/neuroflow/backend/internal/models"
)

func newStatusCommand(opts *rootOptions) *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Probe the model server health endpoint",
		Long: `Probe the model server and print the connection status.

Exits with code 3 when the server is unreachable so scripts can branch on it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := opts.predictor()
			var st models.ConnectionStatus
			if refresh {
				st = p.RefreshConnection(cmd.Context())
			} else {
				st = p.CheckConnection(cmd.Context())
			}
			if err := printJSON(cmd.OutOrStdout(), st); err != nil {
				return err
			}
			if !st.Connected {
				return &UnavailableError{BaseURL: p.BaseURL(), Reason: st.Error}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Bypass any cached status")
	return cmd
}
