package main

import (
	"github.com/spf13/cobra"

	"github.com/neuroflow/backend/internal/models"
	"github.com/neuroflow/backend/internal/services"
)

type predictOutput struct {
	Prediction     *models.PredictionResult `json:"prediction"`
	Interpretation services.Interpretation  `json:"interpretation"`
	FallbackReason services.FailureReason   `json:"fallback_reason,omitempty"`
}

func newPredictCommand(opts *rootOptions) *cobra.Command {
	flags := &requestFlags{}

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Score one task for the given user state",
		Long: `Score one task. The task and user state come from --file or from flags.

When the model server cannot answer, the local fallback formula is used and
fallback_reason says why.`,
		Example: `  neuroflow predict --title "Write report" --duration 45 --importance 0.8 --urgency 0.7 \
    --energy-required high --energy 0.7 --mood 0.6 --medication
  neuroflow predict -f request.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := flags.request(cmd)
			if err != nil {
				return err
			}
			res, out := opts.predictor().PredictWithFallback(cmd.Context(), req.Task, req.UserState)
			return printJSON(cmd.OutOrStdout(), predictOutput{
				Prediction:     res,
				Interpretation: services.Interpret(res),
				FallbackReason: out.Reason,
			})
		},
	}

	flags.register(cmd)
	return cmd
}
