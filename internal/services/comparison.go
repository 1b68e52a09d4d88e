package services

import (
	"context"

	"github.com/neuroflow/backend/internal/models"
)

// Comparison method labels.
const (
	MethodModel       = "model"
	MethodAlgorithmic = "enhanced_algorithmic"
	MethodBasic       = "basic_priority"
)

const (
	algorithmicMedicationBoost = 0.15
	basicImportanceWeight      = 0.7
	basicUrgencyWeight         = 0.3
)

// MethodScore is one row of a method comparison. CompletionLikelihood is nil
// for methods that cannot estimate completion.
type MethodScore struct {
	Method               string   `json:"method"`
	PriorityScore        float64  `json:"priorityScore"`
	CompletionLikelihood *float64 `json:"completionLikelihood"`
	PredictionSource     string   `json:"predictionSource,omitempty"`
}

type Comparison struct {
	Methods        []MethodScore `json:"methods"`
	FallbackReason FailureReason `json:"fallback_reason,omitempty"`
}

// AlgorithmicScores is the richer closed-form blend shown next to the model.
// Unlike the fallback it also weighs focus and stress.
func AlgorithmicScores(task models.TaskDescription, state models.UserState) (priority, completion float64) {
	boost := medicationBoost(state.MedicationTaken, algorithmicMedicationBoost)
	factor := DurationFactor(task.EstimatedDurationMin)

	priority = models.Clamp01((task.Importance*0.4 +
		task.UrgencyOrDefault()*0.3 +
		state.Energy*0.2 +
		boost) * factor)

	completion = models.Clamp01((state.Energy*0.3 +
		state.Mood*0.25 +
		state.Focus*0.25 +
		(1-state.StressLevel)*0.1 +
		boost) * factor)
	return priority, completion
}

// BasicPriority is a plain importance/urgency blend with no user state.
func BasicPriority(task models.TaskDescription) float64 {
	return models.Clamp01(task.Importance*basicImportanceWeight + task.UrgencyOrDefault()*basicUrgencyWeight)
}

// Compare scores one task with every deterministic method. The model row
// carries the fallback result when the model server is unavailable.
func (p *Predictor) Compare(ctx context.Context, task models.TaskDescription, state models.UserState) Comparison {
	res, out := p.PredictWithFallback(ctx, task, state)
	algoPriority, algoCompletion := AlgorithmicScores(task, state)

	completion := res.CompletionLikelihood
	return Comparison{
		FallbackReason: out.Reason,
		Methods: []MethodScore{
			{
				Method:               MethodModel,
				PriorityScore:        res.PriorityScore,
				CompletionLikelihood: &completion,
				PredictionSource:     res.PredictionSource,
			},
			{
				Method:               MethodAlgorithmic,
				PriorityScore:        algoPriority,
				CompletionLikelihood: &algoCompletion,
			},
			{
				Method:        MethodBasic,
				PriorityScore: BasicPriority(task),
			},
		},
	}
}
