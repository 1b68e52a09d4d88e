package services

import "github.com/neuroflow/backend/internal/models"

// Priority tiers.
const (
	PriorityHigh       = "high"
	PriorityMediumHigh = "medium_high"
	PriorityMedium     = "medium"
	PriorityLow        = "low"
)

// Completion tiers.
const (
	CompletionExcellent = "excellent"
	CompletionGood      = "good"
	CompletionModerate  = "moderate"
	CompletionLow       = "low"
)

type Interpretation struct {
	PriorityTier     string `json:"priority_tier"`
	PriorityAdvice   string `json:"priority_advice"`
	CompletionTier   string `json:"completion_tier"`
	CompletionAdvice string `json:"completion_advice"`
}

// PriorityTier buckets a priority score. Bounds are exclusive.
func PriorityTier(score float64) (tier, advice string) {
	switch {
	case score > 0.8:
		return PriorityHigh, "This task needs immediate attention."
	case score > 0.6:
		return PriorityMediumHigh, "This is an important task. Consider scheduling it for today or tomorrow."
	case score > 0.4:
		return PriorityMedium, "This task has moderate priority. Schedule it when convenient."
	default:
		return PriorityLow, "This task can wait. Focus on higher priority items first."
	}
}

// CompletionTier buckets a completion likelihood. Bounds are exclusive.
func CompletionTier(likelihood float64) (tier, advice string) {
	switch {
	case likelihood > 0.8:
		return CompletionExcellent, "Your current state is a good fit for this task."
	case likelihood > 0.6:
		return CompletionGood, "You're in decent shape for this task. Consider optimizing conditions."
	case likelihood > 0.4:
		return CompletionModerate, "This might be challenging right now. Consider breaking it into smaller tasks."
	default:
		return CompletionLow, "Conditions aren't ideal. Postpone or break down this task."
	}
}

// Interpret labels a prediction for display.
func Interpret(p *models.PredictionResult) Interpretation {
	var in Interpretation
	in.PriorityTier, in.PriorityAdvice = PriorityTier(p.PriorityScore)
	in.CompletionTier, in.CompletionAdvice = CompletionTier(p.CompletionLikelihood)
	return in
}
