package services

import (
	"github.com/neuroflow/backend/internal/models"
)

// Fixed weights of the fallback formula. They are not learned.
const (
	fallbackImportanceWeight = 0.5
	fallbackUrgencyWeight    = 0.3
	fallbackEnergyWeight     = 0.2
	fallbackMedicationBoost  = 0.10

	fallbackCompletionEnergyWeight = 0.4
	fallbackCompletionMoodWeight   = 0.3
	fallbackCompletionBase         = 0.2

	// Duration above which the Pomodoro recommendation is attached.
	pomodoroThresholdMin = 60
)

// Recommendation templates attached by the fallback scorer.
const (
	RecommendMedication     = "Consider taking ADHD medication if prescribed"
	RecommendMedicationDone = "Great! Medication can help with focus"
	RecommendEnergyMatch    = "Try to match task energy requirements with your current energy level"
	RecommendPomodoro       = "Consider using Pomodoro technique for longer tasks"
	RecommendSingleSession  = "This task should be manageable in one session"

	fallbackMethod = "Simple algorithmic calculation"
)

// DurationFactor is the step function shared by every local formula:
// up to 30 minutes 1.0, up to 60 minutes 0.8, otherwise 0.6.
func DurationFactor(durationMin float64) float64 {
	switch {
	case durationMin <= 30:
		return 1.0
	case durationMin <= 60:
		return 0.8
	default:
		return 0.6
	}
}

func medicationBoost(taken bool, boost float64) float64 {
	if taken {
		return boost
	}
	return 0
}

// FallbackPriority computes the fallback priority score in [0, 1].
func FallbackPriority(task models.TaskDescription, state models.UserState) float64 {
	raw := task.Importance*fallbackImportanceWeight +
		task.UrgencyOrDefault()*fallbackUrgencyWeight +
		state.Energy*fallbackEnergyWeight +
		medicationBoost(state.MedicationTaken, fallbackMedicationBoost)
	return models.Clamp01(raw * DurationFactor(task.EstimatedDurationMin))
}

// FallbackCompletion computes the fallback completion likelihood in [0, 1].
func FallbackCompletion(task models.TaskDescription, state models.UserState) float64 {
	raw := state.Energy*fallbackCompletionEnergyWeight +
		state.Mood*fallbackCompletionMoodWeight +
		medicationBoost(state.MedicationTaken, fallbackMedicationBoost) +
		fallbackCompletionBase
	return models.Clamp01(raw * DurationFactor(task.EstimatedDurationMin))
}

// FallbackPrediction scores a task without any external dependency. It is a
// pure function of its two inputs.
func FallbackPrediction(task models.TaskDescription, state models.UserState) *models.PredictionResult {
	recs := make([]string, 0, 3)
	if state.MedicationTaken {
		recs = append(recs, RecommendMedicationDone)
	} else {
		recs = append(recs, RecommendMedication)
	}
	recs = append(recs, RecommendEnergyMatch)
	if task.EstimatedDurationMin > pomodoroThresholdMin {
		recs = append(recs, RecommendPomodoro)
	} else {
		recs = append(recs, RecommendSingleSession)
	}

	return &models.PredictionResult{
		PriorityScore:        FallbackPriority(task, state),
		CompletionLikelihood: FallbackCompletion(task, state),
		PredictionSource:     models.SourceFallback,
		Confidence:           models.ConfidenceMedium,
		Reasoning: &models.Reasoning{
			Method:              fallbackMethod,
			ADHDRecommendations: recs,
		},
	}
}
