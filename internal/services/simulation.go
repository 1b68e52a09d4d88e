package services

import (
	"context"

	"github.com/neuroflow/backend/internal/models"
)

// DailyProgress is the batch ranking for each part of a sample day.
type DailyProgress struct {
	Morning   []BatchItem `json:"morning"`
	Afternoon []BatchItem `json:"afternoon"`
	Evening   []BatchItem `json:"evening"`
}

// SampleDayTasks returns the fixed task list used by the daily simulation.
func SampleDayTasks() []models.TaskDescription {
	return []models.TaskDescription{
		{Title: "Morning email check", EstimatedDurationMin: 15, Importance: 0.4, EnergyRequired: models.EnergyLow},
		{Title: "Important project work", EstimatedDurationMin: 90, Importance: 0.9, EnergyRequired: models.EnergyHigh},
		{Title: "Team meeting", EstimatedDurationMin: 60, Importance: 0.7, EnergyRequired: models.EnergyMedium},
		{Title: "Quick admin tasks", EstimatedDurationMin: 20, Importance: 0.3, EnergyRequired: models.EnergyLow},
		{Title: "Creative brainstorming", EstimatedDurationMin: 45, Importance: 0.8, EnergyRequired: models.EnergyHigh},
	}
}

var (
	morningState   = models.UserState{Energy: 0.8, Mood: 0.7, MedicationTaken: true, Focus: 0.8}
	afternoonState = models.UserState{Energy: 0.6, Mood: 0.8, MedicationTaken: true, Focus: 0.9}
	eveningState   = models.UserState{Energy: 0.4, Mood: 0.6, MedicationTaken: false, Focus: 0.5}
)

// SimulateDailyProgress ranks the sample tasks across morning, afternoon and
// evening states, two, two and one task respectively.
func (p *Predictor) SimulateDailyProgress(ctx context.Context) DailyProgress {
	tasks := SampleDayTasks()
	return DailyProgress{
		Morning:   p.PredictBatch(ctx, tasks[:2], morningState),
		Afternoon: p.PredictBatch(ctx, tasks[2:4], afternoonState),
		Evening:   p.PredictBatch(ctx, tasks[4:], eveningState),
	}
}
