package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/neuroflow/backend/internal/models"
)

func TestReadiness(t *testing.T) {
	cases := []struct {
		name      string
		state     models.UserState
		wantScore float64
		wantTier  string
		wantRecs  []string
		wantCauts []string
	}{
		{
			name:      "rested and focused",
			state:     models.UserState{Mood: 0.9, Energy: 0.9, Focus: 0.9, StressLevel: 0.1, SleepQuality: 0.9, MedicationTaken: true},
			wantScore: 0.9,
			wantTier:  ReadinessExcellent,
			wantRecs:  []string{RecommendComplexWork, RecommendHardestFirst, RecommendHyperfocus, RecommendTimers},
			wantCauts: []string{},
		},
		{
			name:      "rough day hits both caps",
			state:     models.UserState{Mood: 0.3, Energy: 0.2, Focus: 0.3, StressLevel: 0.8, SleepQuality: 0.3, Distractions: 7},
			wantScore: 0.26,
			wantTier:  ReadinessChallenging,
			wantRecs:  []string{RecommendLowEffort, RecommendMedication, RecommendBreathing, RecommendQuietSpace, RecommendNoiseBlocking},
			wantCauts: []string{CautionNoNewProjects, CautionUnmedicated, CautionHighStakes, CautionComplexProblems},
		},
		{
			name:      "exactly on every threshold",
			state:     models.UserState{Mood: 0.5, Energy: 0.5, Focus: 0.5, StressLevel: 0.5, SleepQuality: 0.5, MedicationTaken: true, Distractions: 5},
			wantScore: 0.5,
			wantTier:  ReadinessModerate,
			wantRecs:  []string{},
			wantCauts: []string{},
		},
		{
			name:      "high energy but scattered",
			state:     models.UserState{Mood: 0.7, Energy: 0.8, Focus: 0.3, StressLevel: 0.7, SleepQuality: 0.6, MedicationTaken: true},
			wantScore: 0.54,
			wantTier:  ReadinessModerate,
			wantRecs:  []string{RecommendBreathing, RecommendFocusBlocks, RecommendMicroTasks},
			wantCauts: []string{CautionHighStakes},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Readiness(tc.state)
			assert.InDelta(t, tc.wantScore, got.Score, 1e-9)
			assert.Equal(t, tc.wantTier, got.Tier)
			assert.Equal(t, tc.wantRecs, got.Recommendations)
			assert.Equal(t, tc.wantCauts, got.Cautions)
		})
	}
}

func TestReadinessTierBoundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{0.81, ReadinessExcellent},
		{0.8, ReadinessGood},
		{0.61, ReadinessGood},
		{0.6, ReadinessModerate},
		{0.41, ReadinessModerate},
		{0.4, ReadinessChallenging},
		{0, ReadinessChallenging},
	}
	for _, c := range cases {
		tier, advice := ReadinessTier(c.score)
		assert.Equal(t, c.want, tier, "score %v", c.score)
		assert.NotEmpty(t, advice)
	}
}
