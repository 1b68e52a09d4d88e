package services

import "github.com/neuroflow/backend/internal/models"

// Readiness tiers.
const (
	ReadinessExcellent   = "excellent"
	ReadinessGood        = "good"
	ReadinessModerate    = "moderate"
	ReadinessChallenging = "challenging"
)

// Each advice list is cut to this many entries.
const maxReadinessAdvice = 5

// Readiness recommendations and cautions, in the order they are considered.
const (
	RecommendComplexWork   = "Perfect for high-energy, complex tasks"
	RecommendHardestFirst  = "Tackle your most challenging work now"
	RecommendLowEffort     = "Low energy: focus on low-effort tasks"
	RecommendBreathing     = "High stress detected: try breathing exercises"
	RecommendQuietSpace    = "Too many distractions: find a quieter space"
	RecommendNoiseBlocking = "Use noise-cancelling headphones or white noise"
	RecommendRest          = "Poor sleep: prioritize rest today"
	RecommendHyperfocus    = "Excellent focus: this is hyperfocus territory"
	RecommendTimers        = "Set timers to avoid losing track of time"
	RecommendFocusBlocks   = "Try the Pomodoro technique (25 minute focus blocks)"
	RecommendMicroTasks    = "Break tasks into 5-minute micro-tasks"
	CautionNoNewProjects   = "Avoid starting new complex projects"
	CautionUnmedicated     = "Unmedicated: use extra structure and support"
	CautionHighStakes      = "Not ideal for high-stakes decisions"
	CautionComplexProblems = "Avoid complex problem-solving"
)

// More distractions than this triggers the quiet-space advice.
const distractionCautionLimit = 5

// StateReadiness is how well a user state suits focused work right now.
type StateReadiness struct {
	Score           float64  `json:"score"`
	Tier            string   `json:"tier"`
	Advice          string   `json:"advice"`
	Recommendations []string `json:"recommendations"`
	Cautions        []string `json:"cautions"`
}

// Readiness averages mood, energy, focus, calm (1-stress) and sleep quality,
// then derives threshold advice from the individual readings.
func Readiness(s models.UserState) StateReadiness {
	score := models.Clamp01((s.Mood + s.Energy + s.Focus + (1 - s.StressLevel) + s.SleepQuality) / 5)
	tier, advice := ReadinessTier(score)

	var recs, cautions []string
	switch {
	case s.Energy > 0.7 && s.Focus > 0.7:
		recs = append(recs, RecommendComplexWork, RecommendHardestFirst)
	case s.Energy < 0.4:
		recs = append(recs, RecommendLowEffort)
		cautions = append(cautions, CautionNoNewProjects)
	}
	if !s.MedicationTaken {
		recs = append(recs, RecommendMedication)
		cautions = append(cautions, CautionUnmedicated)
	}
	if s.StressLevel > 0.6 {
		recs = append(recs, RecommendBreathing)
		cautions = append(cautions, CautionHighStakes)
	}
	if s.Distractions > distractionCautionLimit {
		recs = append(recs, RecommendQuietSpace, RecommendNoiseBlocking)
	}
	if s.SleepQuality < 0.5 {
		recs = append(recs, RecommendRest)
		cautions = append(cautions, CautionComplexProblems)
	}
	switch {
	case s.Focus > 0.8:
		recs = append(recs, RecommendHyperfocus, RecommendTimers)
	case s.Focus < 0.4:
		recs = append(recs, RecommendFocusBlocks, RecommendMicroTasks)
	}

	return StateReadiness{
		Score:           score,
		Tier:            tier,
		Advice:          advice,
		Recommendations: capAdvice(recs),
		Cautions:        capAdvice(cautions),
	}
}

// ReadinessTier buckets a readiness score. Bounds are exclusive.
func ReadinessTier(score float64) (tier, advice string) {
	switch {
	case score > 0.8:
		return ReadinessExcellent, "Excellent state for challenging tasks."
	case score > 0.6:
		return ReadinessGood, "Good state for moderate tasks."
	case score > 0.4:
		return ReadinessModerate, "Moderate state. Be strategic."
	default:
		return ReadinessChallenging, "Challenging state. Focus on self-care."
	}
}

func capAdvice(items []string) []string {
	if items == nil {
		return []string{}
	}
	if len(items) > maxReadinessAdvice {
		return items[:maxReadinessAdvice]
	}
	return items
}
