package models

import (
	"encoding/json"
	"math"
	"time"

	"github.com/google/uuid"
)

// Prediction sources as reported on the wire.
const (
	SourceTrainedModel = "trained_ml_models"
	SourceFallback     = "algorithmic_fallback"
)

// Confidence labels.
const (
	ConfidenceLow    = "low"
	ConfidenceMedium = "medium"
	ConfidenceHigh   = "high"
)

type Reasoning struct {
	Method              string   `json:"method,omitempty"`
	ADHDRecommendations []string `json:"adhd_recommendations,omitempty"`
}

// PredictionResult is produced once per request and never cached.
// PriorityScore and CompletionLikelihood are always within [0, 1].
type PredictionResult struct {
	PriorityScore        float64    `json:"priorityScore"`
	CompletionLikelihood float64    `json:"completionLikelihood"`
	PredictionSource     string     `json:"predictionSource"`
	Confidence           string     `json:"confidence"`
	Reasoning            *Reasoning `json:"reasoning,omitempty"`
}

// Recommendations returns the reasoning strings, or nil when none were attached.
func (p *PredictionResult) Recommendations() []string {
	if p == nil || p.Reasoning == nil {
		return nil
	}
	return p.Reasoning.ADHDRecommendations
}

// NormalizeConfidence maps anything other than low/medium/high to medium.
func NormalizeConfidence(c string) string {
	switch c {
	case ConfidenceLow, ConfidenceMedium, ConfidenceHigh:
		return c
	default:
		return ConfidenceMedium
	}
}

// Clamp01 limits v to [0, 1]. NaN maps to 0.
func Clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ConnectionStatus is the outcome of a health probe against the model server.
type ConnectionStatus struct {
	Connected         bool      `json:"connected"`
	ModelsLoaded      bool      `json:"models_loaded"`
	Service           string    `json:"service,omitempty"`
	FeaturesAvailable int       `json:"features_available,omitempty"`
	Timestamp         string    `json:"timestamp,omitempty"`
	Error             string    `json:"error,omitempty"`
	CheckedAt         time.Time `json:"checked_at"`
}

// ModelMetadata holds the offline evaluation figures the model server reports
// about itself. They are display labels and are never computed locally.
type ModelMetadata struct {
	PriorityR2Score   float64 `json:"priority_r2_score"`
	CompletionR2Score float64 `json:"completion_r2_score"`
	TrainingDate      string  `json:"training_date"`
}

// Model info sources.
const (
	ModelInfoFromService = "ml_service"
	ModelInfoDemo        = "demo"
)

type ModelInfo struct {
	FeatureCount  int             `json:"feature_count"`
	ModelMetadata ModelMetadata   `json:"model_metadata"`
	Source        string          `json:"source"`
	Raw           json.RawMessage `json:"raw,omitempty"`
}

// DemoModelInfo returns the static figures shown while the model server is
// unreachable.
func DemoModelInfo() ModelInfo {
	return ModelInfo{
		FeatureCount: 31,
		ModelMetadata: ModelMetadata{
			PriorityR2Score:   0.885,
			CompletionR2Score: 0.875,
		},
		Source: ModelInfoDemo,
	}
}

// PredictionRecord is one row of prediction history.
type PredictionRecord struct {
	ID                   uuid.UUID       `json:"id"`
	TaskTitle            string          `json:"task_title"`
	PriorityScore        float64         `json:"priority_score"`
	CompletionLikelihood float64         `json:"completion_likelihood"`
	PredictionSource     string          `json:"prediction_source"`
	Confidence           string          `json:"confidence"`
	FallbackReason       string          `json:"fallback_reason,omitempty"`
	Task                 json.RawMessage `json:"task"`
	UserState            json.RawMessage `json:"user_state"`
	CreatedAt            time.Time       `json:"created_at"`
}
