package models

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Energy levels a task can require.
const (
	EnergyLow    = "low"
	EnergyMedium = "medium"
	EnergyHigh   = "high"
)

// Task categories offered by the dashboard.
const (
	CategoryWork     = "work"
	CategoryPersonal = "personal"
	CategoryHealth   = "health"
	CategoryCreative = "creative"
	CategoryAdmin    = "admin"
	CategorySocial   = "social"
)

// ErrInvalidInput is wrapped by every range or enum violation reported by Validate.
var ErrInvalidInput = errors.New("invalid input")

// TaskDescription is the task half of a prediction request. Field names match
// the JSON contract of the external model server.
type TaskDescription struct {
	Title                      string     `json:"title" yaml:"title"`
	Description                string     `json:"description,omitempty" yaml:"description,omitempty"`
	EstimatedDurationMin       float64    `json:"estimatedDurationMin" yaml:"estimatedDurationMin"`
	Importance                 float64    `json:"importance" yaml:"importance"`
	Urgency                    *float64   `json:"urgency,omitempty" yaml:"urgency,omitempty"`
	EnergyRequired             string     `json:"energyRequired" yaml:"energyRequired"`
	Category                   string     `json:"category,omitempty" yaml:"category,omitempty"`
	ContextSwitchingDifficulty *float64   `json:"contextSwitchingDifficulty,omitempty" yaml:"contextSwitchingDifficulty,omitempty"`
	DueDate                    *time.Time `json:"dueDate,omitempty" yaml:"dueDate,omitempty"`
}

// DefaultUrgency is used when a task carries no urgency.
const DefaultUrgency = 0.5

// UrgencyOrDefault returns the task urgency, or DefaultUrgency when unset.
func (t TaskDescription) UrgencyOrDefault() float64 {
	if t.Urgency == nil {
		return DefaultUrgency
	}
	return *t.Urgency
}

// Validate rejects values outside the documented ranges.
func (t TaskDescription) Validate() error {
	if t.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if !finite(t.EstimatedDurationMin) || t.EstimatedDurationMin <= 0 {
		return fmt.Errorf("%w: estimatedDurationMin must be a finite number > 0", ErrInvalidInput)
	}
	if err := unitRange("importance", t.Importance); err != nil {
		return err
	}
	if t.Urgency != nil {
		if err := unitRange("urgency", *t.Urgency); err != nil {
			return err
		}
	}
	if t.ContextSwitchingDifficulty != nil {
		if err := unitRange("contextSwitchingDifficulty", *t.ContextSwitchingDifficulty); err != nil {
			return err
		}
	}
	switch t.EnergyRequired {
	case EnergyLow, EnergyMedium, EnergyHigh:
	default:
		return fmt.Errorf("%w: energyRequired %q is not one of low, medium, high", ErrInvalidInput, t.EnergyRequired)
	}
	switch t.Category {
	case "", CategoryWork, CategoryPersonal, CategoryHealth, CategoryCreative, CategoryAdmin, CategorySocial:
	default:
		return fmt.Errorf("%w: unknown category %q", ErrInvalidInput, t.Category)
	}
	return nil
}

func unitRange(field string, v float64) error {
	if !finite(v) || v < 0 || v > 1 {
		return fmt.Errorf("%w: %s must be within [0, 1], got %v", ErrInvalidInput, field, v)
	}
	return nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// Float returns a pointer to v. Handy for the optional task fields.
func Float(v float64) *float64 { return &v }
