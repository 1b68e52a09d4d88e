package models

import "fmt"

// UserState is a self-reported snapshot taken at request time.
type UserState struct {
	Mood            float64 `json:"mood" yaml:"mood"`
	Energy          float64 `json:"energy" yaml:"energy"`
	Focus           float64 `json:"focus" yaml:"focus"`
	StressLevel     float64 `json:"stressLevel" yaml:"stressLevel"`
	SleepQuality    float64 `json:"sleepQuality" yaml:"sleepQuality"`
	MedicationTaken bool    `json:"medicationTaken" yaml:"medicationTaken"`
	Distractions    int     `json:"distractions,omitempty" yaml:"distractions,omitempty"`
}

// Validate rejects values outside the documented ranges.
func (s UserState) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"mood", s.Mood},
		{"energy", s.Energy},
		{"focus", s.Focus},
		{"stressLevel", s.StressLevel},
		{"sleepQuality", s.SleepQuality},
	}
	for _, f := range fields {
		if err := unitRange(f.name, f.v); err != nil {
			return err
		}
	}
	if s.Distractions < 0 {
		return fmt.Errorf("%w: distractions must be >= 0", ErrInvalidInput)
	}
	return nil
}
