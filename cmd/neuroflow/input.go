package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/neuroflow/backend/internal/models"
)

// requestFile is the on-disk form of a single prediction request. JSON files
// parse too since YAML is a superset.
type requestFile struct {
	Task      models.TaskDescription `yaml:"task"`
	UserState models.UserState       `yaml:"userState"`
}

// batchFile is the on-disk form of a batch request.
type batchFile struct {
	Tasks     []models.TaskDescription `yaml:"tasks"`
	UserState models.UserState         `yaml:"userState"`
}

func loadYAML(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func loadRequestFile(path string) (requestFile, error) {
	var req requestFile
	if err := loadYAML(path, &req); err != nil {
		return req, err
	}
	return req, validateRequest(req.Task, req.UserState)
}

func loadBatchFile(path string) (batchFile, error) {
	var b batchFile
	if err := loadYAML(path, &b); err != nil {
		return b, err
	}
	if len(b.Tasks) == 0 {
		return b, fmt.Errorf("%s: no tasks", path)
	}
	if err := b.UserState.Validate(); err != nil {
		return b, fmt.Errorf("userState: %w", err)
	}
	for i, t := range b.Tasks {
		if err := t.Validate(); err != nil {
			return b, fmt.Errorf("tasks[%d]: %w", i, err)
		}
	}
	return b, nil
}

func validateRequest(task models.TaskDescription, state models.UserState) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("task: %w", err)
	}
	if err := state.Validate(); err != nil {
		return fmt.Errorf("userState: %w", err)
	}
	return nil
}

// requestFlags lets a single request be given inline instead of via --file.
type requestFlags struct {
	file string

	title          string
	duration       float64
	importance     float64
	urgency        float64
	energyRequired string
	category       string

	mood         float64
	energy       float64
	focus        float64
	stress       float64
	sleep        float64
	medication   bool
	distractions int
}

func (f *requestFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.title, "title", "", "Task title")
	fl.Float64Var(&f.duration, "duration", 30, "Estimated duration in minutes")
	fl.Float64Var(&f.importance, "importance", 0.5, "Task importance in [0,1]")
	fl.Float64Var(&f.urgency, "urgency", models.DefaultUrgency, "Task urgency in [0,1]")
	fl.StringVar(&f.energyRequired, "energy-required", models.EnergyMedium, "Energy the task needs: low, medium or high")
	fl.StringVar(&f.category, "category", "", "Task category")

	f.registerState(cmd)
}

// registerState adds --file and the user state flags.
func (f *requestFlags) registerState(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.file, "file", "f", "", "YAML or JSON request file (task and/or userState)")

	fl.Float64Var(&f.mood, "mood", 0.5, "Current mood in [0,1]")
	fl.Float64Var(&f.energy, "energy", 0.5, "Current energy in [0,1]")
	fl.Float64Var(&f.focus, "focus", 0.5, "Current focus in [0,1]")
	fl.Float64Var(&f.stress, "stress", 0.5, "Current stress level in [0,1]")
	fl.Float64Var(&f.sleep, "sleep", 0.5, "Last night's sleep quality in [0,1]")
	fl.BoolVar(&f.medication, "medication", false, "Medication taken today")
	fl.IntVar(&f.distractions, "distractions", 0, "Number of current distractions")
}

func (f *requestFlags) request(cmd *cobra.Command) (requestFile, error) {
	if f.file != "" {
		return loadRequestFile(f.file)
	}
	req := requestFile{
		Task: models.TaskDescription{
			Title:                f.title,
			EstimatedDurationMin: f.duration,
			Importance:           f.importance,
			EnergyRequired:       f.energyRequired,
			Category:             f.category,
		},
		UserState: f.flagState(),
	}
	if cmd.Flags().Changed("urgency") {
		req.Task.Urgency = models.Float(f.urgency)
	}
	return req, validateRequest(req.Task, req.UserState)
}

func (f *requestFlags) flagState() models.UserState {
	return models.UserState{
		Mood:            f.mood,
		Energy:          f.energy,
		Focus:           f.focus,
		StressLevel:     f.stress,
		SleepQuality:    f.sleep,
		MedicationTaken: f.medication,
		Distractions:    f.distractions,
	}
}

// userState returns only the state half, from the userState key of --file or
// from the state flags.
func (f *requestFlags) userState() (models.UserState, error) {
	state := f.flagState()
	if f.file != "" {
		var req requestFile
		if err := loadYAML(f.file, &req); err != nil {
			return state, err
		}
		state = req.UserState
	}
	if err := state.Validate(); err != nil {
		return state, fmt.Errorf("userState: %w", err)
	}
	return state, nil
}
