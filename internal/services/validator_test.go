package services

import (
	"errors"
	"testing"
)

func newTestValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := NewValidator()
	if err != nil {
		t.Fatalf("NewValidator: %v", err)
	}
	return v
}

const validUserState = `{"mood":0.7,"energy":0.8,"focus":0.6,"stressLevel":0.3,"sleepQuality":0.8,"medicationTaken":true,"distractions":2}`

func TestValidatePredict_Valid(t *testing.T) {
	v := newTestValidator(t)

	body := `{"task":{"title":"Prepare presentation","description":"Slides and handouts","estimatedDurationMin":45,
		"importance":0.8,"urgency":0.7,"energyRequired":"high","category":"work","contextSwitchingDifficulty":0.4,
		"dueDate":"2026-10-14T18:00:00Z"},"userState":` + validUserState + `}`
	if err := v.Validate(SchemaPredict, []byte(body)); err != nil {
		t.Fatalf("expected valid predict request, got: %v", err)
	}
}

func TestValidatePredict_Invalid(t *testing.T) {
	v := newTestValidator(t)

	cases := []struct {
		name string
		body string
	}{
		{
			name: "not json",
			body: `{"task":`,
		},
		{
			name: "missing userState",
			body: `{"task":{"title":"x","estimatedDurationMin":10,"importance":0.5,"energyRequired":"low"}}`,
		},
		{
			name: "importance above 1",
			body: `{"task":{"title":"x","estimatedDurationMin":10,"importance":1.5,"energyRequired":"low"},"userState":` + validUserState + `}`,
		},
		{
			name: "negative duration",
			body: `{"task":{"title":"x","estimatedDurationMin":-5,"importance":0.5,"energyRequired":"low"},"userState":` + validUserState + `}`,
		},
		{
			name: "unknown energy level",
			body: `{"task":{"title":"x","estimatedDurationMin":10,"importance":0.5,"energyRequired":"extreme"},"userState":` + validUserState + `}`,
		},
		{
			name: "unknown field (additionalProperties: false)",
			body: `{"task":{"title":"x","estimatedDurationMin":10,"importance":0.5,"energyRequired":"low","color":"red"},"userState":` + validUserState + `}`,
		},
		{
			name: "negative distractions",
			body: `{"task":{"title":"x","estimatedDurationMin":10,"importance":0.5,"energyRequired":"low"},
				"userState":{"mood":0.7,"energy":0.8,"focus":0.6,"stressLevel":0.3,"sleepQuality":0.8,"medicationTaken":true,"distractions":-1}}`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Validate(SchemaPredict, []byte(tc.body))
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !errors.Is(err, ErrValidation) {
				t.Errorf("expected ErrValidation, got: %v", err)
			}
		})
	}
}

func TestValidateBatch(t *testing.T) {
	v := newTestValidator(t)

	ok := `{"tasks":[{"title":"a","estimatedDurationMin":10,"importance":0.5,"energyRequired":"low"},
		{"title":"b","estimatedDurationMin":90,"importance":0.9,"energyRequired":"high"}],"userState":` + validUserState + `}`
	if err := v.Validate(SchemaBatch, []byte(ok)); err != nil {
		t.Fatalf("expected valid batch, got: %v", err)
	}

	empty := `{"tasks":[],"userState":` + validUserState + `}`
	if err := v.Validate(SchemaBatch, []byte(empty)); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for empty batch, got: %v", err)
	}
}

func TestValidateReadiness(t *testing.T) {
	v := newTestValidator(t)

	if err := v.Validate(SchemaReadiness, []byte(`{"userState":`+validUserState+`}`)); err != nil {
		t.Fatalf("expected valid readiness request, got: %v", err)
	}
	for _, body := range []string{
		`{}`,
		`{"userState":{"mood":0.5}}`,
		`{"userState":` + validUserState + `,"task":{}}`,
	} {
		if err := v.Validate(SchemaReadiness, []byte(body)); !errors.Is(err, ErrValidation) {
			t.Errorf("expected ErrValidation for %s, got: %v", body, err)
		}
	}
}

func TestValidateUnknownSchema(t *testing.T) {
	v := newTestValidator(t)
	err := v.Validate("nope", []byte(`{}`))
	if err == nil || errors.Is(err, ErrValidation) {
		t.Fatalf("expected plain error for unknown schema, got: %v", err)
	}
}
