package services

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Request schemas, named after their file in schemas/.
const (
	SchemaPredict   = "predict"
	SchemaBatch     = "batch"
	SchemaReadiness = "readiness"
)

const schemaBaseURL = "https://neuroflow.dev/schemas/"

//go:embed schemas/*.json
var schemaFS embed.FS

// Validator checks request payloads against the embedded JSON schemas before
// they are decoded into typed records.
type Validator struct {
	schemas map[string]*jsonschema.Schema
}

// NewValidator registers every embedded schema file and compiles the request schemas.
func NewValidator() (*Validator, error) {
	entries, err := fs.ReadDir(schemaFS, "schemas")
	if err != nil {
		return nil, fmt.Errorf("read embedded schemas: %w", err)
	}

	c := jsonschema.NewCompiler()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		data, err := schemaFS.ReadFile(path.Join("schemas", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %q: %w", e.Name(), err)
		}
		if err := c.AddResource(schemaBaseURL+e.Name(), bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("add schema %q: %w", e.Name(), err)
		}
	}

	schemas := make(map[string]*jsonschema.Schema)
	for _, name := range []string{SchemaPredict, SchemaBatch, SchemaReadiness} {
		s, err := c.Compile(schemaBaseURL + name + ".json")
		if err != nil {
			return nil, fmt.Errorf("compile schema %q: %w", name, err)
		}
		schemas[name] = s
	}
	return &Validator{schemas: schemas}, nil
}

// Validate performs a hard reject: it returns an error wrapping ErrValidation
// when body does not match the named schema.
func (v *Validator) Validate(name string, body []byte) error {
	schema, ok := v.schemas[name]
	if !ok {
		return fmt.Errorf("unknown schema %q", name)
	}
	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return fmt.Errorf("%w: invalid JSON: %v", ErrValidation, err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

// ErrValidation can be used with errors.Is to detect rejected payloads.
var ErrValidation = errors.New("validation failed")
