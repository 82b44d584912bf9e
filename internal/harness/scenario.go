package harness

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario is one compilation test case.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// IR is an inline IR document. Exactly one of IR and IRFile is set.
	IR map[string]any `yaml:"ir,omitempty"`

	// IRFile is a JSON or YAML IR document, relative to the scenario file.
	IRFile string `yaml:"ir_file,omitempty"`

	// CompilationID fixes the compilation id. Defaults to "test-compilation-default".
	CompilationID string `yaml:"compilation_id,omitempty"`

	// Expect checks the overall outcome.
	Expect *ExpectClause `yaml:"expect,omitempty"`

	// Assertions check the compiled steps and reported issues.
	Assertions []Assertion `yaml:"assertions"`
}

// ExpectClause specifies the expected outcome. Unset fields are not checked.
type ExpectClause struct {
	Success   *bool  `yaml:"success,omitempty"`
	Stage     string `yaml:"stage,omitempty"`
	ErrorType string `yaml:"error_type,omitempty"`
}

// Assertion checks one property of the outcome.
type Assertion struct {
	Type string `yaml:"type"`

	// Count and Min are used by step_count.
	Count int `yaml:"count,omitempty"`
	Min   int `yaml:"min,omitempty"`

	// Index and StepType are used by step_type; StepType and Operation by contains_step.
	Index     int    `yaml:"index,omitempty"`
	StepType  string `yaml:"step_type,omitempty"`
	Operation string `yaml:"operation,omitempty"`

	// StepTypes is used by step_order.
	StepTypes []string `yaml:"step_types,omitempty"`

	// Code is used by warning and error.
	Code string `yaml:"code,omitempty"`

	// Feature is used by feature.
	Feature string `yaml:"feature,omitempty"`
}

// Assertion type constants.
const (
	AssertStepCount    = "step_count"
	AssertStepType     = "step_type"
	AssertStepOrder    = "step_order"
	AssertContainsStep = "contains_step"
	AssertWarning      = "warning"
	AssertError        = "error"
	AssertFeature      = "feature"
)

// LoadScenario reads and parses a scenario YAML file. An ir_file is resolved
// relative to the scenario and loaded into IR. Unknown fields are rejected.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict decoding catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.IRFile != "" && scenario.IR == nil {
		irPath := scenario.IRFile
		if !filepath.IsAbs(irPath) {
			irPath = filepath.Join(filepath.Dir(path), irPath)
		}
		doc, err := LoadDocument(irPath)
		if err != nil {
			return nil, fmt.Errorf("invalid scenario: %w", err)
		}
		scenario.IR = doc
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadDocument reads a JSON or YAML document whose top level is a mapping.
// YAML is a superset of JSON, so one decoder serves both.
func LoadDocument(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("parse %s: document is empty", path)
	}
	return doc, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	if s.Description == "" {
		return errors.New("description is required")
	}
	if s.IR == nil {
		return errors.New("ir or ir_file is required")
	}
	if s.Expect == nil && len(s.Assertions) == 0 {
		return errors.New("expect or assertions is required")
	}
	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertStepCount:
		if a.Count < 0 || a.Min < 0 {
			return fmt.Errorf("assertions[%d]: count and min must be non-negative for step_count", index)
		}
	case AssertStepType, AssertContainsStep:
		if a.StepType == "" {
			return fmt.Errorf("assertions[%d]: step_type is required for %s", index, a.Type)
		}
	case AssertStepOrder:
		if len(a.StepTypes) == 0 {
			return fmt.Errorf("assertions[%d]: step_types list is required for step_order", index)
		}
	case AssertWarning, AssertError:
		if a.Code == "" {
			return fmt.Errorf("assertions[%d]: code is required for %s", index, a.Type)
		}
	case AssertFeature:
		if a.Feature == "" {
			return fmt.Errorf("assertions[%d]: feature is required for feature", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
