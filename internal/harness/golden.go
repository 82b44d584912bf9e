package harness

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/flowc/internal/checker"
	"github.com/roach88/flowc/internal/compiler"
	"github.com/roach88/flowc/internal/ir"
	"github.com/roach88/flowc/internal/irvalidate"
	"github.com/roach88/flowc/internal/pipeline"
	"github.com/roach88/flowc/internal/workflow"
)

// snapshot is the golden form of an outcome. Timing fields are left out.
type snapshot struct {
	ScenarioName     string                       `json:"scenario_name"`
	CompilationID    string                       `json:"compilation_id"`
	Success          bool                         `json:"success"`
	Stage            pipeline.Stage               `json:"stage"`
	ErrorType        string                       `json:"error_type,omitempty"`
	IRFingerprint    string                       `json:"ir_fingerprint,omitempty"`
	ValidationErrors []irvalidate.ValidationError `json:"validation_errors"`
	Steps            json.RawMessage              `json:"workflow_steps"`
	Warnings         []compiler.Warning           `json:"compiler_warnings"`
	Features         []string                     `json:"features"`
	CheckErrors      []checker.Issue              `json:"check_errors"`
	CheckWarnings    []checker.Issue              `json:"check_warnings"`
}

// Snapshot renders an outcome as canonical JSON. Equal outcomes always
// produce identical bytes.
func Snapshot(name string, out *pipeline.Outcome) ([]byte, error) {
	steps, err := workflow.MarshalSteps(out.Steps())
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", name, err)
	}
	snap := snapshot{
		ScenarioName:     name,
		CompilationID:    out.CompilationID,
		Success:          out.Success,
		Stage:            out.Stage,
		ErrorType:        out.ErrorType,
		IRFingerprint:    out.Fingerprint,
		ValidationErrors: out.Validation.Errors,
		Steps:            steps,
		Warnings:         []compiler.Warning{},
		Features:         []string{},
		CheckErrors:      []checker.Issue{},
		CheckWarnings:    []checker.Issue{},
	}
	if out.Compilation != nil {
		snap.Warnings = out.Compilation.Warnings
		snap.Features = out.Compilation.Features
	}
	if out.Check != nil {
		snap.CheckErrors = out.Check.Errors
		snap.CheckWarnings = out.Check.Warnings
	}

	// Round-trip through generic JSON so MarshalCanonical can sort every key.
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", name, err)
	}
	var generic map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&generic); err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", name, err)
	}
	return ir.MarshalCanonical(generic)
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(t.Context(), scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result, goldie.WithFixtureDir("testdata/golden")); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares a result's snapshot against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, name string, result *Result, opts ...goldie.Option) error {
	t.Helper()

	data, err := Snapshot(name, result.Outcome)
	if err != nil {
		return err
	}
	opts = append([]goldie.Option{goldie.WithNameSuffix(".golden")}, opts...)
	g := goldie.New(t, opts...)
	g.Assert(t, name, data)
	return nil
}
