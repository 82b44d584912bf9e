package harness

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_IsCanonicalJSON(t *testing.T) {
	result := loadAndRun(t, "testdata/scenarios/sales_rep_batch.yaml")

	data, err := Snapshot("sales_rep_batch", result.Outcome)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "sales_rep_batch", decoded["scenario_name"])
	assert.Equal(t, "cmp-sales-rep", decoded["compilation_id"])
	assert.Equal(t, "done", decoded["stage"])
	assert.NotContains(t, string(data), "compilation_time_ms")
	assert.NotContains(t, string(data), "\n")

	steps, ok := decoded["workflow_steps"].([]any)
	require.True(t, ok)
	assert.Len(t, steps, 3)
}

func TestSnapshot_FailedRun(t *testing.T) {
	result := loadAndRun(t, "testdata/scenarios/forbidden_token.yaml")

	data, err := Snapshot("forbidden_token", result.Outcome)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, []any{}, decoded["workflow_steps"])
	assert.Equal(t, []any{}, decoded["features"])
	assert.NotEmpty(t, decoded["validation_errors"])
}

// Every scenario must snapshot identically across independent runs.
func TestAssertGolden_Deterministic(t *testing.T) {
	paths, err := FindScenarios("testdata/scenarios", "")
	require.NoError(t, err)

	for _, path := range paths {
		s, err := LoadScenario(path)
		require.NoError(t, err)

		t.Run(s.Name, func(t *testing.T) {
			dir := t.TempDir()

			first, err := Run(context.Background(), s)
			require.NoError(t, err)
			data, err := Snapshot(s.Name, first.Outcome)
			require.NoError(t, err)

			g := goldie.New(t, goldie.WithFixtureDir(dir), goldie.WithNameSuffix(".golden"))
			require.NoError(t, g.Update(t, s.Name, data))

			second, err := Run(context.Background(), s)
			require.NoError(t, err)
			require.NoError(t, AssertGolden(t, s.Name, second, goldie.WithFixtureDir(dir)))
		})
	}
}

func TestRunWithGolden(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/filtered_email.yaml")
	require.NoError(t, err)

	first, err := Run(context.Background(), s)
	require.NoError(t, err)
	data, err := Snapshot(s.Name, first.Outcome)
	require.NoError(t, err)

	dir := t.TempDir()
	golden := filepath.Join(dir, "testdata", "golden")
	require.NoError(t, os.MkdirAll(golden, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(golden, s.Name+".golden"), data, 0o644))
	t.Chdir(dir)

	result, err := RunWithGolden(t, s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}
