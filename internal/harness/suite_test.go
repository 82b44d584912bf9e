package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindScenarios(t *testing.T) {
	paths, err := FindScenarios("testdata/scenarios", "")
	require.NoError(t, err)

	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = filepath.Base(p)
	}
	assert.Equal(t, []string{
		"filtered_email.yaml",
		"forbidden_token.yaml",
		"loop_unresolved.yaml",
		"sales_rep_batch.yaml",
	}, names)
}

func TestFindScenarios_Filter(t *testing.T) {
	paths, err := FindScenarios("testdata/scenarios", "f*")
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, "filtered_email.yaml", filepath.Base(paths[0]))
	assert.Equal(t, "forbidden_token.yaml", filepath.Base(paths[1]))

	_, err = FindScenarios("testdata/scenarios", "[")
	assert.Error(t, err)
}

func TestFindScenarios_MissingDir(t *testing.T) {
	_, err := FindScenarios(filepath.Join(t.TempDir(), "absent"), "")
	assert.Error(t, err)
}

func TestGoldenPath(t *testing.T) {
	got := GoldenPath(filepath.Join("suite", "a.yaml"), "alpha")
	assert.Equal(t, filepath.Join("suite", "golden", "alpha.golden"), got)
}
