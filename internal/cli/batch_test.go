package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// batchDir copies the named IR fixtures into a fresh directory.
func batchDir(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join("testdata", "ir", name))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
	}
	return dir
}

func TestBatchAllSucceed(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := batchDir(t, "filtered.json", "sales_rep.yaml")
	buf := &bytes.Buffer{}
	cmd := NewBatchCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{dir, "--concurrency", "2"})

	require.NoError(t, cmd.Execute())

	var resp struct {
		Status string      `json:"status"`
		Data   BatchResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Files, 2)
	assert.Equal(t, filepath.Join(dir, "filtered.json"), resp.Data.Files[0].Path)
	assert.Equal(t, 3, resp.Data.Files[0].StepCount)
	assert.Equal(t, 0, resp.Data.Failed)
	assert.Equal(t, 2, resp.Data.Summary.Total)
	assert.InDelta(t, 1.0, resp.Data.Summary.SuccessRate, 1e-9)
}

func TestBatchReportsFailures(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := batchDir(t, "filtered.json", "forbidden.json")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "zz_broken.json"), []byte("{"), 0o644))

	buf := &bytes.Buffer{}
	cmd := NewBatchCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{dir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	out := buf.String()
	assert.Contains(t, out, "ok   filtered.json: 3 step(s)")
	assert.Contains(t, out, "FAIL forbidden.json: stage ir_validation (FORBIDDEN_TOKEN)")
	assert.Contains(t, out, "FAIL zz_broken.json")
	assert.Contains(t, out, "3 file(s), 2 failed")
}

func TestBatchWritesTextfile(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := batchDir(t, "filtered.json", "forbidden.json")
	textfile := filepath.Join(t.TempDir(), "flowc.prom")

	cmd := NewBatchCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{dir, "--textfile", textfile})
	_ = cmd.Execute()

	data, err := os.ReadFile(textfile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `flowc_compilations_total{error_type="",stage="done",success="true"} 1`)
	assert.Contains(t, string(data), `flowc_compilations_total{error_type="FORBIDDEN_TOKEN",stage="ir_validation",success="false"} 1`)
	assert.Contains(t, string(data), "flowc_ir_features_total")
}

func TestBatchRecordsToArchive(t *testing.T) {
	dir := batchDir(t, "filtered.json", "sales_rep.yaml")
	dbPath := filepath.Join(t.TempDir(), "archive.db")

	cmd := NewBatchCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{dir, "--db", dbPath})
	require.NoError(t, cmd.Execute())

	buf := &bytes.Buffer{}
	history := NewHistoryCommand(&RootOptions{Format: "json"})
	history.SetOut(buf)
	history.SetArgs([]string{"--db", dbPath})
	require.NoError(t, history.Execute())

	var resp struct {
		Data HistoryResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Len(t, resp.Data.Compilations, 2)
	assert.Empty(t, resp.Data.Failures)
}

func TestBatchNoFiles(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewBatchCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{t.TempDir()})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeNoFiles)
}
