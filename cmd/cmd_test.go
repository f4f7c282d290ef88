package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const instance = `{
  "T": 2,
  "Resources": {"c1": {"min": [0, 0], "max": [1, 1]}},
  "Seasons": {},
  "Interventions": {
    "I1": {"tmax": 1, "Delta": [2], "workload": {"c1": {"1": {"1": 1}, "2": {"1": 1}}}}
  },
  "Exclusions": {},
  "Scenarios_number": [1, 1],
  "Quantile": 0.5,
  "Alpha": 0.5
}`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func setup(t *testing.T) (cfg, inst, runs string) {
	t.Helper()
	dir := t.TempDir()
	runs = filepath.Join(dir, "runs.jsonl")
	cfg = filepath.Join(dir, "config.yaml")
	inst = filepath.Join(dir, "A_01.json")
	require.NoError(t, os.WriteFile(cfg, []byte("run_log:\n  backend: jsonl\n  path: "+runs+"\nlog:\n  level: error\n"), 0o644))
	require.NoError(t, os.WriteFile(inst, []byte(instance), 0o644))
	return cfg, inst, runs
}

func TestSolveCommandWritesSolution(t *testing.T) {
	cfg, inst, _ := setup(t)
	out, err := execute(t, "solve", "-c", cfg, "--format", "solution", inst)
	require.NoError(t, err)
	assert.Equal(t, "I1 1\n", out)

	out, err = execute(t, "history", "-c", cfg, "--instance", "A_01")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "OPTIMAL")
}

func TestSolveCommandOutputFile(t *testing.T) {
	cfg, inst, _ := setup(t)
	dest := filepath.Join(t.TempDir(), "out.csv")
	_, err := execute(t, "solve", "-c", cfg, "--format", "csv", "--output", dest, inst)
	require.NoError(t, err)
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "intervention,start,duration,end\nI1,1,2,3\n", string(data))
}

func TestValidateCommand(t *testing.T) {
	cfg, inst, _ := setup(t)
	out, err := execute(t, "validate", "-c", cfg, inst)
	require.NoError(t, err)
	assert.Contains(t, out, "interventions: 1")
}

func TestSolveCommandRejectsBadFormat(t *testing.T) {
	cfg, inst, _ := setup(t)
	_, err := execute(t, "solve", "-c", cfg, "--format", "xml", inst)
	assert.Error(t, err)
}
