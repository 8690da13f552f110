package main

import (
	"bytes"
	"encoding/csv"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/flexcv/pkg/errors"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	prev := slog.Default()
	t.Cleanup(func() {
		slog.SetDefault(prev)
		errors.SetZerologWarnFunc(nil)
		errors.SetWarningHandler(func(error) {})
	})

	var stdout, stderr bytes.Buffer
	root := newRootCommand(&stdout, &stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRun_CSV(t *testing.T) {
	out, _, err := execute(t, "run", "-n", "5", "--format", "csv", "--log-level", "error")
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1+5*3)
	assert.Equal(t, []string{"repetition", "model", "rmse"}, rows[0])
	assert.Equal(t, []string{"0", "linear"}, rows[1][:2])
	assert.Equal(t, []string{"0", "smooth"}, rows[2][:2])
	assert.Equal(t, []string{"0", "wiggly"}, rows[3][:2])
}

func TestRun_DeterministicUnderSeed(t *testing.T) {
	first, _, err := execute(t, "run", "-n", "4", "--format", "csv", "--seed", "9", "--log-level", "error")
	require.NoError(t, err)
	second, _, err := execute(t, "run", "-n", "4", "--format", "csv", "--seed", "9", "-j", "0", "--log-level", "error")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRun_TableWithLogsAndProgress(t *testing.T) {
	out, logs, err := execute(t, "run", "-n", "3", "-m", "linear,piecewise-linear",
		"--log-format", "json", "--progress")
	require.NoError(t, err)

	assert.Contains(t, out, "linear")
	assert.Contains(t, out, "piecewise-linear")
	assert.Contains(t, logs, `"message":"Cross-validation finished"`)
	assert.Contains(t, logs, `"ml.component":"cli"`)
}

func TestRun_ZerologFormat(t *testing.T) {
	_, logs, err := execute(t, "run", "-n", "2", "-m", "linear", "--log-format", "zerolog", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, logs, `"message":"Cross-validation started"`)
	assert.Contains(t, logs, `"level":"info"`)
}

func TestRun_ConfigFileAndOutputs(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "line.csv")
	var b strings.Builder
	b.WriteString("x;y\n")
	for i := 0; i < 30; i++ {
		if i == 7 {
			b.WriteString("7;NA\n")
			continue
		}
		b.WriteString(strconv.Itoa(i) + ";" + strconv.Itoa(3*i+1) + "\n")
	}
	require.NoError(t, os.WriteFile(data, []byte(b.String()), 0o600))

	cfgPath := filepath.Join(dir, "flexcv.yaml")
	cfgText := `
data:
  source: ` + data + `
  x: x
  y: y
  delimiter: ";"
  drop_na: true
cv:
  repetitions: 6
  scheme: kfold
  folds: 3
models: [linear, stiff]
custom_models:
  - name: stiff
    type: pspline
    segments: 5
    lambda: 10
output:
  format: json
  log_level: error
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgText), 0o600))

	report := filepath.Join(dir, "report.json")
	plot := filepath.Join(dir, "rmse.svg")
	out, _, err := execute(t, "run", "--config", cfgPath, "--out", report, "--plot", plot)
	require.NoError(t, err)
	assert.Empty(t, out)

	body, err := os.ReadFile(report)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"scheme": "kfold(3)"`)
	assert.Contains(t, string(body), `"stiff"`)

	info, err := os.Stat(plot)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestRun_InvalidSettings(t *testing.T) {
	_, _, err := execute(t, "run", "--train-fraction", "1.5")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))

	_, _, err = execute(t, "run", "-m", "linear,forest", "--log-level", "error")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))

	_, _, err = execute(t, "run", "--data", filepath.Join(t.TempDir(), "missing.csv"), "--log-level", "error")
	assert.Error(t, err)
}

func TestModelsAndVersion(t *testing.T) {
	out, _, err := execute(t, "models")
	require.NoError(t, err)
	for _, name := range []string{"linear", "piecewise-linear", "smooth", "wiggly"} {
		assert.Contains(t, out, name)
	}

	out, _, err = execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Version:")
	assert.Contains(t, out, Version)
}
