package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/flexcv/crossval"
	"github.com/YuminosukeSato/flexcv/pkg/errors"
)

func sampleResult() *crossval.Result {
	return &crossval.Result{
		Kinds:       []string{"linear", "smooth", "never"},
		Repetitions: 3,
		Scheme:      "holdout",
		Response:    "logratio",
		Records: []crossval.Record{
			{Repetition: 0, Kind: "linear", RMSE: 0.2},
			{Repetition: 0, Kind: "smooth", RMSE: 0.1},
			{Repetition: 2, Kind: "linear", RMSE: 0.25},
			{Repetition: 2, Kind: "smooth", RMSE: 0.125},
		},
		Failures: []crossval.Failure{
			{Repetition: 0, Kind: "never", Err: errors.NewFitFailureError("never", 0, errors.StageFit, errors.New("rank deficient"))},
			{Repetition: 1, Err: errors.NewInsufficientDataError(1, 3, 0)},
			{Repetition: 2, Kind: "never", Err: errors.NewFitFailureError("never", 2, errors.StagePredict, errors.New("boom"))},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleResult()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"repetition", "model", "rmse"},
		{"0", "linear", "0.2"},
		{"0", "smooth", "0.1"},
		{"2", "linear", "0.25"},
		{"2", "smooth", "0.125"},
	}, rows)
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, &crossval.Result{}))
	assert.Equal(t, "repetition,model,rmse\n", buf.String())
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleResult()))

	var doc struct {
		Scheme    string            `json:"scheme"`
		Models    []string          `json:"models"`
		Records   []crossval.Record `json:"records"`
		Failures  []map[string]any  `json:"failures"`
		Summaries []map[string]any  `json:"summaries"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, "holdout", doc.Scheme)
	assert.Equal(t, []string{"linear", "smooth", "never"}, doc.Models)
	assert.Equal(t, sampleResult().Records, doc.Records)

	require.Len(t, doc.Failures, 3)
	assert.Equal(t, "FitFailure", doc.Failures[0]["type"])
	assert.Equal(t, "fit", doc.Failures[0]["stage"])
	assert.Equal(t, "InsufficientData", doc.Failures[1]["type"])
	assert.NotContains(t, doc.Failures[1], "model")
	assert.Equal(t, "predict", doc.Failures[2]["stage"])

	require.Len(t, doc.Summaries, 3)
	assert.Equal(t, "linear", doc.Summaries[0]["model"])
	assert.InDelta(t, 0.225, doc.Summaries[0]["median"], 1e-12)
	assert.EqualValues(t, 2, doc.Summaries[0]["n"])
	assert.EqualValues(t, 1, doc.Summaries[0]["failed"])

	never := doc.Summaries[2]
	assert.EqualValues(t, 0, never["n"])
	assert.EqualValues(t, 3, never["failed"])
	assert.Nil(t, never["mean"])
	assert.Nil(t, never["median"])
	assert.Contains(t, buf.String(), `"std_dev": null`)
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, sampleResult().Summarize()))
	out := buf.String()

	assert.Contains(t, out, "linear")
	assert.Contains(t, out, "0.2250")
	assert.Contains(t, out, "0.1125")
	assert.Contains(t, out, "never")
	lines := strings.Split(out, "\n")
	for _, line := range lines {
		if strings.Contains(line, "never") {
			assert.Contains(t, line, "-")
		}
	}
}

func TestWriteFailures(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFailures(&buf, sampleResult()))
	out := buf.String()
	assert.Contains(t, out, "rank deficient")
	assert.Contains(t, out, "InsufficientData")

	buf.Reset()
	require.NoError(t, WriteFailures(&buf, &crossval.Result{}))
	assert.Empty(t, buf.String())
}

func TestWrite(t *testing.T) {
	res := sampleResult()
	for _, format := range []string{"table", "csv", "json"} {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, res, format, true), format)
		assert.NotEmpty(t, buf.String(), format)
	}

	err := Write(&bytes.Buffer{}, res, "xml", false)
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))
}

func TestClassify(t *testing.T) {
	typ, stage := Classify(crossval.Failure{Err: errors.New("other")})
	assert.Equal(t, "Unknown", typ)
	assert.Empty(t, stage)
}

func TestBoxPlot(t *testing.T) {
	p, err := BoxPlot(sampleResult())
	require.NoError(t, err)
	assert.Equal(t, "RMSE", p.Y.Label.Text)

	var buf bytes.Buffer
	require.NoError(t, WriteBoxPlot(&buf, sampleResult(), 4*vg.Inch, 3*vg.Inch, "svg"))
	assert.Contains(t, buf.String(), "<svg")

	path := filepath.Join(t.TempDir(), "rmse.png")
	require.NoError(t, SaveBoxPlot(sampleResult(), path, 4*vg.Inch, 3*vg.Inch))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	_, err = BoxPlot(&crossval.Result{Kinds: []string{"never"}})
	assert.Error(t, err)
}
