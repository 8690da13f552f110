// Package report renders cross-validation results as CSV, JSON, text tables
// and box plots.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"

	"github.com/YuminosukeSato/flexcv/crossval"
	"github.com/YuminosukeSato/flexcv/pkg/errors"
	"github.com/YuminosukeSato/flexcv/pkg/log"
)

// CSVHeader is the header row written by WriteCSV.
var CSVHeader = []string{"repetition", "model", "rmse"}

// WriteCSV writes one row per record: repetition, model kind, RMSE.
func WriteCSV(w io.Writer, res *crossval.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return errors.Wrap(err, "report: write csv header")
	}
	for _, rec := range res.Records {
		row := []string{
			strconv.Itoa(rec.Repetition),
			rec.Kind,
			strconv.FormatFloat(rec.RMSE, 'g', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrap(err, "report: write csv row")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "report: flush csv")
}

type jsonDocument struct {
	Scheme      string            `json:"scheme"`
	Response    string            `json:"response"`
	Repetitions int               `json:"repetitions"`
	Models      []string          `json:"models"`
	Records     []crossval.Record `json:"records"`
	Failures    []jsonFailure     `json:"failures"`
	Summaries   []jsonSummary     `json:"summaries"`
}

type jsonFailure struct {
	Repetition int    `json:"repetition"`
	Model      string `json:"model,omitempty"`
	Type       string `json:"type"`
	Stage      string `json:"stage,omitempty"`
	Error      string `json:"error"`
}

// NaN statistics are encoded as null.
type jsonSummary struct {
	Model  string   `json:"model"`
	N      int      `json:"n"`
	Failed int      `json:"failed"`
	Mean   *float64 `json:"mean"`
	StdDev *float64 `json:"std_dev"`
	Min    *float64 `json:"min"`
	Q1     *float64 `json:"q1"`
	Median *float64 `json:"median"`
	Q3     *float64 `json:"q3"`
	Max    *float64 `json:"max"`
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// WriteJSON writes the records, failures and per-kind summaries as one
// indented JSON document.
func WriteJSON(w io.Writer, res *crossval.Result) error {
	records := res.Records
	if records == nil {
		records = []crossval.Record{}
	}
	doc := jsonDocument{
		Scheme:      res.Scheme,
		Response:    res.Response,
		Repetitions: res.Repetitions,
		Models:      res.Kinds,
		Records:     records,
		Failures: lo.Map(res.Failures, func(f crossval.Failure, _ int) jsonFailure {
			typ, stage := Classify(f)
			return jsonFailure{Repetition: f.Repetition, Model: f.Kind, Type: typ, Stage: stage, Error: f.Err.Error()}
		}),
		Summaries: lo.Map(res.Summarize(), func(s crossval.Summary, _ int) jsonSummary {
			return jsonSummary{
				Model: s.Kind, N: s.N, Failed: s.Failed,
				Mean: finite(s.Mean), StdDev: finite(s.StdDev),
				Min: finite(s.Min), Q1: finite(s.Q1), Median: finite(s.Median), Q3: finite(s.Q3), Max: finite(s.Max),
			}
		}),
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(doc), "report: write json")
}

// Classify names the error type of a failure and, for fit failures, the
// stage that failed.
func Classify(f crossval.Failure) (typ, stage string) {
	var fitErr *errors.FitFailureError
	switch {
	case errors.As(f.Err, &fitErr):
		return log.ErrorFitFailure, fitErr.Stage
	case errors.Is(f.Err, errors.ErrInsufficientData):
		return log.ErrorInsufficientData, ""
	}
	return "Unknown", ""
}

func formatStat(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// WriteSummary renders summaries as a text table, one row per kind.
func WriteSummary(w io.Writer, summaries []crossval.Summary) error {
	table := tablewriter.NewWriter(w)
	table.Header("Model", "N", "Failed", "Mean", "Std", "Min", "Q1", "Median", "Q3", "Max")
	for _, s := range summaries {
		row := []string{
			s.Kind,
			strconv.Itoa(s.N),
			strconv.Itoa(s.Failed),
			formatStat(s.Mean),
			formatStat(s.StdDev),
			formatStat(s.Min),
			formatStat(s.Q1),
			formatStat(s.Median),
			formatStat(s.Q3),
			formatStat(s.Max),
		}
		if err := table.Append(row); err != nil {
			return errors.Wrap(err, "report: summary row")
		}
	}
	return errors.Wrap(table.Render(), "report: render summary")
}

// WriteFailures renders the failures of res as a text table. Nothing is
// written when there are none.
func WriteFailures(w io.Writer, res *crossval.Result) error {
	if len(res.Failures) == 0 {
		return nil
	}
	table := tablewriter.NewWriter(w)
	table.Header("Repetition", "Model", "Type", "Stage", "Error")
	for _, f := range res.Failures {
		typ, stage := Classify(f)
		model := f.Kind
		if model == "" {
			model = "*"
		}
		if err := table.Append([]string{strconv.Itoa(f.Repetition), model, typ, stage, f.Err.Error()}); err != nil {
			return errors.Wrap(err, "report: failure row")
		}
	}
	return errors.Wrap(table.Render(), "report: render failures")
}

// Write renders res in one of the formats "table", "csv" or "json". The
// table format includes the failures table when withFailures is set.
func Write(w io.Writer, res *crossval.Result, format string, withFailures bool) error {
	switch format {
	case "table", "":
		if err := WriteSummary(w, res.Summarize()); err != nil {
			return err
		}
		if withFailures {
			return WriteFailures(w, res)
		}
		return nil
	case "csv":
		return WriteCSV(w, res)
	case "json":
		return WriteJSON(w, res)
	}
	return errors.NewInvalidArgumentError("report.Write", "format", fmt.Sprintf("must be %q, %q or %q", "table", "csv", "json"), format)
}
