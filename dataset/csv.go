package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/YuminosukeSato/flexcv/pkg/errors"
)

// NAPolicy says what ReadCSV does with a missing cell.
type NAPolicy int

const (
	// NAReject fails the whole read.
	NAReject NAPolicy = iota
	// NADrop skips the record.
	NADrop
)

// CSVOptions configures ReadCSV. The zero value reads every column of a
// comma separated file with a header row and rejects missing cells.
type CSVOptions struct {
	// Comma is the field delimiter. Zero means ','.
	Comma rune
	// Columns restricts the read to these header names, in this order.
	Columns []string
	// NAValues are the cell spellings treated as missing, compared after
	// trimming spaces. Nil means "", "NA", "NaN" and "null".
	NAValues []string
	// NA is the missing-value policy.
	NA NAPolicy
}

var defaultNAValues = []string{"", "NA", "NaN", "null"}

// LoadCSV opens path and reads it with ReadCSV.
func LoadCSV(path string, opts *CSVOptions) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "dataset: open %s", path)
	}
	defer f.Close()

	ds, err := ReadCSV(f, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "dataset: read %s", path)
	}
	return ds, nil
}

// ReadCSV reads a delimited table with a header row into a Dataset. Every
// selected cell must parse as a float64 or be one of the NA spellings.
func ReadCSV(r io.Reader, opts *CSVOptions) (*Dataset, error) {
	if opts == nil {
		opts = &CSVOptions{}
	}
	naValues := opts.NAValues
	if naValues == nil {
		naValues = defaultNAValues
	}

	cr := csv.NewReader(r)
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.Wrap(errors.ErrEmptyData, "dataset: csv has no header row")
	}
	if err != nil {
		return nil, errors.Wrap(err, "dataset: read csv header")
	}
	header = lo.Map(header, func(h string, _ int) string { return strings.TrimSpace(h) })

	names := opts.Columns
	if len(names) == 0 {
		names = header
	}
	positions := make([]int, len(names))
	for j, name := range names {
		pos := lo.IndexOf(header, name)
		if pos < 0 {
			return nil, errors.NewInvalidArgumentError("dataset.ReadCSV", "Columns",
				fmt.Sprintf("column not in header %v", header), name)
		}
		positions[j] = pos
	}

	var records [][]float64
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "dataset: read csv")
		}
		line, _ := cr.FieldPos(0)

		rec := make([]float64, len(names))
		missing := false
		for j, pos := range positions {
			cell := strings.TrimSpace(row[pos])
			if lo.Contains(naValues, cell) {
				if opts.NA == NAReject {
					return nil, errors.NewValueError("dataset.ReadCSV",
						fmt.Sprintf("line %d: missing value in column %q", line, names[j]))
				}
				missing = true
				break
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, errors.NewValueError("dataset.ReadCSV",
					fmt.Sprintf("line %d: column %q: cannot parse %q as a number", line, names[j], cell))
			}
			// ParseFloat accepts "nan", "inf" and "Infinity"
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, errors.NewValueError("dataset.ReadCSV",
					fmt.Sprintf("line %d: column %q: %q is not a finite number", line, names[j], cell))
			}
			rec[j] = v
		}
		if !missing {
			records = append(records, rec)
		}
	}

	return FromRecords(names, records)
}
