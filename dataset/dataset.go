// Package dataset holds the small, immutable numeric tables the
// cross-validator resamples.
//
// A Dataset is column oriented: every column is a named []float64 of the same
// length. Records (rows) carry a stable identity, the row index in the dataset
// they were first loaded into, which survives Subset so that train and test
// subsets can be compared by record identity rather than by value.
package dataset

import (
	"fmt"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/flexcv/pkg/errors"
)

// Dataset is an ordered, read-only set of records with named numeric fields.
// Accessors return copies; a Dataset is safe for concurrent readers.
type Dataset struct {
	names []string
	index map[string]int
	cols  [][]float64
	ids   []int
}

// New builds a dataset from columns. columns[j] holds the values of names[j].
// The slices are copied. A dataset with zero records is allowed.
func New(names []string, columns [][]float64) (*Dataset, error) {
	if len(names) == 0 {
		return nil, errors.NewInvalidArgumentError("dataset.New", "names", "at least one column is required", names)
	}
	if len(names) != len(columns) {
		return nil, errors.NewInvalidArgumentError("dataset.New", "columns",
			fmt.Sprintf("expected %d columns to match names", len(names)), len(columns))
	}
	if lo.Contains(names, "") {
		return nil, errors.NewInvalidArgumentError("dataset.New", "names", "column names must be non-empty", names)
	}
	if dup := lo.FindDuplicates(names); len(dup) > 0 {
		return nil, errors.NewInvalidArgumentError("dataset.New", "names", "duplicate column name", dup[0])
	}

	n := len(columns[0])
	for j, col := range columns {
		if len(col) != n {
			return nil, errors.NewInvalidArgumentError("dataset.New", names[j],
				fmt.Sprintf("column length differs from %q (%d)", names[0], n), len(col))
		}
	}

	ids := make([]int, n)
	for i := range ids {
		ids[i] = i
	}
	return build(names, columns, ids), nil
}

// FromRecords builds a dataset from row-major records, each holding one value
// per name.
func FromRecords(names []string, records [][]float64) (*Dataset, error) {
	columns := make([][]float64, len(names))
	for j := range columns {
		columns[j] = make([]float64, len(records))
	}
	for i, rec := range records {
		if len(rec) != len(names) {
			return nil, errors.NewInvalidArgumentError("dataset.FromRecords", fmt.Sprintf("records[%d]", i),
				fmt.Sprintf("expected %d fields", len(names)), len(rec))
		}
		for j, v := range rec {
			columns[j][i] = v
		}
	}
	return New(names, columns)
}

func build(names []string, columns [][]float64, ids []int) *Dataset {
	d := &Dataset{
		names: append([]string(nil), names...),
		index: make(map[string]int, len(names)),
		cols:  make([][]float64, len(columns)),
		ids:   ids,
	}
	for j, name := range d.names {
		d.index[name] = j
		d.cols[j] = append([]float64(nil), columns[j]...)
	}
	return d
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	return len(d.ids)
}

// Names returns the column names in declaration order.
func (d *Dataset) Names() []string {
	return append([]string(nil), d.names...)
}

// Has reports whether the dataset has a column called name.
func (d *Dataset) Has(name string) bool {
	_, ok := d.index[name]
	return ok
}

func (d *Dataset) col(op, name string) ([]float64, error) {
	j, ok := d.index[name]
	if !ok {
		return nil, errors.NewInvalidArgumentError(op, "name", fmt.Sprintf("unknown column; have %v", d.names), name)
	}
	return d.cols[j], nil
}

// Column returns a copy of the named column.
func (d *Dataset) Column(name string) ([]float64, error) {
	c, err := d.col("Dataset.Column", name)
	if err != nil {
		return nil, err
	}
	return append([]float64(nil), c...), nil
}

// At returns the value of column name at record i.
func (d *Dataset) At(i int, name string) (float64, error) {
	c, err := d.col("Dataset.At", name)
	if err != nil {
		return 0, err
	}
	if i < 0 || i >= len(c) {
		return 0, errors.NewInvalidArgumentError("Dataset.At", "i", fmt.Sprintf("out of range [0,%d)", len(c)), i)
	}
	return c[i], nil
}

// ID returns the identity of record i.
func (d *Dataset) ID(i int) int {
	return d.ids[i]
}

// IDs returns the identities of all records in order.
func (d *Dataset) IDs() []int {
	return append([]int(nil), d.ids...)
}

// Subset returns the records at the given positions, in that order. The
// result keeps the records' identities.
func (d *Dataset) Subset(indices []int) (*Dataset, error) {
	n := d.Len()
	for _, i := range indices {
		if i < 0 || i >= n {
			return nil, errors.NewInvalidArgumentError("Dataset.Subset", "indices", fmt.Sprintf("index out of range [0,%d)", n), i)
		}
	}
	columns := make([][]float64, len(d.cols))
	for j, c := range d.cols {
		columns[j] = lo.Map(indices, func(i int, _ int) float64 { return c[i] })
	}
	ids := lo.Map(indices, func(i int, _ int) int { return d.ids[i] })
	return build(d.names, columns, ids), nil
}

// Select returns a dataset restricted to the named columns.
func (d *Dataset) Select(names ...string) (*Dataset, error) {
	if len(names) == 0 {
		return nil, errors.NewInvalidArgumentError("Dataset.Select", "names", "at least one column is required", names)
	}
	if dup := lo.FindDuplicates(names); len(dup) > 0 {
		return nil, errors.NewInvalidArgumentError("Dataset.Select", "names", "duplicate column name", dup[0])
	}
	columns := make([][]float64, len(names))
	for j, name := range names {
		c, err := d.col("Dataset.Select", name)
		if err != nil {
			return nil, err
		}
		columns[j] = c
	}
	return build(names, columns, append([]int(nil), d.ids...)), nil
}

// Matrix returns the named columns as an (n_records, len(names)) matrix,
// the layout the estimators in linear and spline expect for X.
func (d *Dataset) Matrix(names ...string) (*mat.Dense, error) {
	if d.Len() == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "Dataset.Matrix")
	}
	if len(names) == 0 {
		return nil, errors.NewInvalidArgumentError("Dataset.Matrix", "names", "at least one column is required", names)
	}
	m := mat.NewDense(d.Len(), len(names), nil)
	for j, name := range names {
		c, err := d.col("Dataset.Matrix", name)
		if err != nil {
			return nil, err
		}
		m.SetCol(j, c)
	}
	return m, nil
}

// Vector returns the named column as an (n_records, 1) matrix, the layout
// the estimators expect for y.
func (d *Dataset) Vector(name string) (*mat.Dense, error) {
	return d.Matrix(name)
}

// Range returns the minimum and maximum of a column. It fails on an empty
// dataset.
func (d *Dataset) Range(name string) (low, high float64, err error) {
	c, err := d.col("Dataset.Range", name)
	if err != nil {
		return 0, 0, err
	}
	if len(c) == 0 {
		return 0, 0, errors.Wrap(errors.ErrEmptyData, "Dataset.Range")
	}
	return lo.Min(c), lo.Max(c), nil
}

// String returns a short description like "Dataset(221 records: range, logratio)".
func (d *Dataset) String() string {
	return fmt.Sprintf("Dataset(%d records: %v)", d.Len(), d.names)
}
