package dataset

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/flexcv/pkg/errors"
)

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		names   []string
		columns [][]float64
	}{
		{"no columns", nil, nil},
		{"count mismatch", []string{"x", "y"}, [][]float64{{1}}},
		{"empty name", []string{"x", ""}, [][]float64{{1}, {2}}},
		{"duplicate name", []string{"x", "x"}, [][]float64{{1}, {2}}},
		{"ragged", []string{"x", "y"}, [][]float64{{1, 2}, {3}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.names, tt.columns)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrInvalidArgument))
		})
	}
}

func TestNew_EmptyDatasetAllowed(t *testing.T) {
	ds, err := New([]string{"x"}, [][]float64{{}})
	require.NoError(t, err)
	assert.Equal(t, 0, ds.Len())

	_, err = ds.Matrix("x")
	assert.True(t, errors.Is(err, errors.ErrEmptyData))
}

func TestDataset_Immutable(t *testing.T) {
	x := []float64{1, 2, 3}
	ds, err := New([]string{"x"}, [][]float64{x})
	require.NoError(t, err)

	x[0] = 100
	col, err := ds.Column("x")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, col)

	col[1] = 200
	v, err := ds.At(1, "x")
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)

	names := ds.Names()
	names[0] = "z"
	assert.True(t, ds.Has("x"))
}

func TestDataset_SubsetKeepsIdentity(t *testing.T) {
	ds, err := FromRecords([]string{"x", "y"}, [][]float64{{0, 10}, {1, 11}, {2, 12}, {3, 13}})
	require.NoError(t, err)

	sub, err := ds.Subset([]int{3, 1})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1}, sub.IDs())
	y, _ := sub.Column("y")
	assert.Equal(t, []float64{13, 11}, y)

	// identities are relative to the original dataset, not the subset
	subsub, err := sub.Subset([]int{1})
	require.NoError(t, err)
	assert.Equal(t, 1, subsub.ID(0))

	_, err = ds.Subset([]int{4})
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))
}

func TestDataset_MatrixAndSelect(t *testing.T) {
	ds, err := FromRecords([]string{"a", "b", "c"}, [][]float64{{1, 2, 3}, {4, 5, 6}})
	require.NoError(t, err)

	m, err := ds.Matrix("c", "a")
	require.NoError(t, err)
	r, c := m.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 2, c)
	assert.Equal(t, 6.0, m.At(1, 0))
	assert.Equal(t, 4.0, m.At(1, 1))

	_, err = ds.Matrix("missing")
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))

	sel, err := ds.Select("b")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, sel.Names())

	low, high, err := ds.Range("b")
	require.NoError(t, err)
	assert.Equal(t, 2.0, low)
	assert.Equal(t, 5.0, high)
}

func TestFromRecords_WrongWidth(t *testing.T) {
	_, err := FromRecords([]string{"x", "y"}, [][]float64{{1, 2}, {3}})
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))
}

func TestReadCSV(t *testing.T) {
	input := "range, logratio, extra\n390,-0.05,1\n391.5,-0.04,2\n"
	ds, err := ReadCSV(strings.NewReader(input), &CSVOptions{Columns: []string{"logratio", "range"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"logratio", "range"}, ds.Names())
	assert.Equal(t, 2, ds.Len())
	x, _ := ds.Column("range")
	assert.Equal(t, []float64{390, 391.5}, x)
}

func TestReadCSV_NAPolicy(t *testing.T) {
	input := "x;y\n1;2\nNA;3\n4;\n5;6\n"

	_, err := ReadCSV(strings.NewReader(input), &CSVOptions{Comma: ';'})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")

	ds, err := ReadCSV(strings.NewReader(input), &CSVOptions{Comma: ';', NA: NADrop})
	require.NoError(t, err)
	x, _ := ds.Column("x")
	assert.Equal(t, []float64{1, 5}, x)
	assert.Equal(t, []int{0, 1}, ds.IDs())
}

func TestReadCSV_Errors(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""), nil)
	assert.True(t, errors.Is(err, errors.ErrEmptyData))

	_, err = ReadCSV(strings.NewReader("x\nabc\n"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"abc"`)

	_, err = ReadCSV(strings.NewReader("x\n1\n"), &CSVOptions{Columns: []string{"y"}})
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))

	for _, cell := range []string{"nan", "inf", "+Inf", "-inf", "Infinity"} {
		_, err = ReadCSV(strings.NewReader("x,y\n1,2\n3,"+cell+"\n"), &CSVOptions{NA: NADrop})
		var ve *errors.ValueError
		require.True(t, errors.As(err, &ve), cell)
		assert.Contains(t, err.Error(), "not a finite number", cell)
	}
}

func TestLoadCSV_MissingFile(t *testing.T) {
	_, err := LoadCSV(t.TempDir()+"/nope.csv", nil)
	assert.Error(t, err)
}

func TestSyntheticLidar(t *testing.T) {
	ds := SyntheticLidar(rand.New(rand.NewPCG(1, 1)))
	assert.Equal(t, 221, ds.Len())

	low, high, err := ds.Range(LidarRange)
	require.NoError(t, err)
	assert.InDelta(t, 390, low, 1e-9)
	assert.InDelta(t, 720, high, 1e-9)

	again := SyntheticLidar(rand.New(rand.NewPCG(1, 1)))
	a, _ := ds.Column(LidarLogratio)
	b, _ := again.Column(LidarLogratio)
	assert.Equal(t, a, b)

	assert.InDelta(t, -0.05, LidarMean(390), 0.01)
	assert.InDelta(t, -0.8, LidarMean(720), 0.01)
}
