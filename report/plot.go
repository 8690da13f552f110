package report

import (
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/flexcv/crossval"
	"github.com/YuminosukeSato/flexcv/pkg/errors"
)

// BoxPlot draws one RMSE box per model kind, in declaration order. Kinds
// without any record are left out.
func BoxPlot(res *crossval.Result) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Test RMSE over " + res.Scheme + " repetitions"
	p.Y.Label.Text = "RMSE"

	byKind := res.ByKind()
	var names []string
	width := vg.Points(20)
	for _, kind := range res.Kinds {
		values := byKind[kind]
		if len(values) == 0 {
			continue
		}
		box, err := plotter.NewBoxPlot(width, float64(len(names)), plotter.Values(values))
		if err != nil {
			return nil, errors.Wrapf(err, "report: box for %q", kind)
		}
		p.Add(box)
		names = append(names, kind)
	}
	if len(names) == 0 {
		return nil, errors.NewValueError("report.BoxPlot", "no model kind produced an RMSE")
	}
	p.NominalX(names...)
	return p, nil
}

// SaveBoxPlot writes the box plot to path; the image format follows the
// file extension (png, svg, pdf, ...).
func SaveBoxPlot(res *crossval.Result, path string, width, height vg.Length) error {
	p, err := BoxPlot(res)
	if err != nil {
		return err
	}
	return errors.Wrapf(p.Save(width, height, path), "report: save %s", path)
}

// WriteBoxPlot encodes the box plot to w in format ("png", "svg", ...).
func WriteBoxPlot(w io.Writer, res *crossval.Result, width, height vg.Length, format string) error {
	p, err := BoxPlot(res)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(width, height, format)
	if err != nil {
		return errors.Wrap(err, "report: box plot encoder")
	}
	_, err = wt.WriteTo(w)
	return errors.Wrap(err, "report: write box plot")
}
