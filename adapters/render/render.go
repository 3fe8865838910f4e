package render

import (
	"bytes"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"statview/domain/core"
	"statview/domain/plotspec"
	"statview/domain/table"
	"statview/internal/errors"
)

var (
	pointColor = color.RGBA{R: 50, G: 50, B: 255, A: 255}
	barColor   = color.RGBA{R: 44, G: 160, B: 44, A: 255}
	boxWidth   = vg.Points(24)
	barWidth   = vg.Points(16)
)

// PNG renders a plot spec to a PNG byte buffer. The spec is validated
// against the currently loaded table first: a spec built before a new
// upload (or subset change) that references columns no longer present
// and numeric is rejected as a render error rather than drawn from
// stale data.
func PNG(spec *plotspec.Spec, current *table.Table) ([]byte, error) {
	if spec == nil {
		return nil, errors.RenderError("nil plot spec")
	}
	if stale := staleColumns(spec, current); len(stale) > 0 {
		return nil, core.NewStaleColumnsError(stale)
	}

	p := plot.New()
	p.Title.Text = spec.Title
	p.X.Label.Text = spec.XLabel
	p.Y.Label.Text = spec.YLabel
	p.Add(plotter.NewGrid())

	var err error
	switch spec.Kind {
	case plotspec.KindScatter:
		err = addScatter(p, spec.Scatter)
	case plotspec.KindBox:
		err = addBox(p, spec.Box)
	case plotspec.KindHistogram:
		err = addHistogram(p, spec.Histogram)
	case plotspec.KindSkewBar:
		err = addSkewBar(p, spec.SkewBar)
	default:
		return nil, errors.RenderError("unsupported plot kind " + string(spec.Kind))
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to assemble plot")
	}

	return writePNG(p)
}

func staleColumns(spec *plotspec.Spec, current *table.Table) []core.ColumnName {
	if current == nil {
		return spec.Columns
	}
	var stale []core.ColumnName
	for _, name := range spec.Columns {
		col, ok := current.Column(name)
		if !ok || !col.IsNumeric() {
			stale = append(stale, name)
		}
	}
	return stale
}

func addScatter(p *plot.Plot, params *plotspec.ScatterParams) error {
	if params == nil {
		return errors.RenderError("scatter spec missing parameters")
	}
	pts := make(plotter.XYs, len(params.Points))
	for i, pt := range params.Points {
		pts[i].X = pt.X
		pts[i].Y = pt.Y
	}
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	s.Color = pointColor
	p.Add(s)
	return nil
}

func addBox(p *plot.Plot, params *plotspec.BoxParams) error {
	if params == nil {
		return errors.RenderError("box spec missing parameters")
	}
	names := make([]string, len(params.Series))
	for i, series := range params.Series {
		names[i] = series.Column.String()
		if len(series.Values) == 0 {
			continue // column with no observed values plots as an empty slot
		}
		b, err := plotter.NewBoxPlot(boxWidth, float64(i), plotter.Values(series.Values))
		if err != nil {
			return err
		}
		p.Add(b)
	}
	p.NominalX(names...)
	return nil
}

func addHistogram(p *plot.Plot, params *plotspec.HistogramParams) error {
	if params == nil {
		return errors.RenderError("histogram spec missing parameters")
	}
	if len(params.Values) == 0 {
		return errors.RenderError("column " + params.Column.String() + " has no observed values to bin")
	}
	h, err := plotter.NewHist(plotter.Values(params.Values), params.Bins)
	if err != nil {
		return err
	}
	h.FillColor = pointColor
	p.Add(h)
	return nil
}

func addSkewBar(p *plot.Plot, params *plotspec.SkewBarParams) error {
	if params == nil {
		return errors.RenderError("skew bar spec missing parameters")
	}
	values := make(plotter.Values, len(params.Bars))
	names := make([]string, len(params.Bars))
	for i, bar := range params.Bars {
		values[i] = bar.Skewness
		names[i] = bar.Column.String()
	}
	b, err := plotter.NewBarChart(values, barWidth)
	if err != nil {
		return err
	}
	b.Color = barColor
	p.Add(b)
	p.NominalX(names...)

	// Zero reference line so asymmetry direction reads at a glance
	zero := plotter.XYs{
		{X: -0.5, Y: 0},
		{X: float64(len(params.Bars)) - 0.5, Y: 0},
	}
	line, err := plotter.NewLine(zero)
	if err != nil {
		return err
	}
	line.Color = color.Black
	p.Add(line)
	return nil
}

func writePNG(p *plot.Plot) ([]byte, error) {
	wt, err := p.WriterTo(8*vg.Inch, 6*vg.Inch, "png")
	if err != nil {
		return nil, errors.Wrap(err, "failed to create png writer")
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, errors.Wrap(err, "failed to encode png")
	}
	return buf.Bytes(), nil
}
