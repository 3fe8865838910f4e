package plotbuild

import (
	"fmt"
	"math"
	"sort"

	"statview/domain/core"
	"statview/domain/plotspec"
	"statview/domain/table"
	"statview/internal/describe"
	"statview/internal/errors"
)

// DefaultBins is the histogram bin count used when the caller leaves it
// unspecified and the column has enough observations to fill it.
const DefaultBins = 20

// smallSampleCutoff switches small columns to the Sturges rule so they
// do not get 20 mostly-empty bins.
const smallSampleCutoff = 8

// Scatter builds a scatter spec over the jointly observed points of two
// numeric columns. Both columns must exist and be numeric.
func Scatter(t *table.Table, xName, yName core.ColumnName) (*plotspec.Spec, error) {
	x, err := numericColumn(t, xName)
	if err != nil {
		return nil, err
	}
	y, err := numericColumn(t, yName)
	if err != nil {
		return nil, err
	}

	xs, ys := table.PairwiseComplete(x, y)
	points := make([]plotspec.Point, len(xs))
	for i := range xs {
		points[i] = plotspec.Point{X: xs[i], Y: ys[i]}
	}

	return &plotspec.Spec{
		Kind:    plotspec.KindScatter,
		Title:   fmt.Sprintf("%s vs %s", xName, yName),
		XLabel:  xName.String(),
		YLabel:  yName.String(),
		Columns: []core.ColumnName{xName, yName},
		Scatter: &plotspec.ScatterParams{X: xName, Y: yName, Points: points},
	}, nil
}

// Box builds one box per numeric column in the selection. Absent
// columns fail the whole selection; non-numeric columns are dropped
// with a warning instead, and a selection that leaves nothing numeric
// is an error.
func Box(t *table.Table, names []core.ColumnName) (*plotspec.Spec, error) {
	var warnings []string
	var kept []core.ColumnName
	var series []plotspec.Series

	for _, name := range names {
		col, ok := t.Column(name)
		if !ok {
			return nil, core.NewInvalidColumnError(name, "not present in table")
		}
		if !col.IsNumeric() {
			warnings = append(warnings, fmt.Sprintf("column %q is not numeric, skipped", name))
			continue
		}
		kept = append(kept, name)
		series = append(series, plotspec.Series{Column: name, Values: col.Observed()})
	}

	if len(series) == 0 {
		return nil, core.ErrEmptySelection
	}

	return &plotspec.Spec{
		Kind:     plotspec.KindBox,
		Title:    "Distribution of Selected Columns",
		YLabel:   "Values",
		Columns:  kept,
		Box:      &plotspec.BoxParams{Series: series},
		Warnings: warnings,
	}, nil
}

// Histogram builds a histogram spec for one numeric column. bins == 0
// applies the default policy: fallback bins for ordinary columns
// (DefaultBins when fallback is not positive), Sturges' rule below the
// small-sample cutoff. Negative bins are rejected.
func Histogram(t *table.Table, name core.ColumnName, bins, fallback int) (*plotspec.Spec, error) {
	if bins < 0 {
		return nil, errors.InvalidInput(fmt.Sprintf("bin count must be positive, got %d", bins))
	}
	col, err := numericColumn(t, name)
	if err != nil {
		return nil, err
	}

	values := col.Observed()
	if bins == 0 {
		bins = defaultBins(len(values), fallback)
	}

	return &plotspec.Spec{
		Kind:      plotspec.KindHistogram,
		Title:     fmt.Sprintf("Distribution of %s", name),
		XLabel:    name.String(),
		YLabel:    "Frequency",
		Columns:   []core.ColumnName{name},
		Histogram: &plotspec.HistogramParams{Column: name, Values: values, Bins: bins},
	}, nil
}

// SkewBar builds one bar per numeric column, sorted ascending by
// skewness. Columns whose skewness is not computable are listed as
// omitted rather than plotted at a fake zero.
func SkewBar(t *table.Table) (*plotspec.Spec, error) {
	records := describe.Summarize(t)
	if len(records) == 0 {
		return nil, core.ErrEmptySelection
	}

	var bars []plotspec.Bar
	var omitted []core.ColumnName
	var columns []core.ColumnName
	for _, rec := range records {
		columns = append(columns, rec.Column)
		if v, ok := rec.Skewness.Float(); ok {
			bars = append(bars, plotspec.Bar{Column: rec.Column, Skewness: v})
		} else {
			omitted = append(omitted, rec.Column)
		}
	}

	sort.SliceStable(bars, func(a, b int) bool {
		return bars[a].Skewness < bars[b].Skewness
	})

	return &plotspec.Spec{
		Kind:    plotspec.KindSkewBar,
		Title:   "Skewness of Numerical Columns",
		XLabel:  "Column",
		YLabel:  "Skewness Value",
		Columns: columns,
		SkewBar: &plotspec.SkewBarParams{Bars: bars, Omitted: omitted},
	}, nil
}

func numericColumn(t *table.Table, name core.ColumnName) (*table.Column, error) {
	col, ok := t.Column(name)
	if !ok {
		return nil, core.NewInvalidColumnError(name, "not present in table")
	}
	if !col.IsNumeric() {
		return nil, core.NewInvalidColumnError(name, "not numeric")
	}
	return col, nil
}

// defaultBins resolves the unspecified bin count: the configured
// fallback (DefaultBins when not positive) for ordinary columns,
// Sturges' rule (ceil(log2 n) + 1) below the small-sample cutoff.
func defaultBins(n, fallback int) int {
	if fallback < 1 {
		fallback = DefaultBins
	}
	if n >= smallSampleCutoff {
		return fallback
	}
	if n <= 1 {
		return 1
	}
	return int(math.Ceil(math.Log2(float64(n)))) + 1
}
