package plotspec

import (
	"statview/domain/core"
)

// Kind tags the plot variant a Spec describes
type Kind string

const (
	KindScatter   Kind = "scatter"
	KindBox       Kind = "box"
	KindHistogram Kind = "histogram"
	KindSkewBar   Kind = "skew_bar"
)

// Spec is a renderer-agnostic description of one chart. It carries the
// plotted data itself, so rendering needs no access to the source table;
// Columns lists every column the spec was built from so a renderer can
// refuse stale specs after the session table changed.
type Spec struct {
	Kind    Kind              `json:"kind"`
	Title   string            `json:"title"`
	XLabel  string            `json:"x_label"`
	YLabel  string            `json:"y_label"`
	Columns []core.ColumnName `json:"columns"`

	// Exactly one of these is set, matching Kind
	Scatter   *ScatterParams   `json:"scatter,omitempty"`
	Box       *BoxParams       `json:"box,omitempty"`
	Histogram *HistogramParams `json:"histogram,omitempty"`
	SkewBar   *SkewBarParams   `json:"skew_bar,omitempty"`

	// Warnings records columns dropped from the selection (box plots
	// silently skip non-numeric columns rather than failing)
	Warnings []string `json:"warnings,omitempty"`
}

// Point is one scatter observation
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ScatterParams holds the jointly observed points of two numeric columns
type ScatterParams struct {
	X      core.ColumnName `json:"x"`
	Y      core.ColumnName `json:"y"`
	Points []Point         `json:"points"`
}

// Series is the observed values of one column in a box plot
type Series struct {
	Column core.ColumnName `json:"column"`
	Values []float64       `json:"values"`
}

// BoxParams holds one box per selected numeric column
type BoxParams struct {
	Series []Series `json:"series"`
}

// HistogramParams holds the observed values and resolved bin count
type HistogramParams struct {
	Column core.ColumnName `json:"column"`
	Values []float64       `json:"values"`
	Bins   int             `json:"bins"`
}

// Bar is one column's skewness in a skew-bar chart
type Bar struct {
	Column   core.ColumnName `json:"column"`
	Skewness float64         `json:"skewness"`
}

// SkewBarParams holds skewness bars sorted ascending by value, with
// columns whose skewness is not computable listed separately.
type SkewBarParams struct {
	Bars    []Bar             `json:"bars"`
	Omitted []core.ColumnName `json:"omitted,omitempty"`
}
