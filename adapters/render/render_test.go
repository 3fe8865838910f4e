package render

import (
	"bytes"
	"errors"
	"testing"

	"statview/domain/core"
	"statview/domain/plotspec"
	"statview/domain/table"
	"statview/internal/plotbuild"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func numericColumn(name string, values ...float64) *table.Column {
	return &table.Column{
		Name:    core.ColumnName(name),
		Class:   table.ClassNumeric,
		Values:  values,
		Missing: make([]bool, len(values)),
		Raw:     make([]string, len(values)),
	}
}

func buildTable(t *testing.T, cols ...*table.Column) *table.Table {
	t.Helper()
	rows := 0
	if len(cols) > 0 {
		rows = len(cols[0].Missing)
	}
	tbl, err := table.New(cols, rows)
	if err != nil {
		t.Fatalf("table.New failed: %v", err)
	}
	return tbl
}

func renderAndCheck(t *testing.T, spec *plotspec.Spec, tbl *table.Table) {
	t.Helper()
	png, err := PNG(spec, tbl)
	if err != nil {
		t.Fatalf("PNG failed: %v", err)
	}
	if !bytes.HasPrefix(png, pngMagic) {
		t.Errorf("output does not start with the PNG signature")
	}
}

func TestPNG_AllKinds(t *testing.T) {
	tbl := buildTable(t,
		numericColumn("x", 1, 2, 3, 4, 5, 6, 7, 8),
		numericColumn("y", 2, 1, 4, 3, 6, 5, 8, 7),
	)

	scatter, err := plotbuild.Scatter(tbl, "x", "y")
	if err != nil {
		t.Fatalf("Scatter failed: %v", err)
	}
	renderAndCheck(t, scatter, tbl)

	box, err := plotbuild.Box(tbl, []core.ColumnName{"x", "y"})
	if err != nil {
		t.Fatalf("Box failed: %v", err)
	}
	renderAndCheck(t, box, tbl)

	hist, err := plotbuild.Histogram(tbl, "x", 4, 0)
	if err != nil {
		t.Fatalf("Histogram failed: %v", err)
	}
	renderAndCheck(t, hist, tbl)

	skew, err := plotbuild.SkewBar(tbl)
	if err != nil {
		t.Fatalf("SkewBar failed: %v", err)
	}
	renderAndCheck(t, skew, tbl)
}

func TestPNG_StaleSpecRejected(t *testing.T) {
	old := buildTable(t,
		numericColumn("x", 1, 2, 3),
		numericColumn("gone", 4, 5, 6),
	)
	spec, err := plotbuild.Scatter(old, "x", "gone")
	if err != nil {
		t.Fatalf("Scatter failed: %v", err)
	}

	// A new upload no longer carries the second column
	current := buildTable(t, numericColumn("x", 7, 8, 9))

	_, err = PNG(spec, current)
	if !errors.Is(err, core.ErrRender) {
		t.Fatalf("expected render error for stale spec, got %v", err)
	}
	if !errors.Is(err, core.ErrStaleColumns) {
		t.Errorf("error should identify the stale columns, got %v", err)
	}
}

func TestPNG_EmptyHistogramRejected(t *testing.T) {
	spec := &plotspec.Spec{
		Kind:      plotspec.KindHistogram,
		Columns:   []core.ColumnName{"x"},
		Histogram: &plotspec.HistogramParams{Column: "x", Bins: 5},
	}
	tbl := buildTable(t, numericColumn("x"))

	if _, err := PNG(spec, tbl); err == nil {
		t.Fatal("expected error for a histogram with no values")
	}
}

func TestPNG_NilTableTreatedAsStale(t *testing.T) {
	tbl := buildTable(t, numericColumn("x", 1, 2, 3))
	spec, err := plotbuild.Histogram(tbl, "x", 3, 0)
	if err != nil {
		t.Fatalf("Histogram failed: %v", err)
	}

	if _, err := PNG(spec, nil); !errors.Is(err, core.ErrRender) {
		t.Fatalf("expected render error without a current table, got %v", err)
	}
}
