package describe

import (
	"math"
	"testing"

	"statview/domain/core"
	"statview/domain/table"
)

const tolerance = 1e-9

func numericColumn(name string, values ...float64) *table.Column {
	raw := make([]string, len(values))
	return &table.Column{
		Name:    core.ColumnName(name),
		Class:   table.ClassNumeric,
		Values:  values,
		Missing: make([]bool, len(values)),
		Raw:     raw,
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

func wantMeasure(t *testing.T, name string, got interface{ Float() (float64, bool) }, want float64) {
	t.Helper()
	v, ok := got.Float()
	if !ok {
		t.Fatalf("%s should be computable", name)
	}
	if math.Abs(v-want) > tolerance {
		t.Errorf("%s = %v, want %v", name, v, want)
	}
}

func TestSummarize_BasicColumn(t *testing.T) {
	tbl := buildTable(t,
		numericColumn("a", 1, 2, 3, 4, 5),
		&table.Column{
			Name:    "b",
			Class:   table.ClassNonNumeric,
			Missing: make([]bool, 5),
			Raw:     []string{"x", "y", "z", "w", "v"},
		},
	)

	records := Summarize(tbl)
	if len(records) != 1 {
		t.Fatalf("expected exactly one record, got %d", len(records))
	}

	rec := records[0]
	if rec.Column != "a" {
		t.Errorf("record column = %s, want a", rec.Column)
	}
	if rec.Count != 5 {
		t.Errorf("count = %d, want 5", rec.Count)
	}
	wantMeasure(t, "mean", rec.Mean, 3.0)
	wantMeasure(t, "median", rec.Median, 3.0)
	wantMeasure(t, "std_dev", rec.StdDev, math.Sqrt(2.5))
	wantMeasure(t, "min", rec.Min, 1.0)
	wantMeasure(t, "max", rec.Max, 5.0)
}

func TestSummarize_ExcludesMissing(t *testing.T) {
	col := numericColumn("a", 1, 2, 0, 4)
	col.Missing[2] = true
	tbl := buildTable(t, col)

	rec := Summarize(tbl)[0]
	if rec.Count != 3 {
		t.Errorf("count = %d, want 3", rec.Count)
	}
	wantMeasure(t, "mean", rec.Mean, 7.0/3.0)
}

func TestSummarize_QuantileInterpolation(t *testing.T) {
	tbl := buildTable(t, numericColumn("a", 1, 2, 3, 4))

	rec := Summarize(tbl)[0]
	wantMeasure(t, "q1", rec.Q1, 1.75)
	wantMeasure(t, "median", rec.Median, 2.5)
	wantMeasure(t, "q3", rec.Q3, 3.25)
}

func TestSummarize_QuantileOrderingHolds(t *testing.T) {
	samples := [][]float64{
		{1},
		{2, 2},
		{5, -3, 7, 0, 0, 12, 9},
		{0.1, 0.1, 0.1, 5000},
	}
	for _, sample := range samples {
		rec := Column(numericColumn("a", sample...))
		q1, _ := rec.Q1.Float()
		median, _ := rec.Median.Float()
		q3, _ := rec.Q3.Float()
		if q1 > median || median > q3 {
			t.Errorf("quantile ordering violated for %v: q1=%v median=%v q3=%v", sample, q1, median, q3)
		}
	}
}

func TestSummarize_IdenticalValues(t *testing.T) {
	rec := Column(numericColumn("a", 7, 7, 7, 7))

	wantMeasure(t, "std_dev", rec.StdDev, 0)
	if _, ok := rec.Skewness.Float(); ok {
		t.Errorf("skewness of a constant column should not be computable")
	}
	if _, ok := rec.Kurtosis.Float(); ok {
		t.Errorf("kurtosis of a constant column should not be computable")
	}
}

func TestSummarize_ShapeStatistics(t *testing.T) {
	rec := Column(numericColumn("a", 1, 2, 3, 4, 5))

	// Symmetric data has zero skewness; uniform 1..5 has sample excess
	// kurtosis -1.2 under the bias-corrected formula.
	wantMeasure(t, "skewness", rec.Skewness, 0)
	wantMeasure(t, "kurtosis", rec.Kurtosis, -1.2)
}

func TestSummarize_SmallSamples(t *testing.T) {
	one := Column(numericColumn("a", 42))
	if one.Count != 1 {
		t.Fatalf("count = %d, want 1", one.Count)
	}
	wantMeasure(t, "median", one.Median, 42)
	if _, ok := one.StdDev.Float(); ok {
		t.Errorf("std_dev needs two observations")
	}

	two := Column(numericColumn("a", 1, 3))
	wantMeasure(t, "std_dev", two.StdDev, math.Sqrt2)
	if _, ok := two.Skewness.Float(); ok {
		t.Errorf("skewness needs three observations")
	}

	three := Column(numericColumn("a", 1, 2, 4))
	if _, ok := three.Skewness.Float(); !ok {
		t.Errorf("skewness of three distinct observations should be computable")
	}
	if _, ok := three.Kurtosis.Float(); ok {
		t.Errorf("kurtosis needs four observations")
	}
}

func TestSummarize_EmptyColumn(t *testing.T) {
	col := numericColumn("a", 0, 0)
	col.Missing[0] = true
	col.Missing[1] = true

	rec := Column(col)
	if rec.Count != 0 {
		t.Errorf("count = %d, want 0", rec.Count)
	}
	if _, ok := rec.Mean.Float(); ok {
		t.Errorf("mean of an empty column should not be computable")
	}
}

func TestSummarize_NoNumericColumns(t *testing.T) {
	tbl := buildTable(t, &table.Column{
		Name:    "b",
		Class:   table.ClassNonNumeric,
		Missing: make([]bool, 2),
		Raw:     []string{"x", "y"},
	})

	records := Summarize(tbl)
	if len(records) != 0 {
		t.Errorf("expected empty result for a table with no numeric columns, got %d", len(records))
	}
}

func TestSummarize_MeanEqualsSumOverCount(t *testing.T) {
	values := []float64{2.5, -1, 7, 3.25, 0, 11}
	rec := Column(numericColumn("a", values...))

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	wantMeasure(t, "mean", rec.Mean, sum/float64(len(values)))
}
