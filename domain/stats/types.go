package stats

import (
	"encoding/json"
	"math"

	"statview/domain/core"
)

// Measure is a single statistic that may be not computable for a column
// (zero variance, too few observations). Not-computable is an explicit
// state, never NaN or Inf: a Measure with OK=false has Value 0 and
// serializes as null / an empty CSV field.
type Measure struct {
	Value float64
	OK    bool
}

// NewMeasure wraps a computed value. NaN and Inf inputs collapse to
// not computable so they can never leak into output.
func NewMeasure(v float64) Measure {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NotComputable()
	}
	return Measure{Value: v, OK: true}
}

// NotComputable returns the distinguished not-computable measure
func NotComputable() Measure {
	return Measure{}
}

// Float returns the value and whether it is computable
func (m Measure) Float() (float64, bool) {
	return m.Value, m.OK
}

func (m Measure) MarshalJSON() ([]byte, error) {
	if !m.OK {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

func (m *Measure) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = NotComputable()
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = NewMeasure(v)
	return nil
}

// Record carries the descriptive statistics of one numeric column.
// Count is the number of observed (non-missing) values; every other
// field is computed over observed values only.
type Record struct {
	Column   core.ColumnName `json:"column"`
	Count    int             `json:"count"`
	Mean     Measure         `json:"mean"`
	Median   Measure         `json:"median"`
	Q1       Measure         `json:"q1"`
	Q3       Measure         `json:"q3"`
	StdDev   Measure         `json:"std_dev"`
	Skewness Measure         `json:"skewness"`
	Kurtosis Measure         `json:"kurtosis"`
	Min      Measure         `json:"min"`
	Max      Measure         `json:"max"`
}

// RecordFields is the export header, leading with the contract fields
// and ending with the supplemental min/max pair.
var RecordFields = []string{
	"column", "count", "mean", "median", "q1", "q3",
	"std_dev", "skewness", "kurtosis", "min", "max",
}

// Method identifies a correlation method
type Method string

const (
	MethodPearson Method = "pearson"
)

// Pair is one cell of a correlation matrix: the coefficient plus the
// two-tailed p-value of the corresponding t-test.
type Pair struct {
	Coefficient Measure `json:"coefficient"`
	PValue      Measure `json:"p_value"`
	SampleSize  int     `json:"sample_size"`
}

// CorrelationMatrix is a symmetric matrix of pairwise-complete
// correlations over the numeric columns of one table. Columns preserves
// source table order; Cells[i][j] pairs Columns[i] with Columns[j].
type CorrelationMatrix struct {
	Method  Method            `json:"method"`
	Columns []core.ColumnName `json:"columns"`
	Cells   [][]Pair          `json:"cells"`
}

// Index returns the matrix position of a column, or -1 if absent
func (m *CorrelationMatrix) Index(name core.ColumnName) int {
	for i, c := range m.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// At looks up the cell for a pair of columns
func (m *CorrelationMatrix) At(x, y core.ColumnName) (Pair, error) {
	i := m.Index(x)
	if i < 0 {
		return Pair{}, core.NewUnknownColumnError(x)
	}
	j := m.Index(y)
	if j < 0 {
		return Pair{}, core.NewUnknownColumnError(y)
	}
	return m.Cells[i][j], nil
}

// Partner is one entry of a top-correlated ranking
type Partner struct {
	Column      core.ColumnName `json:"column"`
	Coefficient float64         `json:"coefficient"`
	PValue      Measure         `json:"p_value"`
}
