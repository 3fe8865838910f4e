package table

import (
	"statview/domain/core"
)

// Class is the parse-time classification of a column
type Class string

const (
	ClassNumeric    Class = "numeric"
	ClassNonNumeric Class = "non_numeric"
)

// Column holds one named column of a loaded table.
// For numeric columns Values and Missing run parallel to the table's rows;
// Raw keeps the original cell text and is the only payload of non-numeric columns.
type Column struct {
	Name    core.ColumnName `json:"name"`
	Class   Class           `json:"class"`
	Values  []float64       `json:"-"`
	Missing []bool          `json:"-"`
	Raw     []string        `json:"-"`
}

// IsNumeric returns true for numeric columns
func (c *Column) IsNumeric() bool {
	return c.Class == ClassNumeric
}

// Observed returns the non-missing numeric values in row order
func (c *Column) Observed() []float64 {
	if !c.IsNumeric() {
		return nil
	}
	out := make([]float64, 0, len(c.Values))
	for i, v := range c.Values {
		if !c.Missing[i] {
			out = append(out, v)
		}
	}
	return out
}

// MissingCount returns the number of missing cells
func (c *Column) MissingCount() int {
	n := 0
	for _, m := range c.Missing {
		if m {
			n++
		}
	}
	return n
}

// UniqueCount returns the number of distinct non-missing cell texts
func (c *Column) UniqueCount() int {
	seen := make(map[string]struct{}, len(c.Raw))
	for i, r := range c.Raw {
		if i < len(c.Missing) && c.Missing[i] {
			continue
		}
		seen[r] = struct{}{}
	}
	return len(seen)
}

// Table is an immutable rectangular collection of named columns.
// It is built once per upload and never mutated; derived structures
// (stats records, correlation matrices, plot specs) are produced fresh
// from it on every request.
type Table struct {
	columns []*Column
	index   map[core.ColumnName]int
	rows    int
}

// New assembles a table from columns. Callers (the ingest loader) must
// supply rectangular columns with unique names.
func New(columns []*Column, rows int) (*Table, error) {
	index := make(map[core.ColumnName]int, len(columns))
	for i, col := range columns {
		if _, dup := index[col.Name]; dup {
			return nil, core.NewParseError("duplicate column "+col.Name.String(), core.ErrDuplicateField)
		}
		index[col.Name] = i
	}
	return &Table{columns: columns, index: index, rows: rows}, nil
}

// RowCount returns the number of data rows
func (t *Table) RowCount() int {
	return t.rows
}

// ColumnCount returns the number of columns
func (t *Table) ColumnCount() int {
	return len(t.columns)
}

// Columns returns all columns in table order
func (t *Table) Columns() []*Column {
	return t.columns
}

// Column looks up a column by name
func (t *Table) Column(name core.ColumnName) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.columns[i], true
}

// NumericColumns returns the numeric columns in table order
func (t *Table) NumericColumns() []*Column {
	out := make([]*Column, 0, len(t.columns))
	for _, col := range t.columns {
		if col.IsNumeric() {
			out = append(out, col)
		}
	}
	return out
}

// NumericNames returns the names of numeric columns in table order
func (t *Table) NumericNames() []core.ColumnName {
	cols := t.NumericColumns()
	names := make([]core.ColumnName, len(cols))
	for i, col := range cols {
		names[i] = col.Name
	}
	return names
}

// Select derives a new table holding the named columns, in selection order.
// The underlying column data is shared; columns are never mutated after load.
func (t *Table) Select(names []core.ColumnName) (*Table, error) {
	cols := make([]*Column, 0, len(names))
	for _, name := range names {
		col, ok := t.Column(name)
		if !ok {
			return nil, core.NewUnknownColumnError(name)
		}
		cols = append(cols, col)
	}
	return New(cols, t.rows)
}

// PairwiseComplete extracts the jointly observed values of two numeric
// columns: only rows where neither cell is missing contribute.
func PairwiseComplete(x, y *Column) (xs, ys []float64) {
	n := len(x.Values)
	if len(y.Values) < n {
		n = len(y.Values)
	}
	xs = make([]float64, 0, n)
	ys = make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if x.Missing[i] || y.Missing[i] {
			continue
		}
		xs = append(xs, x.Values[i])
		ys = append(ys, y.Values[i])
	}
	return xs, ys
}
