package correlate

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"statview/domain/core"
	"statview/domain/stats"
	"statview/domain/table"
	"statview/internal/errors"
)

// Matrix computes the pairwise correlation matrix over the numeric
// columns of a table. Every pair uses only the rows where both columns
// are observed (pairwise-complete, independent of other columns'
// missingness). Pairs with fewer than 2 joint observations or zero
// variance in either side get a not-computable cell; the matrix itself
// always succeeds.
func Matrix(t *table.Table, method stats.Method) (*stats.CorrelationMatrix, error) {
	if method == "" {
		method = stats.MethodPearson
	}
	if method != stats.MethodPearson {
		return nil, errors.InvalidInput("unsupported correlation method " + string(method))
	}

	numeric := t.NumericColumns()
	names := make([]core.ColumnName, len(numeric))
	for i, col := range numeric {
		names[i] = col.Name
	}

	cells := make([][]stats.Pair, len(numeric))
	for i := range cells {
		cells[i] = make([]stats.Pair, len(numeric))
	}

	for i := 0; i < len(numeric); i++ {
		cells[i][i] = diagonal(numeric[i])
		for j := i + 1; j < len(numeric); j++ {
			cell := pearsonPair(numeric[i], numeric[j])
			cells[i][j] = cell
			cells[j][i] = cell
		}
	}

	return &stats.CorrelationMatrix{
		Method:  method,
		Columns: names,
		Cells:   cells,
	}, nil
}

// diagonal is 1.0 for columns with nonzero variance, else not computable
func diagonal(col *table.Column) stats.Pair {
	observed := col.Observed()
	if len(observed) < 2 || stat.Variance(observed, nil) == 0 {
		return stats.Pair{SampleSize: len(observed)}
	}
	return stats.Pair{
		Coefficient: stats.NewMeasure(1.0),
		PValue:      stats.NewMeasure(0),
		SampleSize:  len(observed),
	}
}

func pearsonPair(x, y *table.Column) stats.Pair {
	xs, ys := table.PairwiseComplete(x, y)
	n := len(xs)
	if n < 2 {
		return stats.Pair{SampleSize: n}
	}
	if stat.Variance(xs, nil) == 0 || stat.Variance(ys, nil) == 0 {
		return stats.Pair{SampleSize: n}
	}

	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) {
		return stats.Pair{SampleSize: n}
	}
	// Clamp rounding spill past the mathematical bound
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}

	return stats.Pair{
		Coefficient: stats.NewMeasure(r),
		PValue:      pValue(r, n),
		SampleSize:  n,
	}
}

// pValue computes the two-tailed p-value of r under the t-distribution
// with n-2 degrees of freedom
func pValue(r float64, n int) stats.Measure {
	if n < 3 {
		return stats.NotComputable()
	}
	if math.Abs(r) == 1 {
		return stats.NewMeasure(0)
	}
	df := float64(n - 2)
	t := r * math.Sqrt(df/(1-r*r))
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return stats.NewMeasure(2 * (1 - tDist.CDF(math.Abs(t))))
}

// TopCorrelated ranks the partners of a column by descending absolute
// coefficient, ties broken by source column order. The column itself
// and not-computable cells are excluded. k <= 0 returns every ranked
// partner; otherwise at most k.
func TopCorrelated(m *stats.CorrelationMatrix, column core.ColumnName, k int) ([]stats.Partner, error) {
	idx := m.Index(column)
	if idx < 0 {
		return nil, core.NewUnknownColumnError(column)
	}

	partners := make([]stats.Partner, 0, len(m.Columns)-1)
	for j, name := range m.Columns {
		if j == idx {
			continue
		}
		cell := m.Cells[idx][j]
		r, ok := cell.Coefficient.Float()
		if !ok {
			continue
		}
		partners = append(partners, stats.Partner{
			Column:      name,
			Coefficient: r,
			PValue:      cell.PValue,
		})
	}

	// Stable sort over column-ordered input keeps ties in table order
	sort.SliceStable(partners, func(a, b int) bool {
		return math.Abs(partners[a].Coefficient) > math.Abs(partners[b].Coefficient)
	})

	if k > 0 && len(partners) > k {
		partners = partners[:k]
	}
	return partners, nil
}
