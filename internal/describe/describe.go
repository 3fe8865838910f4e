package describe

import (
	"math"
	"sort"

	montstats "github.com/montanaflynn/stats"

	"statview/domain/stats"
	"statview/domain/table"
)

// Summarize computes one Record per numeric column, in table order.
// Missing cells are excluded before anything is computed; a table with
// no numeric columns yields an empty slice, never an error.
func Summarize(t *table.Table) []stats.Record {
	numeric := t.NumericColumns()
	records := make([]stats.Record, 0, len(numeric))
	for _, col := range numeric {
		records = append(records, summarizeColumn(col))
	}
	return records
}

// Column summarizes a single numeric column
func Column(col *table.Column) stats.Record {
	return summarizeColumn(col)
}

func summarizeColumn(col *table.Column) stats.Record {
	observed := col.Observed()
	record := stats.Record{
		Column: col.Name,
		Count:  len(observed),
	}
	if len(observed) == 0 {
		return record
	}

	mean, err := montstats.Mean(observed)
	if err == nil {
		record.Mean = stats.NewMeasure(mean)
	}
	if min, err := montstats.Min(observed); err == nil {
		record.Min = stats.NewMeasure(min)
	}
	if max, err := montstats.Max(observed); err == nil {
		record.Max = stats.NewMeasure(max)
	}

	sorted := append([]float64(nil), observed...)
	sort.Float64s(sorted)
	record.Q1 = stats.NewMeasure(quantile(sorted, 0.25))
	record.Median = stats.NewMeasure(quantile(sorted, 0.50))
	record.Q3 = stats.NewMeasure(quantile(sorted, 0.75))

	// Sample standard deviation (n-1 denominator); undefined below
	// two observations.
	if len(observed) >= 2 {
		if sd, err := montstats.StandardDeviationSample(observed); err == nil {
			record.StdDev = stats.NewMeasure(sd)
		}
	}

	record.Skewness = skewness(observed, mean)
	record.Kurtosis = kurtosis(observed, mean)
	return record
}

// quantile interpolates linearly between order statistics on a sorted
// slice: h = (n-1)p, result = s[floor(h)] + frac(h) * (s[floor(h)+1] -
// s[floor(h)]). Matches the interpolation the median uses, so
// q1 <= median <= q3 holds for any nonempty input.
func quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	h := float64(n-1) * p
	lo := int(math.Floor(h))
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := h - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// skewness computes the adjusted Fisher-Pearson coefficient:
// g1 * sqrt(n(n-1))/(n-2) with g1 the third standardized moment over
// the population std dev. Not computable for n < 3 or zero variance.
func skewness(data []float64, mean float64) stats.Measure {
	n := float64(len(data))
	if len(data) < 3 {
		return stats.NotComputable()
	}
	m2, m3 := 0.0, 0.0
	for _, x := range data {
		d := x - mean
		m2 += d * d
		m3 += d * d * d
	}
	m2 /= n
	m3 /= n
	if m2 == 0 {
		return stats.NotComputable()
	}

	g1 := m3 / math.Pow(m2, 1.5)
	correction := math.Sqrt(n*(n-1)) / (n - 2)
	return stats.NewMeasure(g1 * correction)
}

// kurtosis computes sample excess kurtosis with the standard bias
// correction: ((n-1)/((n-2)(n-3))) * ((n+1)(m4/m2^2 - 3) + 6). A normal
// distribution yields ~0. Not computable for n < 4 or zero variance.
func kurtosis(data []float64, mean float64) stats.Measure {
	n := float64(len(data))
	if len(data) < 4 {
		return stats.NotComputable()
	}
	m2, m4 := 0.0, 0.0
	for _, x := range data {
		d := x - mean
		d2 := d * d
		m2 += d2
		m4 += d2 * d2
	}
	m2 /= n
	m4 /= n
	if m2 == 0 {
		return stats.NotComputable()
	}

	g2 := m4/(m2*m2) - 3
	correction := (n - 1) / ((n - 2) * (n - 3))
	return stats.NewMeasure(correction * ((n+1)*g2 + 6))
}
