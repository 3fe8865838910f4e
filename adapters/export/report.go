package export

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"statview/domain/stats"
	"statview/domain/table"
)

// Report builds a markdown summary of the loaded table: a dataset
// overview followed by the descriptive statistics as a table. The
// records are expected to come from the same table passed in.
func Report(t *table.Table, records []stats.Record) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# Statistical Summary\n\n")
	fmt.Fprintf(&buf, "## Overview\n\n")
	fmt.Fprintf(&buf, "- Rows: %d\n", t.RowCount())
	fmt.Fprintf(&buf, "- Columns: %d (%d numeric)\n", t.ColumnCount(), len(t.NumericColumns()))

	for _, col := range t.Columns() {
		missing := col.MissingCount()
		rate := 0.0
		if t.RowCount() > 0 {
			rate = float64(missing) / float64(t.RowCount()) * 100
		}
		fmt.Fprintf(&buf, "- `%s`: %s, %d unique, %.1f%% missing\n",
			col.Name, col.Class, col.UniqueCount(), rate)
	}

	fmt.Fprintf(&buf, "\n## Descriptive Statistics\n\n")
	writeMarkdownTable(&buf, records)
	return buf.Bytes()
}

// ReportHTML renders the markdown report to HTML for in-browser display
func ReportHTML(t *table.Table, records []stats.Record) []byte {
	md := Report(t, records)
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.ToHTML(md, p, renderer)
}

func writeMarkdownTable(buf *bytes.Buffer, records []stats.Record) {
	buf.WriteString("| " + joinFields() + " |\n")
	buf.WriteString("|")
	for range stats.RecordFields {
		buf.WriteString("---|")
	}
	buf.WriteString("\n")

	for _, rec := range records {
		row := recordRow(rec)
		buf.WriteString("| ")
		for i, field := range row {
			if field == "" {
				field = "n/a"
			} else if i > 1 {
				// Trim display precision; exports keep full precision
				if v, ok := measureAt(rec, i).Float(); ok {
					field = strconv.FormatFloat(v, 'f', 4, 64)
				}
			}
			buf.WriteString(field)
			if i < len(row)-1 {
				buf.WriteString(" | ")
			}
		}
		buf.WriteString(" |\n")
	}
}

func measureAt(rec stats.Record, i int) stats.Measure {
	switch stats.RecordFields[i] {
	case "mean":
		return rec.Mean
	case "median":
		return rec.Median
	case "q1":
		return rec.Q1
	case "q3":
		return rec.Q3
	case "std_dev":
		return rec.StdDev
	case "skewness":
		return rec.Skewness
	case "kurtosis":
		return rec.Kurtosis
	case "min":
		return rec.Min
	case "max":
		return rec.Max
	}
	return stats.NotComputable()
}

func joinFields() string {
	out := ""
	for i, f := range stats.RecordFields {
		if i > 0 {
			out += " | "
		}
		out += f
	}
	return out
}
