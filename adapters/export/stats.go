package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"statview/domain/core"
	"statview/domain/stats"
	"statview/internal/errors"
)

// StatsCSV serializes stats records to delimited text: one header row
// of field names, one row per record, not-computable rendered as an
// empty field.
func StatsCSV(records []stats.Record) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(stats.RecordFields); err != nil {
		return nil, errors.Wrap(err, "failed to write csv header")
	}
	for _, rec := range records {
		if err := w.Write(recordRow(rec)); err != nil {
			return nil, errors.Wrapf(err, "failed to write row for column %s", rec.Column)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, errors.Wrap(err, "failed to flush csv")
	}
	return buf.Bytes(), nil
}

// StatsXLSX serializes stats records to a single-sheet workbook
func StatsXLSX(records []stats.Record) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for j, field := range stats.RecordFields {
		cell, err := excelize.CoordinatesToCellName(j+1, 1)
		if err != nil {
			return nil, errors.Wrap(err, "failed to address header cell")
		}
		if err := f.SetCellValue(sheet, cell, field); err != nil {
			return nil, errors.Wrap(err, "failed to write header cell")
		}
	}

	for i, rec := range records {
		row := recordRow(rec)
		for j, value := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return nil, errors.Wrap(err, "failed to address cell")
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, errors.Wrapf(err, "failed to write row for column %s", rec.Column)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, errors.Wrap(err, "failed to encode workbook")
	}
	return buf.Bytes(), nil
}

func recordRow(rec stats.Record) []string {
	return []string{
		rec.Column.String(),
		strconv.Itoa(rec.Count),
		formatMeasure(rec.Mean),
		formatMeasure(rec.Median),
		formatMeasure(rec.Q1),
		formatMeasure(rec.Q3),
		formatMeasure(rec.StdDev),
		formatMeasure(rec.Skewness),
		formatMeasure(rec.Kurtosis),
		formatMeasure(rec.Min),
		formatMeasure(rec.Max),
	}
}

func formatMeasure(m stats.Measure) string {
	v, ok := m.Float()
	if !ok {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ParseStatsCSV reads a stats export back into records. Round-trips
// with StatsCSV; used by callers that re-ingest a saved summary.
func ParseStatsCSV(raw []byte) ([]stats.Record, error) {
	r := csv.NewReader(bytes.NewReader(raw))
	rows, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse stats csv")
	}
	if len(rows) == 0 {
		return nil, errors.ParseError("stats csv has no header row")
	}
	if len(rows[0]) != len(stats.RecordFields) {
		return nil, errors.ParseError(fmt.Sprintf("stats csv has %d fields, want %d", len(rows[0]), len(stats.RecordFields)))
	}

	records := make([]stats.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		count, err := strconv.Atoi(row[1])
		if err != nil {
			return nil, errors.Wrapf(err, "bad count for column %s", row[0])
		}
		rec := stats.Record{Column: core.ColumnName(row[0]), Count: count}
		measures := []*stats.Measure{
			&rec.Mean, &rec.Median, &rec.Q1, &rec.Q3,
			&rec.StdDev, &rec.Skewness, &rec.Kurtosis, &rec.Min, &rec.Max,
		}
		for i, m := range measures {
			parsed, err := parseMeasure(row[i+2])
			if err != nil {
				return nil, errors.Wrapf(err, "bad %s for column %s", stats.RecordFields[i+2], row[0])
			}
			*m = parsed
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseMeasure(field string) (stats.Measure, error) {
	if field == "" {
		return stats.NotComputable(), nil
	}
	v, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return stats.Measure{}, err
	}
	return stats.NewMeasure(v), nil
}
