package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"statview/domain/core"
	"statview/domain/table"
	"statview/internal"

	"github.com/xuri/excelize/v2"
)

// Format identifies the byte format of an upload
type Format string

const (
	FormatAuto Format = "auto"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Cell texts treated as missing values, lowercase. Empty and
// whitespace-only cells are always missing.
var missingMarkers = map[string]struct{}{
	"na":   {},
	"n/a":  {},
	"nan":  {},
	"null": {},
}

var xlsxMagic = []byte{0x50, 0x4b, 0x03, 0x04}

// Loader parses raw uploads into typed tables
type Loader struct {
	maxBytes int64
	log      *internal.Logger
}

// NewLoader creates a loader. maxBytes <= 0 disables the size check.
func NewLoader(maxBytes int64, logger *internal.Logger) *Loader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Loader{maxBytes: maxBytes, log: logger.Named("ingest")}
}

// Load parses raw bytes into a table. FormatAuto sniffs XLSX uploads by
// their zip magic and falls back to CSV.
func (l *Loader) Load(raw []byte, format Format) (*table.Table, error) {
	if l.maxBytes > 0 && int64(len(raw)) > l.maxBytes {
		return nil, core.NewParseError("input exceeds size limit", nil)
	}
	if len(raw) == 0 {
		return nil, core.ErrEmptyInput
	}

	if format == FormatAuto || format == "" {
		format = FormatCSV
		if bytes.HasPrefix(raw, xlsxMagic) {
			format = FormatXLSX
		}
	}

	switch format {
	case FormatCSV:
		return l.loadCSV(raw)
	case FormatXLSX:
		return l.loadXLSX(raw)
	default:
		return nil, core.NewParseError("unsupported format "+string(format), nil)
	}
}

// loadCSV parses delimiter-separated text with a header row. Ragged
// rows are a parse error: the contract promises rectangular tables.
func (l *Loader) loadCSV(raw []byte) (*table.Table, error) {
	raw = bytes.TrimPrefix(raw, []byte{0xEF, 0xBB, 0xBF}) // UTF-8 BOM
	if !utf8.Valid(raw) {
		return nil, core.ErrBadEncoding
	}

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.TrimLeadingSpace = true

	records := make([][]string, 0, 64)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) && errors.Is(parseErr.Err, csv.ErrFieldCount) {
			return nil, core.NewRaggedRowError(parseErr.Line, len(record), reader.FieldsPerRecord)
		}
		if err != nil {
			return nil, core.NewParseError("csv read failed", err)
		}
		records = append(records, record)
	}

	t, err := l.buildTable(records)
	if err != nil {
		return nil, err
	}
	l.log.Debug("parsed csv: %d columns, %d rows", t.ColumnCount(), t.RowCount())
	return t, nil
}

// loadXLSX reads the first sheet of a workbook. Excel trims trailing
// empty cells per row, so short rows are padded with missing cells
// instead of being treated as ragged.
func (l *Loader) loadXLSX(raw []byte) (*table.Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, core.NewParseError("failed to open workbook", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, core.ErrEmptyInput
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, core.NewParseError("failed to read sheet "+sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, core.ErrEmptyInput
	}

	width := len(rows[0])
	for i := range rows {
		if len(rows[i]) > width {
			return nil, core.NewRaggedRowError(i+1, len(rows[i]), width)
		}
		for len(rows[i]) < width {
			rows[i] = append(rows[i], "")
		}
	}

	t, err := l.buildTable(rows)
	if err != nil {
		return nil, err
	}
	l.log.Debug("parsed xlsx sheet %q: %d columns, %d rows", sheets[0], t.ColumnCount(), t.RowCount())
	return t, nil
}

// buildTable classifies columns and assembles the immutable table.
// A column is numeric iff every non-missing cell parses as a float;
// a single non-numeric cell demotes the whole column. Missing cells
// never demote, and a column of only missing cells stays numeric
// with zero observations.
func (l *Loader) buildTable(records [][]string) (*table.Table, error) {
	if len(records) == 0 || len(records[0]) == 0 {
		return nil, core.ErrEmptyInput
	}

	header := records[0]
	body := records[1:]
	seen := make(map[string]struct{}, len(header))
	columns := make([]*table.Column, len(header))

	for j, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, core.NewParseError("blank column name at position "+strconv.Itoa(j+1), nil)
		}
		if _, dup := seen[name]; dup {
			return nil, core.NewParseError("column "+name, core.ErrDuplicateField)
		}
		seen[name] = struct{}{}
		columns[j] = classifyColumn(core.ColumnName(name), body, j)
	}

	return table.New(columns, len(body))
}

func classifyColumn(name core.ColumnName, body [][]string, j int) *table.Column {
	col := &table.Column{
		Name:    name,
		Class:   table.ClassNumeric,
		Values:  make([]float64, len(body)),
		Missing: make([]bool, len(body)),
		Raw:     make([]string, len(body)),
	}

	for i, record := range body {
		cell := record[j]
		col.Raw[i] = cell
		if isMissing(cell) {
			col.Missing[i] = true
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
		if err != nil {
			col.Class = table.ClassNonNumeric
			col.Values = nil
			col.Missing = missingMask(body, j)
			return col
		}
		col.Values[i] = v
	}
	return col
}

func missingMask(body [][]string, j int) []bool {
	mask := make([]bool, len(body))
	for i, record := range body {
		mask[i] = isMissing(record[j])
	}
	return mask
}

func isMissing(cell string) bool {
	trimmed := strings.TrimSpace(cell)
	if trimmed == "" {
		return true
	}
	_, ok := missingMarkers[strings.ToLower(trimmed)]
	return ok
}
