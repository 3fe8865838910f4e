package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input errors
	ErrParse          = errors.New("malformed tabular input")
	ErrRaggedRow      = fmt.Errorf("%w: ragged row", ErrParse)
	ErrEmptyInput     = fmt.Errorf("%w: empty input", ErrParse)
	ErrBadEncoding    = fmt.Errorf("%w: undecodable bytes", ErrParse)
	ErrDuplicateField = fmt.Errorf("%w: duplicate column name", ErrParse)

	// Selection errors
	ErrInvalidColumn  = errors.New("invalid column selection")
	ErrUnknownColumn  = errors.New("unknown column")
	ErrEmptySelection = errors.New("selection contains no numeric columns")

	// Export errors
	ErrRender       = errors.New("render failed")
	ErrStaleColumns = fmt.Errorf("%w: plot references columns absent from current table", ErrRender)
)

// Error constructors with context
func NewParseError(detail string, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrParse, detail, err)
	}
	return fmt.Errorf("%w: %s", ErrParse, detail)
}

func NewRaggedRowError(row, got, want int) error {
	return fmt.Errorf("%w %d: %d fields, header has %d", ErrRaggedRow, row, got, want)
}

func NewInvalidColumnError(column ColumnName, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidColumn, column, reason)
}

func NewUnknownColumnError(column ColumnName) error {
	return fmt.Errorf("%w: %s", ErrUnknownColumn, column)
}

func NewStaleColumnsError(columns []ColumnName) error {
	return fmt.Errorf("%w: %v", ErrStaleColumns, columns)
}

// Error checking helpers
func IsParseError(err error) bool {
	return errors.Is(err, ErrParse)
}

func IsSelectionError(err error) bool {
	return errors.Is(err, ErrInvalidColumn) ||
		errors.Is(err, ErrUnknownColumn) ||
		errors.Is(err, ErrEmptySelection)
}

func IsRenderError(err error) bool {
	return errors.Is(err, ErrRender)
}
