package session

import (
	"errors"
	"testing"
	"time"

	"statview/domain/core"
	"statview/domain/stats"
	"statview/domain/table"
	apperrors "statview/internal/errors"
)

func numericColumn(name string, values ...float64) *table.Column {
	return &table.Column{
		Name:    core.ColumnName(name),
		Class:   table.ClassNumeric,
		Values:  values,
		Missing: make([]bool, len(values)),
		Raw:     make([]string, len(values)),
	}
}

func textColumn(name string, values ...string) *table.Column {
	return &table.Column{
		Name:    core.ColumnName(name),
		Class:   table.ClassNonNumeric,
		Missing: make([]bool, len(values)),
		Raw:     values,
	}
}

func testTable(t *testing.T) *table.Table {
	t.Helper()
	tbl, err := table.New([]*table.Column{
		numericColumn("a", 1, 2, 3, 4),
		numericColumn("b", 4, 3, 2, 1),
		textColumn("label", "w", "x", "y", "z"),
	}, 4)
	if err != nil {
		t.Fatalf("table.New failed: %v", err)
	}
	return tbl
}

func TestStore_CreateAndGet(t *testing.T) {
	store := NewStore(time.Hour, nil)
	id := store.Create(testTable(t), core.NewTableFingerprint([]byte("fixture")))

	got, err := store.Table(id)
	if err != nil {
		t.Fatalf("Table failed: %v", err)
	}
	if got.ColumnCount() != 3 {
		t.Errorf("expected 3 columns, got %d", got.ColumnCount())
	}

	if _, err := store.Table("missing"); err == nil {
		t.Fatal("expected error for unknown session")
	} else if apperrors.GetCode(err) != apperrors.CodeNotFound {
		t.Errorf("expected NOT_FOUND, got %s", apperrors.GetCode(err))
	}
}

func TestStore_ActiveSubset(t *testing.T) {
	store := NewStore(time.Hour, nil)
	id := store.Create(testTable(t), core.NewTableFingerprint([]byte("fixture")))

	if err := store.SetActiveColumns(id, []core.ColumnName{"a"}); err != nil {
		t.Fatalf("SetActiveColumns failed: %v", err)
	}

	active, err := store.ActiveTable(id)
	if err != nil {
		t.Fatalf("ActiveTable failed: %v", err)
	}
	if active.ColumnCount() != 1 {
		t.Errorf("expected 1 active column, got %d", active.ColumnCount())
	}

	// Empty selection resets to the full table
	if err := store.SetActiveColumns(id, nil); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	full, _ := store.ActiveTable(id)
	if full.ColumnCount() != 3 {
		t.Errorf("expected full table after reset, got %d columns", full.ColumnCount())
	}
}

func TestStore_SetActiveColumnsValidates(t *testing.T) {
	store := NewStore(time.Hour, nil)
	id := store.Create(testTable(t), core.NewTableFingerprint([]byte("fixture")))

	if err := store.SetActiveColumns(id, []core.ColumnName{"nope"}); !errors.Is(err, core.ErrInvalidColumn) {
		t.Errorf("expected invalid column for absent name, got %v", err)
	}
	if err := store.SetActiveColumns(id, []core.ColumnName{"label"}); !errors.Is(err, core.ErrInvalidColumn) {
		t.Errorf("expected invalid column for non-numeric name, got %v", err)
	}
}

func TestStore_CorrelationCachedUntilSubsetChanges(t *testing.T) {
	store := NewStore(time.Hour, nil)
	id := store.Create(testTable(t), core.NewTableFingerprint([]byte("fixture")))

	first, err := store.Correlation(id, stats.MethodPearson)
	if err != nil {
		t.Fatalf("Correlation failed: %v", err)
	}
	second, err := store.Correlation(id, stats.MethodPearson)
	if err != nil {
		t.Fatalf("Correlation failed: %v", err)
	}
	if first != second {
		t.Errorf("second call should return the cached matrix")
	}

	if err := store.SetActiveColumns(id, []core.ColumnName{"a"}); err != nil {
		t.Fatalf("SetActiveColumns failed: %v", err)
	}
	third, err := store.Correlation(id, stats.MethodPearson)
	if err != nil {
		t.Fatalf("Correlation failed: %v", err)
	}
	if third == first {
		t.Errorf("subset change must invalidate the cached matrix")
	}
	if len(third.Columns) != 1 {
		t.Errorf("recomputed matrix should cover the subset, got %v", third.Columns)
	}
}

func TestStore_ReplaceDiscardsState(t *testing.T) {
	store := NewStore(time.Hour, nil)
	id := store.Create(testTable(t), core.NewTableFingerprint([]byte("fixture")))

	if err := store.SetActiveColumns(id, []core.ColumnName{"a"}); err != nil {
		t.Fatalf("SetActiveColumns failed: %v", err)
	}
	if _, err := store.Correlation(id, stats.MethodPearson); err != nil {
		t.Fatalf("Correlation failed: %v", err)
	}

	replacement, err := table.New([]*table.Column{numericColumn("z", 9, 8)}, 2)
	if err != nil {
		t.Fatalf("table.New failed: %v", err)
	}
	if err := store.Replace(id, replacement, core.NewTableFingerprint([]byte("replacement"))); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	active, _ := store.ActiveTable(id)
	if active.ColumnCount() != 1 || active.Columns()[0].Name != "z" {
		t.Errorf("replace should reset the subset to the new table")
	}
	fp, err := store.Fingerprint(id)
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	if fp != core.NewTableFingerprint([]byte("replacement")) {
		t.Errorf("replace should update the fingerprint, got %s", fp)
	}
	matrix, err := store.Correlation(id, stats.MethodPearson)
	if err != nil {
		t.Fatalf("Correlation failed: %v", err)
	}
	if len(matrix.Columns) != 1 || matrix.Columns[0] != "z" {
		t.Errorf("matrix should be rebuilt from the new table, got %v", matrix.Columns)
	}
}

func TestStore_Sweep(t *testing.T) {
	store := NewStore(time.Minute, nil)
	id := store.Create(testTable(t), core.NewTableFingerprint([]byte("fixture")))

	if removed := store.Sweep(time.Now()); removed != 0 {
		t.Errorf("fresh session must survive the sweep")
	}
	if removed := store.Sweep(time.Now().Add(2 * time.Minute)); removed != 1 {
		t.Errorf("idle session should be swept")
	}
	if _, err := store.Table(id); err == nil {
		t.Errorf("swept session should be gone")
	}
	if store.Len() != 0 {
		t.Errorf("store should be empty after sweep")
	}
}
