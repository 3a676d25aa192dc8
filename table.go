package dtanalysis

import (
	"fmt"
	"slices"

	"github.com/ezachrisen/dtanalysis/index"
)

// Table is a snapshot of a decision table: column metadata and rows of
// cell values. Cells hold plain Go values; nil is a blank cell.
type Table struct {
	Name    string
	Columns []Column
	Data    [][]any
}

// Coordinate identifies a cell by its zero-based row and column.
type Coordinate struct {
	Row    int
	Column int
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Column)
}

// Row is shorthand for building a table row.
func Row(cells ...any) []any {
	return cells
}

// Rows is the number of rows in the table.
func (t *Table) Rows() int {
	return len(t.Data)
}

// Cell returns the value at c.
func (t *Table) Cell(c Coordinate) (any, error) {
	if c.Row < 0 || c.Row >= len(t.Data) || c.Column < 0 || c.Column >= len(t.Columns) {
		return nil, fmt.Errorf("%w: %s in a %dx%d table", ErrCoordinateOutOfRange, c, len(t.Data), len(t.Columns))
	}
	return t.Data[c.Row][c.Column], nil
}

// SetCell replaces the value at c and returns the previous one.
func (t *Table) SetCell(c Coordinate, v any) (any, error) {
	old, err := t.Cell(c)
	if err != nil {
		return nil, err
	}
	t.Data[c.Row][c.Column] = v
	return old, nil
}

// Validate checks that every row has one cell per column and that column
// UUIDs are present and unique. Column UUIDs may not take the IDs of the
// definitions every inspector carries.
func (t *Table) Validate() error {
	seen := map[string]bool{
		index.UniqueUUID.ID():    true,
		RowIndexDefinition.ID():  true,
		SuperTypeDefinition.ID(): true,
	}
	for i, c := range t.Columns {
		if c.UUID == "" {
			return fmt.Errorf("column %d (%s) has no UUID", i, c.Header)
		}
		if seen[c.UUID] {
			return fmt.Errorf("duplicate or reserved column UUID %s", c.UUID)
		}
		seen[c.UUID] = true
	}
	for i, r := range t.Data {
		if len(r) != len(t.Columns) {
			return fmt.Errorf("%w: row %d has %d cells, want %d", ErrColumnMismatch, i, len(r), len(t.Columns))
		}
	}
	return nil
}

// Clone returns a deep copy of the table structure. Cell values are copied
// by assignment.
func (t *Table) Clone() *Table {
	c := &Table{
		Name:    t.Name,
		Columns: slices.Clone(t.Columns),
		Data:    make([][]any, len(t.Data)),
	}
	for i, r := range t.Data {
		c.Data[i] = slices.Clone(r)
	}
	return c
}

// RemoveRow deletes row i.
func (t *Table) RemoveRow(i int) error {
	if i < 0 || i >= len(t.Data) {
		return fmt.Errorf("removing row: %w: %d", ErrCoordinateOutOfRange, i)
	}
	t.Data = slices.Delete(t.Data, i, i+1)
	return nil
}

// InsertRow inserts row at position i, moving later rows down.
func (t *Table) InsertRow(i int, row []any) error {
	if i < 0 || i > len(t.Data) {
		return fmt.Errorf("inserting row: %w: %d", ErrCoordinateOutOfRange, i)
	}
	if len(row) != len(t.Columns) {
		return fmt.Errorf("inserting row: %w: %d cells, want %d", ErrColumnMismatch, len(row), len(t.Columns))
	}
	t.Data = slices.Insert(t.Data, i, slices.Clone(row))
	return nil
}

// RemoveColumns deletes count columns starting at start, with their cells.
func (t *Table) RemoveColumns(start, count int) error {
	if err := checkSpan(start, count, len(t.Columns)); err != nil {
		return fmt.Errorf("removing columns: %w", err)
	}
	t.Columns = slices.Delete(t.Columns, start, start+count)
	for i, r := range t.Data {
		t.Data[i] = slices.Delete(r, start, start+count)
	}
	return nil
}

// InsertColumns inserts cols at position start. Every row gets a blank
// cell for each new column.
func (t *Table) InsertColumns(start int, cols ...Column) error {
	if start < 0 || start > len(t.Columns) {
		return fmt.Errorf("inserting columns: %w: %d", ErrCoordinateOutOfRange, start)
	}
	t.Columns = slices.Insert(t.Columns, start, cols...)
	blank := make([]any, len(cols))
	for i, r := range t.Data {
		t.Data[i] = slices.Insert(r, start, blank...)
	}
	return nil
}

func checkSpan(start, count, n int) error {
	if start < 0 || count < 0 || start+count > n {
		return fmt.Errorf("%w: [%d, %d) of %d", ErrCoordinateOutOfRange, start, start+count, n)
	}
	return nil
}
