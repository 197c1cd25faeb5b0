package types

import "errors"

// Column value kinds. Kind drives type-format validation and decides which
// columns numeric strategies may target.
const (
	KindText    = "text"
	KindNumeric = "numeric"
	KindDate    = "date"
)

// Column declares one named table column and its value kind.
type Column struct {
	Name string `json:"name" yaml:"name"`
	Kind string `json:"kind" yaml:"kind"`
}

// Default chest-record columns. The engine treats the column set as
// configurable; this is the schema the reference data ships with.
const (
	ColumnDate   = "DATE"
	ColumnPlayer = "PLAYER"
	ColumnSource = "SOURCE"
	ColumnChest  = "CHEST"
	ColumnScore  = "SCORE"
	ColumnClan   = "CLAN"
)

// DefaultColumns returns the chest-record column set.
func DefaultColumns() []Column {
	return []Column{
		{Name: ColumnDate, Kind: KindDate},
		{Name: ColumnPlayer, Kind: KindText},
		{Name: ColumnSource, Kind: KindText},
		{Name: ColumnChest, Kind: KindText},
		{Name: ColumnScore, Kind: KindNumeric},
		{Name: ColumnClan, Kind: KindText},
	}
}

// Table operation errors.
var (
	ErrIndexOutOfRange     = errors.New("index out of range")
	ErrUnknownColumn       = errors.New("unknown column")
	ErrColumnNotNumeric    = errors.New("column is not numeric")
	ErrColumnCountMismatch = errors.New("row length does not match column count")
)

// Table is an ordered sequence of rows over a declared column set. Every row
// holds a value (possibly the empty string) for every declared column; row
// order is stable under in-place edits and rows are renumbered 0..N-1 after
// deletions.
type Table struct {
	columns []Column
	rows    [][]string
}

// NewTable creates an empty table over the given columns.
func NewTable(columns []Column) *Table {
	cols := make([]Column, len(columns))
	copy(cols, columns)
	return &Table{columns: cols}
}

// Columns returns a copy of the declared column set.
func (t *Table) Columns() []Column {
	cols := make([]Column, len(t.columns))
	copy(cols, t.columns)
	return cols
}

// ColumnNames returns the declared column names in declaration order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// ColumnIndex returns the position of the named column.
// Returns ErrUnknownColumn if the name is not declared.
func (t *Table) ColumnIndex(name string) (int, error) {
	for i, c := range t.columns {
		if c.Name == name {
			return i, nil
		}
	}
	return 0, ErrUnknownColumn
}

// ColumnKind returns the declared kind of the named column.
func (t *Table) ColumnKind(name string) (string, error) {
	for _, c := range t.columns {
		if c.Name == name {
			return c.Kind, nil
		}
	}
	return "", ErrUnknownColumn
}

// RowCount returns the number of rows.
func (t *Table) RowCount() int { return len(t.rows) }

// ColumnCount returns the number of declared columns.
func (t *Table) ColumnCount() int { return len(t.columns) }

// IsEmpty reports whether the table has no rows.
func (t *Table) IsEmpty() bool { return len(t.rows) == 0 }

// AppendRow appends a row. The row must have exactly one value per declared
// column; returns ErrColumnCountMismatch otherwise.
func (t *Table) AppendRow(values []string) error {
	if len(values) != len(t.columns) {
		return ErrColumnCountMismatch
	}
	row := make([]string, len(values))
	copy(row, values)
	t.rows = append(t.rows, row)
	return nil
}

// Row returns a copy of the row at the given index.
func (t *Table) Row(index int) ([]string, error) {
	if index < 0 || index >= len(t.rows) {
		return nil, ErrIndexOutOfRange
	}
	row := make([]string, len(t.rows[index]))
	copy(row, t.rows[index])
	return row, nil
}

// Cell returns the value at (row, column index).
func (t *Table) Cell(row, col int) (string, error) {
	if row < 0 || row >= len(t.rows) {
		return "", ErrIndexOutOfRange
	}
	if col < 0 || col >= len(t.columns) {
		return "", ErrIndexOutOfRange
	}
	return t.rows[row][col], nil
}

// SetCell replaces the value at (row, column index).
func (t *Table) SetCell(row, col int, value string) error {
	if row < 0 || row >= len(t.rows) {
		return ErrIndexOutOfRange
	}
	if col < 0 || col >= len(t.columns) {
		return ErrIndexOutOfRange
	}
	t.rows[row][col] = value
	return nil
}

// DeleteRows removes the rows at the given indices. Surviving rows keep
// their relative order and are renumbered 0..N-1. Out-of-range indices are
// ignored.
func (t *Table) DeleteRows(indices []int) {
	if len(indices) == 0 {
		return
	}
	drop := make(map[int]bool, len(indices))
	for _, i := range indices {
		drop[i] = true
	}
	kept := t.rows[:0]
	for i, row := range t.rows {
		if !drop[i] {
			kept = append(kept, row)
		}
	}
	t.rows = kept
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	c := NewTable(t.columns)
	c.rows = make([][]string, len(t.rows))
	for i, row := range t.rows {
		c.rows[i] = make([]string, len(row))
		copy(c.rows[i], row)
	}
	return c
}

// Column returns a copy of all values in the named column, in row order.
func (t *Table) Column(name string) ([]string, error) {
	idx, err := t.ColumnIndex(name)
	if err != nil {
		return nil, err
	}
	values := make([]string, len(t.rows))
	for i, row := range t.rows {
		values[i] = row[idx]
	}
	return values, nil
}
