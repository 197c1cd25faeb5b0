package types

// CellStatus is the validation state of a single table cell.
type CellStatus int

// Cell statuses, ordered by increasing severity.
const (
	StatusNotValidated CellStatus = iota
	StatusValid
	StatusWarning
	StatusCorrectable
	StatusInvalid
	StatusInvalidRow
)

// String returns the display name of the status.
func (s CellStatus) String() string {
	switch s {
	case StatusNotValidated:
		return "not_validated"
	case StatusValid:
		return "valid"
	case StatusWarning:
		return "warning"
	case StatusCorrectable:
		return "correctable"
	case StatusInvalid:
		return "invalid"
	case StatusInvalidRow:
		return "invalid_row"
	default:
		return "unknown"
	}
}

// CellRef identifies one (row, column) pair of a table.
type CellRef struct {
	Row int
	Col int
}

// CellState is the validation result for one (row, column) pair.
type CellState struct {
	Valid   bool
	Status  CellStatus
	Message string
}

// StatusMatrix holds one CellState per (row, column) pair of a validated
// table, plus a per-row aggregate. Row index i of the matrix always maps to
// row index i of the table it was produced from.
type StatusMatrix struct {
	Columns   []string
	Cells     [][]CellState
	RowStatus []CellStatus
}

// NewStatusMatrix builds a matrix for rows x columns with every cell
// not-validated, empty message, Valid=false.
func NewStatusMatrix(columns []string, rows int) *StatusMatrix {
	cols := make([]string, len(columns))
	copy(cols, columns)
	m := &StatusMatrix{
		Columns:   cols,
		Cells:     make([][]CellState, rows),
		RowStatus: make([]CellStatus, rows),
	}
	for i := range m.Cells {
		m.Cells[i] = make([]CellState, len(cols))
	}
	return m
}

// Cell returns a pointer to the state at (row, col).
func (m *StatusMatrix) Cell(row, col int) (*CellState, error) {
	if row < 0 || row >= len(m.Cells) {
		return nil, ErrIndexOutOfRange
	}
	if col < 0 || col >= len(m.Columns) {
		return nil, ErrIndexOutOfRange
	}
	return &m.Cells[row][col], nil
}

// RecomputeRowStatus recalculates every row's aggregate as the worst status
// among its cells.
func (m *StatusMatrix) RecomputeRowStatus() {
	for i, row := range m.Cells {
		worst := StatusNotValidated
		for _, cell := range row {
			if cell.Status > worst {
				worst = cell.Status
			}
		}
		m.RowStatus[i] = worst
	}
}

// StatusCounts aggregates cell totals by status for summary display.
type StatusCounts struct {
	NotValidated int
	Valid        int
	Warning      int
	Correctable  int
	Invalid      int
	InvalidRow   int
}

// Counts tallies the matrix cells by status.
func (m *StatusMatrix) Counts() StatusCounts {
	var c StatusCounts
	for _, row := range m.Cells {
		for _, cell := range row {
			switch cell.Status {
			case StatusValid:
				c.Valid++
			case StatusWarning:
				c.Warning++
			case StatusCorrectable:
				c.Correctable++
			case StatusInvalid:
				c.Invalid++
			case StatusInvalidRow:
				c.InvalidRow++
			default:
				c.NotValidated++
			}
		}
	}
	return c
}

// Clone returns a deep copy of the matrix.
func (m *StatusMatrix) Clone() *StatusMatrix {
	c := NewStatusMatrix(m.Columns, len(m.Cells))
	for i, row := range m.Cells {
		copy(c.Cells[i], row)
	}
	copy(c.RowStatus, m.RowStatus)
	return c
}
