package types

import "testing"

func TestNewStatusMatrixInitialState(t *testing.T) {
	m := NewStatusMatrix([]string{"A", "B"}, 3)

	if len(m.Cells) != 3 {
		t.Fatalf("rows = %d, want 3", len(m.Cells))
	}
	for i, row := range m.Cells {
		if len(row) != 2 {
			t.Fatalf("row %d has %d cells, want 2", i, len(row))
		}
		for j, cell := range row {
			if cell.Status != StatusNotValidated || cell.Valid || cell.Message != "" {
				t.Errorf("cell (%d,%d) = %+v, want not-validated zero state", i, j, cell)
			}
		}
	}
}

func TestRecomputeRowStatusPicksWorst(t *testing.T) {
	tests := []struct {
		name     string
		statuses []CellStatus
		want     CellStatus
	}{
		{"all valid", []CellStatus{StatusValid, StatusValid}, StatusValid},
		{"one invalid", []CellStatus{StatusValid, StatusInvalid}, StatusInvalid},
		{"correctable beats valid", []CellStatus{StatusCorrectable, StatusValid}, StatusCorrectable},
		{"invalid row dominates", []CellStatus{StatusInvalidRow, StatusInvalid}, StatusInvalidRow},
		{"warning beats valid", []CellStatus{StatusWarning, StatusValid}, StatusWarning},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewStatusMatrix([]string{"A", "B"}, 1)
			for j, s := range tt.statuses {
				m.Cells[0][j].Status = s
			}
			m.RecomputeRowStatus()
			if m.RowStatus[0] != tt.want {
				t.Errorf("RowStatus[0] = %v, want %v", m.RowStatus[0], tt.want)
			}
		})
	}
}

func TestStatusCounts(t *testing.T) {
	m := NewStatusMatrix([]string{"A", "B"}, 2)
	m.Cells[0][0].Status = StatusValid
	m.Cells[0][1].Status = StatusInvalid
	m.Cells[1][0].Status = StatusCorrectable

	c := m.Counts()
	if c.Valid != 1 || c.Invalid != 1 || c.Correctable != 1 || c.NotValidated != 1 {
		t.Errorf("Counts() = %+v, want 1/1/1/1", c)
	}
}
