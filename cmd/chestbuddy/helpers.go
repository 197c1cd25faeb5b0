// Shared helpers for chestbuddy CLI commands.
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/LinkesAuge/chestbuddy/pkg/engine"
	"github.com/LinkesAuge/chestbuddy/pkg/types"
)

// attachEngine builds the engine config from config.yaml plus flag
// overrides and attaches a new engine. The caller must defer eng.Detach().
func attachEngine() (types.Engine, error) {
	cfg, err := buildEngineConfig(loadedConfig)
	if err != nil {
		return nil, err
	}

	eng := engine.New()
	if err := eng.Attach(cfg); err != nil {
		return nil, fmt.Errorf("attach engine: %w", err)
	}
	return eng, nil
}

// loadTableCSV reads a chest-record table from a CSV file. The first
// record must be a header naming the configured columns; header matching
// is case-insensitive and tolerates extra columns, which are dropped.
func loadTableCSV(path string) (*types.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read table file: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("table file %s is empty", path)
	}

	columns := types.DefaultColumns()
	positions := make([]int, len(columns))
	header := records[0]
	for i, col := range columns {
		positions[i] = -1
		for j, name := range header {
			if strings.EqualFold(strings.TrimSpace(name), col.Name) {
				positions[i] = j
				break
			}
		}
		if positions[i] < 0 {
			return nil, fmt.Errorf("table file %s: missing column %q", path, col.Name)
		}
	}

	tbl := types.NewTable(columns)
	for n, record := range records[1:] {
		row := make([]string, len(columns))
		for i, pos := range positions {
			if pos < len(record) {
				row[i] = record[pos]
			}
		}
		if err := tbl.AppendRow(row); err != nil {
			return nil, fmt.Errorf("table file %s row %d: %w", path, n+2, err)
		}
	}
	return tbl, nil
}

// saveTableCSV writes the table with a header record.
func saveTableCSV(path string, tbl *types.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create table file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(tbl.ColumnNames()); err != nil {
		return err
	}
	for r := 0; r < tbl.RowCount(); r++ {
		row, err := tbl.Row(r)
		if err != nil {
			return err
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// parseIndex parses a rule position argument.
func parseIndex(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid index %q", s)
	}
	return n, nil
}

// parseRows parses a comma-separated list of row indices.
func parseRows(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid row index %q", p)
		}
		out = append(out, n)
	}
	return out, nil
}

// parseArgs parses repeated key=value strategy arguments.
func parseArgs(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid argument %q (expected key=value)", pair)
		}
		out[parts[0]] = parts[1]
	}
	return out, nil
}

// statusColor maps a cell status to its terminal color.
func statusColor(status types.CellStatus) *color.Color {
	switch status {
	case types.StatusValid:
		return color.New(color.FgGreen)
	case types.StatusWarning:
		return color.New(color.FgYellow)
	case types.StatusCorrectable:
		return color.New(color.FgCyan)
	case types.StatusInvalid, types.StatusInvalidRow:
		return color.New(color.FgRed)
	default:
		return color.New(color.FgWhite)
	}
}

// printMatrixSummary renders the per-status cell counts and every
// non-valid cell finding.
func printMatrixSummary(tbl *types.Table, matrix *types.StatusMatrix) {
	counts := matrix.Counts()
	fmt.Printf("%d row(s), %d column(s)\n", tbl.RowCount(), tbl.ColumnCount())
	for _, line := range []struct {
		status types.CellStatus
		count  int
	}{
		{types.StatusValid, counts.Valid},
		{types.StatusWarning, counts.Warning},
		{types.StatusCorrectable, counts.Correctable},
		{types.StatusInvalid, counts.Invalid},
		{types.StatusInvalidRow, counts.InvalidRow},
	} {
		if line.count == 0 {
			continue
		}
		statusColor(line.status).Printf("  %-13s %d cell(s)\n", line.status.String(), line.count)
	}

	for r, cells := range matrix.Cells {
		for c, cell := range cells {
			if cell.Status == types.StatusValid || cell.Status == types.StatusNotValidated {
				continue
			}
			if cell.Message == "" {
				continue
			}
			statusColor(cell.Status).Printf("  row %d %s: %s\n", r, matrix.Columns[c], cell.Message)
		}
	}
}
