// Package report flattens validation and correction state into audit
// tables suitable for CSV export: each original column gains sibling
// status/message (validation) or corrected/original (correction) columns.
package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/LinkesAuge/chestbuddy/pkg/types"
)

// ErrShapeMismatch is returned when the tables or matrix passed to a report
// do not describe the same rows.
var ErrShapeMismatch = errors.New("report inputs have mismatched shapes")

// WriteValidation writes the flattened validation report: for every column
// C the output carries C, C_valid, C_status, C_message.
func WriteValidation(w io.Writer, tbl *types.Table, matrix *types.StatusMatrix) error {
	if matrix == nil || len(matrix.Cells) != tbl.RowCount() {
		return ErrShapeMismatch
	}

	out := csv.NewWriter(w)
	names := tbl.ColumnNames()

	header := make([]string, 0, len(names)*4)
	for _, name := range names {
		header = append(header, name, name+"_valid", name+"_status", name+"_message")
	}
	if err := out.Write(header); err != nil {
		return fmt.Errorf("writing report header: %w", err)
	}

	for row := 0; row < tbl.RowCount(); row++ {
		record := make([]string, 0, len(header))
		for col := range names {
			value, err := tbl.Cell(row, col)
			if err != nil {
				return err
			}
			cell := matrix.Cells[row][col]
			record = append(record,
				value,
				strconv.FormatBool(cell.Valid),
				cell.Status.String(),
				cell.Message,
			)
		}
		if err := out.Write(record); err != nil {
			return fmt.Errorf("writing report row %d: %w", row, err)
		}
	}
	out.Flush()
	return out.Error()
}

// WriteCorrection writes the flattened correction report: for every column
// C the output carries C, C_corrected, C_original. Both tables must have
// the same shape; row-removing corrections are not reportable this way.
func WriteCorrection(w io.Writer, corrected, original *types.Table) error {
	if corrected.RowCount() != original.RowCount() ||
		corrected.ColumnCount() != original.ColumnCount() {
		return ErrShapeMismatch
	}

	out := csv.NewWriter(w)
	names := corrected.ColumnNames()

	header := make([]string, 0, len(names)*3)
	for _, name := range names {
		header = append(header, name, name+"_corrected", name+"_original")
	}
	if err := out.Write(header); err != nil {
		return fmt.Errorf("writing report header: %w", err)
	}

	for row := 0; row < corrected.RowCount(); row++ {
		record := make([]string, 0, len(header))
		for col := range names {
			now, err := corrected.Cell(row, col)
			if err != nil {
				return err
			}
			was, err := original.Cell(row, col)
			if err != nil {
				return err
			}
			record = append(record, now, strconv.FormatBool(now != was), was)
		}
		if err := out.Write(record); err != nil {
			return fmt.Errorf("writing report row %d: %w", row, err)
		}
	}
	out.Flush()
	return out.Error()
}

// ExportCorrection writes the correction report to a file.
func ExportCorrection(path string, corrected, original *types.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report file %s: %w", path, err)
	}
	defer f.Close()
	if err := WriteCorrection(f, corrected, original); err != nil {
		return fmt.Errorf("exporting report to %s: %w", path, err)
	}
	return nil
}

// ExportValidation writes the validation report to a file.
func ExportValidation(path string, tbl *types.Table, matrix *types.StatusMatrix) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report file %s: %w", path, err)
	}
	defer f.Close()
	if err := WriteValidation(f, tbl, matrix); err != nil {
		return fmt.Errorf("exporting report to %s: %w", path, err)
	}
	return nil
}
