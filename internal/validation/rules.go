package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/LinkesAuge/chestbuddy/internal/stats"
	"github.com/LinkesAuge/chestbuddy/pkg/types"
)

// RuleKind tags the built-in validation rule variants.
type RuleKind int

const (
	KindMissingValues RuleKind = iota
	KindOutliers
	KindDuplicates
	KindTypeCheck
	KindReferenceList
	KindCustom
)

// RuleFunc inspects a table snapshot and returns one human-readable message
// per offending row index. An empty map means the rule found no issues.
type RuleFunc func(tbl *types.Table) (map[int]string, error)

// namedRule is one entry of the engine's dispatch table.
type namedRule struct {
	name string
	kind RuleKind
	fn   RuleFunc
}

// numericPattern accepts plain and scientific notation numbers.
var numericPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// dateLayouts are the formats date-kind columns must parse as.
var dateLayouts = []string{
	"2006-01-02", "2006/01/02", "2006.01.02",
	"01/02/2006", "1/2/2006", "02.01.2006",
	"Jan 2, 2006", "2 Jan 2006",
}

// parseDate reports whether the value parses under any accepted layout.
func parseDate(value string) bool {
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, value); err == nil {
			return true
		}
	}
	return false
}

// isMissing treats empty and whitespace-only values as missing.
func isMissing(value string) bool {
	return strings.TrimSpace(value) == ""
}

// missingValuesRule flags rows with an empty cell. When several columns of
// a row are empty, the first in declaration order is named in the message.
func missingValuesRule(tbl *types.Table) (map[int]string, error) {
	findings := make(map[int]string)
	names := tbl.ColumnNames()
	for row := 0; row < tbl.RowCount(); row++ {
		for col, name := range names {
			value, err := tbl.Cell(row, col)
			if err != nil {
				return nil, err
			}
			if isMissing(value) {
				findings[row] = fmt.Sprintf("Missing value in %s", name)
				break
			}
		}
	}
	return findings, nil
}

// outliersRule flags numeric-column values outside the interquartile-range
// bounds Q1 - 1.5*IQR .. Q3 + 1.5*IQR.
func outliersRule(tbl *types.Table) (map[int]string, error) {
	findings := make(map[int]string)
	for _, column := range tbl.Columns() {
		if column.Kind != types.KindNumeric {
			continue
		}
		idx, err := tbl.ColumnIndex(column.Name)
		if err != nil {
			return nil, err
		}
		values, rowsOf := numericColumn(tbl, idx)
		if len(values) < 4 {
			// Too few points for meaningful quartiles.
			continue
		}
		lower, upper := stats.IQRBounds(values)
		for i, v := range values {
			if v < lower || v > upper {
				row := rowsOf[i]
				if _, seen := findings[row]; !seen {
					findings[row] = fmt.Sprintf(
						"%s: outlier value %s outside bounds [%.2f, %.2f]",
						column.Name, strconv.FormatFloat(v, 'g', -1, 64), lower, upper)
				}
			}
		}
	}
	return findings, nil
}

// numericColumn extracts the parseable numeric values of a column together
// with their row indices. Missing and non-numeric cells are skipped.
func numericColumn(tbl *types.Table, col int) ([]float64, []int) {
	var values []float64
	var rows []int
	for row := 0; row < tbl.RowCount(); row++ {
		cell, err := tbl.Cell(row, col)
		if err != nil {
			continue
		}
		if isMissing(cell) {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
		if err != nil {
			continue
		}
		values = append(values, v)
		rows = append(rows, row)
	}
	return values, rows
}

// duplicatesRule flags full-row duplicates. The first occurrence stays
// canonical; every later duplicate is reported as a whole-row problem.
func duplicatesRule(tbl *types.Table) (map[int]string, error) {
	findings := make(map[int]string)
	seen := make(map[string]int)
	for row := 0; row < tbl.RowCount(); row++ {
		values, err := tbl.Row(row)
		if err != nil {
			return nil, err
		}
		key := strings.Join(values, "\x1f")
		if first, ok := seen[key]; ok {
			findings[row] = fmt.Sprintf("Duplicate row (first occurrence at row %d)", first)
		} else {
			seen[key] = row
		}
	}
	return findings, nil
}

// typeCheckRule verifies date-kind columns parse as dates and numeric-kind
// columns parse as numbers. Empty values are the missing-values rule's
// concern, not a type error.
func typeCheckRule(tbl *types.Table) (map[int]string, error) {
	findings := make(map[int]string)
	for _, column := range tbl.Columns() {
		if column.Kind == types.KindText {
			continue
		}
		idx, err := tbl.ColumnIndex(column.Name)
		if err != nil {
			return nil, err
		}
		for row := 0; row < tbl.RowCount(); row++ {
			if _, seen := findings[row]; seen {
				continue
			}
			value, err := tbl.Cell(row, idx)
			if err != nil {
				return nil, err
			}
			if isMissing(value) {
				continue
			}
			trimmed := strings.TrimSpace(value)
			switch column.Kind {
			case types.KindDate:
				if !parseDate(trimmed) {
					findings[row] = fmt.Sprintf("%s: value %q is not a valid date", column.Name, value)
				}
			case types.KindNumeric:
				if !numericPattern.MatchString(trimmed) {
					findings[row] = fmt.Sprintf("%s: value %q is not a number", column.Name, value)
				}
			}
		}
	}
	return findings, nil
}

// referenceListRule builds a membership check over the accepted values of
// one category. Empty cells are skipped; case folding follows the lists'
// case-sensitivity mode.
func (e *Engine) referenceListRule(category, columnName string) RuleFunc {
	return func(tbl *types.Table) (map[int]string, error) {
		idx, err := tbl.ColumnIndex(columnName)
		if err != nil {
			return nil, fmt.Errorf("reference list %s: %w", category, err)
		}
		findings := make(map[int]string)
		for row := 0; row < tbl.RowCount(); row++ {
			value, err := tbl.Cell(row, idx)
			if err != nil {
				return nil, err
			}
			if isMissing(value) {
				continue
			}
			if !e.lists.Contains(category, value) {
				findings[row] = fmt.Sprintf("%s: %q not found in %s reference list",
					columnName, value, category)
			}
		}
		return findings, nil
	}
}
