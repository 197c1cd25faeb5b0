// Package validation runs the registered rule set over a table snapshot and
// produces the per-cell StatusMatrix. Built-in rules are a closed set of
// tagged variants dispatched from a table; custom rules register as named
// callbacks. After the merge step, invalid cells with at least one matching
// enabled correction rule are promoted to correctable.
package validation

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/LinkesAuge/chestbuddy/internal/reflist"
	"github.com/LinkesAuge/chestbuddy/pkg/types"
)

// CorrectionSource answers which invalid cells have at least one matching
// enabled correction rule. The correction engine implements it.
type CorrectionSource interface {
	CellsWithAvailableCorrections(tbl *types.Table, m *types.StatusMatrix) []types.CellRef
}

// Engine executes validation passes. It is stateless across passes beyond
// the matrix it last published.
type Engine struct {
	cfg         types.Config
	lists       *reflist.Lists
	corrections CorrectionSource
	custom      []namedRule
	subscribers []func(*types.StatusMatrix)
	current     *types.StatusMatrix
	log         *slog.Logger
}

// New creates an Engine over the given reference lists.
func New(cfg types.Config, lists *reflist.Lists, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if lists == nil {
		lists = reflist.New(cfg.CaseSensitive, logger)
	}
	return &Engine{cfg: cfg, lists: lists, log: logger}
}

// SetCorrectionSource wires the correctable-promotion step. Without a
// source, invalid cells are never promoted.
func (e *Engine) SetCorrectionSource(src CorrectionSource) {
	e.corrections = src
}

// Register adds a custom named rule-function, appended after the built-ins.
func (e *Engine) Register(name string, fn RuleFunc) {
	e.custom = append(e.custom, namedRule{name: name, kind: KindCustom, fn: fn})
}

// OnValidationComplete registers a callback fired synchronously with each
// published matrix.
func (e *Engine) OnValidationComplete(fn func(*types.StatusMatrix)) {
	e.subscribers = append(e.subscribers, fn)
}

// Current returns the most recently published matrix, or nil before the
// first pass.
func (e *Engine) Current() *types.StatusMatrix { return e.current }

// dispatch assembles the rule set for one pass: the closed built-in
// variants, one reference-list check per configured category, then the
// custom callbacks.
func (e *Engine) dispatch() []namedRule {
	rules := []namedRule{
		{name: "missing_values", kind: KindMissingValues, fn: missingValuesRule},
		{name: "outliers", kind: KindOutliers, fn: outliersRule},
		{name: "duplicates", kind: KindDuplicates, fn: duplicatesRule},
		{name: "type_check", kind: KindTypeCheck, fn: typeCheckRule},
	}
	categories := make([]string, 0, len(e.cfg.CategoryColumns))
	for category := range e.cfg.CategoryColumns {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	for _, category := range categories {
		if !e.lists.HasCategory(category) {
			continue
		}
		rules = append(rules, namedRule{
			name: "reference_" + category,
			kind: KindReferenceList,
			fn:   e.referenceListRule(category, e.cfg.CategoryColumns[category]),
		})
	}
	return append(rules, e.custom...)
}

// Validate runs a full pass over the table snapshot and publishes the
// resulting matrix. Validating an empty table returns an empty matrix
// without firing any rule-function. The matrix is fully regenerated each
// pass; nothing survives from the previous one.
func (e *Engine) Validate(tbl *types.Table) *types.StatusMatrix {
	matrix := types.NewStatusMatrix(tbl.ColumnNames(), tbl.RowCount())
	if tbl.IsEmpty() {
		return matrix
	}

	// Every cell starts the pass presumed valid; findings downgrade.
	for i := range matrix.Cells {
		for j := range matrix.Cells[i] {
			matrix.Cells[i][j] = types.CellState{Valid: true, Status: types.StatusValid}
		}
	}

	for _, rule := range e.dispatch() {
		findings, err := rule.fn(tbl)
		if err != nil {
			// A failing rule contributes zero findings and never aborts
			// the rest of the pass.
			e.log.Error("validation rule failed", "rule", rule.name, "error", err)
			continue
		}
		e.merge(matrix, rule.name, findings)
	}

	e.promoteCorrectable(tbl, matrix)
	matrix.RecomputeRowStatus()

	e.current = matrix
	for _, fn := range e.subscribers {
		fn(matrix)
	}
	return matrix
}

// merge folds one rule's findings into the matrix.
func (e *Engine) merge(matrix *types.StatusMatrix, ruleName string, findings map[int]string) {
	for row, message := range findings {
		if row < 0 || row >= len(matrix.Cells) {
			continue
		}
		if isWholeRowMessage(message) {
			for col := range matrix.Cells[row] {
				matrix.Cells[row][col] = types.CellState{
					Status:  types.StatusInvalidRow,
					Message: message,
				}
			}
			continue
		}
		col := e.matchColumn(matrix.Columns, ruleName, message)
		if col < 0 {
			e.log.Warn("could not attribute finding to a column",
				"rule", ruleName, "row", row, "message", message)
			continue
		}
		cell := &matrix.Cells[row][col]
		// Invalid-row markings from an earlier rule stay.
		if cell.Status == types.StatusInvalidRow {
			continue
		}
		cell.Valid = false
		cell.Status = types.StatusInvalid
		cell.Message = message
	}
}

// isWholeRowMessage reports whether a finding concerns the entire row.
func isWholeRowMessage(message string) bool {
	return strings.Contains(strings.ToLower(message), "duplicate row")
}

// matchColumn attributes a finding message to a column. Declared column
// names are tried longest-name-first so a column whose name is a substring
// of another's cannot steal its findings. When no name appears textually, a
// validation-style keyword together with a category keyword from the rule
// name or message decides; categories are tried in sorted order so a message
// naming two of them always lands on the same column.
func (e *Engine) matchColumn(columns []string, ruleName, message string) int {
	lowerMsg := strings.ToLower(message)

	byLength := make([]int, len(columns))
	for i := range byLength {
		byLength[i] = i
	}
	sort.SliceStable(byLength, func(a, b int) bool {
		return len(columns[byLength[a]]) > len(columns[byLength[b]])
	})
	for _, idx := range byLength {
		if strings.Contains(lowerMsg, strings.ToLower(columns[idx])) {
			return idx
		}
	}

	if !strings.Contains(lowerMsg, "invalid") &&
		!strings.Contains(lowerMsg, "not found") &&
		!strings.Contains(lowerMsg, "missing") {
		return -1
	}
	haystack := strings.ToLower(ruleName) + " " + lowerMsg
	categories := make([]string, 0, len(e.cfg.CategoryColumns))
	for category := range e.cfg.CategoryColumns {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	for _, category := range categories {
		if !strings.Contains(haystack, strings.ToLower(category)) {
			continue
		}
		columnName := e.cfg.CategoryColumns[category]
		for i, name := range columns {
			if name == columnName {
				return i
			}
		}
	}
	return -1
}

// promoteCorrectable rewrites invalid cells that have at least one matching
// enabled correction rule to correctable, annotating the message. Runs
// strictly after the merge step and before the matrix is published.
func (e *Engine) promoteCorrectable(tbl *types.Table, matrix *types.StatusMatrix) {
	if e.corrections == nil {
		return
	}
	for _, ref := range e.corrections.CellsWithAvailableCorrections(tbl, matrix) {
		cell, err := matrix.Cell(ref.Row, ref.Col)
		if err != nil {
			continue
		}
		if cell.Status != types.StatusInvalid {
			continue
		}
		cell.Status = types.StatusCorrectable
		if cell.Message == "" {
			cell.Message = "Corrections available"
		} else {
			cell.Message += " (Corrections available)"
		}
	}
}
