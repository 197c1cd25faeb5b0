// Package correction applies correction rules and built-in strategies to
// the table owned by tablestate, records the correction history, and
// answers which invalid cells are correctable.
package correction

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/LinkesAuge/chestbuddy/internal/rules"
	"github.com/LinkesAuge/chestbuddy/internal/tablestate"
	"github.com/LinkesAuge/chestbuddy/pkg/types"
)

// Recorder persists applied-correction history entries. The history store
// implements it; a nil Recorder disables persistence.
type Recorder interface {
	Record(entry types.HistoryEntry) error
}

// Result is the outcome of one correction application. A failed strategy
// reports OK=false with an explanatory message and leaves the table
// unchanged.
type Result struct {
	OK       bool
	Message  string
	Affected int
}

// Engine applies corrections. It depends on the rule store for matching and
// on the table state for atomic table replacement.
type Engine struct {
	cfg      types.Config
	store    *rules.Store
	state    *tablestate.State
	recorder Recorder
	log      *slog.Logger

	// columnCategory is the reverse of cfg.CategoryColumns.
	columnCategory map[string]string
}

// New creates an Engine over the given rule store and table state.
func New(cfg types.Config, store *rules.Store, state *tablestate.State, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	reverse := make(map[string]string, len(cfg.CategoryColumns))
	for category, column := range cfg.CategoryColumns {
		reverse[column] = category
	}
	return &Engine{
		cfg:            cfg,
		store:          store,
		state:          state,
		log:            logger,
		columnCategory: reverse,
	}
}

// SetRecorder wires the history store.
func (e *Engine) SetRecorder(r Recorder) { e.recorder = r }

// CellsWithAvailableCorrections returns every (row, column) currently
// marked invalid or correctable in the matrix for which the store holds at
// least one enabled rule whose category maps to that column and whose
// from-value matches the cell. Valid cells are never reported, and
// disabled rules never count. Correctable cells are re-checked against the
// store so the answer stays accurate when rules change between passes.
func (e *Engine) CellsWithAvailableCorrections(tbl *types.Table, matrix *types.StatusMatrix) []types.CellRef {
	var out []types.CellRef
	for row, cells := range matrix.Cells {
		for col, cell := range cells {
			if cell.Status != types.StatusInvalid && cell.Status != types.StatusCorrectable {
				continue
			}
			category, ok := e.columnCategory[matrix.Columns[col]]
			if !ok {
				continue
			}
			value, err := tbl.Cell(row, col)
			if err != nil {
				continue
			}
			if _, ok := e.store.FirstMatch(category, value, e.cfg.CaseSensitive); ok {
				out = append(out, types.CellRef{Row: row, Col: col})
			}
		}
	}
	return out
}

// ApplyRule replaces every cell matching the rule's from-value with its
// to-value, restricted to the given column and/or row subset when provided.
// Without a column, the rule's category decides the target column.
func (e *Engine) ApplyRule(rule types.CorrectionRule, column string, rowSubset []int) (Result, error) {
	if column == "" {
		mapped, ok := e.cfg.CategoryColumns[strings.ToLower(rule.Category)]
		if !ok {
			return Result{}, fmt.Errorf("category %q: %w", rule.Category, types.ErrUnknownColumn)
		}
		column = mapped
	}

	tbl := e.state.Snapshot()
	idx, err := tbl.ColumnIndex(column)
	if err != nil {
		return Result{}, fmt.Errorf("column %q: %w", column, err)
	}

	replaced := 0
	for _, row := range targetRows(tbl, rowSubset) {
		value, err := tbl.Cell(row, idx)
		if err != nil {
			continue
		}
		if matchValue(rule.From, value, e.cfg.CaseSensitive) {
			if err := tbl.SetCell(row, idx, rule.To); err != nil {
				return Result{}, err
			}
			replaced++
		}
	}
	if replaced > 0 {
		e.commit(tbl, "apply_rule", column, rowSubset, map[string]string{
			"from": rule.From, "to": rule.To, "category": rule.Category,
		})
	}
	return Result{
		OK:       true,
		Message:  fmt.Sprintf("replaced %d cell(s)", replaced),
		Affected: replaced,
	}, nil
}

// matchValue compares a rule from-value against a cell under the
// case-sensitivity mode.
func matchValue(from, value string, caseSensitive bool) bool {
	if caseSensitive {
		return from == value
	}
	return strings.EqualFold(from, value)
}

// targetRows expands an optional row subset into the concrete in-range row
// indices to visit.
func targetRows(tbl *types.Table, subset []int) []int {
	if subset == nil {
		all := make([]int, tbl.RowCount())
		for i := range all {
			all[i] = i
		}
		return all
	}
	var out []int
	for _, row := range subset {
		if row >= 0 && row < tbl.RowCount() {
			out = append(out, row)
		}
	}
	return out
}

// commit replaces the table contents atomically and records one history
// entry. Recording failures are logged, never surfaced: the correction
// itself succeeded.
func (e *Engine) commit(tbl *types.Table, strategy, column string, rowSubset []int, args map[string]string) {
	e.state.Update(tbl)

	entry := types.HistoryEntry{
		ID:        newEntryID(),
		Strategy:  strategy,
		Column:    column,
		Rows:      rowSubset,
		Args:      args,
		AppliedAt: time.Now().UTC(),
	}
	if e.recorder != nil {
		if err := e.recorder.Record(entry); err != nil {
			e.log.Error("recording correction history failed", "strategy", strategy, "error", err)
		}
	}
	e.log.Info("correction applied", "strategy", strategy, "column", column)
}

// newEntryID generates a UUID v7 history entry ID, falling back to v4 if
// v7 generation fails.
func newEntryID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
