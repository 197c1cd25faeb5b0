package types

import "errors"

// ValidationFunc is a custom validation rule callback. It inspects the
// table and returns findings as row index -> message; a nil or empty map
// means no findings. Errors isolate the rule: the pass continues with
// zero findings from it.
type ValidationFunc func(tbl *Table) (map[int]string, error)

// RuleMatch pairs a correction rule with its position in the store.
type RuleMatch struct {
	Index int
	Rule  CorrectionRule
}

// CorrectionResult is the outcome of one correction application. A failed
// strategy reports OK=false with an explanatory message and leaves the
// table unchanged.
type CorrectionResult struct {
	OK       bool
	Message  string
	Affected int
}

// Engine is the public surface of the validation and correction pipeline.
type Engine interface {
	// Attach initializes the engine from config: loads reference lists,
	// loads the default rules file when present, and opens the history
	// store when config.DataDir is set. Returns ErrAlreadyAttached if
	// called while already attached.
	Attach(config Config) error

	// Detach releases engine resources. Idempotent: multiple calls
	// succeed. After Detach, operations return ErrEngineDetached.
	Detach() error

	// LoadTable replaces the engine's table contents atomically and
	// notifies change observers when the data actually changed.
	LoadTable(tbl *Table) error

	// Table returns a defensive copy of the current table.
	Table() (*Table, error)

	// SetCell edits one cell in place and notifies observers on change.
	SetCell(row, col int, value string) error

	// OnChange registers an observer for table change events.
	OnChange(fn func(ChangeEvent))

	// Rules returns a copy of the ordered rule sequence.
	Rules() ([]CorrectionRule, error)

	// AddRule appends a rule unless an equal rule already exists.
	// Reports whether the rule was added.
	AddRule(rule CorrectionRule) (bool, error)

	UpdateRule(index int, rule CorrectionRule) error
	DeleteRule(index int) error
	ToggleRule(index int) error

	// MoveRule removes the rule at from and reinserts it at to.
	MoveRule(from, to int) error
	MoveRuleToTopOfCategory(index int) error
	MoveRuleToBottomOfCategory(index int) error

	// QueryRules filters by category, status ("enabled"/"disabled") and a
	// case-insensitive substring over from/to values. Empty filters match
	// everything.
	QueryRules(category, status, search string) ([]RuleMatch, error)

	// LoadRules reads rules from path, replacing the store. An empty path
	// loads the configured default rules file (missing default is a
	// warning, the store stays empty).
	LoadRules(path string) error

	// SaveRules writes the store to path, or to the configured default
	// rules file when path is empty.
	SaveRules(path string) error

	// ImportRules merges or replaces the store from a CSV/TSV file,
	// optionally persisting the result as the new default.
	ImportRules(path string, replace, saveAsDefault bool) error

	// ExportRules writes the store to a CSV/TSV file, optionally
	// restricted to enabled rules.
	ExportRules(path string, onlyEnabled bool) error

	// RegisterValidation adds a custom validation rule under name.
	RegisterValidation(name string, fn ValidationFunc) error

	// Validate runs the full validation pass over the current table and
	// returns the resulting status matrix.
	Validate() (*StatusMatrix, error)

	// ValidationStatus returns the matrix from the most recent pass, or
	// nil when no pass has run.
	ValidationStatus() (*StatusMatrix, error)

	// OnValidationComplete registers an observer for completed passes.
	OnValidationComplete(fn func(*StatusMatrix))

	// CellsWithAvailableCorrections returns every invalid cell for which
	// an enabled rule offers a correction.
	CellsWithAvailableCorrections() ([]CellRef, error)

	// ApplyRule replaces cells matching the rule's from-value with its
	// to-value, restricted to column and rows when given.
	ApplyRule(rule CorrectionRule, column string, rows []int) (CorrectionResult, error)

	// ApplyStrategy runs a built-in correction strategy.
	ApplyStrategy(strategy, column string, rows []int, args map[string]string) (CorrectionResult, error)

	// History returns persisted correction history entries newest-first,
	// at most limit (0 means all).
	History(limit int) ([]HistoryEntry, error)

	// ExportReport writes the flattened validation report for the current
	// table and matrix to path, running a validation pass first if none
	// has run.
	ExportReport(path string) error
}

// Engine lifecycle errors.
var (
	ErrEngineDetached  = errors.New("engine is detached")
	ErrAlreadyAttached = errors.New("engine is already attached")
)
