// Package engine wires the table state, rule store, validation and
// correction engines, reference lists, and the history store into the
// single attach/detach surface exposed by pkg/engine.
package engine

import (
	"fmt"

	"github.com/LinkesAuge/chestbuddy/internal/correction"
	"github.com/LinkesAuge/chestbuddy/internal/history"
	"github.com/LinkesAuge/chestbuddy/internal/logging"
	"github.com/LinkesAuge/chestbuddy/internal/reflist"
	"github.com/LinkesAuge/chestbuddy/internal/report"
	"github.com/LinkesAuge/chestbuddy/internal/rules"
	"github.com/LinkesAuge/chestbuddy/internal/tablestate"
	"github.com/LinkesAuge/chestbuddy/internal/validation"
	"github.com/LinkesAuge/chestbuddy/pkg/types"
)

// Engine implements types.Engine.
type Engine struct {
	cfg      types.Config
	state    *tablestate.State
	store    *rules.Store
	lists    *reflist.Lists
	validate *validation.Engine
	correct  *correction.Engine
	history  *history.Store

	attached bool
}

// NewEngine creates a detached engine. Call Attach with a Config to
// initialize.
func NewEngine() *Engine {
	return &Engine{}
}

// Attach initializes every component from config. Reference list files and
// the default rules file are loaded here; a missing file logs a warning and
// leaves the corresponding store empty.
func (e *Engine) Attach(config types.Config) error {
	if e.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}
	e.cfg = config

	e.lists = reflist.New(config.CaseSensitive, logging.WithComponent("reflist"))
	for category, path := range config.ReferenceLists {
		if err := e.lists.LoadFile(category, path); err != nil {
			return fmt.Errorf("loading reference list %q: %w", category, err)
		}
	}

	e.state = tablestate.New(config, logging.WithComponent("tablestate"))

	e.store = rules.NewStore(config, logging.WithComponent("rules"))
	if err := e.store.Load(); err != nil {
		return fmt.Errorf("loading rules: %w", err)
	}

	e.correct = correction.New(config, e.store, e.state, logging.WithComponent("correction"))
	e.validate = validation.New(config, e.lists, logging.WithComponent("validation"))
	e.validate.SetCorrectionSource(e.correct)

	if config.DataDir != "" {
		h, err := history.Open(config.DataDir)
		if err != nil {
			return fmt.Errorf("opening history store: %w", err)
		}
		e.history = h
		e.correct.SetRecorder(h)
	}

	e.attached = true
	return nil
}

// Detach closes the history store and marks the engine detached.
// Idempotent.
func (e *Engine) Detach() error {
	if !e.attached {
		return nil
	}
	e.attached = false
	if e.history != nil {
		if err := e.history.Close(); err != nil {
			return fmt.Errorf("closing history store: %w", err)
		}
		e.history = nil
	}
	return nil
}

func (e *Engine) LoadTable(tbl *types.Table) error {
	if !e.attached {
		return types.ErrEngineDetached
	}
	e.state.Update(tbl)
	return nil
}

func (e *Engine) Table() (*types.Table, error) {
	if !e.attached {
		return nil, types.ErrEngineDetached
	}
	return e.state.Snapshot(), nil
}

func (e *Engine) SetCell(row, col int, value string) error {
	if !e.attached {
		return types.ErrEngineDetached
	}
	return e.state.SetCell(row, col, value)
}

// OnChange is a no-op before Attach; register observers after attaching.
func (e *Engine) OnChange(fn func(types.ChangeEvent)) {
	if e.state == nil {
		return
	}
	e.state.OnChange(fn)
}

func (e *Engine) Rules() ([]types.CorrectionRule, error) {
	if !e.attached {
		return nil, types.ErrEngineDetached
	}
	return e.store.Rules(), nil
}

func (e *Engine) AddRule(rule types.CorrectionRule) (bool, error) {
	if !e.attached {
		return false, types.ErrEngineDetached
	}
	return e.store.Add(rule), nil
}

func (e *Engine) UpdateRule(index int, rule types.CorrectionRule) error {
	if !e.attached {
		return types.ErrEngineDetached
	}
	return e.store.Update(index, rule)
}

func (e *Engine) DeleteRule(index int) error {
	if !e.attached {
		return types.ErrEngineDetached
	}
	return e.store.Delete(index)
}

func (e *Engine) ToggleRule(index int) error {
	if !e.attached {
		return types.ErrEngineDetached
	}
	return e.store.ToggleStatus(index)
}

func (e *Engine) MoveRule(from, to int) error {
	if !e.attached {
		return types.ErrEngineDetached
	}
	return e.store.Move(from, to)
}

func (e *Engine) MoveRuleToTopOfCategory(index int) error {
	if !e.attached {
		return types.ErrEngineDetached
	}
	return e.store.MoveToTopOfCategory(index)
}

func (e *Engine) MoveRuleToBottomOfCategory(index int) error {
	if !e.attached {
		return types.ErrEngineDetached
	}
	return e.store.MoveToBottomOfCategory(index)
}

func (e *Engine) QueryRules(category, status, search string) ([]types.RuleMatch, error) {
	if !e.attached {
		return nil, types.ErrEngineDetached
	}
	matches := e.store.Query(category, status, search)
	out := make([]types.RuleMatch, len(matches))
	for i, m := range matches {
		out[i] = types.RuleMatch{Index: m.Index, Rule: m.Rule}
	}
	return out, nil
}

func (e *Engine) LoadRules(path string) error {
	if !e.attached {
		return types.ErrEngineDetached
	}
	if path == "" {
		return e.store.Load()
	}
	return e.store.LoadFrom(path)
}

func (e *Engine) SaveRules(path string) error {
	if !e.attached {
		return types.ErrEngineDetached
	}
	if path == "" {
		return e.store.Save()
	}
	return e.store.Export(path, false)
}

func (e *Engine) ImportRules(path string, replace, saveAsDefault bool) error {
	if !e.attached {
		return types.ErrEngineDetached
	}
	return e.store.Import(path, replace, saveAsDefault)
}

func (e *Engine) ExportRules(path string, onlyEnabled bool) error {
	if !e.attached {
		return types.ErrEngineDetached
	}
	return e.store.Export(path, onlyEnabled)
}

func (e *Engine) RegisterValidation(name string, fn types.ValidationFunc) error {
	if !e.attached {
		return types.ErrEngineDetached
	}
	e.validate.Register(name, validation.RuleFunc(fn))
	return nil
}

func (e *Engine) Validate() (*types.StatusMatrix, error) {
	if !e.attached {
		return nil, types.ErrEngineDetached
	}
	return e.validate.Validate(e.state.Snapshot()), nil
}

func (e *Engine) ValidationStatus() (*types.StatusMatrix, error) {
	if !e.attached {
		return nil, types.ErrEngineDetached
	}
	return e.validate.Current(), nil
}

// OnValidationComplete is a no-op before Attach, matching OnChange.
func (e *Engine) OnValidationComplete(fn func(*types.StatusMatrix)) {
	if e.validate == nil {
		return
	}
	e.validate.OnValidationComplete(fn)
}

func (e *Engine) CellsWithAvailableCorrections() ([]types.CellRef, error) {
	if !e.attached {
		return nil, types.ErrEngineDetached
	}
	matrix := e.validate.Current()
	if matrix == nil {
		return nil, nil
	}
	return e.correct.CellsWithAvailableCorrections(e.state.Snapshot(), matrix), nil
}

func (e *Engine) ApplyRule(rule types.CorrectionRule, column string, rows []int) (types.CorrectionResult, error) {
	if !e.attached {
		return types.CorrectionResult{}, types.ErrEngineDetached
	}
	res, err := e.correct.ApplyRule(rule, column, rows)
	return types.CorrectionResult(res), err
}

func (e *Engine) ApplyStrategy(strategy, column string, rows []int, args map[string]string) (types.CorrectionResult, error) {
	if !e.attached {
		return types.CorrectionResult{}, types.ErrEngineDetached
	}
	res, err := e.correct.Apply(strategy, column, rows, args)
	return types.CorrectionResult(res), err
}

func (e *Engine) History(limit int) ([]types.HistoryEntry, error) {
	if !e.attached {
		return nil, types.ErrEngineDetached
	}
	if e.history == nil {
		return nil, nil
	}
	return e.history.List(limit)
}

func (e *Engine) ExportReport(path string) error {
	if !e.attached {
		return types.ErrEngineDetached
	}
	tbl := e.state.Snapshot()
	matrix := e.validate.Current()
	if matrix == nil {
		matrix = e.validate.Validate(tbl)
	}
	return report.ExportValidation(path, tbl, matrix)
}
