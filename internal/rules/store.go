// Package rules implements the ordered correction-rule store: CRUD,
// category-scoped reordering, enable/disable, querying, and CSV/TSV
// import/export. Priority is positional — earlier rules win within a
// category when several match the same from-value.
package rules

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/LinkesAuge/chestbuddy/pkg/types"
)

// Store owns all correction rules exclusively. Rules live in a single flat
// ordered sequence; category is an attribute used for filtering and for
// "move within my category" operations, not a partition.
type Store struct {
	rules       []types.CorrectionRule
	defaultPath string
	log         *slog.Logger
}

// NewStore creates an empty store. The config's RulesPath becomes the
// default persistence target for Import's save-as-default option.
func NewStore(cfg types.Config, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{defaultPath: cfg.RulesPath, log: logger}
}

// Len returns the number of stored rules.
func (s *Store) Len() int { return len(s.rules) }

// Rules returns a copy of all rules in stored order.
func (s *Store) Rules() []types.CorrectionRule {
	out := make([]types.CorrectionRule, len(s.rules))
	copy(out, s.rules)
	return out
}

// Add appends the rule unless an equal rule (by to/from/category) already
// exists. A duplicate add is a silent no-op; the return value reports
// whether the rule was appended.
func (s *Store) Add(rule types.CorrectionRule) bool {
	for _, existing := range s.rules {
		if existing.Same(rule) {
			return false
		}
	}
	s.rules = append(s.rules, rule)
	return true
}

// Get returns the rule at the given position.
func (s *Store) Get(index int) (types.CorrectionRule, error) {
	if index < 0 || index >= len(s.rules) {
		return types.CorrectionRule{}, fmt.Errorf("rule %d: %w", index, types.ErrIndexOutOfRange)
	}
	return s.rules[index], nil
}

// Update replaces the rule at the given position.
func (s *Store) Update(index int, rule types.CorrectionRule) error {
	if index < 0 || index >= len(s.rules) {
		return fmt.Errorf("rule %d: %w", index, types.ErrIndexOutOfRange)
	}
	s.rules[index] = rule
	return nil
}

// Delete removes the rule at the given position.
func (s *Store) Delete(index int) error {
	if index < 0 || index >= len(s.rules) {
		return fmt.Errorf("rule %d: %w", index, types.ErrIndexOutOfRange)
	}
	s.rules = append(s.rules[:index], s.rules[index+1:]...)
	return nil
}

// ToggleStatus flips the rule at the given position between enabled and
// disabled in place.
func (s *Store) ToggleStatus(index int) error {
	if index < 0 || index >= len(s.rules) {
		return fmt.Errorf("rule %d: %w", index, types.ErrIndexOutOfRange)
	}
	s.rules[index].ToggleStatus()
	return nil
}

// Match pairs a rule with its position in the store.
type Match struct {
	Index int
	Rule  types.CorrectionRule
}

// Query returns the subsequence matching all supplied filters, preserving
// stored order. Empty filter values match everything. The search term
// matches case-insensitively against either from- or to-value substrings.
func (s *Store) Query(category, status, search string) []Match {
	search = strings.ToLower(search)
	var out []Match
	for i, r := range s.rules {
		if category != "" && !strings.EqualFold(r.Category, category) {
			continue
		}
		if status != "" {
			wantEnabled := strings.EqualFold(status, types.RuleEnabled)
			if r.IsEnabled() != wantEnabled {
				continue
			}
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(r.From), search) &&
			!strings.Contains(strings.ToLower(r.To), search) {
			continue
		}
		out = append(out, Match{Index: i, Rule: r})
	}
	return out
}

// Move removes the rule at from and reinserts it at to, shifting everything
// between the two positions. Both indices are bounds-checked independently.
func (s *Store) Move(from, to int) error {
	if from < 0 || from >= len(s.rules) {
		return fmt.Errorf("rule %d: %w", from, types.ErrIndexOutOfRange)
	}
	if to < 0 || to >= len(s.rules) {
		return fmt.Errorf("rule %d: %w", to, types.ErrIndexOutOfRange)
	}
	if from == to {
		return nil
	}
	rule := s.rules[from]
	s.rules = append(s.rules[:from], s.rules[from+1:]...)
	rest := s.rules[to:]
	s.rules = append(s.rules[:to], append([]types.CorrectionRule{rule}, rest...)...)
	return nil
}

// MoveToTopOfCategory relocates the rule to sit immediately at the position
// of the first rule sharing its category. Rules outside the category keep
// their relative order. With no other rule of the category, the position is
// effectively unchanged.
func (s *Store) MoveToTopOfCategory(index int) error {
	if index < 0 || index >= len(s.rules) {
		return fmt.Errorf("rule %d: %w", index, types.ErrIndexOutOfRange)
	}
	category := s.rules[index].Category
	for i, r := range s.rules {
		if strings.EqualFold(r.Category, category) {
			return s.Move(index, i)
		}
	}
	return nil
}

// MoveToBottomOfCategory relocates the rule to sit at the position of the
// last rule sharing its category.
func (s *Store) MoveToBottomOfCategory(index int) error {
	if index < 0 || index >= len(s.rules) {
		return fmt.Errorf("rule %d: %w", index, types.ErrIndexOutOfRange)
	}
	category := s.rules[index].Category
	last := index
	for i, r := range s.rules {
		if strings.EqualFold(r.Category, category) {
			last = i
		}
	}
	return s.Move(index, last)
}

// Prioritized returns only the enabled rules, in stored order. This is the
// list the correction engine scans first-match-wins.
func (s *Store) Prioritized() []types.CorrectionRule {
	var out []types.CorrectionRule
	for _, r := range s.rules {
		if r.IsEnabled() {
			out = append(out, r)
		}
	}
	return out
}

// FirstMatch returns the highest-priority enabled rule for the category
// whose from-value matches the given cell value under the case-sensitivity
// mode.
func (s *Store) FirstMatch(category, value string, caseSensitive bool) (types.CorrectionRule, bool) {
	for _, r := range s.rules {
		if !r.IsEnabled() || !strings.EqualFold(r.Category, category) {
			continue
		}
		if caseSensitive {
			if r.From == value {
				return r, true
			}
		} else if strings.EqualFold(r.From, value) {
			return r, true
		}
	}
	return types.CorrectionRule{}, false
}

// Replace discards all rules and installs the given sequence.
func (s *Store) Replace(rules []types.CorrectionRule) {
	s.rules = make([]types.CorrectionRule, len(rules))
	copy(s.rules, rules)
}
