package types

import (
	"errors"
	"strings"
	"time"
)

// Correction rule statuses.
const (
	RuleEnabled  = "enabled"
	RuleDisabled = "disabled"
)

// Rule and correction errors.
var (
	ErrInvalidRuleStatus = errors.New("invalid rule status")
	ErrRuleMissingField  = errors.New("rule is missing a required field")
	ErrUnknownStrategy   = errors.New("unknown correction strategy")
)

// CorrectionRule rewrites one literal from-value to a to-value within the
// column mapped to its category. Status and Order never participate in
// equality or deduplication; priority is positional in the store.
type CorrectionRule struct {
	To       string
	From     string
	Category string
	Status   string
	Order    int
}

// NewCorrectionRule creates an enabled rule. Category is stored lowercased
// so filtering and column mapping are uniform.
func NewCorrectionRule(to, from, category string) CorrectionRule {
	return CorrectionRule{
		To:       to,
		From:     from,
		Category: strings.ToLower(category),
		Status:   RuleEnabled,
	}
}

// Same reports whether two rules are equal by (To, From, Category).
func (r CorrectionRule) Same(o CorrectionRule) bool {
	return r.To == o.To && r.From == o.From &&
		strings.EqualFold(r.Category, o.Category)
}

// IsEnabled reports whether the rule participates in matching. Any status
// other than the disabled constant counts as enabled, so records with a
// blank status column import as enabled.
func (r CorrectionRule) IsEnabled() bool {
	return !strings.EqualFold(r.Status, RuleDisabled)
}

// ToggleStatus flips the rule between enabled and disabled in place.
func (r *CorrectionRule) ToggleStatus() {
	if r.IsEnabled() {
		r.Status = RuleDisabled
	} else {
		r.Status = RuleEnabled
	}
}

// HistoryEntry records one applied correction for the audit log.
type HistoryEntry struct {
	ID        string
	Strategy  string
	Column    string
	Rows      []int
	Args      map[string]string
	AppliedAt time.Time
}
