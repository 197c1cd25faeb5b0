package rules

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/LinkesAuge/chestbuddy/pkg/types"
)

// Rule record columns. Order is accepted on read for backward compatibility
// but carries no meaning; priority is positional in the store.
var ruleHeader = []string{"To", "From", "Category", "Status", "Order"}

// delimiterFor selects the field delimiter by file extension: tab for .tsv,
// comma otherwise.
func delimiterFor(path string) rune {
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		return '\t'
	}
	return ','
}

// Load reads rules from the store's default path.
func (s *Store) Load() error {
	return s.LoadFrom(s.defaultPath)
}

// LoadFrom replaces the store from the rules file at path. A missing file
// is a warning, not an error; the store is left unchanged.
func (s *Store) LoadFrom(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		s.log.Warn("rules file not found", "path", path)
		return nil
	}
	return s.Import(path, true, false)
}

// Save writes the full store to the default path.
func (s *Store) Save() error {
	if s.defaultPath == "" {
		return nil
	}
	return s.Export(s.defaultPath, false)
}

// Import parses delimited rule records from path and appends the
// non-duplicate rules, or replaces the whole store first when replace is
// set. With saveAsDefault, the merged store is persisted to the default
// rules path afterwards. Rows missing a required field are skipped.
func (s *Store) Import(path string, replace, saveAsDefault bool) error {
	f, err := os.Open(path)
	if err != nil {
		s.log.Error("opening rules file failed", "path", path, "error", err)
		return fmt.Errorf("opening rules file %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = delimiterFor(path)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		s.log.Error("parsing rules file failed", "path", path, "error", err)
		return fmt.Errorf("parsing rules file %s: %w", path, err)
	}

	if replace {
		s.rules = nil
	}

	imported, skipped := 0, 0
	for i, record := range records {
		if i == 0 && isHeaderRow(record) {
			continue
		}
		rule, ok := parseRecord(record)
		if !ok {
			skipped++
			continue
		}
		if s.Add(rule) {
			imported++
		}
	}
	if skipped > 0 {
		s.log.Warn("skipped malformed rule rows", "path", path, "skipped", skipped)
	}
	s.log.Info("imported rules", "path", path, "imported", imported, "total", len(s.rules))

	if saveAsDefault {
		if err := s.Save(); err != nil {
			return err
		}
	}
	return nil
}

// Export writes all rules, or only the enabled ones, as delimited records.
func (s *Store) Export(path string, onlyEnabled bool) error {
	f, err := os.Create(path)
	if err != nil {
		s.log.Error("creating rules file failed", "path", path, "error", err)
		return fmt.Errorf("creating rules file %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = delimiterFor(path)

	if err := w.Write(ruleHeader); err != nil {
		return fmt.Errorf("writing rules header: %w", err)
	}
	for i, rule := range s.rules {
		if onlyEnabled && !rule.IsEnabled() {
			continue
		}
		status := types.RuleEnabled
		if !rule.IsEnabled() {
			status = types.RuleDisabled
		}
		record := []string{rule.To, rule.From, rule.Category, status, strconv.Itoa(i)}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("writing rule record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		s.log.Error("writing rules file failed", "path", path, "error", err)
		return fmt.Errorf("writing rules file %s: %w", path, err)
	}
	return nil
}

// isHeaderRow detects the To/From/Category header regardless of case.
func isHeaderRow(record []string) bool {
	if len(record) < 3 {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(record[0]), "to") &&
		strings.EqualFold(strings.TrimSpace(record[1]), "from")
}

// parseRecord converts one delimited record into a rule. To, From, and
// Category are required; Status defaults to enabled; Order coerces to 0
// when blank or non-numeric.
func parseRecord(record []string) (types.CorrectionRule, bool) {
	if len(record) < 3 {
		return types.CorrectionRule{}, false
	}
	to := strings.TrimSpace(record[0])
	from := strings.TrimSpace(record[1])
	category := strings.TrimSpace(record[2])
	if to == "" || from == "" || category == "" {
		return types.CorrectionRule{}, false
	}

	rule := types.NewCorrectionRule(to, from, category)
	if len(record) > 3 && strings.EqualFold(strings.TrimSpace(record[3]), types.RuleDisabled) {
		rule.Status = types.RuleDisabled
	}
	if len(record) > 4 {
		if order, err := strconv.Atoi(strings.TrimSpace(record[4])); err == nil {
			rule.Order = order
		}
	}
	return rule, true
}
