// Package reflist manages the reference lists of accepted values used by
// membership validation: one flat set of strings per category, loaded from
// newline-delimited files.
package reflist

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
)

// Lists holds one accepted-value set per category. The case-sensitivity
// toggle applies uniformly to every lookup.
type Lists struct {
	caseSensitive bool
	sets          map[string]map[string]bool
	log           *slog.Logger
}

// New creates an empty Lists with the given case-sensitivity mode.
func New(caseSensitive bool, logger *slog.Logger) *Lists {
	if logger == nil {
		logger = slog.Default()
	}
	return &Lists{
		caseSensitive: caseSensitive,
		sets:          make(map[string]map[string]bool),
		log:           logger,
	}
}

// fold normalizes a value according to the case-sensitivity mode.
func (l *Lists) fold(s string) string {
	if l.caseSensitive {
		return s
	}
	return strings.ToLower(s)
}

// Set replaces the accepted values for a category.
func (l *Lists) Set(category string, values []string) {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		set[l.fold(v)] = true
	}
	l.sets[strings.ToLower(category)] = set
}

// LoadFile reads a newline-delimited list file into a category. A missing
// file is a warning, not an error: the category simply stays empty.
func (l *Lists) LoadFile(category, path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			l.log.Warn("reference list file not found", "category", category, "path", path)
			l.Set(category, nil)
			return nil
		}
		return fmt.Errorf("opening reference list %s: %w", path, err)
	}
	defer f.Close()

	var values []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		values = append(values, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading reference list %s: %w", path, err)
	}
	l.Set(category, values)
	return nil
}

// Contains reports whether value is accepted for the category. Lookups in
// an unknown category always fail.
func (l *Lists) Contains(category, value string) bool {
	set, ok := l.sets[strings.ToLower(category)]
	if !ok {
		return false
	}
	return set[l.fold(strings.TrimSpace(value))]
}

// HasCategory reports whether a list was loaded for the category, even an
// empty one.
func (l *Lists) HasCategory(category string) bool {
	_, ok := l.sets[strings.ToLower(category)]
	return ok
}

// Categories returns the loaded category names, sorted.
func (l *Lists) Categories() []string {
	names := make([]string, 0, len(l.sets))
	for name := range l.sets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
