// Package integration provides shared test helpers for integration tests.
package integration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/LinkesAuge/chestbuddy/pkg/engine"
	"github.com/LinkesAuge/chestbuddy/pkg/types"
)

// setupEngine attaches an engine to an isolated temp directory with the
// given reference lists. Each test case gets its own engine instance for
// isolation.
func setupEngine(t *testing.T, refLists map[string][]string) (types.Engine, string) {
	t.Helper()
	dir := t.TempDir()

	cfg := types.DefaultConfig()
	cfg.DataDir = dir
	cfg.RulesPath = filepath.Join(dir, "rules.csv")
	cfg.ReferenceLists = map[string]string{}
	for category, values := range refLists {
		path := filepath.Join(dir, category+".txt")
		writeLines(t, path, values)
		cfg.ReferenceLists[category] = path
	}

	e := engine.New()
	if err := e.Attach(cfg); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	t.Cleanup(func() { e.Detach() })
	return e, dir
}

// writeLines writes one value per line.
func writeLines(t *testing.T, path string, values []string) {
	t.Helper()
	content := ""
	for _, v := range values {
		content += v + "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// chestRow builds one record in the default column order.
func chestRow(date, player, source, chest, score, clan string) []string {
	return []string{date, player, source, chest, score, clan}
}

// mustLoadTable replaces the engine table or fails the test.
func mustLoadTable(t *testing.T, e types.Engine, rows ...[]string) {
	t.Helper()
	tbl := types.NewTable(types.DefaultColumns())
	for _, r := range rows {
		if err := tbl.AppendRow(r); err != nil {
			t.Fatalf("AppendRow: %v", err)
		}
	}
	if err := e.LoadTable(tbl); err != nil {
		t.Fatalf("LoadTable: %v", err)
	}
}

// mustValidate runs a validation pass or fails the test.
func mustValidate(t *testing.T, e types.Engine) *types.StatusMatrix {
	t.Helper()
	matrix, err := e.Validate()
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	return matrix
}

// mustAddRule adds a rule or fails the test.
func mustAddRule(t *testing.T, e types.Engine, to, from, category string) {
	t.Helper()
	added, err := e.AddRule(types.NewCorrectionRule(to, from, category))
	if err != nil {
		t.Fatalf("AddRule(%q -> %q): %v", from, to, err)
	}
	if !added {
		t.Fatalf("AddRule(%q -> %q): duplicate", from, to)
	}
}

// cellAt fetches a table cell or fails the test.
func cellAt(t *testing.T, e types.Engine, row, col int) string {
	t.Helper()
	tbl, err := e.Table()
	if err != nil {
		t.Fatalf("Table: %v", err)
	}
	v, err := tbl.Cell(row, col)
	if err != nil {
		t.Fatalf("Cell(%d,%d): %v", row, col, err)
	}
	return v
}
