package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LinkesAuge/chestbuddy/pkg/types"
)

// setupEngine attaches an engine over a temp data dir with a player
// reference list containing Alice and Bob.
func setupEngine(t *testing.T) *Engine {
	t.Helper()

	dir := t.TempDir()
	playersPath := filepath.Join(dir, "players.txt")
	require.NoError(t, os.WriteFile(playersPath, []byte("Alice\nBob\n"), 0o644))

	cfg := types.DefaultConfig()
	cfg.DataDir = dir
	cfg.RulesPath = filepath.Join(dir, "rules.csv")
	cfg.ReferenceLists = map[string]string{types.CategoryPlayer: playersPath}

	e := NewEngine()
	require.NoError(t, e.Attach(cfg))
	t.Cleanup(func() { _ = e.Detach() })
	return e
}

func row(player, chest, source, score string) []string {
	return []string{"2024-01-01", player, source, chest, score, "Clan"}
}

func loadRows(t *testing.T, e *Engine, rows ...[]string) {
	t.Helper()
	tbl := types.NewTable(types.DefaultColumns())
	for _, r := range rows {
		require.NoError(t, tbl.AppendRow(r))
	}
	require.NoError(t, e.LoadTable(tbl))
}

func TestAttachLifecycle(t *testing.T) {
	e := setupEngine(t)

	t.Run("second attach fails", func(t *testing.T) {
		err := e.Attach(types.DefaultConfig())
		assert.ErrorIs(t, err, types.ErrAlreadyAttached)
	})

	t.Run("detach is idempotent", func(t *testing.T) {
		require.NoError(t, e.Detach())
		require.NoError(t, e.Detach())
	})

	t.Run("operations fail after detach", func(t *testing.T) {
		_, err := e.Table()
		assert.ErrorIs(t, err, types.ErrEngineDetached)
		_, err = e.Validate()
		assert.ErrorIs(t, err, types.ErrEngineDetached)
		_, err = e.Rules()
		assert.ErrorIs(t, err, types.ErrEngineDetached)
	})
}

func TestAttachRejectsInvalidConfig(t *testing.T) {
	e := NewEngine()
	err := e.Attach(types.Config{})
	assert.ErrorIs(t, err, types.ErrNoColumns)
}

func TestValidateFlagsUnknownPlayer(t *testing.T) {
	e := setupEngine(t)
	loadRows(t, e,
		row("Alice", "Gold Chest", "Level 25 Crypt", "100"),
		row("Mallory", "Gold Chest", "Level 25 Crypt", "100"),
	)

	matrix, err := e.Validate()
	require.NoError(t, err)

	playerCol := 1
	assert.Equal(t, types.StatusValid, matrix.Cells[0][playerCol].Status)
	assert.Equal(t, types.StatusInvalid, matrix.Cells[1][playerCol].Status)

	current, err := e.ValidationStatus()
	require.NoError(t, err)
	assert.Equal(t, matrix, current)
}

func TestRuleLifecycle(t *testing.T) {
	e := setupEngine(t)

	r := types.NewCorrectionRule("Alice", "alicee", types.CategoryPlayer)
	added, err := e.AddRule(r)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = e.AddRule(r)
	require.NoError(t, err)
	assert.False(t, added, "duplicate rule must be rejected")

	matches, err := e.QueryRules(types.CategoryPlayer, "", "")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 0, matches[0].Index)

	require.NoError(t, e.ToggleRule(0))
	matches, err = e.QueryRules("", "disabled", "")
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	require.NoError(t, e.DeleteRule(0))
	all, err := e.Rules()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestApplyRuleCorrectsAndRecordsHistory(t *testing.T) {
	e := setupEngine(t)
	loadRows(t, e,
		row("alicee", "Gold Chest", "Level 25 Crypt", "100"),
		row("Bob", "Silver Chest", "Level 10 Crypt", "50"),
	)

	r := types.NewCorrectionRule("Alice", "alicee", types.CategoryPlayer)
	_, err := e.AddRule(r)
	require.NoError(t, err)

	res, err := e.ApplyRule(r, "", nil)
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, 1, res.Affected)

	tbl, err := e.Table()
	require.NoError(t, err)
	got, err := tbl.Cell(0, 1)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got)

	entries, err := e.History(0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "apply_rule", entries[0].Strategy)
}

func TestCellsWithAvailableCorrections(t *testing.T) {
	e := setupEngine(t)
	loadRows(t, e,
		row("alicee", "Gold Chest", "Level 25 Crypt", "100"),
	)

	_, err := e.AddRule(types.NewCorrectionRule("Alice", "alicee", types.CategoryPlayer))
	require.NoError(t, err)

	t.Run("empty before any validation pass", func(t *testing.T) {
		cells, err := e.CellsWithAvailableCorrections()
		require.NoError(t, err)
		assert.Empty(t, cells)
	})

	t.Run("invalid cell with matching rule is reported", func(t *testing.T) {
		_, err := e.Validate()
		require.NoError(t, err)

		cells, err := e.CellsWithAvailableCorrections()
		require.NoError(t, err)
		assert.Contains(t, cells, types.CellRef{Row: 0, Col: 1})
	})
}

func TestRulesPersistenceRoundTrip(t *testing.T) {
	e := setupEngine(t)

	_, err := e.AddRule(types.NewCorrectionRule("Alice", "alicee", types.CategoryPlayer))
	require.NoError(t, err)
	_, err = e.AddRule(types.NewCorrectionRule("Gold Chest", "gold chst", types.CategoryChest))
	require.NoError(t, err)

	require.NoError(t, e.SaveRules(""))
	require.NoError(t, e.LoadRules(""))

	all, err := e.Rules()
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestLoadRulesMissingFileIsWarning(t *testing.T) {
	e := setupEngine(t)

	_, err := e.AddRule(types.NewCorrectionRule("Alice", "alicee", types.CategoryPlayer))
	require.NoError(t, err)

	require.NoError(t, e.LoadRules(filepath.Join(t.TempDir(), "missing.csv")))

	all, err := e.Rules()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestExportReportRunsValidationWhenNeeded(t *testing.T) {
	e := setupEngine(t)
	loadRows(t, e,
		row("Alice", "Gold Chest", "Level 25 Crypt", "100"),
	)

	path := filepath.Join(t.TempDir(), "report.csv")
	require.NoError(t, e.ExportReport(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "PLAYER_status")
}

func TestCustomValidationRule(t *testing.T) {
	e := setupEngine(t)
	loadRows(t, e,
		row("Alice", "Gold Chest", "Level 25 Crypt", "100"),
	)

	err := e.RegisterValidation("score_cap", func(tbl *types.Table) (map[int]string, error) {
		idx, err := tbl.ColumnIndex(types.ColumnScore)
		if err != nil {
			return nil, err
		}
		findings := map[int]string{}
		for r := 0; r < tbl.RowCount(); r++ {
			v, _ := tbl.Cell(r, idx)
			if v == "100" {
				findings[r] = "SCORE: capped value"
			}
		}
		return findings, nil
	})
	require.NoError(t, err)

	matrix, err := e.Validate()
	require.NoError(t, err)
	assert.Equal(t, types.StatusInvalid, matrix.Cells[0][4].Status)
}
