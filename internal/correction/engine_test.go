package correction

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LinkesAuge/chestbuddy/internal/rules"
	"github.com/LinkesAuge/chestbuddy/internal/tablestate"
	"github.com/LinkesAuge/chestbuddy/pkg/types"
)

// setupEngine builds a correction engine over a fresh table state seeded
// with the given rows.
func setupEngine(t *testing.T, tableRows ...[]string) (*Engine, *tablestate.State, *rules.Store) {
	t.Helper()
	cfg := types.DefaultConfig()
	state := tablestate.New(cfg, nil)
	tbl := types.NewTable(cfg.Columns)
	for _, r := range tableRows {
		require.NoError(t, tbl.AppendRow(r))
	}
	state.Update(tbl)
	store := rules.NewStore(cfg, nil)
	return New(cfg, store, state, nil), state, store
}

func row(player, chest, source, score string) []string {
	return []string{"2024-01-01", player, source, chest, score, "Clan"}
}

func cellAt(t *testing.T, state *tablestate.State, row int, column string) string {
	t.Helper()
	tbl := state.Snapshot()
	idx, err := tbl.ColumnIndex(column)
	require.NoError(t, err)
	value, err := tbl.Cell(row, idx)
	require.NoError(t, err)
	return value
}

func TestCellsWithAvailableCorrections(t *testing.T) {
	e, state, store := setupEngine(t, row("UnknownPlayer", "Gold Chest", "Dungeon", "100"))
	store.Add(types.NewCorrectionRule("Alice", "UnknownPlayer", "player"))

	tbl := state.Snapshot()
	playerCol, _ := tbl.ColumnIndex(types.ColumnPlayer)
	chestCol, _ := tbl.ColumnIndex(types.ColumnChest)

	m := types.NewStatusMatrix(tbl.ColumnNames(), tbl.RowCount())
	m.Cells[0][playerCol].Status = types.StatusInvalid
	// A valid cell with a matching rule must never be reported.
	m.Cells[0][chestCol].Status = types.StatusValid
	store.Add(types.NewCorrectionRule("Golden Chest", "Gold Chest", "chest"))

	got := e.CellsWithAvailableCorrections(tbl, m)

	assert.Equal(t, []types.CellRef{{Row: 0, Col: playerCol}}, got)
}

func TestCellsWithAvailableCorrectionsIgnoresDisabledRules(t *testing.T) {
	e, state, store := setupEngine(t, row("UnknownPlayer", "Gold Chest", "Dungeon", "100"))
	store.Add(types.NewCorrectionRule("Alice", "UnknownPlayer", "player"))
	require.NoError(t, store.ToggleStatus(0))

	tbl := state.Snapshot()
	playerCol, _ := tbl.ColumnIndex(types.ColumnPlayer)
	m := types.NewStatusMatrix(tbl.ColumnNames(), tbl.RowCount())
	m.Cells[0][playerCol].Status = types.StatusInvalid

	assert.Empty(t, e.CellsWithAvailableCorrections(tbl, m))
}

func TestApplyRuleRewritesCell(t *testing.T) {
	e, state, _ := setupEngine(t,
		row("UnknownPlayer", "Gold Chest", "Dungeon", "100"),
		row("Alice", "Silver Chest", "Crypt", "50"),
	)

	res, err := e.ApplyRule(types.NewCorrectionRule("Alice", "UnknownPlayer", "player"), "", nil)

	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, 1, res.Affected)
	assert.Equal(t, "Alice", cellAt(t, state, 0, types.ColumnPlayer))
	assert.Equal(t, "Alice", cellAt(t, state, 1, types.ColumnPlayer))
}

func TestApplyRuleRowSubset(t *testing.T) {
	e, state, _ := setupEngine(t,
		row("Bad", "C1", "Dungeon", "1"),
		row("Bad", "C2", "Dungeon", "2"),
	)

	res, err := e.ApplyRule(types.NewCorrectionRule("Good", "Bad", "player"), "", []int{1})

	require.NoError(t, err)
	assert.Equal(t, 1, res.Affected)
	assert.Equal(t, "Bad", cellAt(t, state, 0, types.ColumnPlayer))
	assert.Equal(t, "Good", cellAt(t, state, 1, types.ColumnPlayer))
}

func TestApplyRuleCaseSensitivity(t *testing.T) {
	e, state, _ := setupEngine(t, row("unknownplayer", "Gold Chest", "Dungeon", "100"))

	// Default config is case-insensitive.
	res, err := e.ApplyRule(types.NewCorrectionRule("Alice", "UnknownPlayer", "player"), "", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Affected)
	assert.Equal(t, "Alice", cellAt(t, state, 0, types.ColumnPlayer))
}

func TestApplyRuleUnknownCategory(t *testing.T) {
	e, _, _ := setupEngine(t, row("Alice", "Gold Chest", "Dungeon", "100"))

	_, err := e.ApplyRule(types.NewCorrectionRule("x", "y", "nonsense"), "", nil)
	assert.True(t, errors.Is(err, types.ErrUnknownColumn))
}

func TestApplyUnknownStrategy(t *testing.T) {
	e, _, _ := setupEngine(t, row("Alice", "Gold Chest", "Dungeon", "100"))

	_, err := e.Apply("no_such_strategy", "", nil, nil)
	assert.True(t, errors.Is(err, types.ErrUnknownStrategy))
}

func TestRemoveDuplicatesKeepsFirstOccurrence(t *testing.T) {
	a := row("Alice", "Gold Chest", "Dungeon", "100")
	b := row("Bob", "Silver Chest", "Crypt", "50")
	e, state, _ := setupEngine(t, a, a, b)

	res, err := e.Apply(StrategyRemoveDupes, "", nil, nil)

	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, 1, res.Affected)
	require.Equal(t, 2, state.RowCount())
	assert.Equal(t, "Alice", cellAt(t, state, 0, types.ColumnPlayer))
	assert.Equal(t, "Bob", cellAt(t, state, 1, types.ColumnPlayer))
}

func TestFillMissingMean(t *testing.T) {
	e, state, _ := setupEngine(t,
		row("Alice", "C1", "Dungeon", "10"),
		row("Bob", "C2", "Crypt", ""),
		row("Carol", "C3", "Mine", "20"),
	)

	res, err := e.Apply(StrategyFillMean, types.ColumnScore, nil, nil)

	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, "15", cellAt(t, state, 1, types.ColumnScore))
}

func TestFillMissingMeanRejectsTextColumn(t *testing.T) {
	e, _, _ := setupEngine(t, row("Alice", "C1", "Dungeon", "10"))

	_, err := e.Apply(StrategyFillMean, types.ColumnPlayer, nil, nil)
	assert.True(t, errors.Is(err, types.ErrColumnNotNumeric))
}

func TestFillMissingConstant(t *testing.T) {
	e, state, _ := setupEngine(t, row("", "C1", "Dungeon", "10"))

	res, err := e.Apply(StrategyFillConstant, types.ColumnPlayer, nil, map[string]string{"value": "Unknown"})

	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, "Unknown", cellAt(t, state, 0, types.ColumnPlayer))
}

func TestFillMissingConstantRequiresValue(t *testing.T) {
	e, _, _ := setupEngine(t, row("", "C1", "Dungeon", "10"))

	res, err := e.Apply(StrategyFillConstant, types.ColumnPlayer, nil, nil)
	require.NoError(t, err)
	assert.False(t, res.OK)
}

func TestFillMissingMode(t *testing.T) {
	e, state, _ := setupEngine(t,
		row("Alice", "C1", "Dungeon", "1"),
		row("Alice", "C2", "Dungeon", "2"),
		row("Bob", "C3", "Crypt", "3"),
		row("", "C4", "Mine", "4"),
	)

	res, err := e.Apply(StrategyFillMode, types.ColumnPlayer, nil, nil)

	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, "Alice", cellAt(t, state, 3, types.ColumnPlayer))
}

func TestWinsorizeClipsOutlier(t *testing.T) {
	e, state, _ := setupEngine(t,
		row("A", "C1", "D", "1"),
		row("B", "C2", "D", "2"),
		row("C", "C3", "D", "3"),
		row("D", "C4", "D", "1000"),
	)

	res, err := e.Apply(StrategyWinsorize, types.ColumnScore, nil, map[string]string{"threshold": "1.5"})

	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, 1, res.Affected)
	require.Equal(t, 4, state.RowCount(), "winsorize must clip, not delete rows")

	// The outlier cell is clipped to mean + 1.5*std; the small values stay.
	assert.Equal(t, "1", cellAt(t, state, 0, types.ColumnScore))
	assert.NotEqual(t, "1000", cellAt(t, state, 3, types.ColumnScore))
}

func TestFixOutliersZeroVariance(t *testing.T) {
	e, state, _ := setupEngine(t,
		row("A", "C1", "D", "5"),
		row("B", "C2", "D", "5"),
		row("C", "C3", "D", "5"),
	)

	res, err := e.Apply(StrategyOutliersMean, types.ColumnScore, nil, nil)

	require.NoError(t, err)
	assert.True(t, res.OK, "zero variance is success, not failure")
	assert.Contains(t, res.Message, "no variance")
	assert.Equal(t, "5", cellAt(t, state, 0, types.ColumnScore))
}

func TestFixOutliersReplaceWithMedian(t *testing.T) {
	e, state, _ := setupEngine(t,
		row("A", "C1", "D", "1"),
		row("B", "C2", "D", "2"),
		row("C", "C3", "D", "3"),
		row("D", "C4", "D", "1000"),
	)

	res, err := e.Apply(StrategyOutliersMedian, types.ColumnScore, nil, map[string]string{"threshold": "1.5"})

	require.NoError(t, err)
	assert.Equal(t, 1, res.Affected)
	assert.Equal(t, "2.5", cellAt(t, state, 3, types.ColumnScore))
}

// recorderFunc adapts a function to the Recorder interface.
type recorderFunc func(types.HistoryEntry) error

func (f recorderFunc) Record(e types.HistoryEntry) error { return f(e) }

func TestSuccessfulApplyRecordsHistory(t *testing.T) {
	e, _, _ := setupEngine(t, row("UnknownPlayer", "Gold Chest", "Dungeon", "100"))

	var recorded []types.HistoryEntry
	e.SetRecorder(recorderFunc(func(entry types.HistoryEntry) error {
		recorded = append(recorded, entry)
		return nil
	}))

	_, err := e.ApplyRule(types.NewCorrectionRule("Alice", "UnknownPlayer", "player"), "", nil)
	require.NoError(t, err)

	require.Len(t, recorded, 1)
	assert.Equal(t, "apply_rule", recorded[0].Strategy)
	assert.Equal(t, types.ColumnPlayer, recorded[0].Column)
	assert.NotEmpty(t, recorded[0].ID)
	assert.False(t, recorded[0].AppliedAt.IsZero())
}

func TestNoOpApplyDoesNotRecordHistory(t *testing.T) {
	e, _, _ := setupEngine(t, row("Alice", "Gold Chest", "Dungeon", "100"))

	recorded := 0
	e.SetRecorder(recorderFunc(func(types.HistoryEntry) error {
		recorded++
		return nil
	}))

	res, err := e.ApplyRule(types.NewCorrectionRule("Alice", "NoSuchValue", "player"), "", nil)
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, 0, res.Affected)
	assert.Equal(t, 0, recorded)
}
