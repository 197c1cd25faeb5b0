package correction

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/LinkesAuge/chestbuddy/internal/stats"
	"github.com/LinkesAuge/chestbuddy/pkg/types"
)

// Built-in strategy names.
const (
	StrategyFillMean       = "fill_missing_mean"
	StrategyFillMedian     = "fill_missing_median"
	StrategyFillMode       = "fill_missing_mode"
	StrategyFillConstant   = "fill_missing_constant"
	StrategyRemoveDupes    = "remove_duplicates"
	StrategyOutliersMean   = "fix_outliers_mean"
	StrategyOutliersMedian = "fix_outliers_median"
	StrategyWinsorize      = "fix_outliers_winsorize"
)

// Strategies lists every built-in strategy name.
func Strategies() []string {
	return []string{
		StrategyFillMean, StrategyFillMedian, StrategyFillMode,
		StrategyFillConstant, StrategyRemoveDupes,
		StrategyOutliersMean, StrategyOutliersMedian, StrategyWinsorize,
	}
}

// Apply runs a named built-in strategy, restricted to the given column
// and/or row subset when provided. Strategy failures come back as
// Result{OK: false} with the table untouched; unknown strategy or column
// names are programmer errors and return an error instead.
func (e *Engine) Apply(strategy, column string, rowSubset []int, args map[string]string) (Result, error) {
	switch strategy {
	case StrategyFillMean, StrategyFillMedian, StrategyFillMode, StrategyFillConstant:
		return e.fillMissing(strategy, column, rowSubset, args)
	case StrategyRemoveDupes:
		return e.removeDuplicates(column, rowSubset)
	case StrategyOutliersMean, StrategyOutliersMedian, StrategyWinsorize:
		return e.fixOutliers(strategy, column, rowSubset, args)
	default:
		return Result{}, fmt.Errorf("strategy %q: %w", strategy, types.ErrUnknownStrategy)
	}
}

// fillMissing replaces missing (empty) values in the target rows of one
// column. Mean and median require a numeric column; mode and constant work
// on any column.
func (e *Engine) fillMissing(strategy, column string, rowSubset []int, args map[string]string) (Result, error) {
	if column == "" {
		return Result{OK: false, Message: "fill strategies require a column"}, nil
	}
	tbl := e.state.Snapshot()
	idx, err := tbl.ColumnIndex(column)
	if err != nil {
		return Result{}, fmt.Errorf("column %q: %w", column, err)
	}

	target := targetRows(tbl, rowSubset)

	var fill string
	switch strategy {
	case StrategyFillConstant:
		value, ok := args["value"]
		if !ok {
			return Result{OK: false, Message: "constant fill requires a value argument"}, nil
		}
		fill = value
	case StrategyFillMode:
		fill = modeValue(tbl, idx, target)
		if fill == "" {
			return Result{OK: false, Message: "no non-empty values to take the mode from"}, nil
		}
	default:
		kind, err := tbl.ColumnKind(column)
		if err != nil {
			return Result{}, err
		}
		if kind != types.KindNumeric {
			return Result{}, fmt.Errorf("column %q: %w", column, types.ErrColumnNotNumeric)
		}
		values := numericValues(tbl, idx, target)
		if len(values) == 0 {
			return Result{OK: false, Message: "no numeric values to compute a fill from"}, nil
		}
		if strategy == StrategyFillMean {
			fill = formatNumber(stats.Mean(values))
		} else {
			fill = formatNumber(stats.Median(values))
		}
	}

	filled := 0
	for _, row := range target {
		value, err := tbl.Cell(row, idx)
		if err != nil {
			continue
		}
		if strings.TrimSpace(value) == "" {
			if err := tbl.SetCell(row, idx, fill); err != nil {
				return Result{}, err
			}
			filled++
		}
	}
	if filled > 0 {
		e.commit(tbl, strategy, column, rowSubset, args)
	}
	return Result{
		OK:       true,
		Message:  fmt.Sprintf("filled %d missing value(s) with %s", filled, fill),
		Affected: filled,
	}, nil
}

// removeDuplicates drops every later occurrence of a duplicate group,
// keeping the first by original row order. The duplicate key is the full
// row, or the single given column; the search is optionally restricted to
// a row subset.
func (e *Engine) removeDuplicates(column string, rowSubset []int) (Result, error) {
	tbl := e.state.Snapshot()

	keyFor := func(row int) (string, error) {
		if column == "" {
			values, err := tbl.Row(row)
			if err != nil {
				return "", err
			}
			return strings.Join(values, "\x1f"), nil
		}
		idx, err := tbl.ColumnIndex(column)
		if err != nil {
			return "", fmt.Errorf("column %q: %w", column, err)
		}
		return tbl.Cell(row, idx)
	}

	seen := make(map[string]bool)
	var drop []int
	for _, row := range targetRows(tbl, rowSubset) {
		key, err := keyFor(row)
		if err != nil {
			return Result{}, err
		}
		if seen[key] {
			drop = append(drop, row)
		} else {
			seen[key] = true
		}
	}

	if len(drop) > 0 {
		tbl.DeleteRows(drop)
		e.commit(tbl, StrategyRemoveDupes, column, rowSubset, nil)
	}
	return Result{
		OK:       true,
		Message:  fmt.Sprintf("removed %d duplicate row(s)", len(drop)),
		Affected: len(drop),
	}, nil
}

// fixOutliers detects outliers in a numeric column by z-score and either
// replaces them with the mean/median or clips them to mean +/- threshold
// standard deviations (winsorize). Zero variance trivially means no
// outliers, reported as success.
func (e *Engine) fixOutliers(strategy, column string, rowSubset []int, args map[string]string) (Result, error) {
	if column == "" {
		return Result{OK: false, Message: "outlier strategies require a column"}, nil
	}
	tbl := e.state.Snapshot()
	idx, err := tbl.ColumnIndex(column)
	if err != nil {
		return Result{}, fmt.Errorf("column %q: %w", column, err)
	}
	kind, err := tbl.ColumnKind(column)
	if err != nil {
		return Result{}, err
	}
	if kind != types.KindNumeric {
		return Result{}, fmt.Errorf("column %q: %w", column, types.ErrColumnNotNumeric)
	}

	threshold := e.cfg.OutlierThreshold
	if threshold == 0 {
		threshold = types.DefaultOutlierThreshold
	}
	if raw, ok := args["threshold"]; ok {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			return Result{OK: false, Message: fmt.Sprintf("invalid threshold %q", raw)}, nil
		}
		threshold = parsed
	}

	target := targetRows(tbl, rowSubset)
	values := numericValues(tbl, idx, target)
	if len(values) == 0 {
		return Result{OK: false, Message: "no numeric values in target rows"}, nil
	}

	mean := stats.Mean(values)
	std := stats.StdDev(values)
	if std == 0 {
		// No variance trivially implies no outliers.
		return Result{OK: true, Message: "no variance in column, nothing to fix"}, nil
	}
	median := stats.Median(values)
	lower := mean - threshold*std
	upper := mean + threshold*std

	fixed := 0
	for _, row := range target {
		cell, err := tbl.Cell(row, idx)
		if err != nil || strings.TrimSpace(cell) == "" {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
		if err != nil {
			continue
		}
		z := (v - mean) / std
		if z <= threshold && z >= -threshold {
			continue
		}
		var replacement float64
		switch strategy {
		case StrategyOutliersMean:
			replacement = mean
		case StrategyOutliersMedian:
			replacement = median
		default: // winsorize: clip to the near bound
			if v > upper {
				replacement = upper
			} else {
				replacement = lower
			}
		}
		if err := tbl.SetCell(row, idx, formatNumber(replacement)); err != nil {
			return Result{}, err
		}
		fixed++
	}
	if fixed > 0 {
		e.commit(tbl, strategy, column, rowSubset, args)
	}
	return Result{
		OK:       true,
		Message:  fmt.Sprintf("fixed %d outlier(s)", fixed),
		Affected: fixed,
	}, nil
}

// numericValues extracts the parseable numbers from the target rows of a
// column.
func numericValues(tbl *types.Table, idx int, target []int) []float64 {
	var values []float64
	for _, row := range target {
		cell, err := tbl.Cell(row, idx)
		if err != nil || strings.TrimSpace(cell) == "" {
			continue
		}
		if v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64); err == nil {
			values = append(values, v)
		}
	}
	return values
}

// modeValue returns the most frequent non-empty value of the target rows,
// ties breaking toward the lexicographically smallest.
func modeValue(tbl *types.Table, idx int, target []int) string {
	counts := make(map[string]int)
	for _, row := range target {
		cell, err := tbl.Cell(row, idx)
		if err != nil {
			continue
		}
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		counts[cell]++
	}
	best, bestCount := "", 0
	for value, n := range counts {
		if n > bestCount || (n == bestCount && value < best) {
			best = value
			bestCount = n
		}
	}
	return best
}

// formatNumber renders a float the way the table stores numbers.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
