// Correct command applies a correction rule or strategy to a table file.
package main

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/LinkesAuge/chestbuddy/internal/report"
	"github.com/LinkesAuge/chestbuddy/pkg/types"
)

var (
	flagCorrectStrategy  string
	flagCorrectRuleIndex int
	flagCorrectColumn    string
	flagCorrectRows      string
	flagCorrectArgs      []string
	flagCorrectOutput    string
	flagCorrectReport    string
)

var correctCmd = &cobra.Command{
	Use:   "correct <table.csv>",
	Short: "Apply a correction rule or strategy to a table",
	Long: `Correct loads a chest-record CSV table and applies either a stored
correction rule (--rule-index) or a built-in strategy (--strategy), then
writes the corrected table back.

Without --rule-index or --strategy it validates the table and lists the
invalid cells for which a stored rule offers a correction.

Strategies: fill_missing_mean, fill_missing_median, fill_missing_mode,
fill_missing_constant, remove_duplicates, fix_outliers_mean,
fix_outliers_median, fix_outliers_winsorize.

Example:
  chestbuddy correct chests.csv
  chestbuddy correct chests.csv --rule-index 0
  chestbuddy correct chests.csv --strategy fill_missing_constant --column SCORE --arg value=0
  chestbuddy correct chests.csv --strategy fix_outliers_winsorize --column SCORE --arg threshold=1.5`,
	Args: cobra.ExactArgs(1),
	RunE: runCorrect,
}

func init() {
	correctCmd.Flags().StringVar(&flagCorrectStrategy, "strategy", "", "built-in strategy to apply")
	correctCmd.Flags().IntVar(&flagCorrectRuleIndex, "rule-index", -1, "index of the stored rule to apply")
	correctCmd.Flags().StringVar(&flagCorrectColumn, "column", "", "restrict the correction to this column")
	correctCmd.Flags().StringVar(&flagCorrectRows, "rows", "", "restrict the correction to these rows (comma-separated indices)")
	correctCmd.Flags().StringArrayVar(&flagCorrectArgs, "arg", nil, "strategy argument as key=value (repeatable)")
	correctCmd.Flags().StringVar(&flagCorrectOutput, "output", "", "write the corrected table here (default: overwrite the input)")
	correctCmd.Flags().StringVar(&flagCorrectReport, "report", "", "also write a corrected/original audit report to this file")
}

func runCorrect(cmd *cobra.Command, args []string) error {
	if flagCorrectStrategy != "" && flagCorrectRuleIndex >= 0 {
		return fmt.Errorf("--strategy and --rule-index are mutually exclusive")
	}

	eng, err := attachEngine()
	if err != nil {
		return err
	}
	defer eng.Detach()

	tbl, err := loadTableCSV(args[0])
	if err != nil {
		return err
	}
	if err := eng.LoadTable(tbl); err != nil {
		return err
	}

	if flagCorrectStrategy == "" && flagCorrectRuleIndex < 0 {
		return listCorrectable(eng)
	}

	rows, err := parseRows(flagCorrectRows)
	if err != nil {
		return err
	}

	var res types.CorrectionResult
	if flagCorrectStrategy != "" {
		strategyArgs, err := parseArgs(flagCorrectArgs)
		if err != nil {
			return err
		}
		res, err = eng.ApplyStrategy(flagCorrectStrategy, flagCorrectColumn, rows, strategyArgs)
		if err != nil {
			return fmt.Errorf("apply strategy: %w", err)
		}
	} else {
		all, err := eng.Rules()
		if err != nil {
			return err
		}
		if flagCorrectRuleIndex >= len(all) {
			return fmt.Errorf("rule index %d out of range (%d rule(s) stored)", flagCorrectRuleIndex, len(all))
		}
		res, err = eng.ApplyRule(all[flagCorrectRuleIndex], flagCorrectColumn, rows)
		if err != nil {
			return fmt.Errorf("apply rule: %w", err)
		}
	}

	if !res.OK {
		color.Red("correction failed: %s", res.Message)
		return nil
	}
	color.Green("%s (%d cell(s) affected)", res.Message, res.Affected)

	if res.Affected > 0 {
		output := flagCorrectOutput
		if output == "" {
			output = args[0]
		}
		corrected, err := eng.Table()
		if err != nil {
			return err
		}
		if err := saveTableCSV(output, corrected); err != nil {
			return err
		}
		fmt.Println("corrected table written to", output)

		if flagCorrectReport != "" {
			if err := report.ExportCorrection(flagCorrectReport, corrected, tbl); err != nil {
				return fmt.Errorf("correction report: %w", err)
			}
			fmt.Println("correction report written to", flagCorrectReport)
		}
	}
	return nil
}

// listCorrectable validates the table and prints the invalid cells a
// stored rule can fix.
func listCorrectable(eng types.Engine) error {
	if _, err := eng.Validate(); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	cells, err := eng.CellsWithAvailableCorrections()
	if err != nil {
		return err
	}

	if flagJSON {
		output, err := json.MarshalIndent(cells, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(output))
		return nil
	}

	if len(cells) == 0 {
		fmt.Println("no correctable cells")
		return nil
	}
	tbl, err := eng.Table()
	if err != nil {
		return err
	}
	for _, ref := range cells {
		value, err := tbl.Cell(ref.Row, ref.Col)
		if err != nil {
			continue
		}
		names := tbl.ColumnNames()
		color.Cyan("  row %d %s: %q has a matching rule", ref.Row, names[ref.Col], value)
	}
	return nil
}
