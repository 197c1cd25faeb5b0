// Validate command runs the full validation pass over a table file.
package main

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var flagValidateReport string

var validateCmd = &cobra.Command{
	Use:   "validate <table.csv>",
	Short: "Validate a chest-record table",
	Long: `Validate loads a chest-record CSV table, runs every validation rule
(missing values, outliers, duplicates, type checks, reference lists, and
any custom rules), and prints a per-status summary with the findings.

Example:
  chestbuddy validate chests.csv
  chestbuddy validate chests.csv --report findings.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&flagValidateReport, "report", "", "also write the flattened validation report to this path")
}

func runValidate(cmd *cobra.Command, args []string) error {
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

	matrix, err := eng.Validate()
	if err != nil {
		return fmt.Errorf("validate: %w", err)
	}

	if flagJSON {
		output, err := json.MarshalIndent(matrix, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal matrix: %w", err)
		}
		fmt.Println(string(output))
	} else {
		printMatrixSummary(tbl, matrix)
		counts := matrix.Counts()
		if counts.Invalid == 0 && counts.InvalidRow == 0 && counts.Correctable == 0 {
			color.Green("table is valid")
		}
	}

	if flagValidateReport != "" {
		if err := eng.ExportReport(flagValidateReport); err != nil {
			return fmt.Errorf("export report: %w", err)
		}
		fmt.Println("report written to", flagValidateReport)
	}
	return nil
}
