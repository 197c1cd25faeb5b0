// Report command exports the flattened validation report.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report <table.csv> <report.csv>",
	Short: "Write the flattened validation report for a table",
	Long: `Report validates the table and writes one output row per table row with
the original value, validity, status, and message for every column.

Example:
  chestbuddy report chests.csv findings.csv`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
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

		if err := eng.ExportReport(args[1]); err != nil {
			return fmt.Errorf("export report: %w", err)
		}
		fmt.Println("report written to", args[1])
		return nil
	},
}
