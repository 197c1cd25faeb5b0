// History command lists persisted correction history entries.
package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var flagHistoryLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List applied corrections, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := attachEngine()
		if err != nil {
			return err
		}
		defer eng.Detach()

		entries, err := eng.History(flagHistoryLimit)
		if err != nil {
			return fmt.Errorf("list history: %w", err)
		}

		if flagJSON {
			output, err := json.MarshalIndent(entries, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(output))
			return nil
		}

		if len(entries) == 0 {
			fmt.Println("no corrections recorded")
			return nil
		}
		for _, e := range entries {
			fmt.Printf("%s  %-24s column=%s", e.AppliedAt.Format("2006-01-02 15:04:05"), e.Strategy, e.Column)
			if len(e.Rows) > 0 {
				fmt.Printf(" rows=%v", e.Rows)
			}
			if len(e.Args) > 0 {
				fmt.Printf(" args=%v", e.Args)
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 0, "maximum entries to list (0 means all)")
}
