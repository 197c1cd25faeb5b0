// Rules command group manages the correction rule store.
package main

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/LinkesAuge/chestbuddy/pkg/types"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Manage correction rules",
	Long: `Rules manages the ordered correction rule store: list, add, delete,
move, toggle, import, and export. Rule priority is positional; earlier
rules win when several match the same value.`,
}

func init() {
	rulesCmd.AddCommand(rulesListCmd)
	rulesCmd.AddCommand(rulesAddCmd)
	rulesCmd.AddCommand(rulesDeleteCmd)
	rulesCmd.AddCommand(rulesMoveCmd)
	rulesCmd.AddCommand(rulesToggleCmd)
	rulesCmd.AddCommand(rulesImportCmd)
	rulesCmd.AddCommand(rulesExportCmd)

	rulesListCmd.Flags().StringVar(&flagRulesCategory, "category", "", "filter by category")
	rulesListCmd.Flags().StringVar(&flagRulesStatus, "status", "", "filter by status (enabled or disabled)")
	rulesListCmd.Flags().StringVar(&flagRulesSearch, "search", "", "substring filter over from/to values")

	rulesMoveCmd.Flags().BoolVar(&flagRulesTop, "top", false, "move to the top of the rule's category")
	rulesMoveCmd.Flags().BoolVar(&flagRulesBottom, "bottom", false, "move to the bottom of the rule's category")
	rulesMoveCmd.Flags().IntVar(&flagRulesTo, "to", -1, "target position")

	rulesImportCmd.Flags().BoolVar(&flagRulesReplace, "replace", false, "discard existing rules before importing")
	rulesImportCmd.Flags().BoolVar(&flagRulesSaveDefault, "save-as-default", false, "persist the merged store to the default rules file")

	rulesExportCmd.Flags().BoolVar(&flagRulesOnlyEnabled, "only-enabled", false, "export enabled rules only")
}

var (
	flagRulesCategory    string
	flagRulesStatus      string
	flagRulesSearch      string
	flagRulesTop         bool
	flagRulesBottom      bool
	flagRulesTo          int
	flagRulesReplace     bool
	flagRulesSaveDefault bool
	flagRulesOnlyEnabled bool
)

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List correction rules in priority order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := attachEngine()
		if err != nil {
			return err
		}
		defer eng.Detach()

		matches, err := eng.QueryRules(flagRulesCategory, flagRulesStatus, flagRulesSearch)
		if err != nil {
			return err
		}

		if flagJSON {
			output, err := json.MarshalIndent(matches, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(output))
			return nil
		}

		if len(matches) == 0 {
			fmt.Println("no rules")
			return nil
		}
		for _, m := range matches {
			line := fmt.Sprintf("%3d  %-10s %q -> %q", m.Index, m.Rule.Category, m.Rule.From, m.Rule.To)
			if m.Rule.IsEnabled() {
				fmt.Println(line)
			} else {
				color.New(color.Faint).Printf("%s (disabled)\n", line)
			}
		}
		return nil
	},
}

var rulesAddCmd = &cobra.Command{
	Use:   "add <category> <from> <to>",
	Short: "Add a correction rule",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := attachEngine()
		if err != nil {
			return err
		}
		defer eng.Detach()

		rule := types.NewCorrectionRule(args[2], args[1], args[0])
		added, err := eng.AddRule(rule)
		if err != nil {
			return err
		}
		if !added {
			fmt.Println("rule already exists")
			return nil
		}
		if err := eng.SaveRules(""); err != nil {
			return fmt.Errorf("save rules: %w", err)
		}
		fmt.Printf("added rule %q -> %q (%s)\n", rule.From, rule.To, rule.Category)
		return nil
	},
}

var rulesDeleteCmd = &cobra.Command{
	Use:   "delete <index>",
	Short: "Delete the rule at the given position",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := parseIndex(args[0])
		if err != nil {
			return err
		}

		eng, err := attachEngine()
		if err != nil {
			return err
		}
		defer eng.Detach()

		if err := eng.DeleteRule(index); err != nil {
			return err
		}
		if err := eng.SaveRules(""); err != nil {
			return fmt.Errorf("save rules: %w", err)
		}
		fmt.Println("rule deleted")
		return nil
	},
}

var rulesMoveCmd = &cobra.Command{
	Use:   "move <index>",
	Short: "Move a rule to a new position or to its category edge",
	Long: `Move repositions the rule at the given index. With --to it moves to an
absolute position; with --top or --bottom it moves to the first or last
position among rules of the same category.

Example:
  chestbuddy rules move 4 --to 0
  chestbuddy rules move 4 --top`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := parseIndex(args[0])
		if err != nil {
			return err
		}

		eng, err := attachEngine()
		if err != nil {
			return err
		}
		defer eng.Detach()

		switch {
		case flagRulesTop:
			err = eng.MoveRuleToTopOfCategory(index)
		case flagRulesBottom:
			err = eng.MoveRuleToBottomOfCategory(index)
		case flagRulesTo >= 0:
			err = eng.MoveRule(index, flagRulesTo)
		default:
			return fmt.Errorf("one of --to, --top, or --bottom is required")
		}
		if err != nil {
			return err
		}
		if err := eng.SaveRules(""); err != nil {
			return fmt.Errorf("save rules: %w", err)
		}
		fmt.Println("rule moved")
		return nil
	},
}

var rulesToggleCmd = &cobra.Command{
	Use:   "toggle <index>",
	Short: "Toggle a rule between enabled and disabled",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := parseIndex(args[0])
		if err != nil {
			return err
		}

		eng, err := attachEngine()
		if err != nil {
			return err
		}
		defer eng.Detach()

		if err := eng.ToggleRule(index); err != nil {
			return err
		}
		if err := eng.SaveRules(""); err != nil {
			return fmt.Errorf("save rules: %w", err)
		}
		fmt.Println("rule toggled")
		return nil
	},
}

var rulesImportCmd = &cobra.Command{
	Use:   "import <rules.csv>",
	Short: "Import rules from a CSV or TSV file",
	Long: `Import merges rules from a CSV/TSV file into the store, skipping
duplicates. With --replace the existing rules are discarded first; with
--save-as-default the result is persisted to the default rules file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := attachEngine()
		if err != nil {
			return err
		}
		defer eng.Detach()

		if err := eng.ImportRules(args[0], flagRulesReplace, flagRulesSaveDefault); err != nil {
			return fmt.Errorf("import rules: %w", err)
		}

		all, err := eng.Rules()
		if err != nil {
			return err
		}
		fmt.Printf("store now holds %d rule(s)\n", len(all))
		return nil
	},
}

var rulesExportCmd = &cobra.Command{
	Use:   "export <rules.csv>",
	Short: "Export rules to a CSV or TSV file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := attachEngine()
		if err != nil {
			return err
		}
		defer eng.Detach()

		if err := eng.ExportRules(args[0], flagRulesOnlyEnabled); err != nil {
			return fmt.Errorf("export rules: %w", err)
		}
		fmt.Println("rules written to", args[0])
		return nil
	},
}
