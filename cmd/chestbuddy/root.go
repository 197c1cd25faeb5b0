// Root command for the chestbuddy CLI.
package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/LinkesAuge/chestbuddy/internal/logging"
	"github.com/LinkesAuge/chestbuddy/internal/paths"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// Global flag values.
var (
	flagConfigDir string
	flagDataDir   string
	flagRules     string
	flagLogLevel  string
	flagJSON      bool
)

// configDataDir holds the data_dir value loaded from config.yaml.
// Set by PersistentPreRunE so all subcommands can use it.
var configDataDir string

// loadedConfig is the parsed config.yaml, set by PersistentPreRunE.
var loadedConfig *viper.Viper

var rootCmd = &cobra.Command{
	Use:   "chestbuddy",
	Short: "Chestbuddy validates and corrects chest-record tables",
	Long: `Chestbuddy manages tabular chest records (DATE, PLAYER, SOURCE, CHEST,
SCORE, CLAN): it validates them against reference lists and format rules,
and applies correction rules and strategies to fix the findings.`,
	Version:      version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Setup(flagLogLevel, "text")

		configDir, err := resolveConfigDir()
		if err != nil {
			return err
		}

		v, err := loadConfig(configDir)
		if err != nil {
			return err
		}

		loadedConfig = v
		configDataDir = v.GetString(cfgKeyDataDir)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: platform config dir)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default: $(CWD)/.chestbuddy-data)")
	rootCmd.PersistentFlags().StringVar(&flagRules, "rules", "", "correction rules file (default: rules_path from config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(correctCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(historyCmd)
}

// resolveDataDir returns the data directory path following the precedence
// --data-dir flag > config.yaml data_dir > CHESTBUDDY_DATA_DIR env >
// default $(CWD)/.chestbuddy-data.
func resolveDataDir() (string, error) {
	return paths.ResolveDataDir(flagDataDir, configDataDir)
}

// resolveConfigDir returns the configuration directory following the
// precedence --config-dir flag > CHESTBUDDY_CONFIG_DIR env >
// DefaultConfigDir().
func resolveConfigDir() (string, error) {
	return paths.ResolveConfigDir(flagConfigDir)
}
