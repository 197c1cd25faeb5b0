// Config loading for the chestbuddy CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/LinkesAuge/chestbuddy/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	// Config keys.
	cfgKeyDataDir          = "data_dir"
	cfgKeyRulesPath        = "rules_path"
	cfgKeyCaseSensitive    = "case_sensitive"
	cfgKeyRateLimitMS      = "rate_limit_ms"
	cfgKeyOutlierThreshold = "outlier_threshold"
	cfgKeyReferenceLists   = "reference_lists"
)

// defaultConfigYAML is the content written to config.yaml on first run.
const defaultConfigYAML = `# Chestbuddy CLI configuration

# Case-sensitive matching for reference lists and rule from-values
case_sensitive: false

# Minimum interval between table change notifications, in milliseconds
rate_limit_ms: 500

# Z-score cutoff for outlier correction strategies
outlier_threshold: 3.0

# Default correction rules file (optional; overridable by --rules flag)
# rules_path:

# Data directory for the correction history (optional; overridable by --data-dir flag)
# data_dir:

# Reference list files, one accepted value per line
# reference_lists:
#   player: players.txt
#   chest: chests.txt
#   source: sources.txt
`

// loadConfig reads config.yaml from the resolved config directory using
// Viper. It creates the config directory and a default config.yaml on
// first run. A missing config.yaml is not an error.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := ensureConfigDir(configDir); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}

	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyCaseSensitive, false)
	v.SetDefault(cfgKeyRateLimitMS, int(types.DefaultRateLimit/time.Millisecond))
	v.SetDefault(cfgKeyOutlierThreshold, types.DefaultOutlierThreshold)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Missing config.yaml is not an error.
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	return v, nil
}

// buildEngineConfig turns the loaded viper settings plus flag overrides
// into a types.Config for the engine.
func buildEngineConfig(v *viper.Viper) (types.Config, error) {
	cfg := types.DefaultConfig()
	cfg.CaseSensitive = v.GetBool(cfgKeyCaseSensitive)
	cfg.RateLimit = time.Duration(v.GetInt(cfgKeyRateLimitMS)) * time.Millisecond
	cfg.OutlierThreshold = v.GetFloat64(cfgKeyOutlierThreshold)
	cfg.ReferenceLists = v.GetStringMapString(cfgKeyReferenceLists)

	dataDir, err := resolveDataDir()
	if err != nil {
		return types.Config{}, fmt.Errorf("resolve data dir: %w", err)
	}
	cfg.DataDir = dataDir

	// Rule edits persist under the data dir unless a rules file is named.
	cfg.RulesPath = v.GetString(cfgKeyRulesPath)
	if flagRules != "" {
		cfg.RulesPath = flagRules
	}
	if cfg.RulesPath == "" {
		cfg.RulesPath = filepath.Join(dataDir, "rules.csv")
	}

	return cfg, nil
}

// ensureConfigDir creates the config directory if it does not exist.
func ensureConfigDir(configDir string) error {
	return os.MkdirAll(configDir, 0o755)
}

// ensureDefaultConfigFile creates a default config.yaml if the file does
// not exist in the config directory.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		// File already exists.
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
