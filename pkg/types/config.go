package types

import (
	"errors"
	"time"
)

// Config validation errors.
var (
	ErrNoColumns               = errors.New("column set must not be empty")
	ErrColumnKindUnknown       = errors.New("unknown column kind")
	ErrRateLimitNegative       = errors.New("rate limit must not be negative")
	ErrCategoryColumnUnknown   = errors.New("category maps to an undeclared column")
	ErrOutlierThresholdInvalid = errors.New("outlier threshold must not be negative")
)

// Validation categories the reference data ships with. Each maps to one
// table column via Config.CategoryColumns.
const (
	CategoryPlayer = "player"
	CategoryChest  = "chest"
	CategorySource = "source"
)

// Config carries all engine settings. It is built explicitly and passed by
// constructor injection into the components that need it; there is no
// process-wide singleton.
type Config struct {
	// Columns declares the table schema.
	Columns []Column `json:"columns" yaml:"columns"`

	// CategoryColumns maps a validation/correction category to the column
	// name it governs.
	CategoryColumns map[string]string `json:"category_columns" yaml:"category_columns"`

	// CaseSensitive applies uniformly to every reference-list and rule
	// from-value comparison.
	CaseSensitive bool `json:"case_sensitive" yaml:"case_sensitive"`

	// RateLimit is the minimum interval between change notifications.
	RateLimit time.Duration `json:"rate_limit" yaml:"rate_limit"`

	// RulesPath is the default correction-rules file, loaded at startup
	// when present.
	RulesPath string `json:"rules_path" yaml:"rules_path"`

	// ReferenceLists maps a category to its newline-delimited list file.
	ReferenceLists map[string]string `json:"reference_lists" yaml:"reference_lists"`

	// OutlierThreshold is the z-score cutoff for outlier correction
	// strategies.
	OutlierThreshold float64 `json:"outlier_threshold" yaml:"outlier_threshold"`

	// DataDir holds the correction-history database.
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// Engine defaults.
const (
	DefaultRateLimit        = 500 * time.Millisecond
	DefaultOutlierThreshold = 3.0
)

// DefaultConfig returns a Config for the chest-record schema with the
// standard category mapping and default limits.
func DefaultConfig() Config {
	return Config{
		Columns: DefaultColumns(),
		CategoryColumns: map[string]string{
			CategoryPlayer: ColumnPlayer,
			CategoryChest:  ColumnChest,
			CategorySource: ColumnSource,
		},
		RateLimit:        DefaultRateLimit,
		OutlierThreshold: DefaultOutlierThreshold,
	}
}

// knownKinds lists the column kinds Validate accepts.
var knownKinds = map[string]bool{
	KindText:    true,
	KindNumeric: true,
	KindDate:    true,
}

// Validate checks that the Config is well-formed. It returns a sentinel
// error from this package on failure.
func (c Config) Validate() error {
	if len(c.Columns) == 0 {
		return ErrNoColumns
	}
	declared := make(map[string]bool, len(c.Columns))
	for _, col := range c.Columns {
		if !knownKinds[col.Kind] {
			return ErrColumnKindUnknown
		}
		declared[col.Name] = true
	}
	for _, colName := range c.CategoryColumns {
		if !declared[colName] {
			return ErrCategoryColumnUnknown
		}
	}
	if c.RateLimit < 0 {
		return ErrRateLimitNegative
	}
	if c.OutlierThreshold < 0 {
		return ErrOutlierThresholdInvalid
	}
	return nil
}
