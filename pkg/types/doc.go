// Package types defines the table, status, and correction-rule types shared
// by the ChestBuddy engine components, together with the engine Config and
// standard errors.
package types
