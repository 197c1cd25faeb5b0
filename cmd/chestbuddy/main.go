// Package main provides the chestbuddy CLI, a thin wrapper over the
// validation-correction engine: it owns table CSV file I/O and renders
// engine results.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUserError)
	}
}
