package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile  string
	logLevel string
)

// errFailed is returned after a command already reported its failure.
var errFailed = errors.New("failed")

var rootCmd = &cobra.Command{
	Use:   "entity-schema",
	Short: "Derive typed table schemas from annotated Go structs",
	Long: `entity-schema derives the table schema of every entity root found in
the configured Go packages.

Columns, nullability and storage types come from the Go field types, the
struct tags (key "table" by default) and an optional metadata file. Inferred
schemas can be pinned in a schema file and checked for drift.

Examples:
  entity-schema infer                  # print inferred schemas as YAML
  entity-schema infer --update         # pin them in the schema file
  entity-schema check                  # report drift against the schema file
  entity-schema gen --out-dir schema   # generate Go table constructors
  entity-schema watch --gen            # check and regenerate on change`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}

		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "entity-schema.yaml", "config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
}
