package main

import (
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [packages...]",
	Short: "Compare inferred schemas with the pinned schema file",
	Long: `Infer every entity root and compare the result with the pinned schema
file.

Reported findings:
  - inference failures (unsupported types, missing decimal precision, ...)
  - missing, extra, renamed and reordered columns
  - column type drift
  - entities without a pinned table and pinned tables without an entity

The command fails when any error is reported, or any warning with --strict.

Examples:
  entity-schema check
  entity-schema check --strict --quiet`,
	RunE: runCheck,
}

var (
	checkStrict bool
	checkQuiet  bool
)

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().BoolVar(&checkStrict, "strict", false, "treat warnings as errors")
	checkCmd.Flags().BoolVarP(&checkQuiet, "quiet", "q", false, "hide informational findings")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	p, err := newPipeline(ctx, cfg, logger)
	if err != nil {
		return err
	}

	result, err := p.run(ctx)
	if err != nil {
		return err
	}

	diags := result.Diagnostics
	if checkQuiet {
		diags.Infos = nil
	}

	if printDiagnostics(cmd.OutOrStdout(), diags, checkStrict) {
		return errFailed
	}

	return nil
}
