package main

import (
	"path/filepath"

	"github.com/spf13/cobra"
)

var genCmd = &cobra.Command{
	Use:   "gen [packages...]",
	Short: "Generate Go constructors for the inferred schemas",
	Long: `Generate a Go package declaring one constructor per entity root that
returns its *typeinfo.TableSchema, plus a Tables registry and a Paths index
keyed by entity reference.

Entities that fail inference are skipped and reported.

Examples:
  entity-schema gen
  entity-schema gen --out-dir internal/tables --package tables --split`,
	RunE: runGen,
}

var (
	genOutDir  string
	genPackage string
	genSplit   bool
)

func init() {
	rootCmd.AddCommand(genCmd)

	genCmd.Flags().StringVar(&genOutDir, "out-dir", "", "output directory (default from config)")
	genCmd.Flags().StringVar(&genPackage, "package", "", "package name (default: base of the output directory)")
	genCmd.Flags().BoolVar(&genSplit, "split", false, "write one file per entity")
}

func runGen(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	if genOutDir != "" {
		cfg.Output.Dir = genOutDir
		if genPackage == "" {
			cfg.Output.Package = filepath.Base(genOutDir)
		}
	}

	if genPackage != "" {
		cfg.Output.Package = genPackage
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

	files, err := p.generate(ctx, result, genSplit)
	if err != nil {
		return err
	}

	logger.Info().
		Str("dir", cfg.Output.Dir).
		Int("files", len(files)).
		Int("entities", len(result.Entities)).
		Msg("generated")

	if result.Diagnostics.HasErrors() {
		printDiagnostics(cmd.ErrOrStderr(), result.Diagnostics, false)
		return errFailed
	}

	return nil
}
