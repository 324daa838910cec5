package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"entity-schema/internal/plan"
	"entity-schema/internal/schemafile"
)

var inferCmd = &cobra.Command{
	Use:   "infer [packages...]",
	Short: "Infer table schemas and print them as a schema file",
	Long: `Infer the table schema of every entity root and print the result in the
schema file format.

Pinned tables are used as the existing schema of their entity, so pinned
column types are kept where the field still allows them. Entity references
and table paths of pinned tables are preserved.

Examples:
  entity-schema infer
  entity-schema infer --out schema.yaml
  entity-schema infer --update`,
	RunE: runInfer,
}

var (
	inferOut    string
	inferUpdate bool
)

func init() {
	rootCmd.AddCommand(inferCmd)

	inferCmd.Flags().StringVarP(&inferOut, "out", "o", "", "write the schema file to this path instead of stdout")
	inferCmd.Flags().BoolVar(&inferUpdate, "update", false, "write the result to the configured schema_file")
}

func runInfer(cmd *cobra.Command, args []string) error {
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

	out := inferOut
	if inferUpdate {
		if cfg.SchemaFile == "" {
			return fmt.Errorf("--update requires schema_file in %s", cfgFile)
		}

		out = cfg.SchemaFile
	}

	for _, e := range result.Entities {
		if e.Failed() {
			logger.Error().Err(e.Err).Str("entity", e.Ref).Msg("inference failed")
		}
	}

	file := plan.ExportSchemaFile(result, p.schema)

	if out == "" {
		data, err := schemafile.Marshal(file)
		if err != nil {
			return err
		}

		_, err = cmd.OutOrStdout().Write(data)

		return err
	}

	if err := schemafile.WriteFile(file, out); err != nil {
		return err
	}

	logger.Info().Str("file", out).Int("tables", len(file.Tables)).Msg("schema file written")

	if result.Diagnostics.HasErrors() {
		fmt.Fprintln(os.Stderr, "some entities could not be inferred; run check for details")
		return errFailed
	}

	return nil
}
