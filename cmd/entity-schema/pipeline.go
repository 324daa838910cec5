package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"entity-schema/descriptor"
	"entity-schema/infer"
	"entity-schema/internal/analyze"
	"entity-schema/internal/config"
	"entity-schema/internal/diagnostic"
	"entity-schema/internal/gen"
	"entity-schema/internal/plan"
	"entity-schema/internal/schemafile"
	"entity-schema/meta"
	"entity-schema/rawtype"
)

// loadConfig loads the --config file and applies the global flag overrides.
// Package patterns in args replace the configured ones.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadWithFallback(cfgFile, cmd.Flags().Changed("config"))
	if err != nil {
		return nil, zerolog.Nop(), err
	}

	if len(args) > 0 {
		cfg.Packages = args
		cfg.Dir = ""
	}

	if logLevel != "" {
		if _, err := zerolog.ParseLevel(logLevel); err != nil {
			return nil, zerolog.Nop(), fmt.Errorf("--log-level: %w", err)
		}

		cfg.Logging.Level = logLevel
	}

	return cfg, cfg.Logging.NewLogger(os.Stderr), nil
}

// pipeline is one analysis of the configured packages.
type pipeline struct {
	cfg     *config.Config
	logger  zerolog.Logger
	schema  *schemafile.File
	planner *plan.Planner
	roots   []descriptor.TypeID
	dirs    []string // source directories of the loaded packages
}

// newPipeline loads packages, metadata and the schema file. It is called once
// per run so that watch mode sees source changes.
func newPipeline(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*pipeline, error) {
	registry := descriptor.NewRegistry(descriptor.WithDecimalTypes(cfg.DecimalTypeIDs()...))

	analyzer := analyze.NewAnalyzer(registry, analyze.WithDir(cfg.Dir), analyze.WithLogger(logger))

	infos, err := analyzer.LoadPackages(ctx, cfg.Packages...)
	if err != nil {
		return nil, err
	}

	provider, err := newProvider(cfg)
	if err != nil {
		return nil, err
	}

	naming, err := infer.NamingByName(cfg.Naming)
	if err != nil {
		return nil, err
	}

	categories, err := cfg.Categories()
	if err != nil {
		return nil, err
	}

	var schema *schemafile.File
	if cfg.SchemaFile != "" {
		schema, err = schemafile.LoadFile(cfg.SchemaFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}

		if schema == nil {
			logger.Info().Str("file", cfg.SchemaFile).Msg("schema file not found, nothing pinned yet")
		}
	}

	planCfg := plan.DefaultConfig()
	planCfg.Workers = cfg.Workers
	planCfg.ReportUnpinned = schema != nil

	opts := []plan.Option{plan.WithConfig(planCfg), plan.WithLogger(logger)}
	if schema != nil {
		opts = append(opts, plan.WithSchemaFile(schema))
	}

	planner := plan.New(registry, provider, []infer.Option{
		infer.WithNaming(naming),
		infer.WithRawTypeParser(&rawtype.TextParser{Categories: categories}),
	}, opts...)

	var (
		ids  []descriptor.TypeID
		dirs []string
	)

	for _, info := range infos {
		ids = append(ids, info.Types...)
		if info.Dir != "" {
			dirs = append(dirs, info.Dir)
		}
	}

	roots := planner.Roots(ids...)

	logger.Debug().
		Int("packages", len(infos)).
		Int("types", registry.Len()).
		Int("roots", len(roots)).
		Msg("packages loaded")

	return &pipeline{
		cfg:     cfg,
		logger:  logger,
		schema:  schema,
		planner: planner,
		roots:   roots,
		dirs:    dirs,
	}, nil
}

// newProvider chains the metadata file (when configured) before struct tags.
func newProvider(cfg *config.Config) (meta.FieldMetadataProvider, error) {
	tags := meta.NewTagProvider(
		meta.WithTagKey(cfg.Tags.Key),
		meta.WithEntityMarkers(config.MarkerIDs(cfg.Tags.EntityMarkers)...),
		meta.WithEmbeddableMarkers(config.MarkerIDs(cfg.Tags.EmbeddableMarkers)...),
	)

	if cfg.MetadataFile == "" {
		return tags, nil
	}

	file, err := meta.LoadFile(cfg.MetadataFile)
	if err != nil {
		return nil, err
	}

	return meta.Chain{file, tags}, nil
}

func (p *pipeline) run(ctx context.Context) (*plan.Result, error) {
	return p.planner.Run(ctx, p.roots)
}

// generate renders and writes the Go constructors of the inferred schemas.
func (p *pipeline) generate(ctx context.Context, result *plan.Result, split bool) ([]gen.GeneratedFile, error) {
	entities := make([]gen.Entity, 0, len(result.Entities))
	for _, e := range result.Entities {
		if e.Failed() {
			continue
		}

		entity := gen.Entity{ID: e.ID, Schema: e.Schema}
		if p.schema != nil {
			if t, ok := p.schema.Table(e.ID); ok {
				entity.Path = t.Path
			}
		}

		entities = append(entities, entity)
	}

	generator := gen.NewGenerator(gen.GeneratorConfig{
		PackageName: p.cfg.Output.Package,
		OutputDir:   p.cfg.Output.Dir,
		FileName:    p.cfg.Output.File,
		SplitFiles:  split,
		Workers:     p.cfg.Workers,
	})

	files, err := generator.Generate(ctx, entities)
	if err != nil {
		return nil, err
	}

	if err := gen.WriteFiles(ctx, files, p.cfg.Output.Dir, p.cfg.Workers); err != nil {
		return nil, err
	}

	removed, err := gen.RemoveStale(files, p.cfg.Output.Dir)
	if err != nil {
		return nil, err
	}

	for _, name := range removed {
		p.logger.Info().Str("file", name).Msg("removed stale generated file")
	}

	return files, nil
}

// printDiagnostics writes diags and a summary line. It reports whether the
// result counts as failed.
func printDiagnostics(w io.Writer, diags diagnostic.Diagnostics, strict bool) bool {
	for _, d := range diags.All() {
		fmt.Fprintf(w, "%-7s %s\n", d.Severity, d)
	}

	fmt.Fprintf(w, "%d error(s), %d warning(s)\n", len(diags.Errors), len(diags.Warnings))

	return diags.HasErrors() || (strict && len(diags.Warnings) > 0)
}
