package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"entity-schema/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run check when sources change",
	Long: `Watch the configured package directories, the schema file and the
metadata file, and re-run check after every change. With --gen the Go
constructors are regenerated as well.

Stop with Ctrl+C.

Examples:
  entity-schema watch
  entity-schema watch --gen`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

var watchGen bool

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().BoolVar(&watchGen, "gen", false, "regenerate Go constructors after each run")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()

	var dirs []string

	action := func(ctx context.Context) error {
		p, err := newPipeline(ctx, cfg, logger)
		if err != nil {
			return err
		}

		dirs = p.dirs

		result, err := p.run(ctx)
		if err != nil {
			return err
		}

		printDiagnostics(out, result.Diagnostics, false)

		if watchGen {
			if _, err := p.generate(ctx, result, false); err != nil {
				return err
			}
		}

		return nil
	}

	// The first run must load the packages to know which directories to watch.
	if err := action(ctx); err != nil {
		return err
	}

	var files []string
	for _, f := range []string{cfg.SchemaFile, cfg.MetadataFile} {
		if f != "" {
			files = append(files, f)
		}
	}

	w := watch.New(dirs, files, watch.WithDebounce(cfg.Watch.Debounce), watch.WithLogger(logger))

	logger.Info().Strs("dirs", dirs).Msg("watching for changes")

	return w.Run(ctx, action)
}
