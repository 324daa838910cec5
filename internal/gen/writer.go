package gen

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
)

// File permission constants.
const (
	dirPerm  = 0o755
	filePerm = 0o644
)

const generatedHeader = "// Code generated by entity-schema. DO NOT EDIT."

// WriteFiles writes all generated files to the output directory, creating it
// when missing. Files are written concurrently, at most workers at a time.
func WriteFiles(ctx context.Context, files []GeneratedFile, outputDir string, workers int) error {
	err := os.MkdirAll(outputDir, dirPerm)
	if err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	eg, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		eg.SetLimit(workers)
	}

	for _, file := range files {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			outputPath := filepath.Join(outputDir, file.Filename)
			if err := os.WriteFile(outputPath, file.Content, filePerm); err != nil {
				return fmt.Errorf("writing file %s: %w", file.Filename, err)
			}

			return nil
		})
	}

	return eg.Wait()
}

// RemoveStale deletes generated files in outputDir that are not in files.
// Only *_gen.go files starting with the generated header are touched. The
// removed file names are returned.
func RemoveStale(files []GeneratedFile, outputDir string) ([]string, error) {
	keep := make(map[string]struct{}, len(files))
	for _, f := range files {
		keep[f.Filename] = struct{}{}
	}

	entries, err := os.ReadDir(outputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("reading output directory: %w", err)
	}

	var removed []string

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, "_gen.go") {
			continue
		}

		if _, ok := keep[name]; ok {
			continue
		}

		path := filepath.Join(outputDir, name)

		data, err := os.ReadFile(path)
		if err != nil {
			return removed, fmt.Errorf("reading %s: %w", name, err)
		}

		if !bytes.HasPrefix(data, []byte(generatedHeader)) {
			continue
		}

		if err := os.Remove(path); err != nil {
			return removed, fmt.Errorf("removing %s: %w", name, err)
		}

		removed = append(removed, name)
	}

	return removed, nil
}
