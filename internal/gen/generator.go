package gen

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/dave/jennifer/jen"
	"github.com/go-openapi/inflect"
	"golang.org/x/sync/errgroup"

	"entity-schema/descriptor"
	"entity-schema/internal/schemafile"
	"entity-schema/typeinfo"
)

// GeneratorConfig holds configuration for code generation.
type GeneratorConfig struct {
	// PackageName is the name of the generated package.
	PackageName string
	// OutputDir is the directory where generated files are written.
	OutputDir string
	// FileName is the file holding the registry (and every constructor unless
	// SplitFiles is set).
	FileName string
	// SplitFiles writes one file per entity next to the registry file.
	SplitFiles bool
	// Workers bounds concurrent rendering of split files.
	Workers int
}

// DefaultGeneratorConfig returns the default generator configuration.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		PackageName: "schema",
		OutputDir:   "./schema",
		FileName:    "tables_gen.go",
		Workers:     4,
	}
}

// Entity is one table to generate.
type Entity struct {
	ID     descriptor.TypeID
	Path   string // table path, defaults to schemafile.DefaultPath
	Schema *typeinfo.TableSchema
}

// GeneratedFile represents a generated Go source file.
type GeneratedFile struct {
	// Filename is the name of the file (e.g., "tables_gen.go").
	Filename string
	// Content is the formatted Go source code.
	Content []byte
}

// Generator generates Go code from inferred schemas.
type Generator struct {
	config GeneratorConfig
}

// NewGenerator creates a new Generator with the given configuration.
func NewGenerator(config GeneratorConfig) *Generator {
	return &Generator{config: config}
}

// table is an entity with its resolved names.
type table struct {
	Entity

	ref  string
	fn   string
	file string
}

// Generate renders the files for entities. Output is deterministic: entities
// are ordered by type id and constructor names are unique.
func (g *Generator) Generate(ctx context.Context, entities []Entity) ([]GeneratedFile, error) {
	tables, err := g.plan(entities)
	if err != nil {
		return nil, err
	}

	if !g.config.SplitFiles {
		f := g.newFile()
		for _, t := range tables {
			if err := genConstructor(f, t); err != nil {
				return nil, fmt.Errorf("generating %s: %w", t.ref, err)
			}
		}

		genRegistry(f, tables)

		file, err := render(g.config.FileName, f)
		if err != nil {
			return nil, err
		}

		return []GeneratedFile{file}, nil
	}

	files := make([]GeneratedFile, len(tables)+1)

	eg, ctx := errgroup.WithContext(ctx)
	if g.config.Workers > 0 {
		eg.SetLimit(g.config.Workers)
	}

	for i, t := range tables {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			f := g.newFile()
			if err := genConstructor(f, t); err != nil {
				return fmt.Errorf("generating %s: %w", t.ref, err)
			}

			file, err := render(t.file, f)
			if err != nil {
				return err
			}

			files[i] = file

			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	f := g.newFile()
	genRegistry(f, tables)

	registry, err := render(g.config.FileName, f)
	if err != nil {
		return nil, err
	}

	files[len(tables)] = registry

	return files, nil
}

// plan sorts entities and assigns constructor and file names.
func (g *Generator) plan(entities []Entity) ([]table, error) {
	sorted := slices.Clone(entities)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ID.String() < sorted[j].ID.String()
	})

	namespace := map[string]struct{}{"Tables": {}, "Paths": {}}
	files := map[string]struct{}{strings.TrimSuffix(g.config.FileName, "_gen.go"): {}}

	tables := make([]table, 0, len(sorted))
	for i, e := range sorted {
		if e.Schema == nil {
			return nil, fmt.Errorf("entity %s has no schema", e.ID)
		}

		if i > 0 && sorted[i-1].ID == e.ID {
			return nil, fmt.Errorf("entity %s listed twice", e.ID)
		}

		t := table{
			Entity: e,
			ref:    schemafile.EntityRef(e.ID),
			fn:     NewStem(exportedIdent(e.ID.Name)+"Table", namespace).Next(),
		}

		if t.Path == "" {
			t.Path = schemafile.DefaultPath(e.ID)
		}

		t.file = NewStem(inflect.Underscore(t.fn), files).Next() + "_gen.go"
		tables = append(tables, t)
	}

	return tables, nil
}

func (g *Generator) newFile() *jen.File {
	f := jen.NewFile(g.config.PackageName)
	f.HeaderComment(generatedHeader)
	f.ImportName(typeinfoPkg, "typeinfo")
	f.ImportName(primitivePkg, "primitive")

	return f
}

// genConstructor emits "func <Name>Table() *typeinfo.TableSchema".
func genConstructor(f *jen.File, t table) error {
	columns := make([]jen.Code, 0, len(t.Schema.Columns))
	for _, c := range t.Schema.Columns {
		ct, err := typeExpr(c.Type)
		if err != nil {
			return fmt.Errorf("column %s: %w", c.Name, err)
		}

		columns = append(columns, jen.Values(jen.Dict{
			jen.Id("Name"): jen.Lit(c.Name),
			jen.Id("Type"): ct,
		}))
	}

	f.Commentf("%s returns the schema of table %s (%s).", t.fn, t.Path, t.ref)
	f.Func().Id(t.fn).Params().Op("*").Qual(typeinfoPkg, "TableSchema").Block(
		jen.Return(jen.Op("&").Qual(typeinfoPkg, "TableSchema").Values(jen.Dict{
			jen.Id("Columns"): jen.Index().Qual(typeinfoPkg, "Column").ValuesFunc(func(g *jen.Group) {
				for _, c := range columns {
					g.Line().Add(c)
				}

				if len(columns) > 0 {
					g.Line()
				}
			}),
		})),
	)

	return nil
}

// genRegistry emits the Tables and Paths maps keyed by entity reference.
func genRegistry(f *jen.File, tables []table) {
	f.Comment("Tables maps entity references to their schema constructors.")
	f.Var().Id("Tables").Op("=").Map(jen.String()).Func().Params().Op("*").Qual(typeinfoPkg, "TableSchema").
		Values(jen.DictFunc(func(d jen.Dict) {
			for _, t := range tables {
				d[jen.Lit(t.ref)] = jen.Id(t.fn)
			}
		}))

	f.Comment("Paths maps entity references to table paths.")
	f.Var().Id("Paths").Op("=").Map(jen.String()).String().
		Values(jen.DictFunc(func(d jen.Dict) {
			for _, t := range tables {
				d[jen.Lit(t.ref)] = jen.Lit(t.Path)
			}
		}))
}

func render(name string, f *jen.File) (GeneratedFile, error) {
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return GeneratedFile{}, fmt.Errorf("rendering %s: %w", name, err)
	}

	return GeneratedFile{Filename: name, Content: buf.Bytes()}, nil
}
