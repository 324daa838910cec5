package gen

import (
	"context"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"entity-schema/descriptor"
	"entity-schema/primitive"
	"entity-schema/typeinfo"
)

const shopPkg = "entity-schema/examples/shop"

func testEntities(t *testing.T) []Entity {
	t.Helper()

	order, err := typeinfo.NewBuilder().
		Add("id", typeinfo.Primitive{Kind: primitive.KindInt64}).
		Add("total", typeinfo.Optional{Item: typeinfo.Decimal{Precision: 12, Scale: 2}}).
		Add("items", typeinfo.Optional{Item: typeinfo.List{Item: typeinfo.Struct{Members: []typeinfo.Member{
			{Name: "sku", Type: typeinfo.Primitive{Kind: primitive.KindString}},
			{Name: "qty", Type: typeinfo.Primitive{Kind: primitive.KindInt32}},
		}}}}).
		Add("attrs", typeinfo.Optional{Item: typeinfo.Dict{
			Key:   typeinfo.Primitive{Kind: primitive.KindString},
			Value: typeinfo.Optional{Item: typeinfo.Primitive{Kind: primitive.KindString}},
		}}).
		Build()
	require.NoError(t, err)

	customer, err := typeinfo.NewBuilder().
		Add("id", typeinfo.Primitive{Kind: primitive.KindInt64}).
		Add("created_at", typeinfo.Primitive{Kind: primitive.KindTimestamp}).
		Build()
	require.NoError(t, err)

	return []Entity{
		{ID: descriptor.TypeID{PkgPath: shopPkg, Name: "Order"}, Schema: order},
		{ID: descriptor.TypeID{PkgPath: shopPkg, Name: "Customer"}, Schema: customer, Path: "//home/crm/customers"},
	}
}

func parseGenerated(t *testing.T, file GeneratedFile) {
	t.Helper()

	_, err := parser.ParseFile(token.NewFileSet(), file.Filename, file.Content, parser.AllErrors)
	require.NoError(t, err, "generated code must parse:\n%s", file.Content)
}

func TestGenerator_Generate_SingleFile(t *testing.T) {
	t.Parallel()

	cfg := DefaultGeneratorConfig()
	cfg.PackageName = "tables"

	files, err := NewGenerator(cfg).Generate(context.Background(), testEntities(t))
	require.NoError(t, err)
	require.Len(t, files, 1)

	file := files[0]
	assert.Equal(t, "tables_gen.go", file.Filename)
	parseGenerated(t, file)

	code := string(file.Content)
	assert.True(t, strings.HasPrefix(code, generatedHeader))
	assert.Contains(t, code, "package tables")
	assert.Contains(t, code, `"entity-schema/typeinfo"`)
	assert.Contains(t, code, "func OrderTable() *typeinfo.TableSchema")
	assert.Contains(t, code, "func CustomerTable() *typeinfo.TableSchema")
	assert.Contains(t, code, "// OrderTable returns the schema of table //home/shop/orders (shop.Order).")
	assert.Contains(t, code, "// CustomerTable returns the schema of table //home/crm/customers (shop.Customer).")
	assert.Contains(t, code, "primitive.KindTimestamp")
	assert.Contains(t, code, "Precision: 12")
	assert.Contains(t, code, `"shop.Order":`)
	assert.Contains(t, code, `"//home/crm/customers"`)

	// Entities are emitted in type id order.
	assert.Less(t, strings.Index(code, "func CustomerTable"), strings.Index(code, "func OrderTable"))
}

func TestGenerator_Generate_Deterministic(t *testing.T) {
	t.Parallel()

	entities := testEntities(t)
	reversed := []Entity{entities[1], entities[0]}

	a, err := NewGenerator(DefaultGeneratorConfig()).Generate(context.Background(), entities)
	require.NoError(t, err)

	b, err := NewGenerator(DefaultGeneratorConfig()).Generate(context.Background(), reversed)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestGenerator_Generate_SplitFiles(t *testing.T) {
	t.Parallel()

	cfg := DefaultGeneratorConfig()
	cfg.SplitFiles = true

	files, err := NewGenerator(cfg).Generate(context.Background(), testEntities(t))
	require.NoError(t, err)
	require.Len(t, files, 3)

	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Filename)
		parseGenerated(t, f)
	}

	assert.Equal(t, []string{"customer_table_gen.go", "order_table_gen.go", "tables_gen.go"}, names)
	assert.Contains(t, string(files[1].Content), "func OrderTable()")
	assert.NotContains(t, string(files[1].Content), "var Tables")
	assert.Contains(t, string(files[2].Content), "var Tables")
}

func TestGenerator_Generate_NameCollisions(t *testing.T) {
	t.Parallel()

	schema, err := typeinfo.NewBuilder().Add("id", typeinfo.Primitive{Kind: primitive.KindInt64}).Build()
	require.NoError(t, err)

	files, err := NewGenerator(DefaultGeneratorConfig()).Generate(context.Background(), []Entity{
		{ID: descriptor.TypeID{PkgPath: "example.com/a", Name: "Order"}, Schema: schema},
		{ID: descriptor.TypeID{PkgPath: "example.com/b", Name: "Order"}, Schema: schema},
	})
	require.NoError(t, err)
	parseGenerated(t, files[0])

	code := string(files[0].Content)
	assert.Contains(t, code, "func OrderTable()")
	assert.Contains(t, code, "func OrderTable2()")
}

func TestGenerator_Generate_Errors(t *testing.T) {
	t.Parallel()

	id := descriptor.TypeID{PkgPath: shopPkg, Name: "Order"}

	_, err := NewGenerator(DefaultGeneratorConfig()).Generate(context.Background(), []Entity{{ID: id}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no schema")

	schema := &typeinfo.TableSchema{Columns: []typeinfo.Column{{Name: "x", Type: typeinfo.Primitive{}}}}
	_, err = NewGenerator(DefaultGeneratorConfig()).Generate(context.Background(), []Entity{{ID: id, Schema: schema}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "column x")

	_, err = NewGenerator(DefaultGeneratorConfig()).Generate(context.Background(), []Entity{
		{ID: id, Schema: schema},
		{ID: id, Schema: schema},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listed twice")
}

func TestWriteFiles(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "out")

	cfg := DefaultGeneratorConfig()
	cfg.SplitFiles = true

	files, err := NewGenerator(cfg).Generate(context.Background(), testEntities(t))
	require.NoError(t, err)
	require.NoError(t, WriteFiles(context.Background(), files, dir, 2))

	for _, f := range files {
		data, err := os.ReadFile(filepath.Join(dir, f.Filename))
		require.NoError(t, err)
		assert.Equal(t, f.Content, data)
	}
}

func TestRemoveStale(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), filePerm))
	}

	write("tables_gen.go", generatedHeader+"\n\npackage schema\n")
	write("old_table_gen.go", generatedHeader+"\n\npackage schema\n")
	write("handwritten_gen.go", "package schema\n")
	write("helpers.go", generatedHeader+"\n\npackage schema\n")

	removed, err := RemoveStale([]GeneratedFile{{Filename: "tables_gen.go"}}, dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"old_table_gen.go"}, removed)

	_, err = os.Stat(filepath.Join(dir, "handwritten_gen.go"))
	assert.NoError(t, err)

	removed, err = RemoveStale(nil, filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Empty(t, removed)
}
