package schemafile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"entity-schema/descriptor"
	"entity-schema/primitive"
	"entity-schema/typeinfo"
)

const shopPkg = "entity-schema/examples/shop"

func TestParse(t *testing.T) {
	t.Parallel()

	yaml := `
tables:
  - entity: shop.Order
    path: //home/custom/orders
    columns:
      - name: id
        type: int64
      - name: total
        type: optional<decimal(12,2)>
      - name: tags
        type: list<optional<string>>
  - entity: entity-schema/examples/shop.OrderItem
    columns:
      - name: qty
        type: int32
`

	f, err := Parse([]byte(yaml))
	require.NoError(t, err)

	assert.Equal(t, CurrentVersion, f.Version)
	require.Len(t, f.Tables, 2)

	order := f.Tables[0]
	assert.Equal(t, "shop.Order", order.Entity)
	assert.Equal(t, "//home/custom/orders", order.Path)
	require.Len(t, order.Columns, 3)
	assert.Equal(t, "id", order.Columns[0].Name)
	assert.Equal(t, typeinfo.Primitive{Kind: primitive.KindInt64}, order.Columns[0].Type.Type)
	assert.Equal(t, typeinfo.Optional{Item: typeinfo.Decimal{Precision: 12, Scale: 2}}, order.Columns[1].Type.Type)

	item := f.Tables[1]
	assert.Equal(t, "//home/shop/order_items", item.Path, "default path")
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "bad type",
			yaml:    "tables:\n  - entity: A\n    columns:\n      - name: x\n        type: list<int64\n",
			wantErr: "line 5",
		},
		{
			name:    "non scalar type",
			yaml:    "tables:\n  - entity: A\n    columns:\n      - name: x\n        type: [int64]\n",
			wantErr: "expected type string",
		},
		{
			name:    "missing entity",
			yaml:    "tables:\n  - columns: []\n",
			wantErr: "table 0: missing entity",
		},
		{
			name:    "duplicate entity",
			yaml:    "tables:\n  - entity: A\n  - entity: A\n",
			wantErr: `duplicate entity "A"`,
		},
		{
			name:    "duplicate column",
			yaml:    "tables:\n  - entity: A\n    columns:\n      - {name: x, type: int64}\n      - {name: x, type: string}\n",
			wantErr: "duplicate column name",
		},
		{
			name:    "missing type",
			yaml:    "tables:\n  - entity: A\n    columns:\n      - name: x\n",
			wantErr: `column "x": missing type`,
		},
		{
			name:    "not yaml",
			yaml:    "tables: [",
			wantErr: "failed to parse schema YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDefaultPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		id   descriptor.TypeID
		want string
	}{
		{descriptor.TypeID{PkgPath: shopPkg, Name: "Order"}, "//home/shop/orders"},
		{descriptor.TypeID{PkgPath: shopPkg, Name: "OrderItem"}, "//home/shop/order_items"},
		{descriptor.TypeID{PkgPath: shopPkg, Name: "Category"}, "//home/shop/categories"},
		{descriptor.TypeID{Name: "Address"}, "//home/addresses"},
		{descriptor.TypeID{PkgPath: "example.com/shop/v2", Name: "Order"}, "//home/shop/orders"},
	}

	for _, tt := range tests {
		t.Run(tt.id.String(), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, DefaultPath(tt.id))
		})
	}
}

func TestEntityRef(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "shop.Order", EntityRef(descriptor.TypeID{PkgPath: shopPkg, Name: "Order"}))
	assert.Equal(t, "shop.Order", EntityRef(descriptor.TypeID{PkgPath: "example.com/shop/v2", Name: "Order"}))
	assert.Equal(t, "Address", EntityRef(descriptor.TypeID{Name: "Address"}))
}

func TestFile_Existing(t *testing.T) {
	t.Parallel()

	f, err := Parse([]byte(`
tables:
  - entity: shop.Order
    columns:
      - {name: id, type: int64}
      - {name: total, type: "optional<decimal(12,2)>"}
`))
	require.NoError(t, err)

	schema, err := f.Existing(descriptor.TypeID{PkgPath: shopPkg, Name: "Order"})
	require.NoError(t, err)
	assert.Equal(t, "[id:int64, total:optional<decimal(12,2)>]", schema.String())

	schema, err = f.Existing(descriptor.TypeID{PkgPath: shopPkg, Name: "Customer"})
	require.NoError(t, err)
	assert.Nil(t, schema)

	var none *File
	schema, err = none.Existing(descriptor.TypeID{Name: "Order"})
	require.NoError(t, err)
	assert.Nil(t, schema)
}

func TestFile_Upsert(t *testing.T) {
	t.Parallel()

	orderID := descriptor.TypeID{PkgPath: shopPkg, Name: "Order"}
	schema, err := typeinfo.NewBuilder().
		Add("id", typeinfo.Primitive{Kind: primitive.KindInt64}).
		Add("note", typeinfo.Optional{Item: typeinfo.Primitive{Kind: primitive.KindString}}).
		Build()
	require.NoError(t, err)

	f := &File{Version: CurrentVersion, Tables: []Table{{
		Entity: "entity-schema/examples/shop.Order",
		Path:   "//home/legacy/orders",
	}}}

	f.Upsert(orderID, FromSchema(orderID, schema))
	require.Len(t, f.Tables, 1)
	assert.Equal(t, "entity-schema/examples/shop.Order", f.Tables[0].Entity, "reference kept")
	assert.Equal(t, "//home/legacy/orders", f.Tables[0].Path, "path kept")
	assert.Len(t, f.Tables[0].Columns, 2)

	itemID := descriptor.TypeID{PkgPath: shopPkg, Name: "OrderItem"}
	f.Upsert(itemID, FromSchema(itemID, schema))
	require.Len(t, f.Tables, 2)
	assert.Equal(t, "shop.OrderItem", f.Tables[1].Entity)
	assert.Equal(t, "//home/shop/order_items", f.Tables[1].Path)
}

func TestWriteFile_RoundTrip(t *testing.T) {
	t.Parallel()

	id := descriptor.TypeID{PkgPath: shopPkg, Name: "Order"}
	schema, err := typeinfo.NewBuilder().
		Add("id", typeinfo.Primitive{Kind: primitive.KindInt64}).
		Add("lines", typeinfo.Optional{Item: typeinfo.List{Item: typeinfo.Struct{Members: []typeinfo.Member{
			{Name: "sku", Type: typeinfo.Optional{Item: typeinfo.Primitive{Kind: primitive.KindString}}},
			{Name: "price", Type: typeinfo.Decimal{Precision: 10, Scale: 2}},
		}}}}).
		Add("attrs", typeinfo.Dict{
			Key:   typeinfo.Primitive{Kind: primitive.KindString},
			Value: typeinfo.Primitive{Kind: primitive.KindInt64},
		}).
		Build()
	require.NoError(t, err)

	f := &File{Version: CurrentVersion}
	f.Upsert(id, FromSchema(id, schema))

	filename := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, WriteFile(f, filename))

	data, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.Contains(t, string(data), "optional<list<struct<sku:optional<string>,price:decimal(10,2)>>>")

	loaded, err := LoadFile(filename)
	require.NoError(t, err)

	got, err := loaded.Existing(id)
	require.NoError(t, err)
	assert.True(t, schema.Equal(got), "got %s", got)
}

func TestLoadFile_Missing(t *testing.T) {
	t.Parallel()

	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
