package analyze

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"entity-schema/descriptor"
	"entity-schema/examples/shop"
	"entity-schema/primitive"
)

const shopPkg = "entity-schema/examples/shop"

var amountID = descriptor.TypeID{PkgPath: shopPkg, Name: "Amount"}

func loadShop(t *testing.T) (*descriptor.Registry, []*PackageInfo) {
	t.Helper()

	registry := descriptor.NewRegistry(descriptor.WithDecimalTypes(amountID))
	infos, err := NewAnalyzer(registry).LoadPackages(context.Background(), shopPkg)
	require.NoError(t, err)

	return registry, infos
}

func TestAnalyzer_LoadPackages(t *testing.T) {
	t.Parallel()

	registry, infos := loadShop(t)
	require.Len(t, infos, 1)

	info := infos[0]
	assert.Equal(t, shopPkg, info.Path)
	assert.Equal(t, "shop", info.Name)
	assert.NotEmpty(t, info.Dir)

	var names []string
	for _, id := range info.Types {
		names = append(names, id.Name)
	}

	assert.Equal(t, []string{"Address", "Audit", "Customer", "Dimensions", "Order", "OrderItem", "Product"}, names)

	_, ok := registry.Lookup(amountID)
	assert.False(t, ok, "decimal types are not registered as structs")
}

func TestAnalyzer_OrderFields(t *testing.T) {
	t.Parallel()

	registry, _ := loadShop(t)

	order, ok := registry.Lookup(descriptor.TypeID{PkgPath: shopPkg, Name: "Order"})
	require.True(t, ok)

	assert.True(t, order.HasMarker(descriptor.TypeID{PkgPath: "entity-schema/entity", Name: "Entity"}))

	createdAt, ok := order.Field("CreatedAt")
	require.True(t, ok)
	assert.Equal(t, "Audit", createdAt.Owner.Name, "promoted from Audit")
	assert.Equal(t, primitive.KindTimestamp, createdAt.Type.Scalar)

	updatedAt, _ := order.Field("UpdatedAt")
	assert.True(t, updatedAt.Type.Boxed)

	status, _ := order.Field("Status")
	assert.Equal(t, descriptor.KindScalar, status.Type.Kind)
	assert.Equal(t, primitive.KindString, status.Type.Scalar)
	assert.Equal(t, "OrderStatus", status.Type.ID.Name)
	assert.Equal(t, "status,notnull", status.Tag.Get("table"))

	total, _ := order.Field("Total")
	assert.Equal(t, descriptor.KindDecimal, total.Type.Kind)

	items, _ := order.Field("Items")
	assert.Equal(t, descriptor.KindCollection, items.Type.Kind)
	assert.Equal(t, "[]shop.OrderItem", items.Type.GoType)
	require.Len(t, items.Type.Args, 1)
	assert.Equal(t, descriptor.KindStruct, items.Type.Args[0].Kind)

	checksum, _ := order.Field("Checksum")
	assert.Equal(t, primitive.KindBytes, checksum.Type.Scalar)

	_, ok = order.Field("session")
	assert.False(t, ok)
}

// stripGoType clears the declared-type text, which differs between reflect
// ("[32]uint8") and go/types ("[32]byte").
func stripGoType(ref *descriptor.TypeRef) *descriptor.TypeRef {
	if ref == nil {
		return nil
	}

	out := *ref
	out.GoType = ""
	out.Elem = stripGoType(ref.Elem)
	out.Args = nil

	for _, a := range ref.Args {
		out.Args = append(out.Args, stripGoType(a))
	}

	return &out
}

func TestAnalyzer_MatchesReflectRegistration(t *testing.T) {
	t.Parallel()

	static, _ := loadShop(t)

	dynamic := descriptor.NewRegistry(descriptor.WithDecimalTypes(amountID))
	require.NoError(t, dynamic.Register(shop.Order{}, shop.Customer{}, shop.Product{}))

	for _, name := range []string{"Order", "Customer", "Product", "OrderItem", "Dimensions", "Address"} {
		id := descriptor.TypeID{PkgPath: shopPkg, Name: name}

		want, ok := dynamic.Lookup(id)
		require.True(t, ok, name)

		got, ok := static.Lookup(id)
		require.True(t, ok, name)

		assert.Equal(t, want.Markers, got.Markers, name)
		require.Len(t, got.Fields, len(want.Fields), name)

		for i := range want.Fields {
			w, g := want.Fields[i], got.Fields[i]
			assert.Equal(t, w.Name, g.Name)
			assert.Equal(t, w.Owner, g.Owner, g.Name)
			assert.Equal(t, w.Tag, g.Tag, g.Name)
			assert.Equal(t, stripGoType(w.Type), stripGoType(g.Type), g.Name)
		}
	}
}

func TestAnalyzer_PackageErrors(t *testing.T) {
	t.Parallel()

	_, err := NewAnalyzer(descriptor.NewRegistry()).LoadPackages(context.Background(), "entity-schema/does/not/exist")
	require.Error(t, err)
}

func TestAnalyzer_PointerEmbedding(t *testing.T) {
	t.Parallel()

	const pkgPath = "entity-schema/internal/analyze/testdata/embedded"

	registry := descriptor.NewRegistry()
	_, err := NewAnalyzer(registry).LoadPackages(context.Background(), "./testdata/embedded")
	require.NoError(t, err)

	event, ok := registry.Lookup(descriptor.TypeID{PkgPath: pkgPath, Name: "Event"})
	require.True(t, ok)

	assert.True(t, event.HasMarker(descriptor.TypeID{PkgPath: "entity-schema/entity", Name: "Entity"}))

	var names []string
	for _, f := range event.Fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"CreatedAt", "Revision", "Name"}, names)

	createdAt, _ := event.Field("CreatedAt")
	assert.Equal(t, "Audit", createdAt.Owner.Name)
	assert.True(t, createdAt.Type.Boxed, "a nil *Audit leaves CreatedAt unset")

	name, _ := event.Field("Name")
	assert.False(t, name.Type.Boxed)

	// A struct embedding a pointer to itself keeps the field.
	linkID := descriptor.TypeID{PkgPath: pkgPath, Name: "Link"}
	link, ok := registry.Lookup(linkID)
	require.True(t, ok)

	self, ok := link.Field("Link")
	require.True(t, ok)
	assert.Equal(t, descriptor.KindStruct, self.Type.Kind)
	assert.Equal(t, linkID, self.Type.ID)
	assert.True(t, self.Type.Boxed)
}
