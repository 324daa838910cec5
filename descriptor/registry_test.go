package descriptor_test

import (
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"entity-schema/descriptor"
	"entity-schema/entity"
	"entity-schema/primitive"
)

const pkg = "entity-schema/descriptor_test"

type Money struct {
	units int64
	nanos int32
}

type Audit struct {
	CreatedAt time.Time
	UpdatedBy *string
}

type Node struct {
	Name     string
	Children []*Node
}

type Order struct {
	entity.Entity
	Audit

	ID       int64
	Note     *string
	Tags     []string
	Labels   map[string]int32
	Digest   [32]byte
	Matrix   [3]float64
	Total    Money
	Root     Node
	Callback func()
	internal int
}

func TestRegister(t *testing.T) {
	t.Parallel()

	registry := descriptor.NewRegistry(descriptor.WithDecimalTypes(descriptor.TypeID{PkgPath: pkg, Name: "Money"}))
	require.NoError(t, registry.Register(&Order{}))

	order, ok := registry.Lookup(descriptor.TypeID{PkgPath: pkg, Name: "Order"})
	require.True(t, ok)

	assert.True(t, order.HasMarker(descriptor.TypeID{PkgPath: "entity-schema/entity", Name: "Entity"}))

	var names []string
	for _, f := range order.Fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{
		"CreatedAt", "UpdatedBy", "ID", "Note", "Tags", "Labels", "Digest", "Matrix", "Total", "Root", "Callback",
	}, names)

	createdAt, _ := order.Field("CreatedAt")
	assert.Equal(t, "Audit", createdAt.Owner.Name)
	assert.Equal(t, "Audit.CreatedAt", createdAt.Path())
	assert.Equal(t, primitive.KindTimestamp, createdAt.Type.Scalar)

	id, _ := order.Field("ID")
	assert.Equal(t, descriptor.KindScalar, id.Type.Kind)
	assert.True(t, id.Type.IsPrimitive())

	note, _ := order.Field("Note")
	assert.True(t, note.Type.Boxed)
	assert.False(t, note.Type.IsPrimitive())

	tags, _ := order.Field("Tags")
	assert.Equal(t, descriptor.KindCollection, tags.Type.Kind)
	require.Len(t, tags.Type.Args, 1)
	assert.Equal(t, primitive.KindString, tags.Type.Args[0].Scalar)

	labels, _ := order.Field("Labels")
	assert.Equal(t, descriptor.KindMap, labels.Type.Kind)
	require.Len(t, labels.Type.Args, 2)
	assert.Equal(t, primitive.KindInt32, labels.Type.Args[1].Scalar)

	digest, _ := order.Field("Digest")
	assert.Equal(t, primitive.KindBytes, digest.Type.Scalar)

	matrix, _ := order.Field("Matrix")
	assert.Equal(t, descriptor.KindArray, matrix.Type.Kind)
	assert.Equal(t, 3, matrix.Type.Len)
	assert.Equal(t, primitive.KindDouble, matrix.Type.Elem.Scalar)

	total, _ := order.Field("Total")
	assert.Equal(t, descriptor.KindDecimal, total.Type.Kind)

	callback, _ := order.Field("Callback")
	assert.Equal(t, descriptor.KindUnsupported, callback.Type.Kind)

	_, ok = order.Field("internal")
	assert.False(t, ok)
}

type Shipment struct {
	*entity.Entity
	*Audit

	ID int64
}

type Chain struct {
	*Chain

	Value string
}

func TestRegisterPointerEmbedding(t *testing.T) {
	t.Parallel()

	registry := descriptor.NewRegistry()
	id, err := registry.RegisterType(reflect.TypeFor[Shipment]())
	require.NoError(t, err)

	shipment, ok := registry.Lookup(id)
	require.True(t, ok)

	assert.True(t, shipment.HasMarker(descriptor.TypeID{PkgPath: "entity-schema/entity", Name: "Entity"}))

	var names []string
	for _, f := range shipment.Fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"CreatedAt", "UpdatedBy", "ID"}, names)

	createdAt, _ := shipment.Field("CreatedAt")
	assert.True(t, createdAt.Type.Boxed, "a nil *Audit leaves CreatedAt unset")
	assert.False(t, createdAt.Type.IsPrimitive())

	id, _ := shipment.Field("ID")
	assert.True(t, id.Type.IsPrimitive())

	updatedBy, _ := shipment.Field("UpdatedBy")
	assert.Equal(t, "Audit.UpdatedBy", updatedBy.Path())
	assert.True(t, updatedBy.Type.Boxed)

	chainID, err := registry.RegisterType(reflect.TypeFor[Chain]())
	require.NoError(t, err)

	chain, _ := registry.Lookup(chainID)
	self, ok := chain.Field("Chain")
	require.True(t, ok, "a struct embedding a pointer to itself keeps the field")
	assert.Equal(t, chainID, self.Type.ID)
	assert.True(t, self.Type.Boxed)
}

func TestRegisterRecursive(t *testing.T) {
	t.Parallel()

	registry := descriptor.NewRegistry()
	id, err := registry.RegisterType(reflect.TypeFor[Node]())
	require.NoError(t, err)

	node, ok := registry.Lookup(id)
	require.True(t, ok)

	children, _ := node.Field("Children")
	assert.Equal(t, descriptor.KindCollection, children.Type.Kind)
	assert.Equal(t, id, children.Type.Args[0].ID)
	assert.True(t, children.Type.Args[0].Boxed)
	assert.Equal(t, "[]*descriptor_test.Node", children.Type.String())
}

func TestRegisterErrors(t *testing.T) {
	t.Parallel()

	registry := descriptor.NewRegistry()
	assert.Error(t, registry.Register(42))
	assert.Error(t, registry.Register(nil))
	assert.Zero(t, registry.Len())
}

func TestRegisterConcurrent(t *testing.T) {
	t.Parallel()

	registry := descriptor.NewRegistry()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, registry.Register(Order{}, Node{}))
			_, ok := registry.Lookup(descriptor.TypeID{PkgPath: pkg, Name: "Node"})
			assert.True(t, ok)
		}()
	}
	wg.Wait()

	// Audit is promoted into Order and never registered on its own.
	assert.Equal(t, []descriptor.TypeID{
		{PkgPath: pkg, Name: "Money"},
		{PkgPath: pkg, Name: "Node"},
		{PkgPath: pkg, Name: "Order"},
	}, registry.IDs())
}

func TestTypeIDMatches(t *testing.T) {
	t.Parallel()

	id := descriptor.TypeID{PkgPath: "entity-schema/examples/shop", Name: "Order"}

	assert.True(t, id.Matches("Order"))
	assert.True(t, id.Matches("shop.Order"))
	assert.True(t, id.Matches("examples/shop.Order"))
	assert.True(t, id.Matches("entity-schema/examples/shop.Order"))
	assert.False(t, id.Matches("hop.Order"))
	assert.False(t, id.Matches("shop.Customer"))
	assert.False(t, id.Matches(""))

	assert.Equal(t, id, descriptor.ParseTypeID("entity-schema/examples/shop.Order"))
	assert.Equal(t, descriptor.TypeID{Name: "Order"}, descriptor.ParseTypeID("Order"))
}
