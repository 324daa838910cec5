package descriptor

import (
	"fmt"
	"reflect"

	"entity-schema/primitive"
)

// Register builds descriptors for the struct types of the given values and
// every struct reachable from their fields. Pointers are dereferenced.
func (r *Registry) Register(values ...any) error {
	for _, v := range values {
		if _, err := r.RegisterType(reflect.TypeOf(v)); err != nil {
			return err
		}
	}

	return nil
}

// RegisterType is Register for a reflect.Type. It returns the id of the
// registered struct.
func (r *Registry) RegisterType(rt reflect.Type) (TypeID, error) {
	if rt == nil {
		return TypeID{}, fmt.Errorf("cannot register untyped nil")
	}

	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}

	if rt.Kind() != reflect.Struct {
		return TypeID{}, fmt.Errorf("cannot register %s: not a struct (kind: %s)", rt, rt.Kind())
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	b := &reflectBuilder{
		registry:  r,
		visited:   make(map[reflect.Type]TypeID),
		promoting: make(map[reflect.Type]bool),
	}

	return b.structID(rt), nil
}

// RegisteredID returns the id Register would assign to rt.
func RegisteredID(rt reflect.Type) TypeID {
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}

	return reflectTypeID(rt)
}

// reflectBuilder walks reflect types while the registry write lock is held.
type reflectBuilder struct {
	registry  *Registry
	visited   map[reflect.Type]TypeID // handles recursive types
	promoting map[reflect.Type]bool   // structs whose fields are being collected
}

func reflectTypeID(rt reflect.Type) TypeID {
	if rt.Name() == "" {
		return TypeID{Name: rt.String()}
	}

	return TypeID{PkgPath: rt.PkgPath(), Name: rt.Name()}
}

// structID registers rt (once) and returns its id.
func (b *reflectBuilder) structID(rt reflect.Type) TypeID {
	if id, ok := b.visited[rt]; ok {
		return id
	}

	id := reflectTypeID(rt)
	b.visited[rt] = id

	if _, ok := b.registry.types[id]; ok {
		return id
	}

	desc := &TypeDescriptor{ID: id}
	// Pre-store so recursive references resolve to the same descriptor.
	b.registry.types[id] = desc
	b.promoting[rt] = true
	b.collectFields(rt, id, desc, false)
	delete(b.promoting, rt)

	return id
}

// collectFields appends the fields of rt to desc, promoting anonymous
// struct fields in place. Fields promoted through an embedded pointer are
// boxed: a nil embed leaves them unset. A struct already being promoted
// (type Node struct{ *Node }) is kept as an ordinary field.
func (b *reflectBuilder) collectFields(rt reflect.Type, owner TypeID, desc *TypeDescriptor, boxed bool) {
	for i := range rt.NumField() {
		f := rt.Field(i)

		if et, ok := embeddedStruct(f); ok && !b.promoting[et] {
			if et.NumField() == 0 {
				desc.Markers = append(desc.Markers, reflectTypeID(et))
				continue
			}

			b.promoting[et] = true
			b.collectFields(et, reflectTypeID(et), desc, boxed || f.Type.Kind() == reflect.Pointer)
			delete(b.promoting, et)

			continue
		}

		if !f.IsExported() {
			continue
		}

		ref := b.ref(f.Type)
		ref.Boxed = ref.Boxed || boxed

		desc.Fields = append(desc.Fields, FieldDescriptor{
			Name:  f.Name,
			Owner: owner,
			Type:  ref,
			Tag:   f.Tag,
		})
	}
}

// embeddedStruct returns the struct type of an anonymous field embedding a
// struct or a pointer to one.
func embeddedStruct(f reflect.StructField) (reflect.Type, bool) {
	if !f.Anonymous {
		return nil, false
	}

	t := f.Type
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	return t, t.Kind() == reflect.Struct
}

// ref classifies a declared type.
func (b *reflectBuilder) ref(rt reflect.Type) *TypeRef {
	out := &TypeRef{GoType: rt.String()}

	for rt.Kind() == reflect.Pointer {
		out.Boxed = true
		rt = rt.Elem()
	}

	if rt.Name() != "" && rt.PkgPath() != "" {
		out.ID = reflectTypeID(rt)
	}

	if kind := primitive.FromReflectType(rt); kind != 0 {
		out.Kind = KindScalar
		out.Scalar = kind

		return out
	}

	if _, ok := b.registry.decimals[out.ID]; ok && !out.ID.IsZero() {
		out.Kind = KindDecimal
		return out
	}

	switch rt.Kind() {
	case reflect.Slice:
		out.Kind = KindCollection
		out.Args = []*TypeRef{b.ref(rt.Elem())}

	case reflect.Map:
		out.Kind = KindMap
		out.Args = []*TypeRef{b.ref(rt.Key()), b.ref(rt.Elem())}

	case reflect.Array:
		out.Kind = KindArray
		out.Elem = b.ref(rt.Elem())
		out.Len = rt.Len()

	case reflect.Struct:
		out.Kind = KindStruct
		out.ID = b.structID(rt)

	default:
		out.Kind = KindUnsupported
	}

	return out
}
