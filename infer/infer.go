package infer

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/rs/zerolog"

	"entity-schema/descriptor"
	"entity-schema/internal/match"
	"entity-schema/meta"
	"entity-schema/rawtype"
	"entity-schema/typeinfo"
)

// Naming derives a column name from a Go field name when no override name is
// given.
type Naming func(field string) string

// FieldNaming keeps the Go field name.
func FieldNaming(field string) string {
	return field
}

// SnakeNaming converts the Go field name to snake_case, keeping acronyms
// together: "OrderID" becomes "order_id".
func SnakeNaming(field string) string {
	return strings.Join(match.TokenizeIdent(field), "_")
}

// NamingByName returns the naming strategy called name ("field" or "snake").
func NamingByName(name string) (Naming, error) {
	switch name {
	case "", "field":
		return FieldNaming, nil
	case "snake":
		return SnakeNaming, nil
	default:
		return nil, fmt.Errorf("unknown naming strategy %q", name)
	}
}

// Inferrer derives table schemas. It holds no per-call state and is safe for
// concurrent use.
type Inferrer struct {
	types    descriptor.TypeSource
	provider meta.FieldMetadataProvider
	raw      rawtype.Parser
	naming   Naming
	logger   zerolog.Logger
}

// Option configures an Inferrer.
type Option func(*Inferrer)

// WithNaming sets the column naming strategy.
func WithNaming(n Naming) Option {
	return func(in *Inferrer) {
		in.naming = n
	}
}

// WithRawTypeParser sets the parser for raw type definitions.
func WithRawTypeParser(p rawtype.Parser) Option {
	return func(in *Inferrer) {
		in.raw = p
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l zerolog.Logger) Option {
	return func(in *Inferrer) {
		in.logger = l
	}
}

// New creates an Inferrer reading descriptors from types and annotations from
// provider.
func New(types descriptor.TypeSource, provider meta.FieldMetadataProvider, opts ...Option) *Inferrer {
	in := &Inferrer{
		types:    types,
		provider: provider,
		raw:      rawtype.NewTextParser(),
		naming:   FieldNaming,
		logger:   zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(in)
	}

	return in
}

// Infer returns the schema of the entity root. existing, if non-nil, is a
// previously known schema for the same entity.
func (in *Inferrer) Infer(root descriptor.TypeID, existing *typeinfo.TableSchema) (*typeinfo.TableSchema, error) {
	desc, ok := in.types.Lookup(root)
	if !ok {
		return nil, &Error{Kind: KindNotAnEntity, Type: root, Detail: "type is not registered"}
	}

	if !in.provider.IsEntityRoot(desc) {
		return nil, &Error{Kind: KindNotAnEntity, Type: root}
	}

	var hint *typeinfo.Struct
	if existing != nil {
		s := existing.AsStruct()
		hint = &s
	}

	columns, err := in.walk(desc, nil, hint)
	if err != nil {
		return nil, err
	}

	schema, err := typeinfo.NewBuilder().AddColumns(columns...).Build()
	if err != nil {
		return nil, fmt.Errorf("entity %s: %w", root, err)
	}

	in.logger.Debug().
		Stringer("entity", root).
		Int("columns", len(schema.Columns)).
		Msg("schema inferred")

	return schema, nil
}

// Of registers T with registry and infers its schema.
func Of[T any](
	registry *descriptor.Registry,
	provider meta.FieldMetadataProvider,
	existing *typeinfo.TableSchema,
	opts ...Option,
) (*typeinfo.TableSchema, error) {
	id, err := registry.RegisterType(reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}

	return New(registry, provider, opts...).Infer(id, existing)
}
