package rawtype_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"entity-schema/descriptor"
	"entity-schema/primitive"
	"entity-schema/rawtype"
	"entity-schema/typeinfo"
)

func scalar(kind primitive.KindEnum) *descriptor.TypeRef {
	return &descriptor.TypeRef{Kind: descriptor.KindScalar, Scalar: kind}
}

func TestTextParser(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		definition string
		declared   *descriptor.TypeRef
		want       string
		wantErr    error
	}{
		{name: "same kind", definition: "int32", declared: scalar(primitive.KindInt32), want: "int32"},
		{name: "widening", definition: "optional<int64>", declared: scalar(primitive.KindInt32), want: "optional<int64>"},
		{name: "text as bytes", definition: "bytes", declared: scalar(primitive.KindString), want: "bytes"},
		{name: "narrowing", definition: "int8", declared: scalar(primitive.KindInt64), wantErr: rawtype.ErrIncompatible},
		{name: "scalar as list", definition: "list<int64>", declared: scalar(primitive.KindInt64), wantErr: rawtype.ErrIncompatible},
		{
			name:       "collection unchecked",
			definition: "dict<string,optional<int64>>",
			declared:   &descriptor.TypeRef{Kind: descriptor.KindMap},
			want:       "dict<string,optional<int64>>",
		},
		{name: "no declared type", definition: "decimal(10,2)", want: "decimal(10,2)"},
		{name: "nested optional", definition: "optional<optional<int64>>", declared: scalar(primitive.KindInt64), wantErr: typeinfo.ErrNestedOptional},
	}

	p := rawtype.NewTextParser()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := p.Parse(tt.definition, tt.declared)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestTextParserCategories(t *testing.T) {
	t.Parallel()

	p := &rawtype.TextParser{Categories: primitive.CategoryAll}

	got, err := p.Parse("int8", scalar(primitive.KindInt64))
	require.NoError(t, err)
	assert.Equal(t, typeinfo.Primitive{Kind: primitive.KindInt8}, got)
}

func TestParserFunc(t *testing.T) {
	t.Parallel()

	var called string
	p := rawtype.ParserFunc(func(definition string, _ *descriptor.TypeRef) (typeinfo.Type, error) {
		called = definition
		return typeinfo.Primitive{Kind: primitive.KindString}, nil
	})

	got, err := p.Parse("anything", nil)
	require.NoError(t, err)
	assert.Equal(t, "anything", called)
	assert.Equal(t, "string", got.String())
}
