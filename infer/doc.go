// Package infer derives table schemas from struct descriptors.
//
// The walk starts at an entity root and visits fields in declaration order:
//
//  1. Transient fields are skipped.
//  2. Fields whose type is embeddable are flattened: the embeddable's columns
//     are spliced in place of the field.
//  3. Every other field becomes one column. Its storage type is resolved by
//     precedence: raw type definition, primitive, collection, map, array,
//     decimal, nested struct.
//  4. Types other than unboxed numbers and bools are wrapped in optional
//     unless the field is declared not-null.
//
// An existing schema may be supplied. Members with the same column name are
// used as hints at every nesting level: decimals take their precision and
// scale from it, and one optional level is unwrapped before the hint is
// passed down.
//
// Every descent records a Link; entering a type that is already on the chain
// fails with ErrStructuralCycle, so the walk always terminates.
package infer
