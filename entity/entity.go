// Package entity holds the marker types that classify Go structs for schema
// inference. Embed a marker anonymously; it contributes no column.
//
//	type Order struct {
//		entity.Entity
//
//		ID       int64
//		Shipping Address
//	}
//
//	type Address struct {
//		entity.Embeddable
//
//		City string
//	}
package entity

// Entity marks a struct as the root of a table.
type Entity struct{}

// Embeddable marks a struct whose fields are spliced into the parent's
// columns instead of being stored as a nested struct.
type Embeddable struct{}
