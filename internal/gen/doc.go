// Package gen provides deterministic Go code generation for inferred table
// schemas.
//
// Generation uses github.com/dave/jennifer, which renders gofmt-formatted
// source. For every entity the generated package declares a constructor
// returning its *typeinfo.TableSchema:
//
//	// OrderTable returns the schema of table //home/shop/orders (shop.Order).
//	func OrderTable() *typeinfo.TableSchema {
//		return &typeinfo.TableSchema{Columns: []typeinfo.Column{
//			{Name: "id", Type: typeinfo.Primitive{Kind: primitive.KindInt64}},
//		}}
//	}
//
// plus a Tables registry keyed by entity reference and a Paths index.
package gen
