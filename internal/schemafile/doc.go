// Package schemafile reads and writes the YAML file holding previously known
// table schemas.
//
// The file pins the schema of each entity. Inference consults it as the
// existing schema: decimals take their precision and scale from it, and the
// check command reports drift between it and the current object model.
//
//	version: "1"
//	tables:
//	  - entity: shop.Order
//	    path: //home/shop/orders
//	    columns:
//	      - name: id
//	        type: int64
//	      - name: total
//	        type: optional<decimal(12,2)>
//
// Column types use the typeinfo text format. Entity references accept the
// forms of descriptor.TypeID.Matches. A missing path defaults to the
// snake_case plural of the entity name under //home/<package>.
package schemafile
