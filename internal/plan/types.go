package plan

import (
	"entity-schema/descriptor"
	"entity-schema/internal/diagnostic"
	"entity-schema/typeinfo"
)

// Result is the output of the pipeline.
type Result struct {
	// Entities holds one entry per entity root, sorted by type id.
	Entities []EntityResult
	// Diagnostics contains inference failures and drift findings.
	Diagnostics diagnostic.Diagnostics
}

// EntityResult is the outcome for one entity root.
type EntityResult struct {
	// ID of the entity type.
	ID descriptor.TypeID
	// Ref is the short entity reference, e.g. "shop.Order".
	Ref string
	// Schema is the inferred schema, nil when inference failed.
	Schema *typeinfo.TableSchema
	// Pinned is the schema from the schema file, nil when none is pinned.
	Pinned *typeinfo.TableSchema
	// Err is the inference failure, if any.
	Err error
}

// Failed reports whether inference failed.
func (e *EntityResult) Failed() bool {
	return e.Err != nil
}

// Entity returns the result for id.
func (r *Result) Entity(id descriptor.TypeID) (*EntityResult, bool) {
	for i := range r.Entities {
		if r.Entities[i].ID == id {
			return &r.Entities[i], true
		}
	}

	return nil, false
}

// Schemas returns the successfully inferred schemas keyed by entity id.
func (r *Result) Schemas() map[descriptor.TypeID]*typeinfo.TableSchema {
	out := make(map[descriptor.TypeID]*typeinfo.TableSchema, len(r.Entities))
	for _, e := range r.Entities {
		if e.Schema != nil {
			out[e.ID] = e.Schema
		}
	}

	return out
}
