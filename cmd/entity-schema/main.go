// Package main provides the CLI entrypoint for entity-schema.
//
// entity-schema derives typed table schemas from annotated Go structs:
//   - infer prints (or pins) the schemas of every entity root
//   - check compares inferred schemas with the pinned schema file
//   - gen generates Go constructors for the inferred schemas
//   - watch re-runs check (and optionally gen) when sources change
package main

func main() {
	Execute()
}
