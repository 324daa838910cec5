// Package plan provides the batch pipeline that infers the table schema of
// every entity root and checks it against the pinned schema file.
//
// Pipeline:
//  1. Analyze packages → descriptor registry
//  2. Load the schema file (optional) → existing schema per entity
//  3. For each entity root, concurrently:
//     - Infer the schema with the pinned one as hint
//     - Turn inference failures into error diagnostics
//     - Compare inferred and pinned columns (drift)
//  4. Report pinned tables that no longer match an entity
package plan
