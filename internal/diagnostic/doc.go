// Package diagnostic provides structured errors, warnings and infos reported
// while inferring a batch of entities.
//
// Key capabilities:
//   - Inference failures keyed by error kind
//   - Drift between an inferred schema and the pinned schema file
//   - Column name suggestions for renamed or misspelled columns
package diagnostic
