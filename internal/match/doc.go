// Package match provides column name normalization, Levenshtein distance,
// storage type compatibility scoring, and candidate ranking for column
// matching.
//
// Key functions:
//   - TokenizeIdent: splits Go and storage spellings of a name into tokens
//   - NormalizeColumn: folds column name spellings for fuzzy matching
//   - Levenshtein: computes edit distance between names
//   - ScoreTypeCompatibility: scores whether a pinned column type accepts an inferred one
//   - RankColumns: ranks pinned columns that may be the previous name of a column
//   - Suggest: returns the closest names for "did you mean" hints
package match
