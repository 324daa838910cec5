package plan

import (
	"fmt"
	"slices"

	"entity-schema/internal/diagnostic"
	"entity-schema/internal/match"
	"entity-schema/typeinfo"
)

// Compare reports how the inferred schema of entity differs from its pinned
// schema:
//   - a pinned column whose type changed: TypeDrift, an error unless every
//     stored value stays valid
//   - a new column that looks like a renamed pinned one: ProbableRename
//   - a new column: MissingColumn warning
//   - a pinned column no longer inferred: ExtraColumn error
//   - shared columns in another order: ColumnOrder info
func Compare(entity string, pinned, inferred *typeinfo.TableSchema, cfg Config) diagnostic.Diagnostics {
	var diags diagnostic.Diagnostics

	inferredNames := inferred.ColumnNames()

	var orphans []typeinfo.Column
	for _, c := range pinned.Columns {
		if _, ok := inferred.Column(c.Name); !ok {
			orphans = append(orphans, c)
		}
	}

	renamed := make(map[string]bool)

	for _, c := range inferred.Columns {
		old, ok := pinned.Column(c.Name)
		if ok {
			compareTypes(entity, old, c, &diags)
			continue
		}

		var free []typeinfo.Column
		for _, o := range orphans {
			if !renamed[o.Name] {
				free = append(free, o)
			}
		}

		if best := match.RankColumns(c, free).HighConfidence(cfg.MinConfidence, cfg.MinGap); best != nil {
			renamed[best.Column.Name] = true

			diags.Add(diagnostic.Diagnostic{
				Severity:    diagnostic.DiagnosticWarning,
				Code:        diagnostic.CodeProbableRename,
				Message:     fmt.Sprintf("column was probably renamed from %q (%s)", best.Column.Name, best.TypeCompat.Compatibility),
				Entity:      entity,
				Column:      c.Name,
				Suggestions: []string{best.Column.Name},
			})

			continue
		}

		diags.Add(diagnostic.Diagnostic{
			Severity:    diagnostic.DiagnosticWarning,
			Code:        diagnostic.CodeMissingColumn,
			Message:     "column " + c.String() + " is not pinned",
			Entity:      entity,
			Column:      c.Name,
			Suggestions: match.Suggest(c.Name, columnNames(free), cfg.MaxSuggestions),
		})
	}

	for _, o := range orphans {
		if renamed[o.Name] {
			continue
		}

		diags.Add(diagnostic.Diagnostic{
			Severity:    diagnostic.DiagnosticError,
			Code:        diagnostic.CodeExtraColumn,
			Message:     "pinned column " + o.String() + " is no longer inferred",
			Entity:      entity,
			Column:      o.Name,
			Suggestions: match.Suggest(o.Name, inferredNames, cfg.MaxSuggestions),
		})
	}

	if !sameOrder(pinned, inferred) {
		diags.AddInfo(diagnostic.CodeColumnOrder, "shared columns are inferred in a different order", entity, "")
	}

	if len(diags.All()) == 0 {
		diags.AddInfo(diagnostic.CodeSchemaMatches, "inferred schema matches pinned table", entity, "")
	}

	return diags
}

func compareTypes(entity string, old, inferred typeinfo.Column, diags *diagnostic.Diagnostics) {
	result := match.ScoreTypeCompatibility(old.Type, inferred.Type)

	msg := fmt.Sprintf("pinned %s, inferred %s: %s", result.PinnedType, result.InferredType, result.Reason)

	switch result.Compatibility {
	case match.TypeIdentical:
	case match.TypeRelaxed:
		diags.AddWarning(diagnostic.CodeTypeDrift, msg, entity, inferred.Name)
	default:
		diags.AddError(diagnostic.CodeTypeDrift, msg, entity, inferred.Name)
	}
}

// sameOrder reports whether the columns present in both schemas appear in
// the same relative order.
func sameOrder(pinned, inferred *typeinfo.TableSchema) bool {
	var a, b []string

	for _, c := range pinned.Columns {
		if _, ok := inferred.Column(c.Name); ok {
			a = append(a, c.Name)
		}
	}

	for _, c := range inferred.Columns {
		if _, ok := pinned.Column(c.Name); ok {
			b = append(b, c.Name)
		}
	}

	return slices.Equal(a, b)
}

func columnNames(columns []typeinfo.Column) []string {
	names := make([]string, 0, len(columns))
	for _, c := range columns {
		names = append(names, c.Name)
	}

	return names
}
