package match

import (
	"cmp"
	"slices"

	"entity-schema/typeinfo"
)

// Thresholds of rename detection and suggestions.
const (
	// DefaultMinScore is the lowest combined score accepted as a rename.
	DefaultMinScore = 0.7
	// DefaultMinGap is how far a rename must outscore the runner-up.
	DefaultMinGap = 0.15
	// DefaultSuggestScore is the lowest name similarity worth suggesting.
	DefaultSuggestScore = 0.5
)

// A column name counts for 60% of a candidate's score, its type for 40%.
const (
	nameWeight = 0.6
	typeWeight = 0.4
)

// compatScores maps a type verdict into [0, 1]. Incompatible scores zero.
var compatScores = map[TypeCompatibility]float64{
	TypeIdentical: 1,
	TypeRelaxed:   0.8,
	TypeTightened: 0.4,
}

// Candidate is a pinned column that may be the previous name of an inferred
// column.
type Candidate struct {
	Column typeinfo.Column

	NameScore      float64 // 0..1
	TypeCompat     TypeCompatibilityResult
	CombinedScore  float64 // ranking key, higher is better
	NormalizedName string
}

// CandidateList is ranked best first.
type CandidateList []Candidate

// RankColumns scores every pinned column as the former spelling of target.
// Ties are broken by column name.
func RankColumns(target typeinfo.Column, pinned []typeinfo.Column) CandidateList {
	ranked := make(CandidateList, len(pinned))

	for i, c := range pinned {
		compat := ScoreTypeCompatibility(c.Type, target.Type)
		name := nameSimilarity(c.Name, target.Name)

		ranked[i] = Candidate{
			Column:         c,
			NameScore:      name,
			TypeCompat:     compat,
			CombinedScore:  calculateCombinedScore(name, compat.Compatibility),
			NormalizedName: NormalizeColumn(c.Name),
		}
	}

	slices.SortFunc(ranked, func(a, b Candidate) int {
		return cmp.Or(
			cmp.Compare(b.CombinedScore, a.CombinedScore),
			cmp.Compare(a.Column.Name, b.Column.Name),
		)
	})

	return ranked
}

func calculateCombinedScore(nameScore float64, compat TypeCompatibility) float64 {
	return nameWeight*nameScore + typeWeight*compatScores[compat]
}

// Top returns at most the n best candidates.
func (c CandidateList) Top(n int) CandidateList {
	return c[:min(n, len(c))]
}

// Best returns the top candidate, nil for an empty list.
func (c CandidateList) Best() *Candidate {
	if len(c) == 0 {
		return nil
	}

	return &c[0]
}

// HighConfidence returns the top candidate when it is a clear rename: scored
// at least minScore, ahead of the runner-up by minGap, and with a type that
// keeps stored values valid.
func (c CandidateList) HighConfidence(minScore, minGap float64) *Candidate {
	best := c.Best()

	switch {
	case best == nil, best.CombinedScore < minScore:
		return nil
	case best.TypeCompat.Compatibility < TypeRelaxed:
		return nil
	case len(c) > 1 && best.CombinedScore-c[1].CombinedScore < minGap:
		return nil
	}

	return best
}

// Suggest returns up to n names closest to name, best first, for "did you
// mean" hints. A negative n returns all of them.
func Suggest(name string, names []string, n int) []string {
	type suggestion struct {
		name  string
		score float64
	}

	var found []suggestion
	for _, other := range names {
		if other == name {
			continue
		}

		if score := nameSimilarity(other, name); score >= DefaultSuggestScore {
			found = append(found, suggestion{other, score})
		}
	}

	slices.SortStableFunc(found, func(a, b suggestion) int {
		return cmp.Or(cmp.Compare(b.score, a.score), cmp.Compare(a.name, b.name))
	})

	if n >= 0 && len(found) > n {
		found = found[:n]
	}

	out := make([]string, len(found))
	for i, s := range found {
		out[i] = s.name
	}

	return out
}
