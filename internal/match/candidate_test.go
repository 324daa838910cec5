package match

import (
	"reflect"
	"testing"

	"entity-schema/typeinfo"
)

func column(name, typ string) typeinfo.Column {
	return typeinfo.Column{Name: name, Type: typeinfo.MustParse(typ)}
}

func TestRankColumns(t *testing.T) {
	target := column("customer_id", "int64")

	pinned := []typeinfo.Column{
		column("customer_name", "optional<string>"),
		column("customerid", "int64"),
		column("id", "int64"),
		column("customer_ref", "int32"),
	}

	candidates := RankColumns(target, pinned)
	if len(candidates) != 4 {
		t.Fatalf("Expected 4 candidates, got %d", len(candidates))
	}

	best := candidates.Best()
	if best.Column.Name != "customerid" {
		t.Errorf("Expected best candidate customerid, got %s", best.Column.Name)
	}

	if best.NameScore != 1.0 {
		t.Errorf("Expected normalized name score 1.0, got %f", best.NameScore)
	}

	if best.TypeCompat.Compatibility != TypeIdentical {
		t.Errorf("Expected identical type, got %v", best.TypeCompat.Compatibility)
	}

	for i := 1; i < len(candidates); i++ {
		if candidates[i].CombinedScore > candidates[i-1].CombinedScore {
			t.Errorf("Candidates not sorted at %d", i)
		}
	}
}

func TestRankColumns_Determinism(t *testing.T) {
	target := column("total", "int64")
	pinned := []typeinfo.Column{
		column("b", "string"),
		column("a", "string"),
		column("c", "string"),
	}

	first := RankColumns(target, pinned)
	for range 10 {
		again := RankColumns(target, pinned)
		for i := range first {
			if first[i].Column.Name != again[i].Column.Name {
				t.Fatalf("Non-deterministic ranking at %d: %s vs %s", i, first[i].Column.Name, again[i].Column.Name)
			}
		}
	}

	if first[0].Column.Name != "a" {
		t.Errorf("Expected a first, got %s", first[0].Column.Name)
	}
}

func TestCandidateList_Top(t *testing.T) {
	candidates := CandidateList{
		{Column: typeinfo.Column{Name: "a"}, CombinedScore: 0.9},
		{Column: typeinfo.Column{Name: "b"}, CombinedScore: 0.8},
		{Column: typeinfo.Column{Name: "c"}, CombinedScore: 0.7},
	}

	if got := candidates.Top(2); len(got) != 2 {
		t.Errorf("Top(2) returned %d candidates", len(got))
	}

	if got := candidates.Top(10); len(got) != 3 {
		t.Errorf("Top(10) returned %d candidates", len(got))
	}

	var empty CandidateList
	if empty.Best() != nil {
		t.Error("Best() of empty list should be nil")
	}
}

func TestCandidateList_HighConfidence(t *testing.T) {
	relaxed := TypeCompatibilityResult{Compatibility: TypeRelaxed}
	incompatible := TypeCompatibilityResult{Compatibility: TypeIncompatible}

	tests := []struct {
		name       string
		candidates CandidateList
		wantName   string
	}{
		{
			name:       "empty",
			candidates: nil,
		},
		{
			name: "clear winner",
			candidates: CandidateList{
				{Column: typeinfo.Column{Name: "a"}, CombinedScore: 0.95, TypeCompat: relaxed},
				{Column: typeinfo.Column{Name: "b"}, CombinedScore: 0.5, TypeCompat: relaxed},
			},
			wantName: "a",
		},
		{
			name: "below min score",
			candidates: CandidateList{
				{Column: typeinfo.Column{Name: "a"}, CombinedScore: 0.6, TypeCompat: relaxed},
			},
		},
		{
			name: "gap too small",
			candidates: CandidateList{
				{Column: typeinfo.Column{Name: "a"}, CombinedScore: 0.9, TypeCompat: relaxed},
				{Column: typeinfo.Column{Name: "b"}, CombinedScore: 0.85, TypeCompat: relaxed},
			},
		},
		{
			name: "incompatible type",
			candidates: CandidateList{
				{Column: typeinfo.Column{Name: "a"}, CombinedScore: 0.9, TypeCompat: incompatible},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.candidates.HighConfidence(DefaultMinScore, DefaultMinGap)
			switch {
			case tt.wantName == "" && got != nil:
				t.Errorf("Expected no candidate, got %s", got.Column.Name)
			case tt.wantName != "" && (got == nil || got.Column.Name != tt.wantName):
				t.Errorf("Expected %s, got %v", tt.wantName, got)
			}
		})
	}
}

func TestCalculateCombinedScore(t *testing.T) {
	tests := []struct {
		nameScore float64
		compat    TypeCompatibility
		expected  float64
	}{
		{1.0, TypeIdentical, 1.0},
		{1.0, TypeIncompatible, 0.6},
		{0.0, TypeIdentical, 0.4},
		{0.5, TypeRelaxed, 0.62},
		{0.5, TypeTightened, 0.46},
	}

	for _, tt := range tests {
		got := calculateCombinedScore(tt.nameScore, tt.compat)
		if diff := got - tt.expected; diff > 0.0001 || diff < -0.0001 {
			t.Errorf("calculateCombinedScore(%f, %v) = %f, want %f", tt.nameScore, tt.compat, got, tt.expected)
		}
	}
}

func TestSuggest(t *testing.T) {
	names := []string{"total", "tags", "created_at", "customer_id", "status"}

	tests := []struct {
		name     string
		n        int
		expected []string
	}{
		{"totl", 3, []string{"total"}},
		{"CustomerID", 1, []string{"customer_id"}},
		{"created", 2, []string{"created_at"}},
		{"zzzzzz", 3, []string{}},
		{"customer", 1, []string{"customer_id"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Suggest(tt.name, names, tt.n)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Suggest(%q) = %v, want %v", tt.name, got, tt.expected)
			}
		})
	}

	if got := Suggest("status", []string{"status"}, 3); len(got) != 0 {
		t.Errorf("Exact match should not be suggested, got %v", got)
	}
}
