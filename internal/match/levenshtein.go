package match

// Levenshtein returns the number of single rune insertions, deletions and
// substitutions needed to turn a into b.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)

	// Keep the row over the shorter name.
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}

	row := make([]int, len(ra)+1)
	for i := range row {
		row[i] = i
	}

	for j := 1; j <= len(rb); j++ {
		diag := row[0]
		row[0] = j

		for i := 1; i <= len(ra); i++ {
			above := row[i]

			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}

			row[i] = min(row[i]+1, row[i-1]+1, diag+cost)
			diag = above
		}
	}

	return row[len(ra)]
}

// similarity maps the edit distance of a and b into [0, 1], 1 meaning equal.
func similarity(a, b string) float64 {
	longest := max(len([]rune(a)), len([]rune(b)))
	if longest == 0 {
		return 1
	}

	return 1 - float64(Levenshtein(a, b))/float64(longest)
}

// nameSimilarity scores two column names: the better of the similarity of
// their normalized spellings and of their stems.
func nameSimilarity(a, b string) float64 {
	return max(
		similarity(NormalizeColumn(a), NormalizeColumn(b)),
		similarity(columnStem(a), columnStem(b)),
	)
}
